package indexer

import (
	"context"
	"time"

	"github.com/btcsuite/btcd/wire"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/chain"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/subindexer"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/verifier"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Loader interface {
		Next(ctx context.Context) (*model.Block, error)
		Progress() model.Progress
		Accept(p model.Progress)
		Reset(p model.Progress)
	}
	Store interface {
		subindexer.View
		Snapshot(ctx context.Context) (*model.Snapshot, error)
		Commit(ctx context.Context, c model.BlockCommit) error
		Rollback(ctx context.Context, fork model.Progress) error
	}
	Resolver interface {
		Resolve(ctx context.Context, block *model.Block, txs []*wire.MsgTx) (chain.Resolved, error)
	}
	Verifier interface {
		CheckBatch(ctx context.Context, candidates []*verifier.Candidate) ([]model.Verdict, error)
	}
	Extractor interface {
		Extract(ctx context.Context, block *model.Block, view subindexer.View) (subindexer.Events, error)
	}
	Metrics interface {
		ObserveBlock(err error, height uint64, candidates int, started time.Time)
		ObserveStage(stage string, err error, started time.Time)
		ObserveRetry(stage string)
		ObserveReorg(depth uint64)
	}
)
