// Package chain reads blocks from a chain source in order, detects
// reorganizations against the committed history and resolves the outputs
// spent by candidate transactions.
package chain

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

// Source provides blocks and outputs of the best chain.
type Source interface {
	BestHeight(ctx context.Context) (uint64, error)
	BlockHash(ctx context.Context, height uint64) (chainhash.Hash, error)
	Block(ctx context.Context, height uint64) (*model.Block, error)
	TxOut(ctx context.Context, op model.OutPoint) (*wire.TxOut, error)
}

// CommittedHashes returns the block hash committed at a height.
type CommittedHashes interface {
	BlockHash(ctx context.Context, height uint64) (chainhash.Hash, error)
}

// Inventory looks up known pixel outputs.
type Inventory interface {
	InventoryOutputs(ctx context.Context, ops []model.OutPoint) (map[model.OutPoint]model.InventoryOutput, error)
}
