package indexer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	stageFetch    = "fetch"
	stageExtract  = "extract"
	stageDecode   = "decode"
	stageResolve  = "resolve"
	stageCheck    = "check"
	stageCommit   = "commit"
	stageRollback = "rollback"
)

// FatalError stops the indexer. It carries the position the pipeline was at.
type FatalError struct {
	Stage  string
	Height uint64
	Hash   chainhash.Hash
	TxID   chainhash.Hash
	Err    error
}

func (e *FatalError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "indexer stopped in %s at height %d", e.Stage, e.Height)
	if e.Hash != (chainhash.Hash{}) {
		fmt.Fprintf(&b, " (block %s)", e.Hash)
	}
	if e.TxID != (chainhash.Hash{}) {
		fmt.Fprintf(&b, " (tx %s)", e.TxID)
	}
	fmt.Fprintf(&b, ": %v", e.Err)
	return b.String()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// stageError is a retryable failure of one pipeline stage.
type stageError struct {
	stage  string
	height uint64
	hash   chainhash.Hash
	err    error
}

func (e *stageError) Error() string {
	return fmt.Sprintf("%s at height %d: %v", e.stage, e.height, e.err)
}

func (e *stageError) Unwrap() error {
	return e.err
}

func (e *stageError) fatal() *FatalError {
	return &FatalError{Stage: e.stage, Height: e.height, Hash: e.hash, Err: e.err}
}

func stageOf(err error) *stageError {
	var se *stageError
	if errors.As(err, &se) {
		return se
	}
	return &stageError{stage: "unknown", err: err}
}
