package chain

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
)

// ErrNoMoreBlocks is returned by Loader.Next when the source has no block past the progress.
var ErrNoMoreBlocks = errors.New("no more blocks")

// SourceError is a failed or inconsistent chain source call.
type SourceError struct {
	Op     string
	Height uint64
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("chain source %s at height %d: %v", e.Op, e.Height, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// ReorgError reports that the committed history diverged from the source
// above Fork.
type ReorgError struct {
	Tip  model.Progress
	Fork model.Progress
}

func (e *ReorgError) Error() string {
	return fmt.Sprintf("reorg detected: committed tip %d/%s, common ancestor %d/%s",
		e.Tip.Height, e.Tip.Hash, e.Fork.Height, e.Fork.Hash)
}

// Depth is the number of committed blocks to roll back.
func (e *ReorgError) Depth() uint64 {
	return e.Tip.Height - e.Fork.Height
}

// ReorgTooDeepError reports that no common ancestor exists within MaxDepth blocks.
type ReorgTooDeepError struct {
	Height   uint64
	Hash     chainhash.Hash
	MaxDepth uint64
}

func (e *ReorgTooDeepError) Error() string {
	return fmt.Sprintf("no common ancestor within %d blocks of %d/%s", e.MaxDepth, e.Height, e.Hash)
}
