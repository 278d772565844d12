package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"go.uber.org/zap"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
)

// Loader hands out blocks in height order on top of the last accepted block.
// It never persists anything: the cursor only moves through Accept and Reset
// after the caller committed or rolled back.
type Loader struct {
	source    Source
	committed CommittedHashes
	start     uint64
	maxDepth  uint64
	logger    *zap.Logger

	mu   sync.Mutex
	last model.Progress
}

// NewLoader creates a loader resuming from progress.
func NewLoader(source Source, committed CommittedHashes, progress model.Progress, params model.IndexingParams, logger *zap.Logger) *Loader {
	return &Loader{
		source:    source,
		committed: committed,
		start:     params.StartHeight,
		maxDepth:  params.MaxReorgDepth,
		logger:    logger.Named("loader"),
		last:      progress,
	}
}

// Progress returns the last accepted block.
func (l *Loader) Progress() model.Progress {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last
}

// Accept moves the cursor past a committed block.
func (l *Loader) Accept(p model.Progress) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.last = p
}

// Reset moves the cursor back to a fork point after a rollback.
func (l *Loader) Reset(p model.Progress) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Info("loader reset", zap.Uint64("height", p.Height), zap.Stringer("hash", p.Hash))
	l.last = p
}

// Next returns the block following the last accepted one. Until Accept is
// called the same block is returned again. It returns ErrNoMoreBlocks when
// the source has nothing new, *ReorgError when the accepted tip is no longer
// on the source's best chain and *ReorgTooDeepError when no common ancestor
// is found within the configured depth.
func (l *Loader) Next(ctx context.Context) (*model.Block, error) {
	last := l.Progress()

	best, err := l.source.BestHeight(ctx)
	if err != nil {
		return nil, &SourceError{Op: "best_height", Height: last.Height, Err: err}
	}

	if !last.IsZero() {
		if best < last.Height {
			return nil, l.reorg(ctx, last, best)
		}
		hash, err := l.source.BlockHash(ctx, last.Height)
		if err != nil {
			return nil, &SourceError{Op: "block_hash", Height: last.Height, Err: err}
		}
		if hash != last.Hash {
			return nil, l.reorg(ctx, last, best)
		}
	}

	next := l.start
	if !last.IsZero() {
		next = last.Height + 1
	}
	if best < next {
		return nil, ErrNoMoreBlocks
	}

	block, err := l.source.Block(ctx, next)
	if err != nil {
		return nil, &SourceError{Op: "block", Height: next, Err: err}
	}
	if block.Height != next {
		return nil, &SourceError{Op: "block", Height: next, Err: fmt.Errorf("source returned height %d", block.Height)}
	}
	if !last.IsZero() && block.PrevHash != last.Hash {
		// The tip moved between the hash check and the fetch.
		return nil, l.reorg(ctx, last, best)
	}
	return block, nil
}

// reorg walks back from the accepted tip until the committed hash matches
// the source's hash at the same height.
func (l *Loader) reorg(ctx context.Context, tip model.Progress, best uint64) error {
	h := tip.Height
	if best < h {
		h = best
	}
	for {
		if tip.Height-h > l.maxDepth {
			return &ReorgTooDeepError{Height: tip.Height, Hash: tip.Hash, MaxDepth: l.maxDepth}
		}

		sourceHash, err := l.source.BlockHash(ctx, h)
		if err != nil {
			return &SourceError{Op: "block_hash", Height: h, Err: err}
		}

		var committed chainhash.Hash
		if h+1 == l.start || h == 0 {
			// Below the first indexed block: nothing committed to compare with.
			committed = sourceHash
		} else {
			committed, err = l.committed.BlockHash(ctx, h)
			if err != nil {
				return fmt.Errorf("committed hash at %d: %w", h, err)
			}
		}

		if committed == sourceHash {
			fork := model.Progress{Height: h, Hash: sourceHash}
			l.logger.Warn("reorg detected",
				zap.Uint64("tip_height", tip.Height),
				zap.Stringer("tip_hash", tip.Hash),
				zap.Uint64("fork_height", fork.Height),
				zap.Stringer("fork_hash", fork.Hash))
			return &ReorgError{Tip: tip, Fork: fork}
		}
		if h == 0 {
			return &ReorgTooDeepError{Height: tip.Height, Hash: tip.Hash, MaxDepth: l.maxDepth}
		}
		h--
	}
}
