package subindexer

import (
	"context"
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
)

// ConfirmationIndexer reports pending transactions mined in the block and
// pending transactions reaching the confirmation depth.
type ConfirmationIndexer struct {
	confirmations uint64
}

// NewConfirmationIndexer creates a ConfirmationIndexer. A depth of one
// matures transactions in the block that mines them.
func NewConfirmationIndexer(confirmations uint64) *ConfirmationIndexer {
	if confirmations == 0 {
		confirmations = 1
	}
	return &ConfirmationIndexer{confirmations: confirmations}
}

func (c *ConfirmationIndexer) Name() string { return "confirmations" }

func (c *ConfirmationIndexer) Extract(ctx context.Context, block *model.Block, view View) (Events, error) {
	ids := make([]chainhash.Hash, len(block.Txs))
	index := make(map[chainhash.Hash]uint32, len(block.Txs))
	for i, tx := range block.Txs {
		ids[i] = tx.TxHash()
		index[ids[i]] = uint32(i)
	}

	pending, err := view.PendingByTxIDs(ctx, ids)
	if err != nil {
		return Events{}, fmt.Errorf("lookup pending transactions: %w", err)
	}

	var events Events
	minedHere := make([]model.TxState, 0, len(pending))
	for id, state := range pending {
		events.Mined = append(events.Mined, model.MinedTx{TxID: id, Index: index[id]})
		state.MinedHeight = block.Height
		state.MinedIndex = index[id]
		state.MinedHash = block.Hash
		minedHere = append(minedHere, state)
	}
	sort.Slice(events.Mined, func(i, j int) bool { return events.Mined[i].Index < events.Mined[j].Index })

	// Matured once height - mined + 1 >= confirmations.
	if block.Height+1 < c.confirmations {
		return events, nil
	}
	threshold := block.Height + 1 - c.confirmations

	if threshold > 0 {
		matured, err := view.PendingMinedUpTo(ctx, threshold)
		if err != nil {
			return Events{}, fmt.Errorf("lookup matured transactions: %w", err)
		}
		for _, state := range matured {
			if _, again := pending[state.TxID]; again {
				continue
			}
			events.Matured = append(events.Matured, state)
		}
	}
	if threshold == block.Height {
		events.Matured = append(events.Matured, minedHere...)
	}

	sort.SliceStable(events.Matured, func(i, j int) bool {
		a, b := events.Matured[i], events.Matured[j]
		if a.MinedHeight != b.MinedHeight {
			return a.MinedHeight < b.MinedHeight
		}
		return a.MinedIndex < b.MinedIndex
	})
	return events, nil
}
