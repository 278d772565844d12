// Package subindexer extracts typed events from a fetched block. Subindexers
// only read the block and a read-only view of storage; they never write.
package subindexer

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

// View is the read-only storage access subindexers need.
type View interface {
	PendingByTxIDs(ctx context.Context, ids []chainhash.Hash) (map[chainhash.Hash]model.TxState, error)
	PendingMinedUpTo(ctx context.Context, height uint64) ([]model.TxState, error)
	PendingAnnouncementsUpTo(ctx context.Context, height uint64) ([]model.Announcement, error)
}

// Subindexer extracts one kind of event from a block.
type Subindexer interface {
	Name() string
	Extract(ctx context.Context, block *model.Block, view View) (Events, error)
}

// Events is what subindexers found in one block.
type Events struct {
	// Announcements are the well formed announcement markers, in block order.
	Announcements []model.Announcement
	// Activated are announcements of earlier blocks reaching the confirmation
	// depth, in chain order.
	Activated []model.Announcement
	// ActivateObserved is set when announcements of this block take effect
	// immediately.
	ActivateObserved bool
	// Mined are pending transactions included in the block.
	Mined []model.MinedTx
	// Matured are pending transactions that reached the confirmation depth,
	// ordered by chain position. Those mined in this block carry MinedHeight
	// set to the block height.
	Matured []model.TxState
}

func (e *Events) merge(other Events) {
	e.Announcements = append(e.Announcements, other.Announcements...)
	e.Activated = append(e.Activated, other.Activated...)
	e.ActivateObserved = e.ActivateObserved || other.ActivateObserved
	e.Mined = append(e.Mined, other.Mined...)
	e.Matured = append(e.Matured, other.Matured...)
}
