package archive

import (
	"time"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
	"github.com/goodnatureofminers/pixelnode/pkg/safe"
)

// BlockRow is one row of pixel_blocks.
type BlockRow struct {
	Network       model.Network
	Height        uint64
	Hash          string
	Transactions  uint32
	Announcements uint32
	Confirmed     uint32
	Rejected      uint32
	IndexedAt     time.Time
}

// TransactionRow is one row of pixel_transactions. Rows are written when a
// transaction is confirmed or rejected.
type TransactionRow struct {
	Network     model.Network
	TxID        string
	Status      string
	Reason      string
	Detail      string
	MinedHeight uint64
	Height      uint64
	BlockHash   string
	Outputs     uint32
	IndexedAt   time.Time
}

// AnnouncementRow is one row of pixel_announcements.
type AnnouncementRow struct {
	Network    model.Network
	TxID       string
	Vout       uint32
	Kind       string
	Chroma     string
	Amount     uint64
	TargetTxID string
	TargetVout uint32
	Height     uint64
	BlockHash  string
	IndexedAt  time.Time
}

func blockRow(network model.Network, ev model.BlockIndexed, now time.Time) BlockRow {
	return BlockRow{
		Network:       network,
		Height:        ev.Height,
		Hash:          ev.Hash.String(),
		Transactions:  count(ev.Transactions),
		Announcements: count(ev.Announcements),
		Confirmed:     count(ev.Confirmed),
		Rejected:      count(ev.Rejected),
		IndexedAt:     now,
	}
}

func confirmedRow(network model.Network, ev model.TxConfirmed, now time.Time) TransactionRow {
	return TransactionRow{
		Network:     network,
		TxID:        ev.TxID.String(),
		Status:      model.TxIndexed.String(),
		MinedHeight: ev.MinedHeight,
		Height:      ev.Height,
		BlockHash:   ev.BlockHash.String(),
		Outputs:     count(len(ev.Outputs)),
		IndexedAt:   now,
	}
}

func rejectedRow(network model.Network, ev model.TxRejected, now time.Time) TransactionRow {
	return TransactionRow{
		Network:   network,
		TxID:      ev.TxID.String(),
		Status:    ev.Status.String(),
		Reason:    string(ev.Verdict.Reason),
		Detail:    ev.Verdict.Detail,
		Height:    ev.Height,
		IndexedAt: now,
	}
}

func announcementRow(network model.Network, ev model.AnnouncementObserved, now time.Time) AnnouncementRow {
	ann := ev.Announcement
	row := AnnouncementRow{
		Network:   network,
		TxID:      ann.TxID.String(),
		Vout:      ann.Vout,
		Kind:      ann.Kind.String(),
		Chroma:    ann.Chroma.String(),
		Amount:    ann.Amount,
		Height:    ev.Height,
		BlockHash: ev.BlockHash.String(),
		IndexedAt: now,
	}
	if ann.Kind != model.AnnouncementIssue {
		row.TargetTxID = ann.Target.TxID.String()
		row.TargetVout = ann.Target.Vout
	}
	return row
}

func count(n int) uint32 {
	v, err := safe.Uint32(n)
	if err != nil {
		return 0
	}
	return v
}
