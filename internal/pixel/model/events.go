package model

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// BlockIndexed is published after a block is committed.
type BlockIndexed struct {
	Height        uint64
	Hash          chainhash.Hash
	Transactions  int
	Announcements int
	Confirmed     int
	Rejected      int
}

func (BlockIndexed) EventName() string { return "block_indexed" }

// AnnouncementObserved is published when an announcement takes effect, at the
// block where it reaches the confirmation depth.
type AnnouncementObserved struct {
	Announcement Announcement
	Height       uint64
	BlockHash    chainhash.Hash
}

func (AnnouncementObserved) EventName() string { return "announcement_observed" }

// TxConfirmed is published once a valid transaction reaches the confirmation depth.
type TxConfirmed struct {
	TxID        chainhash.Hash
	MinedHeight uint64
	Height      uint64
	BlockHash   chainhash.Hash
	Outputs     []InventoryOutput
}

func (TxConfirmed) EventName() string { return "tx_confirmed" }

// TxRejected is published when a matured transaction fails verification.
type TxRejected struct {
	TxID    chainhash.Hash
	Status  TxStatus
	Verdict Verdict
	Height  uint64
}

func (TxRejected) EventName() string { return "tx_rejected" }

// Reorged is published after storage rolled back to Fork.
type Reorged struct {
	From Progress
	Fork Progress
}

func (Reorged) EventName() string { return "reorged" }
