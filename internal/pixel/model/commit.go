package model

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// MinedTx is a transaction included in the committed block at Index.
type MinedTx struct {
	TxID  chainhash.Hash
	Index uint32
}

// TxVerdict is the verdict reached for a matured transaction.
type TxVerdict struct {
	TxID    chainhash.Hash
	Verdict Verdict
}

// SpentOutput marks an inventory output as consumed on chain.
type SpentOutput struct {
	OutPoint OutPoint
	SpentBy  chainhash.Hash
	// Burned is set when the spender does not carry the pixels forward: it
	// is unknown to the node or was rejected. A valid spender clears it.
	Burned bool
}

// BlockCommit is everything applied to storage for one block, atomically.
type BlockCommit struct {
	Block    Progress
	PrevHash chainhash.Hash

	// Included lists every transaction of the block with its position.
	Included []MinedTx
	// Mined are the pending transactions among Included.
	Mined    []MinedTx
	Verdicts []TxVerdict
	// Observed are the authorized announcements mined in the block. They
	// take effect once listed in Activated of a later or the same commit.
	Observed []Announcement
	// Activated are observed announcements reaching the confirmation depth,
	// in chain order.
	Activated []Announcement
	Created   []InventoryOutput
	Spent     []SpentOutput
}
