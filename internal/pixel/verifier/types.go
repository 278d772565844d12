package verifier

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/protocol"
)

// Metrics records verification outcomes.
type Metrics interface {
	ObserveVerify(verdict model.Verdict, started time.Time)
}

// BatchOutput is a pixel output created by a transaction of the same batch.
type BatchOutput struct {
	Pixel    model.Pixel
	Position int
}

// Candidate is a transaction handed to the engine with everything it needs.
// Candidates are read-only once submitted.
type Candidate struct {
	TxID          chainhash.Hash
	Tx            *wire.MsgTx
	Bundle        protocol.ProofBundle
	Announcements []model.Announcement

	// Prevouts holds the outputs spent by Tx, as far as they could be resolved.
	Prevouts map[wire.OutPoint]*wire.TxOut
	// Parents holds the inventory outputs spent by Tx.
	Parents  map[model.OutPoint]model.InventoryOutput
	Snapshot *model.Snapshot

	// AuthorizeOnly limits the checks to announcement authorization. It is
	// used for transactions carrying announcements without a pending record.
	AuthorizeOnly bool

	// Position and Batch are filled by Pool.CheckBatch.
	Position int
	Batch    map[model.OutPoint]BatchOutput
}

// prevOuts adapts the resolved prevouts to txscript. Unknown outputs resolve
// to an empty output so sighash midstate computation never dereferences nil.
type prevOuts map[wire.OutPoint]*wire.TxOut

func (p prevOuts) FetchPrevOutput(op wire.OutPoint) *wire.TxOut {
	if out, ok := p[op]; ok && out != nil {
		return out
	}
	return &wire.TxOut{}
}
