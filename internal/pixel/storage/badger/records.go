package badger

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
)

const progressKey = "progress"

type txRecord struct {
	TxID          chainhash.Hash
	Status        uint8
	Valid         bool
	Reason        string
	Detail        string
	Tx            []byte
	Proofs        []byte
	FirstSeen     time.Time
	MinedHeight   uint64
	MinedIndex    uint32
	MinedHash     chainhash.Hash
	CheckedHeight uint64
	IndexedHeight uint64
}

func (r txRecord) model() model.TxState {
	return model.TxState{
		TxID:   r.TxID,
		Status: model.TxStatus(r.Status),
		Verdict: model.Verdict{
			Valid:  r.Valid,
			Reason: model.InvalidReason(r.Reason),
			Detail: r.Detail,
		},
		Tx:            r.Tx,
		Proofs:        r.Proofs,
		FirstSeen:     r.FirstSeen,
		MinedHeight:   r.MinedHeight,
		MinedIndex:    r.MinedIndex,
		MinedHash:     r.MinedHash,
		CheckedHeight: r.CheckedHeight,
		IndexedHeight: r.IndexedHeight,
	}
}

func (r *txRecord) setVerdict(v model.Verdict) {
	r.Valid = v.Valid
	r.Reason = string(v.Reason)
	r.Detail = v.Detail
}

type inventoryRecord struct {
	TxID          chainhash.Hash
	Vout          uint32
	Chroma        model.Chroma
	Amount        uint64
	Value         int64
	PkScript      []byte
	CreatedHeight uint64
	SpentBy       chainhash.Hash
	SpentHeight   uint64
	BurnedHeight  uint64
}

func newInventoryRecord(o model.InventoryOutput) inventoryRecord {
	return inventoryRecord{
		TxID:          o.OutPoint.TxID,
		Vout:          o.OutPoint.Vout,
		Chroma:        o.Pixel.Chroma,
		Amount:        o.Pixel.Amount,
		Value:         o.Value,
		PkScript:      o.PkScript,
		CreatedHeight: o.CreatedHeight,
		SpentBy:       o.SpentBy,
		SpentHeight:   o.SpentHeight,
		BurnedHeight:  o.BurnedHeight,
	}
}

func (r inventoryRecord) model() model.InventoryOutput {
	return model.InventoryOutput{
		OutPoint:      model.OutPoint{TxID: r.TxID, Vout: r.Vout},
		Pixel:         model.NewPixel(r.Chroma, r.Amount),
		Value:         r.Value,
		PkScript:      r.PkScript,
		CreatedHeight: r.CreatedHeight,
		SpentBy:       r.SpentBy,
		SpentHeight:   r.SpentHeight,
		BurnedHeight:  r.BurnedHeight,
	}
}

type announcementRecord struct {
	TxID       chainhash.Hash
	Vout       uint32
	Kind       uint8
	Chroma     model.Chroma
	Amount     uint64
	TargetTxID chainhash.Hash
	TargetVout uint32
	Height     uint64
	Position   int

	// ActivatedHeight is the height at which the announcement took effect,
	// zero while it waits for confirmations.
	ActivatedHeight uint64
}

func newAnnouncementRecord(a model.Announcement, height uint64, position int) announcementRecord {
	return announcementRecord{
		TxID:       a.TxID,
		Vout:       a.Vout,
		Kind:       uint8(a.Kind),
		Chroma:     a.Chroma,
		Amount:     a.Amount,
		TargetTxID: a.Target.TxID,
		TargetVout: a.Target.Vout,
		Height:     height,
		Position:   position,
	}
}

func (r announcementRecord) model() model.Announcement {
	return model.Announcement{
		TxID:   r.TxID,
		Vout:   r.Vout,
		Kind:   model.AnnouncementKind(r.Kind),
		Chroma: r.Chroma,
		Amount: r.Amount,
		Target: model.OutPoint{TxID: r.TargetTxID, Vout: r.TargetVout},
	}
}

type frozenRecord struct {
	TxID     chainhash.Hash
	Vout     uint32
	Chroma   model.Chroma
	FrozenBy string
	Height   uint64
}

func (r frozenRecord) model() model.FrozenOutput {
	return model.FrozenOutput{
		OutPoint: model.OutPoint{TxID: r.TxID, Vout: r.Vout},
		Chroma:   r.Chroma,
	}
}

// positionRecord places a transaction of the best chain.
type positionRecord struct {
	TxID      chainhash.Hash
	Height    uint64
	Index     uint32
	BlockHash chainhash.Hash
}

type chromaRecord struct {
	Chroma           model.Chroma
	RegisteredHeight uint64
	TotalSupply      uint64
}

func (r chromaRecord) model() model.ChromaInfo {
	return model.ChromaInfo{
		Chroma:           r.Chroma,
		RegisteredHeight: r.RegisteredHeight,
		TotalSupply:      r.TotalSupply,
	}
}

type blockRecord struct {
	Height   uint64
	Hash     chainhash.Hash
	PrevHash chainhash.Hash
}

type progressRecord struct {
	Height uint64
	Hash   chainhash.Hash
}

func txKey(id chainhash.Hash) string {
	return id.String()
}

func outPointKey(op model.OutPoint) string {
	return op.String()
}

func frozenKey(op model.OutPoint, chroma model.Chroma) string {
	return op.String() + "/" + chroma.String()
}
