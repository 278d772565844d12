package model

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// TxStatus is the position of a transaction in its state machine.
type TxStatus uint8

const (
	TxPending TxStatus = iota + 1
	TxChecked
	TxIndexed
	TxInvalid
)

func (s TxStatus) String() string {
	switch s {
	case TxPending:
		return "pending"
	case TxChecked:
		return "checked"
	case TxIndexed:
		return "indexed"
	case TxInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// InvalidReason classifies a rejected transaction.
type InvalidReason string

const (
	ReasonConservationViolation    InvalidReason = "conservation_violation"
	ReasonProofInvalid             InvalidReason = "proof_invalid"
	ReasonFrozenInput              InvalidReason = "frozen_input"
	ReasonInvalidParent            InvalidReason = "invalid_parent"
	ReasonUnauthorizedAnnouncement InvalidReason = "unauthorized_announcement"
)

// Verdict is the outcome of verifying one transaction.
type Verdict struct {
	Valid  bool
	Reason InvalidReason
	Detail string
}

// ValidVerdict is the verdict of a transaction passing every check.
func ValidVerdict() Verdict {
	return Verdict{Valid: true}
}

// Invalid builds a rejection verdict.
func Invalid(reason InvalidReason, detail string) Verdict {
	return Verdict{Reason: reason, Detail: detail}
}

func (v Verdict) String() string {
	if v.Valid {
		return "valid"
	}
	if v.Detail == "" {
		return string(v.Reason)
	}
	return string(v.Reason) + ": " + v.Detail
}

// Status maps a verdict to the state it is committed as.
// FrozenInput depends on issuer controlled state and stays Checked; other
// rejections are terminal.
func (v Verdict) Status() TxStatus {
	switch {
	case v.Valid:
		return TxIndexed
	case v.Reason == ReasonFrozenInput:
		return TxChecked
	default:
		return TxInvalid
	}
}

// TxState is the durable record kept per transaction id.
type TxState struct {
	TxID    chainhash.Hash
	Status  TxStatus
	Verdict Verdict
	// Tx is the serialized transaction.
	Tx []byte
	// Proofs is the encoded proof bundle submitted with the transaction.
	Proofs    []byte
	FirstSeen time.Time

	// Zero heights mean unset.
	MinedHeight   uint64
	MinedIndex    uint32
	MinedHash     chainhash.Hash
	CheckedHeight uint64
	IndexedHeight uint64
}

// IsMined reports whether the transaction is included in a committed block.
func (s TxState) IsMined() bool {
	return s.MinedHeight > 0
}
