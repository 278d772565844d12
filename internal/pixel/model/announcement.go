package model

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// AnnouncementKind enumerates the protocol declarations carried on chain.
type AnnouncementKind uint8

const (
	AnnouncementIssue AnnouncementKind = iota + 1
	AnnouncementFreeze
	AnnouncementUnfreeze
)

func (k AnnouncementKind) String() string {
	switch k {
	case AnnouncementIssue:
		return "issue"
	case AnnouncementFreeze:
		return "freeze"
	case AnnouncementUnfreeze:
		return "unfreeze"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Valid reports whether k is a known kind.
func (k AnnouncementKind) Valid() bool {
	return k >= AnnouncementIssue && k <= AnnouncementUnfreeze
}

// Announcement is an immutable declaration found in a transaction output.
type Announcement struct {
	TxID   chainhash.Hash
	Vout   uint32
	Kind   AnnouncementKind
	Chroma Chroma
	// Amount is set for issue announcements.
	Amount uint64
	// Target is set for freeze and unfreeze announcements.
	Target OutPoint
}

// ID is the identity of the announcement, "txid:vout:kind".
func (a Announcement) ID() string {
	return fmt.Sprintf("%s:%d:%s", a.TxID, a.Vout, a.Kind)
}
