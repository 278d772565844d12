package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// OutPoint references a transaction output.
type OutPoint struct {
	TxID chainhash.Hash
	Vout uint32
}

// OutPointFromWire converts a wire outpoint.
func OutPointFromWire(op wire.OutPoint) OutPoint {
	return OutPoint{TxID: op.Hash, Vout: op.Index}
}

// Wire converts the outpoint to its wire form.
func (o OutPoint) Wire() wire.OutPoint {
	return wire.OutPoint{Hash: o.TxID, Index: o.Vout}
}

// String formats the outpoint as "txid:vout".
func (o OutPoint) String() string {
	return o.TxID.String() + ":" + strconv.FormatUint(uint64(o.Vout), 10)
}

// ParseOutPoint parses the "txid:vout" form produced by String.
func ParseOutPoint(s string) (OutPoint, error) {
	txid, vout, ok := strings.Cut(s, ":")
	if !ok {
		return OutPoint{}, fmt.Errorf("outpoint %q: missing vout", s)
	}
	hash, err := chainhash.NewHashFromStr(txid)
	if err != nil {
		return OutPoint{}, fmt.Errorf("outpoint %q: %w", s, err)
	}
	n, err := strconv.ParseUint(vout, 10, 32)
	if err != nil {
		return OutPoint{}, fmt.Errorf("outpoint %q: %w", s, err)
	}
	return OutPoint{TxID: *hash, Vout: uint32(n)}, nil
}
