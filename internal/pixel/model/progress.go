package model

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// Progress is the last block durably processed.
type Progress struct {
	Height uint64
	Hash   chainhash.Hash
}

// IsZero reports whether nothing has been processed yet.
func (p Progress) IsZero() bool {
	return p.Height == 0 && p.Hash == chainhash.Hash{}
}
