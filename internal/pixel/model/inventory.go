package model

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// InventoryOutput is a pixel carrying output created by an indexed transaction.
type InventoryOutput struct {
	OutPoint      OutPoint
	Pixel         Pixel
	Value         int64
	PkScript      []byte
	CreatedHeight uint64
	SpentBy       chainhash.Hash
	SpentHeight   uint64
	BurnedHeight  uint64
}

// IsSpent reports whether a transaction of the best chain consumed the output.
func (o InventoryOutput) IsSpent() bool {
	return o.SpentHeight > 0
}

// IsBurned reports whether the output was spent without carrying its pixels forward.
func (o InventoryOutput) IsBurned() bool {
	return o.BurnedHeight > 0
}

// ChromaInfo is the registry entry of an issued chroma.
type ChromaInfo struct {
	Chroma           Chroma
	RegisteredHeight uint64
	TotalSupply      uint64
}
