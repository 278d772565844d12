package model

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// Block is a fetched block positioned at a height.
type Block struct {
	Height    uint64
	Hash      chainhash.Hash
	PrevHash  chainhash.Hash
	Timestamp time.Time
	Txs       []*wire.MsgTx
}

// Progress returns the progress marker reached once the block is committed.
func (b *Block) Progress() Progress {
	return Progress{Height: b.Height, Hash: b.Hash}
}

// BlockFromWire positions a wire block at height.
func BlockFromWire(height uint64, msg *wire.MsgBlock) *Block {
	return &Block{
		Height:    height,
		Hash:      msg.BlockHash(),
		PrevHash:  msg.Header.PrevBlock,
		Timestamp: msg.Header.Timestamp,
		Txs:       msg.Transactions,
	}
}
