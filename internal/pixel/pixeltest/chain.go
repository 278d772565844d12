package pixeltest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
)

// ErrUnavailable is returned by a Chain told to fail.
var ErrUnavailable = errors.New("chain source unavailable")

// Chain is an in-memory chain source. Height 0 holds a genesis block.
type Chain struct {
	mu       sync.Mutex
	blocks   []*model.Block
	outputs  map[wire.OutPoint]*wire.TxOut
	branch   uint32
	failures int
	calls    map[string]int
}

// NewChain returns a chain holding only its genesis block.
func NewChain() *Chain {
	c := &Chain{
		outputs: make(map[wire.OutPoint]*wire.TxOut),
		calls:   make(map[string]int),
	}
	c.blocks = append(c.blocks, c.newBlock(0, chainhash.Hash{}, nil))
	return c
}

// Fund creates an output that exists on chain before any indexed block.
func (c *Chain) Fund(pkScript []byte, value int64) Output {
	c.mu.Lock()
	defer c.mu.Unlock()
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(&wire.OutPoint{Hash: chainhash.DoubleHashH([]byte(fmt.Sprintf("fund-%d", len(c.outputs)))), Index: 0}, nil, nil))
	tx.AddTxOut(wire.NewTxOut(value, pkScript))
	op := wire.OutPoint{Hash: tx.TxHash(), Index: 0}
	c.outputs[op] = tx.TxOut[0]
	return Output{OutPoint: op, TxOut: tx.TxOut[0]}
}

// AddBlock appends a block with txs on top of the tip.
func (c *Chain) AddBlock(txs ...*wire.MsgTx) *model.Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	tip := c.blocks[len(c.blocks)-1]
	b := c.newBlock(tip.Height+1, tip.Hash, txs)
	c.blocks = append(c.blocks, b)
	for _, tx := range txs {
		for i, out := range tx.TxOut {
			c.outputs[wire.OutPoint{Hash: tx.TxHash(), Index: uint32(i)}] = out
		}
	}
	return b
}

// Fork drops every block above height. Blocks added afterwards get different hashes.
func (c *Chain) Fork(height uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blocks = c.blocks[:height+1]
	c.branch++
}

// FailNext makes the next n calls fail with ErrUnavailable.
func (c *Chain) FailNext(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = n
}

// Calls returns how often method was called.
func (c *Chain) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// Tip returns the best block.
func (c *Chain) Tip() *model.Block {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.blocks[len(c.blocks)-1]
}

func (c *Chain) BestHeight(_ context.Context) (uint64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("BestHeight"); err != nil {
		return 0, err
	}
	return uint64(len(c.blocks) - 1), nil
}

func (c *Chain) BlockHash(_ context.Context, height uint64) (chainhash.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("BlockHash"); err != nil {
		return chainhash.Hash{}, err
	}
	if height >= uint64(len(c.blocks)) {
		return chainhash.Hash{}, fmt.Errorf("no block at height %d", height)
	}
	return c.blocks[height].Hash, nil
}

func (c *Chain) Block(_ context.Context, height uint64) (*model.Block, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("Block"); err != nil {
		return nil, err
	}
	if height >= uint64(len(c.blocks)) {
		return nil, fmt.Errorf("no block at height %d", height)
	}
	return c.blocks[height], nil
}

func (c *Chain) TxOut(_ context.Context, op model.OutPoint) (*wire.TxOut, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.call("TxOut"); err != nil {
		return nil, err
	}
	out, ok := c.outputs[op.Wire()]
	if !ok {
		return nil, fmt.Errorf("unknown output %s", op)
	}
	return out, nil
}

func (c *Chain) call(method string) error {
	c.calls[method]++
	if c.failures > 0 {
		c.failures--
		return ErrUnavailable
	}
	return nil
}

func (c *Chain) newBlock(height uint64, prev chainhash.Hash, txs []*wire.MsgTx) *model.Block {
	header := wire.BlockHeader{
		Version:   2,
		PrevBlock: prev,
		Timestamp: time.Unix(1_700_000_000+int64(height)*600, 0),
		Bits:      0x207fffff,
		Nonce:     c.branch<<16 | uint32(height),
	}
	if len(txs) > 0 {
		header.MerkleRoot = txs[0].TxHash()
	}
	return &model.Block{
		Height:    height,
		Hash:      header.BlockHash(),
		PrevHash:  prev,
		Timestamp: header.Timestamp,
		Txs:       txs,
	}
}
