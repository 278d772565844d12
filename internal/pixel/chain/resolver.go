package chain

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
	"github.com/goodnatureofminers/pixelnode/pkg/workerpool"
)

// Resolved holds the outputs spent by a set of transactions.
type Resolved struct {
	Prevouts map[wire.OutPoint]*wire.TxOut
	// Parents holds the spent outputs that are known pixel outputs.
	Parents map[model.OutPoint]model.InventoryOutput
}

// Resolver fetches the outputs spent by candidate transactions: inventory
// first, then outputs of the block being indexed, then the chain source.
type Resolver struct {
	source    Source
	inventory Inventory
	workers   int
	batchSize int
}

// NewResolver constructs a Resolver fetching from the source with workers
// goroutines and reading the inventory batchSize outpoints at a time.
func NewResolver(source Source, inventory Inventory, workers, batchSize int) *Resolver {
	if workers < 1 {
		workers = 1
	}
	if batchSize < 1 {
		batchSize = 1
	}
	return &Resolver{source: source, inventory: inventory, workers: workers, batchSize: batchSize}
}

// Resolve returns the outputs spent by txs. block may be nil.
func (r *Resolver) Resolve(ctx context.Context, block *model.Block, txs []*wire.MsgTx) (Resolved, error) {
	res := Resolved{
		Prevouts: make(map[wire.OutPoint]*wire.TxOut),
		Parents:  make(map[model.OutPoint]model.InventoryOutput),
	}

	ops := spentOutPoints(txs)
	if len(ops) == 0 {
		return res, nil
	}

	for start := 0; start < len(ops); start += r.batchSize {
		end := min(start+r.batchSize, len(ops))
		known, err := r.inventory.InventoryOutputs(ctx, ops[start:end])
		if err != nil {
			return Resolved{}, fmt.Errorf("lookup inventory outputs: %w", err)
		}
		for op, out := range known {
			res.Parents[op] = out
			res.Prevouts[op.Wire()] = wire.NewTxOut(out.Value, out.PkScript)
		}
	}

	local := blockOutputs(block)
	var missing []model.OutPoint
	for _, op := range ops {
		if _, ok := res.Prevouts[op.Wire()]; ok {
			continue
		}
		if out, ok := local[op.Wire()]; ok {
			res.Prevouts[op.Wire()] = out
			continue
		}
		missing = append(missing, op)
	}
	if len(missing) == 0 {
		return res, nil
	}

	var mu sync.Mutex
	err := workerpool.Process(ctx, r.workers, missing, func(ctx context.Context, op model.OutPoint) error {
		out, err := r.source.TxOut(ctx, op)
		if err != nil {
			return &SourceError{Op: "tx_out", Err: fmt.Errorf("%s: %w", op, err)}
		}
		mu.Lock()
		res.Prevouts[op.Wire()] = out
		mu.Unlock()
		return nil
	})
	if err != nil {
		return Resolved{}, err
	}
	return res, nil
}

// spentOutPoints returns the distinct non-coinbase outpoints spent by txs in a stable order.
func spentOutPoints(txs []*wire.MsgTx) []model.OutPoint {
	seen := make(map[model.OutPoint]struct{})
	var out []model.OutPoint
	for _, tx := range txs {
		for _, in := range tx.TxIn {
			if isCoinbase(in.PreviousOutPoint) {
				continue
			}
			op := model.OutPointFromWire(in.PreviousOutPoint)
			if _, ok := seen[op]; ok {
				continue
			}
			seen[op] = struct{}{}
			out = append(out, op)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TxID != out[j].TxID {
			return out[i].TxID.String() < out[j].TxID.String()
		}
		return out[i].Vout < out[j].Vout
	})
	return out
}

func blockOutputs(block *model.Block) map[wire.OutPoint]*wire.TxOut {
	out := make(map[wire.OutPoint]*wire.TxOut)
	if block == nil {
		return out
	}
	for _, tx := range block.Txs {
		txid := tx.TxHash()
		for i, o := range tx.TxOut {
			out[wire.OutPoint{Hash: txid, Index: uint32(i)}] = o
		}
	}
	return out
}

func isCoinbase(op wire.OutPoint) bool {
	return op.Index == wire.MaxPrevOutIndex && op.Hash == (chainhash.Hash{})
}
