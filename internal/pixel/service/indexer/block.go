package indexer

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/chain"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/protocol"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/subindexer"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/verifier"
)

// blockPlan is the work derived from one block. The first len(matured)
// candidates are full verifications of matured transactions; the rest only
// authorize the announcements carried by transactions of the block.
type blockPlan struct {
	block      *model.Block
	mined      []model.MinedTx
	matured    []model.TxState
	activated  []model.Announcement
	immediate  bool
	candidates []*verifier.Candidate
	verdicts   []model.Verdict
}

type blockResult struct {
	announcements []model.Announcement
	confirmed     []model.TxConfirmed
	rejected      []model.TxRejected
}

func newBlockPlan(block *model.Block, events subindexer.Events, snapshot *model.Snapshot) (*blockPlan, error) {
	p := &blockPlan{
		block:     block,
		mined:     events.Mined,
		matured:   events.Matured,
		activated: events.Activated,
		immediate: events.ActivateObserved,
	}

	for _, state := range events.Matured {
		c, err := decodeCandidate(state)
		if err != nil {
			return nil, &FatalError{Stage: stageDecode, Height: block.Height, Hash: block.Hash, TxID: state.TxID, Err: err}
		}
		c.Snapshot = snapshot
		p.candidates = append(p.candidates, c)
	}

	txs := make(map[chainhash.Hash]*wire.MsgTx, len(block.Txs))
	for _, tx := range block.Txs {
		txs[tx.TxHash()] = tx
	}
	var announcing []chainhash.Hash
	grouped := make(map[chainhash.Hash][]model.Announcement)
	for _, ann := range events.Announcements {
		if _, ok := grouped[ann.TxID]; !ok {
			announcing = append(announcing, ann.TxID)
		}
		grouped[ann.TxID] = append(grouped[ann.TxID], ann)
	}
	for _, txid := range announcing {
		tx, ok := txs[txid]
		if !ok {
			continue
		}
		p.candidates = append(p.candidates, &verifier.Candidate{
			TxID:          txid,
			Tx:            tx,
			Announcements: grouped[txid],
			Snapshot:      snapshot,
			AuthorizeOnly: true,
		})
	}
	return p, nil
}

func decodeCandidate(state model.TxState) (*verifier.Candidate, error) {
	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(state.Tx)); err != nil {
		return nil, fmt.Errorf("decode stored transaction: %w", err)
	}
	if tx.TxHash() != state.TxID {
		return nil, fmt.Errorf("stored transaction hashes to %s", tx.TxHash())
	}
	bundle, err := protocol.DecodeBundle(state.Proofs)
	if err != nil {
		return nil, fmt.Errorf("decode stored proofs: %w", err)
	}
	anns, _ := protocol.TxAnnouncements(tx)
	return &verifier.Candidate{
		TxID:          state.TxID,
		Tx:            tx,
		Bundle:        bundle,
		Announcements: anns,
	}, nil
}

func (p *blockPlan) txs() []*wire.MsgTx {
	out := make([]*wire.MsgTx, len(p.candidates))
	for i, c := range p.candidates {
		out[i] = c.Tx
	}
	return out
}

func (p *blockPlan) attach(r chain.Resolved) {
	for _, c := range p.candidates {
		c.Prevouts = r.Prevouts
		c.Parents = r.Parents
	}
}

// commit turns the verdicts into the storage commit of the block and the
// events to publish once it is durable.
func (p *blockPlan) commit() (model.BlockCommit, blockResult) {
	c := model.BlockCommit{
		Block:    p.block.Progress(),
		PrevHash: p.block.PrevHash,
		Mined:    p.mined,
	}
	var r blockResult

	// Every spend of the block is recorded. Pixels spent by a transaction
	// nobody submitted are burned; pending ones are settled by their verdict.
	pending := make(map[chainhash.Hash]struct{}, len(p.mined))
	for _, m := range p.mined {
		pending[m.TxID] = struct{}{}
	}
	for idx, tx := range p.block.Txs {
		txid := tx.TxHash()
		c.Included = append(c.Included, model.MinedTx{TxID: txid, Index: uint32(idx)})
		_, known := pending[txid]
		c.Spent = append(c.Spent, spends(tx, txid, !known)...)
	}

	for n, state := range p.matured {
		cand, verdict := p.candidates[n], p.verdicts[n]
		c.Verdicts = append(c.Verdicts, model.TxVerdict{TxID: cand.TxID, Verdict: verdict})
		c.Spent = append(c.Spent, spends(cand.Tx, cand.TxID, !verdict.Valid)...)
		if !verdict.Valid {
			r.rejected = append(r.rejected, model.TxRejected{
				TxID:    cand.TxID,
				Status:  verdict.Status(),
				Verdict: verdict,
				Height:  p.block.Height,
			})
			continue
		}

		created := createdOutputs(cand, p.block.Height)
		c.Created = append(c.Created, created...)
		r.confirmed = append(r.confirmed, model.TxConfirmed{
			TxID:        cand.TxID,
			MinedHeight: state.MinedHeight,
			Height:      p.block.Height,
			BlockHash:   p.block.Hash,
			Outputs:     created,
		})
	}

	for n := len(p.matured); n < len(p.candidates); n++ {
		if !p.verdicts[n].Valid {
			continue
		}
		c.Observed = append(c.Observed, p.candidates[n].Announcements...)
	}
	c.Activated = append(c.Activated, p.activated...)
	if p.immediate {
		c.Activated = append(c.Activated, c.Observed...)
	}
	r.announcements = c.Activated
	return c, r
}

func spends(tx *wire.MsgTx, txid chainhash.Hash, burned bool) []model.SpentOutput {
	out := make([]model.SpentOutput, 0, len(tx.TxIn))
	for _, in := range tx.TxIn {
		out = append(out, model.SpentOutput{
			OutPoint: model.OutPointFromWire(in.PreviousOutPoint),
			SpentBy:  txid,
			Burned:   burned,
		})
	}
	return out
}

func createdOutputs(c *verifier.Candidate, height uint64) []model.InventoryOutput {
	vouts := make([]uint32, 0, len(c.Bundle.Outputs))
	for vout := range c.Bundle.Outputs {
		vouts = append(vouts, vout)
	}
	sort.Slice(vouts, func(i, j int) bool { return vouts[i] < vouts[j] })

	var out []model.InventoryOutput
	for _, vout := range vouts {
		px := c.Bundle.Outputs[vout].Pixel()
		if px.IsEmpty() || int(vout) >= len(c.Tx.TxOut) {
			continue
		}
		txOut := c.Tx.TxOut[vout]
		out = append(out, model.InventoryOutput{
			OutPoint:      model.OutPoint{TxID: c.TxID, Vout: vout},
			Pixel:         px,
			Value:         txOut.Value,
			PkScript:      txOut.PkScript,
			CreatedHeight: height,
		})
	}
	return out
}
