// Package verifier checks pixel transfers: proofs, parents, frozen inputs,
// announcement authorization and per-chroma conservation.
package verifier

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/protocol"
	"github.com/goodnatureofminers/pixelnode/pkg/safe"
)

// Engine is a stateless verifier. It is safe for concurrent use.
type Engine struct {
	flags txscript.ScriptFlags
}

// NewEngine returns an engine executing scripts with the standard policy flags.
func NewEngine() *Engine {
	return &Engine{flags: txscript.StandardVerifyFlags}
}

// run holds the per-candidate state of one Verify call.
type run struct {
	c         *Candidate
	flags     txscript.ScriptFlags
	fetcher   prevOuts
	sigHashes *txscript.TxSigHashes
	executed  map[int]error
}

// Verify returns the verdict for c. Checks run in a fixed order and the first
// failure wins.
func (e *Engine) Verify(c *Candidate) model.Verdict {
	if c.Tx == nil {
		return model.Invalid(model.ReasonProofInvalid, "missing transaction")
	}
	fetcher := prevOuts(c.Prevouts)
	r := &run{
		c:         c,
		flags:     e.flags,
		fetcher:   fetcher,
		sigHashes: txscript.NewTxSigHashes(c.Tx, fetcher),
		executed:  make(map[int]error),
	}

	if c.AuthorizeOnly {
		return r.checkAnnouncements()
	}

	checks := []func() model.Verdict{
		r.checkInputProofs,
		r.checkOutputProofs,
		r.checkParents,
		r.checkFrozen,
		r.checkAnnouncements,
		r.checkConservation,
	}
	for _, check := range checks {
		if v := check(); !v.Valid {
			return v
		}
	}
	return model.ValidVerdict()
}

func (r *run) checkInputProofs() model.Verdict {
	tx := r.c.Tx
	for _, idx := range sortedKeys(r.c.Bundle.Inputs) {
		proof := r.c.Bundle.Inputs[idx]
		if int(idx) >= len(tx.TxIn) {
			return model.Invalid(model.ReasonProofInvalid, fmt.Sprintf("proof for missing input %d", idx))
		}
		in := tx.TxIn[idx]
		prev, ok := r.c.Prevouts[in.PreviousOutPoint]
		if !ok || prev == nil {
			return model.Invalid(model.ReasonProofInvalid, fmt.Sprintf("input %d: unknown prevout %s", idx, in.PreviousOutPoint))
		}
		expected, err := proof.PkScript()
		if err != nil {
			return model.Invalid(model.ReasonProofInvalid, fmt.Sprintf("input %d: %v", idx, err))
		}
		if !bytes.Equal(prev.PkScript, expected) {
			return model.Invalid(model.ReasonProofInvalid, fmt.Sprintf("input %d: prevout script does not match %s proof", idx, proof.Kind()))
		}
		if err := proof.CheckWitness(in.Witness); err != nil {
			return model.Invalid(model.ReasonProofInvalid, fmt.Sprintf("input %d: %v", idx, err))
		}
		if err := r.execute(int(idx)); err != nil {
			return model.Invalid(model.ReasonProofInvalid, fmt.Sprintf("input %d: %v", idx, err))
		}
	}

	for i, in := range tx.TxIn {
		if _, ok := r.c.Bundle.Inputs[uint32(i)]; ok {
			continue
		}
		if px := r.parentPixel(model.OutPointFromWire(in.PreviousOutPoint)); !px.IsEmpty() {
			return model.Invalid(model.ReasonProofInvalid, fmt.Sprintf("input %d spends %s without a proof", i, px))
		}
	}
	return model.ValidVerdict()
}

func (r *run) checkOutputProofs() model.Verdict {
	tx := r.c.Tx
	for _, idx := range sortedKeys(r.c.Bundle.Outputs) {
		proof := r.c.Bundle.Outputs[idx]
		if int(idx) >= len(tx.TxOut) {
			return model.Invalid(model.ReasonProofInvalid, fmt.Sprintf("proof for missing output %d", idx))
		}
		expected, err := proof.PkScript()
		if err != nil {
			return model.Invalid(model.ReasonProofInvalid, fmt.Sprintf("output %d: %v", idx, err))
		}
		if !bytes.Equal(tx.TxOut[idx].PkScript, expected) {
			return model.Invalid(model.ReasonProofInvalid, fmt.Sprintf("output %d: script does not match %s proof", idx, proof.Kind()))
		}
	}
	return model.ValidVerdict()
}

func (r *run) checkParents() model.Verdict {
	for _, idx := range sortedKeys(r.c.Bundle.Inputs) {
		px := r.c.Bundle.Inputs[idx].Pixel()
		if px.IsEmpty() {
			continue
		}
		op := model.OutPointFromWire(r.c.Tx.TxIn[idx].PreviousOutPoint)
		if parent, ok := r.c.Parents[op]; ok {
			// The block mining the candidate already marked its parents spent.
			if parent.IsSpent() && parent.SpentBy != r.c.TxID {
				return model.Invalid(model.ReasonInvalidParent, fmt.Sprintf("input %d: %s already spent by %s", idx, op, parent.SpentBy))
			}
			if parent.Pixel != px {
				return model.Invalid(model.ReasonInvalidParent, fmt.Sprintf("input %d: claims %s, parent holds %s", idx, px, parent.Pixel))
			}
			continue
		}
		if out, ok := r.c.Batch[op]; ok && out.Position < r.c.Position {
			if out.Pixel != px {
				return model.Invalid(model.ReasonInvalidParent, fmt.Sprintf("input %d: claims %s, parent holds %s", idx, px, out.Pixel))
			}
			continue
		}
		return model.Invalid(model.ReasonInvalidParent, fmt.Sprintf("input %d: %s is not a known pixel output", idx, op))
	}
	return model.ValidVerdict()
}

// checkFrozen rejects inputs holding pixels of a chroma whose issuer froze
// them. Freezes by other issuers and plain outputs are ignored.
func (r *run) checkFrozen() model.Verdict {
	if r.c.Snapshot == nil {
		return model.ValidVerdict()
	}
	for i, in := range r.c.Tx.TxIn {
		op := model.OutPointFromWire(in.PreviousOutPoint)
		px := r.parentPixel(op)
		if px.IsEmpty() || !r.c.Snapshot.IsFrozen(op, px.Chroma) {
			continue
		}
		if r.unfrozenInTx(op, px.Chroma) {
			continue
		}
		return model.Invalid(model.ReasonFrozenInput, fmt.Sprintf("input %d spends %s frozen by the issuer of %s", i, op, px.Chroma))
	}
	return model.ValidVerdict()
}

func (r *run) unfrozenInTx(op model.OutPoint, chroma model.Chroma) bool {
	for _, ann := range r.c.Announcements {
		if ann.Kind != model.AnnouncementUnfreeze || ann.Target != op || ann.Chroma != chroma {
			continue
		}
		if r.authorize(ann) == nil {
			return true
		}
	}
	return false
}

func (r *run) checkAnnouncements() model.Verdict {
	for _, ann := range r.c.Announcements {
		if err := r.authorize(ann); err != nil {
			return model.Invalid(model.ReasonUnauthorizedAnnouncement, fmt.Sprintf("%s: %v", ann.ID(), err))
		}
	}
	return model.ValidVerdict()
}

// authorize looks for an input that key-spends with the issuer key of the
// announced chroma and whose script executes. Whether the chroma is
// registered is decided when the announcement takes effect.
func (r *run) authorize(ann model.Announcement) error {
	for i, in := range r.c.Tx.TxIn {
		if len(in.Witness) != 2 {
			continue
		}
		key, err := btcec.ParsePubKey(in.Witness[1])
		if err != nil || !ann.Chroma.MatchesKey(key) {
			continue
		}
		prev, ok := r.c.Prevouts[in.PreviousOutPoint]
		if !ok || prev == nil {
			continue
		}
		expected, err := protocol.P2WPKHScript(key)
		if err != nil || !bytes.Equal(prev.PkScript, expected) {
			continue
		}
		if err := r.execute(i); err != nil {
			return fmt.Errorf("issuer input %d: %w", i, err)
		}
		return nil
	}
	return fmt.Errorf("no input signed by the issuer of %s", ann.Chroma)
}

func (r *run) checkConservation() model.Verdict {
	inputs := make(map[model.Chroma]uint64)
	outputs := make(map[model.Chroma]uint64)

	add := func(sums map[model.Chroma]uint64, px model.Pixel) error {
		if px.IsEmpty() {
			return nil
		}
		total, err := safe.AddUint64(sums[px.Chroma], px.Amount)
		if err != nil {
			return err
		}
		sums[px.Chroma] = total
		return nil
	}

	for _, idx := range sortedKeys(r.c.Bundle.Inputs) {
		if err := add(inputs, r.c.Bundle.Inputs[idx].Pixel()); err != nil {
			return model.Invalid(model.ReasonConservationViolation, err.Error())
		}
	}
	for _, ann := range r.c.Announcements {
		if ann.Kind != model.AnnouncementIssue {
			continue
		}
		if err := add(inputs, model.NewPixel(ann.Chroma, ann.Amount)); err != nil {
			return model.Invalid(model.ReasonConservationViolation, err.Error())
		}
	}
	for _, idx := range sortedKeys(r.c.Bundle.Outputs) {
		if err := add(outputs, r.c.Bundle.Outputs[idx].Pixel()); err != nil {
			return model.Invalid(model.ReasonConservationViolation, err.Error())
		}
	}

	for _, chroma := range sortedChromas(inputs, outputs) {
		if inputs[chroma] != outputs[chroma] {
			return model.Invalid(model.ReasonConservationViolation,
				fmt.Sprintf("chroma %s: inputs %d, outputs %d", chroma, inputs[chroma], outputs[chroma]))
		}
	}
	return model.ValidVerdict()
}

func (r *run) execute(idx int) error {
	if err, ok := r.executed[idx]; ok {
		return err
	}
	err := r.executeInput(idx)
	r.executed[idx] = err
	return err
}

func (r *run) executeInput(idx int) error {
	in := r.c.Tx.TxIn[idx]
	prev, ok := r.c.Prevouts[in.PreviousOutPoint]
	if !ok || prev == nil {
		return fmt.Errorf("unknown prevout %s", in.PreviousOutPoint)
	}
	vm, err := txscript.NewEngine(prev.PkScript, r.c.Tx, idx, r.flags, nil, r.sigHashes, prev.Value, r.fetcher)
	if err != nil {
		return fmt.Errorf("create script engine: %w", err)
	}
	if err := vm.Execute(); err != nil {
		return fmt.Errorf("execute script: %w", err)
	}
	return nil
}

func (r *run) parentPixel(op model.OutPoint) model.Pixel {
	if parent, ok := r.c.Parents[op]; ok {
		return parent.Pixel
	}
	if out, ok := r.c.Batch[op]; ok && out.Position < r.c.Position {
		return out.Pixel
	}
	return model.EmptyPixel
}

func sortedKeys(m map[uint32]protocol.Proof) []uint32 {
	keys := make([]uint32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedChromas(sets ...map[model.Chroma]uint64) []model.Chroma {
	seen := make(map[model.Chroma]struct{})
	var out []model.Chroma
	for _, set := range sets {
		for c := range set {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}
