package protocol

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
)

// ProofBundle carries the proofs of a transaction, keyed by input and output index.
// Inputs and outputs without a proof carry no pixel.
type ProofBundle struct {
	Inputs  map[uint32]Proof
	Outputs map[uint32]Proof
}

// InputPixel returns the pixel claimed for input i.
func (b ProofBundle) InputPixel(i uint32) model.Pixel {
	if p, ok := b.Inputs[i]; ok {
		return p.Pixel()
	}
	return model.EmptyPixel
}

// OutputPixel returns the pixel claimed for output i.
func (b ProofBundle) OutputPixel(i uint32) model.Pixel {
	if p, ok := b.Outputs[i]; ok {
		return p.Pixel()
	}
	return model.EmptyPixel
}

type proofJSON struct {
	Type        ProofKind `json:"type"`
	Chroma      string    `json:"chroma,omitempty"`
	Amount      uint64    `json:"amount,omitempty"`
	Keys        []string  `json:"keys"`
	Required    int       `json:"required,omitempty"`
	ToSelfDelay uint16    `json:"to_self_delay,omitempty"`
	HTLC        HTLCKind  `json:"htlc,omitempty"`
	PaymentHash string    `json:"payment_hash,omitempty"`
	CLTVExpiry  uint32    `json:"cltv_expiry,omitempty"`
}

type bundleJSON struct {
	Inputs  map[uint32]proofJSON `json:"inputs,omitempty"`
	Outputs map[uint32]proofJSON `json:"outputs,omitempty"`
}

// EncodeBundle serializes a bundle for storage and submission.
func EncodeBundle(b ProofBundle) ([]byte, error) {
	return json.Marshal(b)
}

// DecodeBundle parses a bundle produced by EncodeBundle.
func DecodeBundle(data []byte) (ProofBundle, error) {
	var b ProofBundle
	if len(data) == 0 {
		return b, nil
	}
	if err := json.Unmarshal(data, &b); err != nil {
		return ProofBundle{}, err
	}
	return b, nil
}

func (b ProofBundle) MarshalJSON() ([]byte, error) {
	out := bundleJSON{}
	var err error
	if out.Inputs, err = encodeProofs(b.Inputs); err != nil {
		return nil, fmt.Errorf("inputs: %w", err)
	}
	if out.Outputs, err = encodeProofs(b.Outputs); err != nil {
		return nil, fmt.Errorf("outputs: %w", err)
	}
	return json.Marshal(out)
}

func (b *ProofBundle) UnmarshalJSON(data []byte) error {
	var in bundleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	var err error
	if b.Inputs, err = decodeProofs(in.Inputs); err != nil {
		return fmt.Errorf("inputs: %w", err)
	}
	if b.Outputs, err = decodeProofs(in.Outputs); err != nil {
		return fmt.Errorf("outputs: %w", err)
	}
	return nil
}

func encodeProofs(proofs map[uint32]Proof) (map[uint32]proofJSON, error) {
	if len(proofs) == 0 {
		return nil, nil
	}
	out := make(map[uint32]proofJSON, len(proofs))
	for idx, p := range proofs {
		j, err := encodeProof(p)
		if err != nil {
			return nil, fmt.Errorf("proof %d: %w", idx, err)
		}
		out[idx] = j
	}
	return out, nil
}

func decodeProofs(in map[uint32]proofJSON) (map[uint32]Proof, error) {
	out := make(map[uint32]Proof, len(in))
	for idx, j := range in {
		p, err := decodeProof(j)
		if err != nil {
			return nil, fmt.Errorf("proof %d: %w", idx, err)
		}
		out[idx] = p
	}
	return out, nil
}

func encodeProof(p Proof) (proofJSON, error) {
	j := proofJSON{Type: p.Kind()}
	if px := p.Pixel(); !px.IsEmpty() {
		j.Chroma = px.Chroma.String()
		j.Amount = px.Amount
	}
	switch v := p.(type) {
	case *SigProof:
		j.Keys = encodeKeys(v.InnerKey)
	case *MultisigProof:
		j.Keys = encodeKeys(v.InnerKeys...)
		j.Required = v.Required
	case *LightningCommitmentProof:
		j.Keys = encodeKeys(v.RevocationKey, v.DelayKey)
		j.ToSelfDelay = v.ToSelfDelay
	case *LightningHTLCProof:
		j.Keys = encodeKeys(v.RevocationKey, v.RemoteKey, v.LocalKey)
		j.HTLC = v.HTLC
		j.PaymentHash = hex.EncodeToString(v.PaymentHash)
		j.CLTVExpiry = v.CLTVExpiry
	default:
		return proofJSON{}, fmt.Errorf("unsupported proof %T", p)
	}
	return j, nil
}

func decodeProof(j proofJSON) (Proof, error) {
	px := model.EmptyPixel
	if j.Chroma != "" {
		c, err := model.ParseChroma(j.Chroma)
		if err != nil {
			return nil, err
		}
		px = model.NewPixel(c, j.Amount)
	}
	keys, err := decodeKeys(j.Keys)
	if err != nil {
		return nil, err
	}

	switch j.Type {
	case ProofSig:
		if len(keys) != 1 {
			return nil, fmt.Errorf("sig proof needs 1 key, got %d", len(keys))
		}
		return &SigProof{Px: px, InnerKey: keys[0]}, nil
	case ProofMultisig:
		return &MultisigProof{Px: px, InnerKeys: keys, Required: j.Required}, nil
	case ProofLightningCommitment:
		if len(keys) != 2 {
			return nil, fmt.Errorf("commitment proof needs 2 keys, got %d", len(keys))
		}
		return &LightningCommitmentProof{Px: px, RevocationKey: keys[0], DelayKey: keys[1], ToSelfDelay: j.ToSelfDelay}, nil
	case ProofLightningHTLC:
		if len(keys) != 3 {
			return nil, fmt.Errorf("htlc proof needs 3 keys, got %d", len(keys))
		}
		hash, err := hex.DecodeString(j.PaymentHash)
		if err != nil {
			return nil, fmt.Errorf("payment hash: %w", err)
		}
		return &LightningHTLCProof{
			Px:            px,
			HTLC:          j.HTLC,
			RevocationKey: keys[0],
			RemoteKey:     keys[1],
			LocalKey:      keys[2],
			PaymentHash:   hash,
			CLTVExpiry:    j.CLTVExpiry,
		}, nil
	default:
		return nil, fmt.Errorf("unknown proof type %q", j.Type)
	}
}

func encodeKeys(keys ...*btcec.PublicKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = hex.EncodeToString(k.SerializeCompressed())
	}
	return out
}

func decodeKeys(in []string) ([]*btcec.PublicKey, error) {
	out := make([]*btcec.PublicKey, len(in))
	for i, s := range in {
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		k, err := btcec.ParsePubKey(b)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		out[i] = k
	}
	return out, nil
}
