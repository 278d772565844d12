package protocol

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/wire"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
)

// ProofKind is the discriminator of a proof.
type ProofKind string

const (
	ProofSig                 ProofKind = "sig"
	ProofMultisig            ProofKind = "multisig"
	ProofLightningCommitment ProofKind = "ln_commitment"
	ProofLightningHTLC       ProofKind = "ln_htlc"
)

// ErrWitnessMismatch is returned when a witness does not have the shape of its proof.
var ErrWitnessMismatch = errors.New("witness does not match proof")

// Proof describes how a pixel is locked in one output and how it is spent.
type Proof interface {
	Kind() ProofKind
	Pixel() model.Pixel
	// PkScript is the output script the pixel must be locked with.
	PkScript() ([]byte, error)
	// CheckWitness verifies the witness has the shape the proof claims.
	// Signatures are checked by the script engine.
	CheckWitness(w wire.TxWitness) error
}

// SigProof locks a pixel to a single key in a P2WPKH output.
type SigProof struct {
	Px       model.Pixel
	InnerKey *btcec.PublicKey
}

func (p *SigProof) Kind() ProofKind    { return ProofSig }
func (p *SigProof) Pixel() model.Pixel { return p.Px }

func (p *SigProof) PkScript() ([]byte, error) {
	key, err := PixelKey(p.InnerKey, p.Px)
	if err != nil {
		return nil, err
	}
	return P2WPKHScript(key)
}

func (p *SigProof) CheckWitness(w wire.TxWitness) error {
	if len(w) != 2 {
		return fmt.Errorf("%w: p2wpkh witness with %d items", ErrWitnessMismatch, len(w))
	}
	key, err := PixelKey(p.InnerKey, p.Px)
	if err != nil {
		return err
	}
	if !bytes.Equal(w[1], key.SerializeCompressed()) {
		return fmt.Errorf("%w: witness key is not the pixel key", ErrWitnessMismatch)
	}
	return nil
}

// MultisigProof locks a pixel in a P2WSH multisig; the first key carries the tweak.
type MultisigProof struct {
	Px        model.Pixel
	InnerKeys []*btcec.PublicKey
	Required  int
}

func (p *MultisigProof) Kind() ProofKind    { return ProofMultisig }
func (p *MultisigProof) Pixel() model.Pixel { return p.Px }

// WitnessScript returns the multisig script with the tweaked first key.
func (p *MultisigProof) WitnessScript() ([]byte, error) {
	if len(p.InnerKeys) == 0 || p.Required < 1 || p.Required > len(p.InnerKeys) || len(p.InnerKeys) > 16 {
		return nil, fmt.Errorf("invalid multisig %d-of-%d", p.Required, len(p.InnerKeys))
	}
	keys := make([]*btcec.PublicKey, len(p.InnerKeys))
	copy(keys, p.InnerKeys)
	tweaked, err := PixelKey(keys[0], p.Px)
	if err != nil {
		return nil, err
	}
	keys[0] = tweaked
	return MultisigScript(p.Required, keys)
}

func (p *MultisigProof) PkScript() ([]byte, error) {
	return p2wsh(p.WitnessScript)
}

func (p *MultisigProof) CheckWitness(w wire.TxWitness) error {
	if len(w) != p.Required+2 {
		return fmt.Errorf("%w: %d-of-%d multisig witness with %d items", ErrWitnessMismatch, p.Required, len(p.InnerKeys), len(w))
	}
	if len(w[0]) != 0 {
		return fmt.Errorf("%w: multisig dummy element is not empty", ErrWitnessMismatch)
	}
	return checkWitnessScript(w, p.WitnessScript)
}

// LightningCommitmentProof locks a pixel in a to_local commitment output;
// the delayed key carries the tweak.
type LightningCommitmentProof struct {
	Px            model.Pixel
	RevocationKey *btcec.PublicKey
	DelayKey      *btcec.PublicKey
	ToSelfDelay   uint16
}

func (p *LightningCommitmentProof) Kind() ProofKind    { return ProofLightningCommitment }
func (p *LightningCommitmentProof) Pixel() model.Pixel { return p.Px }

// WitnessScript returns the to_local script.
func (p *LightningCommitmentProof) WitnessScript() ([]byte, error) {
	delayed, err := PixelKey(p.DelayKey, p.Px)
	if err != nil {
		return nil, err
	}
	return ToLocalScript(p.RevocationKey, delayed, p.ToSelfDelay)
}

func (p *LightningCommitmentProof) PkScript() ([]byte, error) {
	return p2wsh(p.WitnessScript)
}

func (p *LightningCommitmentProof) CheckWitness(w wire.TxWitness) error {
	if len(w) != 3 {
		return fmt.Errorf("%w: to_local witness with %d items", ErrWitnessMismatch, len(w))
	}
	return checkWitnessScript(w, p.WitnessScript)
}

// HTLCKind tells which side offered the HTLC.
type HTLCKind string

const (
	HTLCOffered  HTLCKind = "offered"
	HTLCReceived HTLCKind = "received"
)

// LightningHTLCProof locks a pixel in an HTLC output; the local key carries the tweak.
type LightningHTLCProof struct {
	Px            model.Pixel
	HTLC          HTLCKind
	RevocationKey *btcec.PublicKey
	RemoteKey     *btcec.PublicKey
	LocalKey      *btcec.PublicKey
	PaymentHash   []byte
	CLTVExpiry    uint32
}

func (p *LightningHTLCProof) Kind() ProofKind    { return ProofLightningHTLC }
func (p *LightningHTLCProof) Pixel() model.Pixel { return p.Px }

// WitnessScript returns the HTLC script.
func (p *LightningHTLCProof) WitnessScript() ([]byte, error) {
	if len(p.PaymentHash) != 32 {
		return nil, fmt.Errorf("payment hash must be 32 bytes, got %d", len(p.PaymentHash))
	}
	local, err := PixelKey(p.LocalKey, p.Px)
	if err != nil {
		return nil, err
	}
	switch p.HTLC {
	case HTLCOffered:
		return OfferedHTLCScript(p.RevocationKey, p.RemoteKey, local, p.PaymentHash)
	case HTLCReceived:
		return ReceivedHTLCScript(p.RevocationKey, p.RemoteKey, local, p.PaymentHash, p.CLTVExpiry)
	default:
		return nil, fmt.Errorf("unknown htlc kind %q", p.HTLC)
	}
}

func (p *LightningHTLCProof) PkScript() ([]byte, error) {
	return p2wsh(p.WitnessScript)
}

func (p *LightningHTLCProof) CheckWitness(w wire.TxWitness) error {
	if len(w) < 3 {
		return fmt.Errorf("%w: htlc witness with %d items", ErrWitnessMismatch, len(w))
	}
	return checkWitnessScript(w, p.WitnessScript)
}

func p2wsh(witnessScript func() ([]byte, error)) ([]byte, error) {
	script, err := witnessScript()
	if err != nil {
		return nil, err
	}
	return P2WSHScript(script)
}

func checkWitnessScript(w wire.TxWitness, witnessScript func() ([]byte, error)) error {
	script, err := witnessScript()
	if err != nil {
		return err
	}
	if !bytes.Equal(w[len(w)-1], script) {
		return fmt.Errorf("%w: witness script differs", ErrWitnessMismatch)
	}
	return nil
}
