// Package pixeltest builds signed pixel transactions and an in-memory chain for tests.
package pixeltest

import (
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
	"github.com/goodnatureofminers/pixelnode/internal/pixel/protocol"
)

// Key derives a deterministic private key from seed.
func Key(seed string) *btcec.PrivateKey {
	h := sha256.Sum256([]byte(seed))
	priv, _ := btcec.PrivKeyFromBytes(h[:])
	return priv
}

// Chroma returns the chroma issued by key.
func Chroma(key *btcec.PrivateKey) model.Chroma {
	return model.ChromaFromPubKey(key.PubKey())
}

// Output is a spendable output with the script it is locked by.
type Output struct {
	OutPoint wire.OutPoint
	TxOut    *wire.TxOut
}

// PixelScript returns the P2WPKH script locking px to key.
func PixelScript(key *btcec.PublicKey, px model.Pixel) []byte {
	tweaked, err := protocol.PixelKey(key, px)
	if err != nil {
		panic(err)
	}
	script, err := protocol.P2WPKHScript(tweaked)
	if err != nil {
		panic(err)
	}
	return script
}

type signer func(tx *wire.MsgTx, hashes *txscript.TxSigHashes, idx int) (wire.TxWitness, error)

// TxBuilder assembles a transaction together with its proof bundle.
type TxBuilder struct {
	tx      *wire.MsgTx
	bundle  protocol.ProofBundle
	prevs   map[wire.OutPoint]*wire.TxOut
	signers []signer
}

// NewTx starts an empty version 2 transaction.
func NewTx() *TxBuilder {
	return &TxBuilder{
		tx: wire.NewMsgTx(2),
		bundle: protocol.ProofBundle{
			Inputs:  map[uint32]protocol.Proof{},
			Outputs: map[uint32]protocol.Proof{},
		},
		prevs: map[wire.OutPoint]*wire.TxOut{},
	}
}

// SpendSig spends a P2WPKH output locked to key tweaked with px. When
// withProof is set a SigProof is attached to the input.
func (b *TxBuilder) SpendSig(prev Output, key *btcec.PrivateKey, px model.Pixel, withProof bool) *TxBuilder {
	idx := b.addInput(prev)
	if withProof {
		b.bundle.Inputs[uint32(idx)] = &protocol.SigProof{Px: px, InnerKey: key.PubKey()}
	}
	b.signers = append(b.signers, func(tx *wire.MsgTx, hashes *txscript.TxSigHashes, i int) (wire.TxWitness, error) {
		signing, err := protocol.PixelPrivKey(key, px)
		if err != nil {
			return nil, err
		}
		return txscript.WitnessSignature(tx, hashes, i, prev.TxOut.Value, prev.TxOut.PkScript, txscript.SigHashAll, signing, true)
	})
	return b
}

// SpendMultisig spends a P2WSH multisig output with the first required keys.
func (b *TxBuilder) SpendMultisig(prev Output, keys []*btcec.PrivateKey, required int, px model.Pixel) *TxBuilder {
	pubs := make([]*btcec.PublicKey, len(keys))
	for i, k := range keys {
		pubs[i] = k.PubKey()
	}
	proof := &protocol.MultisigProof{Px: px, InnerKeys: pubs, Required: required}
	idx := b.addInput(prev)
	b.bundle.Inputs[uint32(idx)] = proof
	b.signers = append(b.signers, func(tx *wire.MsgTx, hashes *txscript.TxSigHashes, i int) (wire.TxWitness, error) {
		script, err := proof.WitnessScript()
		if err != nil {
			return nil, err
		}
		witness := wire.TxWitness{[]byte{}}
		for n := 0; n < required; n++ {
			signing := keys[n]
			if n == 0 {
				if signing, err = protocol.PixelPrivKey(keys[0], px); err != nil {
					return nil, err
				}
			}
			sig, err := txscript.RawTxInWitnessSignature(tx, hashes, i, prev.TxOut.Value, script, txscript.SigHashAll, signing)
			if err != nil {
				return nil, err
			}
			witness = append(witness, sig)
		}
		return append(witness, script), nil
	})
	return b
}

// SpendWithProof spends prev with an arbitrary proof and a prepared witness.
func (b *TxBuilder) SpendWithProof(prev Output, proof protocol.Proof, witness func(tx *wire.MsgTx, hashes *txscript.TxSigHashes, idx int) (wire.TxWitness, error)) *TxBuilder {
	idx := b.addInput(prev)
	if proof != nil {
		b.bundle.Inputs[uint32(idx)] = proof
	}
	b.signers = append(b.signers, witness)
	return b
}

// PayPixel adds a P2WPKH output locking px to key, with its proof.
func (b *TxBuilder) PayPixel(key *btcec.PublicKey, px model.Pixel, value int64) *TxBuilder {
	b.tx.AddTxOut(wire.NewTxOut(value, PixelScript(key, px)))
	b.bundle.Outputs[uint32(len(b.tx.TxOut)-1)] = &protocol.SigProof{Px: px, InnerKey: key}
	return b
}

// PayProof adds an output locked by proof.
func (b *TxBuilder) PayProof(proof protocol.Proof, value int64) *TxBuilder {
	script, err := proof.PkScript()
	if err != nil {
		panic(err)
	}
	b.tx.AddTxOut(wire.NewTxOut(value, script))
	b.bundle.Outputs[uint32(len(b.tx.TxOut)-1)] = proof
	return b
}

// Pay adds a plain output.
func (b *TxBuilder) Pay(pkScript []byte, value int64) *TxBuilder {
	b.tx.AddTxOut(wire.NewTxOut(value, pkScript))
	return b
}

// Announce adds an OP_RETURN output carrying ann.
func (b *TxBuilder) Announce(ann model.Announcement) *TxBuilder {
	script, err := protocol.AnnouncementScript(ann)
	if err != nil {
		panic(err)
	}
	b.tx.AddTxOut(wire.NewTxOut(0, script))
	return b
}

// Built is a signed transaction with its bundle and spent outputs.
type Built struct {
	Tx       *wire.MsgTx
	Bundle   protocol.ProofBundle
	Prevouts map[wire.OutPoint]*wire.TxOut
}

// Output returns output vout of the built transaction.
func (b Built) Output(vout uint32) Output {
	return Output{
		OutPoint: wire.OutPoint{Hash: b.Tx.TxHash(), Index: vout},
		TxOut:    b.Tx.TxOut[vout],
	}
}

// Build signs every input and returns the result.
func (b *TxBuilder) Build() (Built, error) {
	hashes := txscript.NewTxSigHashes(b.tx, txscript.NewMultiPrevOutFetcher(b.prevs))
	for i, sign := range b.signers {
		witness, err := sign(b.tx, hashes, i)
		if err != nil {
			return Built{}, fmt.Errorf("sign input %d: %w", i, err)
		}
		b.tx.TxIn[i].Witness = witness
	}
	return Built{Tx: b.tx, Bundle: b.bundle, Prevouts: b.prevs}, nil
}

// MustBuild is Build for fixtures.
func (b *TxBuilder) MustBuild() Built {
	built, err := b.Build()
	if err != nil {
		panic(err)
	}
	return built
}

func (b *TxBuilder) addInput(prev Output) int {
	b.tx.AddTxIn(wire.NewTxIn(&prev.OutPoint, nil, nil))
	b.prevs[prev.OutPoint] = prev.TxOut
	return len(b.tx.TxIn) - 1
}
