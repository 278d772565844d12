package protocol

import (
	"crypto/sha256"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/txscript"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // BOLT-3 HTLC scripts commit to RIPEMD160(payment_hash)
)

// P2WPKHScript returns the v0 witness key hash script paying to key.
func P2WPKHScript(key *btcec.PublicKey) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(btcutil.Hash160(key.SerializeCompressed())).
		Script()
}

// P2WSHScript returns the v0 witness script hash script committing to script.
func P2WSHScript(script []byte) ([]byte, error) {
	h := sha256.Sum256(script)
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_0).
		AddData(h[:]).
		Script()
}

// MultisigScript builds "m <keys> n OP_CHECKMULTISIG".
func MultisigScript(required int, keys []*btcec.PublicKey) ([]byte, error) {
	b := txscript.NewScriptBuilder().AddInt64(int64(required))
	for _, k := range keys {
		b.AddData(k.SerializeCompressed())
	}
	return b.AddInt64(int64(len(keys))).
		AddOp(txscript.OP_CHECKMULTISIG).
		Script()
}

// ToLocalScript builds the BOLT-3 to_local output script.
func ToLocalScript(revocation, delayed *btcec.PublicKey, toSelfDelay uint16) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_IF).
		AddData(revocation.SerializeCompressed()).
		AddOp(txscript.OP_ELSE).
		AddInt64(int64(toSelfDelay)).
		AddOp(txscript.OP_CHECKSEQUENCEVERIFY).
		AddOp(txscript.OP_DROP).
		AddData(delayed.SerializeCompressed()).
		AddOp(txscript.OP_ENDIF).
		AddOp(txscript.OP_CHECKSIG).
		Script()
}

// OfferedHTLCScript builds the BOLT-3 offered HTLC output script.
func OfferedHTLCScript(revocation, remote, local *btcec.PublicKey, paymentHash []byte) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(btcutil.Hash160(revocation.SerializeCompressed())).
		AddOp(txscript.OP_EQUAL).
		AddOp(txscript.OP_IF).
		AddOp(txscript.OP_CHECKSIG).
		AddOp(txscript.OP_ELSE).
		AddData(remote.SerializeCompressed()).
		AddOp(txscript.OP_SWAP).
		AddOp(txscript.OP_SIZE).
		AddInt64(32).
		AddOp(txscript.OP_EQUAL).
		AddOp(txscript.OP_NOTIF).
		AddOp(txscript.OP_DROP).
		AddOp(txscript.OP_2).
		AddOp(txscript.OP_SWAP).
		AddData(local.SerializeCompressed()).
		AddOp(txscript.OP_2).
		AddOp(txscript.OP_CHECKMULTISIG).
		AddOp(txscript.OP_ELSE).
		AddOp(txscript.OP_HASH160).
		AddData(ripemd(paymentHash)).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_CHECKSIG).
		AddOp(txscript.OP_ENDIF).
		AddOp(txscript.OP_ENDIF).
		Script()
}

// ReceivedHTLCScript builds the BOLT-3 received HTLC output script.
func ReceivedHTLCScript(revocation, remote, local *btcec.PublicKey, paymentHash []byte, cltvExpiry uint32) ([]byte, error) {
	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_DUP).
		AddOp(txscript.OP_HASH160).
		AddData(btcutil.Hash160(revocation.SerializeCompressed())).
		AddOp(txscript.OP_EQUAL).
		AddOp(txscript.OP_IF).
		AddOp(txscript.OP_CHECKSIG).
		AddOp(txscript.OP_ELSE).
		AddData(remote.SerializeCompressed()).
		AddOp(txscript.OP_SWAP).
		AddOp(txscript.OP_SIZE).
		AddInt64(32).
		AddOp(txscript.OP_EQUAL).
		AddOp(txscript.OP_IF).
		AddOp(txscript.OP_HASH160).
		AddData(ripemd(paymentHash)).
		AddOp(txscript.OP_EQUALVERIFY).
		AddOp(txscript.OP_2).
		AddOp(txscript.OP_SWAP).
		AddData(local.SerializeCompressed()).
		AddOp(txscript.OP_2).
		AddOp(txscript.OP_CHECKMULTISIG).
		AddOp(txscript.OP_ELSE).
		AddOp(txscript.OP_DROP).
		AddInt64(int64(cltvExpiry)).
		AddOp(txscript.OP_CHECKLOCKTIMEVERIFY).
		AddOp(txscript.OP_DROP).
		AddOp(txscript.OP_CHECKSIG).
		AddOp(txscript.OP_ENDIF).
		AddOp(txscript.OP_ENDIF).
		Script()
}

func ripemd(b []byte) []byte {
	h := ripemd160.New()
	h.Write(b)
	return h.Sum(nil)
}
