package protocol

import (
	"errors"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/goodnatureofminers/pixelnode/internal/pixel/model"
)

var pixelTag = []byte("pixel")

// ErrInfiniteKey is returned when a tweak lands on the point at infinity.
var ErrInfiniteKey = errors.New("tweaked key is the point at infinity")

func tweakScalar(inner *btcec.PublicKey, px model.Pixel) btcec.ModNScalar {
	h := chainhash.TaggedHash(pixelTag, px.Bytes(), inner.SerializeCompressed())
	var k btcec.ModNScalar
	k.SetByteSlice(h[:])
	return k
}

// PixelKey tweaks inner with the pixel: P + H_pixel(pixel || P)·G.
// The empty pixel leaves the key untouched.
func PixelKey(inner *btcec.PublicKey, px model.Pixel) (*btcec.PublicKey, error) {
	if px.IsEmpty() {
		return inner, nil
	}
	k := tweakScalar(inner, px)

	var tweak, base, sum btcec.JacobianPoint
	btcec.ScalarBaseMultNonConst(&k, &tweak)
	inner.AsJacobian(&base)
	btcec.AddNonConst(&base, &tweak, &sum)
	if (sum.X.IsZero() && sum.Y.IsZero()) || sum.Z.IsZero() {
		return nil, ErrInfiniteKey
	}
	sum.ToAffine()
	return btcec.NewPublicKey(&sum.X, &sum.Y), nil
}

// PixelPrivKey applies the same tweak to a private key.
func PixelPrivKey(priv *btcec.PrivateKey, px model.Pixel) (*btcec.PrivateKey, error) {
	if px.IsEmpty() {
		return priv, nil
	}
	k := tweakScalar(priv.PubKey(), px)
	k.Add(&priv.Key)
	if k.IsZero() {
		return nil, ErrInfiniteKey
	}
	b := k.Bytes()
	tweaked, _ := btcec.PrivKeyFromBytes(b[:])
	return tweaked, nil
}
