// Package model holds the data types shared by the pixel indexing pipeline.
package model

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// ChromaSize is the length of a serialized chroma.
const ChromaSize = 32

// Chroma identifies a token type. It is the x-only serialization of the issuer key.
type Chroma [ChromaSize]byte

// ChromaFromPubKey derives the chroma owned by the given issuer key.
func ChromaFromPubKey(key *btcec.PublicKey) Chroma {
	var c Chroma
	copy(c[:], schnorr.SerializePubKey(key))
	return c
}

// ParseChroma decodes a hex encoded chroma.
func ParseChroma(s string) (Chroma, error) {
	var c Chroma
	b, err := hex.DecodeString(s)
	if err != nil {
		return c, fmt.Errorf("decode chroma: %w", err)
	}
	if len(b) != ChromaSize {
		return c, fmt.Errorf("chroma must be %d bytes, got %d", ChromaSize, len(b))
	}
	copy(c[:], b)
	return c, nil
}

// String returns the hex form of the chroma.
func (c Chroma) String() string {
	return hex.EncodeToString(c[:])
}

// IsZero reports whether c is the zero chroma.
func (c Chroma) IsZero() bool {
	return c == Chroma{}
}

// MatchesKey reports whether key is the issuer key of c.
func (c Chroma) MatchesKey(key *btcec.PublicKey) bool {
	return key != nil && ChromaFromPubKey(key) == c
}
