package model

import (
	"encoding/binary"
	"fmt"
)

// PixelSize is the length of a serialized pixel.
const PixelSize = ChromaSize + 8

// Pixel is an amount of a chroma attached to a bitcoin output.
type Pixel struct {
	Chroma Chroma
	Amount uint64
}

// EmptyPixel marks an output without tokens.
var EmptyPixel = Pixel{}

// NewPixel builds a pixel for the given chroma and amount.
func NewPixel(chroma Chroma, amount uint64) Pixel {
	return Pixel{Chroma: chroma, Amount: amount}
}

// IsEmpty reports whether the pixel carries no tokens.
func (p Pixel) IsEmpty() bool {
	return p.Amount == 0 && p.Chroma.IsZero()
}

// Bytes serializes the pixel as chroma followed by the big-endian amount.
func (p Pixel) Bytes() []byte {
	b := make([]byte, PixelSize)
	copy(b, p.Chroma[:])
	binary.BigEndian.PutUint64(b[ChromaSize:], p.Amount)
	return b
}

func (p Pixel) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%d:%s", p.Amount, p.Chroma)
}
