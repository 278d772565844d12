// Package safe provides integer conversions and arithmetic with overflow checks.
package safe

import (
	"errors"
	"fmt"
	"math"
)

// ErrOutOfRange is wrapped by every failed conversion.
var ErrOutOfRange = errors.New("value out of range")

// Integer is any signed or unsigned integer type.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// Uint32 converts v to uint32, rejecting negative values and values above math.MaxUint32.
func Uint32[T Integer](v T) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d does not fit uint32", ErrOutOfRange, v)
	}
	return uint32(v), nil
}

// Uint64 converts v to uint64, rejecting negative values.
func Uint64[T Integer](v T) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: %d does not fit uint64", ErrOutOfRange, v)
	}
	return uint64(v), nil
}

// Int64 converts v to int64, rejecting values above math.MaxInt64.
func Int64(v uint64) (int64, error) {
	if v > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %d does not fit int64", ErrOutOfRange, v)
	}
	return int64(v), nil
}
