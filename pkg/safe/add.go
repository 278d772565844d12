package safe

import (
	"fmt"
	"math"
)

// AddUint64 returns a+b or an error when the sum does not fit into uint64.
func AddUint64(a, b uint64) (uint64, error) {
	if a > math.MaxUint64-b {
		return 0, fmt.Errorf("uint64 overflow: %d + %d", a, b)
	}
	return a + b, nil
}

// SumUint64 adds all values, failing on the first overflow.
func SumUint64(values ...uint64) (uint64, error) {
	var total uint64
	for _, v := range values {
		var err error
		total, err = AddUint64(total, v)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
