package bigint

import (
	"math"
)

// The compact range is only guaranteed to cover int32. This implementation
// keeps every int64 compact.
const (
	CompactFloorMin = math.MinInt32
	CompactFloorMax = math.MaxInt32

	CompactMin = math.MinInt64
	CompactMax = math.MaxInt64
)

// Sign returns -1, 0 or +1.
func Sign(x Int) int {
	return x.Sign()
}

// BitLength returns the number of bits needed to write |x| in binary.
func BitLength(x Int) int {
	return x.BitLen()
}

// IsCompact reports whether x is stored without arbitrary-precision digits.
func IsCompact(x Int) bool {
	return x.big == nil
}

// CompactValue returns x as a native integer. It is only meaningful when
// IsCompact(x) holds; otherwise the low 64 bits are returned.
func CompactValue(x Int) int64 {
	return x.Int64()
}

// SignOf is Sign over any integer instance, e.g. a Bool.
func SignOf(v any) (int, error) {
	x, err := RequireInstance(v)
	if err != nil {
		return 0, err
	}
	return x.Sign(), nil
}

// BitLengthOf is BitLength over any integer instance.
func BitLengthOf(v any) (int, error) {
	x, err := RequireInstance(v)
	if err != nil {
		return 0, err
	}
	return x.BitLen(), nil
}
