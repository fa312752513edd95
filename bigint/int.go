// Package bigint provides the canonical arbitrary-precision integer value of
// the bridge together with its capability interfaces, inspection helpers and
// text parser. Arithmetic is left to math/big.
package bigint

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
)

// Int is an immutable arbitrary-precision signed integer. Values that fit in
// an int64 are kept in the compact arm; the big arm is only used for larger
// magnitudes and is never mutated once constructed. The zero value is 0.
type Int struct {
	small int64
	big   *big.Int
}

// NewInt returns x as an Int.
func NewInt(x int64) Int {
	return Int{small: x}
}

// FromUint64 returns x as an Int.
func FromUint64(x uint64) Int {
	if x <= math.MaxInt64 {
		return Int{small: int64(x)}
	}
	return Int{big: new(big.Int).SetUint64(x)}
}

// FromBig returns a copy of x as an Int. A nil x is 0.
func FromBig(x *big.Int) Int {
	if x == nil {
		return Int{}
	}
	if x.IsInt64() {
		return Int{small: x.Int64()}
	}
	return Int{big: new(big.Int).Set(x)}
}

// fromOwned adopts x without copying; callers must not touch x afterwards.
func fromOwned(x *big.Int) Int {
	if x.IsInt64() {
		return Int{small: x.Int64()}
	}
	return Int{big: x}
}

// Big returns the value as a freshly allocated *big.Int.
func (x Int) Big() *big.Int {
	if x.big != nil {
		return new(big.Int).Set(x.big)
	}
	return big.NewInt(x.small)
}

// view returns a *big.Int that must be treated as read-only.
func (x Int) view() *big.Int {
	if x.big != nil {
		return x.big
	}
	return big.NewInt(x.small)
}

// Sign returns -1, 0 or +1.
func (x Int) Sign() int {
	if x.big != nil {
		return x.big.Sign()
	}
	switch {
	case x.small < 0:
		return -1
	case x.small > 0:
		return 1
	default:
		return 0
	}
}

// BitLen returns the number of bits of |x|; BitLen of 0 is 0.
func (x Int) BitLen() int {
	if x.big != nil {
		return x.big.BitLen()
	}
	u := uint64(x.small)
	if x.small < 0 {
		u = -u
	}
	return bits.Len64(u)
}

// Cmp compares x and y and returns -1, 0 or +1.
func (x Int) Cmp(y Int) int {
	if x.big == nil && y.big == nil {
		switch {
		case x.small < y.small:
			return -1
		case x.small > y.small:
			return 1
		default:
			return 0
		}
	}
	return x.view().Cmp(y.view())
}

// Equal reports whether x and y hold the same value.
func (x Int) Equal(y Int) bool {
	return x.Cmp(y) == 0
}

// IsInt64 reports whether x fits in an int64.
func (x Int) IsInt64() bool {
	return x.big == nil
}

// Int64 returns x when IsInt64 holds and the low 64 bits of x otherwise.
func (x Int) Int64() int64 {
	if x.big != nil {
		return x.big.Int64()
	}
	return x.small
}

// IsUint64 reports whether x fits in a uint64.
func (x Int) IsUint64() bool {
	if x.big != nil {
		return x.big.IsUint64()
	}
	return x.small >= 0
}

// Uint64 returns x when IsUint64 holds and the low 64 bits of x otherwise.
func (x Int) Uint64() uint64 {
	if x.big != nil {
		return x.big.Uint64()
	}
	return uint64(x.small)
}

// String returns the decimal representation of x.
func (x Int) String() string {
	return x.Text(10)
}

// Text returns the representation of x in base (2 <= base <= 62).
func (x Int) Text(base int) string {
	return x.view().Text(base)
}

// Format implements fmt.Formatter with the verbs of *big.Int (%d, %x, %b, %o, ...).
func (x Int) Format(s fmt.State, ch rune) {
	x.view().Format(s, ch)
}
