package platform

import (
	"fmt"
	"math/big"

	"intbridge/bigint"
	"intbridge/errors"
)

// Width describes a native fixed-width integer target.
type Width struct {
	Name   string
	Bits   uint
	Signed bool

	min bigint.Int
	max bigint.Int
}

// NewWidth validates bits and precomputes the closed range of the width.
func NewWidth(name string, bits uint, signed bool) (Width, error) {
	if bits == 0 || bits > 64 {
		return Width{}, errors.NewSystemError(errors.CodeInvalidWidth,
			fmt.Sprintf("width %q must have between 1 and 64 bits, got %d", name, bits))
	}

	w := Width{Name: name, Bits: bits, Signed: signed}
	one := big.NewInt(1)
	if signed {
		half := new(big.Int).Lsh(one, bits-1)
		w.min = bigint.FromBig(new(big.Int).Neg(half))
		w.max = bigint.FromBig(half.Sub(half, one))
	} else {
		full := new(big.Int).Lsh(one, bits)
		w.max = bigint.FromBig(full.Sub(full, one))
	}
	return w, nil
}

func mustWidth(name string, bits uint, signed bool) Width {
	w, err := NewWidth(name, bits, signed)
	if err != nil {
		panic(err)
	}
	return w
}

// Min returns the smallest value of the width (0 for unsigned widths).
func (w Width) Min() bigint.Int { return w.min }

// Max returns the largest value of the width.
func (w Width) Max() bigint.Int { return w.max }

// Contains reports whether v lies inside [Min, Max].
func (w Width) Contains(v bigint.Int) bool {
	return v.Cmp(w.min) >= 0 && v.Cmp(w.max) <= 0
}

// Compare places v relative to the range: -1 below Min, +1 above Max, 0 inside.
func (w Width) Compare(v bigint.Int) errors.Direction {
	switch {
	case v.Cmp(w.min) < 0:
		return errors.TooSmall
	case v.Cmp(w.max) > 0:
		return errors.TooLarge
	default:
		return errors.InRange
	}
}

// String renders the width as e.g. "long(64, signed)".
func (w Width) String() string {
	sign := "unsigned"
	if w.Signed {
		sign = "signed"
	}
	return fmt.Sprintf("%s(%d, %s)", w.Name, w.Bits, sign)
}
