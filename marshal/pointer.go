package marshal

import (
	"fmt"
	"math/big"
	"math/bits"

	"intbridge/bigint"
	"intbridge/errors"
)

var one = big.NewInt(1)

// FromPointer returns the address p as a non-negative integer. Bits above
// the table's pointer width are dropped.
func (c *Converter) FromPointer(p uintptr) bigint.Int {
	return bigint.FromUint64(uint64(p) & c.pointerMask())
}

// FromSignedPointer reads a sign-extended address. A negative n maps to
// ((^|n|) & mask) + 1, the same bit pattern read as unsigned.
func (c *Converter) FromSignedPointer(n int64) bigint.Int {
	if n >= 0 {
		return bigint.FromUint64(uint64(n) & c.pointerMask())
	}

	mask := new(big.Int).SetUint64(c.pointerMask())
	pattern := new(big.Int).Abs(big.NewInt(n))
	pattern.Not(pattern)
	pattern.And(pattern, mask)
	pattern.Add(pattern, one)
	pattern.And(pattern, mask)
	return bigint.FromBig(pattern)
}

// ToPointer converts v back to an address. Non-negative values up to the
// pointer max are taken as is; negative values down to -2^(bits-1) wrap to
// their two's-complement pattern.
func (c *Converter) ToPointer(v any) (uintptr, error) {
	w := c.table.Pointer
	x, err := bigint.RequireInstance(v)
	if err != nil {
		return 0, c.fail(w.Name, v, err)
	}

	pattern := x.Big()
	if pattern.Sign() < 0 {
		floor := new(big.Int).Lsh(one, w.Bits-1)
		if pattern.CmpAbs(floor) > 0 {
			return 0, c.fail(w.Name, v, pointerOverflow(errors.CodeTooSmall, errors.TooSmall))
		}
		pattern.Add(pattern, new(big.Int).Lsh(one, w.Bits))
	} else if x.Cmp(w.Max()) > 0 {
		return 0, c.fail(w.Name, v, pointerOverflow(errors.CodeTooLarge, errors.TooLarge))
	}

	if pattern.BitLen() > bits.UintSize {
		return 0, c.fail(w.Name, v, errors.NewOverflowError(errors.CodeTooLarge, errors.TooLarge,
			fmt.Sprintf("%d-bit pointer does not fit a %d-bit host address", w.Bits, bits.UintSize)))
	}
	return uintptr(pattern.Uint64()), nil
}

func (c *Converter) pointerMask() uint64 {
	return c.table.Pointer.Max().Uint64()
}

func pointerOverflow(code string, dir errors.Direction) error {
	return errors.NewOverflowError(code, dir, "Python int too large to convert to C pointer",
		errors.WithContextOption("width", "void*"))
}
