package marshal

import (
	"fmt"
	"math/big"

	"intbridge/bigint"
	"intbridge/errors"
)

// guardByte sits one past the requested length in the scratch buffer.
const guardByte = 0x33

// encodeInto fills dst with the big-endian two's-complement image of v.
// Replaced in tests to exercise the guard check.
var encodeInto = fillTwosComplement

// AsByteArray writes v into buf as len(buf) bytes in two's complement when
// signed is set and as an unsigned magnitude otherwise. buf is written only
// when the conversion succeeds.
func (c *Converter) AsByteArray(v bigint.Int, buf []byte, littleEndian, signed bool) error {
	n := len(buf)
	width := fmt.Sprintf("bytes[%d]", n)

	scratch := make([]byte, n+1)
	scratch[n] = guardByte
	if err := encodeInto(v, scratch[:n], signed); err != nil {
		return c.fail(width, v, err)
	}
	if scratch[n] != guardByte {
		err := errors.NewSystemError(errors.CodeSentinelCorrupted, "sentinel value corrupted",
			errors.WithContextOption("length", n))
		c.logger.ErrorConversion(err)
		return err
	}

	if littleEndian {
		reverse(scratch[:n])
	}
	copy(buf, scratch[:n])
	return nil
}

// ToBytes allocates an n-byte buffer and encodes v into it.
func (c *Converter) ToBytes(v bigint.Int, n int, littleEndian, signed bool) ([]byte, error) {
	if n < 0 {
		return nil, errors.NewValueError(errors.CodeNegativeLength, "length argument must be non-negative",
			errors.WithContextOption("length", n))
	}
	buf := make([]byte, n)
	if err := c.AsByteArray(v, buf, littleEndian, signed); err != nil {
		return nil, err
	}
	return buf, nil
}

// FromByteArray decodes b. Every input decodes; the empty slice is 0.
func FromByteArray(b []byte, littleEndian, signed bool) bigint.Int {
	if len(b) == 0 {
		return bigint.Int{}
	}

	be := b
	if littleEndian {
		be = make([]byte, len(b))
		copy(be, b)
		reverse(be)
	}

	x := new(big.Int).SetBytes(be)
	if signed && be[0]&0x80 != 0 {
		x.Sub(x, new(big.Int).Lsh(one, uint(8*len(be))))
	}
	return bigint.FromBig(x)
}

// MinBytes returns the smallest length v encodes into.
func MinBytes(v bigint.Int, signed bool) int {
	if v.Sign() == 0 {
		return 0
	}
	if !signed {
		return (v.BitLen() + 7) / 8
	}
	if v.Sign() > 0 {
		return v.BitLen()/8 + 1
	}
	// -v-1 has the same bit length as the magnitude part of the pattern
	m := v.Big()
	m.Neg(m)
	m.Sub(m, one)
	return m.BitLen()/8 + 1
}

func fillTwosComplement(v bigint.Int, dst []byte, signed bool) error {
	n := len(dst)
	if v.Sign() < 0 && !signed {
		return errors.NewOverflowError(errors.CodeNegative, errors.TooSmall,
			"can't convert negative int to unsigned",
			errors.WithContextOption("length", n))
	}

	bitsAvail := uint(8 * n)
	if signed && n > 0 {
		bitsAvail--
	}
	limit := new(big.Int).Lsh(one, bitsAvail)

	x := v.Big()
	if x.Sign() >= 0 {
		if x.Cmp(limit) >= 0 {
			return bytesOverflow(errors.CodeTooLarge, errors.TooLarge, n)
		}
	} else {
		if n == 0 || x.CmpAbs(limit) > 0 {
			return bytesOverflow(errors.CodeTooSmall, errors.TooSmall, n)
		}
		x.Add(x, new(big.Int).Lsh(one, uint(8*n)))
	}

	x.FillBytes(dst)
	return nil
}

func bytesOverflow(code string, dir errors.Direction, n int) error {
	return errors.NewOverflowError(code, dir, "int too big to convert",
		errors.WithContextOption("length", n))
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
