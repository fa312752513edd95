package marshal

import (
	"fmt"
	"math"
	"math/big"

	"intbridge/bigint"
	"intbridge/errors"
	"intbridge/platform"
)

// AsSigned converts v to the signed width w. Values that are not integers
// are coerced through their Indexable capability; anything else is a TYPE
// error. Values outside [w.Min(), w.Max()] are an OVERFLOW error.
func (c *Converter) AsSigned(v any, w platform.Width) (int64, error) {
	if !w.Signed {
		return 0, errors.NewSystemError(errors.CodeInvalidWidth, fmt.Sprintf("%s is not a signed width", w))
	}
	x, err := bigint.Index(v)
	if err != nil {
		return 0, c.fail(w.Name, v, err)
	}
	if dir := w.Compare(x); dir != errors.InRange {
		return 0, c.fail(w.Name, v, signedOverflow(w, dir))
	}
	return x.Int64(), nil
}

// AsUnsigned converts v to the unsigned width w. Only integers are accepted;
// Indexable values are not coerced.
func (c *Converter) AsUnsigned(v any, w platform.Width) (uint64, error) {
	if w.Signed {
		return 0, errors.NewSystemError(errors.CodeInvalidWidth, fmt.Sprintf("%s is not an unsigned width", w))
	}
	x, err := bigint.RequireInstance(v)
	if err != nil {
		return 0, c.fail(w.Name, v, err)
	}
	if x.Sign() < 0 {
		return 0, c.fail(w.Name, v, errors.NewOverflowError(errors.CodeNegative, errors.TooSmall,
			"can't convert negative value to unsigned int",
			errors.WithContextOption("width", w.Name)))
	}
	if x.Cmp(w.Max()) > 0 {
		return 0, c.fail(w.Name, v, errors.NewOverflowError(errors.CodeTooLarge, errors.TooLarge,
			fmt.Sprintf("Python int too large to convert to C %s", w.Name),
			errors.WithContextOption("width", w.Name)))
	}
	return x.Uint64(), nil
}

// AsSignedAndOverflow is AsSigned for callers that cannot take an error for
// a range violation. It returns (-1, TooLarge|TooSmall, nil) when the
// coerced value is out of range and (v, InRange, nil) otherwise. Errors from
// the coercion itself, including those raised by an Indexable, are returned
// unchanged.
func (c *Converter) AsSignedAndOverflow(v any, w platform.Width) (int64, errors.Direction, error) {
	if !w.Signed {
		return -1, errors.InRange, errors.NewSystemError(errors.CodeInvalidWidth, fmt.Sprintf("%s is not a signed width", w))
	}
	x, err := bigint.Index(v)
	if err != nil {
		return -1, errors.InRange, c.fail(w.Name, v, err)
	}
	if dir := w.Compare(x); dir != errors.InRange {
		return -1, dir, nil
	}
	return x.Int64(), errors.InRange, nil
}

// AsStrictSigned is AsSigned without Indexable coercion, the contract of the
// ssize_t conversion.
func (c *Converter) AsStrictSigned(v any, w platform.Width) (int64, error) {
	x, err := bigint.RequireInstance(v)
	if err != nil {
		return 0, c.fail(w.Name, v, err)
	}
	return c.AsSigned(x, w)
}

func signedOverflow(w platform.Width, dir errors.Direction) error {
	code := errors.CodeTooLarge
	if dir == errors.TooSmall {
		code = errors.CodeTooSmall
	}
	return errors.NewOverflowError(code, dir,
		fmt.Sprintf("Python int too large to convert to C %s", w.Name),
		errors.WithContextOption("width", w.Name),
		errors.WithContextOption("bits", w.Bits))
}

// AsInt converts v to a C int.
func (c *Converter) AsInt(v any) (int32, error) {
	n, err := c.AsSigned(v, c.table.Int)
	return int32(n), err
}

// AsLong converts v to a C long.
func (c *Converter) AsLong(v any) (int64, error) {
	return c.AsSigned(v, c.table.Long)
}

// AsLongLong converts v to a C long long.
func (c *Converter) AsLongLong(v any) (int64, error) {
	return c.AsSigned(v, c.table.LongLong)
}

// AsLongAndOverflow converts v to a C long, reporting range violations
// through the returned flag.
func (c *Converter) AsLongAndOverflow(v any) (int64, errors.Direction, error) {
	return c.AsSignedAndOverflow(v, c.table.Long)
}

// AsLongLongAndOverflow is AsLongAndOverflow for C long long.
func (c *Converter) AsLongLongAndOverflow(v any) (int64, errors.Direction, error) {
	return c.AsSignedAndOverflow(v, c.table.LongLong)
}

// AsUnsignedLong converts v to a C unsigned long.
func (c *Converter) AsUnsignedLong(v any) (uint64, error) {
	return c.AsUnsigned(v, c.table.ULong)
}

// AsUnsignedLongLong converts v to a C unsigned long long.
func (c *Converter) AsUnsignedLongLong(v any) (uint64, error) {
	return c.AsUnsigned(v, c.table.ULongLong)
}

// AsSsize converts v to ssize_t. Only integers are accepted.
func (c *Converter) AsSsize(v any) (int64, error) {
	return c.AsStrictSigned(v, c.table.SSize)
}

// AsSize converts v to size_t.
func (c *Converter) AsSize(v any) (uint64, error) {
	return c.AsUnsigned(v, c.table.Size)
}

// FromInt64 widens a native signed integer.
func FromInt64(n int64) bigint.Int {
	return bigint.NewInt(n)
}

// FromUint64 widens a native unsigned integer.
func FromUint64(n uint64) bigint.Int {
	return bigint.FromUint64(n)
}

// FromSsize widens a ssize_t.
func FromSsize(n int) bigint.Int {
	return bigint.NewInt(int64(n))
}

// FromSize widens a size_t.
func FromSize(n uint) bigint.Int {
	return bigint.FromUint64(uint64(n))
}

// FromFloat64 truncates f toward zero. NaN is a VALUE error and the
// infinities are OVERFLOW errors.
func FromFloat64(f float64) (bigint.Int, error) {
	switch {
	case math.IsNaN(f):
		return bigint.Int{}, errors.NewValueError(errors.CodeNaN, "cannot convert float NaN to integer")
	case math.IsInf(f, 1):
		return bigint.Int{}, errors.NewOverflowError(errors.CodeTooLarge, errors.TooLarge, "cannot convert float infinity to integer")
	case math.IsInf(f, -1):
		return bigint.Int{}, errors.NewOverflowError(errors.CodeTooSmall, errors.TooSmall, "cannot convert float infinity to integer")
	}

	t := math.Trunc(f)
	if t >= math.MinInt64 && t < math.MaxInt64 {
		return bigint.NewInt(int64(t)), nil
	}
	n, _ := new(big.Float).SetFloat64(t).Int(nil)
	return bigint.FromBig(n), nil
}
