package marshal

import (
	"bytes"
	"math"
	"math/big"
	"testing"

	"intbridge/bigint"
	"intbridge/errors"
	"intbridge/logging"
	"intbridge/platform"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dummyNonInt struct{}

type dummyIndexable struct{ result any }

func (d dummyIndexable) Index() (any, error) { return d.result, nil }

type raisingIndexable struct{ err error }

func (r raisingIndexable) Index() (any, error) { return nil, r.err }

type pointerIndexable struct{ result int64 }

func (p *pointerIndexable) Index() (any, error) { return p.result, nil }

func newLP64(t *testing.T) *Converter {
	t.Helper()
	table, err := platform.NewTable(platform.LP64)
	require.NoError(t, err)
	return New(WithTable(table))
}

// outcome of one conversion: a value, an overflow direction or a type error
type outcome struct {
	value    string
	overflow errors.Direction
	typeErr  bool
}

func fits(v string) outcome {
	return outcome{value: v}
}

func overflow(dir errors.Direction) outcome {
	return outcome{overflow: dir}
}

func typeError() outcome {
	return outcome{typeErr: true}
}

type example struct {
	name  string
	value any
}

func intExamples() []example {
	return []example{
		{"0", 0},
		{"1", 1},
		{"-1", -1},
		{"-2", -2},
		{"True", bigint.True},
		{"False", bigint.False},
		{"0x7fffffff", 0x7fffffff},
		{"0xffffffff", 0xffffffff},
		{"-0xffffffff", -0xffffffff},
		{"0x7f..f (128 bits)", bigint.MustParse("0x7fffffffffffffffffffffffffffffff")},
		{"0xff..f (128 bits)", bigint.MustParse("0xffffffffffffffffffffffffffffffff")},
		{"-0xff..f (128 bits)", bigint.MustParse("-0xffffffffffffffffffffffffffffffff")},
		{"0xff..f (136 bits)", bigint.MustParse("0xffffffffffffffffffffffffffffffffff")},
		{"-0xff..f (136 bits)", bigint.MustParse("-0xffffffffffffffffffffffffffffffffff")},
		{"0.3", 0.3},
		{"DummyNonInt", dummyNonInt{}},
		{"DummyIndexable", dummyIndexable{result: 0xBEEF}},
	}
}

func checkOutcome(t *testing.T, want outcome, got string, err error) {
	t.Helper()
	switch {
	case want.typeErr:
		require.Error(t, err)
		assert.True(t, errors.IsTypeError(err), "want TYPE error, got %v", err)
	case want.overflow != errors.InRange:
		require.Error(t, err)
		assert.True(t, errors.IsOverflow(err), "want OVERFLOW error, got %v", err)
		assert.Equal(t, want.overflow, errors.DirectionOf(err))
	default:
		require.NoError(t, err)
		assert.Equal(t, want.value, got)
	}
}

func TestAsLong(t *testing.T) {
	c := newLP64(t)
	want := []outcome{
		fits("0"), fits("1"), fits("-1"), fits("-2"), fits("1"), fits("0"),
		fits("2147483647"), fits("4294967295"), fits("-4294967295"),
		overflow(errors.TooLarge), overflow(errors.TooLarge), overflow(errors.TooSmall),
		overflow(errors.TooLarge), overflow(errors.TooSmall),
		typeError(), typeError(), fits("48879"),
	}

	for i, ex := range intExamples() {
		t.Run(ex.name, func(t *testing.T) {
			n, err := c.AsLong(ex.value)
			checkOutcome(t, want[i], bigint.NewInt(n).String(), err)
		})
	}
}

func TestAsInt(t *testing.T) {
	c := newLP64(t)
	want := []outcome{
		fits("0"), fits("1"), fits("-1"), fits("-2"), fits("1"), fits("0"),
		fits("2147483647"), overflow(errors.TooLarge), overflow(errors.TooSmall),
		overflow(errors.TooLarge), overflow(errors.TooLarge), overflow(errors.TooSmall),
		overflow(errors.TooLarge), overflow(errors.TooSmall),
		typeError(), typeError(), fits("48879"),
	}

	for i, ex := range intExamples() {
		t.Run(ex.name, func(t *testing.T) {
			n, err := c.AsInt(ex.value)
			checkOutcome(t, want[i], bigint.NewInt(int64(n)).String(), err)
		})
	}
}

func TestAsUnsignedLong(t *testing.T) {
	c := newLP64(t)
	want := []outcome{
		fits("0"), fits("1"), overflow(errors.TooSmall), overflow(errors.TooSmall), fits("1"), fits("0"),
		fits("2147483647"), fits("4294967295"), overflow(errors.TooSmall),
		overflow(errors.TooLarge), overflow(errors.TooLarge), overflow(errors.TooSmall),
		overflow(errors.TooLarge), overflow(errors.TooSmall),
		typeError(), typeError(), typeError(),
	}

	for i, ex := range intExamples() {
		t.Run(ex.name, func(t *testing.T) {
			n, err := c.AsUnsignedLong(ex.value)
			checkOutcome(t, want[i], bigint.FromUint64(n).String(), err)
		})
	}
}

func TestAsSsize(t *testing.T) {
	c := newLP64(t)
	want := []outcome{
		fits("0"), fits("1"), fits("-1"), fits("-2"), fits("1"), fits("0"),
		fits("2147483647"), fits("4294967295"), fits("-4294967295"),
		overflow(errors.TooLarge), overflow(errors.TooLarge), overflow(errors.TooSmall),
		overflow(errors.TooLarge), overflow(errors.TooSmall),
		typeError(), typeError(), typeError(),
	}

	for i, ex := range intExamples() {
		t.Run(ex.name, func(t *testing.T) {
			n, err := c.AsSsize(ex.value)
			checkOutcome(t, want[i], bigint.NewInt(n).String(), err)
		})
	}
}

func TestAsLongAndOverflow(t *testing.T) {
	c := newLP64(t)
	type result struct {
		value int64
		flag  errors.Direction
		typ   bool
	}
	want := []result{
		{0, 0, false}, {1, 0, false}, {-1, 0, false}, {-2, 0, false}, {1, 0, false}, {0, 0, false},
		{0x7fffffff, 0, false}, {0xffffffff, 0, false}, {-0xffffffff, 0, false},
		{-1, errors.TooLarge, false}, {-1, errors.TooLarge, false}, {-1, errors.TooSmall, false},
		{-1, errors.TooLarge, false}, {-1, errors.TooSmall, false},
		{0, 0, true}, {0, 0, true}, {0xBEEF, 0, false},
	}

	for i, ex := range intExamples() {
		t.Run(ex.name, func(t *testing.T) {
			n, flag, err := c.AsLongAndOverflow(ex.value)
			if want[i].typ {
				require.Error(t, err)
				assert.True(t, errors.IsTypeError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, want[i].value, n)
			assert.Equal(t, want[i].flag, flag)
		})
	}
}

func TestOverflowFlagKeepsIndexErrors(t *testing.T) {
	c := newLP64(t)

	inner := errors.NewOverflowError(errors.CodeTooLarge, errors.TooLarge, "index too large")
	n, flag, err := c.AsLongAndOverflow(raisingIndexable{err: inner})
	require.Error(t, err)
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, int64(-1), n)
	assert.Equal(t, errors.InRange, flag)

	n, flag, err = c.AsLongLongAndOverflow(raisingIndexable{err: errors.NewValueError(errors.CodeNaN, "nan")})
	require.Error(t, err)
	assert.True(t, errors.IsValueError(err))
	assert.Equal(t, int64(-1), n)
	assert.Equal(t, errors.InRange, flag)

	n, flag, err = c.AsLongAndOverflow(dummyIndexable{result: bigint.MustParse("0x10000000000000000")})
	require.NoError(t, err)
	assert.Equal(t, int64(-1), n)
	assert.Equal(t, errors.TooLarge, flag)
}

func TestNilIndexableIsTypeError(t *testing.T) {
	c := newLP64(t)

	var p *pointerIndexable
	_, err := c.AsLong(p)
	require.Error(t, err)
	assert.True(t, errors.IsTypeError(err))

	_, _, err = c.AsLongAndOverflow(p)
	assert.True(t, errors.IsTypeError(err))

	n, err := c.AsLong(&pointerIndexable{result: 42})
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestBoundsAreClosed(t *testing.T) {
	c := newLP64(t)
	table := c.Table()

	for _, w := range table.Widths() {
		t.Run(w.String(), func(t *testing.T) {
			below := bigint.FromBig(new(big.Int).Sub(w.Min().Big(), big.NewInt(1)))
			above := bigint.FromBig(new(big.Int).Add(w.Max().Big(), big.NewInt(1)))

			if w.Signed {
				_, err := c.AsSigned(w.Max(), w)
				assert.NoError(t, err)
				_, err = c.AsSigned(w.Min(), w)
				assert.NoError(t, err)
				_, err = c.AsSigned(above, w)
				assert.Equal(t, errors.TooLarge, errors.DirectionOf(err))
				_, err = c.AsSigned(below, w)
				assert.Equal(t, errors.TooSmall, errors.DirectionOf(err))
				return
			}

			n, err := c.AsUnsigned(w.Max(), w)
			require.NoError(t, err)
			assert.Equal(t, w.Max().Uint64(), n)
			_, err = c.AsUnsigned(above, w)
			assert.Equal(t, errors.TooLarge, errors.DirectionOf(err))
			_, err = c.AsUnsigned(below, w)
			assert.Equal(t, errors.TooSmall, errors.DirectionOf(err))
		})
	}
}

func TestUnsignedMaxIsAllOnes(t *testing.T) {
	c := newLP64(t)

	n, err := c.AsUnsignedLong(uint64(math.MaxUint64))
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), n)

	_, err = c.AsUnsignedLong(bigint.MustParse("0x10000000000000000"))
	assert.True(t, errors.IsOverflow(err))
}

func TestNegativeUnsignedAlwaysTooSmall(t *testing.T) {
	c := newLP64(t)
	for _, v := range []bigint.Int{bigint.NewInt(-1), bigint.NewInt(math.MinInt64), bigint.MustParse("-0x10000000000000000000000000000000000")} {
		_, err := c.AsUnsignedLongLong(v)
		require.Error(t, err)
		convErr, ok := errors.AsConversionError(err)
		require.True(t, ok)
		assert.Equal(t, errors.CodeNegative, convErr.Code)
		assert.Equal(t, errors.TooSmall, convErr.Direction)
		assert.Equal(t, "can't convert negative value to unsigned int", convErr.Message)
	}
}

func TestIndexableMustReturnExactInt(t *testing.T) {
	c := newLP64(t)

	n, err := c.AsLong(dummyIndexable{result: bigint.NewInt(0xBEEF)})
	require.NoError(t, err)
	assert.Equal(t, int64(0xBEEF), n)

	_, err = c.AsLong(dummyIndexable{result: bigint.True})
	require.Error(t, err)
	assert.True(t, errors.IsTypeError(err))

	_, err = c.AsLong(dummyIndexable{result: 3.0})
	assert.True(t, errors.IsTypeError(err))
}

func TestWidthSignednessMismatch(t *testing.T) {
	c := newLP64(t)
	_, err := c.AsSigned(1, c.Table().ULong)
	assert.True(t, errors.IsSystemError(err))

	_, err = c.AsUnsigned(1, c.Table().Long)
	assert.True(t, errors.IsSystemError(err))
}

func TestLLP64Long(t *testing.T) {
	table, err := platform.NewTable(platform.LLP64)
	require.NoError(t, err)
	c := New(WithTable(table))

	_, err = c.AsLong(0xffffffff)
	assert.Equal(t, errors.TooLarge, errors.DirectionOf(err))

	n, err := c.AsLongLong(0xffffffff)
	require.NoError(t, err)
	assert.Equal(t, int64(0xffffffff), n)

	n, flag, err := c.AsLongAndOverflow(-0xffffffff)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), n)
	assert.Equal(t, errors.TooSmall, flag)
}

func TestFromNative(t *testing.T) {
	for _, n := range []int{0, -1, 1, 0xffffffff} {
		assert.Equal(t, int64(n), FromSsize(n).Int64())
	}
	for _, n := range []uint{0, 1, 0xffffffff} {
		assert.Equal(t, uint64(n), FromSize(n).Uint64())
	}
	assert.Equal(t, "18446744073709551615", FromUint64(math.MaxUint64).String())
	assert.Equal(t, "-9223372036854775808", FromInt64(math.MinInt64).String())
}

func TestFromFloat64(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0.0, "0"},
		{-1.0, "-1"},
		{-11.123456789123456789, "-11"},
		{0.9, "0"},
		{1e20, "100000000000000000000"},
		{-9223372036854775808.0, "-9223372036854775808"},
		{9223372036854775808.0, "9223372036854775808"},
	}
	for _, tt := range tests {
		x, err := FromFloat64(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, x.String())
	}

	_, err := FromFloat64(math.NaN())
	assert.True(t, errors.IsValueError(err))
	_, err = FromFloat64(math.Inf(1))
	assert.Equal(t, errors.TooLarge, errors.DirectionOf(err))
	_, err = FromFloat64(math.Inf(-1))
	assert.Equal(t, errors.TooSmall, errors.DirectionOf(err))
}

func TestFailuresAreLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewDefaultLoggerWithConfig(logging.LoggerConfig{
		Level:   logging.LevelDebug,
		Writers: []logging.Writer{logging.NewConsoleWriterTo(&buf)},
	})
	table, err := platform.NewTable(platform.LP64)
	require.NoError(t, err)
	c := New(WithTable(table), WithLogger(logger))

	_, err = c.AsInt(0.3)
	require.Error(t, err)
	_, err = c.AsInt(0xffffffff)
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "conversion failed")
	assert.Contains(t, out, errors.CodeNotInteger)
	assert.Contains(t, out, errors.CodeTooLarge)
	assert.Contains(t, out, `"width":"int"`)
	assert.Contains(t, out, `"component":"marshal"`)
}

func TestPackageLevelHelpers(t *testing.T) {
	n, err := AsLongLong(bigint.True)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = AsUnsignedLongLong(-1)
	assert.True(t, errors.IsOverflow(err))
	assert.Same(t, Default(), Default())
}
