package bigint

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"testing"

	"intbridge/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dummyNonInt struct{}

type dummyIndexable struct{ result any }

func (d dummyIndexable) Index() (any, error) { return d.result, nil }

type pointerIndexable struct{ result int64 }

func (p *pointerIndexable) Index() (any, error) { return p.result, nil }

type pointerIntegral struct{ value int64 }

func (p *pointerIntegral) Int() Int { return NewInt(p.value) }

type failingIndexable struct{}

func (failingIndexable) Index() (any, error) {
	return nil, errors.NewValueError("CUSTOM", "index failed")
}

func TestCompactArm(t *testing.T) {
	assert.True(t, IsCompact(NewInt(math.MaxInt64)))
	assert.True(t, IsCompact(NewInt(math.MinInt64)))
	assert.True(t, IsCompact(FromUint64(math.MaxInt64)))
	assert.False(t, IsCompact(FromUint64(math.MaxUint64)))

	huge := new(big.Int).Mul(big.NewInt(math.MaxInt64), big.NewInt(10))
	assert.False(t, IsCompact(FromBig(huge)))

	// a big.Int that fits is normalised into the compact arm
	assert.True(t, IsCompact(FromBig(big.NewInt(-5))))
	assert.Equal(t, int64(-5), CompactValue(FromBig(big.NewInt(-5))))
}

func TestCompactFloorIsCompact(t *testing.T) {
	for _, v := range []int64{0, 1, -1, CompactFloorMin, CompactFloorMax, CompactFloorMin + 1, CompactFloorMax - 1} {
		x := NewInt(v)
		require.True(t, IsCompact(x), "%d", v)
		assert.Equal(t, v, CompactValue(x))
	}
}

func TestFromBigCopies(t *testing.T) {
	src := new(big.Int).Lsh(big.NewInt(1), 100)
	x := FromBig(src)
	src.SetInt64(3)

	assert.Equal(t, "1267650600228229401496703205376", x.String())

	out := x.Big()
	out.SetInt64(0)
	assert.Equal(t, 101, x.BitLen())
}

func TestSignAndBitLength(t *testing.T) {
	tests := []struct {
		value Int
		sign  int
		bits  int
	}{
		{NewInt(0), 0, 0},
		{NewInt(1), 1, 1},
		{NewInt(-1), -1, 1},
		{NewInt(0xffffffff), 1, 32},
		{MustParse("0xfffffffffffffffffffffff"), 1, 92},
		{NewInt(1230948701328090743), 1, 61},
		{NewInt(-1230948701328090743), -1, 61},
		{NewInt(math.MinInt64), -1, 64},
	}

	for _, tt := range tests {
		t.Run(tt.value.String(), func(t *testing.T) {
			assert.Equal(t, tt.sign, Sign(tt.value))
			assert.Equal(t, tt.bits, BitLength(tt.value))
		})
	}
}

func TestSignOfBooleans(t *testing.T) {
	s, err := SignOf(True)
	require.NoError(t, err)
	assert.Equal(t, 1, s)

	s, err = SignOf(false)
	require.NoError(t, err)
	assert.Equal(t, 0, s)

	_, err = SignOf("hello")
	assert.True(t, errors.IsTypeError(err))

	n, err := BitLengthOf(uint64(math.MaxUint64))
	require.NoError(t, err)
	assert.Equal(t, 64, n)
}

func TestCmpAcrossArms(t *testing.T) {
	big1 := MustParse("0x10000000000000000")
	assert.Equal(t, 1, big1.Cmp(NewInt(math.MaxInt64)))
	assert.Equal(t, 1, NewInt(math.MinInt64).Cmp(MustParse("-0x10000000000000000")))
	assert.True(t, MustParse("42").Equal(NewInt(42)))
}

func TestExactAndInstanceChecks(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		exact    bool
		instance bool
	}{
		{"int", NewInt(0), true, true},
		{"go int", -1, true, true},
		{"go uint64", uint64(0xffffffff), true, true},
		{"big", new(big.Int).Lsh(big.NewInt(1), 90), true, true},
		{"nil big", (*big.Int)(nil), false, false},
		{"bool", True, false, true},
		{"go bool", true, false, true},
		{"string", "hello", false, false},
		{"float", 0.3, false, false},
		{"non int", dummyNonInt{}, false, false},
		{"indexable", dummyIndexable{result: NewInt(0xBEEF)}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.exact, IsExact(tt.value))
			assert.Equal(t, tt.instance, IsInstance(tt.value))
		})
	}
}

func TestIndexCoercion(t *testing.T) {
	x, err := Index(dummyIndexable{result: NewInt(0xBEEF)})
	require.NoError(t, err)
	assert.Equal(t, int64(0xBEEF), x.Int64())

	x, err = Index(dummyIndexable{result: 7})
	require.NoError(t, err)
	assert.Equal(t, int64(7), x.Int64())

	x, err = Index(True)
	require.NoError(t, err)
	assert.Equal(t, int64(1), x.Int64())

	_, err = Index(0.3)
	require.Error(t, err)
	assert.True(t, errors.IsTypeError(err))
	assert.Contains(t, err.Error(), "'float' object cannot be interpreted as an integer")

	_, err = Index(dummyNonInt{})
	assert.True(t, errors.IsTypeError(err))
}

func TestIndexRejectsNonCanonicalResult(t *testing.T) {
	for _, result := range []any{True, 1.0, "12", nil} {
		t.Run(fmt.Sprintf("%T", result), func(t *testing.T) {
			_, err := Index(dummyIndexable{result: result})
			require.Error(t, err)
			assert.True(t, errors.IsTypeError(err))
			convErr, ok := errors.AsConversionError(err)
			require.True(t, ok)
			assert.Equal(t, errors.CodeBadIndexResult, convErr.Code)
		})
	}
}

func TestIndexPropagatesErrors(t *testing.T) {
	_, err := Index(failingIndexable{})
	require.Error(t, err)
	assert.True(t, errors.IsValueError(err))
}

func TestNilCapabilitiesAreRejected(t *testing.T) {
	var idx *pointerIndexable
	_, err := Index(idx)
	require.Error(t, err)
	convErr, ok := errors.AsConversionError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeNotInteger, convErr.Code)

	var integral *pointerIntegral
	assert.False(t, IsInstance(integral))
	_, err = RequireInstance(integral)
	assert.True(t, errors.IsTypeError(err))
	_, err = Index(integral)
	assert.True(t, errors.IsTypeError(err))

	x, err := Index(&pointerIndexable{result: 7})
	require.NoError(t, err)
	assert.Equal(t, "7", x.String())
	assert.True(t, IsInstance(&pointerIntegral{value: 7}))
}

func TestJSONRoundTrip(t *testing.T) {
	values := []Int{NewInt(0), NewInt(-12), MustParse("13123441234123423412341234123412341234124312341234213213213213213231")}
	for _, v := range values {
		data, err := json.Marshal(v)
		require.NoError(t, err)

		var back Int
		require.NoError(t, json.Unmarshal(data, &back))
		assert.True(t, v.Equal(back), "%s != %s", v, back)
	}

	var fromString Int
	require.NoError(t, json.Unmarshal([]byte(`"0xff"`), &fromString))
	assert.Equal(t, int64(255), fromString.Int64())

	var bad Int
	assert.Error(t, json.Unmarshal([]byte(`"12z"`), &bad))
}

func TestFormatVerbs(t *testing.T) {
	x := MustParse("0xdeadbeefdead")
	assert.Equal(t, "deadbeefdead", fmt.Sprintf("%x", x))
	assert.Equal(t, "244837814099629", fmt.Sprintf("%d", x))
	assert.Equal(t, "244837814099629", fmt.Sprint(x))
}
