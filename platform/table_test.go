package platform

import (
	"testing"

	"intbridge/bigint"
	"intbridge/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfiles(t *testing.T) {
	tests := []struct {
		profile  Profile
		longBits uint
		wordBits uint
	}{
		{LP64, 64, 64},
		{LLP64, 32, 64},
		{ILP32, 32, 32},
	}
	for _, tt := range tests {
		table, err := NewTable(tt.profile)
		require.NoError(t, err)

		assert.Equal(t, tt.profile, table.Profile)
		assert.Equal(t, uint(32), table.Int.Bits)
		assert.Equal(t, uint(64), table.LongLong.Bits)
		assert.Equal(t, tt.longBits, table.Long.Bits)
		assert.Equal(t, tt.longBits, table.ULong.Bits)
		assert.Equal(t, tt.wordBits, table.SSize.Bits)
		assert.Equal(t, tt.wordBits, table.Size.Bits)
		assert.Equal(t, tt.wordBits, table.Pointer.Bits)
		assert.False(t, table.Pointer.Signed)
		assert.Len(t, table.Widths(), 9)
	}

	_, err := NewTable("lp128")
	assert.True(t, errors.IsSystemError(err))
}

func TestWidthRanges(t *testing.T) {
	tests := []struct {
		bits   uint
		signed bool
		min    string
		max    string
	}{
		{8, true, "-128", "127"},
		{8, false, "0", "255"},
		{32, true, "-2147483648", "2147483647"},
		{32, false, "0", "4294967295"},
		{64, true, "-9223372036854775808", "9223372036854775807"},
		{64, false, "0", "18446744073709551615"},
		{1, true, "-1", "0"},
	}
	for _, tt := range tests {
		w, err := NewWidth("w", tt.bits, tt.signed)
		require.NoError(t, err)
		assert.Equal(t, tt.min, w.Min().String(), w.String())
		assert.Equal(t, tt.max, w.Max().String(), w.String())
	}

	for _, bits := range []uint{0, 65, 128} {
		_, err := NewWidth("w", bits, true)
		convErr, ok := errors.AsConversionError(err)
		require.True(t, ok)
		assert.Equal(t, errors.CodeInvalidWidth, convErr.Code)
	}
}

func TestWidthCompare(t *testing.T) {
	w, err := NewWidth("int", 32, true)
	require.NoError(t, err)

	assert.Equal(t, errors.InRange, w.Compare(bigint.NewInt(-2147483648)))
	assert.Equal(t, errors.InRange, w.Compare(bigint.NewInt(2147483647)))
	assert.Equal(t, errors.TooLarge, w.Compare(bigint.NewInt(2147483648)))
	assert.Equal(t, errors.TooSmall, w.Compare(bigint.NewInt(-2147483649)))
	assert.True(t, w.Contains(bigint.NewInt(0)))
	assert.False(t, w.Contains(bigint.MustParse("0x100000000")))
	assert.Equal(t, "int(32, signed)", w.String())
}

func TestLookup(t *testing.T) {
	table, err := NewTable(LP64)
	require.NoError(t, err)

	for name, want := range map[string]string{
		"int":                "int",
		"Unsigned Long":      "unsigned long",
		"ulonglong":          "unsigned long long",
		" ssize_t ":          "ssize_t",
		"py_ssize_t":         "ssize_t",
		"size":               "size_t",
		"ptr":                "void*",
		"unsigned long long": "unsigned long long",
	} {
		w, ok := table.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, want, w.Name, name)
	}

	_, ok := table.Lookup("short")
	assert.False(t, ok)
}

func TestParseProfile(t *testing.T) {
	p, err := ParseProfile("LLP64")
	require.NoError(t, err)
	assert.Equal(t, LLP64, p)

	p, err = ParseProfile("auto")
	require.NoError(t, err)
	assert.Equal(t, DetectProfile(), p)

	_, err = ParseProfile("vax")
	assert.Error(t, err)
}

func TestCurrentIsStable(t *testing.T) {
	first := Current()
	assert.Same(t, first, Current())

	again, err := Init(first.Profile)
	require.NoError(t, err)
	assert.Same(t, first, again)

	other := LP64
	if first.Profile == LP64 {
		other = ILP32
	}
	_, err = Init(other)
	assert.True(t, errors.IsSystemError(err))
}

func TestInitRejectsUnknownProfile(t *testing.T) {
	_, err := Init("lp128")
	require.Error(t, err)
	assert.True(t, errors.IsSystemError(err))

	var table *Table
	require.NotPanics(t, func() { table = Current() })
	require.NotNil(t, table)

	again, err := Init(table.Profile)
	require.NoError(t, err)
	assert.Same(t, table, again)
}
