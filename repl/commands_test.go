package repl

import (
	"bytes"
	"strings"
	"testing"

	"intbridge/errors"
	"intbridge/marshal"
	"intbridge/platform"
	rlua "intbridge/runtime/lua"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEvaluator(t *testing.T) *Evaluator {
	t.Helper()
	table, err := platform.NewTable(platform.LP64)
	require.NoError(t, err)
	conv := marshal.New(marshal.WithTable(table))

	lr := rlua.NewLuaRuntime(rlua.WithConverter(conv), rlua.WithOutput(&bytes.Buffer{}))
	require.NoError(t, lr.Initialize())
	t.Cleanup(func() { _ = lr.Cleanup() })
	return NewEvaluator(conv, lr, nil)
}

func TestExecuteCommands(t *testing.T) {
	e := newEvaluator(t)

	tests := []struct {
		line string
		want string
	}{
		{"as long -5", "(long) -5"},
		{"as int 0x7fffffff", "(int) 2147483647"},
		{"as unsigned long long 18446744073709551615", "(unsigned long long) 18446744073709551615"},
		{"as ulong true", "(unsigned long) 1"},
		{"overflow 0x10000000000000000", "-1 overflow=1"},
		{"overflow -0x10000000000000000 longlong", "-1 overflow=-1"},
		{"overflow 42", "42 overflow=0"},
		{"sptr -1", "18446744073709551615"},
		{"frombytes ffffcfc7 big signed", "-12345"},
		{"frombytes 3930000000000000 little signed", "12345"},
		{"frombytes 0xff", "255"},
		{"parse 22 12abg13 rest", `126154625 consumed=7 remainder=" rest"`},
		{"parse 0 0b1_0z", `2 consumed=5 remainder="z"`},
		{"parse 22   12abg13 ", `126154625 consumed=9 remainder=" "`},
		{"  parse 10 \t42\n", `42 consumed=3 remainder=""`},
		{"encode json -300", "-300"},
		{"encode binary 300", "0a03022c01"},
		{"decode binary 0a0202ff", "-1"},
		{"decode json 18446744073709551616", "18446744073709551616"},
		{"lua return intbridge.as_long(7)", "7"},
		{"intbridge.min_bytes(255, true)", "2"},
		{"", ""},
	}
	for _, tt := range tests {
		got, err := e.Execute(tt.line)
		require.NoError(t, err, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestExecuteBytes(t *testing.T) {
	e := newEvaluator(t)

	got, err := e.Execute("bytes 0xdeadbeefdead 7 little")
	require.NoError(t, err)
	first, _, _ := strings.Cut(got, "\n")
	assert.Equal(t, "addeefbeadde00", first)

	got, err = e.Execute("bytes -1 2 big signed")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "ffff\n"))

	got, err = e.Execute("bytes 0 0")
	require.NoError(t, err)
	assert.Equal(t, "(empty)", got)
}

func TestExecuteErrors(t *testing.T) {
	e := newEvaluator(t)

	tests := []struct {
		line string
		code string
	}{
		{"as int 2147483648", errors.CodeTooLarge},
		{"as ulong -1", errors.CodeNegative},
		{"as long 1.5", errors.CodeNotInteger},
		{"as nosuchtype 1", errors.CodeInvalidWidth},
		{"as long", errors.CodeUsage},
		{"bytes 256 1", errors.CodeTooLarge},
		{"bytes -1 1", errors.CodeNegative},
		{"bytes 1 1 sideways", errors.CodeUsage},
		{"parse 37 1", errors.CodeInvalidBase},
		{"parse 10 zz", errors.CodeInvalidLiteral},
		{"frombytes xyz", errors.CodeInvalidLiteral},
		{"lua intbridge.as_int(2^40)", errors.CodeTooLarge},
		{"this is not lua", errors.CodeScriptSyntax},
	}
	for _, tt := range tests {
		_, err := e.Execute(tt.line)
		require.Error(t, err, tt.line)
		convErr, ok := errors.AsConversionError(err)
		require.True(t, ok, tt.line)
		assert.Equal(t, tt.code, convErr.Code, tt.line)
	}

	_, err := e.Execute("decode msgpack c0")
	assert.Error(t, err)
	_, err = e.Execute("encode yaml 1")
	assert.Error(t, err)
}

func TestExecutePointer(t *testing.T) {
	if platform.DetectProfile() == platform.ILP32 {
		t.Skip("pointer width follows the host")
	}
	e := newEvaluator(t)

	got, err := e.Execute("ptr -1")
	require.NoError(t, err)
	assert.Equal(t, "0xffffffffffffffff", got)

	_, err = e.Execute("ptr 0x10000000000000000")
	assert.True(t, errors.IsOverflow(err))
}

func TestInspectAndLimits(t *testing.T) {
	e := newEvaluator(t)

	got, err := e.Execute("inspect -129")
	require.NoError(t, err)
	assert.Contains(t, got, "sign:       -1")
	assert.Contains(t, got, "bit length: 8")
	assert.Contains(t, got, "min bytes:  1 unsigned, 2 signed")
	assert.Contains(t, got, "fits:       int")
	assert.Contains(t, got, "erlang:     <<")

	got, err = e.Execute("inspect true")
	require.NoError(t, err)
	assert.Contains(t, got, "type:       bool (exact=false)")

	got, err = e.Execute("limits")
	require.NoError(t, err)
	assert.Contains(t, got, "profile lp64")
	assert.Contains(t, got, "[-9223372036854775808, 9223372036854775807]")
}

func TestRegisterCommand(t *testing.T) {
	e := newEvaluator(t)
	e.RegisterCommand("echo", "echo <text>", "repeat text", func(args []string, rest string) (string, error) {
		return rest, nil
	})

	got, err := e.Execute("echo  hello world")
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Contains(t, e.Commands(), "echo")

	usage, help, ok := e.Usage("echo")
	assert.True(t, ok)
	assert.Equal(t, "echo <text>", usage)
	assert.Equal(t, "repeat text", help)
}

func TestEvaluatorWithoutLua(t *testing.T) {
	e := NewEvaluator(nil, nil, nil)
	_, err := e.Execute("lua return 1")
	convErr, ok := errors.AsConversionError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeNotInitialized, convErr.Code)
}
