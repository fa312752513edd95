package lua

import (
	"fmt"
	"strings"

	"intbridge/bigint"
	"intbridge/errors"
	"intbridge/marshal"

	lua "github.com/yuin/gopher-lua"
)

// IntBridgeModule exposes the converters to Lua as the "intbridge" module.
// Conversion failures are raised as intbridge.Error values whose tostring
// reads like "OverflowError: Python int too large to convert to C long".
type IntBridgeModule struct {
	conv *marshal.Converter
}

// NewIntBridgeModule creates the module over conv (marshal.Default() if nil)
func NewIntBridgeModule(conv *marshal.Converter) *IntBridgeModule {
	if conv == nil {
		conv = marshal.Default()
	}
	return &IntBridgeModule{conv: conv}
}

// Name returns the module name
func (m *IntBridgeModule) Name() string {
	return "intbridge"
}

// Loader builds the module table
func (m *IntBridgeModule) Loader(L *lua.LState) int {
	registerTypes(L)

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"int":                  m.newInt,
		"parse":                m.parse,
		"as":                   m.as,
		"as_int":               m.bounded(func(v any) (any, error) { return m.conv.AsInt(v) }),
		"as_long":              m.bounded(func(v any) (any, error) { return m.conv.AsLong(v) }),
		"as_longlong":          m.bounded(func(v any) (any, error) { return m.conv.AsLongLong(v) }),
		"as_ulong":             m.bounded(func(v any) (any, error) { return m.conv.AsUnsignedLong(v) }),
		"as_ulonglong":         m.bounded(func(v any) (any, error) { return m.conv.AsUnsignedLongLong(v) }),
		"as_size":              m.bounded(func(v any) (any, error) { return m.conv.AsSize(v) }),
		"as_ssize":             m.bounded(func(v any) (any, error) { return m.conv.AsSsize(v) }),
		"as_long_and_overflow": m.asLongAndOverflow,
		"to_pointer":           m.toPointer,
		"from_signed_pointer":  m.fromSignedPointer,
		"to_bytes":             m.toBytes,
		"from_bytes":           m.fromBytes,
		"min_bytes":            m.minBytes,
		"sign":                 m.sign,
		"bit_length":           m.bitLength,
		"is_compact":           m.isCompact,
		"is_exact":             m.isExact,
		"is_instance":          m.isInstance,
		"exception":            m.exception,
	})

	limits := L.NewTable()
	for _, w := range m.conv.Table().Widths() {
		entry := L.NewTable()
		L.SetField(entry, "bits", lua.LNumber(w.Bits))
		L.SetField(entry, "signed", lua.LBool(w.Signed))
		pushInt(L, w.Min())
		L.SetField(entry, "min", L.Get(-1))
		pushInt(L, w.Max())
		L.SetField(entry, "max", L.Get(-1))
		L.Pop(2)
		L.SetField(limits, w.Name, entry)
	}
	L.SetField(mod, "limits", limits)
	L.SetField(mod, "profile", lua.LString(m.conv.Table().Profile))

	L.Push(mod)
	return 1
}

// newInt: intbridge.int(v [, base]) builds an Int from a number, an Int, a
// boolean or a string literal (base 10 unless given; 0 detects prefixes).
func (m *IntBridgeModule) newInt(L *lua.LState) int {
	if s, ok := L.Get(1).(lua.LString); ok {
		x, err := bigint.ParseFull(string(s), L.OptInt(2, 10))
		if err != nil {
			return raise(L, err)
		}
		pushInt(L, x)
		return 1
	}

	x, err := bigint.Index(hostValue(L, L.CheckAny(1)))
	if err != nil {
		return raise(L, err)
	}
	pushInt(L, x)
	return 1
}

// parse: intbridge.parse(text [, base]) returns value, consumed, remainder
func (m *IntBridgeModule) parse(L *lua.LState) int {
	result, err := bigint.ParseWithBase(L.CheckString(1), L.OptInt(2, 10))
	if err != nil {
		return raise(L, err)
	}
	pushInt(L, result.Value)
	L.Push(lua.LNumber(result.Consumed))
	L.Push(lua.LString(result.Remainder))
	return 3
}

// as: intbridge.as(type_name, v) converts to any width of the table
func (m *IntBridgeModule) as(L *lua.LState) int {
	name := L.CheckString(1)
	w, ok := m.conv.Table().Lookup(name)
	if !ok {
		L.ArgError(1, fmt.Sprintf("unknown native type %q", name))
		return 0
	}

	v := hostValue(L, L.CheckAny(2))
	if w.Signed {
		n, err := m.conv.AsSigned(v, w)
		if err != nil {
			return raise(L, err)
		}
		pushInt(L, bigint.NewInt(n))
		return 1
	}
	n, err := m.conv.AsUnsigned(v, w)
	if err != nil {
		return raise(L, err)
	}
	pushInt(L, bigint.FromUint64(n))
	return 1
}

// bounded wraps a named converter. The native result is returned as an Int
// since 64-bit values do not survive a trip through a Lua number.
func (m *IntBridgeModule) bounded(convert func(any) (any, error)) lua.LGFunction {
	return func(L *lua.LState) int {
		n, err := convert(hostValue(L, L.CheckAny(1)))
		if err != nil {
			return raise(L, err)
		}
		x, _ := bigint.AsInstance(n)
		pushInt(L, x)
		return 1
	}
}

func (m *IntBridgeModule) asLongAndOverflow(L *lua.LState) int {
	n, flag, err := m.conv.AsLongAndOverflow(hostValue(L, L.CheckAny(1)))
	if err != nil {
		return raise(L, err)
	}
	pushInt(L, bigint.NewInt(n))
	L.Push(lua.LNumber(flag))
	return 2
}

func (m *IntBridgeModule) toPointer(L *lua.LState) int {
	p, err := m.conv.ToPointer(hostValue(L, L.CheckAny(1)))
	if err != nil {
		return raise(L, err)
	}
	pushInt(L, m.conv.FromPointer(p))
	return 1
}

func (m *IntBridgeModule) fromSignedPointer(L *lua.LState) int {
	x := checkInt(L, 1)
	if !x.IsInt64() {
		dir, code := errors.TooLarge, errors.CodeTooLarge
		if x.Sign() < 0 {
			dir, code = errors.TooSmall, errors.CodeTooSmall
		}
		return raise(L, errors.NewOverflowError(code, dir, "signed pointer out of range"))
	}
	pushInt(L, m.conv.FromSignedPointer(x.Int64()))
	return 1
}

// toBytes: intbridge.to_bytes(v, n [, order [, signed]]) returns a string of
// n bytes. order is "big" (default), "little" or "native".
func (m *IntBridgeModule) toBytes(L *lua.LState) int {
	x := checkInt(L, 1)
	n := L.CheckInt(2)
	le := m.littleEndian(L, 3)
	signed := L.OptBool(4, false)

	buf, err := m.conv.ToBytes(x, n, le, signed)
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LString(buf))
	return 1
}

// fromBytes: intbridge.from_bytes(s [, order [, signed]])
func (m *IntBridgeModule) fromBytes(L *lua.LState) int {
	data := L.CheckString(1)
	le := m.littleEndian(L, 2)
	signed := L.OptBool(3, false)
	pushInt(L, marshal.FromByteArray([]byte(data), le, signed))
	return 1
}

func (m *IntBridgeModule) minBytes(L *lua.LState) int {
	L.Push(lua.LNumber(marshal.MinBytes(checkInt(L, 1), L.OptBool(2, false))))
	return 1
}

func (m *IntBridgeModule) littleEndian(L *lua.LState, n int) bool {
	switch order := strings.ToLower(L.OptString(n, "big")); order {
	case "big":
		return false
	case "little":
		return true
	case "native":
		return m.conv.Table().LittleEndian
	default:
		L.ArgError(n, fmt.Sprintf("byte order must be 'big', 'little' or 'native', got %q", order))
		return false
	}
}

func (m *IntBridgeModule) sign(L *lua.LState) int {
	s, err := bigint.SignOf(hostValue(L, L.CheckAny(1)))
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LNumber(s))
	return 1
}

func (m *IntBridgeModule) bitLength(L *lua.LState) int {
	n, err := bigint.BitLengthOf(hostValue(L, L.CheckAny(1)))
	if err != nil {
		return raise(L, err)
	}
	L.Push(lua.LNumber(n))
	return 1
}

func (m *IntBridgeModule) isCompact(L *lua.LState) int {
	L.Push(lua.LBool(bigint.IsCompact(checkInt(L, 1))))
	return 1
}

func (m *IntBridgeModule) isExact(L *lua.LState) int {
	L.Push(lua.LBool(bigint.IsExact(hostValue(L, L.Get(1)))))
	return 1
}

func (m *IntBridgeModule) isInstance(L *lua.LState) int {
	L.Push(lua.LBool(bigint.IsInstance(hostValue(L, L.Get(1)))))
	return 1
}

// exception: intbridge.exception(e) returns the exception name and code of
// a caught intbridge.Error, or nil for anything else.
func (m *IntBridgeModule) exception(L *lua.LState) int {
	ud, ok := L.Get(1).(*lua.LUserData)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	convErr, ok := ud.Value.(*errors.ConversionError)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(convErr.ExceptionName()))
	L.Push(lua.LString(convErr.Code))
	return 2
}

// Ensure IntBridgeModule implements the LuaModule interface
var _ LuaModule = (*IntBridgeModule)(nil)
