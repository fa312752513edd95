package lua

import (
	"fmt"
	"math"
	"math/big"

	"intbridge/bigint"
	"intbridge/errors"
	"intbridge/marshal"

	lua "github.com/yuin/gopher-lua"
)

const (
	intTypeName   = "intbridge.Int"
	errorTypeName = "intbridge.Error"
)

// tableIndexable adapts a Lua table carrying an __index__ function to
// bigint.Indexable.
type tableIndexable struct {
	L    *lua.LState
	self *lua.LTable
	fn   *lua.LFunction
}

// Index calls self:__index__() and hands back its result unconverted for
// bigint.Index to validate.
func (t *tableIndexable) Index() (any, error) {
	if err := t.L.CallByParam(lua.P{Fn: t.fn, NRet: 1, Protect: true}, t.self); err != nil {
		if convErr := conversionErrorOf(err); convErr != nil {
			return nil, convErr
		}
		return nil, errors.WrapError(err, errors.KindSystem, errors.CodeScriptError, "__index__ failed")
	}
	result := t.L.Get(-1)
	t.L.Pop(1)
	return hostValue(t.L, result), nil
}

// hostValue maps a Lua value onto the value domain of the converters.
// Integral numbers are exact integers, other numbers stay floats, booleans
// are Bool, tables with an __index__ function are Indexable.
func hostValue(L *lua.LState, v lua.LValue) any {
	switch x := v.(type) {
	case *lua.LUserData:
		return x.Value
	case lua.LNumber:
		f := float64(x)
		if math.IsInf(f, 0) || f != math.Trunc(f) {
			return f
		}
		n, err := marshal.FromFloat64(f)
		if err != nil {
			return f
		}
		return n
	case lua.LBool:
		return bigint.Bool(x)
	case lua.LString:
		return string(x)
	case *lua.LTable:
		if fn, ok := x.RawGetString("__index__").(*lua.LFunction); ok {
			return &tableIndexable{L: L, self: x, fn: fn}
		}
		return x
	case *lua.LNilType:
		return nil
	default:
		return x
	}
}

// pushInt pushes x as an Int userdata.
func pushInt(L *lua.LState, x bigint.Int) {
	ud := L.NewUserData()
	ud.Value = x
	L.SetMetatable(ud, L.GetTypeMetatable(intTypeName))
	L.Push(ud)
}

// checkInt returns argument n as an Int, accepting Int userdata and
// integral numbers.
func checkInt(L *lua.LState, n int) bigint.Int {
	v := hostValue(L, L.CheckAny(n))
	x, ok := v.(bigint.Int)
	if !ok {
		L.ArgError(n, fmt.Sprintf("integer expected, got %s", bigint.TypeName(v)))
	}
	return x
}

// raise throws err into Lua as an intbridge.Error userdata so that pcall
// callers and the Go side both see the original ConversionError.
func raise(L *lua.LState, err error) int {
	convErr, ok := errors.AsConversionError(err)
	if !ok {
		convErr = errors.WrapError(err, errors.KindSystem, errors.CodeScriptError, err.Error())
	}
	ud := L.NewUserData()
	ud.Value = convErr
	L.SetMetatable(ud, L.GetTypeMetatable(errorTypeName))
	L.Error(ud, 1)
	return 0
}

// conversionErrorOf digs the ConversionError out of an error returned by
// DoString or a protected call.
func conversionErrorOf(err error) *errors.ConversionError {
	if apiErr, ok := err.(*lua.ApiError); ok {
		if ud, ok := apiErr.Object.(*lua.LUserData); ok {
			if convErr, ok := ud.Value.(*errors.ConversionError); ok {
				return convErr
			}
		}
	}
	if convErr, ok := errors.AsConversionError(err); ok {
		return convErr
	}
	return nil
}

func registerTypes(L *lua.LState) {
	intMeta := L.NewTypeMetatable(intTypeName)
	L.SetField(intMeta, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"text":     intText,
		"tonumber": intToNumber,
	}))
	L.SetField(intMeta, "__tostring", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(checkInt(L, 1).String()))
		return 1
	}))
	L.SetField(intMeta, "__eq", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(checkInt(L, 1).Equal(checkInt(L, 2))))
		return 1
	}))
	L.SetField(intMeta, "__lt", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(checkInt(L, 1).Cmp(checkInt(L, 2)) < 0))
		return 1
	}))
	L.SetField(intMeta, "__le", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(checkInt(L, 1).Cmp(checkInt(L, 2)) <= 0))
		return 1
	}))
	L.SetField(intMeta, "__concat", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LString(displayString(L.Get(1)) + displayString(L.Get(2))))
		return 1
	}))

	errMeta := L.NewTypeMetatable(errorTypeName)
	L.SetField(errMeta, "__tostring", L.NewFunction(func(L *lua.LState) int {
		ud := L.CheckUserData(1)
		convErr, ok := ud.Value.(*errors.ConversionError)
		if !ok || convErr == nil {
			L.Push(lua.LString(errorTypeName))
			return 1
		}
		L.Push(lua.LString(errors.Translate(convErr).String()))
		return 1
	}))
}

// intText renders the Int in base (default 10).
func intText(L *lua.LState) int {
	x := checkInt(L, 1)
	base := L.OptInt(2, 10)
	if base < 2 || base > 36 {
		L.ArgError(2, "base must be between 2 and 36")
	}
	L.Push(lua.LString(x.Text(base)))
	return 1
}

// intToNumber converts to a Lua number, losing precision past 2^53.
func intToNumber(L *lua.LState) int {
	f, _ := new(big.Float).SetInt(checkInt(L, 1).Big()).Float64()
	L.Push(lua.LNumber(f))
	return 1
}

func displayString(v lua.LValue) string {
	if ud, ok := v.(*lua.LUserData); ok {
		if x, ok := ud.Value.(bigint.Int); ok {
			return x.String()
		}
	}
	return lua.LVAsString(v)
}
