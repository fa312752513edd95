package bigint

import (
	"fmt"
	"math/big"
	"reflect"

	"intbridge/errors"
)

// Integral is implemented by values that are integers by subtype rather
// than by exact type, such as Bool.
type Integral interface {
	Int() Int
}

// Indexable is implemented by non-integer values that can be losslessly
// coerced to an integer. Index must return an exact integer (see IsExact);
// any other result is rejected.
type Indexable interface {
	Index() (any, error)
}

// Bool is the boolean subtype of Int: True is 1 and False is 0.
type Bool bool

const (
	True  Bool = true
	False Bool = false
)

// Int returns 1 or 0.
func (b Bool) Int() Int {
	if b {
		return NewInt(1)
	}
	return NewInt(0)
}

// String returns "True" or "False".
func (b Bool) String() string {
	if b {
		return "True"
	}
	return "False"
}

// IsExact reports whether v is exactly the canonical integer type: Int, a
// non-nil *big.Int or one of Go's built-in integer kinds.
func IsExact(v any) bool {
	switch n := v.(type) {
	case Int:
		return true
	case *big.Int:
		return n != nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr:
		return true
	default:
		return false
	}
}

// IsInstance reports whether v is an integer either exactly or by subtype
// (Bool, Go bool, or any Integral).
func IsInstance(v any) bool {
	_, ok := AsInstance(v)
	return ok
}

// AsInstance returns the integer value of v when IsInstance(v) holds.
func AsInstance(v any) (Int, bool) {
	switch n := v.(type) {
	case Int:
		return n, true
	case *big.Int:
		if n == nil {
			return Int{}, false
		}
		return FromBig(n), true
	case int:
		return NewInt(int64(n)), true
	case int8:
		return NewInt(int64(n)), true
	case int16:
		return NewInt(int64(n)), true
	case int32:
		return NewInt(int64(n)), true
	case int64:
		return NewInt(n), true
	case uint:
		return FromUint64(uint64(n)), true
	case uint8:
		return FromUint64(uint64(n)), true
	case uint16:
		return FromUint64(uint64(n)), true
	case uint32:
		return FromUint64(uint64(n)), true
	case uint64:
		return FromUint64(n), true
	case uintptr:
		return FromUint64(uint64(n)), true
	case bool:
		return Bool(n).Int(), true
	case Integral:
		if isNilValue(n) {
			return Int{}, false
		}
		return n.Int(), true
	default:
		return Int{}, false
	}
}

// Index coerces v to an Int. Integers convert directly, Indexable values are
// asked for their index, everything else is a TYPE error.
func Index(v any) (Int, error) {
	if x, ok := AsInstance(v); ok {
		return x, nil
	}

	idx, ok := v.(Indexable)
	if !ok || isNilValue(idx) {
		return Int{}, errors.NewTypeError(errors.CodeNotInteger,
			fmt.Sprintf("'%s' object cannot be interpreted as an integer", TypeName(v)))
	}

	result, err := idx.Index()
	if err != nil {
		return Int{}, err
	}
	if !IsExact(result) {
		return Int{}, errors.NewTypeError(errors.CodeBadIndexResult,
			fmt.Sprintf("__index__ returned non-int (type %s)", TypeName(result)),
			errors.WithContextOption("indexable", TypeName(v)))
	}

	x, _ := AsInstance(result)
	return x, nil
}

// RequireInstance is the strict counterpart of Index: only integers by exact
// type or subtype are accepted, Indexable values are not consulted.
func RequireInstance(v any) (Int, error) {
	if x, ok := AsInstance(v); ok {
		return x, nil
	}
	return Int{}, errors.NewTypeError(errors.CodeIntegerRequired, "an integer is required",
		errors.WithContextOption("type", TypeName(v)))
}

// TypeName returns a short host-facing name of v's type.
func TypeName(v any) string {
	switch v.(type) {
	case nil:
		return "NoneType"
	case Int, *big.Int, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, uintptr:
		return "int"
	case Bool, bool:
		return "bool"
	case float32, float64:
		return "float"
	case string:
		return "str"
	case []byte:
		return "bytes"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// isNilValue reports whether v holds a nil pointer, map, slice, func or
// channel, whose methods must not be called.
func isNilValue(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}
