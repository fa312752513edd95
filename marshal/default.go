package marshal

import (
	"intbridge/bigint"
	"intbridge/errors"
)

// The functions below run on Default().

// AsInt converts v to a C int.
func AsInt(v any) (int32, error) { return Default().AsInt(v) }

// AsLong converts v to a C long.
func AsLong(v any) (int64, error) { return Default().AsLong(v) }

// AsLongLong converts v to a C long long.
func AsLongLong(v any) (int64, error) { return Default().AsLongLong(v) }

// AsUnsignedLong converts v to a C unsigned long.
func AsUnsignedLong(v any) (uint64, error) { return Default().AsUnsignedLong(v) }

// AsUnsignedLongLong converts v to a C unsigned long long.
func AsUnsignedLongLong(v any) (uint64, error) { return Default().AsUnsignedLongLong(v) }

// AsSsize converts v to ssize_t.
func AsSsize(v any) (int64, error) { return Default().AsSsize(v) }

// AsSize converts v to size_t.
func AsSize(v any) (uint64, error) { return Default().AsSize(v) }

// AsLongAndOverflow converts v to a C long with an overflow flag.
func AsLongAndOverflow(v any) (int64, errors.Direction, error) {
	return Default().AsLongAndOverflow(v)
}

// AsLongLongAndOverflow converts v to a C long long with an overflow flag.
func AsLongLongAndOverflow(v any) (int64, errors.Direction, error) {
	return Default().AsLongLongAndOverflow(v)
}

// FromPointer returns the address p as a non-negative integer.
func FromPointer(p uintptr) bigint.Int { return Default().FromPointer(p) }

// FromSignedPointer reads a sign-extended address.
func FromSignedPointer(n int64) bigint.Int { return Default().FromSignedPointer(n) }

// ToPointer converts v back to an address.
func ToPointer(v any) (uintptr, error) { return Default().ToPointer(v) }

// AsByteArray writes v into buf.
func AsByteArray(v bigint.Int, buf []byte, littleEndian, signed bool) error {
	return Default().AsByteArray(v, buf, littleEndian, signed)
}

// ToBytes encodes v into n newly allocated bytes.
func ToBytes(v bigint.Int, n int, littleEndian, signed bool) ([]byte, error) {
	return Default().ToBytes(v, n, littleEndian, signed)
}
