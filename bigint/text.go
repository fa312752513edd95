package bigint

import (
	"bytes"
	"strconv"
)

// MarshalText implements encoding.TextMarshaler.
func (x Int) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Prefixed literals
// (0x, 0o, 0b) are accepted.
func (x *Int) UnmarshalText(text []byte) error {
	v, err := ParseFull(string(text), 0)
	if err != nil {
		return err
	}
	*x = v
	return nil
}

// MarshalJSON writes x as a JSON number of arbitrary length.
func (x Int) MarshalJSON() ([]byte, error) {
	return []byte(x.String()), nil
}

// UnmarshalJSON accepts a JSON number or a string holding an integer literal.
// null leaves x unchanged.
func (x *Int) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return err
		}
		return x.UnmarshalText([]byte(s))
	}
	v, err := ParseFull(string(data), 10)
	if err != nil {
		return err
	}
	*x = v
	return nil
}
