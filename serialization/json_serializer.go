package serialization

import (
	"bytes"

	"intbridge/bigint"
)

// JSONSerializer writes an Int as a bare JSON number of any length
type JSONSerializer struct {
	version string
}

// NewJSONSerializer creates a new JSON serializer
func NewJSONSerializer() *JSONSerializer {
	return &JSONSerializer{
		version: "1.0.0",
	}
}

// Serialize converts v to JSON bytes
func (js *JSONSerializer) Serialize(v bigint.Int) ([]byte, error) {
	return v.MarshalJSON()
}

// Deserialize reads a JSON number, or a string holding an integer literal
func (js *JSONSerializer) Deserialize(data []byte) (bigint.Int, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return bigint.Int{}, NewSerializationError("json", "deserialize", "data is empty")
	}
	if string(data) == "null" {
		return bigint.Int{}, NewSerializationError("json", "deserialize", "data is null")
	}

	var v bigint.Int
	if err := v.UnmarshalJSON(data); err != nil {
		return bigint.Int{}, wrapError("json", "deserialize", err)
	}
	return v, nil
}

// GetName returns the name of the serializer
func (js *JSONSerializer) GetName() string {
	return "json"
}

// GetVersion returns the version of the serializer
func (js *JSONSerializer) GetVersion() string {
	return js.version
}

// SupportsVersion accepts every 1.x.x version
func (js *JSONSerializer) SupportsVersion(version string) bool {
	return version == "1.0.0" || (len(version) > 2 && version[:2] == "1.")
}
