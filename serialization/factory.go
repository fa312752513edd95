package serialization

import (
	"intbridge/bigint"
	"intbridge/marshal"
)

// NewDefaultSerializerRegistry creates a registry holding every built-in
// format, with json as the default. conv may be nil.
func NewDefaultSerializerRegistry(conv *marshal.Converter) *SerializerRegistry {
	if conv == nil {
		conv = marshal.Default()
	}

	registry := NewSerializerRegistry()
	for _, s := range []IntSerializer{
		NewJSONSerializer(),
		NewMessagePackSerializer(conv),
		NewBinarySerializer(conv),
	} {
		// names are distinct, registration cannot fail
		_ = registry.RegisterSerializer(s)
	}
	_ = registry.SetDefaultSerializer("json")

	return registry
}

// Serialize encodes v in format using the default registry
func Serialize(v bigint.Int, format string) ([]byte, error) {
	serializer, err := NewDefaultSerializerRegistry(nil).GetSerializer(format)
	if err != nil {
		return nil, err
	}
	return serializer.Serialize(v)
}

// Deserialize decodes data written in format using the default registry
func Deserialize(data []byte, format string) (bigint.Int, error) {
	serializer, err := NewDefaultSerializerRegistry(nil).GetSerializer(format)
	if err != nil {
		return bigint.Int{}, err
	}
	return serializer.Deserialize(data)
}

// GetSupportedFormats returns all supported serialization formats
func GetSupportedFormats() []string {
	return NewDefaultSerializerRegistry(nil).ListSerializers()
}
