// Package serialization stores canonical integers in self-describing
// formats. Every format round-trips any Int, however wide.
package serialization

import (
	stderrors "errors"
	"fmt"
	"sort"

	"intbridge/bigint"
	"intbridge/errors"
)

// IntSerializer converts integers to and from one wire format.
type IntSerializer interface {
	// Serialize encodes v
	Serialize(v bigint.Int) ([]byte, error)

	// Deserialize decodes exactly one value; trailing bytes are an error
	Deserialize(data []byte) (bigint.Int, error)

	// GetName returns the name of the serializer
	GetName() string

	// GetVersion returns the version of the serializer
	GetVersion() string

	// SupportsVersion checks if the serializer can read data written by version
	SupportsVersion(version string) bool
}

// VersionedValue is serialized data tagged with the format that wrote it.
type VersionedValue struct {
	Data    []byte `json:"data"`
	Version string `json:"version"`
	Format  string `json:"format"`
}

// SerializationError represents an error that occurred during serialization
type SerializationError struct {
	Operation string
	Message   string
	Format    string
	Context   map[string]interface{}
	Cause     error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("[%s serialization error] %s", e.Format, e.Message)
}

// Unwrap exposes the conversion error behind a failed decode.
func (e *SerializationError) Unwrap() error {
	return e.Cause
}

// NewSerializationError creates a new serialization error
func NewSerializationError(format, operation, message string) *SerializationError {
	return &SerializationError{
		Format:    format,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
	}
}

// wrapError builds a SerializationError around cause.
func wrapError(format, operation string, cause error) *SerializationError {
	e := NewSerializationError(format, operation, cause.Error())
	e.Cause = cause
	return e
}

// WithContext adds context information to the error
func (e *SerializationError) WithContext(key string, value interface{}) *SerializationError {
	e.Context[key] = value
	return e
}

// SerializerRegistry manages multiple serializers
type SerializerRegistry struct {
	serializers       map[string]IntSerializer
	defaultSerializer string
}

// NewSerializerRegistry creates a new serializer registry
func NewSerializerRegistry() *SerializerRegistry {
	return &SerializerRegistry{
		serializers:       make(map[string]IntSerializer),
		defaultSerializer: "json",
	}
}

// RegisterSerializer registers a serializer
func (sr *SerializerRegistry) RegisterSerializer(serializer IntSerializer) error {
	name := serializer.GetName()
	if _, exists := sr.serializers[name]; exists {
		return fmt.Errorf("serializer '%s' is already registered", name)
	}

	sr.serializers[name] = serializer
	return nil
}

// GetSerializer returns a serializer by name
func (sr *SerializerRegistry) GetSerializer(name string) (IntSerializer, error) {
	serializer, exists := sr.serializers[name]
	if !exists {
		return nil, fmt.Errorf("serializer '%s' not found", name)
	}
	return serializer, nil
}

// GetDefaultSerializer returns the default serializer
func (sr *SerializerRegistry) GetDefaultSerializer() (IntSerializer, error) {
	if sr.defaultSerializer == "" {
		return nil, stderrors.New("no default serializer configured")
	}
	return sr.GetSerializer(sr.defaultSerializer)
}

// SetDefaultSerializer sets the default serializer
func (sr *SerializerRegistry) SetDefaultSerializer(name string) error {
	if _, exists := sr.serializers[name]; !exists {
		return fmt.Errorf("serializer '%s' not found", name)
	}

	sr.defaultSerializer = name
	return nil
}

// ListSerializers returns the sorted names of all registered serializers
func (sr *SerializerRegistry) ListSerializers() []string {
	names := make([]string, 0, len(sr.serializers))
	for name := range sr.serializers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SerializeWithVersion serializes v and tags it with format and version
func (sr *SerializerRegistry) SerializeWithVersion(v bigint.Int, format string) (*VersionedValue, error) {
	serializer, err := sr.GetSerializer(format)
	if err != nil {
		return nil, err
	}

	data, err := serializer.Serialize(v)
	if err != nil {
		return nil, err
	}

	return &VersionedValue{
		Data:    data,
		Version: serializer.GetVersion(),
		Format:  format,
	}, nil
}

// DeserializeWithVersion decodes a tagged value
func (sr *SerializerRegistry) DeserializeWithVersion(value *VersionedValue) (bigint.Int, error) {
	serializer, err := sr.GetSerializer(value.Format)
	if err != nil {
		return bigint.Int{}, err
	}

	if !serializer.SupportsVersion(value.Version) {
		cause := errors.NewValueError(errors.CodeUnsupportedVersion,
			fmt.Sprintf("version '%s' not supported", value.Version))
		return bigint.Int{}, wrapError(value.Format, "deserialize", cause).
			WithContext("version", value.Version)
	}

	return serializer.Deserialize(value.Data)
}

// ConvertFormat re-encodes data written by fromFormat in toFormat
func (sr *SerializerRegistry) ConvertFormat(data []byte, fromFormat, toFormat string) ([]byte, error) {
	fromSerializer, err := sr.GetSerializer(fromFormat)
	if err != nil {
		return nil, err
	}

	v, err := fromSerializer.Deserialize(data)
	if err != nil {
		return nil, err
	}

	toSerializer, err := sr.GetSerializer(toFormat)
	if err != nil {
		return nil, err
	}

	return toSerializer.Serialize(v)
}

// IsFormatSupported checks if a format is supported
func (sr *SerializerRegistry) IsFormatSupported(format string) bool {
	_, exists := sr.serializers[format]
	return exists
}
