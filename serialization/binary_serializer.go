package serialization

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"intbridge/bigint"
	"intbridge/marshal"
)

const (
	TypeInt = 2

	wireLengthDelimited = 2
	fieldValue          = 1
)

// BinarySerializer writes one length-delimited field:
//
//	tag (field 1, wire type 2) | uvarint length | type marker | payload
//
// The payload is the minimal signed little-endian two's-complement image.
type BinarySerializer struct {
	version string
	conv    *marshal.Converter
}

// NewBinarySerializer creates a new binary serializer
func NewBinarySerializer(conv *marshal.Converter) *BinarySerializer {
	if conv == nil {
		conv = marshal.Default()
	}
	return &BinarySerializer{
		version: "1.0.0",
		conv:    conv,
	}
}

// GetName returns the name of the serializer
func (bs *BinarySerializer) GetName() string {
	return "binary"
}

// GetVersion returns the version of the serializer
func (bs *BinarySerializer) GetVersion() string {
	return bs.version
}

// SupportsVersion checks if the serializer supports a specific version
func (bs *BinarySerializer) SupportsVersion(version string) bool {
	return version == "1.0.0"
}

// Serialize converts v to binary format
func (bs *BinarySerializer) Serialize(v bigint.Int) ([]byte, error) {
	payload, err := bs.conv.ToBytes(v, marshal.MinBytes(v, true), true, true)
	if err != nil {
		return nil, wrapError("binary", "serialize", err)
	}

	var buf bytes.Buffer
	buf.WriteByte(byte(fieldValue<<3 | wireLengthDelimited))
	bs.encodeVarint(&buf, uint64(len(payload)+1))
	buf.WriteByte(TypeInt)
	buf.Write(payload)
	return buf.Bytes(), nil
}

// Deserialize converts binary bytes back to an Int
func (bs *BinarySerializer) Deserialize(data []byte) (bigint.Int, error) {
	if len(data) == 0 {
		return bigint.Int{}, NewSerializationError("binary", "deserialize", "data is empty")
	}

	v, err := bs.decodeValue(bytes.NewBuffer(data))
	if err != nil {
		return bigint.Int{}, NewSerializationError("binary", "deserialize", err.Error())
	}
	return v, nil
}

func (bs *BinarySerializer) decodeValue(buf *bytes.Buffer) (bigint.Int, error) {
	tag, err := buf.ReadByte()
	if err != nil {
		return bigint.Int{}, fmt.Errorf("unexpected end of data")
	}
	if wireType := int(tag & 0x7); wireType != wireLengthDelimited {
		return bigint.Int{}, fmt.Errorf("expected length-delimited wire type, got %d", wireType)
	}
	if field := int(tag >> 3); field != fieldValue {
		return bigint.Int{}, fmt.Errorf("unexpected field number %d", field)
	}

	length, err := bs.decodeVarint(buf)
	if err != nil {
		return bigint.Int{}, err
	}
	if length == 0 {
		return bigint.Int{}, fmt.Errorf("missing type marker")
	}
	if uint64(buf.Len()) != length {
		return bigint.Int{}, fmt.Errorf("payload length %d does not match remaining %d bytes", length, buf.Len())
	}

	marker, _ := buf.ReadByte()
	if marker != TypeInt {
		return bigint.Int{}, fmt.Errorf("unknown type marker: %d", marker)
	}

	return marshal.FromByteArray(buf.Bytes(), true, true), nil
}

func (bs *BinarySerializer) encodeVarint(buf *bytes.Buffer, value uint64) {
	var scratch [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(scratch[:], value)
	buf.Write(scratch[:n])
}

func (bs *BinarySerializer) decodeVarint(buf *bytes.Buffer) (uint64, error) {
	value, err := binary.ReadUvarint(buf)
	if err != nil {
		return 0, fmt.Errorf("invalid varint: %w", err)
	}
	return value, nil
}
