package serialization

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"intbridge/bigint"
	"intbridge/marshal"
)

// ExtBigInt is the MessagePack extension type carrying integers outside
// [-2^63, 2^64-1] as big-endian two's complement.
const ExtBigInt int8 = 1

// MessagePackSerializer writes native MessagePack integers where they fit
// and an ExtBigInt extension otherwise
type MessagePackSerializer struct {
	version string
	conv    *marshal.Converter
}

// NewMessagePackSerializer creates a new MessagePack serializer
func NewMessagePackSerializer(conv *marshal.Converter) *MessagePackSerializer {
	if conv == nil {
		conv = marshal.Default()
	}
	return &MessagePackSerializer{
		version: "1.0.0",
		conv:    conv,
	}
}

// Serialize converts v to MessagePack bytes
func (mps *MessagePackSerializer) Serialize(v bigint.Int) ([]byte, error) {
	var buf bytes.Buffer
	switch {
	case v.IsInt64() && v.Sign() < 0:
		mps.encodeInt(&buf, v.Int64())
	case v.IsUint64():
		mps.encodeUint(&buf, v.Uint64())
	default:
		payload, err := mps.conv.ToBytes(v, marshal.MinBytes(v, true), false, true)
		if err != nil {
			return nil, wrapError("msgpack", "serialize", err)
		}
		mps.encodeExt(&buf, ExtBigInt, payload)
	}
	return buf.Bytes(), nil
}

// Deserialize converts MessagePack bytes back to an Int
func (mps *MessagePackSerializer) Deserialize(data []byte) (bigint.Int, error) {
	if len(data) == 0 {
		return bigint.Int{}, NewSerializationError("msgpack", "deserialize", "data is empty")
	}

	buf := bytes.NewReader(data)
	v, err := mps.decodeValue(buf)
	if err != nil {
		return bigint.Int{}, NewSerializationError("msgpack", "deserialize", err.Error())
	}
	if buf.Len() != 0 {
		return bigint.Int{}, NewSerializationError("msgpack", "deserialize",
			fmt.Sprintf("%d trailing bytes", buf.Len()))
	}
	return v, nil
}

// GetName returns the name of the serializer
func (mps *MessagePackSerializer) GetName() string {
	return "msgpack"
}

// GetVersion returns the version of the serializer
func (mps *MessagePackSerializer) GetVersion() string {
	return mps.version
}

// SupportsVersion accepts every 1.x.x version
func (mps *MessagePackSerializer) SupportsVersion(version string) bool {
	return version == "1.0.0" || (len(version) > 2 && version[:2] == "1.")
}

// encodeInt encodes a negative integer value
func (mps *MessagePackSerializer) encodeInt(buf *bytes.Buffer, value int64) {
	switch {
	case value >= -32:
		buf.WriteByte(byte(value))
	case value >= -128:
		buf.WriteByte(0xD0)
		buf.WriteByte(byte(value))
	case value >= -32768:
		buf.WriteByte(0xD1)
		_ = binary.Write(buf, binary.BigEndian, int16(value))
	case value >= -2147483648:
		buf.WriteByte(0xD2)
		_ = binary.Write(buf, binary.BigEndian, int32(value))
	default:
		buf.WriteByte(0xD3)
		_ = binary.Write(buf, binary.BigEndian, value)
	}
}

// encodeUint encodes an unsigned integer value
func (mps *MessagePackSerializer) encodeUint(buf *bytes.Buffer, value uint64) {
	switch {
	case value <= 127:
		buf.WriteByte(byte(value))
	case value <= 255:
		buf.WriteByte(0xCC)
		buf.WriteByte(byte(value))
	case value <= 65535:
		buf.WriteByte(0xCD)
		_ = binary.Write(buf, binary.BigEndian, uint16(value))
	case value <= 4294967295:
		buf.WriteByte(0xCE)
		_ = binary.Write(buf, binary.BigEndian, uint32(value))
	default:
		buf.WriteByte(0xCF)
		_ = binary.Write(buf, binary.BigEndian, value)
	}
}

// encodeExt writes an ext 8/16/32 header followed by payload
func (mps *MessagePackSerializer) encodeExt(buf *bytes.Buffer, extType int8, payload []byte) {
	length := len(payload)
	switch {
	case length <= 255:
		buf.WriteByte(0xC7)
		buf.WriteByte(byte(length))
	case length <= 65535:
		buf.WriteByte(0xC8)
		_ = binary.Write(buf, binary.BigEndian, uint16(length))
	default:
		buf.WriteByte(0xC9)
		_ = binary.Write(buf, binary.BigEndian, uint32(length))
	}
	buf.WriteByte(byte(extType))
	buf.Write(payload)
}

func (mps *MessagePackSerializer) decodeValue(buf *bytes.Reader) (bigint.Int, error) {
	marker, err := buf.ReadByte()
	if err != nil {
		return bigint.Int{}, err
	}

	switch {
	case marker <= 0x7F:
		return bigint.NewInt(int64(marker)), nil
	case marker >= 0xE0:
		return bigint.NewInt(int64(int8(marker))), nil
	}

	switch marker {
	case 0xCC:
		var v uint8
		err = binary.Read(buf, binary.BigEndian, &v)
		return bigint.FromUint64(uint64(v)), err
	case 0xCD:
		var v uint16
		err = binary.Read(buf, binary.BigEndian, &v)
		return bigint.FromUint64(uint64(v)), err
	case 0xCE:
		var v uint32
		err = binary.Read(buf, binary.BigEndian, &v)
		return bigint.FromUint64(uint64(v)), err
	case 0xCF:
		var v uint64
		err = binary.Read(buf, binary.BigEndian, &v)
		return bigint.FromUint64(v), err
	case 0xD0:
		var v int8
		err = binary.Read(buf, binary.BigEndian, &v)
		return bigint.NewInt(int64(v)), err
	case 0xD1:
		var v int16
		err = binary.Read(buf, binary.BigEndian, &v)
		return bigint.NewInt(int64(v)), err
	case 0xD2:
		var v int32
		err = binary.Read(buf, binary.BigEndian, &v)
		return bigint.NewInt(int64(v)), err
	case 0xD3:
		var v int64
		err = binary.Read(buf, binary.BigEndian, &v)
		return bigint.NewInt(v), err
	case 0xC7, 0xC8, 0xC9:
		return mps.decodeExt(buf, marker)
	default:
		return bigint.Int{}, fmt.Errorf("unexpected MessagePack type 0x%02X", marker)
	}
}

func (mps *MessagePackSerializer) decodeExt(buf *bytes.Reader, marker byte) (bigint.Int, error) {
	var length uint32
	switch marker {
	case 0xC7:
		var n uint8
		if err := binary.Read(buf, binary.BigEndian, &n); err != nil {
			return bigint.Int{}, err
		}
		length = uint32(n)
	case 0xC8:
		var n uint16
		if err := binary.Read(buf, binary.BigEndian, &n); err != nil {
			return bigint.Int{}, err
		}
		length = uint32(n)
	default:
		if err := binary.Read(buf, binary.BigEndian, &length); err != nil {
			return bigint.Int{}, err
		}
	}

	extType, err := buf.ReadByte()
	if err != nil {
		return bigint.Int{}, err
	}
	if int8(extType) != ExtBigInt {
		return bigint.Int{}, fmt.Errorf("unsupported extension type %d", int8(extType))
	}
	if uint64(length) > uint64(buf.Len()) {
		return bigint.Int{}, io.ErrUnexpectedEOF
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(buf, payload); err != nil {
		return bigint.Int{}, err
	}
	return marshal.FromByteArray(payload, false, true), nil
}
