package binenc

import (
	"encoding/binary"
	"math"
)

// PutInt16 writes v big-endian into b[:2] and returns b[2:].
func PutInt16(b []byte, v int16) []byte { return PutUint16(b, uint16(v)) }

// PutUint16 writes v big-endian into b[:2] and returns b[2:].
func PutUint16(b []byte, v uint16) []byte {
	binary.BigEndian.PutUint16(b, v)
	return b[2:]
}

// PutInt32 writes v big-endian into b[:4] and returns b[4:].
func PutInt32(b []byte, v int32) []byte { return PutUint32(b, uint32(v)) }

// PutUint32 writes v big-endian into b[:4] and returns b[4:].
func PutUint32(b []byte, v uint32) []byte {
	binary.BigEndian.PutUint32(b, v)
	return b[4:]
}

// PutFloat32 writes the IEEE-754 bit pattern of v big-endian into b[:4]
// and returns b[4:]. Byte order is always network order regardless of
// host endianness.
func PutFloat32(b []byte, v float32) []byte {
	return PutUint32(b, math.Float32bits(v))
}

// PutFloat64 writes the IEEE-754 bit pattern of v big-endian into b[:8]
// and returns b[8:].
func PutFloat64(b []byte, v float64) []byte {
	binary.BigEndian.PutUint64(b, math.Float64bits(v))
	return b[8:]
}

// Int16 reads a big-endian int16 from b[:2] and returns the value and b[2:].
func Int16(b []byte) (int16, []byte) {
	v, rest := Uint16(b)
	return int16(v), rest
}

// Uint16 reads a big-endian uint16 from b[:2] and returns the value and b[2:].
func Uint16(b []byte) (uint16, []byte) {
	return binary.BigEndian.Uint16(b), b[2:]
}

// Int32 reads a big-endian int32 from b[:4] and returns the value and b[4:].
func Int32(b []byte) (int32, []byte) {
	v, rest := Uint32(b)
	return int32(v), rest
}

// Uint32 reads a big-endian uint32 from b[:4] and returns the value and b[4:].
func Uint32(b []byte) (uint32, []byte) {
	return binary.BigEndian.Uint32(b), b[4:]
}

// Float32 reads a big-endian IEEE-754 float32 from b[:4] and returns the
// value and b[4:].
func Float32(b []byte) (float32, []byte) {
	v, rest := Uint32(b)
	return math.Float32frombits(v), rest
}

// Float64 reads a big-endian IEEE-754 float64 from b[:8] and returns the
// value and b[8:].
func Float64(b []byte) (float64, []byte) {
	return math.Float64frombits(binary.BigEndian.Uint64(b)), b[8:]
}
