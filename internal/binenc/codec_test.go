package binenc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTripIntegers(t *testing.T) {
	buf := make([]byte, 8)
	rest := PutInt16(buf, -1234)
	rest = PutUint16(rest, 0xBEEF)
	rest = PutInt32(rest, -123456789)
	require.Len(t, rest, 0)

	v16, rest := Int16(buf)
	require.Equal(t, int16(-1234), v16)
	u16, rest := Uint16(rest)
	require.Equal(t, uint16(0xBEEF), u16)
	v32, rest := Int32(rest)
	require.Equal(t, int32(-123456789), v32)
	require.Len(t, rest, 0)
}

func TestRoundTripFloats(t *testing.T) {
	buf := make([]byte, 12)
	rest := PutFloat32(buf, 3.5)
	rest = PutFloat64(rest, 2.71828)

	f32, rest := Float32(buf)
	require.Equal(t, float32(3.5), f32)
	f64, rest := Float64(rest)
	require.Equal(t, 2.71828, f64)
	require.Len(t, rest, 0)
}

func TestBigEndianByteOrder(t *testing.T) {
	buf := make([]byte, 4)
	PutUint32(buf, 0x01020304)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, buf)
}
