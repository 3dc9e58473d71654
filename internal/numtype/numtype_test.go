package numtype

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizeKnownTypes(t *testing.T) {
	n, err := Size(Int32)
	require.NoError(t, err)
	require.Equal(t, 4, n)

	n, err = Size(Float64)
	require.NoError(t, err)
	require.Equal(t, 8, n)
}

func TestSizeUnknownType(t *testing.T) {
	_, err := Size(Code(999))
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestExtractBits(t *testing.T) {
	var v uint64 = 0xAB00
	got := ExtractBits(v, 8, 8)
	require.Equal(t, uint64(0xAB), got)
}

func TestExpandSignExtendNegative(t *testing.T) {
	// bit_len=8, field=0xFF (all ones) -> sign bit set -> expand to all 1s
	got := Expand(0xFF, 8, true, false)
	require.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), got)
}

func TestExpandSignExtendPositive(t *testing.T) {
	got := Expand(0x7F, 8, true, false)
	require.Equal(t, uint64(0x7F), got)
}

func TestExpandFillOne(t *testing.T) {
	got := Expand(0x0F, 4, false, true)
	require.Equal(t, uint64(0xFFFFFFFFFFFFFFFF), got)
}

func TestExpandZeroFill(t *testing.T) {
	got := Expand(0x0F, 4, false, false)
	require.Equal(t, uint64(0x0F), got)
}
