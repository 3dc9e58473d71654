package hdf4

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRLERoundTripMixed(t *testing.T) {
	c := rleCoder{}
	plain := append(bytes.Repeat([]byte{0x01}, 10), []byte("mixed literal run here")...)
	plain = append(plain, bytes.Repeat([]byte{0x02}, 200)...)

	encoded := c.encode(plain)
	decoded, err := c.decode(encoded)
	require.NoError(t, err)
	require.Equal(t, plain, decoded)
}

// TestRLECompresses256RepeatedBytes pins end-to-end scenario 2's exact
// compression bound: 256 bytes of one value must encode to at most two
// 2-byte run packets.
func TestRLECompresses256RepeatedBytes(t *testing.T) {
	c := rleCoder{}
	plain := bytes.Repeat([]byte{0xAA}, 256)

	encoded := c.encode(plain)
	require.LessOrEqual(t, len(encoded), 4)

	decoded, err := c.decode(encoded)
	require.NoError(t, err)
	require.Equal(t, plain, decoded)
}

func TestRLEEmptyInput(t *testing.T) {
	c := rleCoder{}
	encoded := c.encode(nil)
	require.Empty(t, encoded)

	decoded, err := c.decode(encoded)
	require.NoError(t, err)
	require.Empty(t, decoded)
}

func TestRLEShortRunStaysLiteral(t *testing.T) {
	c := rleCoder{}
	plain := []byte{1, 1, 2} // a run of 2 is below rleMinRun, stays literal

	encoded := c.encode(plain)
	require.Equal(t, []byte{3, 1, 1, 2}, encoded)

	decoded, err := c.decode(encoded)
	require.NoError(t, err)
	require.Equal(t, plain, decoded)
}

func TestRLEDecodeTruncatedRunFails(t *testing.T) {
	c := rleCoder{}
	_, err := c.decode([]byte{0x80}) // run control byte with no value byte
	require.ErrorIs(t, err, ErrBadFile)
}

func TestRLEDecodeTruncatedLiteralFails(t *testing.T) {
	c := rleCoder{}
	_, err := c.decode([]byte{5, 1, 2}) // claims 5 literal bytes, only 2 present
	require.ErrorIs(t, err, ErrBadFile)
}
