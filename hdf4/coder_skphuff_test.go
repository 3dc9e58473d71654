package hdf4

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSkpHuffCoderRoundTripUnevenLength(t *testing.T) {
	c, err := newSkpHuffCoder(SkpHuffParams{SkipSize: 3})
	require.NoError(t, err)

	// 11 bytes over 3 lanes: lanes end up with 4, 4, 3 elements.
	plain := []byte("hello worl")
	plain = append(plain, 'd')

	encoded := c.encode(plain)
	decoded, err := c.decode(encoded)
	require.NoError(t, err)
	require.Equal(t, plain, decoded)
}

func TestSkpHuffCoderSingleLaneIsPlainHuffman(t *testing.T) {
	c, err := newSkpHuffCoder(SkpHuffParams{SkipSize: 1})
	require.NoError(t, err)

	plain := []byte("aaaaaaaabbbbccccd")
	encoded := c.encode(plain)
	decoded, err := c.decode(encoded)
	require.NoError(t, err)
	require.Equal(t, plain, decoded)
}

func TestSkpHuffCoderEmptyInput(t *testing.T) {
	c, err := newSkpHuffCoder(SkpHuffParams{SkipSize: 4})
	require.NoError(t, err)

	encoded := c.encode(nil)
	decoded, err := c.decode(encoded)
	require.NoError(t, err)
	require.Empty(t, decoded)
}

func TestNewSkpHuffCoderRejectsZeroSkipSize(t *testing.T) {
	_, err := newSkpHuffCoder(SkpHuffParams{SkipSize: 0})
	require.ErrorIs(t, err, ErrArgs)
}

func TestDecodeSkpHuffTrailerRejectsZeroSkipSize(t *testing.T) {
	trailer := make([]byte, 8) // skip_size field left at zero
	_, err := decodeSkpHuffTrailer(trailer)
	require.ErrorIs(t, err, ErrBadFile)
}

func TestSkpHuffCoderDecodeTruncatedHeaderFails(t *testing.T) {
	c, err := newSkpHuffCoder(SkpHuffParams{SkipSize: 2})
	require.NoError(t, err)

	_, err = c.decode([]byte{1, 2, 3}) // shorter than the 16-byte, 2-lane header
	require.ErrorIs(t, err, ErrBadFile)
}

func TestSkpHuffCoderRedundantLaneShrinks(t *testing.T) {
	c, err := newSkpHuffCoder(SkpHuffParams{SkipSize: 2})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(7))
	const words = 512
	plain := make([]byte, words*2)
	for i := 0; i < words; i++ {
		plain[i*2] = byte(rng.Intn(256))
		plain[i*2+1] = 0xAB // second lane: constant
	}

	encoded := c.encode(plain)
	require.Less(t, len(encoded), len(plain))

	decoded, err := c.decode(encoded)
	require.NoError(t, err)
	require.Equal(t, plain, decoded)
}
