package huffman

import (
	"math/rand"
	"testing"

	"github.com/nkoval/go-hdf4/internal/bitio"
	"github.com/stretchr/testify/require"
)

func TestRoundTripSmall(t *testing.T) {
	input := []byte("aaaaaaaabbbbccd")

	enc := NewModel()
	w := bitio.NewWriter()
	for _, b := range input {
		enc.EncodeSymbol(w, b)
	}

	dec := NewModel()
	r := bitio.NewReader(w.Bytes())
	got := make([]byte, 0, len(input))
	for range input {
		sym, ok := dec.DecodeSymbol(r)
		require.True(t, ok)
		got = append(got, sym)
	}

	require.Equal(t, input, got)
}

func TestRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	input := make([]byte, 2000)
	for i := range input {
		// skewed distribution: mostly small values, occasional large ones
		if rng.Intn(10) == 0 {
			input[i] = byte(rng.Intn(256))
		} else {
			input[i] = byte(rng.Intn(4))
		}
	}

	enc := NewModel()
	w := bitio.NewWriter()
	for _, b := range input {
		enc.EncodeSymbol(w, b)
	}

	dec := NewModel()
	r := bitio.NewReader(w.Bytes())
	got := make([]byte, 0, len(input))
	for range input {
		sym, ok := dec.DecodeSymbol(r)
		require.True(t, ok)
		got = append(got, sym)
	}

	require.Equal(t, input, got)
}

func TestSkewedInputCompresses(t *testing.T) {
	input := make([]byte, 4096)
	for i := range input {
		input[i] = 0x00
	}

	enc := NewModel()
	w := bitio.NewWriter()
	for _, b := range input {
		enc.EncodeSymbol(w, b)
	}

	require.Less(t, len(w.Bytes()), len(input)/4)
}
