package message

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := CompHeader{
		Code:    SpecialComp,
		Version: HeaderVersion,
		Length:  256,
		CompRef: 42,
		Model:   ModelSTDIO,
		Coder:   CoderRLE,
	}

	buf := make([]byte, HeaderSize)
	h.Encode(buf)

	got, rest, err := DecodeHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.Len(t, rest, 0)
}

func TestDecodeHeaderRejectsWrongCode(t *testing.T) {
	buf := make([]byte, HeaderSize)
	h := CompHeader{Code: SpecialLinked, Version: HeaderVersion}
	h.Encode(buf)

	_, _, err := DecodeHeader(buf)
	require.Error(t, err)
}

func TestDecodeHeaderRejectsBadVersion(t *testing.T) {
	buf := make([]byte, HeaderSize)
	h := CompHeader{Code: SpecialComp, Version: 7}
	h.Encode(buf)

	_, _, err := DecodeHeader(buf)
	require.Error(t, err)
}

func TestKnownVariants(t *testing.T) {
	require.True(t, KnownModel(ModelSTDIO))
	require.False(t, KnownModel(ModelVariant(99)))

	for _, c := range []CoderVariant{CoderNone, CoderRLE, CoderSkpHuff, CoderNBit} {
		require.True(t, KnownCoder(c))
	}
	require.False(t, KnownCoder(CoderVariant(99)))
}
