package hdf4

import (
	"fmt"

	"github.com/nkoval/go-hdf4/internal/message"
)

// coder is the coding layer of the compressed-element pipeline: the
// transform that actually shrinks (or at least repacks) the bytes the
// model layer hands it.
type coder interface {
	variant() CoderVariant
	// trailerSize returns the number of coder-specific bytes this
	// coder's parameters occupy in the fixed descriptor, following the
	// shared 14-byte header (spec.md §4.E.1).
	trailerSize() int
	// encodeTrailer writes this coder's parameters into buf.
	encodeTrailer(buf []byte)
	encode(plain []byte) []byte
	decode(coded []byte) ([]byte, error)
}

// newCoder constructs the coder named by v, reading any
// variant-specific parameters it needs from params. Unrecognized
// variants fail with BadCoder, naming the unrecognized numeric code
// (spec.md §4.E.3 "header parse").
func newCoder(v CoderVariant, params CoderParams) (coder, error) {
	if !message.KnownCoder(v) {
		return nil, newError(KindBadCoder, "coder", fmt.Errorf("unrecognized coder variant %d", uint16(v)))
	}
	switch v {
	case CoderNone:
		return noneCoder{}, nil
	case CoderRLE:
		return rleCoder{}, nil
	case CoderSkpHuff:
		return newSkpHuffCoder(params.SkpHuff)
	case CoderNBit:
		return newNBitCoder(params.NBit)
	default:
		panic("unreachable")
	}
}

// decodeTrailer parses the coder-specific trailer (the descriptor
// bytes after the fixed 14-byte header) for variant v, returning
// a ready coder. length is the descriptor's uncompressed logical
// length, needed by NBIT to derive its value count.
func decodeTrailer(v CoderVariant, trailer []byte, length int64) (coder, error) {
	if !message.KnownCoder(v) {
		return nil, newError(KindBadCoder, "coder", fmt.Errorf("unrecognized coder variant %d", uint16(v)))
	}
	switch v {
	case CoderNone:
		return noneCoder{}, nil
	case CoderRLE:
		return rleCoder{}, nil
	case CoderSkpHuff:
		return decodeSkpHuffTrailer(trailer)
	case CoderNBit:
		return decodeNBitTrailer(trailer, length)
	default:
		panic("unreachable")
	}
}
