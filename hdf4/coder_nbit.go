package hdf4

import (
	"fmt"

	"github.com/nkoval/go-hdf4/internal/binenc"
	"github.com/nkoval/go-hdf4/internal/bitio"
	"github.com/nkoval/go-hdf4/internal/numtype"
)

// nbitTrailerSize is the fixed size of an NBIT coder's trailer: number
// type, sign-extend and fill-with-ones flags, and the bit field's
// position and width (spec.md §4.E.1; original_source/hdf/src/hcomp.c:310-319).
// The value count is not part of the trailer: it is derived at decode
// time from the descriptor's logical length.
const nbitTrailerSize = 16

type nbitCoder struct {
	numType   numtype.Code
	startBit  int32
	bitLength int32
	signExt   bool
	fillOne   bool
	ntSize    int
	nvalues   uint32
}

func newNBitCoder(p NBitParams) (coder, error) {
	ntSize, err := numtype.Size(numtype.Code(p.NumType))
	if err != nil {
		return nil, newError(KindBadNumType, "coder", err)
	}
	if p.BitLength <= 0 || p.StartBit < 0 || int(p.StartBit+p.BitLength) > ntSize*8 {
		return nil, newError(KindArgs, "coder", fmt.Errorf("bit field [%d,%d) out of range for a %d-byte number type", p.StartBit, p.StartBit+p.BitLength, ntSize))
	}
	return &nbitCoder{
		numType: numtype.Code(p.NumType), startBit: p.StartBit, bitLength: p.BitLength,
		signExt: p.SignExt, fillOne: p.FillOne, ntSize: ntSize,
	}, nil
}

// decodeNBitTrailer parses the fixed nt/sign_ext/fill_one/start_bit/bit_len
// trailer and derives the element's value count from length, the
// uncompressed logical length already carried in the descriptor header.
func decodeNBitTrailer(trailer []byte, length int64) (coder, error) {
	if len(trailer) < nbitTrailerSize {
		return nil, newError(KindBadFile, "coder", fmt.Errorf("nbit trailer needs %d bytes, got %d", nbitTrailerSize, len(trailer)))
	}
	numType, rest := binenc.Int32(trailer)
	signExt, rest := binenc.Uint16(rest)
	fillOne, rest := binenc.Uint16(rest)
	startBit, rest := binenc.Int32(rest)
	bitLength, _ := binenc.Int32(rest)

	ntSize, err := numtype.Size(numtype.Code(numType))
	if err != nil {
		return nil, newError(KindBadNumType, "coder", err)
	}
	if ntSize <= 0 || length%int64(ntSize) != 0 {
		return nil, newError(KindBadFile, "coder", fmt.Errorf("logical length %d is not a multiple of the %d-byte number type", length, ntSize))
	}
	return &nbitCoder{
		numType: numtype.Code(numType), startBit: startBit, bitLength: bitLength,
		signExt: signExt != 0, fillOne: fillOne != 0, ntSize: ntSize,
		nvalues: uint32(length / int64(ntSize)),
	}, nil
}

func (c *nbitCoder) variant() CoderVariant { return CoderNBit }
func (c *nbitCoder) trailerSize() int      { return nbitTrailerSize }

func (c *nbitCoder) encodeTrailer(buf []byte) {
	var signExt, fillOne uint16
	if c.signExt {
		signExt = 1
	}
	if c.fillOne {
		fillOne = 1
	}
	rest := binenc.PutInt32(buf, int32(c.numType))
	rest = binenc.PutUint16(rest, signExt)
	rest = binenc.PutUint16(rest, fillOne)
	rest = binenc.PutInt32(rest, c.startBit)
	binenc.PutInt32(rest, c.bitLength)
}

func (c *nbitCoder) encode(plain []byte) []byte {
	n := len(plain) / c.ntSize
	c.nvalues = uint32(n)

	w := bitio.NewWriter()
	for i := 0; i < n; i++ {
		v := beToUint64(plain[i*c.ntSize : (i+1)*c.ntSize])
		field := numtype.ExtractBits(v, c.startBit, c.bitLength)
		w.WriteBits(field, int(c.bitLength))
	}
	return w.Bytes()
}

func (c *nbitCoder) decode(coded []byte) ([]byte, error) {
	r := bitio.NewReader(coded)
	out := make([]byte, int(c.nvalues)*c.ntSize)
	for i := 0; i < int(c.nvalues); i++ {
		field, ok := r.ReadBits(int(c.bitLength))
		if !ok {
			return nil, newError(KindBadFile, "nbit_decode", fmt.Errorf("value %d truncated", i))
		}
		v := numtype.Expand(field, c.bitLength, c.signExt, c.fillOne) << uint(c.startBit)
		copy(out[i*c.ntSize:(i+1)*c.ntSize], uint64ToBE(v, c.ntSize))
	}
	return out, nil
}

func beToUint64(b []byte) uint64 {
	var v uint64
	for _, by := range b {
		v = v<<8 | uint64(by)
	}
	return v
}

func uint64ToBE(v uint64, size int) []byte {
	out := make([]byte, size)
	for i := size - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}
