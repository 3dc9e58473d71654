package message

import (
	"fmt"

	"github.com/nkoval/go-hdf4/internal/binenc"
)

// HeaderVersion is the only compressed-descriptor header version this
// core writes or accepts (spec.md §4.E.1 "header version (0)").
const HeaderVersion = uint16(0)

// HeaderSize is the fixed portion of a SPECIAL_COMP descriptor, before
// any coder-specific trailer (spec.md §4.E.1).
const HeaderSize = 14

// CompHeader is the fixed 14-byte header at the start of every
// SPECIAL_COMP descriptor.
type CompHeader struct {
	Code    SpecialCode // always SpecialComp once parsed successfully
	Version uint16
	Length  int32 // uncompressed logical length, rewritten on grow
	CompRef uint16
	Model   ModelVariant
	Coder   CoderVariant
}

// Encode writes the fixed header into buf[:HeaderSize] and returns
// buf[HeaderSize:].
func (h CompHeader) Encode(buf []byte) []byte {
	rest := binenc.PutUint16(buf, uint16(h.Code))
	rest = binenc.PutUint16(rest, h.Version)
	rest = binenc.PutInt32(rest, h.Length)
	rest = binenc.PutUint16(rest, h.CompRef)
	rest = binenc.PutUint16(rest, uint16(h.Model))
	rest = binenc.PutUint16(rest, uint16(h.Coder))
	return rest
}

// DecodeHeader parses the fixed header from buf[:HeaderSize] and
// returns the remaining bytes (the coder trailer).
func DecodeHeader(buf []byte) (CompHeader, []byte, error) {
	if len(buf) < HeaderSize {
		return CompHeader{}, nil, fmt.Errorf("message: descriptor header needs %d bytes, got %d", HeaderSize, len(buf))
	}
	var h CompHeader
	var code, version, compRef, model, coder uint16
	var length int32

	code, rest := binenc.Uint16(buf)
	version, rest = binenc.Uint16(rest)
	length, rest = binenc.Int32(rest)
	compRef, rest = binenc.Uint16(rest)
	model, rest = binenc.Uint16(rest)
	coder, rest = binenc.Uint16(rest)

	h.Code = SpecialCode(code)
	if h.Code != SpecialComp {
		return CompHeader{}, nil, fmt.Errorf("message: expected SPECIAL_COMP code %d, got %d", SpecialComp, code)
	}
	if version != HeaderVersion {
		return CompHeader{}, nil, fmt.Errorf("message: unsupported compressed-descriptor header version %d", version)
	}
	h.Version = version
	h.Length = length
	h.CompRef = compRef
	h.Model = ModelVariant(model)
	h.Coder = CoderVariant(coder)
	return h, rest, nil
}
