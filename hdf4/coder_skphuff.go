package hdf4

import (
	"fmt"

	"github.com/nkoval/go-hdf4/internal/binenc"
	"github.com/nkoval/go-hdf4/internal/bitio"
	"github.com/nkoval/go-hdf4/internal/huffman"
)

// skpHuffCoder interleaves the byte stream across skipSize lanes and
// Huffman-codes each lane independently with a freshly seeded adaptive
// model (spec.md §4.E.3 "SKPHUFF"). Interleaving groups bytes at a
// fixed stride, which helps when the stream carries several
// independent channels (e.g. interleaved sample planes) each with its
// own byte-value distribution.
//
// The encoded stream starts with one header per lane, in lane order,
// carrying that lane's symbol count and encoded byte length; the lanes'
// payloads follow, concatenated in the same order, so decode can slice
// them back into per-lane segments without a shared end-of-lane marker.
const skpHuffLaneHeaderSize = 8 // nsyms (u32) + byteLen (u32)

type skpHuffCoder struct {
	skipSize uint32
}

func newSkpHuffCoder(p SkpHuffParams) (coder, error) {
	if p.SkipSize == 0 {
		return nil, newError(KindArgs, "coder", fmt.Errorf("skip_size must be positive"))
	}
	return skpHuffCoder{skipSize: p.SkipSize}, nil
}

func decodeSkpHuffTrailer(trailer []byte) (coder, error) {
	if len(trailer) < 8 {
		return nil, newError(KindBadFile, "coder", fmt.Errorf("skphuff trailer needs 8 bytes, got %d", len(trailer)))
	}
	skipSize, _ := binenc.Uint32(trailer)
	if skipSize == 0 {
		return nil, newError(KindBadFile, "coder", fmt.Errorf("skip_size must be positive"))
	}
	return skpHuffCoder{skipSize: skipSize}, nil
}

func (c skpHuffCoder) variant() CoderVariant { return CoderSkpHuff }
func (c skpHuffCoder) trailerSize() int      { return 8 }

func (c skpHuffCoder) encodeTrailer(buf []byte) {
	rest := binenc.PutUint32(buf, c.skipSize)
	binenc.PutUint32(rest, 0)
}

func (c skpHuffCoder) encode(plain []byte) []byte {
	n := int(c.skipSize)
	lanes := make([][]byte, n)
	for i, b := range plain {
		lanes[i%n] = append(lanes[i%n], b)
	}

	header := make([]byte, 0, n*skpHuffLaneHeaderSize)
	payload := make([]byte, 0, len(plain))
	for _, lane := range lanes {
		m := huffman.NewModel()
		w := bitio.NewWriter()
		for _, b := range lane {
			m.EncodeSymbol(w, b)
		}
		encoded := w.Bytes()

		laneHdr := make([]byte, skpHuffLaneHeaderSize)
		rest := binenc.PutUint32(laneHdr, uint32(len(lane)))
		binenc.PutUint32(rest, uint32(len(encoded)))
		header = append(header, laneHdr...)
		payload = append(payload, encoded...)
	}
	return append(header, payload...)
}

func (c skpHuffCoder) decode(coded []byte) ([]byte, error) {
	n := int(c.skipSize)
	headerLen := n * skpHuffLaneHeaderSize
	if len(coded) < headerLen {
		return nil, newError(KindBadFile, "skphuff_decode", fmt.Errorf("lane header truncated"))
	}

	type laneDesc struct {
		nsyms   uint32
		byteLen uint32
	}
	descs := make([]laneDesc, n)
	h := coded[:headerLen]
	for i := range descs {
		nsyms, rest := binenc.Uint32(h)
		byteLen, rest2 := binenc.Uint32(rest)
		descs[i] = laneDesc{nsyms: nsyms, byteLen: byteLen}
		h = rest2
	}

	cursor := headerLen
	lanes := make([][]byte, n)
	total := 0
	for i, d := range descs {
		if cursor+int(d.byteLen) > len(coded) {
			return nil, newError(KindBadFile, "skphuff_decode", fmt.Errorf("lane %d payload truncated", i))
		}
		segment := coded[cursor : cursor+int(d.byteLen)]
		cursor += int(d.byteLen)

		m := huffman.NewModel()
		r := bitio.NewReader(segment)
		lane := make([]byte, 0, d.nsyms)
		for j := uint32(0); j < d.nsyms; j++ {
			sym, ok := m.DecodeSymbol(r)
			if !ok {
				return nil, newError(KindBadFile, "skphuff_decode", fmt.Errorf("lane %d symbol %d truncated", i, j))
			}
			lane = append(lane, sym)
		}
		lanes[i] = lane
		total += len(lane)
	}

	out := make([]byte, total)
	for i, lane := range lanes {
		for j, b := range lane {
			out[j*n+i] = b
		}
	}
	return out, nil
}
