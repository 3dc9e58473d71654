package object

import (
	"fmt"
	"io"

	"github.com/nkoval/go-hdf4/internal/binenc"
)

// NullTag marks a free DD slot (spec.md §3 "DD block").
const NullTag = uint16(0)

// SpecialMask is the high bit distinguishing a special tag from a
// regular one (spec.md §3 "DD").
const SpecialMask = uint16(0x8000)

// DefaultSlotCount is the number of DD slots a freshly allocated block
// carries when the DD chain needs to grow (spec.md §4.B allocate_dd).
const DefaultSlotCount = 16

// headerSize is the six on-disk bytes preceding a block's DD slots:
// next_block_offset (i32) followed by ndds (u16).
const headerSize = 6

// slotSize is the twelve on-disk bytes of one DD: tag (u16), ref (u16),
// offset (i32), length (i32).
const slotSize = 12

// DD is one Data Descriptor slot: a (tag, ref, offset, length) tuple
// locating a data object, or free if Tag == NullTag.
type DD struct {
	Tag    uint16
	Ref    uint16
	Offset int32
	Length int32
}

// Free reports whether this slot holds no live object.
func (d DD) Free() bool { return d.Tag == NullTag }

// Special reports whether this DD's tag carries the SPECIAL bit.
func (d DD) Special() bool { return d.Tag&SpecialMask != 0 }

// BaseTag returns the tag with the SPECIAL bit cleared.
func (d DD) BaseTag() uint16 { return d.Tag &^ SpecialMask }

// Block is one fixed-size DD block: a chain link carrying NextOffset
// (0 terminates the chain) and a fixed number of DD slots.
type Block struct {
	NextOffset int32
	Slots      []DD
}

// Size returns the on-disk size in bytes of a block with the given
// slot count.
func Size(slotCount int) int64 {
	return int64(headerSize + slotCount*slotSize)
}

// NewBlock returns a Block with slotCount free slots and no successor.
func NewBlock(slotCount int) *Block {
	return &Block{Slots: make([]DD, slotCount)}
}

// ReadBlock reads one DD block at offset. The slot count is taken from
// the block header's own ndds field (every block this implementation
// writes carries DefaultSlotCount, but the on-disk value is what is
// used).
func ReadBlock(r io.ReaderAt, offset int64) (*Block, error) {
	hdr := make([]byte, headerSize)
	if _, err := r.ReadAt(hdr, offset); err != nil {
		return nil, fmt.Errorf("object: reading DD block header at %#x: %w", offset, err)
	}

	next, rest := binenc.Int32(hdr)
	ndds, _ := binenc.Uint16(rest)

	body := make([]byte, int(ndds)*slotSize)
	if len(body) > 0 {
		if _, err := r.ReadAt(body, offset+headerSize); err != nil {
			return nil, fmt.Errorf("object: reading %d DD slots at %#x: %w", ndds, offset+headerSize, err)
		}
	}

	blk := &Block{NextOffset: next, Slots: make([]DD, ndds)}
	rest = body
	for i := range blk.Slots {
		var tag, ref uint16
		var off, length int32
		tag, rest = binenc.Uint16(rest)
		ref, rest = binenc.Uint16(rest)
		off, rest = binenc.Int32(rest)
		length, rest = binenc.Int32(rest)
		blk.Slots[i] = DD{Tag: tag, Ref: ref, Offset: off, Length: length}
	}
	return blk, nil
}

// WriteBlock writes a DD block back to disk at offset (update_dd,
// spec.md §4.B).
func WriteBlock(w io.WriterAt, offset int64, blk *Block) error {
	buf := make([]byte, Size(len(blk.Slots)))
	rest := binenc.PutInt32(buf, blk.NextOffset)
	rest = binenc.PutUint16(rest, uint16(len(blk.Slots)))
	for _, d := range blk.Slots {
		rest = binenc.PutUint16(rest, d.Tag)
		rest = binenc.PutUint16(rest, d.Ref)
		rest = binenc.PutInt32(rest, d.Offset)
		rest = binenc.PutInt32(rest, d.Length)
	}
	if _, err := w.WriteAt(buf, offset); err != nil {
		return fmt.Errorf("object: writing DD block at %#x: %w", offset, err)
	}
	return nil
}
