package hdf4

import (
	"fmt"

	"github.com/nkoval/go-hdf4/internal/ddindex"
	"github.com/nkoval/go-hdf4/internal/message"
	"github.com/nkoval/go-hdf4/internal/object"
)

// compState is the shared, decoded view of one compressed element,
// cached across every AccessRecord opened against the same (tag, ref)
// so the header is parsed once and repeated reads don't re-decode from
// disk on every call (spec.md §4.E.4 "attach").
type compState struct {
	tag, ref   uint16
	descOffset int64
	compRef    uint16

	modelVariant ModelVariant
	coderVariant CoderVariant
	model        model
	coder        coder

	length   int64 // uncompressed logical length
	attached int

	plainCache      []byte
	plainCacheValid bool
}

// CreateCompressed turns (tag, ref) into a compressed element. If
// (tag, ref) already names a regular element, its content is migrated
// into the new compressed representation; if it names nothing yet, the
// element starts out with zero logical length. An element that is
// already compressed cannot be recreated this way (spec.md §4.E.4
// "create_compressed").
func (f *File) CreateCompressed(tag, ref uint16, modelVariant ModelVariant, coderVariant CoderVariant, params CoderParams) (AID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	const op = "create_compressed"

	if f.closed {
		return 0, newError(KindArgs, op, fmt.Errorf("file is closed"))
	}
	if f.mode == ReadOnly {
		return 0, newError(KindDenied, op, fmt.Errorf("file is read-only"))
	}
	if tag&object.SpecialMask != 0 {
		return 0, newError(KindArgs, op, fmt.Errorf("tag 0x%x has the special bit set", tag))
	}

	modelInst, err := newModel(modelVariant)
	if err != nil {
		return 0, err
	}
	coderInst, err := newCoder(coderVariant, params)
	if err != nil {
		return 0, err
	}

	var plain []byte
	var loc ddindex.Loc
	reuseLoc := false

	if dd, existingLoc, ok := f.lookupDD(tag, ref); ok {
		if dd.Special() {
			return 0, newError(KindCannotModify, op, fmt.Errorf("(%d,%d) is already special", tag, ref))
		}
		plain = make([]byte, dd.Length)
		if dd.Length > 0 {
			if err := f.readAt(plain, int64(dd.Offset)); err != nil {
				return 0, err
			}
		}
		f.alloc.Free(uint64(dd.Offset), uint64(dd.Length))
		loc = existingLoc
		reuseLoc = true
	}

	compRef, err := f.newRef()
	if err != nil {
		return 0, err
	}

	modeled := modelInst.toCoder(plain)
	encoded := coderInst.encode(modeled)

	backingOffset, err := f.writeBackingPayload(encoded)
	if err != nil {
		return 0, err
	}
	backingLoc := f.allocateDD()
	f.setSlot(backingLoc, object.DD{Tag: message.CompressedDataTag, Ref: compRef, Offset: int32(backingOffset), Length: int32(len(encoded))})
	f.index.Insert(message.CompressedDataTag, compRef, backingLoc)

	descOffset, descLen, err := f.writeDescriptor(coderInst, message.CompHeader{
		Code: message.SpecialComp, Version: message.HeaderVersion,
		Length: int32(len(plain)), CompRef: compRef, Model: modelVariant, Coder: coderVariant,
	})
	if err != nil {
		return 0, err
	}

	if !reuseLoc {
		loc = f.allocateDD()
	}
	f.setSlot(loc, object.DD{Tag: tag | object.SpecialMask, Ref: ref, Offset: int32(descOffset), Length: int32(descLen)})
	f.index.Insert(tag, ref, loc)

	cs := &compState{
		tag: tag, ref: ref, descOffset: descOffset, compRef: compRef,
		modelVariant: modelVariant, coderVariant: coderVariant,
		model: modelInst, coder: coderInst, length: int64(len(plain)),
		attached: 1, plainCache: plain, plainCacheValid: true,
	}
	f.comp[compKey{tag, ref}] = cs

	rec := &AccessRecord{
		file: f, tag: tag, ref: ref, mode: modeReadWrite,
		kind: kindCompressed, ops: compressedOps{}, comp: cs, posn: cs.length,
	}
	aid, err := f.access.Acquire(rec)
	if err != nil {
		cs.attached--
		return 0, newError(KindTooMany, op, err)
	}
	f.attach++
	return aid, nil
}

// writeBackingPayload allocates disk space for encoded and writes it,
// returning the chosen offset. An empty payload still reserves
// CompStartBlock bytes, mirroring the non-zero placeholder allocation
// a freshly created compressed element gets before any bytes are
// written (spec.md §4.E.4 step 6).
func (f *File) writeBackingPayload(encoded []byte) (int64, error) {
	allocLen := len(encoded)
	if allocLen < message.CompStartBlock {
		allocLen = message.CompStartBlock
	}
	offset := f.allocate(uint64(allocLen))
	if len(encoded) > 0 {
		if err := f.writeAt(encoded, offset); err != nil {
			return 0, err
		}
	}
	return offset, nil
}

// writeDescriptor encodes hdr and c's trailer into a fresh disk
// allocation and returns its offset and total length.
func (f *File) writeDescriptor(c coder, hdr message.CompHeader) (int64, int64, error) {
	descLen := int64(message.HeaderSize + c.trailerSize())
	buf := make([]byte, descLen)
	rest := hdr.Encode(buf)
	c.encodeTrailer(rest)

	offset := f.allocate(uint64(descLen))
	if err := f.writeAt(buf, offset); err != nil {
		return 0, 0, err
	}
	return offset, descLen, nil
}

// attachCompressed resolves dd (a special DD pointing at a compressed
// descriptor) to its shared compState, parsing the on-disk header only
// the first time any AccessRecord attaches to this element.
func (f *File) attachCompressed(dd object.DD) (*compState, error) {
	key := compKey{dd.BaseTag(), dd.Ref}
	if cs, ok := f.comp[key]; ok {
		cs.attached++
		return cs, nil
	}

	buf := make([]byte, dd.Length)
	if dd.Length > 0 {
		if err := f.readAt(buf, int64(dd.Offset)); err != nil {
			return nil, err
		}
	}
	hdr, trailer, err := message.DecodeHeader(buf)
	if err != nil {
		return nil, newError(KindBadFile, "attach", err)
	}
	coderInst, err := decodeTrailer(hdr.Coder, trailer, int64(hdr.Length))
	if err != nil {
		return nil, err
	}
	modelInst, err := newModel(hdr.Model)
	if err != nil {
		return nil, err
	}

	cs := &compState{
		tag: dd.BaseTag(), ref: dd.Ref, descOffset: int64(dd.Offset), compRef: hdr.CompRef,
		modelVariant: hdr.Model, coderVariant: hdr.Coder, model: modelInst, coder: coderInst,
		length: int64(hdr.Length), attached: 1,
	}
	f.comp[key] = cs
	return cs, nil
}

// decodeBacking returns cs's full logical content, decoding from disk
// and caching the result the first time it's needed.
func (f *File) decodeBacking(cs *compState) ([]byte, error) {
	if cs.plainCacheValid {
		return cs.plainCache, nil
	}

	backingDD, _, ok := f.lookupDD(message.CompressedDataTag, cs.compRef)
	if !ok {
		return nil, newError(KindInternal, "read", fmt.Errorf("backing element for comp_ref %d missing", cs.compRef))
	}
	raw := make([]byte, backingDD.Length)
	if backingDD.Length > 0 {
		if err := f.readAt(raw, int64(backingDD.Offset)); err != nil {
			return nil, err
		}
	}

	modeled, err := cs.coder.decode(raw)
	if err != nil {
		return nil, err
	}
	plain := cs.model.fromCoder(modeled)

	cs.plainCache = plain
	cs.plainCacheValid = true
	return plain, nil
}

// flushCompressedWrite re-encodes plain in its entirety and rewrites
// both the descriptor (its Length field changes) and the backing
// payload at a fresh allocation, leaking the old backing region the
// same way delete_dd does. The whole-buffer strategy is deliberate:
// RLE and SKPHUFF are not safely appendable mid-stream, so every flush
// starts from the complete logical content rather than trying to
// patch an existing encoded tail (spec.md §4.E.4 "endaccess on a
// write access record").
func (f *File) flushCompressedWrite(cs *compState, plain []byte) error {
	modeled := cs.model.toCoder(plain)
	encoded := cs.coder.encode(modeled)

	elementLoc, ok := f.index.Lookup(cs.tag, cs.ref)
	if !ok {
		return newError(KindInternal, "endaccess", fmt.Errorf("(%d,%d) missing from index during flush", cs.tag, cs.ref))
	}
	oldElementDD := f.blocks[elementLoc.Block].blk.Slots[elementLoc.Slot]
	f.alloc.Free(uint64(oldElementDD.Offset), uint64(oldElementDD.Length))

	newDescOffset, newDescLen, err := f.writeDescriptor(cs.coder, message.CompHeader{
		Code: message.SpecialComp, Version: message.HeaderVersion,
		Length: int32(len(plain)), CompRef: cs.compRef, Model: cs.modelVariant, Coder: cs.coderVariant,
	})
	if err != nil {
		return err
	}
	f.setSlot(elementLoc, object.DD{Tag: cs.tag | object.SpecialMask, Ref: cs.ref, Offset: int32(newDescOffset), Length: int32(newDescLen)})
	cs.descOffset = newDescOffset

	backingLoc, ok := f.index.Lookup(message.CompressedDataTag, cs.compRef)
	if !ok {
		return newError(KindInternal, "endaccess", fmt.Errorf("backing element for comp_ref %d missing", cs.compRef))
	}
	backingDD := f.blocks[backingLoc.Block].blk.Slots[backingLoc.Slot]
	f.alloc.Free(uint64(backingDD.Offset), uint64(backingDD.Length))

	newBackingOffset, err := f.writeBackingPayload(encoded)
	if err != nil {
		return err
	}
	f.setSlot(backingLoc, object.DD{Tag: message.CompressedDataTag, Ref: cs.compRef, Offset: int32(newBackingOffset), Length: int32(len(encoded))})

	cs.length = int64(len(plain))
	cs.plainCache = append([]byte(nil), plain...)
	cs.plainCacheValid = true
	return nil
}

// compressedOps implements elementOps for SPECIAL_COMP elements,
// dispatching every call through the element's shared compState.
type compressedOps struct{}

// seek on a write access record only honors a seek that lands exactly
// on the current end of the logical content: a forward seek-to-end,
// i.e. an append (spec.md §4.E.2). Any other target, forward or
// backward, is rejected since compressed elements cannot be rewritten
// mid-stream.
func (compressedOps) seek(ar *AccessRecord, offset int64, origin SeekOrigin) error {
	if ar.mode == modeReadWrite {
		end := ar.comp.length
		if ar.writeBuf != nil {
			end = int64(len(ar.writeBuf))
		}
		pos, err := resolveSeek(ar.posn, end, offset, origin, false)
		if err != nil {
			return err
		}
		if pos != end {
			return newError(KindCannotRandomWrite, "seek", fmt.Errorf("compressed elements only support forward seek-to-end (append)"))
		}
		ar.posn = pos
		return nil
	}
	plain, err := ar.file.decodeBacking(ar.comp)
	if err != nil {
		return err
	}
	pos, err := resolveSeek(ar.posn, int64(len(plain)), offset, origin, false)
	if err != nil {
		return err
	}
	ar.posn = pos
	return nil
}

func (compressedOps) read(ar *AccessRecord, n int, buf []byte) (int, error) {
	plain, err := ar.file.decodeBacking(ar.comp)
	if err != nil {
		return 0, err
	}

	want, err := resolveRead(ar.posn, int64(len(plain)), n, len(buf))
	if err != nil {
		return 0, err
	}
	if want <= 0 {
		return 0, nil
	}

	copy(buf[:want], plain[ar.posn:ar.posn+want])
	ar.posn += want
	return int(want), nil
}

func (compressedOps) write(ar *AccessRecord, p []byte) (int, error) {
	if ar.mode != modeReadWrite {
		return 0, newError(KindDenied, "write", fmt.Errorf("access record is read-only"))
	}

	if ar.writeBuf == nil {
		plain, err := ar.file.decodeBacking(ar.comp)
		if err != nil {
			return 0, err
		}
		ar.writeBuf = append([]byte(nil), plain...)
	}

	// ar.posn is always at the end of ar.writeBuf here: writes always
	// advance it in lockstep, and seek rejects anything but a
	// forward seek-to-end, so there is no way to desync the two.
	ar.writeBuf = append(ar.writeBuf, p...)
	ar.posn += int64(len(p))
	return len(p), nil
}

func (compressedOps) endAccess(ar *AccessRecord) error {
	cs := ar.comp
	if ar.mode == modeReadWrite && ar.writeBuf != nil {
		if err := ar.file.flushCompressedWrite(cs, ar.writeBuf); err != nil {
			return err
		}
	}
	cs.attached--
	if cs.attached <= 0 {
		delete(ar.file.comp, compKey{cs.tag, cs.ref})
	}
	return nil
}
