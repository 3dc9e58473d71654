package hdf4

import (
	"fmt"

	"github.com/nkoval/go-hdf4/internal/object"
)

// regularOps implements elementOps for ordinary, uncompressed DD
// entries: a fixed disk region read and written directly.
type regularOps struct{}

func (regularOps) seek(ar *AccessRecord, offset int64, origin SeekOrigin) error {
	pos, err := resolveSeek(ar.posn, ar.regularLength, offset, origin, true)
	if err != nil {
		return err
	}
	ar.posn = pos
	return nil
}

func (regularOps) read(ar *AccessRecord, n int, buf []byte) (int, error) {
	want, err := resolveRead(ar.posn, ar.regularLength, n, len(buf))
	if err != nil {
		return 0, err
	}
	if want <= 0 {
		return 0, nil
	}

	if err := ar.file.readAt(buf[:want], ar.offset+ar.posn); err != nil {
		return 0, err
	}
	ar.posn += want
	return int(want), nil
}

func (regularOps) write(ar *AccessRecord, p []byte) (int, error) {
	if ar.mode != modeReadWrite {
		return 0, newError(KindDenied, "write", fmt.Errorf("access record is read-only"))
	}

	end := ar.posn + int64(len(p))
	if end > ar.regularLength {
		if err := growRegular(ar, end); err != nil {
			return 0, err
		}
	}

	if err := ar.file.writeAt(p, ar.offset+ar.posn); err != nil {
		return 0, err
	}
	ar.posn += int64(len(p))
	return len(p), nil
}

func (regularOps) endAccess(ar *AccessRecord) error {
	return nil
}

// growRegular extends ar's backing storage so it can hold newLength
// bytes, relocating the element and rewriting its DD slot if the
// allocator cannot grow the existing region in place (spec.md §4.D
// "write past end").
func growRegular(ar *AccessRecord, newLength int64) error {
	f := ar.file
	extra := uint64(newLength - ar.regularLength)

	newOffset, moved := f.alloc.Extend(uint64(ar.offset), uint64(ar.regularLength), extra)
	if moved {
		buf := make([]byte, ar.regularLength)
		if ar.regularLength > 0 {
			if err := f.readAt(buf, ar.offset); err != nil {
				return err
			}
			if err := f.writeAt(buf, int64(newOffset)); err != nil {
				return err
			}
		}
		ar.offset = int64(newOffset)
	}

	loc, ok := f.index.Lookup(ar.tag, ar.ref)
	if !ok {
		return newError(KindInternal, "write", fmt.Errorf("(%d,%d) missing from index during growth", ar.tag, ar.ref))
	}
	f.setSlot(loc, object.DD{Tag: ar.tag, Ref: ar.ref, Offset: int32(ar.offset), Length: int32(newLength)})
	ar.regularLength = newLength
	return nil
}
