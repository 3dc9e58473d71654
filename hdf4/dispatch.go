package hdf4

import (
	"fmt"

	"github.com/nkoval/go-hdf4/internal/message"
)

// SeekOrigin selects the reference point for Seek, mirroring the three
// origins every element variant must support.
type SeekOrigin int

const (
	SeekStart SeekOrigin = iota
	SeekCurrent
	SeekEnd
)

type accessMode int

const (
	modeRead accessMode = iota
	modeReadWrite
)

type elementKind int

const (
	kindRegular elementKind = iota
	kindCompressed
)

// elementOps is the per-variant operation set an AccessRecord
// dispatches against. Which implementation a record holds is decided
// once, when the record is created (StartRead/StartWrite/NewElement/
// CreateCompressed), rather than re-matched on every call.
type elementOps interface {
	seek(ar *AccessRecord, offset int64, origin SeekOrigin) error
	read(ar *AccessRecord, n int, buf []byte) (int, error)
	write(ar *AccessRecord, p []byte) (int, error)
	endAccess(ar *AccessRecord) error
}

// AccessRecord is the transient handle a user view holds on a DD entry
// between a start_* call and EndAccess. Callers never see this type
// directly; they hold an AID and pass it to *File methods.
type AccessRecord struct {
	file *File
	tag  uint16
	ref  uint16
	mode accessMode
	posn int64
	kind elementKind
	ops  elementOps

	// kindRegular
	offset        int64
	regularLength int64

	// kindCompressed
	comp     *compState
	writeBuf []byte // accumulated logical content of an open write session, nil until the first Write
}

func (ar *AccessRecord) length() int64 {
	if ar.kind == kindCompressed {
		if ar.writeBuf != nil {
			return int64(len(ar.writeBuf))
		}
		return ar.comp.length
	}
	return ar.regularLength
}

// resolveSeek computes the new position for a seek relative to cur,
// length, and origin, enforcing the shared rules every variant applies
// (spec.md §4.D "seek"): negative results fail with Range; a result
// past length fails with Range unless appendable permits it.
func resolveSeek(cur, length, offset int64, origin SeekOrigin, appendable bool) (int64, error) {
	var base int64
	switch origin {
	case SeekStart:
		base = 0
	case SeekCurrent:
		base = cur
	case SeekEnd:
		base = length
	default:
		return 0, newError(KindArgs, "seek", fmt.Errorf("unknown seek origin %d", origin))
	}

	pos := base + offset
	if pos < 0 {
		return 0, newError(KindRange, "seek", fmt.Errorf("negative position %d", pos))
	}
	if pos > length && !appendable {
		return 0, newError(KindRange, "seek", fmt.Errorf("position %d past end (length %d)", pos, length))
	}
	return pos, nil
}

// resolveRead computes how many bytes a read should transfer, enforcing
// spec.md §4.D "read": n==0 reads to end-of-element with no error even
// at exactly end-of-element, but a nonzero n that would run past
// length fails with Range and leaves posn untouched.
func resolveRead(posn, length int64, n, bufLen int) (int64, error) {
	avail := length - posn
	if avail < 0 {
		avail = 0
	}
	if n == 0 {
		want := avail
		if want > int64(bufLen) {
			want = int64(bufLen)
		}
		return want, nil
	}
	if int64(n) > avail {
		return 0, newError(KindRange, "read", fmt.Errorf("read of %d bytes at posn %d exceeds length %d", n, posn, length))
	}
	want := int64(n)
	if want > int64(bufLen) {
		want = int64(bufLen)
	}
	return want, nil
}

// Metadata is the result of Inquire: a pure accessor over an
// AccessRecord's current state (spec.md §4.D "inquire").
type Metadata struct {
	Tag     uint16
	Ref     uint16
	Length  int64
	Posn    int64
	Mode    accessMode
	Special bool
}

// Info is the result of Info: variant-specific detail beyond Metadata
// (spec.md §4.D "info"). SpecialCode, Model, Coder, CompRef, and
// Attached are only meaningful when Special is true.
type Info struct {
	Special     bool
	SpecialCode message.SpecialCode
	Model       ModelVariant
	Coder       CoderVariant
	CompRef     uint16
	Attached    int
}
