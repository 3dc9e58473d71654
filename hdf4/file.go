package hdf4

import (
	"fmt"
	"os"
	"sync"

	log "github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/nkoval/go-hdf4/internal/access"
	"github.com/nkoval/go-hdf4/internal/alloc"
	"github.com/nkoval/go-hdf4/internal/ddindex"
	"github.com/nkoval/go-hdf4/internal/message"
	"github.com/nkoval/go-hdf4/internal/object"
)

// AID is the opaque handle returned by NewElement, CreateCompressed,
// StartRead, and StartWrite, and passed to every subsequent operation
// against that open element.
type AID = access.AID

// Mode selects how Open treats the underlying container file.
type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
	Create
)

// fileMagic is the 4-byte signature every container begins with.
var fileMagic = [4]byte{0x0e, 0x03, 0x13, 0x01}

// maxAccessRecords bounds the number of AIDs a single File will hand
// out concurrently (spec.md §4.C "fixed-capacity pool").
const maxAccessRecords = 4096

// ddBlock is one in-memory DD block, its on-disk offset, and a dirty
// bit driving write-back at Close.
type ddBlock struct {
	offset int64
	blk    *object.Block
	dirty  bool
}

type compKey struct {
	tag uint16
	ref uint16
}

// File is one open container (spec.md §3 "Container (File Record)").
type File struct {
	mu sync.Mutex

	path   string
	f      *os.File
	mode   Mode
	closed bool

	blocks   []*ddBlock
	freeHint int
	index    *ddindex.Index
	alloc    *alloc.Allocator
	maxRef   uint16
	attach   int

	access *access.Table[*AccessRecord]
	fds    *access.FDTable

	comp map[compKey]*compState
}

// Open opens or creates a container at path under the given Mode.
//
// On Create, a fresh file begins with the magic signature followed by
// one empty DD block. On ReadOnly/ReadWrite, the magic is validated and
// every DD block is walked from offset 4, populating the hash index
// (spec.md §4.B "open").
func Open(path string, mode Mode) (*File, error) {
	const op = "open"

	var (
		osFile *os.File
		err    error
	)
	switch mode {
	case Create:
		osFile, err = os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	case ReadWrite:
		osFile, err = os.OpenFile(path, os.O_RDWR, 0o644)
	case ReadOnly:
		osFile, err = os.Open(path)
	default:
		return nil, newError(KindArgs, op, fmt.Errorf("unknown mode %d", mode))
	}
	if err != nil {
		return nil, newError(KindIOError, op, errors.Wrap(err, "opening underlying file"))
	}

	f := &File{
		path:   path,
		f:      osFile,
		mode:   mode,
		index:  ddindex.New(),
		access: access.New[*AccessRecord](maxAccessRecords),
		fds:    access.NewFDTable(),
		comp:   make(map[compKey]*compState),
	}

	if mode == Create {
		if err := f.initEmpty(); err != nil {
			osFile.Close()
			return nil, err
		}
	} else {
		if err := f.loadExisting(); err != nil {
			osFile.Close()
			return nil, err
		}
	}

	log.V(1).Infof("hdf4: opened %q mode=%d", path, mode)
	return f, nil
}

func (f *File) initEmpty() error {
	if _, err := f.f.WriteAt(fileMagic[:], 0); err != nil {
		return newError(KindIOError, "open", errors.Wrap(err, "writing magic"))
	}

	blk := object.NewBlock(object.DefaultSlotCount)
	if err := object.WriteBlock(f.f, 4, blk); err != nil {
		return newError(KindIOError, "open", errors.Wrap(err, "writing initial DD block"))
	}
	f.blocks = append(f.blocks, &ddBlock{offset: 4, blk: blk})

	f.alloc = alloc.New(4)
	f.alloc.SetEOF(uint64(4 + object.Size(object.DefaultSlotCount)))
	return nil
}

func (f *File) loadExisting() error {
	var magic [4]byte
	if _, err := f.f.ReadAt(magic[:], 0); err != nil {
		return newError(KindBadFile, "open", errors.Wrap(err, "reading magic"))
	}
	if magic != fileMagic {
		return newError(KindBadFile, "open", fmt.Errorf("bad magic %x", magic))
	}

	offset := int64(4)
	for offset != 0 {
		blk, err := object.ReadBlock(f.f, offset)
		if err != nil {
			return newError(KindBadFile, "open", errors.Wrap(err, "reading DD block"))
		}
		f.blocks = append(f.blocks, &ddBlock{offset: offset, blk: blk})
		for _, dd := range blk.Slots {
			if !dd.Free() && dd.Ref > f.maxRef {
				f.maxRef = dd.Ref
			}
		}
		offset = int64(blk.NextOffset)
	}

	f.index.Rehash(func(yield func(tag, ref uint16, loc ddindex.Loc)) {
		for blockIdx, db := range f.blocks {
			for slot, dd := range db.blk.Slots {
				if dd.Free() {
					continue
				}
				yield(dd.BaseTag(), dd.Ref, ddindex.Loc{Block: blockIdx, Slot: slot})
			}
		}
	})

	info, err := f.f.Stat()
	if err != nil {
		return newError(KindIOError, "open", errors.Wrap(err, "statting file"))
	}
	f.alloc = alloc.New(4)
	f.alloc.SetEOF(uint64(info.Size()))
	return nil
}

// Close requires every AID opened against this File to have already
// been released (spec.md §4.B "close"); it flushes dirty DD blocks and
// closes the underlying file.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	if f.attach != 0 {
		return newError(KindDenied, "close", fmt.Errorf("%d access record(s) still open", f.attach))
	}

	for _, db := range f.blocks {
		if !db.dirty {
			continue
		}
		if err := object.WriteBlock(f.f, db.offset, db.blk); err != nil {
			return newError(KindIOError, "close", errors.Wrap(err, "flushing DD block"))
		}
		db.dirty = false
	}

	f.closed = true
	if err := f.f.Close(); err != nil {
		return newError(KindIOError, "close", errors.Wrap(err, "closing underlying file"))
	}
	return nil
}

func (f *File) lookupDD(tag, ref uint16) (object.DD, ddindex.Loc, bool) {
	loc, ok := f.index.Lookup(tag, ref)
	if !ok {
		return object.DD{}, ddindex.Loc{}, false
	}
	return f.blocks[loc.Block].blk.Slots[loc.Slot], loc, true
}

func (f *File) setSlot(loc ddindex.Loc, dd object.DD) {
	db := f.blocks[loc.Block]
	db.blk.Slots[loc.Slot] = dd
	db.dirty = true
}

// deleteDDAt frees loc's slot and drops its index entry. The index
// key is always the base tag (the SPECIAL bit never appears in an
// index key), regardless of what the slot's own Tag field carries.
func (f *File) deleteDDAt(loc ddindex.Loc) {
	dd := f.blocks[loc.Block].blk.Slots[loc.Slot]
	f.alloc.Free(uint64(dd.Offset), uint64(dd.Length))
	f.setSlot(loc, object.DD{})
	f.index.Remove(dd.BaseTag(), dd.Ref)
	if loc.Block < f.freeHint {
		f.freeHint = loc.Block
	}
}

// newRef returns maxRef+1, incrementing it (spec.md §4.B "new_ref").
func (f *File) newRef() (uint16, error) {
	if f.maxRef == 0xFFFF {
		return 0, newError(KindNoSpace, "new_ref", fmt.Errorf("ref space exhausted"))
	}
	f.maxRef++
	return f.maxRef, nil
}

// allocateDD returns a free DD slot, extending the chain with a fresh
// block if none is free (spec.md §4.B "allocate_dd").
func (f *File) allocateDD() ddindex.Loc {
	for i := f.freeHint; i < len(f.blocks); i++ {
		for s, dd := range f.blocks[i].blk.Slots {
			if dd.Free() {
				f.freeHint = i
				return ddindex.Loc{Block: i, Slot: s}
			}
		}
	}
	return f.extendChain()
}

func (f *File) extendChain() ddindex.Loc {
	size := object.Size(object.DefaultSlotCount)
	offset := f.alloc.GetDiskBlock(uint64(size), false)

	blk := object.NewBlock(object.DefaultSlotCount)
	if len(f.blocks) > 0 {
		last := f.blocks[len(f.blocks)-1]
		last.blk.NextOffset = int32(offset)
		last.dirty = true
	}
	f.blocks = append(f.blocks, &ddBlock{offset: int64(offset), blk: blk, dirty: true})
	f.freeHint = len(f.blocks) - 1
	return ddindex.Loc{Block: len(f.blocks) - 1, Slot: 0}
}

// allocate reserves length bytes at the end of the file (spec.md
// §4.B "get_disk_block").
func (f *File) allocate(length uint64) int64 {
	return int64(f.alloc.GetDiskBlock(length, true))
}

func (f *File) readAt(buf []byte, off int64) error {
	n, err := f.f.ReadAt(buf, off)
	if err != nil {
		return newError(KindIOError, "read_at", errors.Wrap(err, "short read"))
	}
	if n != len(buf) {
		return newError(KindIOError, "read_at", fmt.Errorf("short read: got %d want %d", n, len(buf)))
	}
	return nil
}

func (f *File) writeAt(buf []byte, off int64) error {
	n, err := f.f.WriteAt(buf, off)
	if err != nil {
		return newError(KindIOError, "write_at", errors.Wrap(err, "short write"))
	}
	if n != len(buf) {
		return newError(KindIOError, "write_at", fmt.Errorf("short write: got %d want %d", n, len(buf)))
	}
	return nil
}

// NewElement creates a regular element pre-sized to length bytes and
// returns a write AID for it (spec.md §6 "new_element").
func (f *File) NewElement(tag, ref uint16, length int64) (AID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	const op = "new_element"

	if f.closed {
		return 0, newError(KindArgs, op, fmt.Errorf("file is closed"))
	}
	if f.mode == ReadOnly {
		return 0, newError(KindDenied, op, fmt.Errorf("file is read-only"))
	}
	if tag&object.SpecialMask != 0 {
		return 0, newError(KindArgs, op, fmt.Errorf("tag 0x%x has the special bit set", tag))
	}
	if length < 0 {
		return 0, newError(KindRange, op, fmt.Errorf("negative length %d", length))
	}
	if _, _, ok := f.lookupDD(tag, ref); ok {
		return 0, newError(KindCannotModify, op, fmt.Errorf("(%d,%d) already exists", tag, ref))
	}

	offset := f.allocate(uint64(length))
	loc := f.allocateDD()
	dd := object.DD{Tag: tag, Ref: ref, Offset: int32(offset), Length: int32(length)}
	f.setSlot(loc, dd)
	f.index.Insert(tag, ref, loc)

	rec := &AccessRecord{
		file: f, tag: tag, ref: ref, mode: modeReadWrite,
		kind: kindRegular, ops: regularOps{},
		offset: offset, regularLength: length,
	}
	aid, err := f.access.Acquire(rec)
	if err != nil {
		return 0, newError(KindTooMany, op, err)
	}
	f.attach++
	return aid, nil
}

func (f *File) start(op string, tag, ref uint16, mode accessMode) (AID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return 0, newError(KindArgs, op, fmt.Errorf("file is closed"))
	}
	if mode == modeReadWrite && f.mode == ReadOnly {
		return 0, newError(KindDenied, op, fmt.Errorf("file is read-only"))
	}

	dd, _, ok := f.lookupDD(tag, ref)
	if !ok {
		return 0, newError(KindNotFound, op, fmt.Errorf("(%d,%d) not found", tag, ref))
	}

	var rec *AccessRecord
	if !dd.Special() {
		rec = &AccessRecord{
			file: f, tag: dd.Tag, ref: dd.Ref, mode: mode,
			kind: kindRegular, ops: regularOps{},
			offset: int64(dd.Offset), regularLength: int64(dd.Length),
		}
	} else {
		cs, err := f.attachCompressed(dd)
		if err != nil {
			return 0, newError(KindDenied, op, err)
		}
		rec = &AccessRecord{
			file: f, tag: dd.BaseTag(), ref: dd.Ref, mode: mode,
			kind: kindCompressed, ops: compressedOps{}, comp: cs,
		}
		if mode == modeReadWrite {
			rec.posn = cs.length
		}
	}

	aid, err := f.access.Acquire(rec)
	if err != nil {
		if rec.kind == kindCompressed {
			rec.comp.attached--
		}
		return 0, newError(KindTooMany, op, err)
	}
	f.attach++
	return aid, nil
}

// StartRead attaches a read-only AID to an existing (tag, ref)
// (spec.md §6 "start_read").
func (f *File) StartRead(tag, ref uint16) (AID, error) {
	return f.start("start_read", tag, ref, modeRead)
}

// StartWrite attaches a writable AID to an existing (tag, ref)
// (spec.md §6 "start_write").
func (f *File) StartWrite(tag, ref uint16) (AID, error) {
	return f.start("start_write", tag, ref, modeReadWrite)
}

// Seek repositions aid (spec.md §6 "seek").
func (f *File) Seek(aid AID, offset int64, origin SeekOrigin) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ar, ok := f.access.Get(aid)
	if !ok {
		return newError(KindArgs, "seek", fmt.Errorf("unknown or released AID"))
	}
	return ar.ops.seek(ar, offset, origin)
}

// Read reads from aid into buf. n==0 means read to end of element
// (spec.md §6 "read").
func (f *File) Read(aid AID, n int, buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ar, ok := f.access.Get(aid)
	if !ok {
		return 0, newError(KindArgs, "read", fmt.Errorf("unknown or released AID"))
	}
	return ar.ops.read(ar, n, buf)
}

// Write writes buf to aid, appending if positioned at the element's
// current end (spec.md §6 "write").
func (f *File) Write(aid AID, buf []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ar, ok := f.access.Get(aid)
	if !ok {
		return 0, newError(KindArgs, "write", fmt.Errorf("unknown or released AID"))
	}
	return ar.ops.write(ar, buf)
}

// Inquire returns aid's current metadata (spec.md §6 "inquire").
func (f *File) Inquire(aid AID) (Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ar, ok := f.access.Get(aid)
	if !ok {
		return Metadata{}, newError(KindArgs, "inquire", fmt.Errorf("unknown or released AID"))
	}
	return Metadata{
		Tag: ar.tag, Ref: ar.ref, Length: ar.length(), Posn: ar.posn,
		Mode: ar.mode, Special: ar.kind == kindCompressed,
	}, nil
}

// Info returns aid's variant-specific detail (spec.md §6 "info").
func (f *File) Info(aid AID) (Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	ar, ok := f.access.Get(aid)
	if !ok {
		return Info{}, newError(KindArgs, "info", fmt.Errorf("unknown or released AID"))
	}

	info := Info{Special: ar.kind == kindCompressed}
	if ar.kind == kindCompressed {
		info.SpecialCode = message.SpecialComp
		info.Model = ar.comp.modelVariant
		info.Coder = ar.comp.coderVariant
		info.CompRef = ar.comp.compRef
		info.Attached = ar.comp.attached
	}
	return info, nil
}

// EndAccess flushes and releases aid (spec.md §6 "endaccess"). Calling
// EndAccess twice on the same AID fails with Args, matching the
// idempotence property tests require.
func (f *File) EndAccess(aid AID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	ar, ok := f.access.Get(aid)
	if !ok {
		return newError(KindArgs, "endaccess", fmt.Errorf("AID already released or unknown"))
	}
	if err := ar.ops.endAccess(ar); err != nil {
		return err
	}
	f.access.Release(aid)
	f.attach--
	return nil
}

// Delete removes (tag, ref), marking its slot free and dropping it
// from the hash index. Storage is not reclaimed (spec.md §4.B
// "delete_dd", a documented limitation, not a bug).
func (f *File) Delete(tag, ref uint16) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	const op = "delete"

	dd, loc, ok := f.lookupDD(tag, ref)
	if !ok {
		return newError(KindNotFound, op, fmt.Errorf("(%d,%d) not found", tag, ref))
	}

	if dd.Special() {
		cs, err := f.attachCompressed(dd)
		if err != nil {
			return newError(KindDenied, op, err)
		}
		cs.attached-- // undo the attach bump attachCompressed just did for this lookup
		if cs.attached > 0 {
			return newError(KindDenied, op, fmt.Errorf("(%d,%d) has %d open access record(s)", tag, ref, cs.attached))
		}
		delete(f.comp, compKey{dd.BaseTag(), dd.Ref})
		if _, backingLoc, ok := f.lookupDD(message.CompressedDataTag, cs.compRef); ok {
			f.deleteDDAt(backingLoc)
		}
	}

	f.deleteDDAt(loc)
	return nil
}

// DDEntry describes one live DD slot, as returned by Walk.
type DDEntry struct {
	Tag     uint16
	Ref     uint16
	Offset  int64
	Length  int64
	Special bool
}

// Walk returns every live DD entry across the chain, in block order, for
// diagnostic tools that need to enumerate a container's contents without
// attaching an AID to each entry in turn (spec.md §2 expansion F).
func (f *File) Walk() []DDEntry {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []DDEntry
	for _, db := range f.blocks {
		for _, dd := range db.blk.Slots {
			if dd.Free() {
				continue
			}
			out = append(out, DDEntry{
				Tag: dd.BaseTag(), Ref: dd.Ref,
				Offset: int64(dd.Offset), Length: int64(dd.Length),
				Special: dd.Special(),
			})
		}
	}
	return out
}

// Stats returns a snapshot of the container's disk-space allocator:
// bytes handed out so far and bytes leaked by delete_dd, for a
// diagnostic tool reporting on space efficiency (spec.md §4.B, §9).
func (f *File) Stats() alloc.Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alloc.Stats()
}

// Validate reports an error if the container's allocator bookkeeping
// has gone inconsistent, for a diagnostic tool to surface as a
// corruption warning rather than a crash.
func (f *File) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.alloc.Validate()
}

// RegisterFD records that externally observed descriptor fd was used
// to open aid, for a tracing collaborator to correlate its own
// fd-keyed events with AIDs (spec.md §4.C). Nothing in this package
// consults this mapping.
func (f *File) RegisterFD(fd int, aid AID) {
	f.fds.Register(fd, aid)
}

// ResolveFD returns the AID last registered for fd, if any.
func (f *File) ResolveFD(fd int) (AID, bool) {
	return f.fds.Resolve(fd)
}

// ReleaseFD drops fd's registration, if present.
func (f *File) ReleaseFD(fd int) {
	f.fds.Release(fd)
}
