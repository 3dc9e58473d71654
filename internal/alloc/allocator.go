// Package alloc implements the file store's append-only disk-space
// allocator.
package alloc

import (
	"fmt"
	"sync"
)

// Allocator hands out non-overlapping byte ranges within a container,
// always growing the end-of-file address. It backs get_disk_block
// (spec.md §4.B): callers never see an address inside a region returned
// by a prior call.
type Allocator struct {
	mu sync.Mutex

	// eof is the next address that will be handed out.
	eof uint64

	// base is the lowest address the allocator will ever return
	// (the end of the magic/version signature).
	base uint64

	// freed records ranges released by delete_dd. Storage is never
	// reclaimed from them — spec.md §4.B and §9 call this out as a
	// known limitation the reimplementation preserves deliberately,
	// not a bug to fix.
	freed []Block

	stats Stats
}

// Block is a byte range within the container.
type Block struct {
	Offset uint64
	Length uint64
}

// Stats summarizes allocator activity, useful for a diagnostic tool
// reporting on leaked free space.
type Stats struct {
	Allocations uint64
	BytesAlloc  uint64
	BytesLeaked uint64
}

// New creates an Allocator whose first allocation starts at base.
func New(base uint64) *Allocator {
	return &Allocator{eof: base, base: base}
}

// GetDiskBlock allocates length bytes at the current end of file and
// returns their offset. appendOK is accepted for symmetry with the
// spec's signature; this allocator is append-only regardless, so the
// flag never changes behavior — it exists for callers that want to
// assert at the call site that they intended an append.
func (a *Allocator) GetDiskBlock(length uint64, appendOK bool) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	offset := a.eof
	a.eof += length
	a.stats.Allocations++
	a.stats.BytesAlloc += length
	return offset
}

// Extend grows a previously allocated region of curLength bytes at
// offset by extra bytes, for elements whose length mutates after
// creation (spec.md §4.E.4 "Extend on write"). If the region still
// ends at the current end-of-file — nothing else has been appended
// since — it grows in place and moved is false. Otherwise a fresh
// region big enough for the whole extended content is allocated at
// the current end-of-file, moved is true, and the caller is
// responsible for copying the existing curLength bytes into it; the
// old region is leaked, same as a delete_dd.
func (a *Allocator) Extend(offset, curLength, extra uint64) (newOffset uint64, moved bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if extra == 0 {
		return offset, false
	}
	if offset+curLength == a.eof {
		a.eof += extra
		a.stats.Allocations++
		a.stats.BytesAlloc += extra
		return offset, false
	}

	newOffset = a.eof
	a.eof += curLength + extra
	a.stats.Allocations++
	a.stats.BytesAlloc += curLength + extra
	a.stats.BytesLeaked += curLength
	return newOffset, true
}

// Free marks [offset, offset+length) as no longer referenced by any
// live DD slot. The range is tracked but never reused.
func (a *Allocator) Free(offset, length uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.freed = append(a.freed, Block{Offset: offset, Length: length})
	a.stats.BytesLeaked += length
}

// EOF returns the current end-of-file address.
func (a *Allocator) EOF() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.eof
}

// SetEOF sets the end-of-file address, used when reopening an existing
// container whose size is already known.
func (a *Allocator) SetEOF(offset uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if offset < a.base {
		offset = a.base
	}
	a.eof = offset
}

// Base returns the lowest address this allocator will ever hand out.
func (a *Allocator) Base() uint64 {
	return a.base
}

// Stats returns a snapshot of allocation/leak counters.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// LeakedBytes returns the total size of space freed by delete_dd that
// this allocator will never hand back out.
func (a *Allocator) LeakedBytes() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats.BytesLeaked
}

// Validate reports an error if the allocator's bookkeeping has gone
// inconsistent — every freed block must lie below the current EOF.
func (a *Allocator) Validate() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, b := range a.freed {
		if b.Offset < a.base || b.Offset+b.Length > a.eof {
			return fmt.Errorf("alloc: freed block [0x%x, size %d) outside [0x%x, 0x%x)",
				b.Offset, b.Length, a.base, a.eof)
		}
	}
	return nil
}
