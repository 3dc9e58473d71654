package access

import (
	"errors"
	"sync"
)

// ErrTooMany is returned when every slot in a Table is in use
// (spec.md §4.C acquire_slot, §7 TooMany).
var ErrTooMany = errors.New("access: access-record table exhausted")

// AID is an opaque access identifier: a slot index biased by a cookie
// that changes every time the slot is reused, so a caller holding a
// released AID can never observe another caller's record.
type AID uint32

const indexBits = 16
const indexMask = (uint32(1) << indexBits) - 1

func newAID(index int, cookie uint32) AID {
	return AID(uint32(index) | (cookie << indexBits))
}

func (a AID) index() int      { return int(uint32(a) & indexMask) }
func (a AID) cookie() uint32  { return uint32(a) >> indexBits }

type cell[T any] struct {
	used   bool
	cookie uint32
	value  T
}

// Table is a fixed-capacity pool of access records of type T.
type Table[T any] struct {
	mu    sync.Mutex
	cells []cell[T]
	next  uint32
}

// New returns a Table with room for capacity concurrently open
// records.
func New[T any](capacity int) *Table[T] {
	return &Table[T]{cells: make([]cell[T], capacity)}
}

// Acquire finds the first unused slot, installs value, and returns its
// AID, or ErrTooMany if every slot is occupied (spec.md §4.C
// acquire_slot).
func (t *Table[T]) Acquire(value T) (AID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.cells {
		if !t.cells[i].used {
			// The cookie is kept to the bits an AID can carry above
			// the index, so the stored and encoded cookies always match.
			t.next = (t.next + 1) & (^uint32(0) >> indexBits)
			t.cells[i] = cell[T]{used: true, cookie: t.next, value: value}
			return newAID(i, t.next), nil
		}
	}
	return 0, ErrTooMany
}

// Get returns the record behind aid, or ok=false if aid is out of
// range, released, or stale (its slot was reused since aid was
// issued).
func (t *Table[T]) Get(aid AID) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var zero T
	idx := aid.index()
	if idx < 0 || idx >= len(t.cells) {
		return zero, false
	}
	c := &t.cells[idx]
	if !c.used || c.cookie != aid.cookie() {
		return zero, false
	}
	return c.value, true
}

// Update replaces the record behind aid in place, returning false if
// aid is no longer valid.
func (t *Table[T]) Update(aid AID, value T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := aid.index()
	if idx < 0 || idx >= len(t.cells) {
		return false
	}
	c := &t.cells[idx]
	if !c.used || c.cookie != aid.cookie() {
		return false
	}
	c.value = value
	return true
}

// Release clears the used bit for aid's slot, freeing it for reuse
// with a fresh cookie (spec.md §4.C release_slot). Releasing an
// already-released or unknown AID reports false — callers surface
// this as the Args error spec.md §8 requires for double-endaccess.
func (t *Table[T]) Release(aid AID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := aid.index()
	if idx < 0 || idx >= len(t.cells) {
		return false
	}
	c := &t.cells[idx]
	if !c.used || c.cookie != aid.cookie() {
		return false
	}
	var zero T
	c.used = false
	c.value = zero
	return true
}

// Len returns the number of slots currently in use.
func (t *Table[T]) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	n := 0
	for _, c := range t.cells {
		if c.used {
			n++
		}
	}
	return n
}
