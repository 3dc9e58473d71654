package ddindex

// Key identifies a data object by its tag/ref pair.
type Key struct {
	Tag uint16
	Ref uint16
}

// Loc locates a DD slot on disk: which DD block and which slot within it.
type Loc struct {
	Block int
	Slot  int
}

const initialBuckets = 64

// RefWildcard matches the first live DD for a tag, regardless of ref
// (spec.md §4.B "Wildcard ref 0xFFFF").
const RefWildcard = uint16(0xFFFF)

type entry struct {
	key Key
	loc Loc
}

// Index is a separate-chaining hash table from (tag, ref) to (block, slot).
type Index struct {
	buckets [][]entry
	count   int
}

// New returns an empty index.
func New() *Index {
	return &Index{buckets: make([][]entry, initialBuckets)}
}

// mix is the small mixing function spec.md §4.B calls for: it only
// needs to spread tag/ref bit patterns across buckets, not resist
// adversarial input.
func mix(tag, ref uint16) uint32 {
	h := uint32(tag)*2654435761 + uint32(ref)*40503
	h ^= h >> 13
	return h
}

func (ix *Index) bucketFor(tag, ref uint16) int {
	return int(mix(tag, ref)) % len(ix.buckets)
}

// Insert records that (tag, ref) lives at loc, replacing any prior
// mapping for the same key. Every DD write calls this.
func (ix *Index) Insert(tag, ref uint16, loc Loc) {
	if ix.count >= len(ix.buckets)*2 {
		ix.grow()
	}
	b := ix.bucketFor(tag, ref)
	key := Key{tag, ref}
	for i, e := range ix.buckets[b] {
		if e.key == key {
			ix.buckets[b][i].loc = loc
			return
		}
	}
	ix.buckets[b] = append(ix.buckets[b], entry{key: key, loc: loc})
	ix.count++
}

// Remove drops the mapping for (tag, ref), called by delete_dd.
func (ix *Index) Remove(tag, ref uint16) {
	b := ix.bucketFor(tag, ref)
	bucket := ix.buckets[b]
	for i, e := range bucket {
		if e.key.Tag == tag && e.key.Ref == ref {
			ix.buckets[b] = append(bucket[:i], bucket[i+1:]...)
			ix.count--
			return
		}
	}
}

// Lookup resolves (tag, ref) to its DD location. A ref of RefWildcard
// matches the first live DD found for tag when scanning buckets in
// bucket-index order and each bucket in insertion order; that is not
// necessarily the earliest-inserted or lowest ref (spec.md §4.B).
func (ix *Index) Lookup(tag, ref uint16) (Loc, bool) {
	if ref != RefWildcard {
		b := ix.bucketFor(tag, ref)
		for _, e := range ix.buckets[b] {
			if e.key.Tag == tag && e.key.Ref == ref {
				return e.loc, true
			}
		}
		return Loc{}, false
	}
	for _, bucket := range ix.buckets {
		for _, e := range bucket {
			if e.key.Tag == tag {
				return e.loc, true
			}
		}
	}
	return Loc{}, false
}

// Len returns the number of live (tag, ref) mappings.
func (ix *Index) Len() int {
	return ix.count
}

// Rehash discards the current table and reinserts every (key, loc) pair
// yielded by walk. Callers use this after reloading the DD chain from
// disk (spec.md §4.B "rehash on block reload").
func (ix *Index) Rehash(walk func(yield func(tag, ref uint16, loc Loc))) {
	ix.buckets = make([][]entry, initialBuckets)
	ix.count = 0
	walk(func(tag, ref uint16, loc Loc) {
		ix.Insert(tag, ref, loc)
	})
}

func (ix *Index) grow() {
	old := ix.buckets
	ix.buckets = make([][]entry, len(old)*2)
	ix.count = 0
	for _, bucket := range old {
		for _, e := range bucket {
			ix.Insert(e.key.Tag, e.key.Ref, e.loc)
		}
	}
}
