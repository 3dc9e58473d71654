// Package ddindex implements the file store's in-memory hash index: the
// separate-chaining table mapping (tag, ref) to the (DD block, slot)
// that holds it (spec.md §3 "Invariants", §4.B "Hash index").
//
// The index is a faithful mirror of every non-free DD slot in a
// container: every write to a slot is paired with an Insert, every
// delete_dd with a Remove, and Rehash rebuilds the table wholesale
// after the DD chain is reloaded (e.g. on Open). Lookups, inserts, and
// removes are all O(1) expected, matching spec.md §4.B.
package ddindex
