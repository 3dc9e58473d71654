// Package alloc implements the file store's disk-space allocator: the
// append-only extension of a container's end-of-file address that backs
// HDF4's get_disk_block operation (spec.md §4.B).
//
// # Allocator
//
// [Allocator] hands out non-overlapping byte ranges at the current
// end-of-file address and advances it. It never reuses space freed by
// delete_dd — that is a documented limitation of the format, not a bug
// in this package (spec.md §4.B, §9) — but it does track freed ranges
// so a future space-reuse policy has somewhere to start from.
//
// # Usage
//
//	a := alloc.New(4) // DD blocks start at offset 4, right after the magic
//	offset := a.GetDiskBlock(1024, false)
package alloc
