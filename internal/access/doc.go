// Package access implements the process-wide access-record table
// (spec.md §4.C): a fixed-capacity pool of slots, each returned to a
// caller as an opaque AID biased by a per-slot cookie so a stale AID
// can never alias a slot reused for something else.
//
// It also implements the dense fd↔AID table spec.md §4.C names for
// "the tracing collaborator" — mapping externally observed,
// small-integer file descriptors to the AIDs opened against them.
// Nothing in package hdf4 consults this table for correctness; it
// exists purely so an outer instrumentation layer can correlate its
// own fd-keyed events with AIDs, the way the out-of-scope I/O tracing
// collaborator named in spec.md §1 would.
package access
