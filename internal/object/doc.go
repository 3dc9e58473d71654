// Package object implements the on-disk Data Descriptor (DD) block: the
// fixed-size record chained through a container's DD chain, each
// holding a header plus a run of 12-byte DD slots (spec.md §3 "DD
// block", §6 "File format").
package object
