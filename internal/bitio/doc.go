// Package bitio implements the bit-level I/O buffer the coding layer
// builds on (spec.md §4.E.3: "All variants manipulate an internal
// bit-I/O buffer"). [Writer] accumulates bits MSB-first into a growable
// byte buffer; [Reader] consumes them back in the same order. The
// coders in package hdf4 flush a Writer's bytes to the backing DD
// through the file store's write_at, and fill a Reader from read_at —
// this package itself never touches disk.
package bitio
