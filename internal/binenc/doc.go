// Package binenc implements the portable, alignment-independent
// big-endian encoding primitives the on-disk HDF4 format is built on:
// fixed-width i16/u16/i32/u32 integers and IEEE-754 f32/f64 floats.
//
// Every routine advances a cursor by returning the unconsumed remainder
// of its input slice, mirroring the pointer-advancing C helpers in the
// original HCcreate family. Routines never fault on their own account;
// callers own buffer sizing, exactly as spec'd.
package binenc
