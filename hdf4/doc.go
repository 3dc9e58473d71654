// Package hdf4 implements the core of a random-access, self-describing
// container file format in which typed data objects are located by
// (tag, ref) identifiers recorded in a chain of Data Descriptor blocks,
// and in which selected objects are transparently compressed through a
// pluggable modeling layer over a pluggable coding layer.
//
// A File owns the on-disk DD-block chain, the free-space allocator, and
// an in-memory hash index from (tag, ref) to DD location. Operations
// against an open element go through an AID (access identifier)
// returned by NewElement, CreateCompressed, StartRead, or StartWrite;
// every AID must eventually be released with EndAccess.
//
// The high-level scientific APIs this core supports — multi-dimensional
// datasets, attributes, groups — are out of scope; they would be built
// as a separate layer on top of the operations exposed here.
package hdf4
