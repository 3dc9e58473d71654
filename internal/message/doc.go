// Package message implements the special-element descriptor formats
// that a DD's SPECIAL tag points at (spec.md §3 "DD", §6
// "Special-element descriptors"), and the fixed 14-byte header that
// begins every SPECIAL_COMP descriptor (spec.md §4.E.1).
//
// Model and coder variants are identified on disk by a small u16 code
// (ModelVariant, CoderVariant) and resolved by package hdf4 to a
// concrete implementation, one case arm per known code.
package message
