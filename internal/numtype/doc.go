// Package numtype implements the number-type table the NBIT coder
// consults to resolve nt_size from a header-carried type code, and the
// sign-extend / fill helpers it uses to expand packed bits back out to
// a full-width value (spec.md §3 "Compressed-element state", §4.E.3
// "NBIT").
package numtype
