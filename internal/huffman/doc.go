// Package huffman implements a single-pass adaptive Huffman code over
// byte symbols, the per-lane codec the SKPHUFF coder builds
// (spec.md §4.E.3: "Builds one adaptive Huffman code per lane").
//
// Encoder and decoder both start from a uniform frequency prior and
// rebuild the code after every symbol from the running histogram; as
// long as both sides observe the same symbol sequence in the same
// order, they rebuild identically and stay in sync without any side
// channel carrying the tree. This trades the complexity of an
// in-place incremental tree update (Vitter/FGK-style) for a full
// rebuild per symbol, which is simple to get right and fast enough for
// the byte-lane alphabets SKPHUFF encodes.
package huffman
