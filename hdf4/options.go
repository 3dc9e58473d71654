package hdf4

import "github.com/nkoval/go-hdf4/internal/message"

// ModelVariant identifies the modeling layer of a compressed element.
type ModelVariant = message.ModelVariant

// CoderVariant identifies the coding layer of a compressed element.
type CoderVariant = message.CoderVariant

// Model variants.
const (
	ModelSTDIO = message.ModelSTDIO
)

// Coder variants.
const (
	CoderNone    = message.CoderNone
	CoderRLE     = message.CoderRLE
	CoderSkpHuff = message.CoderSkpHuff
	CoderNBit    = message.CoderNBit
)

// NBitParams are the header-carried parameters for the NBIT coder: nt
// is the number-type code (see the numtype package for known values),
// signExt/fillOne select how bits dropped on write are restored on
// read, and startBit/bitLength select the packed field within each
// nt-sized value.
type NBitParams = message.NBitParams

// SkpHuffParams are the header-carried parameters for the SKPHUFF
// coder: skipSize is the lane count the byte stream is interleaved
// into before per-lane Huffman coding.
type SkpHuffParams = message.SkpHuffParams

// ModelParams is the parameter set for the modeling layer. STDIO, the
// only implemented model variant, is the identity transform and takes
// none, so the struct is empty. CreateCompressed takes no ModelParams
// argument, so no model parameters can be passed to it.
type ModelParams struct{}

// CoderParams carries variant-specific parameters for the coding layer
// passed to CreateCompressed. Exactly one field is read, selected by
// the paired CoderVariant.
type CoderParams struct {
	NBit    NBitParams
	SkpHuff SkpHuffParams
}
