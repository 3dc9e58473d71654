package message

// SpecialCode identifies the kind of special descriptor a DD with the
// SPECIAL tag bit set points at (spec.md §3 "DD").
type SpecialCode uint16

const (
	SpecialLinked SpecialCode = 1 // linked-block element (indirection only, spec.md §1)
	SpecialExt    SpecialCode = 2 // external-file element (indirection only, spec.md §1)
	SpecialComp   SpecialCode = 3 // compressed element (spec.md §4.E)
)

// CompressedDataTag is the tag of the hidden backing DD holding a
// SPECIAL_COMP element's encoded bytes, keyed by comp_ref rather than
// the element's own ref (spec.md §4.D.2).
const CompressedDataTag uint16 = 106

// CompStartBlock is the initial backing-DD size a fresh compressed
// element is created with before any bytes are written (spec.md
// §4.E.4 step 6).
const CompStartBlock = 1

func (c SpecialCode) String() string {
	switch c {
	case SpecialLinked:
		return "LINKED"
	case SpecialExt:
		return "EXT"
	case SpecialComp:
		return "COMP"
	default:
		return "UNKNOWN"
	}
}

// ModelVariant identifies the modeling layer of a compressed element
// (spec.md §4.E.2). STDIO is the only variant the core implements: the
// identity pass-through.
type ModelVariant uint16

const ModelSTDIO ModelVariant = 0

func (m ModelVariant) String() string {
	if m == ModelSTDIO {
		return "STDIO"
	}
	return "UNKNOWN"
}

// CoderVariant identifies the coding layer of a compressed element
// (spec.md §3 "Compressed-element state", §4.E.3).
type CoderVariant uint16

const (
	CoderNone    CoderVariant = 0
	CoderRLE     CoderVariant = 1
	CoderSkpHuff CoderVariant = 2
	CoderNBit    CoderVariant = 3
)

func (c CoderVariant) String() string {
	switch c {
	case CoderNone:
		return "NONE"
	case CoderRLE:
		return "RLE"
	case CoderSkpHuff:
		return "SKPHUFF"
	case CoderNBit:
		return "NBIT"
	default:
		return "UNKNOWN"
	}
}

// KnownModel reports whether code names an implemented model variant.
func KnownModel(code ModelVariant) bool {
	return code == ModelSTDIO
}

// KnownCoder reports whether code names an implemented coder variant.
func KnownCoder(code CoderVariant) bool {
	switch code {
	case CoderNone, CoderRLE, CoderSkpHuff, CoderNBit:
		return true
	default:
		return false
	}
}

// NBitParams are the header-carried parameters for the NBIT coder
// (spec.md §3 "Compressed-element state", §4.E.1).
type NBitParams struct {
	NumType   int32 // number-type code, resolved through internal/numtype
	SignExt   bool
	FillOne   bool
	StartBit  int32
	BitLength int32
}

// SkpHuffParams are the header-carried parameters for the SKPHUFF
// coder (spec.md §4.E.1).
type SkpHuffParams struct {
	SkipSize uint32
}
