package numtype

import "fmt"

// Code is a number-type identifier, the "nt" field of an NBIT header
// (spec.md §3).
type Code int32

// The number types NBIT's nt field may name. Values follow the layout
// of the classic HDF numeric-type table: 8/16/32-bit signed and
// unsigned integers plus IEEE float32/float64.
const (
	Int8    Code = 20
	UInt8   Code = 21
	Int16   Code = 22
	UInt16  Code = 23
	Int32   Code = 24
	UInt32  Code = 25
	Float32 Code = 5
	Float64 Code = 6
)

var sizes = map[Code]int{
	Int8: 1, UInt8: 1,
	Int16: 2, UInt16: 2,
	Int32: 4, UInt32: 4,
	Float32: 4, Float64: 8,
}

var signed = map[Code]bool{
	Int8: true, Int16: true, Int32: true,
	UInt8: false, UInt16: false, UInt32: false,
}

// ErrUnknownType is the BadNumType condition spec.md §4.E.3 requires:
// "failure to resolve it fails header parse with BadNumType."
var ErrUnknownType = fmt.Errorf("numtype: unresolvable number-type code")

// Size returns nt_size, the byte width of a value of type code.
func Size(code Code) (int, error) {
	n, ok := sizes[code]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownType, code)
	}
	return n, nil
}

// Signed reports whether code names a signed integer type. Float types
// report false; NBIT's sign-extension only applies to integers.
func Signed(code Code) bool {
	return signed[code]
}
