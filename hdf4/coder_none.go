package hdf4

// noneCoder passes bytes through unchanged (spec.md §4.E.3 "NONE").
// It carries no parameters and so contributes no trailer bytes.
type noneCoder struct{}

func (noneCoder) variant() CoderVariant        { return CoderNone }
func (noneCoder) trailerSize() int             { return 0 }
func (noneCoder) encodeTrailer(buf []byte)     {}
func (noneCoder) encode(plain []byte) []byte   { return append([]byte(nil), plain...) }
func (noneCoder) decode(coded []byte) ([]byte, error) {
	return append([]byte(nil), coded...), nil
}
