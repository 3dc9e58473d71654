package hdf4

import (
	"fmt"

	"github.com/nkoval/go-hdf4/internal/message"
)

// model is the modeling layer of the compressed-element pipeline: a
// transform applied to the logical bytes before they reach the coder
// layer, and undone after the coder decodes them back.
type model interface {
	variant() ModelVariant
	toCoder(logical []byte) []byte
	fromCoder(coded []byte) []byte
}

// stdioModel is the identity transform, the only model variant this
// core implements (spec.md §4.E.2 "STDIO").
type stdioModel struct{}

func (stdioModel) variant() ModelVariant { return ModelSTDIO }
func (stdioModel) toCoder(logical []byte) []byte { return logical }
func (stdioModel) fromCoder(coded []byte) []byte { return coded }

func newModel(v ModelVariant) (model, error) {
	if !message.KnownModel(v) {
		return nil, newError(KindBadModel, "model", fmt.Errorf("unrecognized model variant %d", uint16(v)))
	}
	return stdioModel{}, nil
}
