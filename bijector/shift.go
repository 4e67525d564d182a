package bijector

import (
	"fmt"

	"github.com/samuelfneumann/godist"
	"gorgonia.org/tensor"
)

// Shift adds a fixed offset elementwise. Volume preserving, so both
// Jacobian terms are zero.
type Shift struct {
	shift *tensor.Dense
}

// NewShift returns a new Shift.
func NewShift(shift *tensor.Dense) *Shift {
	return &Shift{shift: shift}
}

func (s *Shift) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	out, err := godist.Add(x, s.shift)
	if err != nil {
		return nil, fmt.Errorf("forward: %v", err)
	}
	return out, nil
}

func (s *Shift) Inverse(y *tensor.Dense) (*tensor.Dense, error) {
	out, err := godist.Sub(y, s.shift)
	if err != nil {
		return nil, fmt.Errorf("inverse: %v", err)
	}
	return out, nil
}

func (s *Shift) ForwardEventShape(sh tensor.Shape) (tensor.Shape, error) {
	return sh.Clone(), nil
}

func (s *Shift) InverseEventShape(sh tensor.Shape) (tensor.Shape, error) {
	return sh.Clone(), nil
}

func (s *Shift) ForwardLogDetJacobian(x *tensor.Dense,
	eventNDims int) (*tensor.Dense, error) {

	if err := checkEventNDims("forwardLogDetJacobian", x.Dims(),
		eventNDims, 0); err != nil {
		return nil, err
	}
	shape := x.Shape()
	return godist.Full(0, x.Dtype(), shape[:len(shape)-eventNDims]...)
}

func (s *Shift) InverseLogDetJacobian(y *tensor.Dense,
	eventNDims int) (*tensor.Dense, error) {

	return s.ForwardLogDetJacobian(y, eventNDims)
}

func (s *Shift) ForwardEventNDims() int { return 0 }

func (s *Shift) InverseEventNDims() int { return 0 }
