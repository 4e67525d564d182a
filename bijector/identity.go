package bijector

import (
	"fmt"

	"github.com/samuelfneumann/godist"
	"gorgonia.org/tensor"
)

// Identity is the identity transform. It is the default event-space
// bijector of distributions with unconstrained support.
type Identity struct{}

// NewIdentity returns a new Identity.
func NewIdentity() *Identity { return &Identity{} }

func (id *Identity) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	return x, nil
}

func (id *Identity) Inverse(y *tensor.Dense) (*tensor.Dense, error) {
	return y, nil
}

func (id *Identity) ForwardEventShape(s tensor.Shape) (tensor.Shape, error) {
	return s.Clone(), nil
}

func (id *Identity) InverseEventShape(s tensor.Shape) (tensor.Shape, error) {
	return s.Clone(), nil
}

func (id *Identity) ForwardLogDetJacobian(x *tensor.Dense,
	eventNDims int) (*tensor.Dense, error) {

	if err := checkEventNDims("forwardLogDetJacobian", x.Dims(),
		eventNDims, 0); err != nil {
		return nil, err
	}
	return id.zeros(x, eventNDims)
}

func (id *Identity) InverseLogDetJacobian(y *tensor.Dense,
	eventNDims int) (*tensor.Dense, error) {

	if err := checkEventNDims("inverseLogDetJacobian", y.Dims(),
		eventNDims, 0); err != nil {
		return nil, err
	}
	return id.zeros(y, eventNDims)
}

func (id *Identity) ForwardEventNDims() int { return 0 }

func (id *Identity) InverseEventNDims() int { return 0 }

func (id *Identity) zeros(t *tensor.Dense, eventNDims int) (*tensor.Dense,
	error) {

	shape := t.Shape()
	out, err := godist.Full(0, t.Dtype(), shape[:len(shape)-eventNDims]...)
	if err != nil {
		return nil, fmt.Errorf("logDetJacobian: %v", err)
	}
	return out, nil
}
