package bijector

import (
	"fmt"

	"github.com/samuelfneumann/godist"
	"gorgonia.org/tensor"
)

// Exp maps unconstrained values to the positive reals elementwise.
type Exp struct{}

// NewExp returns a new Exp.
func NewExp() *Exp { return &Exp{} }

func (e *Exp) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	out, err := godist.Exp(x)
	if err != nil {
		return nil, fmt.Errorf("forward: %v", err)
	}
	return out, nil
}

func (e *Exp) Inverse(y *tensor.Dense) (*tensor.Dense, error) {
	out, err := godist.Log(y)
	if err != nil {
		return nil, fmt.Errorf("inverse: %v", err)
	}
	return out, nil
}

func (e *Exp) ForwardEventShape(s tensor.Shape) (tensor.Shape, error) {
	return s.Clone(), nil
}

func (e *Exp) InverseEventShape(s tensor.Shape) (tensor.Shape, error) {
	return s.Clone(), nil
}

// ForwardLogDetJacobian is x itself, summed over the spanned axes.
func (e *Exp) ForwardLogDetJacobian(x *tensor.Dense,
	eventNDims int) (*tensor.Dense, error) {

	if err := checkEventNDims("forwardLogDetJacobian", x.Dims(),
		eventNDims, 0); err != nil {
		return nil, err
	}
	return reduceLogDet(x, x.Shape(), eventNDims)
}

func (e *Exp) InverseLogDetJacobian(y *tensor.Dense,
	eventNDims int) (*tensor.Dense, error) {

	if err := checkEventNDims("inverseLogDetJacobian", y.Dims(),
		eventNDims, 0); err != nil {
		return nil, err
	}

	elem, err := godist.Log(y)
	if err != nil {
		return nil, fmt.Errorf("inverseLogDetJacobian: %v", err)
	}
	elem, err = godist.Neg(elem)
	if err != nil {
		return nil, fmt.Errorf("inverseLogDetJacobian: %v", err)
	}
	return reduceLogDet(elem, y.Shape(), eventNDims)
}

func (e *Exp) ForwardEventNDims() int { return 0 }

func (e *Exp) InverseEventNDims() int { return 0 }
