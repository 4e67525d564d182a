// Package bijector provides invertible event-space transforms and the
// shape lifters that adapt them to the Sample and Independent
// distribution combinators.
package bijector

import (
	"fmt"

	"github.com/samuelfneumann/godist"
	"gorgonia.org/tensor"
)

// Bijector is an invertible map between an unconstrained space and a
// distribution's support, together with its log-Jacobian-determinant
// terms.
//
// ForwardEventNDims and InverseEventNDims report the rank of a single
// domain and codomain event respectively. The log-det-Jacobian methods
// take an eventNDims argument at least that large; any additional
// spanned axes are summed over, broadcasting the per-event Jacobian
// term as needed.
type Bijector interface {
	Forward(x *tensor.Dense) (*tensor.Dense, error)
	Inverse(y *tensor.Dense) (*tensor.Dense, error)

	// ForwardEventShape maps a domain shape to the corresponding
	// codomain shape, passing any leading dimensions through unchanged.
	// InverseEventShape is its inverse.
	ForwardEventShape(s tensor.Shape) (tensor.Shape, error)
	InverseEventShape(s tensor.Shape) (tensor.Shape, error)

	ForwardLogDetJacobian(x *tensor.Dense, eventNDims int) (*tensor.Dense,
		error)
	InverseLogDetJacobian(y *tensor.Dense, eventNDims int) (*tensor.Dense,
		error)

	ForwardEventNDims() int
	InverseEventNDims() int
}

// reduceLogDet turns a per-event log-det-Jacobian term into the value
// for eventNDims spanned axes: elem is broadcast against per, the shape
// of the input with its trailing single-event axes stripped, and summed
// over the trailing extra axes that eventNDims spans beyond a single
// event.
func reduceLogDet(elem *tensor.Dense, per tensor.Shape,
	extra int) (*tensor.Dense, error) {

	if extra < 0 || extra > len(per) {
		return nil, fmt.Errorf("event ndims spans %v axes beyond a "+
			"single event but %v are available", extra, len(per))
	}

	target, err := godist.BroadcastShapes(elem.Shape(), per)
	if err != nil {
		return nil, err
	}
	if !target.Eq(per) {
		return nil, fmt.Errorf("%w: jacobian term %v vs input %v",
			godist.ErrIncompatibleShapes, elem.Shape(), per)
	}

	full, err := godist.BroadcastTo(elem, per)
	if err != nil {
		return nil, err
	}

	along := make([]int, extra)
	for i := range along {
		along[i] = len(per) - extra + i
	}
	return godist.ReduceAdd(full, along...)
}

// checkEventNDims validates an eventNDims argument against the rank of
// the input and the bijector's single-event rank.
func checkEventNDims(op string, rank, eventNDims, min int) error {
	if eventNDims < min {
		return fmt.Errorf("%v: event ndims %v below single event rank %v",
			op, eventNDims, min)
	}
	if eventNDims > rank {
		return fmt.Errorf("%v: event ndims %v exceeds input rank %v",
			op, eventNDims, rank)
	}
	return nil
}
