package bijector

import (
	"fmt"

	"gorgonia.org/tensor"
)

// IndependentLift adapts a bijector acting on single base events to the
// event space of the Independent combinator, which absorbs the trailing
// extra batch axes of its base into the event.
//
// The values themselves need no rearranging: the absorbed axes already
// sit directly ahead of the base event. Only the single-event rank
// grows, which shifts where the log-det-Jacobian sum starts. The
// Jacobian terms keep the inner bijector's broadcasting against those
// absorbed axes rather than materializing them first.
type IndependentLift struct {
	inner Bijector
	extra int
}

// NewIndependentLift lifts inner over extra absorbed trailing batch
// axes.
func NewIndependentLift(inner Bijector, extra int) (*IndependentLift,
	error) {

	if extra < 0 {
		return nil, fmt.Errorf("newIndependentLift: expected a "+
			"non-negative number of absorbed axes but got %v", extra)
	}
	return &IndependentLift{inner: inner, extra: extra}, nil
}

func (l *IndependentLift) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	return l.inner.Forward(x)
}

func (l *IndependentLift) Inverse(y *tensor.Dense) (*tensor.Dense, error) {
	return l.inner.Inverse(y)
}

func (l *IndependentLift) ForwardEventShape(s tensor.Shape) (tensor.Shape,
	error) {

	return liftEventShape("forwardEventShape", s,
		l.inner.ForwardEventShape, l.inner.ForwardEventNDims())
}

func (l *IndependentLift) InverseEventShape(s tensor.Shape) (tensor.Shape,
	error) {

	return liftEventShape("inverseEventShape", s,
		l.inner.InverseEventShape, l.inner.InverseEventNDims())
}

func (l *IndependentLift) ForwardLogDetJacobian(x *tensor.Dense,
	eventNDims int) (*tensor.Dense, error) {

	if err := checkEventNDims("forwardLogDetJacobian", x.Dims(),
		eventNDims, l.ForwardEventNDims()); err != nil {
		return nil, err
	}
	return l.inner.ForwardLogDetJacobian(x, eventNDims)
}

func (l *IndependentLift) InverseLogDetJacobian(y *tensor.Dense,
	eventNDims int) (*tensor.Dense, error) {

	if err := checkEventNDims("inverseLogDetJacobian", y.Dims(),
		eventNDims, l.InverseEventNDims()); err != nil {
		return nil, err
	}
	return l.inner.InverseLogDetJacobian(y, eventNDims)
}

func (l *IndependentLift) ForwardEventNDims() int {
	return l.inner.ForwardEventNDims() + l.extra
}

func (l *IndependentLift) InverseEventNDims() int {
	return l.inner.InverseEventNDims() + l.extra
}
