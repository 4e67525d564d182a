package bijector

import (
	"fmt"

	"github.com/samuelfneumann/godist"
	"gorgonia.org/tensor"
)

// SampleLift adapts a bijector that acts on single events of a base
// distribution to the event space of the Sample combinator, whose
// events prepend a block of i.i.d. sample axes to the base event.
//
// The inner bijector broadcasts its parameters against the batch shape,
// which trails any leading prefix dimensions. Lifted events interpose
// the sample block between batch and base event, so every operation
// rotates the sample block to the very front, delegates, and rotates it
// back. Rotating merely ahead of the batch block would not do: the
// prefix can itself contain batch dimensions that must stay trailing-
// aligned with the inner bijector's parameters.
type SampleLift struct {
	inner Bijector
	shape godist.ShapeSource
}

// NewSampleLift lifts inner over the sample axes described by shape.
func NewSampleLift(inner Bijector, shape godist.ShapeSource) *SampleLift {
	return &SampleLift{inner: inner, shape: shape}
}

func (s *SampleLift) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	return s.apply("forward", x, s.inner.Forward,
		s.inner.ForwardEventNDims(), s.inner.InverseEventNDims())
}

func (s *SampleLift) Inverse(y *tensor.Dense) (*tensor.Dense, error) {
	return s.apply("inverse", y, s.inner.Inverse,
		s.inner.InverseEventNDims(), s.inner.ForwardEventNDims())
}

// apply rotates the sample block to the front, maps the rotated tensor
// through f, and rotates the block back in front of f's event axes.
func (s *SampleLift) apply(op string, t *tensor.Dense,
	f func(*tensor.Dense) (*tensor.Dense, error),
	inMin, outMin int) (*tensor.Dense, error) {

	sample, err := s.shape.SampleShape()
	if err != nil {
		return nil, fmt.Errorf("%v: %w", op, err)
	}
	rankS := sample.Dims()
	if rankS == 0 {
		return f(t)
	}

	r := t.Dims()
	start := r - rankS - inMin
	if start < 0 {
		return nil, fmt.Errorf("%v: input rank %v cannot hold sample "+
			"shape %v and an event of rank %v", op, r, sample, inMin)
	}

	rotated, err := godist.Transpose(t, godist.FrontPermutation(start,
		rankS, r)...)
	if err != nil {
		return nil, fmt.Errorf("%v: %v", op, err)
	}

	mapped, err := f(rotated)
	if err != nil {
		return nil, err
	}

	r = mapped.Dims()
	back := godist.InversePermutation(godist.FrontPermutation(
		r-rankS-outMin, rankS, r))
	out, err := godist.Transpose(mapped, back...)
	if err != nil {
		return nil, fmt.Errorf("%v: %v", op, err)
	}
	return out, nil
}

func (s *SampleLift) ForwardEventShape(sh tensor.Shape) (tensor.Shape,
	error) {

	return liftEventShape("forwardEventShape", sh,
		s.inner.ForwardEventShape, s.inner.ForwardEventNDims())
}

func (s *SampleLift) InverseEventShape(sh tensor.Shape) (tensor.Shape,
	error) {

	return liftEventShape("inverseEventShape", sh,
		s.inner.InverseEventShape, s.inner.InverseEventNDims())
}

// liftEventShape maps only the trailing single-event axes through the
// inner bijector. The sample block and any further prefix sit ahead of
// those axes and pass through unchanged, so the sample shape never
// needs resolving here.
func liftEventShape(op string, sh tensor.Shape,
	f func(tensor.Shape) (tensor.Shape, error),
	min int) (tensor.Shape, error) {

	if len(sh) < min {
		return nil, fmt.Errorf("%v: shape %v cannot hold an event of "+
			"rank %v", op, sh, min)
	}
	mapped, err := f(sh[len(sh)-min:])
	if err != nil {
		return nil, fmt.Errorf("%v: %v", op, err)
	}
	return godist.Concat(sh[:len(sh)-min], mapped), nil
}

func (s *SampleLift) ForwardLogDetJacobian(x *tensor.Dense,
	eventNDims int) (*tensor.Dense, error) {

	return s.logDet("forwardLogDetJacobian", x, eventNDims,
		s.inner.ForwardLogDetJacobian, s.inner.ForwardEventNDims())
}

func (s *SampleLift) InverseLogDetJacobian(y *tensor.Dense,
	eventNDims int) (*tensor.Dense, error) {

	return s.logDet("inverseLogDetJacobian", y, eventNDims,
		s.inner.InverseLogDetJacobian, s.inner.InverseEventNDims())
}

func (s *SampleLift) logDet(op string, t *tensor.Dense, eventNDims int,
	f func(*tensor.Dense, int) (*tensor.Dense, error),
	min int) (*tensor.Dense, error) {

	sample, err := s.shape.SampleShape()
	if err != nil {
		return nil, fmt.Errorf("%v: %w", op, err)
	}
	rankS := sample.Dims()

	r := t.Dims()
	if err := checkEventNDims(op, r, eventNDims, rankS+min); err != nil {
		return nil, err
	}
	if rankS == 0 {
		return f(t, eventNDims)
	}

	rotated, err := godist.Transpose(t, godist.FrontPermutation(
		r-rankS-min, rankS, r)...)
	if err != nil {
		return nil, fmt.Errorf("%v: %v", op, err)
	}

	// The rotated tensor trails with the extra spanned axes followed by
	// the single-event axes, so the inner bijector sums all of them.
	elem, err := f(rotated, eventNDims-rankS)
	if err != nil {
		return nil, err
	}

	along := make([]int, rankS)
	for i := range along {
		along[i] = i
	}
	out, err := godist.ReduceAdd(elem, along...)
	if err != nil {
		return nil, fmt.Errorf("%v: %v", op, err)
	}
	return out, nil
}

// ForwardEventNDims reports the lifted single-event rank. When the
// sample shape cannot be resolved the inner rank is reported; the next
// operation that resolves the shape surfaces the failure.
func (s *SampleLift) ForwardEventNDims() int {
	sample, err := s.shape.SampleShape()
	if err != nil {
		return s.inner.ForwardEventNDims()
	}
	return sample.Dims() + s.inner.ForwardEventNDims()
}

func (s *SampleLift) InverseEventNDims() int {
	sample, err := s.shape.SampleShape()
	if err != nil {
		return s.inner.InverseEventNDims()
	}
	return sample.Dims() + s.inner.InverseEventNDims()
}
