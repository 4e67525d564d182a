package distribution

import (
	"fmt"

	"github.com/samuelfneumann/godist"
	"github.com/samuelfneumann/godist/bijector"
	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"
)

// Sample repeats a base distribution over a block of i.i.d. sample
// axes, absorbing those axes into the event. The batch shape is
// unchanged; the event shape prepends the sample shape to the base
// event shape, so tensors produced and consumed by the combinator are
// laid out as
//
//	leading ++ batch ++ sample ++ event
//
// The sample shape may come from a mutable source, in which case it is
// re-resolved on every operation and validation failures surface as a
// godist.DeferredError from the operation that hits them.
type Sample struct {
	base  Distribution
	shape godist.ShapeSource
	kahan bool
}

// NewSample repeats base over the sample axes dims. The dimensions are
// validated here.
func NewSample(base Distribution, dims ...int) (*Sample, error) {
	shape, err := godist.SampleShapeOf(dims...)
	if err != nil {
		return nil, fmt.Errorf("newSample: %w", err)
	}
	return &Sample{base: base, shape: godist.Static(shape)}, nil
}

// NewSampleFrom repeats base over the sample axes described by shape.
// Unlike NewSample, nothing is validated here: mutable sources are
// checked at each resolution instead.
func NewSampleFrom(base Distribution, shape godist.ShapeSource) *Sample {
	return &Sample{base: base, shape: shape}
}

// SetUseKahanSum selects compensated summation for the log-density
// reduction over the sample axes. Off by default.
func (s *Sample) SetUseKahanSum(use bool) { s.kahan = use }

// UsesKahanSum reports whether the log-density reduction compensates.
func (s *Sample) UsesKahanSum() bool { return s.kahan }

// Base returns the repeated distribution.
func (s *Sample) Base() Distribution { return s.base }

func (s *Sample) Dtype() tensor.Dtype { return s.base.Dtype() }

func (s *Sample) BatchShape() tensor.Shape { return s.base.BatchShape() }

func (s *Sample) EventShape() (tensor.Shape, error) {
	sample, _, event, err := s.resolve()
	if err != nil {
		return nil, fmt.Errorf("eventShape: %w", err)
	}
	return godist.Concat(sample, event), nil
}

// resolve snapshots the sample, batch, and event shapes for one logical
// operation.
func (s *Sample) resolve() (sample, batch, event tensor.Shape, err error) {
	sample, err = s.shape.SampleShape()
	if err != nil {
		return nil, nil, nil, err
	}
	event, err = s.base.EventShape()
	if err != nil {
		return nil, nil, nil, err
	}
	return sample, s.base.BatchShape(), event, nil
}

// Sample draws from the base with the sample axes appended to the
// leading dimensions, then rotates them inward past the batch block so
// the result is laid out leading ++ batch ++ sample ++ event.
func (s *Sample) Sample(leading tensor.Shape,
	src rand.Source) (*tensor.Dense, error) {

	sample, batch, event, err := s.resolve()
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}

	draws, err := s.base.Sample(godist.Concat(leading, sample), src)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}

	perm := godist.SwapBlocks(len(leading), len(sample), len(batch),
		len(event))
	out, err := godist.Transpose(draws, perm...)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}
	return out, nil
}

// LogProb rotates the sample block of x outward past the batch block,
// delegates to the base, and sums the per-replicate log densities over
// the sample axes. The sum runs in the row-major order the replicates
// were generated in, optionally with compensation.
func (s *Sample) LogProb(x *tensor.Dense) (*tensor.Dense, error) {
	lp, lead, rankS, err := s.perReplicate(x, s.base.LogProb)
	if err != nil {
		return nil, fmt.Errorf("logProb: %w", err)
	}

	axes := make([]int, rankS)
	for i := range axes {
		axes[i] = lead + i
	}
	var out *tensor.Dense
	if s.kahan {
		out, err = godist.ReduceAddKahan(lp, axes...)
	} else {
		out, err = godist.ReduceAdd(lp, axes...)
	}
	if err != nil {
		return nil, fmt.Errorf("logProb: could not combine sample dims: "+
			"%v", err)
	}
	return out, nil
}

func (s *Sample) Prob(x *tensor.Dense) (*tensor.Dense, error) {
	lp, err := s.LogProb(x)
	if err != nil {
		return nil, fmt.Errorf("prob: %w", err)
	}
	out, err := godist.Exp(lp)
	if err != nil {
		return nil, fmt.Errorf("prob: %v", err)
	}
	return out, nil
}

// Cdf is the product of the per-replicate cdfs: the replicates are
// independent, so the joint event {X <= x} factorizes.
func (s *Sample) Cdf(x *tensor.Dense) (*tensor.Dense, error) {
	c, lead, rankS, err := s.perReplicate(x, s.base.Cdf)
	if err != nil {
		return nil, fmt.Errorf("cdf: %w", err)
	}

	axes := make([]int, rankS)
	for i := range axes {
		axes[i] = lead + i
	}
	out, err := godist.ReduceMul(c, axes...)
	if err != nil {
		return nil, fmt.Errorf("cdf: could not combine sample dims: %v",
			err)
	}
	return out, nil
}

// perReplicate broadcasts x against the combinator's full shape,
// rotates the sample block ahead of the batch block so the base sees it
// as extra leading observation axes, and applies f. The result is
// shaped lead ++ sample ++ batch with the sample block starting at axis
// lead.
func (s *Sample) perReplicate(x *tensor.Dense,
	f func(*tensor.Dense) (*tensor.Dense, error)) (*tensor.Dense, int, int,
	error) {

	sample, batch, event, err := s.resolve()
	if err != nil {
		return nil, 0, 0, err
	}

	full := godist.Concat(batch, godist.Concat(sample, event))
	target, err := godist.BroadcastShapes(x.Shape(), full)
	if err != nil {
		return nil, 0, 0, err
	}
	bx, err := godist.BroadcastTo(x, target)
	if err != nil {
		return nil, 0, 0, err
	}

	lead := len(target) - len(full)
	perm := godist.SwapBlocks(lead, len(batch), len(sample), len(event))
	px, err := godist.Transpose(bx, perm...)
	if err != nil {
		return nil, 0, 0, err
	}

	out, err := f(px)
	if err != nil {
		return nil, 0, 0, err
	}
	return out, lead, len(sample), nil
}

func (s *Sample) Mean() (*tensor.Dense, error) {
	m, err := s.base.Mean()
	if err != nil {
		return nil, fmt.Errorf("mean: %w", err)
	}
	return s.tile(m)
}

func (s *Sample) StdDev() (*tensor.Dense, error) {
	sd, err := s.base.StdDev()
	if err != nil {
		return nil, fmt.Errorf("stdDev: %w", err)
	}
	return s.tile(sd)
}

func (s *Sample) Variance() (*tensor.Dense, error) {
	v, err := s.base.Variance()
	if err != nil {
		return nil, fmt.Errorf("variance: %w", err)
	}
	return s.tile(v)
}

func (s *Sample) Mode() (*tensor.Dense, error) {
	m, err := s.base.Mode()
	if err != nil {
		return nil, fmt.Errorf("mode: %w", err)
	}
	return s.tile(m)
}

// Entropy is the base entropy scaled by the number of replicates.
func (s *Sample) Entropy() (*tensor.Dense, error) {
	h, err := s.base.Entropy()
	if err != nil {
		return nil, fmt.Errorf("entropy: %w", err)
	}
	sample, err := s.shape.SampleShape()
	if err != nil {
		return nil, fmt.Errorf("entropy: %w", err)
	}
	out, err := godist.Scale(h, float64(numElements(sample)))
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}
	return out, nil
}

// tile broadcasts a batch ++ event statistic of the base over the
// sample axes, yielding batch ++ sample ++ event.
func (s *Sample) tile(stat *tensor.Dense) (*tensor.Dense, error) {
	sample, batch, event, err := s.resolve()
	if err != nil {
		return nil, err
	}

	unit := make(tensor.Shape, len(sample))
	for i := range unit {
		unit[i] = 1
	}
	mid, err := reshaped(stat, godist.Concat(batch,
		godist.Concat(unit, event)))
	if err != nil {
		return nil, err
	}
	return godist.BroadcastTo(mid, godist.Concat(batch,
		godist.Concat(sample, event)))
}

// DefaultEventSpaceBijector lifts the base bijector over the sample
// axes, sharing the shape source so later mutations stay visible.
func (s *Sample) DefaultEventSpaceBijector() bijector.Bijector {
	inner := s.base.DefaultEventSpaceBijector()
	if inner == nil {
		return nil
	}
	return bijector.NewSampleLift(inner, s.shape)
}
