package distribution

import (
	"fmt"

	"github.com/samuelfneumann/godist"
	"github.com/samuelfneumann/godist/bijector"
	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"
)

// Independent reinterprets the trailing dims batch axes of a base
// distribution as event axes. The reinterpreted axes are reduced out of
// the density methods, so a batch of scalar distributions becomes a
// single distribution over a tensor event.
//
// Event dims are always taken from the right.
type Independent struct {
	base Distribution
	dims int
}

// NewIndependent returns a new Independent absorbing the trailing dims
// batch axes of base.
func NewIndependent(base Distribution, dims int) (*Independent, error) {
	if dims < 0 {
		return nil, fmt.Errorf("newIndependent: expected dims >= 0 but "+
			"got %v", dims)
	}
	if batch := base.BatchShape(); dims > len(batch) {
		return nil, fmt.Errorf("newIndependent: expected dims <= %v "+
			"batch axes but got %v", len(batch), dims)
	}
	return &Independent{base: base, dims: dims}, nil
}

func (i *Independent) Dtype() tensor.Dtype { return i.base.Dtype() }

func (i *Independent) BatchShape() tensor.Shape {
	batch := i.base.BatchShape()
	return batch[:len(batch)-i.dims].Clone()
}

func (i *Independent) EventShape() (tensor.Shape, error) {
	event, err := i.base.EventShape()
	if err != nil {
		return nil, fmt.Errorf("eventShape: %w", err)
	}
	batch := i.base.BatchShape()
	return godist.Concat(batch[len(batch)-i.dims:], event), nil
}

// Sample delegates to the base: absorbing batch axes into the event
// moves no data.
func (i *Independent) Sample(leading tensor.Shape,
	src rand.Source) (*tensor.Dense, error) {

	return i.base.Sample(leading, src)
}

func (i *Independent) LogProb(x *tensor.Dense) (*tensor.Dense, error) {
	lp, err := i.base.LogProb(x)
	if err != nil {
		return nil, fmt.Errorf("logProb: %w", err)
	}
	out, err := godist.ReduceAdd(lp, trailing(lp.Dims(), i.dims)...)
	if err != nil {
		return nil, fmt.Errorf("logProb: could not combine event dims: %v",
			err)
	}
	return out, nil
}

func (i *Independent) Prob(x *tensor.Dense) (*tensor.Dense, error) {
	pr, err := i.base.Prob(x)
	if err != nil {
		return nil, fmt.Errorf("prob: %w", err)
	}
	out, err := godist.ReduceMul(pr, trailing(pr.Dims(), i.dims)...)
	if err != nil {
		return nil, fmt.Errorf("prob: could not combine event dims: %v", err)
	}
	return out, nil
}

func (i *Independent) Cdf(x *tensor.Dense) (*tensor.Dense, error) {
	c, err := i.base.Cdf(x)
	if err != nil {
		return nil, fmt.Errorf("cdf: %w", err)
	}
	out, err := godist.ReduceMul(c, trailing(c.Dims(), i.dims)...)
	if err != nil {
		return nil, fmt.Errorf("cdf: could not combine event dims: %v", err)
	}
	return out, nil
}

func (i *Independent) Mean() (*tensor.Dense, error) { return i.base.Mean() }

func (i *Independent) StdDev() (*tensor.Dense, error) {
	return i.base.StdDev()
}

func (i *Independent) Variance() (*tensor.Dense, error) {
	return i.base.Variance()
}

func (i *Independent) Mode() (*tensor.Dense, error) { return i.base.Mode() }

func (i *Independent) Entropy() (*tensor.Dense, error) {
	h, err := i.base.Entropy()
	if err != nil {
		return nil, fmt.Errorf("entropy: %w", err)
	}
	out, err := godist.ReduceAdd(h, trailing(h.Dims(), i.dims)...)
	if err != nil {
		return nil, fmt.Errorf("entropy: could not combine event dims: %v",
			err)
	}
	return out, nil
}

func (i *Independent) DefaultEventSpaceBijector() bijector.Bijector {
	inner := i.base.DefaultEventSpaceBijector()
	if inner == nil {
		return nil
	}
	lifted, err := bijector.NewIndependentLift(inner, i.dims)
	if err != nil {
		return nil
	}
	return lifted
}

// trailing returns the last n axes of a rank-r tensor.
func trailing(r, n int) []int {
	axes := make([]int, n)
	for i := range axes {
		axes[i] = r - n + i
	}
	return axes
}
