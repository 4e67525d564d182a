package distribution

import (
	"fmt"

	"github.com/samuelfneumann/godist"
	"github.com/samuelfneumann/godist/bijector"
	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"
)

// Transformed pushes a base distribution forward through a bijector:
// samples are mapped through Forward, and densities pull observations
// back through Inverse with the change-of-variables correction.
type Transformed struct {
	base Distribution
	bij  bijector.Bijector
}

// NewTransformed returns the pushforward of base through bij.
func NewTransformed(base Distribution,
	bij bijector.Bijector) (*Transformed, error) {

	if bij == nil {
		return nil, fmt.Errorf("newTransformed: nil bijector")
	}
	return &Transformed{base: base, bij: bij}, nil
}

// Base returns the distribution being transformed.
func (t *Transformed) Base() Distribution { return t.base }

// Bijector returns the transforming bijector.
func (t *Transformed) Bijector() bijector.Bijector { return t.bij }

func (t *Transformed) Dtype() tensor.Dtype { return t.base.Dtype() }

func (t *Transformed) BatchShape() tensor.Shape {
	return t.base.BatchShape()
}

func (t *Transformed) EventShape() (tensor.Shape, error) {
	event, err := t.base.EventShape()
	if err != nil {
		return nil, fmt.Errorf("eventShape: %w", err)
	}
	out, err := t.bij.ForwardEventShape(event)
	if err != nil {
		return nil, fmt.Errorf("eventShape: %v", err)
	}
	return out, nil
}

func (t *Transformed) Sample(leading tensor.Shape,
	src rand.Source) (*tensor.Dense, error) {

	draws, err := t.base.Sample(leading, src)
	if err != nil {
		return nil, fmt.Errorf("sample: %w", err)
	}
	out, err := t.bij.Forward(draws)
	if err != nil {
		return nil, fmt.Errorf("sample: %v", err)
	}
	return out, nil
}

// LogProb pulls y back through the bijector and corrects the base log
// density by the inverse log-det-Jacobian over the event axes.
func (t *Transformed) LogProb(y *tensor.Dense) (*tensor.Dense, error) {
	event, err := t.EventShape()
	if err != nil {
		return nil, fmt.Errorf("logProb: %w", err)
	}

	x, err := t.bij.Inverse(y)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}
	lp, err := t.base.LogProb(x)
	if err != nil {
		return nil, fmt.Errorf("logProb: %w", err)
	}
	ildj, err := t.bij.InverseLogDetJacobian(y, len(event))
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	out, err := godist.Add(lp, ildj)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}
	return out, nil
}

func (t *Transformed) Prob(y *tensor.Dense) (*tensor.Dense, error) {
	lp, err := t.LogProb(y)
	if err != nil {
		return nil, fmt.Errorf("prob: %w", err)
	}
	out, err := godist.Exp(lp)
	if err != nil {
		return nil, fmt.Errorf("prob: %v", err)
	}
	return out, nil
}

// Cdf is not implemented: it needs the bijector's monotonicity, which
// the Bijector interface does not expose.
func (t *Transformed) Cdf(y *tensor.Dense) (*tensor.Dense, error) {
	return nil, errUnsupported("transformed", "cdf")
}

func (t *Transformed) Mean() (*tensor.Dense, error) {
	return nil, errUnsupported("transformed", "mean")
}

func (t *Transformed) StdDev() (*tensor.Dense, error) {
	return nil, errUnsupported("transformed", "stdDev")
}

func (t *Transformed) Variance() (*tensor.Dense, error) {
	return nil, errUnsupported("transformed", "variance")
}

func (t *Transformed) Mode() (*tensor.Dense, error) {
	return nil, errUnsupported("transformed", "mode")
}

func (t *Transformed) Entropy() (*tensor.Dense, error) {
	return nil, errUnsupported("transformed", "entropy")
}

// DefaultEventSpaceBijector is the transforming bijector itself: its
// codomain is the distribution's support.
func (t *Transformed) DefaultEventSpaceBijector() bijector.Bijector {
	return t.bij
}
