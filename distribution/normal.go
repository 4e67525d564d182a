package distribution

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/samuelfneumann/godist"
	"github.com/samuelfneumann/godist/bijector"
	smath32 "github.com/samuelfneumann/math32"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	"gorgonia.org/tensor"
)

// Normal is a batch of univariate normal distributions, one per element
// of its location and scale tensors. Events are scalar, so the batch
// shape is exactly the parameter shape. For example, with
//
//	loc   := [m_1, m_2, ..., m_N]
//	scale := [s_1, s_2, ..., s_N]
//
// the Normal holds the distributions
//
//	[𝒩(m_1, s_1), 𝒩(m_2, s_2), ..., 𝒩(m_N, s_N)]
//
// Normal supports tensor.Float64 and tensor.Float32.
type Normal struct {
	loc   *tensor.Dense
	scale *tensor.Dense

	// Parameters widened to float64 for the gonum samplers.
	wideLoc   []float64
	wideScale []float64
}

// NewNormal returns a new Normal. loc and scale must have the same
// shape and dtype, and scale must be strictly positive.
func NewNormal(loc, scale *tensor.Dense) (*Normal, error) {
	if err := checkParams("newNormal", loc, scale); err != nil {
		return nil, err
	}

	wideLoc, err := wideFloats(loc)
	if err != nil {
		return nil, fmt.Errorf("newNormal: %v", err)
	}
	wideScale, err := wideFloats(scale)
	if err != nil {
		return nil, fmt.Errorf("newNormal: %v", err)
	}
	for _, s := range wideScale {
		if s <= 0 {
			return nil, fmt.Errorf("newNormal: expected scale > 0 but "+
				"got %v", s)
		}
	}

	return &Normal{
		loc:       loc,
		scale:     scale,
		wideLoc:   wideLoc,
		wideScale: wideScale,
	}, nil
}

func (n *Normal) Dtype() tensor.Dtype { return n.loc.Dtype() }

func (n *Normal) BatchShape() tensor.Shape { return n.loc.Shape().Clone() }

func (n *Normal) EventShape() (tensor.Shape, error) {
	return tensor.Shape{}, nil
}

func (n *Normal) Sample(leading tensor.Shape,
	src rand.Source) (*tensor.Dense, error) {

	return sampleEach(leading, n.BatchShape(), n.Dtype(), func(b int) float64 {
		return distuv.Normal{
			Mu:    n.wideLoc[b],
			Sigma: n.wideScale[b],
			Src:   src,
		}.Rand()
	})
}

// LogProb returns the log density of x, broadcast against the batch
// shape.
func (n *Normal) LogProb(x *tensor.Dense) (*tensor.Dense, error) {
	z, err := n.standardize(x)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	out, err := godist.Map(z,
		func(v float64) float64 { return -0.5 * v * v },
		func(v float32) float32 { return -0.5 * v * v })
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	lnScale, err := godist.Log(n.scale)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}
	out, err = godist.Sub(out, lnScale)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}

	out, err = godist.Shift(out, -0.5*math.Log(2*math.Pi))
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}
	return out, nil
}

// Prob returns the density of x, broadcast against the batch shape.
func (n *Normal) Prob(x *tensor.Dense) (*tensor.Dense, error) {
	lp, err := n.LogProb(x)
	if err != nil {
		return nil, fmt.Errorf("prob: %v", err)
	}
	out, err := godist.Exp(lp)
	if err != nil {
		return nil, fmt.Errorf("prob: %v", err)
	}
	return out, nil
}

// Cdf returns the cumulative distribution function at x, broadcast
// against the batch shape.
func (n *Normal) Cdf(x *tensor.Dense) (*tensor.Dense, error) {
	z, err := n.standardize(x)
	if err != nil {
		return nil, fmt.Errorf("cdf: %v", err)
	}

	out, err := godist.Map(z,
		func(v float64) float64 {
			return 0.5 * (1 + math.Erf(v/math.Sqrt2))
		},
		func(v float32) float32 {
			return 0.5 * (1 + math32.Erf(v/math32.Sqrt(2)))
		})
	if err != nil {
		return nil, fmt.Errorf("cdf: %v", err)
	}
	return out, nil
}

// Quantile returns the inverse of Cdf at probability p, broadcast
// against the batch shape.
func (n *Normal) Quantile(p *tensor.Dense) (*tensor.Dense, error) {
	z, err := godist.Map(p,
		func(v float64) float64 {
			return math.Sqrt2 * math.Erfinv(2*v-1)
		},
		func(v float32) float32 {
			return math32.Sqrt(2) * smath32.Erfinv(2*v-1)
		})
	if err != nil {
		return nil, fmt.Errorf("quantile: %v", err)
	}

	z, err = godist.Mul(z, n.scale)
	if err != nil {
		return nil, fmt.Errorf("quantile: %v", err)
	}
	out, err := godist.Add(z, n.loc)
	if err != nil {
		return nil, fmt.Errorf("quantile: %v", err)
	}
	return out, nil
}

func (n *Normal) Mean() (*tensor.Dense, error) { return n.loc, nil }

func (n *Normal) StdDev() (*tensor.Dense, error) { return n.scale, nil }

func (n *Normal) Variance() (*tensor.Dense, error) {
	return godist.Mul(n.scale, n.scale)
}

func (n *Normal) Mode() (*tensor.Dense, error) { return n.loc, nil }

// Entropy returns 0.5 * log(2πe σ²) per batch element.
func (n *Normal) Entropy() (*tensor.Dense, error) {
	out, err := godist.Log(n.scale)
	if err != nil {
		return nil, fmt.Errorf("entropy: %v", err)
	}
	return godist.Shift(out, 0.5*math.Log(2*math.Pi)+0.5)
}

func (n *Normal) DefaultEventSpaceBijector() bijector.Bijector {
	return bijector.NewIdentity()
}

// standardize returns (x - loc) / scale with broadcasting.
func (n *Normal) standardize(x *tensor.Dense) (*tensor.Dense, error) {
	d, err := godist.Sub(x, n.loc)
	if err != nil {
		return nil, err
	}
	return godist.Div(d, n.scale)
}
