package distribution

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/samuelfneumann/godist"
	"github.com/samuelfneumann/godist/bijector"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
	"gorgonia.org/tensor"
)

// Poisson is a batch of Poisson distributions, one per element of its
// rate tensor. Events are scalar counts, stored in the float dtype of
// the rate.
//
// Poisson supports tensor.Float64 and tensor.Float32.
type Poisson struct {
	rate *tensor.Dense

	wideRate []float64
}

// NewPoisson returns a new Poisson. rate must be strictly positive.
func NewPoisson(rate *tensor.Dense) (*Poisson, error) {
	if rate.Dtype() != tensor.Float64 && rate.Dtype() != tensor.Float32 {
		return nil, fmt.Errorf("newPoisson: dtype %v not supported",
			rate.Dtype())
	}

	wideRate, err := wideFloats(rate)
	if err != nil {
		return nil, fmt.Errorf("newPoisson: %v", err)
	}
	for _, r := range wideRate {
		if r <= 0 {
			return nil, fmt.Errorf("newPoisson: expected rate > 0 but "+
				"got %v", r)
		}
	}

	return &Poisson{rate: rate, wideRate: wideRate}, nil
}

func (p *Poisson) Dtype() tensor.Dtype { return p.rate.Dtype() }

func (p *Poisson) BatchShape() tensor.Shape { return p.rate.Shape().Clone() }

func (p *Poisson) EventShape() (tensor.Shape, error) {
	return tensor.Shape{}, nil
}

func (p *Poisson) Sample(leading tensor.Shape,
	src rand.Source) (*tensor.Dense, error) {

	return sampleEach(leading, p.BatchShape(), p.Dtype(), func(b int) float64 {
		return distuv.Poisson{
			Lambda: p.wideRate[b],
			Src:    src,
		}.Rand()
	})
}

// LogProb returns x log(rate) - rate - lgamma(x + 1), broadcast against
// the batch shape. Negative x has zero mass. The float32 path widens
// through float64 for the lgamma term.
func (p *Poisson) LogProb(x *tensor.Dense) (*tensor.Dense, error) {
	out, err := godist.Zip(x, p.rate,
		func(v, r float64) float64 { return poissonLogPmf(v, r) },
		func(v, r float32) float32 {
			return float32(poissonLogPmf(float64(v), float64(r)))
		})
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}
	return out, nil
}

func poissonLogPmf(v, r float64) float64 {
	if v < 0 {
		return math.Inf(-1)
	}
	lg, _ := math.Lgamma(v + 1)
	return v*math.Log(r) - r - lg
}

func (p *Poisson) Prob(x *tensor.Dense) (*tensor.Dense, error) {
	lp, err := p.LogProb(x)
	if err != nil {
		return nil, fmt.Errorf("prob: %v", err)
	}
	out, err := godist.Exp(lp)
	if err != nil {
		return nil, fmt.Errorf("prob: %v", err)
	}
	return out, nil
}

// Cdf returns P(X <= x) = Q(floor(x) + 1, rate), the regularized upper
// incomplete gamma function, broadcast against the batch shape.
func (p *Poisson) Cdf(x *tensor.Dense) (*tensor.Dense, error) {
	out, err := godist.Zip(x, p.rate,
		func(v, r float64) float64 { return poissonCdf(v, r) },
		func(v, r float32) float32 {
			return float32(poissonCdf(float64(v), float64(r)))
		})
	if err != nil {
		return nil, fmt.Errorf("cdf: %v", err)
	}
	return out, nil
}

func poissonCdf(v, r float64) float64 {
	if v < 0 {
		return 0
	}
	return mathext.GammaIncRegComp(math.Floor(v)+1, r)
}

func (p *Poisson) Mean() (*tensor.Dense, error) { return p.rate, nil }

func (p *Poisson) StdDev() (*tensor.Dense, error) {
	return godist.Map(p.rate, math.Sqrt, math32.Sqrt)
}

func (p *Poisson) Variance() (*tensor.Dense, error) { return p.rate, nil }

func (p *Poisson) Mode() (*tensor.Dense, error) {
	return godist.Map(p.rate, math.Floor, math32.Floor)
}

func (p *Poisson) Entropy() (*tensor.Dense, error) {
	return nil, errUnsupported("poisson", "entropy")
}

// DefaultEventSpaceBijector is nil: the support is discrete.
func (p *Poisson) DefaultEventSpaceBijector() bijector.Bijector {
	return nil
}
