package distribution

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/samuelfneumann/godist"
	"github.com/samuelfneumann/godist/bijector"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	"gorgonia.org/tensor"
)

// Uniform is a batch of continuous uniform distributions on the
// intervals [low, high], one per element of its bound tensors. Events
// are scalar.
//
// Uniform supports tensor.Float64 and tensor.Float32.
type Uniform struct {
	low   *tensor.Dense
	high  *tensor.Dense
	width *tensor.Dense // high - low

	wideLow   []float64
	wideHigh  []float64
	bijection *bijector.Sigmoid
}

// NewUniform returns a new Uniform. low and high must have the same
// shape and dtype, with low strictly below high elementwise.
func NewUniform(low, high *tensor.Dense) (*Uniform, error) {
	if err := checkParams("newUniform", low, high); err != nil {
		return nil, err
	}

	wideLow, err := wideFloats(low)
	if err != nil {
		return nil, fmt.Errorf("newUniform: %v", err)
	}
	wideHigh, err := wideFloats(high)
	if err != nil {
		return nil, fmt.Errorf("newUniform: %v", err)
	}
	for i := range wideLow {
		if wideLow[i] >= wideHigh[i] {
			return nil, fmt.Errorf("newUniform: expected low < high but "+
				"got %v and %v", wideLow[i], wideHigh[i])
		}
	}

	width, err := godist.Sub(high, low)
	if err != nil {
		return nil, fmt.Errorf("newUniform: %v", err)
	}
	bijection, err := bijector.NewSigmoid(low, high)
	if err != nil {
		return nil, fmt.Errorf("newUniform: %v", err)
	}

	return &Uniform{
		low:       low,
		high:      high,
		width:     width,
		wideLow:   wideLow,
		wideHigh:  wideHigh,
		bijection: bijection,
	}, nil
}

func (u *Uniform) Dtype() tensor.Dtype { return u.low.Dtype() }

func (u *Uniform) BatchShape() tensor.Shape { return u.low.Shape().Clone() }

func (u *Uniform) EventShape() (tensor.Shape, error) {
	return tensor.Shape{}, nil
}

func (u *Uniform) Sample(leading tensor.Shape,
	src rand.Source) (*tensor.Dense, error) {

	return sampleEach(leading, u.BatchShape(), u.Dtype(), func(b int) float64 {
		return distuv.Uniform{
			Min: u.wideLow[b],
			Max: u.wideHigh[b],
			Src: src,
		}.Rand()
	})
}

// LogProb returns -log(high - low) within the support and -Inf outside
// it, broadcast against the batch shape.
func (u *Uniform) LogProb(x *tensor.Dense) (*tensor.Dense, error) {
	z, err := godist.Sub(x, u.low)
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}
	out, err := godist.Zip(z, u.width,
		func(v, w float64) float64 {
			if v < 0 || v > w {
				return math.Inf(-1)
			}
			return -math.Log(w)
		},
		func(v, w float32) float32 {
			if v < 0 || v > w {
				return math32.Inf(-1)
			}
			return -math32.Log(w)
		})
	if err != nil {
		return nil, fmt.Errorf("logProb: %v", err)
	}
	return out, nil
}

func (u *Uniform) Prob(x *tensor.Dense) (*tensor.Dense, error) {
	lp, err := u.LogProb(x)
	if err != nil {
		return nil, fmt.Errorf("prob: %v", err)
	}
	out, err := godist.Exp(lp)
	if err != nil {
		return nil, fmt.Errorf("prob: %v", err)
	}
	return out, nil
}

// Cdf returns (x - low) / (high - low) clamped to [0, 1], broadcast
// against the batch shape.
func (u *Uniform) Cdf(x *tensor.Dense) (*tensor.Dense, error) {
	z, err := godist.Sub(x, u.low)
	if err != nil {
		return nil, fmt.Errorf("cdf: %v", err)
	}
	out, err := godist.Zip(z, u.width,
		func(v, w float64) float64 {
			return math.Min(math.Max(v/w, 0), 1)
		},
		func(v, w float32) float32 {
			return math32.Min(math32.Max(v/w, 0), 1)
		})
	if err != nil {
		return nil, fmt.Errorf("cdf: %v", err)
	}
	return out, nil
}

// Quantile returns low + p * (high - low), broadcast against the batch
// shape.
func (u *Uniform) Quantile(p *tensor.Dense) (*tensor.Dense, error) {
	z, err := godist.Mul(p, u.width)
	if err != nil {
		return nil, fmt.Errorf("quantile: %v", err)
	}
	out, err := godist.Add(z, u.low)
	if err != nil {
		return nil, fmt.Errorf("quantile: %v", err)
	}
	return out, nil
}

func (u *Uniform) Mean() (*tensor.Dense, error) {
	sum, err := godist.Add(u.low, u.high)
	if err != nil {
		return nil, fmt.Errorf("mean: %v", err)
	}
	return godist.Scale(sum, 0.5)
}

func (u *Uniform) StdDev() (*tensor.Dense, error) {
	return godist.Scale(u.width, 1/math.Sqrt(12))
}

func (u *Uniform) Variance() (*tensor.Dense, error) {
	sq, err := godist.Mul(u.width, u.width)
	if err != nil {
		return nil, fmt.Errorf("variance: %v", err)
	}
	return godist.Scale(sq, 1.0/12)
}

func (u *Uniform) Mode() (*tensor.Dense, error) {
	return nil, errUnsupported("uniform", "mode")
}

func (u *Uniform) Entropy() (*tensor.Dense, error) {
	return godist.Log(u.width)
}

func (u *Uniform) DefaultEventSpaceBijector() bijector.Bijector {
	return u.bijection
}
