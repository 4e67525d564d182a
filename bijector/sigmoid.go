package bijector

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/samuelfneumann/godist"
	"gorgonia.org/tensor"
)

// Sigmoid maps unconstrained values into the open interval (low, high)
// elementwise:
//
//	y = low + (high - low) * sigmoid(x)
//
// It is the default event-space bijector of interval-supported
// distributions such as Uniform. low and high typically carry the
// owning distribution's batch shape and broadcast against trailing
// input dimensions.
type Sigmoid struct {
	low     *tensor.Dense
	width   *tensor.Dense // high - low
	logWide *tensor.Dense // log(high - low)
}

// NewSigmoid returns a Sigmoid onto (low, high). low must be strictly
// below high elementwise.
func NewSigmoid(low, high *tensor.Dense) (*Sigmoid, error) {
	width, err := godist.Sub(high, low)
	if err != nil {
		return nil, fmt.Errorf("newSigmoid: %v", err)
	}
	logWide, err := godist.Log(width)
	if err != nil {
		return nil, fmt.Errorf("newSigmoid: %v", err)
	}

	if data, err := godist.Float64s(logWide); err == nil {
		for _, v := range data {
			if math.IsNaN(v) || math.IsInf(v, -1) {
				return nil, fmt.Errorf("newSigmoid: expected low < high")
			}
		}
	}
	if data, err := godist.Float32s(logWide); err == nil {
		for _, v := range data {
			if math32.IsNaN(v) || math32.IsInf(v, -1) {
				return nil, fmt.Errorf("newSigmoid: expected low < high")
			}
		}
	}

	return &Sigmoid{low: low, width: width, logWide: logWide}, nil
}

func (s *Sigmoid) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	sig, err := godist.Map(x, sigmoid64, sigmoid32)
	if err != nil {
		return nil, fmt.Errorf("forward: %v", err)
	}
	out, err := godist.Mul(sig, s.width)
	if err != nil {
		return nil, fmt.Errorf("forward: %v", err)
	}
	out, err = godist.Add(out, s.low)
	if err != nil {
		return nil, fmt.Errorf("forward: %v", err)
	}
	return out, nil
}

func (s *Sigmoid) Inverse(y *tensor.Dense) (*tensor.Dense, error) {
	z, err := s.unit(y)
	if err != nil {
		return nil, fmt.Errorf("inverse: %v", err)
	}
	out, err := godist.Map(z, logit64, logit32)
	if err != nil {
		return nil, fmt.Errorf("inverse: %v", err)
	}
	return out, nil
}

func (s *Sigmoid) ForwardEventShape(sh tensor.Shape) (tensor.Shape, error) {
	return sh.Clone(), nil
}

func (s *Sigmoid) InverseEventShape(sh tensor.Shape) (tensor.Shape, error) {
	return sh.Clone(), nil
}

// ForwardLogDetJacobian is log(high-low) + log sigmoid'(x) per element,
// summed over the spanned axes.
func (s *Sigmoid) ForwardLogDetJacobian(x *tensor.Dense,
	eventNDims int) (*tensor.Dense, error) {

	if err := checkEventNDims("forwardLogDetJacobian", x.Dims(),
		eventNDims, 0); err != nil {
		return nil, err
	}

	elem, err := godist.Map(x,
		func(v float64) float64 { return -softplus64(v) - softplus64(-v) },
		func(v float32) float32 { return -softplus32(v) - softplus32(-v) })
	if err != nil {
		return nil, fmt.Errorf("forwardLogDetJacobian: %v", err)
	}
	elem, err = godist.Add(elem, s.logWide)
	if err != nil {
		return nil, fmt.Errorf("forwardLogDetJacobian: %v", err)
	}
	return reduceLogDet(elem, x.Shape(), eventNDims)
}

func (s *Sigmoid) InverseLogDetJacobian(y *tensor.Dense,
	eventNDims int) (*tensor.Dense, error) {

	if err := checkEventNDims("inverseLogDetJacobian", y.Dims(),
		eventNDims, 0); err != nil {
		return nil, err
	}

	z, err := s.unit(y)
	if err != nil {
		return nil, fmt.Errorf("inverseLogDetJacobian: %v", err)
	}
	elem, err := godist.Map(z,
		func(v float64) float64 { return -math.Log(v) - math.Log1p(-v) },
		func(v float32) float32 { return -math32.Log(v) - math32.Log1p(-v) })
	if err != nil {
		return nil, fmt.Errorf("inverseLogDetJacobian: %v", err)
	}
	elem, err = godist.Sub(elem, s.logWide)
	if err != nil {
		return nil, fmt.Errorf("inverseLogDetJacobian: %v", err)
	}
	return reduceLogDet(elem, y.Shape(), eventNDims)
}

func (s *Sigmoid) ForwardEventNDims() int { return 0 }

func (s *Sigmoid) InverseEventNDims() int { return 0 }

// unit rescales y in (low, high) to (0, 1).
func (s *Sigmoid) unit(y *tensor.Dense) (*tensor.Dense, error) {
	z, err := godist.Sub(y, s.low)
	if err != nil {
		return nil, err
	}
	return godist.Div(z, s.width)
}

func sigmoid64(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

func sigmoid32(x float32) float32 {
	if x >= 0 {
		return 1 / (1 + math32.Exp(-x))
	}
	e := math32.Exp(x)
	return e / (1 + e)
}

func logit64(z float64) float64 { return math.Log(z) - math.Log1p(-z) }

func logit32(z float32) float32 { return math32.Log(z) - math32.Log1p(-z) }

func softplus64(x float64) float64 {
	if x > 0 {
		return x + math.Log1p(math.Exp(-x))
	}
	return math.Log1p(math.Exp(x))
}

func softplus32(x float32) float32 {
	if x > 0 {
		return x + math32.Log1p(math32.Exp(-x))
	}
	return math32.Log1p(math32.Exp(x))
}
