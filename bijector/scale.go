package bijector

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"github.com/samuelfneumann/godist"
	"gorgonia.org/tensor"
)

// Scale multiplies elementwise by a fixed, nonzero scale tensor. The
// scale typically carries the batch shape of the owning distribution
// and broadcasts against trailing input dimensions.
type Scale struct {
	scale  *tensor.Dense
	logAbs *tensor.Dense
}

// NewScale returns a new Scale. Every element of scale must be nonzero.
func NewScale(scale *tensor.Dense) (*Scale, error) {
	logAbs, err := godist.Map(scale,
		func(x float64) float64 { return math.Log(math.Abs(x)) },
		func(x float32) float32 { return math32.Log(math32.Abs(x)) })
	if err != nil {
		return nil, fmt.Errorf("newScale: %v", err)
	}

	if data, err := godist.Float64s(logAbs); err == nil {
		for _, v := range data {
			if math.IsInf(v, -1) {
				return nil, fmt.Errorf("newScale: scale must be nonzero")
			}
		}
	}
	if data, err := godist.Float32s(logAbs); err == nil {
		for _, v := range data {
			if math32.IsInf(v, -1) {
				return nil, fmt.Errorf("newScale: scale must be nonzero")
			}
		}
	}

	return &Scale{scale: scale, logAbs: logAbs}, nil
}

func (s *Scale) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	out, err := godist.Mul(x, s.scale)
	if err != nil {
		return nil, fmt.Errorf("forward: %v", err)
	}
	return out, nil
}

func (s *Scale) Inverse(y *tensor.Dense) (*tensor.Dense, error) {
	out, err := godist.Div(y, s.scale)
	if err != nil {
		return nil, fmt.Errorf("inverse: %v", err)
	}
	return out, nil
}

func (s *Scale) ForwardEventShape(sh tensor.Shape) (tensor.Shape, error) {
	return sh.Clone(), nil
}

func (s *Scale) InverseEventShape(sh tensor.Shape) (tensor.Shape, error) {
	return sh.Clone(), nil
}

func (s *Scale) ForwardLogDetJacobian(x *tensor.Dense,
	eventNDims int) (*tensor.Dense, error) {

	if err := checkEventNDims("forwardLogDetJacobian", x.Dims(),
		eventNDims, 0); err != nil {
		return nil, err
	}
	return reduceLogDet(s.logAbs, x.Shape(), eventNDims)
}

func (s *Scale) InverseLogDetJacobian(y *tensor.Dense,
	eventNDims int) (*tensor.Dense, error) {

	if err := checkEventNDims("inverseLogDetJacobian", y.Dims(),
		eventNDims, 0); err != nil {
		return nil, err
	}

	elem, err := godist.Neg(s.logAbs)
	if err != nil {
		return nil, fmt.Errorf("inverseLogDetJacobian: %v", err)
	}
	return reduceLogDet(elem, y.Shape(), eventNDims)
}

func (s *Scale) ForwardEventNDims() int { return 0 }

func (s *Scale) InverseEventNDims() int { return 0 }
