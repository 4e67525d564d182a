package bijector

import (
	"fmt"

	"github.com/samuelfneumann/godist"
	"gorgonia.org/tensor"
)

// FillTriangular packs a vector of k = m(m+1)/2 values into an m x m
// lower-triangular matrix and back. The vector is consumed row by row
// along the lower triangle; entries above the diagonal are zero. The
// map is a pure relabeling, so both Jacobian terms are zero, but it
// changes event rank: vectors (rank 1) map to matrices (rank 2).
type FillTriangular struct{}

// NewFillTriangular returns a new FillTriangular.
func NewFillTriangular() *FillTriangular { return &FillTriangular{} }

// triangularDim returns m such that k = m(m+1)/2, or an error if k is
// not a triangular number.
func triangularDim(k int) (int, error) {
	m := 0
	for m*(m+1)/2 < k {
		m++
	}
	if m*(m+1)/2 != k {
		return 0, fmt.Errorf("vector length %v is not a triangular number",
			k)
	}
	return m, nil
}

func (f *FillTriangular) Forward(x *tensor.Dense) (*tensor.Dense, error) {
	shape := x.Shape()
	r := len(shape)
	if r < 1 {
		return nil, fmt.Errorf("forward: expected rank >= 1 but got %v", r)
	}
	k := shape[r-1]
	m, err := triangularDim(k)
	if err != nil {
		return nil, fmt.Errorf("forward: %v", err)
	}

	outShape := godist.Concat(shape[:r-1], tensor.Shape{m, m})
	events := 1
	for _, d := range shape[:r-1] {
		events *= d
	}

	switch x.Dtype() {
	case tensor.Float64:
		in, err := godist.Float64s(x)
		if err != nil {
			return nil, fmt.Errorf("forward: %v", err)
		}
		out := make([]float64, events*m*m)
		for e := 0; e < events; e++ {
			fillLower(e, m, k, func(matIdx, vecIdx int) {
				out[matIdx] = in[vecIdx]
			})
		}
		return godist.FromFloat64s(outShape, out), nil
	case tensor.Float32:
		in, err := godist.Float32s(x)
		if err != nil {
			return nil, fmt.Errorf("forward: %v", err)
		}
		out := make([]float32, events*m*m)
		for e := 0; e < events; e++ {
			fillLower(e, m, k, func(matIdx, vecIdx int) {
				out[matIdx] = in[vecIdx]
			})
		}
		return godist.FromFloat32s(outShape, out), nil
	default:
		return nil, fmt.Errorf("forward: dtype %v not supported", x.Dtype())
	}
}

func (f *FillTriangular) Inverse(y *tensor.Dense) (*tensor.Dense, error) {
	shape := y.Shape()
	r := len(shape)
	if r < 2 {
		return nil, fmt.Errorf("inverse: expected rank >= 2 but got %v", r)
	}
	m := shape[r-1]
	if shape[r-2] != m {
		return nil, fmt.Errorf("inverse: expected a square trailing "+
			"matrix but got %v x %v", shape[r-2], m)
	}
	k := m * (m + 1) / 2

	outShape := godist.Concat(shape[:r-2], tensor.Shape{k})
	events := 1
	for _, d := range shape[:r-2] {
		events *= d
	}

	switch y.Dtype() {
	case tensor.Float64:
		in, err := godist.Float64s(y)
		if err != nil {
			return nil, fmt.Errorf("inverse: %v", err)
		}
		out := make([]float64, events*k)
		for e := 0; e < events; e++ {
			fillLower(e, m, k, func(matIdx, vecIdx int) {
				out[vecIdx] = in[matIdx]
			})
		}
		return godist.FromFloat64s(outShape, out), nil
	case tensor.Float32:
		in, err := godist.Float32s(y)
		if err != nil {
			return nil, fmt.Errorf("inverse: %v", err)
		}
		out := make([]float32, events*k)
		for e := 0; e < events; e++ {
			fillLower(e, m, k, func(matIdx, vecIdx int) {
				out[vecIdx] = in[matIdx]
			})
		}
		return godist.FromFloat32s(outShape, out), nil
	default:
		return nil, fmt.Errorf("inverse: dtype %v not supported", y.Dtype())
	}
}

// fillLower visits the lower triangle of event e row by row, pairing
// flat matrix indices with flat vector indices.
func fillLower(e, m, k int, visit func(matIdx, vecIdx int)) {
	vec := e * k
	mat := e * m * m
	for i := 0; i < m; i++ {
		for j := 0; j <= i; j++ {
			visit(mat+i*m+j, vec)
			vec++
		}
	}
}

func (f *FillTriangular) ForwardEventShape(s tensor.Shape) (tensor.Shape,
	error) {

	if len(s) < 1 {
		return nil, fmt.Errorf("forwardEventShape: expected rank >= 1 "+
			"but got %v", len(s))
	}
	m, err := triangularDim(s[len(s)-1])
	if err != nil {
		return nil, fmt.Errorf("forwardEventShape: %v", err)
	}
	return godist.Concat(s[:len(s)-1], tensor.Shape{m, m}), nil
}

func (f *FillTriangular) InverseEventShape(s tensor.Shape) (tensor.Shape,
	error) {

	if len(s) < 2 {
		return nil, fmt.Errorf("inverseEventShape: expected rank >= 2 "+
			"but got %v", len(s))
	}
	m := s[len(s)-1]
	if s[len(s)-2] != m {
		return nil, fmt.Errorf("inverseEventShape: expected a square "+
			"trailing matrix but got %v x %v", s[len(s)-2], m)
	}
	return godist.Concat(s[:len(s)-2], tensor.Shape{m * (m + 1) / 2}), nil
}

func (f *FillTriangular) ForwardLogDetJacobian(x *tensor.Dense,
	eventNDims int) (*tensor.Dense, error) {

	if err := checkEventNDims("forwardLogDetJacobian", x.Dims(),
		eventNDims, 1); err != nil {
		return nil, err
	}
	zero, err := godist.Full(0, x.Dtype())
	if err != nil {
		return nil, fmt.Errorf("forwardLogDetJacobian: %v", err)
	}
	shape := x.Shape()
	return reduceLogDet(zero, shape[:len(shape)-1], eventNDims-1)
}

func (f *FillTriangular) InverseLogDetJacobian(y *tensor.Dense,
	eventNDims int) (*tensor.Dense, error) {

	if err := checkEventNDims("inverseLogDetJacobian", y.Dims(),
		eventNDims, 2); err != nil {
		return nil, err
	}
	zero, err := godist.Full(0, y.Dtype())
	if err != nil {
		return nil, fmt.Errorf("inverseLogDetJacobian: %v", err)
	}
	shape := y.Shape()
	return reduceLogDet(zero, shape[:len(shape)-2], eventNDims-2)
}

func (f *FillTriangular) ForwardEventNDims() int { return 1 }

func (f *FillTriangular) InverseEventNDims() int { return 2 }
