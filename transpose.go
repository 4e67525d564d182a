package godist

import (
	"fmt"

	"gorgonia.org/tensor"
)

// Transpose returns a fresh, contiguous copy of t with its axes
// permuted. Entry i of perm is the input axis that lands at output
// axis i. An identity permutation returns t unchanged.
func Transpose(t *tensor.Dense, perm ...int) (*tensor.Dense, error) {
	rank := t.Dims()
	if len(perm) != rank {
		return nil, fmt.Errorf("transpose: expected %v axes but got %v",
			rank, len(perm))
	}

	seen := make([]bool, rank)
	for _, p := range perm {
		if p < 0 || p >= rank {
			return nil, fmt.Errorf("transpose: axis [%v] out of range "+
				"for tensor with shape %v", p, t.Shape())
		}
		if seen[p] {
			return nil, fmt.Errorf("transpose: axis [%v] repeated in "+
				"permutation %v", p, perm)
		}
		seen[p] = true
	}

	if IsIdentityPermutation(perm) {
		return t, nil
	}

	inShape := t.Shape()
	inStrides := rowMajorStrides(inShape)
	outShape := make(tensor.Shape, rank)
	walk := make([]int, rank)
	for i, p := range perm {
		outShape[i] = inShape[p]
		walk[i] = inStrides[p]
	}

	size := 1
	for _, d := range outShape {
		size *= d
	}

	switch t.Dtype() {
	case tensor.Float64:
		in, err := Float64s(t)
		if err != nil {
			return nil, fmt.Errorf("transpose: %v", err)
		}
		out := make([]float64, size)
		odometer(outShape, walk, func(i, offset int) {
			out[i] = in[offset]
		})
		return FromFloat64s(outShape, out), nil
	case tensor.Float32:
		in, err := Float32s(t)
		if err != nil {
			return nil, fmt.Errorf("transpose: %v", err)
		}
		out := make([]float32, size)
		odometer(outShape, walk, func(i, offset int) {
			out[i] = in[offset]
		})
		return FromFloat32s(outShape, out), nil
	default:
		return nil, fmt.Errorf("transpose: dtype %v not supported",
			t.Dtype())
	}
}
