package godist

import (
	"fmt"

	"gorgonia.org/tensor"
)

// The reduction engine. All reductions traverse the input in row-major
// order, so addends along a reduced axis are consumed in exactly the
// order the corresponding samples were generated. ReduceAddKahan
// depends on this order being pinned: compensated summation is not
// associative, and a different traversal would give a different result.

// ReduceAdd sums t over the given axes, removing them from the shape.
// With no axes it returns t unchanged.
func ReduceAdd(t *tensor.Dense, along ...int) (*tensor.Dense, error) {
	out, err := reduce(t, along, reduceAdd)
	if err != nil {
		return nil, fmt.Errorf("reduceAdd: %w", err)
	}
	return out, nil
}

// ReduceMul multiplies t over the given axes, removing them from the
// shape. With no axes it returns t unchanged.
func ReduceMul(t *tensor.Dense, along ...int) (*tensor.Dense, error) {
	out, err := reduce(t, along, reduceMul)
	if err != nil {
		return nil, fmt.Errorf("reduceMul: %w", err)
	}
	return out, nil
}

// ReduceAddKahan sums t over the given axes using Kahan compensated
// summation: each output cell keeps a running compensation for the
// rounding error of its additions, which is folded back into the sum
// once after the whole reduction. At equal dtype this tracks a
// higher-precision plain sum far more closely than ReduceAdd when many
// terms are reduced, which matters for float32 accumulations over long
// sample axes.
func ReduceAddKahan(t *tensor.Dense, along ...int) (*tensor.Dense, error) {
	out, err := reduce(t, along, reduceAddKahan)
	if err != nil {
		return nil, fmt.Errorf("reduceAddKahan: %w", err)
	}
	return out, nil
}

type reduceMode int

const (
	reduceAdd reduceMode = iota
	reduceMul
	reduceAddKahan
)

func reduce(t *tensor.Dense, along []int, mode reduceMode) (*tensor.Dense,
	error) {

	if len(along) == 0 {
		return t, nil
	}

	shape := t.Shape()
	rank := len(shape)
	reduced := make([]bool, rank)
	for _, axis := range along {
		if axis < 0 || axis >= rank {
			return nil, fmt.Errorf("axis [%v] out of range for tensor "+
				"with shape %v", axis, shape)
		}
		if reduced[axis] {
			return nil, fmt.Errorf("axis [%v] repeated in %v", axis, along)
		}
		reduced[axis] = true
	}

	outShape := make(tensor.Shape, 0, rank-len(along))
	for axis, d := range shape {
		if !reduced[axis] {
			outShape = append(outShape, d)
		}
	}

	// Walk the input in row-major order, mapping every element to its
	// output cell via zero strides on the reduced axes.
	outStrides := rowMajorStrides(outShape)
	walk := make([]int, rank)
	kept := 0
	for axis := 0; axis < rank; axis++ {
		if reduced[axis] {
			walk[axis] = 0
		} else {
			walk[axis] = outStrides[kept]
			kept++
		}
	}

	outSize := 1
	for _, d := range outShape {
		outSize *= d
	}

	switch t.Dtype() {
	case tensor.Float64:
		in, err := Float64s(t)
		if err != nil {
			return nil, err
		}
		out := make([]float64, outSize)
		switch mode {
		case reduceMul:
			for i := range out {
				out[i] = 1
			}
			odometer(shape, walk, func(i, o int) { out[o] *= in[i] })
		case reduceAdd:
			odometer(shape, walk, func(i, o int) { out[o] += in[i] })
		case reduceAddKahan:
			comp := make([]float64, outSize)
			odometer(shape, walk, func(i, o int) {
				out[o], comp[o] = kahanStep64(out[o], comp[o], in[i])
			})
			for i := range out {
				out[i] += comp[i]
			}
		}
		return FromFloat64s(outShape, out), nil
	case tensor.Float32:
		in, err := Float32s(t)
		if err != nil {
			return nil, err
		}
		out := make([]float32, outSize)
		switch mode {
		case reduceMul:
			for i := range out {
				out[i] = 1
			}
			odometer(shape, walk, func(i, o int) { out[o] *= in[i] })
		case reduceAdd:
			odometer(shape, walk, func(i, o int) { out[o] += in[i] })
		case reduceAddKahan:
			comp := make([]float32, outSize)
			odometer(shape, walk, func(i, o int) {
				out[o], comp[o] = kahanStep32(out[o], comp[o], in[i])
			})
			for i := range out {
				out[i] += comp[i]
			}
		}
		return FromFloat32s(outShape, out), nil
	default:
		return nil, fmt.Errorf("dtype %v not supported", t.Dtype())
	}
}

// kahanStep64 folds v into the running sum, accumulating the rounding
// error of the addition into comp (Neumaier's variant, which also
// covers |v| > |sum|).
func kahanStep64(sum, comp, v float64) (float64, float64) {
	t := sum + v
	if abs64(sum) >= abs64(v) {
		comp += (sum - t) + v
	} else {
		comp += (v - t) + sum
	}
	return t, comp
}

func kahanStep32(sum, comp, v float32) (float32, float32) {
	t := sum + v
	if abs32(sum) >= abs32(v) {
		comp += (sum - t) + v
	} else {
		comp += (v - t) + sum
	}
	return t, comp
}

func abs64(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
