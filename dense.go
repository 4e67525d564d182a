package godist

import (
	"fmt"

	"gorgonia.org/tensor"
)

// contiguous returns t backed by a contiguous, row-major slice,
// materializing it if t is a view.
func contiguous(t *tensor.Dense) *tensor.Dense {
	if t.IsView() {
		return t.Materialize().(*tensor.Dense)
	}
	return t
}

// Float64s returns the row-major float64 backing of t. Scalar tensors
// are returned as a one-element slice.
func Float64s(t *tensor.Dense) ([]float64, error) {
	switch data := contiguous(t).Data().(type) {
	case []float64:
		return data, nil
	case float64:
		return []float64{data}, nil
	default:
		return nil, fmt.Errorf("expected float64 data but got %T", data)
	}
}

// Float32s is the float32 analogue of Float64s.
func Float32s(t *tensor.Dense) ([]float32, error) {
	switch data := contiguous(t).Data().(type) {
	case []float32:
		return data, nil
	case float32:
		return []float32{data}, nil
	default:
		return nil, fmt.Errorf("expected float32 data but got %T", data)
	}
}

// FromFloat64s wraps backing in a Dense of the given shape. An empty shape
// produces a scalar tensor.
func FromFloat64s(shape tensor.Shape, backing []float64) *tensor.Dense {
	if shape.Dims() == 0 {
		return tensor.New(tensor.FromScalar(backing[0]))
	}
	return tensor.New(
		tensor.WithShape([]int(shape)...),
		tensor.WithBacking(backing),
	)
}

// FromFloat32s is the float32 analogue of FromFloat64s.
func FromFloat32s(shape tensor.Shape, backing []float32) *tensor.Dense {
	if shape.Dims() == 0 {
		return tensor.New(tensor.FromScalar(backing[0]))
	}
	return tensor.New(
		tensor.WithShape([]int(shape)...),
		tensor.WithBacking(backing),
	)
}

// rowMajorStrides returns the strides of a contiguous row-major tensor
// with the given shape.
func rowMajorStrides(shape tensor.Shape) []int {
	strides := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

// odometer iterates the coordinates of shape in row-major order,
// calling fn with the flat offset of each coordinate under strides.
// Strides may contain zeros, which is how broadcast axes are walked.
func odometer(shape tensor.Shape, strides []int, fn func(i, offset int)) {
	size := 1
	for _, d := range shape {
		size *= d
	}
	coords := make([]int, len(shape))
	offset := 0
	for i := 0; i < size; i++ {
		fn(i, offset)

		for axis := len(shape) - 1; axis >= 0; axis-- {
			coords[axis]++
			offset += strides[axis]
			if coords[axis] < shape[axis] {
				break
			}
			offset -= coords[axis] * strides[axis]
			coords[axis] = 0
		}
	}
}

// Full returns a tensor of the given dtype and shape with every element
// set to c.
func Full(c float64, dt tensor.Dtype, shape ...int) (*tensor.Dense, error) {
	size := 1
	for _, d := range shape {
		size *= d
	}

	switch dt {
	case tensor.Float64:
		backing := make([]float64, size)
		for i := range backing {
			backing[i] = c
		}
		return FromFloat64s(tensor.Shape(shape), backing), nil
	case tensor.Float32:
		backing := make([]float32, size)
		for i := range backing {
			backing[i] = float32(c)
		}
		return FromFloat32s(tensor.Shape(shape), backing), nil
	default:
		return nil, fmt.Errorf("full: dtype %v not supported", dt)
	}
}
