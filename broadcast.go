package godist

import (
	"fmt"

	"gorgonia.org/tensor"
)

// BroadcastShapes returns the shape that a and b broadcast to under the
// standard trailing-dimension rule: shapes are right-aligned, missing
// leading dimensions are treated as one, and aligned dimensions must be
// equal or one. Fails with ErrIncompatibleShapes otherwise.
func BroadcastShapes(a, b tensor.Shape) (tensor.Shape, error) {
	rank := len(a)
	if len(b) > rank {
		rank = len(b)
	}

	out := make(tensor.Shape, rank)
	for i := 1; i <= rank; i++ {
		da, db := 1, 1
		if i <= len(a) {
			da = a[len(a)-i]
		}
		if i <= len(b) {
			db = b[len(b)-i]
		}

		switch {
		case da == db, db == 1:
			out[rank-i] = da
		case da == 1:
			out[rank-i] = db
		default:
			return nil, fmt.Errorf("broadcastShapes: %w: %v vs %v",
				ErrIncompatibleShapes, a, b)
		}
	}
	return out, nil
}

// broadcastStrides returns strides that walk a contiguous tensor of
// shape from as if it had shape to, with zero strides on broadcast
// axes. from must broadcast to to exactly (no expansion of to).
func broadcastStrides(from, to tensor.Shape) ([]int, error) {
	if len(from) > len(to) {
		return nil, fmt.Errorf("broadcastStrides: %w: %v vs %v",
			ErrIncompatibleShapes, from, to)
	}

	native := rowMajorStrides(from)
	strides := make([]int, len(to))
	offset := len(to) - len(from)
	for i := range to {
		if i < offset {
			continue
		}
		d := from[i-offset]
		switch {
		case d == to[i]:
			strides[i] = native[i-offset]
		case d == 1:
			strides[i] = 0
		default:
			return nil, fmt.Errorf("broadcastStrides: %w: %v vs %v",
				ErrIncompatibleShapes, from, to)
		}
	}
	return strides, nil
}

// BroadcastTo materializes t at the given shape, repeating values along
// broadcast axes. The result is always freshly allocated unless t
// already has the target shape.
func BroadcastTo(t *tensor.Dense, shape tensor.Shape) (*tensor.Dense, error) {
	if t.Shape().Eq(shape) {
		return t, nil
	}

	strides, err := broadcastStrides(t.Shape(), shape)
	if err != nil {
		return nil, fmt.Errorf("broadcastTo: %w", err)
	}

	size := 1
	for _, d := range shape {
		size *= d
	}

	switch t.Dtype() {
	case tensor.Float64:
		in, err := Float64s(t)
		if err != nil {
			return nil, fmt.Errorf("broadcastTo: %v", err)
		}
		out := make([]float64, size)
		odometer(shape, strides, func(i, offset int) {
			out[i] = in[offset]
		})
		return FromFloat64s(shape, out), nil
	case tensor.Float32:
		in, err := Float32s(t)
		if err != nil {
			return nil, fmt.Errorf("broadcastTo: %v", err)
		}
		out := make([]float32, size)
		odometer(shape, strides, func(i, offset int) {
			out[i] = in[offset]
		})
		return FromFloat32s(shape, out), nil
	default:
		return nil, fmt.Errorf("broadcastTo: dtype %v not supported",
			t.Dtype())
	}
}
