package distribution

import (
	"fmt"

	"github.com/samuelfneumann/godist"
	"gorgonia.org/tensor"
)

// numElements returns the number of elements a shape spans. Empty
// shapes are scalar and span one element.
func numElements(shape tensor.Shape) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// reshaped returns a fresh tensor holding the elements of t laid out
// row-major under shape. The element counts must agree.
func reshaped(t *tensor.Dense, shape tensor.Shape) (*tensor.Dense, error) {
	if numElements(t.Shape()) != numElements(shape) {
		return nil, fmt.Errorf("reshaped: cannot reshape %v into %v",
			t.Shape(), shape)
	}

	switch t.Dtype() {
	case tensor.Float64:
		data, err := godist.Float64s(t)
		if err != nil {
			return nil, fmt.Errorf("reshaped: %v", err)
		}
		out := make([]float64, len(data))
		copy(out, data)
		return godist.FromFloat64s(shape, out), nil
	case tensor.Float32:
		data, err := godist.Float32s(t)
		if err != nil {
			return nil, fmt.Errorf("reshaped: %v", err)
		}
		out := make([]float32, len(data))
		copy(out, data)
		return godist.FromFloat32s(shape, out), nil
	default:
		return nil, fmt.Errorf("reshaped: dtype %v not supported", t.Dtype())
	}
}

// wideFloats returns the elements of t widened to float64, for handing
// parameters to gonum samplers.
func wideFloats(t *tensor.Dense) ([]float64, error) {
	switch t.Dtype() {
	case tensor.Float64:
		return godist.Float64s(t)
	case tensor.Float32:
		data, err := godist.Float32s(t)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(data))
		for i, v := range data {
			out[i] = float64(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("wideFloats: dtype %v not supported",
			t.Dtype())
	}
}

// fromWide narrows a float64 sample buffer back to dt and shapes it.
func fromWide(shape tensor.Shape, data []float64,
	dt tensor.Dtype) (*tensor.Dense, error) {

	switch dt {
	case tensor.Float64:
		return godist.FromFloat64s(shape, data), nil
	case tensor.Float32:
		out := make([]float32, len(data))
		for i, v := range data {
			out[i] = float32(v)
		}
		return godist.FromFloat32s(shape, out), nil
	default:
		return nil, fmt.Errorf("fromWide: dtype %v not supported", dt)
	}
}

// sampleEach fills a leading ++ batch tensor by drawing one variate per
// element, batch index varying fastest, using draw(b) for batch cell b.
func sampleEach(leading, batch tensor.Shape, dt tensor.Dtype,
	draw func(b int) float64) (*tensor.Dense, error) {

	reps := numElements(leading)
	cells := numElements(batch)

	out := make([]float64, reps*cells)
	for i := 0; i < reps; i++ {
		for b := 0; b < cells; b++ {
			out[i*cells+b] = draw(b)
		}
	}
	return fromWide(godist.Concat(leading, batch), out, dt)
}

// checkParams validates that a distribution's parameter tensors agree
// in shape and dtype, and that the dtype is a supported float type.
func checkParams(op string, a, b *tensor.Dense) error {
	if !a.Shape().Eq(b.Shape()) {
		return fmt.Errorf("%v: expected parameters to have the same "+
			"shape but got %v and %v", op, a.Shape(), b.Shape())
	}
	if a.Dtype() != b.Dtype() {
		return fmt.Errorf("%v: expected parameters to have the same "+
			"dtype but got %v and %v", op, a.Dtype(), b.Dtype())
	}
	if a.Dtype() != tensor.Float64 && a.Dtype() != tensor.Float32 {
		return fmt.Errorf("%v: dtype %v not supported", op, a.Dtype())
	}
	return nil
}
