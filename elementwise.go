package godist

import (
	"fmt"
	"math"

	"github.com/chewxy/math32"
	"gorgonia.org/tensor"
)

// Binary kernels. All of them broadcast their operands under the
// trailing-dimension rule and require matching dtypes.

// Add returns a + b elementwise.
func Add(a, b *tensor.Dense) (*tensor.Dense, error) {
	return binary("add", a, b,
		func(x, y float64) float64 { return x + y },
		func(x, y float32) float32 { return x + y })
}

// Sub returns a - b elementwise.
func Sub(a, b *tensor.Dense) (*tensor.Dense, error) {
	return binary("sub", a, b,
		func(x, y float64) float64 { return x - y },
		func(x, y float32) float32 { return x - y })
}

// Mul returns a * b elementwise.
func Mul(a, b *tensor.Dense) (*tensor.Dense, error) {
	return binary("mul", a, b,
		func(x, y float64) float64 { return x * y },
		func(x, y float32) float32 { return x * y })
}

// Div returns a / b elementwise.
func Div(a, b *tensor.Dense) (*tensor.Dense, error) {
	return binary("div", a, b,
		func(x, y float64) float64 { return x / y },
		func(x, y float32) float32 { return x / y })
}

// Unary kernels.

// Exp returns e**t elementwise.
func Exp(t *tensor.Dense) (*tensor.Dense, error) {
	return Map(t, math.Exp, math32.Exp)
}

// Log returns the natural logarithm of t elementwise.
func Log(t *tensor.Dense) (*tensor.Dense, error) {
	return Map(t, math.Log, math32.Log)
}

// Neg returns -t elementwise.
func Neg(t *tensor.Dense) (*tensor.Dense, error) {
	return Map(t,
		func(x float64) float64 { return -x },
		func(x float32) float32 { return -x })
}

// Scale returns c * t elementwise. c is narrowed to the dtype of t.
func Scale(t *tensor.Dense, c float64) (*tensor.Dense, error) {
	c32 := float32(c)
	return Map(t,
		func(x float64) float64 { return c * x },
		func(x float32) float32 { return c32 * x })
}

// Shift returns t + c elementwise. c is narrowed to the dtype of t.
func Shift(t *tensor.Dense, c float64) (*tensor.Dense, error) {
	c32 := float32(c)
	return Map(t,
		func(x float64) float64 { return x + c },
		func(x float32) float32 { return x + c32 })
}

// Zip applies f64 or f32 to broadcast-aligned elements of a and b,
// depending on their shared dtype.
func Zip(a, b *tensor.Dense, f64 func(x, y float64) float64,
	f32 func(x, y float32) float32) (*tensor.Dense, error) {

	return binary("zip", a, b, f64, f32)
}

// Map applies f64 or f32 to every element of t, depending on its dtype.
func Map(t *tensor.Dense, f64 func(float64) float64,
	f32 func(float32) float32) (*tensor.Dense, error) {

	shape := t.Shape().Clone()
	switch t.Dtype() {
	case tensor.Float64:
		in, err := Float64s(t)
		if err != nil {
			return nil, fmt.Errorf("map: %v", err)
		}
		out := make([]float64, len(in))
		for i, x := range in {
			out[i] = f64(x)
		}
		return FromFloat64s(shape, out), nil
	case tensor.Float32:
		in, err := Float32s(t)
		if err != nil {
			return nil, fmt.Errorf("map: %v", err)
		}
		out := make([]float32, len(in))
		for i, x := range in {
			out[i] = f32(x)
		}
		return FromFloat32s(shape, out), nil
	default:
		return nil, fmt.Errorf("map: dtype %v not supported", t.Dtype())
	}
}

func binary(op string, a, b *tensor.Dense, f64 func(x, y float64) float64,
	f32 func(x, y float32) float32) (*tensor.Dense, error) {

	if a.Dtype() != b.Dtype() {
		return nil, fmt.Errorf("%v: expected operands to have the same "+
			"dtype but got %v and %v", op, a.Dtype(), b.Dtype())
	}

	shape, err := BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, fmt.Errorf("%v: %w", op, err)
	}
	sa, err := broadcastStrides(a.Shape(), shape)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", op, err)
	}
	sb, err := broadcastStrides(b.Shape(), shape)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", op, err)
	}

	size := 1
	for _, d := range shape {
		size *= d
	}

	switch a.Dtype() {
	case tensor.Float64:
		da, err := Float64s(a)
		if err != nil {
			return nil, fmt.Errorf("%v: %v", op, err)
		}
		db, err := Float64s(b)
		if err != nil {
			return nil, fmt.Errorf("%v: %v", op, err)
		}
		out := make([]float64, size)
		odometer2(shape, sa, sb, func(i, oa, ob int) {
			out[i] = f64(da[oa], db[ob])
		})
		return FromFloat64s(shape, out), nil
	case tensor.Float32:
		da, err := Float32s(a)
		if err != nil {
			return nil, fmt.Errorf("%v: %v", op, err)
		}
		db, err := Float32s(b)
		if err != nil {
			return nil, fmt.Errorf("%v: %v", op, err)
		}
		out := make([]float32, size)
		odometer2(shape, sa, sb, func(i, oa, ob int) {
			out[i] = f32(da[oa], db[ob])
		})
		return FromFloat32s(shape, out), nil
	default:
		return nil, fmt.Errorf("%v: dtype %v not supported", op, a.Dtype())
	}
}

// odometer2 is odometer over two stride sets at once.
func odometer2(shape tensor.Shape, sa, sb []int, fn func(i, oa, ob int)) {
	size := 1
	for _, d := range shape {
		size *= d
	}
	coords := make([]int, len(shape))
	oa, ob := 0, 0
	for i := 0; i < size; i++ {
		fn(i, oa, ob)

		for axis := len(shape) - 1; axis >= 0; axis-- {
			coords[axis]++
			oa += sa[axis]
			ob += sb[axis]
			if coords[axis] < shape[axis] {
				break
			}
			oa -= coords[axis] * sa[axis]
			ob -= coords[axis] * sb[axis]
			coords[axis] = 0
		}
	}
}
