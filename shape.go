// Package godist provides the shape algebra, broadcasting, and
// reduction kernels behind the distribution combinators in the
// distribution and bijector sub-packages.
//
// Tensors laid out by the combinators always order their axes as four
// contiguous groups:
//
//	lead ++ batch ++ sample ++ event
//
// where lead is a caller-supplied prefix (e.g. chains), batch indexes
// independent parameterizations, sample indexes i.i.d. replicates, and
// event spans a single outcome. The permutation helpers in this file
// rearrange those groups without ever relying on implicit broadcasting
// to hide a transposition mistake.
package godist

import (
	"fmt"

	"gorgonia.org/tensor"
)

// Concat returns the concatenation of a and b as a fresh shape.
func Concat(a, b tensor.Shape) tensor.Shape {
	out := make(tensor.Shape, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// SampleShapeOf validates dims as a sample shape. Dimensions must be
// non-negative.
func SampleShapeOf(dims ...int) (tensor.Shape, error) {
	for _, d := range dims {
		if d < 0 {
			return nil, fmt.Errorf("sampleShapeOf: dimension %v is "+
				"negative: %w", d, ErrSampleShape)
		}
	}
	out := make(tensor.Shape, len(dims))
	copy(out, dims)
	return out, nil
}

// NormalizeSampleShape validates v as a sample shape and returns it in
// vector form. A scalar v is treated as a single sample axis of that
// size; a vector v is taken as the sample dimensions directly. Any
// other rank fails with ErrSampleShape, as does a negative dimension.
func NormalizeSampleShape(v *tensor.Dense) (tensor.Shape, error) {
	if v == nil {
		return nil, fmt.Errorf("normalizeSampleShape: nil value: %w",
			ErrSampleShape)
	}
	if v.Dims() > 1 {
		return nil, fmt.Errorf("normalizeSampleShape: got rank %v: %w",
			v.Dims(), ErrSampleShape)
	}

	var dims []int
	switch data := v.Data().(type) {
	case int:
		dims = []int{data}
	case []int:
		dims = data
	default:
		return nil, fmt.Errorf("normalizeSampleShape: expected an "+
			"integer valued tensor but got %T: %w", v.Data(),
			ErrSampleShape)
	}

	return SampleShapeOf(dims...)
}

// ShapeSource provides the sample shape of a Sample distribution.
// Implementations backed by mutable values re-read and re-validate the
// value on every call, so shape queries made after a mutation observe
// the new value. Callers snapshot the result once per logical operation.
type ShapeSource interface {
	SampleShape() (tensor.Shape, error)
}

// Static is an immutable ShapeSource. The shape is assumed to have been
// validated at construction.
type Static tensor.Shape

func (s Static) SampleShape() (tensor.Shape, error) {
	return tensor.Shape(s), nil
}

// ShapeVar is a mutable ShapeSource over a tensor value. Validation
// runs at every resolution rather than at construction, so an invalid
// assignment surfaces as a DeferredError from the next operation that
// resolves the shape.
type ShapeVar struct {
	val *tensor.Dense
}

// NewShapeVar returns a ShapeVar holding val. The value is not
// validated here.
func NewShapeVar(val *tensor.Dense) *ShapeVar {
	return &ShapeVar{val: val}
}

// Assign replaces the held value. The new value is validated on the
// next resolution.
func (v *ShapeVar) Assign(val *tensor.Dense) { v.val = val }

func (v *ShapeVar) SampleShape() (tensor.Shape, error) {
	shape, err := NormalizeSampleShape(v.val)
	if err != nil {
		return nil, &DeferredError{Err: err}
	}
	return shape, nil
}

// SwapBlocks returns the axis permutation that exchanges the two middle
// blocks of a tensor laid out as four contiguous axis groups of the
// given ranks:
//
//	lead ++ first ++ second ++ trail  ->  lead ++ second ++ first ++ trail
//
// Entry i of the result is the input axis that lands at output axis i.
func SwapBlocks(lead, first, second, trail int) []int {
	perm := make([]int, 0, lead+first+second+trail)
	for i := 0; i < lead; i++ {
		perm = append(perm, i)
	}
	for i := 0; i < second; i++ {
		perm = append(perm, lead+first+i)
	}
	for i := 0; i < first; i++ {
		perm = append(perm, lead+i)
	}
	for i := 0; i < trail; i++ {
		perm = append(perm, lead+first+second+i)
	}
	return perm
}

// FrontPermutation returns the axis permutation that moves the block of
// n axes starting at start to the front, preserving the relative order
// of all other axes.
func FrontPermutation(start, n, rank int) []int {
	perm := make([]int, 0, rank)
	for i := start; i < start+n; i++ {
		perm = append(perm, i)
	}
	for i := 0; i < rank; i++ {
		if i < start || i >= start+n {
			perm = append(perm, i)
		}
	}
	return perm
}

// InversePermutation returns the permutation undoing perm.
func InversePermutation(perm []int) []int {
	inv := make([]int, len(perm))
	for i, p := range perm {
		inv[p] = i
	}
	return inv
}

// IsIdentityPermutation returns whether perm maps every axis to itself.
func IsIdentityPermutation(perm []int) bool {
	for i, p := range perm {
		if i != p {
			return false
		}
	}
	return true
}
