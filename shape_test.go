package godist

import (
	"errors"
	"testing"

	"gorgonia.org/tensor"
)

func TestConcat(t *testing.T) {
	got := Concat(tensor.Shape{2, 3}, tensor.Shape{4})
	if !got.Eq(tensor.Shape{2, 3, 4}) {
		t.Errorf("expected (2, 3, 4) but got %v", got)
	}

	got = Concat(tensor.Shape{}, tensor.Shape{5})
	if !got.Eq(tensor.Shape{5}) {
		t.Errorf("expected (5) but got %v", got)
	}
}

func TestSampleShapeOf(t *testing.T) {
	shape, err := SampleShapeOf(3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !shape.Eq(tensor.Shape{3, 2}) {
		t.Errorf("expected (3, 2) but got %v", shape)
	}

	if _, err := SampleShapeOf(3, -1); !errors.Is(err, ErrSampleShape) {
		t.Errorf("expected ErrSampleShape but got %v", err)
	}
}

func TestNormalizeSampleShape(t *testing.T) {
	// A scalar value is a single sample axis of that size
	shape, err := NormalizeSampleShape(tensor.New(tensor.FromScalar(5)))
	if err != nil {
		t.Fatal(err)
	}
	if !shape.Eq(tensor.Shape{5}) {
		t.Errorf("expected (5) but got %v", shape)
	}

	// A vector value holds the sample dimensions directly
	shape, err = NormalizeSampleShape(tensor.New(
		tensor.WithShape(2),
		tensor.WithBacking([]int{4, 3}),
	))
	if err != nil {
		t.Fatal(err)
	}
	if !shape.Eq(tensor.Shape{4, 3}) {
		t.Errorf("expected (4, 3) but got %v", shape)
	}

	// Higher ranks are rejected
	_, err = NormalizeSampleShape(tensor.New(
		tensor.WithShape(2, 1),
		tensor.WithBacking([]int{4, 3}),
	))
	if !errors.Is(err, ErrSampleShape) {
		t.Errorf("expected ErrSampleShape but got %v", err)
	}

	// Non-integer values are rejected
	_, err = NormalizeSampleShape(tensor.New(
		tensor.WithShape(2),
		tensor.WithBacking([]float64{4, 3}),
	))
	if !errors.Is(err, ErrSampleShape) {
		t.Errorf("expected ErrSampleShape but got %v", err)
	}

	// Negative dimensions are rejected
	_, err = NormalizeSampleShape(tensor.New(
		tensor.WithShape(2),
		tensor.WithBacking([]int{4, -3}),
	))
	if !errors.Is(err, ErrSampleShape) {
		t.Errorf("expected ErrSampleShape but got %v", err)
	}
}

func TestShapeVar(t *testing.T) {
	v := NewShapeVar(tensor.New(tensor.FromScalar(3)))

	shape, err := v.SampleShape()
	if err != nil {
		t.Fatal(err)
	}
	if !shape.Eq(tensor.Shape{3}) {
		t.Errorf("expected (3) but got %v", shape)
	}

	// Reassignment is visible on the next resolution
	v.Assign(tensor.New(
		tensor.WithShape(2),
		tensor.WithBacking([]int{2, 2}),
	))
	shape, err = v.SampleShape()
	if err != nil {
		t.Fatal(err)
	}
	if !shape.Eq(tensor.Shape{2, 2}) {
		t.Errorf("expected (2, 2) but got %v", shape)
	}

	// An invalid assignment surfaces as a DeferredError wrapping
	// ErrSampleShape at resolution time, not at assignment time
	v.Assign(tensor.New(
		tensor.WithShape(2, 1),
		tensor.WithBacking([]int{2, 2}),
	))
	_, err = v.SampleShape()
	var deferred *DeferredError
	if !errors.As(err, &deferred) {
		t.Fatalf("expected a DeferredError but got %v", err)
	}
	if !errors.Is(err, ErrSampleShape) {
		t.Errorf("expected ErrSampleShape but got %v", err)
	}
}

func TestSwapBlocks(t *testing.T) {
	// lead=1, first=2, second=3, trail=1 on rank 7
	got := SwapBlocks(1, 2, 3, 1)
	expected := []int{0, 3, 4, 5, 1, 2, 6}
	if len(got) != len(expected) {
		t.Fatalf("expected %v but got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected %v but got %v", expected, got)
		}
	}

	// Empty middle blocks yield the identity
	if !IsIdentityPermutation(SwapBlocks(2, 0, 0, 3)) {
		t.Error("expected the identity permutation")
	}
}

func TestFrontPermutation(t *testing.T) {
	got := FrontPermutation(2, 2, 5)
	expected := []int{2, 3, 0, 1, 4}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected %v but got %v", expected, got)
		}
	}

	if !IsIdentityPermutation(FrontPermutation(0, 3, 3)) {
		t.Error("expected the identity permutation")
	}
}

func TestInversePermutation(t *testing.T) {
	perm := []int{2, 0, 3, 1}
	inv := InversePermutation(perm)
	for i := range perm {
		if inv[perm[i]] != i {
			t.Fatalf("expected %v to invert %v", inv, perm)
		}
	}
}
