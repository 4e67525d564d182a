package godist

import (
	"errors"
	"fmt"
)

var (
	// ErrSampleShape is returned when a sample shape argument has rank
	// greater than one or holds a negative dimension.
	ErrSampleShape = errors.New("sample_shape must be either a scalar " +
		"or a vector")

	// ErrIncompatibleShapes is returned when two shapes cannot be
	// broadcast against each other.
	ErrIncompatibleShapes = errors.New("incompatible shapes for " +
		"broadcasting")

	// ErrUnsupported is returned when an optional capability, such as a
	// summary statistic or a KL divergence pair, is not provided.
	ErrUnsupported = errors.New("unsupported operation")
)

// DeferredError wraps a shape validation failure that could only be
// detected once a mutable shape value was resolved, i.e. after a
// successful construction. Unwrap exposes the underlying shape error so
// that errors.Is(err, ErrSampleShape) and friends keep working.
type DeferredError struct {
	Err error
}

func (e *DeferredError) Error() string {
	return fmt.Sprintf("deferred validation: %v", e.Err)
}

func (e *DeferredError) Unwrap() error { return e.Err }
