// Package distribution provides probability distributions over dense
// tensors, together with the Sample and Independent combinators that
// rearrange their batch, sample, and event axes.
package distribution

import (
	"fmt"

	"github.com/samuelfneumann/godist"
	"github.com/samuelfneumann/godist/bijector"
	"golang.org/x/exp/rand"
	"gorgonia.org/tensor"
)

// Distribution is a batch of probability distributions over tensors.
//
// Every distribution partitions the trailing axes of the tensors it
// produces and consumes into a batch block, indexing independent
// parameterizations, and an event block, spanning a single outcome.
// Sampling prepends caller-supplied leading axes ahead of both.
//
// Inputs to the density methods broadcast against the batch shape
// under the trailing-dimension rule; extra leading axes are treated as
// independent observations.
type Distribution interface {
	Dtype() tensor.Dtype
	BatchShape() tensor.Shape

	// EventShape returns the shape of a single event. Combinators that
	// derive their event shape from a mutable value resolve it here, so
	// resolution failures surface as errors.
	EventShape() (tensor.Shape, error)

	// Sample draws one sample per combination of the leading dimensions
	// and the batch shape, returning a tensor shaped
	// leading ++ batch ++ event.
	Sample(leading tensor.Shape, src rand.Source) (*tensor.Dense, error)

	// LogProb returns the log density or mass of x, reducing the event
	// block. The result is shaped like x with its event axes removed.
	LogProb(x *tensor.Dense) (*tensor.Dense, error)
	Prob(x *tensor.Dense) (*tensor.Dense, error)
	Cdf(x *tensor.Dense) (*tensor.Dense, error)

	Mean() (*tensor.Dense, error)
	StdDev() (*tensor.Dense, error)
	Variance() (*tensor.Dense, error)
	Mode() (*tensor.Dense, error)
	Entropy() (*tensor.Dense, error)

	// DefaultEventSpaceBijector maps unconstrained tensors onto the
	// distribution's support. It is nil for distributions without a
	// continuous support.
	DefaultEventSpaceBijector() bijector.Bijector
}

// Quantiler is a Distribution that can return the inverse of the Cdf
// function, sometimes called the quantile function.
type Quantiler interface {
	Distribution
	Quantile(p *tensor.Dense) (*tensor.Dense, error)
}

// errUnsupported reports that a distribution does not implement op.
func errUnsupported(dist, op string) error {
	return fmt.Errorf("%v: %v: %w", dist, op, godist.ErrUnsupported)
}
