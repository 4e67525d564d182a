package distribution

import (
	"fmt"

	"github.com/samuelfneumann/godist"
	"gorgonia.org/tensor"
)

// KL returns the Kullback-Leibler divergence KL(p || q) per batch
// element. Divergences are registered for matching distribution kinds
// only; mismatched kinds fail with godist.ErrUnsupported.
func KL(p, q Distribution) (*tensor.Dense, error) {
	switch a := p.(type) {
	case *Sample:
		b, ok := q.(*Sample)
		if !ok {
			return nil, klMismatch(p, q)
		}
		return klSample(a, b)
	case *Independent:
		b, ok := q.(*Independent)
		if !ok {
			return nil, klMismatch(p, q)
		}
		return klIndependent(a, b)
	case *Normal:
		b, ok := q.(*Normal)
		if !ok {
			return nil, klMismatch(p, q)
		}
		return klNormal(a, b)
	case *Poisson:
		b, ok := q.(*Poisson)
		if !ok {
			return nil, klMismatch(p, q)
		}
		return klPoisson(a, b)
	default:
		return nil, fmt.Errorf("kl: no divergence registered for %T: %w",
			p, godist.ErrUnsupported)
	}
}

func klMismatch(p, q Distribution) error {
	return fmt.Errorf("kl: no divergence registered for %T vs %T: %w",
		p, q, godist.ErrUnsupported)
}

// klSample is additive over i.i.d. replicates: the divergence of the
// bases scaled by the number of replicates. The sample shapes must
// agree, since the repeated events must live in the same space.
func klSample(p, q *Sample) (*tensor.Dense, error) {
	ps, err := p.shape.SampleShape()
	if err != nil {
		return nil, fmt.Errorf("kl: %w", err)
	}
	qs, err := q.shape.SampleShape()
	if err != nil {
		return nil, fmt.Errorf("kl: %w", err)
	}
	if !ps.Eq(qs) {
		return nil, fmt.Errorf("kl: sample shapes %v and %v differ: %w",
			ps, qs, godist.ErrIncompatibleShapes)
	}

	inner, err := KL(p.base, q.base)
	if err != nil {
		return nil, err
	}
	return godist.Scale(inner, float64(numElements(ps)))
}

func klIndependent(p, q *Independent) (*tensor.Dense, error) {
	if p.dims != q.dims {
		return nil, fmt.Errorf("kl: reinterpreted ranks %v and %v "+
			"differ: %w", p.dims, q.dims, godist.ErrIncompatibleShapes)
	}

	inner, err := KL(p.base, q.base)
	if err != nil {
		return nil, err
	}
	out, err := godist.ReduceAdd(inner, trailing(inner.Dims(), p.dims)...)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}
	return out, nil
}

// klNormal is the closed form
//
//	log(σq/σp) + (σp² + (μp-μq)²) / (2 σq²) - 1/2
//
// broadcast over the batch shapes.
func klNormal(p, q *Normal) (*tensor.Dense, error) {
	ratio, err := godist.Div(q.scale, p.scale)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}
	out, err := godist.Log(ratio)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}

	d, err := godist.Sub(p.loc, q.loc)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}
	num, err := godist.Zip(p.scale, d,
		func(s, v float64) float64 { return s*s + v*v },
		func(s, v float32) float32 { return s*s + v*v })
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}
	frac, err := godist.Zip(num, q.scale,
		func(n, s float64) float64 { return n / (2 * s * s) },
		func(n, s float32) float32 { return n / (2 * s * s) })
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}

	out, err = godist.Add(out, frac)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}
	return godist.Shift(out, -0.5)
}

// klPoisson is the closed form λp log(λp/λq) - λp + λq.
func klPoisson(p, q *Poisson) (*tensor.Dense, error) {
	ratio, err := godist.Div(p.rate, q.rate)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}
	lr, err := godist.Log(ratio)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}
	out, err := godist.Mul(p.rate, lr)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}
	out, err = godist.Sub(out, p.rate)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}
	out, err = godist.Add(out, q.rate)
	if err != nil {
		return nil, fmt.Errorf("kl: %v", err)
	}
	return out, nil
}
