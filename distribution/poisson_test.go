package distribution

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/samuelfneumann/godist"
	expRand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	"gorgonia.org/tensor"
)

func TestPoissonLogProb(t *testing.T) {
	const tolerance float64 = 0.00001
	const tests int = 30

	for i := 0; i < tests; i++ {
		rate := 0.5 + rand.Float64()*10
		ref := distuv.Poisson{Lambda: rate}

		p, err := NewPoisson(tensor.New(tensor.FromScalar(rate)))
		if err != nil {
			t.Fatal(err)
		}

		k := float64(rand.Intn(20))
		lp, err := p.LogProb(tensor.New(tensor.FromScalar(k)))
		if err != nil {
			t.Fatal(err)
		}
		got, err := godist.Float64s(lp)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got[0]-ref.LogProb(k)) > tolerance {
			t.Errorf("expected %v but got %v", ref.LogProb(k), got[0])
		}
	}
}

func TestPoissonNegativeHasNoMass(t *testing.T) {
	p, err := NewPoisson(tensor.New(tensor.FromScalar(2.0)))
	if err != nil {
		t.Fatal(err)
	}

	lp, err := p.LogProb(tensor.New(tensor.FromScalar(-1.0)))
	if err != nil {
		t.Fatal(err)
	}
	got, err := godist.Float64s(lp)
	if err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(got[0], -1) {
		t.Errorf("expected -Inf but got %v", got[0])
	}
}

func TestPoissonCdf(t *testing.T) {
	const tolerance float64 = 0.00001
	const tests int = 20

	for i := 0; i < tests; i++ {
		rate := 0.5 + rand.Float64()*10
		ref := distuv.Poisson{Lambda: rate}

		p, err := NewPoisson(tensor.New(tensor.FromScalar(rate)))
		if err != nil {
			t.Fatal(err)
		}

		k := float64(rand.Intn(20))
		cdf, err := p.Cdf(tensor.New(tensor.FromScalar(k)))
		if err != nil {
			t.Fatal(err)
		}
		got, err := godist.Float64s(cdf)
		if err != nil {
			t.Fatal(err)
		}
		if math.Abs(got[0]-ref.CDF(k)) > tolerance {
			t.Errorf("expected %v but got %v", ref.CDF(k), got[0])
		}
	}
}

func TestPoissonMoments(t *testing.T) {
	const tolerance float64 = 0.00001

	rate := godist.FromFloat64s(tensor.Shape{2}, []float64{2.5, 7})
	p, err := NewPoisson(rate)
	if err != nil {
		t.Fatal(err)
	}

	mean, err := p.Mean()
	if err != nil {
		t.Fatal(err)
	}
	sd, err := p.StdDev()
	if err != nil {
		t.Fatal(err)
	}
	mode, err := p.Mode()
	if err != nil {
		t.Fatal(err)
	}

	m, err := godist.Float64s(mean)
	if err != nil {
		t.Fatal(err)
	}
	s, err := godist.Float64s(sd)
	if err != nil {
		t.Fatal(err)
	}
	mo, err := godist.Float64s(mode)
	if err != nil {
		t.Fatal(err)
	}

	rates := []float64{2.5, 7}
	for i, r := range rates {
		if math.Abs(m[i]-r) > tolerance {
			t.Errorf("expected mean %v but got %v", r, m[i])
		}
		if math.Abs(s[i]-math.Sqrt(r)) > tolerance {
			t.Errorf("expected stddev %v but got %v", math.Sqrt(r), s[i])
		}
		if math.Abs(mo[i]-math.Floor(r)) > tolerance {
			t.Errorf("expected mode %v but got %v", math.Floor(r), mo[i])
		}
	}

	if _, err := p.Entropy(); !errors.Is(err, godist.ErrUnsupported) {
		t.Errorf("expected ErrUnsupported but got %v", err)
	}
	if b := p.DefaultEventSpaceBijector(); b != nil {
		t.Error("expected no default event space bijector for a discrete " +
			"distribution")
	}
}

func TestPoissonSampleMean(t *testing.T) {
	const draws int = 10000
	const tolerance float64 = 0.2

	rate := 3.0
	p, err := NewPoisson(tensor.New(tensor.FromScalar(rate)))
	if err != nil {
		t.Fatal(err)
	}

	src := expRand.NewSource(23)
	samples, err := p.Sample(tensor.Shape{draws}, src)
	if err != nil {
		t.Fatal(err)
	}
	data, err := godist.Float64s(samples)
	if err != nil {
		t.Fatal(err)
	}

	var mean float64
	for _, v := range data {
		if v < 0 || v != math.Floor(v) {
			t.Fatalf("expected non-negative integer samples but got %v", v)
		}
		mean += v
	}
	mean /= float64(draws)
	if math.Abs(mean-rate) > tolerance {
		t.Errorf("expected mean near %v but got %v", rate, mean)
	}
}

func TestPoissonRejectsNonPositiveRate(t *testing.T) {
	if _, err := NewPoisson(tensor.New(tensor.FromScalar(0.0))); err == nil {
		t.Error("expected an error for a non-positive rate")
	}
}
