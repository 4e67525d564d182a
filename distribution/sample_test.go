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

func scalarNormal(t *testing.T, loc, scale float64) *Normal {
	t.Helper()
	n, err := NewNormal(
		tensor.New(tensor.FromScalar(loc)),
		tensor.New(tensor.FromScalar(scale)),
	)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func randomFloats(size int) []float64 {
	out := make([]float64, size)
	for i := range out {
		out[i] = (rand.Float64() - 0.5) * 2
	}
	return out
}

func TestSampleScalarBase(t *testing.T) {
	const tolerance float64 = 0.00001

	s, err := NewSample(scalarNormal(t, 0, 1), 5)
	if err != nil {
		t.Fatal(err)
	}

	if !s.BatchShape().Eq(tensor.Shape{}) {
		t.Errorf("expected an empty batch shape but got %v", s.BatchShape())
	}
	event, err := s.EventShape()
	if err != nil {
		t.Fatal(err)
	}
	if !event.Eq(tensor.Shape{5}) {
		t.Errorf("expected event shape (5) but got %v", event)
	}

	src := expRand.NewSource(7)
	samples, err := s.Sample(tensor.Shape{3}, src)
	if err != nil {
		t.Fatal(err)
	}
	if !samples.Shape().Eq(tensor.Shape{3, 5}) {
		t.Fatalf("expected shape (3, 5) but got %v", samples.Shape())
	}

	// The log density of one event is the sum of the per-replicate
	// scalar normal log densities
	xBacking := randomFloats(5)
	x := godist.FromFloat64s(tensor.Shape{5}, xBacking)
	lp, err := s.LogProb(x)
	if err != nil {
		t.Fatal(err)
	}
	if !lp.Shape().Eq(tensor.Shape{}) {
		t.Fatalf("expected a scalar but got shape %v", lp.Shape())
	}

	ref := distuv.Normal{Mu: 0, Sigma: 1}
	var expected float64
	for _, v := range xBacking {
		expected += ref.LogProb(v)
	}
	got, err := godist.Float64s(lp)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got[0]-expected) > tolerance {
		t.Errorf("expected %v but got %v", expected, got[0])
	}
}

// TestSampleNonScalarEverything exercises a batched base with an event,
// a multi-axis sample shape, and leading observation axes all at once.
// The observations are laid out lead ++ batch ++ sample ++ event and
// the log density reduces the sample and event blocks only.
func TestSampleNonScalarEverything(t *testing.T) {
	const tolerance float64 = 0.00001

	locBacking := randomFloats(6)
	loc := godist.FromFloat64s(tensor.Shape{3, 2}, locBacking)
	scale := godist.FromFloat64s(tensor.Shape{3, 2}, []float64{
		1, 1, 1, 1, 1, 1,
	})
	normal, err := NewNormal(loc, scale)
	if err != nil {
		t.Fatal(err)
	}
	base, err := NewIndependent(normal, 1)
	if err != nil {
		t.Fatal(err)
	}

	s, err := NewSample(base, 5, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !s.BatchShape().Eq(tensor.Shape{3}) {
		t.Errorf("expected batch shape (3) but got %v", s.BatchShape())
	}
	event, err := s.EventShape()
	if err != nil {
		t.Fatal(err)
	}
	if !event.Eq(tensor.Shape{5, 4, 2}) {
		t.Errorf("expected event shape (5, 4, 2) but got %v", event)
	}

	src := expRand.NewSource(13)
	samples, err := s.Sample(tensor.Shape{6, 1}, src)
	if err != nil {
		t.Fatal(err)
	}
	if !samples.Shape().Eq(tensor.Shape{6, 1, 3, 5, 4, 2}) {
		t.Fatalf("expected shape (6, 1, 3, 5, 4, 2) but got %v",
			samples.Shape())
	}

	xBacking := randomFloats(6 * 1 * 3 * 5 * 4 * 2)
	x := godist.FromFloat64s(tensor.Shape{6, 1, 3, 5, 4, 2}, xBacking)
	lp, err := s.LogProb(x)
	if err != nil {
		t.Fatal(err)
	}
	if !lp.Shape().Eq(tensor.Shape{6, 1, 3}) {
		t.Fatalf("expected shape (6, 1, 3) but got %v", lp.Shape())
	}

	got, err := godist.Float64s(lp)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 6; i++ {
		for b := 0; b < 3; b++ {
			var expected float64
			for k1 := 0; k1 < 5; k1++ {
				for k2 := 0; k2 < 4; k2++ {
					for e := 0; e < 2; e++ {
						idx := ((((i*3+b)*5+k1)*4+k2)*2 + e)
						ref := distuv.Normal{
							Mu:    locBacking[b*2+e],
							Sigma: 1,
						}
						expected += ref.LogProb(xBacking[idx])
					}
				}
			}
			if math.Abs(got[i*3+b]-expected) > tolerance {
				t.Errorf("expected %v at lead %v batch %v but got %v",
					expected, i, b, got[i*3+b])
			}
		}
	}
}

// TestSampleLayout draws from a base whose batch members are far apart
// and checks that the batch block lands ahead of the sample block.
func TestSampleLayout(t *testing.T) {
	loc := godist.FromFloat64s(tensor.Shape{2}, []float64{0, 100})
	scale := godist.FromFloat64s(tensor.Shape{2}, []float64{1, 1})
	normal, err := NewNormal(loc, scale)
	if err != nil {
		t.Fatal(err)
	}

	s, err := NewSample(normal, 3)
	if err != nil {
		t.Fatal(err)
	}

	src := expRand.NewSource(29)
	samples, err := s.Sample(tensor.Shape{}, src)
	if err != nil {
		t.Fatal(err)
	}
	if !samples.Shape().Eq(tensor.Shape{2, 3}) {
		t.Fatalf("expected shape (2, 3) but got %v", samples.Shape())
	}

	data, err := godist.Float64s(samples)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if math.Abs(data[i]) > 50 {
			t.Errorf("expected a draw near 0 at index %v but got %v", i,
				data[i])
		}
		if math.Abs(data[3+i]-100) > 50 {
			t.Errorf("expected a draw near 100 at index %v but got %v",
				3+i, data[3+i])
		}
	}
}

func TestSampleBroadcastObservation(t *testing.T) {
	const tolerance float64 = 0.00001

	s, err := NewSample(scalarNormal(t, 0, 1), 2)
	if err != nil {
		t.Fatal(err)
	}

	// A scalar observation broadcasts over the sample axes, so the log
	// density is the replicate count times the scalar log density
	lp, err := s.LogProb(tensor.New(tensor.FromScalar(0.5)))
	if err != nil {
		t.Fatal(err)
	}
	got, err := godist.Float64s(lp)
	if err != nil {
		t.Fatal(err)
	}
	expected := 2 * distuv.Normal{Mu: 0, Sigma: 1}.LogProb(0.5)
	if math.Abs(got[0]-expected) > tolerance {
		t.Errorf("expected %v but got %v", expected, got[0])
	}
}

func TestSampleMisshapenObservation(t *testing.T) {
	s, err := NewSample(scalarNormal(t, 0, 1), 3)
	if err != nil {
		t.Fatal(err)
	}

	x := godist.FromFloat64s(tensor.Shape{4}, randomFloats(4))
	_, err = s.LogProb(x)
	if !errors.Is(err, godist.ErrIncompatibleShapes) {
		t.Errorf("expected ErrIncompatibleShapes but got %v", err)
	}
}

func TestSampleSummaryStatisticsTile(t *testing.T) {
	const tolerance float64 = 0.00001

	loc := godist.FromFloat64s(tensor.Shape{3}, []float64{1, 2, 3})
	scale := godist.FromFloat64s(tensor.Shape{3}, []float64{1, 1, 1})
	normal, err := NewNormal(loc, scale)
	if err != nil {
		t.Fatal(err)
	}

	s, err := NewSample(normal, 2)
	if err != nil {
		t.Fatal(err)
	}

	mean, err := s.Mean()
	if err != nil {
		t.Fatal(err)
	}
	if !mean.Shape().Eq(tensor.Shape{3, 2}) {
		t.Fatalf("expected shape (3, 2) but got %v", mean.Shape())
	}

	got, err := godist.Float64s(mean)
	if err != nil {
		t.Fatal(err)
	}
	expected := []float64{1, 1, 2, 2, 3, 3}
	for i := range expected {
		if math.Abs(got[i]-expected[i]) > tolerance {
			t.Errorf("expected %v at index %v but got %v", expected[i], i,
				got[i])
		}
	}

	variance, err := s.Variance()
	if err != nil {
		t.Fatal(err)
	}
	if !variance.Shape().Eq(tensor.Shape{3, 2}) {
		t.Fatalf("expected shape (3, 2) but got %v", variance.Shape())
	}
}

func TestSampleEntropyScales(t *testing.T) {
	const tolerance float64 = 0.00001

	normal := scalarNormal(t, 0, 1.5)
	s, err := NewSample(normal, 3, 4)
	if err != nil {
		t.Fatal(err)
	}

	base, err := normal.Entropy()
	if err != nil {
		t.Fatal(err)
	}
	h, err := s.Entropy()
	if err != nil {
		t.Fatal(err)
	}

	baseGot, err := godist.Float64s(base)
	if err != nil {
		t.Fatal(err)
	}
	got, err := godist.Float64s(h)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got[0]-12*baseGot[0]) > tolerance {
		t.Errorf("expected %v but got %v", 12*baseGot[0], got[0])
	}
}

func TestSampleCdfFactorizes(t *testing.T) {
	const tolerance float64 = 0.00001

	s, err := NewSample(scalarNormal(t, 0, 1), 3)
	if err != nil {
		t.Fatal(err)
	}

	xBacking := []float64{-1, 0, 1}
	cdf, err := s.Cdf(godist.FromFloat64s(tensor.Shape{3}, xBacking))
	if err != nil {
		t.Fatal(err)
	}

	ref := distuv.Normal{Mu: 0, Sigma: 1}
	expected := 1.0
	for _, v := range xBacking {
		expected *= ref.CDF(v)
	}
	got, err := godist.Float64s(cdf)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got[0]-expected) > tolerance {
		t.Errorf("expected %v but got %v", expected, got[0])
	}
}

func TestSampleNests(t *testing.T) {
	inner, err := NewSample(scalarNormal(t, 0, 1), 2)
	if err != nil {
		t.Fatal(err)
	}
	outer, err := NewSample(inner, 3)
	if err != nil {
		t.Fatal(err)
	}

	event, err := outer.EventShape()
	if err != nil {
		t.Fatal(err)
	}
	if !event.Eq(tensor.Shape{3, 2}) {
		t.Fatalf("expected event shape (3, 2) but got %v", event)
	}

	src := expRand.NewSource(31)
	samples, err := outer.Sample(tensor.Shape{4}, src)
	if err != nil {
		t.Fatal(err)
	}
	if !samples.Shape().Eq(tensor.Shape{4, 3, 2}) {
		t.Fatalf("expected shape (4, 3, 2) but got %v", samples.Shape())
	}

	lp, err := outer.LogProb(samples)
	if err != nil {
		t.Fatal(err)
	}
	if !lp.Shape().Eq(tensor.Shape{4}) {
		t.Fatalf("expected shape (4) but got %v", lp.Shape())
	}
}

func TestSampleRejectsNegativeDims(t *testing.T) {
	_, err := NewSample(scalarNormal(t, 0, 1), -2)
	if !errors.Is(err, godist.ErrSampleShape) {
		t.Errorf("expected ErrSampleShape but got %v", err)
	}
}

func TestSampleMutableShape(t *testing.T) {
	v := godist.NewShapeVar(tensor.New(tensor.FromScalar(3)))
	s := NewSampleFrom(scalarNormal(t, 0, 1), v)

	event, err := s.EventShape()
	if err != nil {
		t.Fatal(err)
	}
	if !event.Eq(tensor.Shape{3}) {
		t.Errorf("expected event shape (3) but got %v", event)
	}

	// Mutations are visible to later operations
	v.Assign(tensor.New(
		tensor.WithShape(2),
		tensor.WithBacking([]int{2, 2}),
	))
	event, err = s.EventShape()
	if err != nil {
		t.Fatal(err)
	}
	if !event.Eq(tensor.Shape{2, 2}) {
		t.Errorf("expected event shape (2, 2) but got %v", event)
	}

	x := godist.FromFloat64s(tensor.Shape{2, 2}, randomFloats(4))
	if _, err := s.LogProb(x); err != nil {
		t.Fatal(err)
	}

	// A rank-2 value is not a valid sample shape; the failure surfaces
	// as a DeferredError from the next operation that resolves it
	v.Assign(tensor.New(
		tensor.WithShape(2, 1),
		tensor.WithBacking([]int{2, 2}),
	))
	_, err = s.LogProb(x)
	var deferred *godist.DeferredError
	if !errors.As(err, &deferred) {
		t.Fatalf("expected a DeferredError but got %v", err)
	}
	if !errors.Is(err, godist.ErrSampleShape) {
		t.Errorf("expected ErrSampleShape but got %v", err)
	}
}

// TestSampleKahanLogProb sums a very long float32 log density with
// compensation and checks it against a float64 reference. At this many
// terms a plain float32 sum drifts well past the tolerance.
func TestSampleKahanLogProb(t *testing.T) {
	const replicates int = 20000
	const tolerance float64 = 0.01

	rate := 2.5
	base32, err := NewPoisson(tensor.New(
		tensor.FromScalar(float32(rate))))
	if err != nil {
		t.Fatal(err)
	}
	s32, err := NewSample(base32, replicates)
	if err != nil {
		t.Fatal(err)
	}
	s32.SetUseKahanSum(true)
	if !s32.UsesKahanSum() {
		t.Fatal("expected the compensated sum to be enabled")
	}

	base64, err := NewPoisson(tensor.New(tensor.FromScalar(rate)))
	if err != nil {
		t.Fatal(err)
	}
	s64, err := NewSample(base64, replicates)
	if err != nil {
		t.Fatal(err)
	}

	src := expRand.NewSource(37)
	x64, err := s64.Sample(tensor.Shape{}, src)
	if err != nil {
		t.Fatal(err)
	}
	wide, err := godist.Float64s(x64)
	if err != nil {
		t.Fatal(err)
	}
	narrow := make([]float32, len(wide))
	for i, v := range wide {
		narrow[i] = float32(v)
	}
	x32 := godist.FromFloat32s(tensor.Shape{replicates}, narrow)

	lp32, err := s32.LogProb(x32)
	if err != nil {
		t.Fatal(err)
	}
	lp64, err := s64.LogProb(x64)
	if err != nil {
		t.Fatal(err)
	}

	got, err := godist.Float32s(lp32)
	if err != nil {
		t.Fatal(err)
	}
	expected, err := godist.Float64s(lp64)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(float64(got[0])-expected[0]) > tolerance {
		t.Errorf("expected %v but got %v", expected[0], got[0])
	}
}

func TestSampleDefaultBijectorTargetsSupport(t *testing.T) {
	low := godist.FromFloat64s(tensor.Shape{2}, []float64{-1, 0})
	high := godist.FromFloat64s(tensor.Shape{2}, []float64{1, 3})
	uniform, err := NewUniform(low, high)
	if err != nil {
		t.Fatal(err)
	}

	s, err := NewSample(uniform, 3)
	if err != nil {
		t.Fatal(err)
	}

	b := s.DefaultEventSpaceBijector()
	if b == nil {
		t.Fatal("expected a default event space bijector")
	}
	if n := b.ForwardEventNDims(); n != 1 {
		t.Errorf("expected event ndims 1 but got %v", n)
	}

	// Unconstrained values land inside each batch member's interval,
	// laid out batch (2) ++ sample (3)
	x := godist.FromFloat64s(tensor.Shape{2, 3}, []float64{
		-100, 0, 100,
		-100, 0, 100,
	})
	y, err := b.Forward(x)
	if err != nil {
		t.Fatal(err)
	}
	got, err := godist.Float64s(y)
	if err != nil {
		t.Fatal(err)
	}
	lows := []float64{-1, 0}
	highs := []float64{1, 3}
	for i, v := range got {
		row := i / 3
		if v < lows[row] || v > highs[row] {
			t.Errorf("expected a value in [%v, %v] at index %v but got %v",
				lows[row], highs[row], i, v)
		}
	}
}
