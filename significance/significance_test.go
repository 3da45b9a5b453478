package significance

import (
	"errors"
	"testing"

	"github.com/phaselab/itpc/montecarlo"
	"github.com/phaselab/itpc/stats/circular"
)

// ramp returns the values 0, 1, ..., n-1 as a distribution.
func ramp(n int) montecarlo.Distribution {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = float64(i)
	}
	return montecarlo.NewDistribution(samples)
}

func TestBoundsValidation(t *testing.T) {
	d := ramp(100)

	if _, _, err := Bounds(d, 0); !errors.Is(err, ErrInvalidConfidence) {
		t.Fatalf("confidence 0: expected ErrInvalidConfidence, got %v", err)
	}
	if _, _, err := Bounds(d, 1); !errors.Is(err, ErrInvalidConfidence) {
		t.Fatalf("confidence 1: expected ErrInvalidConfidence, got %v", err)
	}
	if _, _, err := Bounds(montecarlo.NewDistribution(nil), 0.95); !errors.Is(err, ErrEmptyDistribution) {
		t.Fatalf("expected ErrEmptyDistribution, got %v", err)
	}
}

func TestBoundsFloorIndexing(t *testing.T) {
	// n=1000, confidence=0.95: lower index floor(1000*0.025)=25,
	// upper index floor(1000*0.975)=975.
	d := ramp(1000)

	lower, upper, err := Bounds(d, 0.95)
	if err != nil {
		t.Fatalf("Bounds: %v", err)
	}
	if lower != 25 {
		t.Fatalf("lower = %v, want 25", lower)
	}
	if upper != 975 {
		t.Fatalf("upper = %v, want 975", upper)
	}
}

func TestBoundsUnsortedInput(t *testing.T) {
	d := montecarlo.NewDistribution([]float64{5, 1, 4, 2, 3, 0, 9, 7, 8, 6})

	lower, upper, err := Bounds(d, 0.8)
	if err != nil {
		t.Fatalf("Bounds: %v", err)
	}
	// n=10: lower floor(10*0.1)=1 -> 1, upper floor(10*0.9)=9 -> 9.
	if lower != 1 || upper != 9 {
		t.Fatalf("bounds = (%v, %v), want (1, 9)", lower, upper)
	}
}

func TestBoundsDegenerateCollapse(t *testing.T) {
	d := montecarlo.NewDistribution([]float64{0.4})

	lower, upper, err := Bounds(d, 0.95)
	if err != nil {
		t.Fatalf("Bounds: %v", err)
	}
	if lower != upper || lower != 0.4 {
		t.Fatalf("bounds = (%v, %v), want collapsed (0.4, 0.4)", lower, upper)
	}

	// A zero-width interval still evaluates without error.
	v, err := Evaluate(0.4, d, 0.95)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Exceeds {
		t.Fatal("observed equal to collapsed bound must not exceed")
	}
}

func TestEvaluateStrictUpperBound(t *testing.T) {
	d := ramp(1000)

	// Observed exactly at the distribution maximum: upper bound is the
	// value at index 975, so 999 exceeds, but 975 itself must not.
	v, err := Evaluate(975, d, 0.95)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Exceeds {
		t.Fatal("observed == upper bound must not exceed under strict >")
	}

	v, err = Evaluate(975.0001, d, 0.95)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !v.Exceeds {
		t.Fatal("observed just above the bound must exceed")
	}

	if v.Lower != 25 || v.Upper != 975 {
		t.Fatalf("verdict bounds (%v, %v), want (25, 975)", v.Lower, v.Upper)
	}
}

func TestEvaluateObservedAtDistributionMax(t *testing.T) {
	d, err := montecarlo.NewEngine(montecarlo.WithSeed(11)).Generate(circular.Resultant, 30, 1000)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	sorted := d.Sorted()
	maxVal := sorted[len(sorted)-1]

	v, err := Evaluate(maxVal, d, 0.95)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if v.Upper > maxVal {
		t.Fatalf("upper bound %v above distribution max %v", v.Upper, maxVal)
	}
	// The max is above the 97.5% bound in any non-degenerate draw, so it
	// exceeds; equality with the bound itself must not.
	vAtBound, err := Evaluate(v.Upper, d, 0.95)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if vAtBound.Exceeds {
		t.Fatal("observed exactly equal to the upper bound must yield Exceeds == false")
	}
}

func TestEvaluateEachSemantics(t *testing.T) {
	d := ramp(1000) // bounds (25, 975)

	v, err := EvaluateEach([]float64{10, 980, 500}, d, 0.95)
	if err != nil {
		t.Fatalf("EvaluateEach: %v", err)
	}

	want := []bool{false, true, false}
	for i := range want {
		if v.Exceeds[i] != want[i] {
			t.Fatalf("element %d: Exceeds = %v, want %v", i, v.Exceeds[i], want[i])
		}
	}
	if !v.Any() {
		t.Fatal("Any() must be true when one element exceeds")
	}
	if v.All() {
		t.Fatal("All() must be false when some elements do not exceed")
	}

	if _, err := EvaluateEach(nil, d, 0.95); !errors.Is(err, ErrNoObserved) {
		t.Fatalf("expected ErrNoObserved, got %v", err)
	}
}

// TestUpperTailCalibration checks the statistical property that roughly 2.5%
// of fresh null draws land above the 95% upper bound.
func TestUpperTailCalibration(t *testing.T) {
	engine := montecarlo.NewEngine(montecarlo.WithSeed(314159))

	null, err := engine.ForCell("bounds").Generate(circular.Resultant, 30, 1000)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	_, upper, err := Bounds(null, 0.95)
	if err != nil {
		t.Fatalf("Bounds: %v", err)
	}

	fresh, err := engine.ForCell("fresh").Generate(circular.Resultant, 30, 4000)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	above := 0
	for _, v := range fresh.Samples() {
		if v > upper {
			above++
		}
	}
	frac := float64(above) / float64(fresh.Len())

	// 2.5% nominal; generous tolerance for Monte Carlo noise.
	if frac < 0.005 || frac > 0.06 {
		t.Fatalf("upper-tail fraction = %v, want ~0.025", frac)
	}
}
