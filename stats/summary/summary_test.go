package summary

import (
	"errors"
	"math"
	"testing"
)

const tolerance = 1e-12

func TestDescribe(t *testing.T) {
	s, err := Describe([]float64{0.2, 0.4, 0.6, 0.8, 1.0})
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}

	if s.N != 5 {
		t.Fatalf("N = %d, want 5", s.N)
	}
	if math.Abs(s.Mean-0.6) > tolerance {
		t.Fatalf("Mean = %v, want 0.6", s.Mean)
	}
	if s.Min != 0.2 || s.Max != 1.0 {
		t.Fatalf("Min/Max = %v/%v, want 0.2/1.0", s.Min, s.Max)
	}
	if math.Abs(s.Median-0.6) > tolerance {
		t.Fatalf("Median = %v, want 0.6", s.Median)
	}

	// Population std of {0.2,...,1.0}: sqrt(mean of squared deviations).
	want := math.Sqrt((0.16 + 0.04 + 0 + 0.04 + 0.16) / 5)
	if math.Abs(s.Std-want) > tolerance {
		t.Fatalf("Std = %v, want %v", s.Std, want)
	}
}

func TestDescribeEmpty(t *testing.T) {
	if _, err := Describe(nil); !errors.Is(err, ErrEmptyValues) {
		t.Fatalf("expected ErrEmptyValues, got %v", err)
	}
}

func TestWilcoxonKnownRanks(t *testing.T) {
	// Differences: {1, -2, 3, -4, 5} -> |d| ranks 1..5.
	// W+ = 1+3+5 = 9, W- = 2+4 = 6, statistic = 6.
	a := []float64{1, 0, 3, 0, 5}
	b := []float64{0, 2, 0, 4, 0}

	r, err := Wilcoxon(a, b)
	if err != nil {
		t.Fatalf("Wilcoxon: %v", err)
	}
	if r.Statistic != 6 {
		t.Fatalf("statistic = %v, want 6", r.Statistic)
	}
	if r.N != 5 {
		t.Fatalf("N = %d, want 5", r.N)
	}
	if r.PValue <= 0 || r.PValue > 1 {
		t.Fatalf("p = %v out of (0,1]", r.PValue)
	}
	if r.Significance() != "ns" {
		t.Fatalf("significance = %q, want ns for balanced small sample", r.Significance())
	}
}

func TestWilcoxonOneSidedShift(t *testing.T) {
	// Consistent positive shift over 30 pairs: W- = 0, strongly significant.
	a := make([]float64, 30)
	b := make([]float64, 30)
	for i := range a {
		a[i] = float64(i+1) * 0.01
		b[i] = a[i] + 0.05 + 0.001*float64(i)
	}

	r, err := Wilcoxon(a, b)
	if err != nil {
		t.Fatalf("Wilcoxon: %v", err)
	}
	if r.Statistic != 0 {
		t.Fatalf("statistic = %v, want 0 for uniform shift", r.Statistic)
	}
	if r.PValue >= 0.01 {
		t.Fatalf("p = %v, want < 0.01 for a consistent shift of 30 pairs", r.PValue)
	}
	if r.Significance() != "**" {
		t.Fatalf("significance = %q, want **", r.Significance())
	}
}

func TestWilcoxonDropsZeroDiffs(t *testing.T) {
	a := []float64{1, 2, 3, 4}
	b := []float64{1, 2, 5, 2}

	r, err := Wilcoxon(a, b)
	if err != nil {
		t.Fatalf("Wilcoxon: %v", err)
	}
	if r.N != 2 {
		t.Fatalf("N = %d, want 2 after dropping zero differences", r.N)
	}
}

func TestWilcoxonDegenerate(t *testing.T) {
	if _, err := Wilcoxon(nil, nil); !errors.Is(err, ErrNoPairs) {
		t.Fatalf("expected ErrNoPairs, got %v", err)
	}
	if _, err := Wilcoxon([]float64{1, 2}, []float64{1, 2}); !errors.Is(err, ErrAllZeroDiff) {
		t.Fatalf("expected ErrAllZeroDiff, got %v", err)
	}
}

func TestWilcoxonLengthMismatch(t *testing.T) {
	a := []float64{1, 2, 3, 10, 20}
	b := []float64{2, 3, 4}

	if _, err := Wilcoxon(a, b); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}
}

func TestPairwiseWilcoxonOrder(t *testing.T) {
	values := map[string]map[int]float64{
		"GN": {1: 0.5, 2: 0.6, 3: 0.7, 4: 0.45},
		"GS": {1: 0.2, 2: 0.3, 3: 0.25, 4: 0.22},
		"UN": {1: 0.21, 2: 0.31, 3: 0.26, 4: 0.23},
	}

	comps, err := PairwiseWilcoxon(values, []string{"GN", "GS", "UN"})
	if err != nil {
		t.Fatalf("PairwiseWilcoxon: %v", err)
	}

	wantPairs := [][2]string{{"GN", "GS"}, {"GN", "UN"}, {"GS", "UN"}}
	if len(comps) != len(wantPairs) {
		t.Fatalf("got %d comparisons, want %d", len(comps), len(wantPairs))
	}
	for i, p := range wantPairs {
		if comps[i].A != p[0] || comps[i].B != p[1] {
			t.Fatalf("comparison %d = %s vs %s, want %s vs %s", i, comps[i].A, comps[i].B, p[0], p[1])
		}
	}
}

func TestPairwiseWilcoxonPairsByElectrode(t *testing.T) {
	// Electrode 1 is missing from GN; its GS value must be excluded rather
	// than shifting the remaining pairings onto different electrodes.
	values := map[string]map[int]float64{
		"GN": {2: 0.2, 3: 0.3, 4: 0.5},
		"GS": {1: 0.9, 2: 0.25, 3: 0.35, 4: 0.45},
	}

	comps, err := PairwiseWilcoxon(values, []string{"GN", "GS"})
	if err != nil {
		t.Fatalf("PairwiseWilcoxon: %v", err)
	}
	if len(comps) != 1 {
		t.Fatalf("got %d comparisons, want 1", len(comps))
	}

	want, err := Wilcoxon([]float64{0.2, 0.3, 0.5}, []float64{0.25, 0.35, 0.45})
	if err != nil {
		t.Fatalf("Wilcoxon: %v", err)
	}
	got := comps[0].Result
	if got.N != 3 {
		t.Fatalf("N = %d, want 3 shared electrodes", got.N)
	}
	if got.Statistic != want.Statistic || got.PValue != want.PValue {
		t.Fatalf("result %+v, want %+v (shared electrodes only)", got, want)
	}
}
