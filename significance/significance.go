// Package significance turns an observed circular statistic and a Monte
// Carlo null distribution into empirical confidence bounds and a verdict.
package significance

import (
	"errors"
	"math"

	"github.com/phaselab/itpc/montecarlo"
)

// Errors reported before any bound is computed.
var (
	ErrInvalidConfidence = errors.New("significance: confidence level must be in (0,1)")
	ErrEmptyDistribution = errors.New("significance: null distribution is empty")
	ErrNoObserved        = errors.New("significance: observed value set is empty")
)

// Verdict is the outcome for a single observed scalar. Immutable after
// creation; consumed only for tabulation.
type Verdict struct {
	Observed float64
	Lower    float64
	Upper    float64
	Exceeds  bool // strict: Observed > Upper
}

// Bounds returns the empirical confidence bounds of the null distribution.
//
// The bounds are read directly from sorted positions (no interpolation):
//
//	lower = sorted[floor(n*(1-confidence)/2)]
//	upper = sorted[floor(n*(1+confidence)/2)]
//
// with both indices clamped to [0, n-1]. For very small distributions both
// indices can coincide; the resulting zero-width interval is a valid,
// degenerate output.
func Bounds(dist montecarlo.Distribution, confidence float64) (lower, upper float64, err error) {
	if confidence <= 0 || confidence >= 1 {
		return 0, 0, ErrInvalidConfidence
	}

	n := dist.Len()
	if n == 0 {
		return 0, 0, ErrEmptyDistribution
	}

	sorted := dist.Sorted()
	lo := clampIndex(int(math.Floor(float64(n)*(1-confidence)/2)), n)
	hi := clampIndex(int(math.Floor(float64(n)*(1+confidence)/2)), n)

	return sorted[lo], sorted[hi], nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// Evaluate compares one observed scalar against the null distribution.
// The verdict uses strict >, so an observed value exactly equal to the
// upper bound is not significant.
func Evaluate(observed float64, dist montecarlo.Distribution, confidence float64) (Verdict, error) {
	lower, upper, err := Bounds(dist, confidence)
	if err != nil {
		return Verdict{}, err
	}

	return Verdict{
		Observed: observed,
		Lower:    lower,
		Upper:    upper,
		Exceeds:  observed > upper,
	}, nil
}

// ArrayVerdict holds per-element verdicts for a non-scalar observed
// statistic (for example one value per electrode) against a single pair of
// null bounds. Whether "significant" means every element or any element is
// the caller's explicit choice via [ArrayVerdict.All] or [ArrayVerdict.Any];
// there is no hidden default.
type ArrayVerdict struct {
	Lower   float64
	Upper   float64
	Exceeds []bool
}

// Any reports whether at least one element exceeds the upper bound.
func (v ArrayVerdict) Any() bool {
	for _, e := range v.Exceeds {
		if e {
			return true
		}
	}
	return false
}

// All reports whether every element exceeds the upper bound.
func (v ArrayVerdict) All() bool {
	for _, e := range v.Exceeds {
		if !e {
			return false
		}
	}
	return true
}

// EvaluateEach compares every observed element against the null bounds.
func EvaluateEach(observed []float64, dist montecarlo.Distribution, confidence float64) (ArrayVerdict, error) {
	if len(observed) == 0 {
		return ArrayVerdict{}, ErrNoObserved
	}

	lower, upper, err := Bounds(dist, confidence)
	if err != nil {
		return ArrayVerdict{}, err
	}

	exceeds := make([]bool, len(observed))
	for i, o := range observed {
		exceeds[i] = o > upper
	}

	return ArrayVerdict{Lower: lower, Upper: upper, Exceeds: exceeds}, nil
}
