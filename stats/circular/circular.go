package circular

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/phaselab/itpc/spectrum"
)

// Errors returned by circular reductions.
var (
	ErrEmptyTrials  = errors.New("circular: trial set is empty")
	ErrTooFewTrials = errors.New("circular: bias correction requires at least 2 trials")
)

// Statistic reduces one trial vector to a scalar. The Monte Carlo null
// engine and the batched tensor reductions are both expressed over this
// signature, so observed and null values always come from the same code.
type Statistic func(trials []complex128) (float64, error)

// PhaseMean returns the arithmetic mean of the complex trial values.
//
// This is the single primitive every other statistic in this package derives
// from: resultant length is its magnitude and the mean angle is its argument.
// Computing it once keeps the derived statistics from drifting apart through
// separate roundings.
func PhaseMean(trials []complex128) (complex128, error) {
	if len(trials) == 0 {
		return 0, ErrEmptyTrials
	}

	var sum complex128
	for _, z := range trials {
		sum += z
	}

	return sum / complex(float64(len(trials)), 0), nil
}

// Resultant returns the mean resultant length |mean(trials)|.
//
// For unit-magnitude inputs the result lies in [0,1]: 1 when all trial
// angles coincide, 0 for symmetric configurations that cancel exactly.
// For raw amplitude-bearing inputs it is the magnitude of the complex mean
// and is not bounded by 1.
func Resultant(trials []complex128) (float64, error) {
	m, err := PhaseMean(trials)
	if err != nil {
		return 0, err
	}

	return cmplx.Abs(m), nil
}

// Measures returns the mean angle in (-pi, pi] and the mean resultant length,
// both derived from one PhaseMean evaluation.
func Measures(trials []complex128) (angle, magnitude float64, err error) {
	m, err := PhaseMean(trials)
	if err != nil {
		return 0, 0, err
	}

	return cmplx.Phase(m), cmplx.Abs(m), nil
}

// Variance returns the circular variance -2*ln(R) where R is the mean
// resultant length. A perfectly dispersed trial set (R == 0) yields +Inf,
// which is a legitimate value for a degenerate sample, not an error.
func Variance(trials []complex128) (float64, error) {
	r, err := Resultant(trials)
	if err != nil {
		return 0, err
	}

	if r == 0 {
		return math.Inf(1), nil
	}

	return -2 * math.Log(r), nil
}

// BiasCorrectedCoherence returns the small-sample corrected squared
// coherence estimate:
//
//	(|mean(trials)|^2 * N - 1) / (N - 1)
//
// The naive squared resultant is biased upward at low trial counts; this
// estimator removes the bias at the cost of occasionally dipping below zero
// when true coherence is low. Negative values are meaningful output and are
// returned as computed, never clamped.
func BiasCorrectedCoherence(trials []complex128) (float64, error) {
	n := len(trials)
	if n < 2 {
		if n == 0 {
			return 0, ErrEmptyTrials
		}
		return 0, ErrTooFewTrials
	}

	r, err := Resultant(trials)
	if err != nil {
		return 0, err
	}

	return (r*r*float64(n) - 1) / float64(n-1), nil
}

// Power returns the mean squared magnitude over the trials. Always >= 0.
// Meaningful on raw amplitude-bearing coefficients; on unit-normalized input
// it is identically 1.
func Power(trials []complex128) (float64, error) {
	if len(trials) == 0 {
		return 0, ErrEmptyTrials
	}

	return spectrum.MeanPower(trials), nil
}

// Summary bundles the per-cell statistics derived from one trial vector.
type Summary struct {
	Resultant  float64 // mean resultant length
	MeanAngle  float64 // radians in (-pi, pi]
	Variance   float64 // -2 ln R, +Inf at R == 0
	Power      float64 // mean |z|^2
	Coherence  float64 // bias-corrected squared coherence, may be negative
	TrialCount int
}

// Summarize computes the full Summary for one trial vector. The complex mean
// is evaluated once and every derived quantity is read from it. Requires at
// least 2 trials because of the bias correction.
func Summarize(trials []complex128) (Summary, error) {
	n := len(trials)
	if n < 2 {
		if n == 0 {
			return Summary{}, ErrEmptyTrials
		}
		return Summary{}, ErrTooFewTrials
	}

	m, err := PhaseMean(trials)
	if err != nil {
		return Summary{}, err
	}

	r := cmplx.Abs(m)
	variance := math.Inf(1)
	if r > 0 {
		variance = -2 * math.Log(r)
	}

	return Summary{
		Resultant:  r,
		MeanAngle:  cmplx.Phase(m),
		Variance:   variance,
		Power:      spectrum.MeanPower(trials),
		Coherence:  (r*r*float64(n) - 1) / float64(n-1),
		TrialCount: n,
	}, nil
}
