// Package summary provides descriptive statistics over derived coherence
// values and paired nonparametric comparisons between conditions.
package summary

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Errors returned by summary computations.
var (
	ErrEmptyValues    = errors.New("summary: value set is empty")
	ErrNoPairs        = errors.New("summary: no value pairs to compare")
	ErrAllZeroDiff    = errors.New("summary: all paired differences are zero")
	ErrLengthMismatch = errors.New("summary: paired samples differ in length")
)

// Stats holds the descriptive summary of one set of derived values,
// typically the per-electrode mean coherence of a condition.
type Stats struct {
	N      int
	Mean   float64
	Std    float64
	Min    float64
	Max    float64
	Median float64
}

// Describe computes descriptive statistics over the values.
// Std is the population standard deviation: the electrode set is the whole
// population of interest, not a sample from one.
func Describe(values []float64) (Stats, error) {
	if len(values) == 0 {
		return Stats{}, ErrEmptyValues
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, std := stat.PopMeanStdDev(values, nil)

	return Stats{
		N:      len(values),
		Mean:   mean,
		Std:    std,
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}, nil
}
