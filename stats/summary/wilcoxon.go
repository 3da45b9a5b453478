package summary

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// WilcoxonResult is the outcome of a two-sided Wilcoxon signed-rank test
// between two paired samples.
type WilcoxonResult struct {
	Statistic float64 // min(W+, W-)
	PValue    float64 // two-sided, normal approximation
	N         int     // pairs with a non-zero difference
}

// Significance renders the conventional star notation for the p-value:
// "**" below 0.01, "*" below 0.05, "ns" otherwise.
func (r WilcoxonResult) Significance() string {
	switch {
	case r.PValue < 0.01:
		return "**"
	case r.PValue < 0.05:
		return "*"
	default:
		return "ns"
	}
}

// Wilcoxon runs a two-sided Wilcoxon signed-rank test on paired samples.
// The samples must have equal length; a and b at the same index belong to
// the same pair. Zero differences are discarded before ranking.
//
// The p-value uses the normal approximation with tie correction, which is
// the standard regime for electrode counts around 32.
func Wilcoxon(a, b []float64) (WilcoxonResult, error) {
	if len(a) != len(b) {
		return WilcoxonResult{}, ErrLengthMismatch
	}
	n := len(a)
	if n == 0 {
		return WilcoxonResult{}, ErrNoPairs
	}

	diffs := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if d := a[i] - b[i]; d != 0 {
			diffs = append(diffs, d)
		}
	}
	if len(diffs) == 0 {
		return WilcoxonResult{}, ErrAllZeroDiff
	}

	ranks, tieCorrection := rankAbs(diffs)

	var wPlus, wMinus float64
	for i, d := range diffs {
		if d > 0 {
			wPlus += ranks[i]
		} else {
			wMinus += ranks[i]
		}
	}

	w := math.Min(wPlus, wMinus)
	m := float64(len(diffs))

	mean := m * (m + 1) / 4
	variance := m*(m+1)*(2*m+1)/24 - tieCorrection/48
	if variance <= 0 {
		// All differences tied to a single magnitude; no usable spread.
		return WilcoxonResult{Statistic: w, PValue: 1, N: len(diffs)}, nil
	}

	z := (w - mean) / math.Sqrt(variance)
	norm := distuv.Normal{Mu: 0, Sigma: 1}
	p := 2 * norm.CDF(-math.Abs(z))
	if p > 1 {
		p = 1
	}

	return WilcoxonResult{Statistic: w, PValue: p, N: len(diffs)}, nil
}

// rankAbs assigns ranks to the absolute differences, averaging ranks over
// ties, and returns the tie correction term sum(t^3 - t).
func rankAbs(diffs []float64) (ranks []float64, tieCorrection float64) {
	type entry struct {
		abs float64
		idx int
	}

	entries := make([]entry, len(diffs))
	for i, d := range diffs {
		entries[i] = entry{abs: math.Abs(d), idx: i}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].abs < entries[j].abs })

	ranks = make([]float64, len(diffs))
	for i := 0; i < len(entries); {
		j := i
		for j < len(entries) && entries[j].abs == entries[i].abs {
			j++
		}

		// Average rank over the tied block [i, j); ranks are 1-based.
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[entries[k].idx] = avg
		}

		if t := float64(j - i); t > 1 {
			tieCorrection += t*t*t - t
		}
		i = j
	}

	return ranks, tieCorrection
}

// Comparison is one pairwise condition test.
type Comparison struct {
	A, B   string
	Result WilcoxonResult
}

// PairwiseWilcoxon tests every unordered pair of conditions once, pairing
// A before B in the given condition order. Values are keyed by electrode
// id; each pair is compared over the electrodes present in both conditions,
// so a cell missing from one condition drops that electrode from that pair
// without shifting any other pairing.
func PairwiseWilcoxon(values map[string]map[int]float64, order []string) ([]Comparison, error) {
	var out []Comparison
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			a, b := pairByKey(values[order[i]], values[order[j]])
			r, err := Wilcoxon(a, b)
			if err != nil {
				return nil, err
			}
			out = append(out, Comparison{A: order[i], B: order[j], Result: r})
		}
	}
	return out, nil
}

// pairByKey builds aligned slices over the keys shared by both maps, in
// ascending key order.
func pairByKey(a, b map[int]float64) (av, bv []float64) {
	keys := make([]int, 0, len(a))
	for k := range a {
		if _, ok := b[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)

	av = make([]float64, len(keys))
	bv = make([]float64, len(keys))
	for i, k := range keys {
		av[i] = a[k]
		bv[i] = b[k]
	}
	return av, bv
}
