package circular

import (
	"fmt"

	"github.com/phaselab/itpc/phase"
)

// Grid holds one scalar per (electrode, frequency) cell, the result of
// reducing a tensor along its trial axis.
type Grid struct {
	electrodes int
	freqs      int
	values     []float64
}

// Electrodes returns the electrode axis size.
func (g *Grid) Electrodes() int { return g.electrodes }

// Freqs returns the frequency axis size.
func (g *Grid) Freqs() int { return g.freqs }

// At returns the value for one (electrode, frequency) cell.
func (g *Grid) At(electrode, freq int) float64 {
	return g.values[electrode*g.freqs+freq]
}

// Row returns a copy of the per-frequency values for one electrode.
func (g *Grid) Row(electrode int) []float64 {
	out := make([]float64, g.freqs)
	copy(out, g.values[electrode*g.freqs:(electrode+1)*g.freqs])
	return out
}

// Reduce applies stat along the trial axis of trials [lo, hi) for every
// (electrode, frequency) fiber. Numerically equivalent to calling stat on
// each fiber independently; the first fiber error aborts the reduction.
func Reduce(t *phase.Tensor, lo, hi int, stat Statistic) (*Grid, error) {
	g := &Grid{
		electrodes: t.Electrodes(),
		freqs:      t.Freqs(),
		values:     make([]float64, t.Electrodes()*t.Freqs()),
	}

	for e := 0; e < t.Electrodes(); e++ {
		for f := 0; f < t.Freqs(); f++ {
			fiber, err := t.TrialFiber(e, f, lo, hi)
			if err != nil {
				return nil, err
			}

			v, err := stat(fiber)
			if err != nil {
				return nil, fmt.Errorf("circular: cell (%d,%d): %w", e, f, err)
			}
			g.values[e*g.freqs+f] = v
		}
	}

	return g, nil
}

// ResultantGrid reduces every fiber with [Resultant]. The tensor must be in
// unit representation; on raw amplitudes the resultant conflates phase
// concentration with amplitude and the caller must normalize first.
func ResultantGrid(t *phase.Tensor, lo, hi int) (*Grid, error) {
	if err := t.RequireUnit(); err != nil {
		return nil, err
	}

	return Reduce(t, lo, hi, Resultant)
}

// CoherenceGrid reduces every fiber with [BiasCorrectedCoherence].
// Requires unit representation for the same reason as [ResultantGrid].
func CoherenceGrid(t *phase.Tensor, lo, hi int) (*Grid, error) {
	if err := t.RequireUnit(); err != nil {
		return nil, err
	}

	return Reduce(t, lo, hi, BiasCorrectedCoherence)
}

// PowerGrid reduces every fiber with [Power]. Meaningful on raw tensors;
// on a unit tensor every cell is 1.
func PowerGrid(t *phase.Tensor, lo, hi int) (*Grid, error) {
	return Reduce(t, lo, hi, Power)
}

// SummaryTable holds the full Summary for every (electrode, frequency) cell.
type SummaryTable struct {
	electrodes int
	freqs      int
	cells      []Summary
}

// Electrodes returns the electrode axis size.
func (s *SummaryTable) Electrodes() int { return s.electrodes }

// Freqs returns the frequency axis size.
func (s *SummaryTable) Freqs() int { return s.freqs }

// At returns the summary for one (electrode, frequency) cell.
func (s *SummaryTable) At(electrode, freq int) Summary {
	return s.cells[electrode*s.freqs+freq]
}

// SummarizeTensor computes Summary for every fiber of trials [lo, hi).
// The tensor must be in unit representation so that resultant and coherence
// read as phase concentration; power is then reported as 1 per cell, and
// callers wanting amplitude power compute a [PowerGrid] over the raw tensor.
func SummarizeTensor(t *phase.Tensor, lo, hi int) (*SummaryTable, error) {
	if err := t.RequireUnit(); err != nil {
		return nil, err
	}

	out := &SummaryTable{
		electrodes: t.Electrodes(),
		freqs:      t.Freqs(),
		cells:      make([]Summary, t.Electrodes()*t.Freqs()),
	}

	for e := 0; e < t.Electrodes(); e++ {
		for f := 0; f < t.Freqs(); f++ {
			fiber, err := t.TrialFiber(e, f, lo, hi)
			if err != nil {
				return nil, err
			}

			sum, err := Summarize(fiber)
			if err != nil {
				return nil, fmt.Errorf("circular: cell (%d,%d): %w", e, f, err)
			}
			out.cells[e*out.freqs+f] = sum
		}
	}

	return out, nil
}
