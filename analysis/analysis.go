// Package analysis drives the full coherence significance run: it walks
// every analysis-band x condition x electrode cell, computes the observed
// statistic over the cell's trial slice, draws a matched null distribution,
// and tabulates one verdict row per cell.
package analysis

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/phaselab/itpc/montecarlo"
	"github.com/phaselab/itpc/phase"
	"github.com/phaselab/itpc/significance"
	"github.com/phaselab/itpc/stats/circular"
)

// Band names a set of frequency-bin indices evaluated as one analysis type.
type Band struct {
	Label string
	Bins  []int
}

// Row is one result table entry. Skipped rows mark cells whose statistic
// could not be computed; they are recorded, never silently dropped, so
// consumers can tell "not significant" from "not computable".
type Row struct {
	Analysis    string
	Condition   string
	Electrode   int // 1-based electrode id, matching the recording convention
	Mean        float64
	Lower       float64
	Upper       float64
	Significant bool
	Skipped     bool
	Reason      string
}

// Table is the assembled result of a run, ordered by analysis type, then
// condition (declaration order), then electrode.
type Table struct {
	Rows []Row
}

// Errors reported before any cell is computed.
var (
	ErrNilTensor     = errors.New("analysis: tensor must not be nil")
	ErrNilConditions = errors.New("analysis: condition set must not be nil")
	ErrNoBands       = errors.New("analysis: at least one band is required")
	ErrEmptyBand     = errors.New("analysis: band has no bins")
)

// Orchestrator runs analyses. Construct with New; the zero value is not
// usable.
type Orchestrator struct {
	engine       *montecarlo.Engine
	stat         circular.Statistic
	permutations int
	confidence   float64
	workers      int
	log          *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithEngine replaces the null-distribution engine, typically to fix a seed.
func WithEngine(e *montecarlo.Engine) Option {
	return func(o *Orchestrator) {
		if e != nil {
			o.engine = e
		}
	}
}

// WithStatistic replaces the observed/null statistic. Defaults to the mean
// resultant length (ITPC).
func WithStatistic(stat circular.Statistic) Option {
	return func(o *Orchestrator) {
		if stat != nil {
			o.stat = stat
		}
	}
}

// WithPermutations sets the null distribution size.
func WithPermutations(n int) Option {
	return func(o *Orchestrator) { o.permutations = n }
}

// WithConfidence sets the confidence level for the empirical bounds.
func WithConfidence(level float64) Option {
	return func(o *Orchestrator) { o.confidence = level }
}

// WithWorkers sets the number of concurrent cell workers. 0 or 1 runs
// serially.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) { o.workers = n }
}

// WithLogger sets the progress logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// New returns an orchestrator with the default configuration: ITPC
// statistic, 1000 permutations, 95% confidence, serial execution.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		engine:       montecarlo.NewEngine(),
		stat:         circular.Resultant,
		permutations: 1000,
		confidence:   0.95,
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

// cell identifies one unit of work; order is the row order.
type cell struct {
	band      Band
	condition phase.Condition
	electrode int // 0-based
}

// Run executes the full analysis over the tensor. The tensor may be raw or
// unit; the observed statistic always runs over the unit-normalized view,
// leaving the source untouched. Configuration problems abort before any
// cell is computed; per-cell domain and shape failures become skipped rows.
func (o *Orchestrator) Run(tensor *phase.Tensor, conds *phase.ConditionSet, bands []Band) (*Table, error) {
	if tensor == nil {
		return nil, ErrNilTensor
	}
	if conds == nil {
		return nil, ErrNilConditions
	}
	if len(bands) == 0 {
		return nil, ErrNoBands
	}
	for _, b := range bands {
		if len(b.Bins) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyBand, b.Label)
		}
	}
	if o.permutations <= 0 {
		return nil, montecarlo.ErrInvalidPermutations
	}
	if o.confidence <= 0 || o.confidence >= 1 {
		return nil, significance.ErrInvalidConfidence
	}
	if err := conds.Validate(tensor.Trials()); err != nil {
		return nil, err
	}

	unit := tensor
	if unit.Repr() != phase.Unit {
		unit = tensor.Normalize()
	}

	var cells []cell
	for _, band := range bands {
		for _, cond := range conds.Conditions() {
			for e := 0; e < unit.Electrodes(); e++ {
				cells = append(cells, cell{band: band, condition: cond, electrode: e})
			}
		}
	}

	o.log.Info("starting analysis run",
		zap.Int("cells", len(cells)),
		zap.Int("permutations", o.permutations),
		zap.Float64("confidence", o.confidence),
		zap.Int("workers", o.workers))

	rows := make([]Row, len(cells))
	if o.workers > 1 {
		var wg sync.WaitGroup
		jobs := make(chan int)

		for w := 0; w < o.workers; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range jobs {
					rows[i] = o.runCell(unit, cells[i])
				}
			}()
		}
		for i := range cells {
			jobs <- i
		}
		close(jobs)
		wg.Wait()
	} else {
		for i := range cells {
			rows[i] = o.runCell(unit, cells[i])
		}
	}

	skipped := 0
	for _, r := range rows {
		if r.Skipped {
			skipped++
		}
	}
	o.log.Info("analysis run complete",
		zap.Int("rows", len(rows)),
		zap.Int("skipped", skipped))

	return &Table{Rows: rows}, nil
}

// runCell computes one result row. Every per-cell failure is folded into a
// skipped row so one bad cell cannot stop the batch.
func (o *Orchestrator) runCell(unit *phase.Tensor, c cell) Row {
	row := Row{
		Analysis:  c.band.Label,
		Condition: c.condition.Name,
		Electrode: c.electrode + 1,
	}

	observed, err := o.observedMean(unit, c)
	if err != nil {
		return o.skip(row, err)
	}

	null, err := o.bandNull(c)
	if err != nil {
		return o.skip(row, err)
	}

	verdict, err := significance.Evaluate(observed, null, o.confidence)
	if err != nil {
		return o.skip(row, err)
	}

	row.Mean = verdict.Observed
	row.Lower = verdict.Lower
	row.Upper = verdict.Upper
	row.Significant = verdict.Exceeds
	return row
}

func (o *Orchestrator) skip(row Row, err error) Row {
	o.log.Warn("skipping cell",
		zap.String("analysis", row.Analysis),
		zap.String("condition", row.Condition),
		zap.Int("electrode", row.Electrode),
		zap.Error(err))
	row.Skipped = true
	row.Reason = err.Error()
	return row
}

// observedMean averages the observed statistic over the band's bins for
// one (condition, electrode) cell.
func (o *Orchestrator) observedMean(unit *phase.Tensor, c cell) (float64, error) {
	sum := 0.0
	for _, bin := range c.band.Bins {
		fiber, err := unit.TrialFiber(c.electrode, bin, c.condition.Lo, c.condition.Hi)
		if err != nil {
			return 0, err
		}

		v, err := o.stat(fiber)
		if err != nil {
			return 0, err
		}
		sum += v
	}

	return sum / float64(len(c.band.Bins)), nil
}

// bandNull builds the null distribution of the cell's band-mean statistic:
// per draw, one independent statistic per band bin, averaged the same way
// as the observed value. Each (band, condition, electrode, bin) tuple gets
// its own derived seed so concurrent cells never share a random stream.
func (o *Orchestrator) bandNull(c cell) (montecarlo.Distribution, error) {
	trialCount := c.condition.TrialCount()
	acc := make([]float64, o.permutations)

	for _, bin := range c.band.Bins {
		key := fmt.Sprintf("%s/%s/%d/%d", c.band.Label, c.condition.Name, c.electrode, bin)
		d, err := o.engine.ForCell(key).Generate(o.stat, trialCount, o.permutations)
		if err != nil {
			return montecarlo.Distribution{}, err
		}

		for i, v := range d.Samples() {
			acc[i] += v
		}
	}

	inv := 1 / float64(len(c.band.Bins))
	for i := range acc {
		acc[i] *= inv
	}

	return montecarlo.NewDistribution(acc), nil
}
