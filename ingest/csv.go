package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/phaselab/itpc/phase"
)

// Errors returned when the table structure itself is unusable. Value-level
// problems inside a structurally sound table are recovered, not returned.
var (
	ErrMissingHeader     = errors.New("ingest: missing header row")
	ErrMissingColumn     = errors.New("ingest: required column not found")
	ErrNoCoefficientCols = errors.New("ingest: no coefficient columns found")
	ErrNoRows            = errors.New("ingest: no data rows")
)

const (
	stimulusColumn    = "stimuli"
	electrodeColumn   = "electrode_number"
	participantColumn = "participant_id"
	coefficientPrefix = "complex_val_"
)

// Dataset is a loaded coefficient table. The tensor's trial axis is
// stimulus-major and participant-minor: trial = (stimulus-1)*P + p, where P
// is the participant count and p the participant's index in Participants.
// A contiguous stimulus range therefore stays contiguous on the trial axis
// once scaled by P, which keeps condition ranges expressible.
type Dataset struct {
	Tensor       *phase.Tensor
	Participants []string // sorted ids; a single empty id when the column is absent
}

// Loader reads coefficient CSV tables into raw-amplitude tensors.
type Loader struct {
	log *zap.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLogger sets the warning logger. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) LoaderOption {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// NewLoader returns a Loader with the given options applied.
func NewLoader(opts ...LoaderOption) *Loader {
	ld := &Loader{log: zap.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(ld)
		}
	}
	return ld
}

// LoadCSV reads a coefficient table with one row per (participant,
// stimulus, electrode) tuple and one complex-valued column per frequency
// bin. The participant_id column is optional; when present, each
// participant's rows occupy their own slots on the trial axis (see
// Dataset), so merged multi-participant tables never collide. Stimulus and
// electrode numbers are 1-based in the file and map to 0-based tensor
// indices. Cells that are empty or fail to parse become the zero complex
// value with a warning; a duplicate (participant, stimulus, electrode) row
// replaces the earlier one with a warning.
//
// The returned tensor is in raw representation; callers that need pure
// phase normalize explicitly.
func (ld *Loader) LoadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Short rows are a data defect we recover from, not a structural error.
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingHeader
		}
		return nil, fmt.Errorf("ingest: reading header: %w", err)
	}

	stimIdx, elecIdx, partIdx := -1, -1, -1
	type coeffCol struct {
		col int
		bin int
	}
	var coeffs []coeffCol

	for i, name := range header {
		name = strings.TrimSpace(name)
		switch {
		case name == stimulusColumn:
			stimIdx = i
		case name == electrodeColumn:
			elecIdx = i
		case name == participantColumn:
			partIdx = i
		case strings.HasPrefix(name, coefficientPrefix):
			n, err := strconv.Atoi(strings.TrimPrefix(name, coefficientPrefix))
			if err != nil || n < 1 {
				ld.log.Warn("ignoring malformed coefficient column", zap.String("column", name))
				continue
			}
			coeffs = append(coeffs, coeffCol{col: i, bin: n - 1})
		}
	}

	if stimIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, stimulusColumn)
	}
	if elecIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, electrodeColumn)
	}
	if len(coeffs) == 0 {
		return nil, ErrNoCoefficientCols
	}
	sort.Slice(coeffs, func(i, j int) bool { return coeffs[i].bin < coeffs[j].bin })

	type rowKey struct {
		participant string
		stimulus    int
		electrode   int
	}
	type row struct {
		key    rowKey
		values []complex128
	}

	var (
		rows       []row
		stimuli    int
		electrodes int
		warnings   int
	)
	seen := make(map[rowKey]bool)
	participantSet := make(map[string]bool)

	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ingest: line %d: %w", line, err)
		}

		if stimIdx >= len(record) || elecIdx >= len(record) {
			ld.log.Warn("skipping short row",
				zap.Int("line", line), zap.Int("fields", len(record)))
			continue
		}

		stim, err := strconv.Atoi(strings.TrimSpace(record[stimIdx]))
		if err != nil || stim < 1 {
			ld.log.Warn("skipping row with bad stimulus number",
				zap.Int("line", line), zap.String("value", record[stimIdx]))
			continue
		}
		elec, err := strconv.Atoi(strings.TrimSpace(record[elecIdx]))
		if err != nil || elec < 1 {
			ld.log.Warn("skipping row with bad electrode number",
				zap.Int("line", line), zap.String("value", record[elecIdx]))
			continue
		}
		participant := ""
		if partIdx >= 0 && partIdx < len(record) {
			participant = strings.TrimSpace(record[partIdx])
		}

		values := make([]complex128, len(coeffs))
		for i, cc := range coeffs {
			raw := ""
			if cc.col < len(record) {
				raw = record[cc.col]
			}
			v, ok := ParseComplex(raw)
			if !ok {
				warnings++
				ld.log.Warn("unparseable coefficient, substituting zero",
					zap.Int("line", line), zap.Int("bin", cc.bin), zap.String("value", raw))
			}
			values[i] = v
		}

		key := rowKey{participant: participant, stimulus: stim, electrode: elec}
		if seen[key] {
			ld.log.Warn("duplicate row replaces earlier values",
				zap.Int("line", line),
				zap.String("participant", participant),
				zap.Int("stimulus", stim),
				zap.Int("electrode", elec))
		}
		seen[key] = true
		participantSet[participant] = true

		rows = append(rows, row{key: key, values: values})
		if stim > stimuli {
			stimuli = stim
		}
		if elec > electrodes {
			electrodes = elec
		}
	}

	if len(rows) == 0 {
		return nil, ErrNoRows
	}

	participants := make([]string, 0, len(participantSet))
	for p := range participantSet {
		participants = append(participants, p)
	}
	sort.Strings(participants)
	participantIndex := make(map[string]int, len(participants))
	for i, p := range participants {
		participantIndex[p] = i
	}

	tensor, err := phase.Zero(stimuli*len(participants), electrodes, len(coeffs), phase.Raw)
	if err != nil {
		return nil, err
	}

	for _, rw := range rows {
		trial := (rw.key.stimulus-1)*len(participants) + participantIndex[rw.key.participant]
		for f, v := range rw.values {
			if err := tensor.Set(trial, rw.key.electrode-1, f, v); err != nil {
				return nil, err
			}
		}
	}

	if warnings > 0 {
		ld.log.Warn("coefficient table contained unparseable cells",
			zap.Int("cells", warnings))
	}
	ld.log.Info("loaded coefficient table",
		zap.Int("participants", len(participants)),
		zap.Int("stimuli", stimuli),
		zap.Int("electrodes", electrodes),
		zap.Int("freq_bins", len(coeffs)),
		zap.Int("rows", len(rows)))

	return &Dataset{Tensor: tensor, Participants: participants}, nil
}
