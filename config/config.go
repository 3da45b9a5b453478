// Package config describes an analysis run: the condition layout of the
// trial axis, the frequency bands per analysis type, and the Monte Carlo
// parameters. Validation is eager; a bad run description never reaches the
// statistics layer.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/phaselab/itpc/phase"
)

// Errors returned by configuration validation.
var (
	ErrNoConditions       = errors.New("config: at least one condition is required")
	ErrBadConditionRange  = errors.New("config: condition trial range is invalid")
	ErrNoBands            = errors.New("config: at least one frequency band is required")
	ErrEmptyBand          = errors.New("config: frequency band has no bins")
	ErrNegativeBin        = errors.New("config: frequency bin index must be >= 0")
	ErrInvalidPermutation = errors.New("config: permutations must be positive")
	ErrInvalidConfidence  = errors.New("config: confidence must be in (0,1)")
	ErrNegativeWorkers    = errors.New("config: workers must be >= 0")
	ErrNoParticipants     = errors.New("config: participant count must be >= 1")
)

// ConditionRange names a condition and its 1-based inclusive stimulus range
// as recorded in the source tables.
type ConditionRange struct {
	Name  string `yaml:"name"`
	First int    `yaml:"first"`
	Last  int    `yaml:"last"`
}

// Band is a named set of frequency-bin indices analyzed together under one
// analysis type, e.g. the syllable-rate or phrase-rate bins.
type Band struct {
	Label string `yaml:"label"`
	Bins  []int  `yaml:"bins"`
}

// Config is one full analysis run description.
type Config struct {
	DataFile   string `yaml:"data_file"`
	OutputFile string `yaml:"output_file"`

	Conditions []ConditionRange `yaml:"conditions"`
	Bands      []Band           `yaml:"bands"`

	// Frequencies optionally labels the tensor's bin axis in Hz for
	// reporting; it does not affect computation.
	Frequencies []float64 `yaml:"frequencies,omitempty"`

	Permutations int     `yaml:"permutations"`
	Confidence   float64 `yaml:"confidence"`
	Seed         uint64  `yaml:"seed"` // 0 seeds from entropy
	Workers      int     `yaml:"workers"`
}

// Default returns the standard experiment layout: four conditions of 30
// stimuli each, 1000 permutations at 95% confidence, and the two
// frequency-tagging bands (phrase rate 3.125 Hz at bin 44, syllable rate
// 1.5625 Hz at bin 20 on the 58-bin grid).
func Default() *Config {
	return &Config{
		Conditions: []ConditionRange{
			{Name: "GN", First: 1, Last: 30},
			{Name: "GS", First: 31, Last: 60},
			{Name: "UN", First: 61, Last: 90},
			{Name: "US", First: 91, Last: 120},
		},
		Bands: []Band{
			{Label: "phrase", Bins: []int{44}},
			{Label: "syllable", Bins: []int{20}},
		},
		Permutations: 1000,
		Confidence:   0.95,
	}
}

// Parse decodes a YAML run description and validates it.
func Parse(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decoding yaml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses a YAML run description from a file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: opening %s: %w", path, err)
	}
	defer f.Close()

	return Parse(f)
}

// Validate checks every field that the statistics layer would otherwise
// reject mid-run.
func (c *Config) Validate() error {
	if len(c.Conditions) == 0 {
		return ErrNoConditions
	}
	for _, cond := range c.Conditions {
		if cond.First < 1 || cond.Last < cond.First {
			return fmt.Errorf("%w: %s [%d,%d]", ErrBadConditionRange, cond.Name, cond.First, cond.Last)
		}
	}

	if len(c.Bands) == 0 {
		return ErrNoBands
	}
	for _, b := range c.Bands {
		if len(b.Bins) == 0 {
			return fmt.Errorf("%w: %s", ErrEmptyBand, b.Label)
		}
		for _, bin := range b.Bins {
			if bin < 0 {
				return fmt.Errorf("%w: %s bin %d", ErrNegativeBin, b.Label, bin)
			}
		}
	}

	if c.Permutations <= 0 {
		return ErrInvalidPermutation
	}
	if c.Confidence <= 0 || c.Confidence >= 1 {
		return ErrInvalidConfidence
	}
	if c.Workers < 0 {
		return ErrNegativeWorkers
	}

	return nil
}

// ConditionSet converts the 1-based inclusive stimulus ranges into the
// 0-based half-open trial ranges of the phase data model, scaled by the
// participant count. With P participants each stimulus occupies P
// consecutive trials (the stimulus-major trial layout of ingest), so a
// stimulus range [first, last] covers trials [(first-1)*P, last*P).
func (c *Config) ConditionSet(participants int) (*phase.ConditionSet, error) {
	if participants < 1 {
		return nil, ErrNoParticipants
	}
	conds := make([]phase.Condition, len(c.Conditions))
	for i, cond := range c.Conditions {
		conds[i] = phase.Condition{
			Name: cond.Name,
			Lo:   (cond.First - 1) * participants,
			Hi:   cond.Last * participants,
		}
	}
	return phase.NewConditionSet(conds)
}
