package phase

import (
	"errors"
	"fmt"
	"sort"
)

// Errors returned by condition range validation.
var (
	ErrNoConditions       = errors.New("phase: condition set is empty")
	ErrConditionRange     = errors.New("phase: condition range is empty or reversed")
	ErrConditionOverlap   = errors.New("phase: condition ranges overlap")
	ErrConditionGap       = errors.New("phase: condition ranges leave a gap")
	ErrConditionCoverage  = errors.New("phase: condition ranges do not cover the trial axis")
	ErrUnknownCondition   = errors.New("phase: unknown condition")
	ErrDuplicateCondition = errors.New("phase: duplicate condition name")
)

// Condition names one experimental condition and its half-open trial range
// [Lo, Hi) on the trial axis of a Tensor.
type Condition struct {
	Name string
	Lo   int
	Hi   int
}

// TrialCount returns the number of trials in the condition's range.
func (c Condition) TrialCount() int { return c.Hi - c.Lo }

// ConditionSet maps condition names onto mutually exclusive, gap-free trial
// ranges whose union is the full trial axis. Order is the declaration order
// and is preserved through iteration and reporting.
type ConditionSet struct {
	conds []Condition
}

// NewConditionSet builds a set from the given conditions, preserving order.
// Name uniqueness is checked here; range validity against a concrete trial
// axis is checked by Validate.
func NewConditionSet(conds []Condition) (*ConditionSet, error) {
	if len(conds) == 0 {
		return nil, ErrNoConditions
	}

	seen := make(map[string]bool, len(conds))
	for _, c := range conds {
		if c.Hi <= c.Lo {
			return nil, fmt.Errorf("%w: %s [%d,%d)", ErrConditionRange, c.Name, c.Lo, c.Hi)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCondition, c.Name)
		}
		seen[c.Name] = true
	}

	out := make([]Condition, len(conds))
	copy(out, conds)
	return &ConditionSet{conds: out}, nil
}

// Conditions returns the conditions in declaration order.
func (s *ConditionSet) Conditions() []Condition {
	out := make([]Condition, len(s.conds))
	copy(out, s.conds)
	return out
}

// Lookup returns the condition with the given name.
func (s *ConditionSet) Lookup(name string) (Condition, error) {
	for _, c := range s.conds {
		if c.Name == name {
			return c, nil
		}
	}

	return Condition{}, fmt.Errorf("%w: %s", ErrUnknownCondition, name)
}

// Validate checks the structural invariant against a trial axis of the given
// length: ranges must not overlap, must leave no gaps, and their union must
// equal [0, trials). This runs before any statistic touches a slice, so a
// malformed partition is caught up front rather than mid-reduction.
func (s *ConditionSet) Validate(trials int) error {
	ordered := make([]Condition, len(s.conds))
	copy(ordered, s.conds)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Lo < ordered[j].Lo })

	if ordered[0].Lo != 0 {
		return fmt.Errorf("%w: trials [0,%d) unassigned", ErrConditionCoverage, ordered[0].Lo)
	}

	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		switch {
		case cur.Lo < prev.Hi:
			return fmt.Errorf("%w: %s [%d,%d) and %s [%d,%d)", ErrConditionOverlap,
				prev.Name, prev.Lo, prev.Hi, cur.Name, cur.Lo, cur.Hi)
		case cur.Lo > prev.Hi:
			return fmt.Errorf("%w: trials [%d,%d) unassigned", ErrConditionGap, prev.Hi, cur.Lo)
		}
	}

	if last := ordered[len(ordered)-1]; last.Hi != trials {
		return fmt.Errorf("%w: range ends at %d, trial axis has %d", ErrConditionCoverage, last.Hi, trials)
	}

	return nil
}
