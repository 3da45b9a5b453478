package phase

import (
	"errors"
	"fmt"
	"math/cmplx"
)

// Errors returned by tensor construction and access.
var (
	ErrInvalidShape     = errors.New("phase: tensor axes must all be positive")
	ErrDataLength       = errors.New("phase: data length does not match tensor shape")
	ErrIndexOutOfRange  = errors.New("phase: index out of tensor bounds")
	ErrTrialRange       = errors.New("phase: trial range out of tensor bounds")
	ErrNotUnitMagnitude = errors.New("phase: tensor does not hold unit-magnitude values")
)

// Representation declares what the magnitude of a tensor's elements means.
// Components that interpret magnitudes (power vs. coherence) must require
// the form they expect rather than guessing.
type Representation int

const (
	// Raw means elements carry the spectral amplitude as recorded.
	Raw Representation = iota
	// Unit means every element has been normalized to magnitude 1, so only
	// the phase angle is meaningful.
	Unit
)

// String returns the representation name.
func (r Representation) String() string {
	switch r {
	case Raw:
		return "raw"
	case Unit:
		return "unit"
	default:
		return fmt.Sprintf("Representation(%d)", int(r))
	}
}

// Tensor is a three-axis array of complex spectral coefficients indexed by
// (trial, electrode, frequency bin). The backing storage is a single flat
// slice in trial-major order. Once built, a Tensor is read-only to every
// consumer; reductions allocate their own outputs.
type Tensor struct {
	data       []complex128
	trials     int
	electrodes int
	freqs      int
	repr       Representation
}

// NewTensor builds a tensor over the given flat data slice.
// The data layout is trial-major: element (t, e, f) lives at
// ((t*electrodes)+e)*freqs + f. The slice is retained, not copied;
// the caller must not mutate it afterwards.
func NewTensor(data []complex128, trials, electrodes, freqs int, repr Representation) (*Tensor, error) {
	if trials <= 0 || electrodes <= 0 || freqs <= 0 {
		return nil, ErrInvalidShape
	}

	if len(data) != trials*electrodes*freqs {
		return nil, fmt.Errorf("%w: have %d values, want %d", ErrDataLength, len(data), trials*electrodes*freqs)
	}

	return &Tensor{
		data:       data,
		trials:     trials,
		electrodes: electrodes,
		freqs:      freqs,
		repr:       repr,
	}, nil
}

// Zero builds a tensor of the given shape filled with the zero complex value.
func Zero(trials, electrodes, freqs int, repr Representation) (*Tensor, error) {
	if trials <= 0 || electrodes <= 0 || freqs <= 0 {
		return nil, ErrInvalidShape
	}

	return &Tensor{
		data:       make([]complex128, trials*electrodes*freqs),
		trials:     trials,
		electrodes: electrodes,
		freqs:      freqs,
		repr:       repr,
	}, nil
}

// Trials returns the size of the trial axis.
func (t *Tensor) Trials() int { return t.trials }

// Electrodes returns the size of the electrode axis.
func (t *Tensor) Electrodes() int { return t.electrodes }

// Freqs returns the size of the frequency axis.
func (t *Tensor) Freqs() int { return t.freqs }

// Repr returns the magnitude representation of the tensor's elements.
func (t *Tensor) Repr() Representation { return t.repr }

// At returns the coefficient at (trial, electrode, freq).
func (t *Tensor) At(trial, electrode, freq int) (complex128, error) {
	if trial < 0 || trial >= t.trials ||
		electrode < 0 || electrode >= t.electrodes ||
		freq < 0 || freq >= t.freqs {
		return 0, fmt.Errorf("%w: (%d,%d,%d) in %dx%dx%d", ErrIndexOutOfRange,
			trial, electrode, freq, t.trials, t.electrodes, t.freqs)
	}

	return t.data[(trial*t.electrodes+electrode)*t.freqs+freq], nil
}

// Set stores a coefficient at (trial, electrode, freq). It exists for tensor
// builders (ingestion, spectral front ends); statistics never call it.
func (t *Tensor) Set(trial, electrode, freq int, v complex128) error {
	if trial < 0 || trial >= t.trials ||
		electrode < 0 || electrode >= t.electrodes ||
		freq < 0 || freq >= t.freqs {
		return fmt.Errorf("%w: (%d,%d,%d) in %dx%dx%d", ErrIndexOutOfRange,
			trial, electrode, freq, t.trials, t.electrodes, t.freqs)
	}

	t.data[(trial*t.electrodes+electrode)*t.freqs+freq] = v
	return nil
}

// TrialFiber copies the values along the trial axis for one
// (electrode, freq) cell, restricted to trials [lo, hi). The copy keeps the
// source tensor immutable from the caller's point of view.
func (t *Tensor) TrialFiber(electrode, freq, lo, hi int) ([]complex128, error) {
	if electrode < 0 || electrode >= t.electrodes || freq < 0 || freq >= t.freqs {
		return nil, fmt.Errorf("%w: electrode %d, freq %d in %dx%d", ErrIndexOutOfRange,
			electrode, freq, t.electrodes, t.freqs)
	}

	if lo < 0 || hi > t.trials || lo >= hi {
		return nil, fmt.Errorf("%w: [%d,%d) of %d trials", ErrTrialRange, lo, hi, t.trials)
	}

	out := make([]complex128, hi-lo)
	for i := range out {
		out[i] = t.data[((lo+i)*t.electrodes+electrode)*t.freqs+freq]
	}

	return out, nil
}

// Normalize returns a new tensor with every element scaled to unit magnitude.
// Zero elements stay zero: a missing sample carries no phase information and
// must not be invented. The source tensor is left untouched.
func (t *Tensor) Normalize() *Tensor {
	out := make([]complex128, len(t.data))
	for i, v := range t.data {
		a := cmplx.Abs(v)
		if a == 0 {
			continue
		}
		out[i] = v / complex(a, 0)
	}

	return &Tensor{
		data:       out,
		trials:     t.trials,
		electrodes: t.electrodes,
		freqs:      t.freqs,
		repr:       Unit,
	}
}

// RequireUnit returns an error unless the tensor declares unit representation.
func (t *Tensor) RequireUnit() error {
	if t.repr != Unit {
		return ErrNotUnitMagnitude
	}

	return nil
}
