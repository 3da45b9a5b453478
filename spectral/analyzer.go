// Package spectral converts raw time-domain trial waveforms into the
// complex Fourier coefficients the phase statistics operate on. It covers
// the preprocessing step upstream of ingestion for pipelines that start
// from recorded signals instead of precomputed coefficient tables.
package spectral

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/phaselab/itpc/phase"
)

// Errors returned by analyzer construction and use.
var (
	ErrInvalidFFTSize = errors.New("spectral: fft size must be positive")
	ErrNoBins         = errors.New("spectral: at least one analysis bin is required")
	ErrBinOutOfRange  = errors.New("spectral: analysis bin outside the one-sided spectrum")
	ErrEmptySignal    = errors.New("spectral: trial waveform is empty")
	ErrSignalTooLong  = errors.New("spectral: trial waveform longer than fft size")
	ErrRaggedTrials   = errors.New("spectral: trials must agree in electrode count")
	ErrNoTrials       = errors.New("spectral: no trial waveforms")
)

// Analyzer computes one-sided complex spectra of fixed-length trial
// waveforms and extracts a configured subset of frequency bins. The FFT
// plan and window are built once and reused across trials.
type Analyzer struct {
	fftSize int
	plan    *algofft.Plan[complex128]
	window  []float64
	bins    []int

	// reused across Coefficients calls
	timeFrame []complex128
	spectrum  []complex128
}

// NewAnalyzer builds an analyzer for the given FFT size and analysis bins.
// Bins index the one-sided spectrum [0, fftSize/2].
func NewAnalyzer(fftSize int, bins []int) (*Analyzer, error) {
	if fftSize <= 0 {
		return nil, ErrInvalidFFTSize
	}
	if len(bins) == 0 {
		return nil, ErrNoBins
	}
	for _, b := range bins {
		if b < 0 || b > fftSize/2 {
			return nil, fmt.Errorf("%w: bin %d of fft size %d", ErrBinOutOfRange, b, fftSize)
		}
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("spectral: failed to create FFT plan: %w", err)
	}

	// Hann analysis window over the full frame.
	win := make([]float64, fftSize)
	for i := range win {
		win[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(fftSize-1)))
	}

	ownBins := make([]int, len(bins))
	copy(ownBins, bins)

	return &Analyzer{
		fftSize:   fftSize,
		plan:      plan,
		window:    win,
		bins:      ownBins,
		timeFrame: make([]complex128, fftSize),
		spectrum:  make([]complex128, fftSize),
	}, nil
}

// FFTSize returns the transform length.
func (a *Analyzer) FFTSize() int { return a.fftSize }

// Bins returns the configured analysis bins.
func (a *Analyzer) Bins() []int {
	out := make([]int, len(a.bins))
	copy(out, a.bins)
	return out
}

// BinForFrequency returns the one-sided spectrum bin closest to freqHz.
func BinForFrequency(freqHz, sampleRate float64, fftSize int) int {
	return int(math.Round(freqHz / sampleRate * float64(fftSize)))
}

// Coefficients windows, zero-pads and transforms one trial waveform, then
// returns the complex coefficient at each configured analysis bin, in bin
// order. Not safe for concurrent use; each goroutine needs its own Analyzer.
func (a *Analyzer) Coefficients(samples []float64) ([]complex128, error) {
	if len(samples) == 0 {
		return nil, ErrEmptySignal
	}
	if len(samples) > a.fftSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrSignalTooLong, len(samples), a.fftSize)
	}

	for i := range a.timeFrame {
		if i < len(samples) {
			a.timeFrame[i] = complex(samples[i]*a.window[i], 0)
		} else {
			a.timeFrame[i] = 0
		}
	}

	if err := a.plan.Forward(a.spectrum, a.timeFrame); err != nil {
		return nil, fmt.Errorf("spectral: forward FFT failed: %w", err)
	}

	out := make([]complex128, len(a.bins))
	for i, b := range a.bins {
		out[i] = a.spectrum[b]
	}
	return out, nil
}

// BuildTensor transforms a full recording set into a raw-amplitude tensor.
// waves is indexed [trial][electrode] and holds one waveform per electrode;
// every trial must carry the same electrode count. The tensor's frequency
// axis is the analyzer's bin list, in order.
func (a *Analyzer) BuildTensor(waves [][][]float64) (*phase.Tensor, error) {
	if len(waves) == 0 {
		return nil, ErrNoTrials
	}

	electrodes := len(waves[0])
	if electrodes == 0 {
		return nil, ErrRaggedTrials
	}

	tensor, err := phase.Zero(len(waves), electrodes, len(a.bins), phase.Raw)
	if err != nil {
		return nil, err
	}

	for trial, perElectrode := range waves {
		if len(perElectrode) != electrodes {
			return nil, fmt.Errorf("%w: trial %d has %d electrodes, want %d",
				ErrRaggedTrials, trial, len(perElectrode), electrodes)
		}

		for e, samples := range perElectrode {
			coeffs, err := a.Coefficients(samples)
			if err != nil {
				return nil, fmt.Errorf("spectral: trial %d electrode %d: %w", trial, e, err)
			}
			for f, c := range coeffs {
				if err := tensor.Set(trial, e, f, c); err != nil {
					return nil, err
				}
			}
		}
	}

	return tensor, nil
}
