package testutil

import (
	"math"
	"math/rand/v2"
)

// UnitPhases maps angles in radians to unit-magnitude complex vectors.
func UnitPhases(angles ...float64) []complex128 {
	out := make([]complex128, len(angles))
	for i, a := range angles {
		out[i] = complex(math.Cos(a), math.Sin(a))
	}
	return out
}

// LockedPhases returns n unit vectors clustered around center with
// uniform jitter in [-spread, spread], seeded for reproducibility.
func LockedPhases(seed uint64, n int, center, spread float64) []complex128 {
	rng := rand.New(rand.NewPCG(seed, seed))
	out := make([]complex128, n)
	for i := range out {
		a := center + (rng.Float64()*2-1)*spread
		out[i] = complex(math.Cos(a), math.Sin(a))
	}
	return out
}

// UniformPhases returns n unit vectors with seeded uniform random angles
// on (-pi, pi].
func UniformPhases(seed uint64, n int) []complex128 {
	rng := rand.New(rand.NewPCG(seed, seed))
	out := make([]complex128, n)
	for i := range out {
		a := math.Pi - rng.Float64()*2*math.Pi
		out[i] = complex(math.Cos(a), math.Sin(a))
	}
	return out
}

// Sine generates a deterministic sinusoid with the given initial phase.
func Sine(freqHz, sampleRate, amplitude, phase float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Cos(step*float64(i)+phase)
	}
	return out
}
