// Package circular implements circular (phase) statistics over complex
// trial vectors: mean resultant length, mean angle, circular variance,
// signal power and a bias-corrected squared-coherence estimate.
//
// All reductions are pure and deterministic. Scalar forms operate on one
// trial vector; grid forms apply the same reduction along the trial axis of
// a phase.Tensor for every (electrode, frequency) fiber in one call.
package circular
