// Package phase provides the tensor data model for trial-resolved spectral
// phase data. A Tensor holds complex Fourier coefficients indexed by
// (trial, electrode, frequency bin); a ConditionSet names contiguous trial
// ranges belonging to experimental conditions. All downstream statistics
// treat a Tensor as read-only.
package phase
