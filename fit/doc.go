// Package fit couples template superposition with kinematic sampling.
//
//   - Superposition: broadens a template library to a trial kinematic
//     state, resamples it onto the observed grid and solves for the
//     template weights
//   - KinLib: alternates MCMC sampling of velocity and dispersion with
//     superposition solves until both converge on a composite template
//
// KinLib seeds the sampler with a single template, then replaces the
// seed with the composite of the previous solve on every iteration, so
// the kinematic posterior tightens as the population mixture improves.
// Exclusion windows move with the current velocity estimate; the
// spectrum itself is never mutated.
package fit
