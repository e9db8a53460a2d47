// Package bootstrap estimates uncertainties of a template
// superposition by refitting noise realizations of the spectrum.
//
// Each realization perturbs the data within its errors, drops a random
// subset of the templates and solves the superposition again; the
// scatter of the recovered weights across realizations measures their
// uncertainty. A line set can additionally be fitted against every
// realization's residual to propagate the continuum uncertainty into
// emission-line errors.
//
// All randomness derives from per-realization streams, so results are
// reproducible for a fixed seed and independent of how many workers
// run the realizations.
package bootstrap
