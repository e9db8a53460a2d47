// Package elines fits emission lines against continuum-subtracted
// residual spectra.
//
// Fit restricts the spectrum to a selected wavelength region, refines
// the line guesses against the unrestricted data, delegates to the
// profile fitter and evaluates the best-fit model back on the full
// grid. Gaussian lines aggregate into named flux, velocity and FWHM
// measurements; other profile kinds contribute to the model only.
package elines
