// Package profile fits parametric emission-line profiles to spectra.
//
//   - Line: a single Gaussian or Lorentzian profile with flux,
//     velocity and dispersion parameters, each optionally fixed or
//     bounded
//   - LineSet: an ordered group of lines evaluated as one model,
//     optionally broadened by an instrumental Resolution
//   - Fit: Levenberg-Marquardt or Nelder-Mead minimization of the
//     weighted chi-square, with analytic or Monte-Carlo parameter
//     errors
//
// Velocities and dispersions are in km/s; widths convert to
// wavelength units through each line's rest wavelength.
package profile
