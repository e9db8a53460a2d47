// Package spectrum provides the one-dimensional spectrum container and
// its transforms.
//
// A [Spectrum] couples a strictly increasing wavelength grid with flux
// data and optional per-pixel errors, a bad-pixel mask, a continuum
// normalization, and an instrumental resolution. Transforms return new
// Spectrum values and never modify the receiver; the only documented
// in-place operations are [Spectrum.CorrectError] and
// [Spectrum.ApplyNormalization].
//
// Available transforms:
//
//   - [Spectrum.Resample]:           interpolation onto a new grid
//   - [Spectrum.RebinLogarithmic]:   linear to logarithmic grids
//   - [Spectrum.ApplyGaussianLOSVD]: velocity shift and broadening
//   - [Spectrum.ApplyKin]:           broadening plus resampling
//   - [Spectrum.Normalize]:          running-mean continuum removal
//   - [Spectrum.CorrectExtinction]:  Cardelli extinction correction
//   - [Spectrum.Randomize]:          Gaussian noise realizations
//
// Accessor methods return the spectrum's internal slices; callers must
// treat them as read-only.
package spectrum
