// Package template provides the template library: an ordered set of
// model spectra on a shared wavelength grid that serves as the basis of
// superposition fits.
//
// A [Library] supports the same kinematic transforms as a single
// spectrum, applied to every template at once, plus composition and
// subsetting:
//
//   - [Library.ApplyGaussianLOSVD]: broaden and shift all templates
//   - [Library.ResampleBase]:       resample all templates
//   - [Library.CompositeSpectrum]:  weighted sum of the templates
//   - [Library.SubLibrary]:         order-preserving subsets
//   - [Library.RandomSubLibrary]:   random subsets for resampling runs
//
// Transforms return new Library values and never modify the receiver.
package template
