// Package testutil provides synthetic spectra and shared assertions for
// tests across the module.
package testutil

import "math"

// LinearGrid returns n wavelengths starting at start with a constant
// step.
func LinearGrid(start, step float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}
	return out
}

// LogGrid returns n wavelengths spaced logarithmically between start
// and end inclusive.
func LogGrid(start, end float64, n int) []float64 {
	out := make([]float64, n)
	lo, hi := math.Log10(start), math.Log10(end)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = math.Pow(10, lo+step*float64(i))
	}
	return out
}

// GaussianLine evaluates a Gaussian emission feature of the given
// center, width and peak amplitude on the wavelength grid.
func GaussianLine(wave []float64, center, sigma, amp float64) []float64 {
	out := make([]float64, len(wave))
	for i, w := range wave {
		d := (w - center) / sigma
		out[i] = amp * math.Exp(-0.5*d*d)
	}
	return out
}

// Continuum returns a flat continuum at the given level.
func Continuum(level float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = level
	}
	return out
}
