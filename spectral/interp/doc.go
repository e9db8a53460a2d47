// Package interp provides interpolation over irregular sample grids.
//
// Available methods:
//
//   - [Linear]:      piecewise linear interpolation
//   - [CubicSpline]: natural cubic spline interpolation
//
// Both operate on a fixed set of strictly increasing knots and
// extrapolate beyond the grid using their end segments. They are the
// building blocks for resampling spectra onto new wavelength grids.
package interp
