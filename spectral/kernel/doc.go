// Package kernel provides smoothing kernels and same-length convolution
// for sampled spectra.
//
// The package offers two convolution strategies:
//
//   - Direct convolution: O(N*M) time-domain convolution, best for the
//     short kernels produced by typical velocity dispersions
//   - FFT convolution: frequency-domain convolution for wide kernels
//
// [Convolve] selects the strategy automatically based on kernel length.
// All routines zero-pad beyond the data edges and return a result with
// the same length as the input, kernel center aligned, which is the
// convention expected when broadening spectra by a line-of-sight
// velocity distribution.
package kernel
