package kernel

import (
	"errors"
	"math"
)

// Errors returned by kernel construction and convolution.
var (
	ErrEmptyInput    = errors.New("kernel: empty input")
	ErrEmptyKernel   = errors.New("kernel: empty kernel")
	ErrNegativeSigma = errors.New("kernel: sigma must be >= 0")
)

// Gaussian returns a normalized Gaussian kernel sampled at integer
// offsets -r..r with standard deviation sigma, in samples. The radius
// is r = int(4*sigma + 0.5), so the kernel always has odd length.
// sigma = 0 yields the identity kernel [1].
func Gaussian(sigma float64) ([]float64, error) {
	if sigma < 0 {
		return nil, ErrNegativeSigma
	}
	r := int(4*sigma + 0.5)
	if r == 0 {
		return []float64{1}, nil
	}
	k := make([]float64, 2*r+1)
	sum := 0.0
	for i := -r; i <= r; i++ {
		v := math.Exp(-0.5 * float64(i) * float64(i) / (sigma * sigma))
		k[i+r] = v
		sum += v
	}
	for i := range k {
		k[i] /= sum
	}
	return k, nil
}

// Convolve convolves data with kernel, zero-padding beyond the edges,
// and returns a result with the same length as data, kernel center
// aligned. For short kernels it uses direct convolution; for longer
// kernels it switches to the FFT method.
func Convolve(data, kernel []float64) ([]float64, error) {
	const directThreshold = 64
	if len(kernel) <= directThreshold {
		return ConvolveDirect(data, kernel)
	}
	return ConvolveFFT(data, kernel)
}

// ConvolveDirect performs direct time-domain convolution trimmed to the
// input length.
func ConvolveDirect(data, kernel []float64) ([]float64, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}
	full := make([]float64, len(data)+len(kernel)-1)
	for i, d := range data {
		for j, k := range kernel {
			full[i+j] += d * k
		}
	}
	return trimCentered(full, len(data), len(kernel)), nil
}

// trimCentered extracts the center-aligned window of length n from a
// full convolution result computed with a kernel of length m.
func trimCentered(full []float64, n, m int) []float64 {
	start := (m - 1) / 2
	return full[start : start+n]
}
