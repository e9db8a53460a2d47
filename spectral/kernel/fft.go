package kernel

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// ConvolveFFT performs frequency-domain convolution trimmed to the
// input length. The transform size is the next power of two that holds
// the full linear convolution.
func ConvolveFFT(data, kernel []float64) ([]float64, error) {
	if len(data) == 0 {
		return nil, ErrEmptyInput
	}
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	fullLen := len(data) + len(kernel) - 1
	fftSize := nextPowerOf2(fullLen)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("kernel: failed to create FFT plan: %w", err)
	}

	dataPadded := make([]complex128, fftSize)
	for i, v := range data {
		dataPadded[i] = complex(v, 0)
	}
	kernelPadded := make([]complex128, fftSize)
	for i, v := range kernel {
		kernelPadded[i] = complex(v, 0)
	}

	if err := plan.Forward(dataPadded, dataPadded); err != nil {
		return nil, fmt.Errorf("kernel: forward FFT failed: %w", err)
	}
	if err := plan.Forward(kernelPadded, kernelPadded); err != nil {
		return nil, fmt.Errorf("kernel: forward FFT failed: %w", err)
	}

	for i := range dataPadded {
		dataPadded[i] *= kernelPadded[i]
	}

	if err := plan.Inverse(dataPadded, dataPadded); err != nil {
		return nil, fmt.Errorf("kernel: inverse FFT failed: %w", err)
	}

	full := make([]float64, fullLen)
	for i := range full {
		full[i] = real(dataPadded[i])
	}
	return trimCentered(full, len(data), len(kernel)), nil
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
