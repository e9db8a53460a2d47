package kernel

import (
	"math"
	"testing"
)

func benchSpectrum(n int) []float64 {
	data := make([]float64, n)
	for i := range data {
		data[i] = 1 + 0.2*math.Sin(0.01*float64(i))
	}
	return data
}

func BenchmarkConvolveDirect(b *testing.B) {
	data := benchSpectrum(4096)
	k, _ := Gaussian(4)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ConvolveDirect(data, k)
	}
}

func BenchmarkConvolveFFT(b *testing.B) {
	data := benchSpectrum(4096)
	k, _ := Gaussian(24)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = ConvolveFFT(data, k)
	}
}
