package kernel

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-specfit/internal/testutil"
)

const tolerance = 1e-12

func TestGaussianIdentity(t *testing.T) {
	k, err := Gaussian(0)
	if err != nil {
		t.Fatalf("Gaussian(0): %v", err)
	}
	if len(k) != 1 || k[0] != 1 {
		t.Errorf("Gaussian(0): got %v, want [1]", k)
	}
}

func TestGaussianShape(t *testing.T) {
	sigma := 1.5
	k, err := Gaussian(sigma)
	if err != nil {
		t.Fatalf("Gaussian: %v", err)
	}
	wantLen := 2*int(4*sigma+0.5) + 1
	if len(k) != wantLen {
		t.Fatalf("length: got %d, want %d", len(k), wantLen)
	}
	sum := 0.0
	for _, v := range k {
		sum += v
	}
	if math.Abs(sum-1) > tolerance {
		t.Errorf("sum: got %v, want 1", sum)
	}
	// Symmetric around the center, peak at the center.
	c := len(k) / 2
	for i := 1; i <= c; i++ {
		if math.Abs(k[c-i]-k[c+i]) > tolerance {
			t.Errorf("asymmetric at offset %d: %v vs %v", i, k[c-i], k[c+i])
		}
		if k[c+i] >= k[c+i-1] {
			t.Errorf("not decreasing away from center at offset %d", i)
		}
	}
}

func TestGaussianNegativeSigma(t *testing.T) {
	if _, err := Gaussian(-1); err != ErrNegativeSigma {
		t.Errorf("got %v, want ErrNegativeSigma", err)
	}
}

func TestConvolveIdentityKernel(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	got, err := ConvolveDirect(data, []float64{1})
	if err != nil {
		t.Fatalf("ConvolveDirect: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, data, tolerance)
}

func TestConvolveDelta(t *testing.T) {
	// A centered delta reproduces the kernel.
	data := []float64{0, 0, 1, 0, 0}
	k := []float64{0.25, 0.5, 0.25}
	got, err := ConvolveDirect(data, k)
	if err != nil {
		t.Fatalf("ConvolveDirect: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, got, []float64{0, 0.25, 0.5, 0.25, 0}, tolerance)
}

func TestConvolveZeroPaddedEdges(t *testing.T) {
	// With zero padding the edge samples see only part of the kernel.
	data := []float64{1, 1, 1, 1, 1, 1}
	k := []float64{0.25, 0.5, 0.25}
	got, err := ConvolveDirect(data, k)
	if err != nil {
		t.Fatalf("ConvolveDirect: %v", err)
	}
	if math.Abs(got[0]-0.75) > tolerance {
		t.Errorf("left edge: got %v, want 0.75", got[0])
	}
	if math.Abs(got[len(got)-1]-0.75) > tolerance {
		t.Errorf("right edge: got %v, want 0.75", got[len(got)-1])
	}
	for i := 1; i < len(got)-1; i++ {
		if math.Abs(got[i]-1) > tolerance {
			t.Errorf("interior sample %d: got %v, want 1", i, got[i])
		}
	}
}

func TestConvolveFFTMatchesDirect(t *testing.T) {
	n := 257
	data := make([]float64, n)
	for i := range data {
		data[i] = math.Sin(0.05*float64(i)) + 0.3*math.Cos(0.31*float64(i))
	}
	k, err := Gaussian(9.5)
	if err != nil {
		t.Fatalf("Gaussian: %v", err)
	}
	direct, err := ConvolveDirect(data, k)
	if err != nil {
		t.Fatalf("ConvolveDirect: %v", err)
	}
	fft, err := ConvolveFFT(data, k)
	if err != nil {
		t.Fatalf("ConvolveFFT: %v", err)
	}
	testutil.RequireFinite(t, fft)
	testutil.RequireSliceNearlyEqual(t, fft, direct, 1e-9)
}

func TestConvolveEmptyInputs(t *testing.T) {
	if _, err := Convolve(nil, []float64{1}); err != ErrEmptyInput {
		t.Errorf("empty data: got %v, want ErrEmptyInput", err)
	}
	if _, err := Convolve([]float64{1}, nil); err != ErrEmptyKernel {
		t.Errorf("empty kernel: got %v, want ErrEmptyKernel", err)
	}
}
