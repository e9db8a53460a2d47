package fit

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-specfit/fit/linear"
	"github.com/cwbudde/algo-specfit/spectral/spectrum"
	"github.com/cwbudde/algo-specfit/spectral/template"
)

var (
	// ErrNoUsableData reports that masking left no pixels to fit.
	ErrNoUsableData = errors.New("fit: no usable pixels left after masking")

	// ErrMaskMismatch reports a fit mask whose length differs from the
	// spectrum.
	ErrMaskMismatch = errors.New("fit: mask length does not match spectrum length")
)

// KinState is a line-of-sight kinematic state, velocity and velocity
// dispersion in km/s.
type KinState struct {
	Vel  float64
	Disp float64
}

// SuperpositionConfig controls a single superposition solve.
type SuperpositionConfig struct {
	// Kin broadens and shifts the library before solving. A nil Kin
	// uses the library as given.
	Kin *KinState

	// MaskFit excludes additional pixels from the solve. It is unioned
	// with the spectrum mask and must match the spectrum length.
	MaskFit []bool

	// Negative switches from non-negative to ordinary least squares.
	Negative bool

	// BestSingle fits each template on its own and keeps the one with
	// the lowest chi-square instead of solving for a mixture.
	BestSingle bool
}

// Superposition fits a weighted sum of library templates to the
// spectrum. The library is optionally broadened to cfg.Kin and
// resampled onto the observed grid when the two differ. A library with
// a single template is evaluated with unit weight rather than solved.
//
// The returned coefficients always span the full library. In
// BestSingle mode they form an indicator vector selecting the winning
// template.
func Superposition(spec *spectrum.Spectrum, lib *template.Library, cfg SuperpositionConfig) (*linear.Result, error) {
	if cfg.MaskFit != nil && len(cfg.MaskFit) != spec.Len() {
		return nil, ErrMaskMismatch
	}

	mask := unionMask(spec.Len(), spec.Mask(), cfg.MaskFit)
	sigma := fitSigma(spec)
	if countUsable(mask, sigma) == 0 {
		return nil, ErrNoUsableData
	}

	var err error
	if cfg.Kin != nil {
		lib, err = lib.ApplyGaussianLOSVD(cfg.Kin.Vel, cfg.Kin.Disp)
		if err != nil {
			return nil, fmt.Errorf("fit: broadening library: %w", err)
		}
	}
	if gridDiffers(lib.Wave(), spec.Wave()) {
		lib, err = lib.ResampleBase(spec.Wave())
		if err != nil {
			return nil, fmt.Errorf("fit: resampling library: %w", err)
		}
	}

	switch {
	case cfg.BestSingle:
		return bestSingle(lib.Base(), spec.Data(), sigma, mask)
	case lib.BaseNumber() == 1:
		return linear.SolveFixed(lib.Base(), spec.Data(), sigma, mask, []float64{1})
	default:
		return linear.Solve(lib.Base(), spec.Data(), sigma, mask, cfg.Negative)
	}
}

// bestSingle evaluates every template with unit weight and returns the
// result of the best one, with its coefficient vector widened to an
// indicator over the full library.
func bestSingle(base [][]float64, data, sigma []float64, mask []bool) (*linear.Result, error) {
	var (
		best    *linear.Result
		bestIdx int
	)
	for i, row := range base {
		res, err := linear.SolveFixed([][]float64{row}, data, sigma, mask, []float64{1})
		if err != nil {
			return nil, err
		}
		if best == nil || res.Chisq < best.Chisq {
			best = res
			bestIdx = i
		}
	}

	coeff := make([]float64, len(base))
	coeff[bestIdx] = 1
	best.Coeff = coeff

	return best, nil
}

// fitSigma returns the spectrum errors, or unit weights when the
// spectrum carries none.
func fitSigma(spec *spectrum.Spectrum) []float64 {
	if sigma := spec.Error(); sigma != nil {
		return sigma
	}
	sigma := make([]float64, spec.Len())
	for i := range sigma {
		sigma[i] = 1
	}
	return sigma
}

// unionMask combines masks of length n element-wise. Nil masks are
// skipped; the result is nil when every mask is nil.
func unionMask(n int, masks ...[]bool) []bool {
	var out []bool
	for _, m := range masks {
		if m == nil {
			continue
		}
		if out == nil {
			out = make([]bool, n)
		}
		for i, v := range m {
			out[i] = out[i] || v
		}
	}
	return out
}

func countUsable(mask []bool, sigma []float64) int {
	count := 0
	for i, s := range sigma {
		if s <= 0 || mask != nil && mask[i] {
			continue
		}
		count++
	}
	return count
}

func gridDiffers(a, b []float64) bool {
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}
