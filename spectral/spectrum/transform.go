package spectrum

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-specfit/spectral/interp"
	"github.com/cwbudde/algo-specfit/spectral/kernel"
)

// ResampleMethod selects the interpolation used by [Spectrum.Resample].
type ResampleMethod int

const (
	// ResampleSpline interpolates with a natural cubic spline.
	ResampleSpline ResampleMethod = iota

	// ResampleLinear interpolates piecewise linearly.
	ResampleLinear
)

// Resample returns the spectrum interpolated onto refWave. Errors,
// masks and normalization do not propagate onto the new grid; the
// velocity sampling of the result derives from the new grid.
func (s *Spectrum) Resample(refWave []float64, method ResampleMethod) (*Spectrum, error) {
	var (
		ip  interp.Interpolator
		err error
	)
	switch method {
	case ResampleSpline:
		ip, err = interp.NewCubicSpline(s.wave, s.data)
	case ResampleLinear:
		ip, err = interp.NewLinear(s.wave, s.data)
	default:
		return nil, ErrUnknownMethod
	}
	if err != nil {
		return nil, fmt.Errorf("spectrum: resample: %w", err)
	}

	return New(refWave, interp.Eval(ip, refWave))
}

// RebinLogarithmic returns the spectrum resampled onto a logarithmic
// wavelength grid spanning the same range with oversampling times the
// original number of points. The velocity sampling of the result is
// fixed to the velocity step of the first pixel of the original grid.
func (s *Spectrum) RebinLogarithmic(oversampling int) (*Spectrum, error) {
	if oversampling < 1 {
		return nil, ErrInvalidOversampling
	}

	waveLog := make([]float64, len(s.wave)*oversampling)
	floats.LogSpan(waveLog, s.wave[0], s.wave[len(s.wave)-1])

	out, err := s.Resample(waveLog, ResampleSpline)
	if err != nil {
		return nil, err
	}

	out.velSampling = (s.wave[1] - s.wave[0]) / s.wave[0] * SpeedOfLight

	return out, nil
}

// ApplyGaussianLOSVD returns a copy broadened by a Gaussian
// line-of-sight velocity distribution with dispersion disp and shifted
// by vel, both in km/s. The broadening treats data beyond the grid
// edges as zero. Errors, masks and normalization do not propagate; the
// velocity sampling is carried over.
func (s *Spectrum) ApplyGaussianLOSVD(vel, disp float64) (*Spectrum, error) {
	k, err := kernel.Gaussian(disp / s.VelSampling())
	if err != nil {
		return nil, fmt.Errorf("spectrum: losvd: %w", err)
	}
	data, err := kernel.Convolve(s.data, k)
	if err != nil {
		return nil, fmt.Errorf("spectrum: losvd: %w", err)
	}

	scale := 1 + vel/SpeedOfLight
	wave := make([]float64, len(s.wave))
	for i, w := range s.wave {
		wave[i] = w * scale
	}

	out, err := New(wave, data)
	if err != nil {
		return nil, fmt.Errorf("spectrum: losvd: %w", err)
	}

	out.velSampling = s.velSampling

	return out, nil
}

// ApplyKin broadens and shifts the spectrum, then resamples the result
// onto refWave with spline interpolation.
func (s *Spectrum) ApplyKin(vel, disp float64, refWave []float64) (*Spectrum, error) {
	tmp, err := s.ApplyGaussianLOSVD(vel, disp)
	if err != nil {
		return nil, err
	}
	return tmp.Resample(refWave, ResampleSpline)
}
