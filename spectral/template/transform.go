package template

import (
	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-specfit/spectral/interp"
	"github.com/cwbudde/algo-specfit/spectral/kernel"
	"github.com/cwbudde/algo-specfit/spectral/spectrum"
)

// ApplyGaussianLOSVD convolves every template with a Gaussian
// line-of-sight velocity distribution and shifts the shared grid by the
// systemic velocity. The kernel width disp is interpreted in km/s and
// converted to pixels using the library's velocity sampling; it is
// computed once and shared by all templates.
func (l *Library) ApplyGaussianLOSVD(vel, disp float64) (*Library, error) {
	k, err := kernel.Gaussian(disp / l.VelSampling())
	if err != nil {
		return nil, err
	}

	base := make([][]float64, len(l.base))
	for i, row := range l.base {
		base[i], err = kernel.Convolve(row, k)
		if err != nil {
			return nil, err
		}
	}

	wave := make([]float64, len(l.wave))
	floats.ScaleTo(wave, 1+vel/spectrum.SpeedOfLight, l.wave)

	out, err := New(wave, base)
	if err != nil {
		return nil, err
	}
	out.velSampling = l.velSampling
	return out, nil
}

// ResampleBase interpolates every template onto refWave with a cubic
// spline. Points outside the library's grid take the boundary segment's
// extrapolation.
func (l *Library) ResampleBase(refWave []float64) (*Library, error) {
	base := make([][]float64, len(l.base))
	for i, row := range l.base {
		sp, err := interp.NewCubicSpline(l.wave, row)
		if err != nil {
			return nil, err
		}
		base[i] = interp.Eval(sp, refWave)
	}

	out, err := New(refWave, base)
	if err != nil {
		return nil, err
	}
	out.velSampling = l.velSampling
	return out, nil
}

// CompositeSpectrum forms the linear combination of all templates with
// the given coefficients and returns it on the library's grid.
func (l *Library) CompositeSpectrum(coeff []float64) (*spectrum.Spectrum, error) {
	if len(coeff) != len(l.base) {
		return nil, ErrCoeffMismatch
	}

	data := make([]float64, len(l.wave))
	for i, c := range coeff {
		if c == 0 {
			continue
		}
		floats.AddScaled(data, c, l.base[i])
	}

	s, err := spectrum.New(l.wave, data)
	if err != nil {
		return nil, err
	}
	s.SetVelSampling(l.velSampling)
	return s, nil
}

// Normalize divides every template by its own running-mean continuum,
// using the same window and exclusion mask for all templates.
func (l *Library) Normalize(pixelWidth int, maskNorm []bool) (*Library, error) {
	base := make([][]float64, len(l.base))
	for i := range l.base {
		s, err := l.Spec(i)
		if err != nil {
			return nil, err
		}
		norm, err := s.Normalize(pixelWidth, maskNorm)
		if err != nil {
			return nil, err
		}
		base[i] = norm.Data()
	}

	out, err := New(l.wave, base)
	if err != nil {
		return nil, err
	}
	out.velSampling = l.velSampling
	return out, nil
}
