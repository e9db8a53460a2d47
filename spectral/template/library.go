package template

import (
	"errors"

	"github.com/cwbudde/algo-specfit/spectral/spectrum"
)

// Errors returned by library construction and transforms.
var (
	ErrEmptyLibrary    = errors.New("template: library needs at least 1 template")
	ErrLengthMismatch  = errors.New("template: template length must match the wavelength grid")
	ErrTooShort        = errors.New("template: wavelength grid needs at least 2 points")
	ErrNotIncreasing   = errors.New("template: wavelength grid must be strictly increasing")
	ErrIndexOutOfRange = errors.New("template: template index out of range")
	ErrCoeffMismatch   = errors.New("template: coefficient length must match the template count")
	ErrEmptySelection  = errors.New("template: selection keeps no templates")
	ErrInvalidFraction = errors.New("template: keep fraction must be in (0, 1]")
)

// Library is an ordered collection of template spectra on a shared,
// strictly increasing wavelength grid.
type Library struct {
	wave        []float64
	base        [][]float64 // base[i] holds template i
	velSampling float64     // km/s per pixel; 0 = derive from the grid
}

// New creates a library from a wavelength grid and one data row per
// template. All rows must have the grid's length. The inputs are
// copied.
func New(wave []float64, base [][]float64) (*Library, error) {
	if len(base) == 0 {
		return nil, ErrEmptyLibrary
	}
	if len(wave) < 2 {
		return nil, ErrTooShort
	}
	for i := 1; i < len(wave); i++ {
		if wave[i] <= wave[i-1] {
			return nil, ErrNotIncreasing
		}
	}

	lib := &Library{
		wave: append([]float64(nil), wave...),
		base: make([][]float64, len(base)),
	}
	for i, row := range base {
		if len(row) != len(wave) {
			return nil, ErrLengthMismatch
		}
		lib.base[i] = append([]float64(nil), row...)
	}
	return lib, nil
}

// BaseNumber returns the number of templates.
func (l *Library) BaseNumber() int { return len(l.base) }

// Len returns the number of wavelength samples.
func (l *Library) Len() int { return len(l.wave) }

// Wave returns the shared wavelength grid. Callers must treat the
// returned slice as read-only.
func (l *Library) Wave() []float64 { return l.wave }

// Base returns the template matrix, one row per template. Callers must
// treat the returned slices as read-only.
func (l *Library) Base() [][]float64 { return l.base }

// VelSampling returns the velocity sampling in km/s per pixel. When no
// value has been set it is derived from the first wavelength step.
func (l *Library) VelSampling() float64 {
	if l.velSampling > 0 {
		return l.velSampling
	}
	return (l.wave[1] - l.wave[0]) / l.wave[0] * spectrum.SpeedOfLight
}

// SetVelSampling fixes the velocity sampling in km/s per pixel.
func (l *Library) SetVelSampling(v float64) {
	l.velSampling = v
}

// Spec returns template i as a spectrum sharing the library's grid and
// velocity sampling. Indices are zero based.
func (l *Library) Spec(i int) (*spectrum.Spectrum, error) {
	if i < 0 || i >= len(l.base) {
		return nil, ErrIndexOutOfRange
	}
	s, err := spectrum.New(l.wave, l.base[i])
	if err != nil {
		return nil, err
	}
	s.SetVelSampling(l.velSampling)
	return s, nil
}

// SubLibrary returns an order-preserving subset with the templates
// where keep is true.
func (l *Library) SubLibrary(keep []bool) (*Library, error) {
	if len(keep) != len(l.base) {
		return nil, ErrCoeffMismatch
	}

	var base [][]float64
	for i, k := range keep {
		if k {
			base = append(base, l.base[i])
		}
	}
	if len(base) == 0 {
		return nil, ErrEmptySelection
	}

	out, err := New(l.wave, base)
	if err != nil {
		return nil, err
	}
	out.velSampling = l.velSampling
	return out, nil
}
