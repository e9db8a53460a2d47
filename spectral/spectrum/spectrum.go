package spectrum

import (
	"math/rand/v2"
)

// SpeedOfLight is the speed of light in km/s used in all velocity
// conversions.
const SpeedOfLight = 300000.0

// DefaultBadError is the sentinel substituted for non-positive error
// entries by [Spectrum.CorrectError].
const DefaultBadError = 1e10

// Spectrum is a one-dimensional spectrum: flux samples on a strictly
// increasing wavelength grid, with optional per-pixel errors, bad-pixel
// mask, continuum normalization, and instrumental FWHM.
type Spectrum struct {
	wave        []float64
	data        []float64
	errs        []float64
	mask        []bool
	norm        []float64
	instFWHM    []float64
	velSampling float64 // km/s per pixel; 0 = derive from the grid
}

// Option configures a [Spectrum] during construction.
type Option func(*Spectrum) error

// WithError attaches per-pixel 1-sigma errors.
func WithError(errs []float64) Option {
	return func(s *Spectrum) error {
		s.errs = append([]float64(nil), errs...)
		return nil
	}
}

// WithMask attaches a bad-pixel mask. True marks an excluded pixel.
func WithMask(mask []bool) Option {
	return func(s *Spectrum) error {
		s.mask = append([]bool(nil), mask...)
		return nil
	}
}

// WithNormalization attaches a continuum normalization that has already
// been divided out of the data.
func WithNormalization(norm []float64) Option {
	return func(s *Spectrum) error {
		s.norm = append([]float64(nil), norm...)
		return nil
	}
}

// WithInstFWHM attaches the per-pixel instrumental FWHM.
func WithInstFWHM(fwhm []float64) Option {
	return func(s *Spectrum) error {
		s.instFWHM = append([]float64(nil), fwhm...)
		return nil
	}
}

// WithVelSampling fixes the velocity sampling in km/s per pixel instead
// of deriving it from the wavelength grid.
func WithVelSampling(v float64) Option {
	return func(s *Spectrum) error {
		if v <= 0 {
			return ErrInvalidVelSampling
		}

		s.velSampling = v

		return nil
	}
}

// New creates a spectrum from a wavelength grid and flux data. Both
// slices are copied. The grid must be strictly increasing and contain
// at least 2 points, and every optional sequence must have the same
// length as the grid.
func New(wave, data []float64, opts ...Option) (*Spectrum, error) {
	if len(wave) < 2 {
		return nil, ErrTooShort
	}
	if len(data) != len(wave) {
		return nil, ErrLengthMismatch
	}
	for i := 1; i < len(wave); i++ {
		if wave[i] <= wave[i-1] {
			return nil, ErrNotIncreasing
		}
	}

	s := &Spectrum{
		wave: append([]float64(nil), wave...),
		data: append([]float64(nil), data...),
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		err := opt(s)
		if err != nil {
			return nil, err
		}
	}

	for _, n := range []int{len(s.errs), len(s.mask), len(s.norm), len(s.instFWHM)} {
		if n != 0 && n != len(s.wave) {
			return nil, ErrLengthMismatch
		}
	}

	return s, nil
}

// Len returns the number of wavelength samples.
func (s *Spectrum) Len() int { return len(s.wave) }

// Wave returns the wavelength grid.
func (s *Spectrum) Wave() []float64 { return s.wave }

// Data returns the flux data.
func (s *Spectrum) Data() []float64 { return s.data }

// Error returns the per-pixel errors, or nil when none are present.
func (s *Spectrum) Error() []float64 { return s.errs }

// Mask returns the bad-pixel mask, or nil when none is present.
func (s *Spectrum) Mask() []bool { return s.mask }

// Normalization returns the continuum normalization, or nil.
func (s *Spectrum) Normalization() []float64 { return s.norm }

// InstFWHM returns the per-pixel instrumental FWHM, or nil.
func (s *Spectrum) InstFWHM() []float64 { return s.instFWHM }

// WaveStep returns the smallest step of the wavelength grid.
func (s *Spectrum) WaveStep() float64 {
	step := s.wave[1] - s.wave[0]
	for i := 2; i < len(s.wave); i++ {
		if d := s.wave[i] - s.wave[i-1]; d < step {
			step = d
		}
	}
	return step
}

// VelSampling returns the velocity sampling in km/s per pixel. When no
// value has been set it is derived from the first wavelength step,
// which is exact for logarithmic grids.
func (s *Spectrum) VelSampling() float64 {
	if s.velSampling > 0 {
		return s.velSampling
	}
	return (s.wave[1] - s.wave[0]) / s.wave[0] * SpeedOfLight
}

// SetVelSampling fixes the velocity sampling in km/s per pixel.
func (s *Spectrum) SetVelSampling(v float64) {
	s.velSampling = v
}

// Copy returns a deep copy of the spectrum.
func (s *Spectrum) Copy() *Spectrum {
	out := &Spectrum{
		wave:        append([]float64(nil), s.wave...),
		data:        append([]float64(nil), s.data...),
		velSampling: s.velSampling,
	}
	if s.errs != nil {
		out.errs = append([]float64(nil), s.errs...)
	}
	if s.mask != nil {
		out.mask = append([]bool(nil), s.mask...)
	}
	if s.norm != nil {
		out.norm = append([]float64(nil), s.norm...)
	}
	if s.instFWHM != nil {
		out.instFWHM = append([]float64(nil), s.instFWHM...)
	}
	return out
}

// CorrectError replaces non-positive error entries with replace and
// masks the affected pixels, modifying the spectrum in place. A mask is
// created when none is present. Spectra without errors are left
// untouched. The conventional replacement is [DefaultBadError].
func (s *Spectrum) CorrectError(replace float64) {
	if s.errs == nil {
		return
	}
	for i, e := range s.errs {
		if e <= 0 {
			if s.mask == nil {
				s.mask = make([]bool, len(s.wave))
			}

			s.errs[i] = replace
			s.mask[i] = true
		}
	}
}

// Randomize returns a new noise realization with data drawn per pixel
// from Normal(data, error). Spectra without errors are returned
// unchanged.
func (s *Spectrum) Randomize(rng *rand.Rand) *Spectrum {
	if s.errs == nil {
		return s
	}
	out := s.Copy()
	for i := range out.data {
		out.data[i] = s.data[i] + rng.NormFloat64()*s.errs[i]
	}
	return out
}
