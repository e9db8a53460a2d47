package spectrum

import (
	"gonum.org/v1/gonum/floats"
)

// HasData reports whether the spectrum carries usable signal between
// the wavelength limits: the data must not sum to zero and at least one
// pixel inside the limits must be unmasked. Use ±Inf for open limits.
func (s *Spectrum) HasData(startWave, endWave float64) bool {
	if floats.Sum(s.data) == 0 {
		return false
	}
	for i, w := range s.wave {
		if w < startWave || w > endWave {
			continue
		}
		if s.mask == nil || !s.mask[i] {
			return true
		}
	}
	return false
}

// SubWaveMask returns a copy restricted to the pixels where selectWave
// is true. All present sequences are sliced alike. At least 2 pixels
// must remain.
func (s *Spectrum) SubWaveMask(selectWave []bool) (*Spectrum, error) {
	if len(selectWave) != len(s.wave) {
		return nil, ErrLengthMismatch
	}

	kept := 0
	for _, keep := range selectWave {
		if keep {
			kept++
		}
	}
	if kept < 2 {
		return nil, ErrTooShort
	}

	wave := make([]float64, 0, kept)
	data := make([]float64, 0, kept)
	var errs, norm, fwhm []float64
	var mask []bool
	if s.errs != nil {
		errs = make([]float64, 0, kept)
	}
	if s.mask != nil {
		mask = make([]bool, 0, kept)
	}
	if s.norm != nil {
		norm = make([]float64, 0, kept)
	}
	if s.instFWHM != nil {
		fwhm = make([]float64, 0, kept)
	}

	for i, keep := range selectWave {
		if !keep {
			continue
		}
		wave = append(wave, s.wave[i])
		data = append(data, s.data[i])
		if errs != nil {
			errs = append(errs, s.errs[i])
		}
		if mask != nil {
			mask = append(mask, s.mask[i])
		}
		if norm != nil {
			norm = append(norm, s.norm[i])
		}
		if fwhm != nil {
			fwhm = append(fwhm, s.instFWHM[i])
		}
	}

	out := &Spectrum{
		wave:        wave,
		data:        data,
		errs:        errs,
		mask:        mask,
		norm:        norm,
		instFWHM:    fwhm,
		velSampling: s.velSampling,
	}
	return out, nil
}

// SubWaveLimits returns a copy restricted to wavelengths inside
// [startWave, endWave]. Use ±Inf for open limits.
func (s *Spectrum) SubWaveLimits(startWave, endWave float64) (*Spectrum, error) {
	sel := make([]bool, len(s.wave))
	for i, w := range s.wave {
		sel[i] = w >= startWave && w <= endWave
	}
	return s.SubWaveMask(sel)
}

// WaveRange returns the first and last wavelength of the grid.
func (s *Spectrum) WaveRange() (float64, float64) {
	return s.wave[0], s.wave[len(s.wave)-1]
}
