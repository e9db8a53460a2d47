package profile

import "github.com/cwbudde/algo-specfit/spectral/interp"

// FWHMFactor is the ratio of a Gaussian's full width at half maximum
// to its sigma.
const FWHMFactor = 2.354

// Resolution models the instrumental line spread as a full width at
// half maximum in wavelength units, either constant or interpolated
// from a table. A nil Resolution means no instrumental broadening.
type Resolution struct {
	fwhm  float64
	table *interp.Linear
}

// NewResolution returns a constant resolution.
func NewResolution(fwhm float64) *Resolution {
	return &Resolution{fwhm: fwhm}
}

// NewResolutionTable returns a resolution interpolated linearly from
// sampled (wavelength, FWHM) pairs.
func NewResolutionTable(wave, fwhm []float64) (*Resolution, error) {
	table, err := interp.NewLinear(wave, fwhm)
	if err != nil {
		return nil, err
	}
	return &Resolution{table: table}, nil
}

// FWHM returns the instrumental width at a wavelength.
func (r *Resolution) FWHM(wave float64) float64 {
	if r == nil {
		return 0
	}
	if r.table != nil {
		return r.table.At(wave)
	}
	return r.fwhm
}

// Sigma returns the instrumental Gaussian sigma at a wavelength.
func (r *Resolution) Sigma(wave float64) float64 {
	return r.FWHM(wave) / FWHMFactor
}
