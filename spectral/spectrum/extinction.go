package spectrum

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// ExtinctionMode selects the direction of [Spectrum.CorrectExtinction].
type ExtinctionMode int

const (
	// ExtinctionCorrect removes foreground extinction from the data.
	ExtinctionCorrect ExtinctionMode = iota

	// ExtinctionApply reddens the data instead.
	ExtinctionApply
)

// CorrectExtinction returns a copy with Galactic foreground extinction
// corrected or applied following the Cardelli, Clayton & Mathis
// optical/NIR law. aV is the V-band extinction in magnitudes, rV the
// ratio of total to selective extinction (conventionally 3.1), and the
// wavelength grid is assumed to be in Angstrom. Errors scale with the
// data; masks and normalization do not propagate.
func (s *Spectrum) CorrectExtinction(aV float64, mode ExtinctionMode, rV float64) (*Spectrum, error) {
	if mode != ExtinctionCorrect && mode != ExtinctionApply {
		return nil, ErrUnknownMode
	}

	factor := make([]float64, len(s.wave))
	for i, w := range s.wave {
		y := 10000.0/w - 1.82
		ax := 1 + y*(0.17699+y*(-0.50447+y*(-0.02427+y*(0.72085+y*(0.01979+y*(-0.77530+y*0.32999))))))
		bx := y * (1.41338 + y*(2.28305+y*(1.07233+y*(-5.38434+y*(-0.62251+y*(5.30260+y*(-2.09002)))))))
		factor[i] = math.Pow(10, (ax+bx/rV)*aV/-2.5)
	}
	if mode == ExtinctionCorrect {
		for i := range factor {
			factor[i] = 1 / factor[i]
		}
	}

	data := make([]float64, len(s.data))
	vecmath.MulBlock(data, s.data, factor)

	opts := make([]Option, 0, 1)
	if s.errs != nil {
		errs := make([]float64, len(s.errs))
		vecmath.MulBlock(errs, s.errs, factor)
		opts = append(opts, WithError(errs))
	}

	out, err := New(s.wave, data, opts...)
	if err != nil {
		return nil, err
	}

	out.velSampling = s.velSampling

	return out, nil
}
