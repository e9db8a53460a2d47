package spectrum

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-specfit/spectral/interp"
)

// Normalize returns a copy with the continuum divided out. The
// continuum is estimated by a running mean of width pixelWidth with
// edge values replicated beyond the grid; pixelWidth 0 uses a single
// global mean instead. Points flagged in maskNorm are bridged by linear
// interpolation from their unmasked neighbors before smoothing, so they
// do not drag the continuum estimate. Zero continuum values are
// replaced by 1 before dividing. The estimate is stored as the
// normalization of the result.
func (s *Spectrum) Normalize(pixelWidth int, maskNorm []bool) (*Spectrum, error) {
	if pixelWidth < 0 {
		return nil, ErrInvalidWidth
	}
	if maskNorm != nil && len(maskNorm) != len(s.wave) {
		return nil, ErrLengthMismatch
	}

	var mean []float64
	if pixelWidth == 0 {
		sel := s.data
		if maskNorm != nil {
			sel = make([]float64, 0, len(s.data))
			for i, m := range maskNorm {
				if !m {
					sel = append(sel, s.data[i])
				}
			}
			if len(sel) == 0 {
				return nil, ErrNoNormPoints
			}
		}
		level := stat.Mean(sel, nil)
		mean = make([]float64, len(s.data))
		for i := range mean {
			mean[i] = level
		}
	} else {
		temp := append([]float64(nil), s.data...)
		if maskNorm != nil {
			if err := bridgeMasked(temp, maskNorm); err != nil {
				return nil, err
			}
		}
		mean = runningMean(temp, pixelWidth)
	}
	for i, m := range mean {
		if m == 0 {
			mean[i] = 1
		}
	}

	data := make([]float64, len(s.data))
	for i := range data {
		data[i] = s.data[i] / mean[i]
	}

	opts := []Option{WithNormalization(mean)}
	if s.errs != nil {
		errs := make([]float64, len(s.errs))
		for i := range errs {
			errs[i] = s.errs[i] / math.Abs(mean[i])
		}
		opts = append(opts, WithError(errs))
	}
	if s.mask != nil {
		opts = append(opts, WithMask(s.mask))
	}
	if s.instFWHM != nil {
		opts = append(opts, WithInstFWHM(s.instFWHM))
	}

	out, err := New(s.wave, data, opts...)
	if err != nil {
		return nil, err
	}

	out.velSampling = s.velSampling

	return out, nil
}

// bridgeMasked replaces masked entries of data in place with linear
// interpolation over the unmasked entries, extrapolating at the ends.
func bridgeMasked(data []float64, mask []bool) error {
	var xs, ys []float64
	for i, m := range mask {
		if !m {
			xs = append(xs, float64(i))
			ys = append(ys, data[i])
		}
	}
	if len(xs) == len(data) {
		return nil
	}
	if len(xs) < 2 {
		return ErrNoNormPoints
	}

	ip, err := interp.NewLinear(xs, ys)
	if err != nil {
		return err
	}
	for i, m := range mask {
		if m {
			data[i] = ip.At(float64(i))
		}
	}
	return nil
}

// runningMean smooths data with a boxcar of width w. Indices beyond the
// grid replicate the edge values.
func runningMean(data []float64, w int) []float64 {
	n := len(data)
	out := make([]float64, n)
	lo := w / 2
	hi := (w - 1) / 2
	for i := range out {
		sum := 0.0
		for j := i - lo; j <= i+hi; j++ {
			sum += data[min(max(j, 0), n-1)]
		}
		out[i] = sum / float64(w)
	}
	return out
}

// Unnormalized returns a copy with the continuum normalization
// multiplied back into data and error and then dropped. Spectra without
// a normalization are returned as plain copies.
func (s *Spectrum) Unnormalized() *Spectrum {
	out := s.Copy()
	if s.norm == nil {
		return out
	}

	vecmath.MulBlockInPlace(out.data, s.norm)
	if out.errs != nil {
		for i, nv := range s.norm {
			out.errs[i] *= math.Abs(nv)
		}
	}

	out.norm = nil

	return out
}

// ApplyNormalization divides data and error by norm in place and
// records norm as the spectrum's normalization. It refuses to stack
// normalizations.
func (s *Spectrum) ApplyNormalization(norm []float64) error {
	if s.norm != nil {
		return ErrAlreadyNormalized
	}
	if len(norm) != len(s.wave) {
		return ErrLengthMismatch
	}

	for i, nv := range norm {
		s.data[i] /= nv
		if s.errs != nil {
			s.errs[i] /= math.Abs(nv)
		}
	}

	s.norm = append([]float64(nil), norm...)

	return nil
}
