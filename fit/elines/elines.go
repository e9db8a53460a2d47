package elines

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/cwbudde/algo-specfit/fit/profile"
	"github.com/cwbudde/algo-specfit/spectral/spectrum"
)

// Config controls an emission-line fit.
type Config struct {
	Method      profile.Method
	GuessWindow float64 // wavelength window for guess refinement; 0 = keep guesses
	FTol        float64
	XTol        float64
	MaxFev      int
	ErrSim      int // Monte-Carlo redraws for line errors; 0 = off
	Seed        uint64
}

// LineModel is the measurement of one fitted Gaussian line. The width
// is reported as a velocity FWHM.
type LineModel struct {
	Flux    float64
	Vel     float64
	FWHM    float64
	FluxErr float64
	VelErr  float64
	FWHMErr float64
}

// Result is the outcome of an emission-line fit.
type Result struct {
	Lines    map[string]LineModel // Gaussian lines by name
	Set      profile.LineSet      // all fitted lines
	Bestfit  []float64            // model on the spectrum's full grid
	Residual []float64            // data minus model on the full grid
	Chisq    float64              // over the selected region
}

// Fit fits the line set against the residual spectrum. selectWave
// restricts the constrained pixels (nil for all); the best-fit model
// and residual always cover the full grid. With a non-zero GuessWindow
// the flux and velocity guesses are refined against the unrestricted
// spectrum first.
func Fit(residual *spectrum.Spectrum, lines *profile.LineSet, selectWave []bool, cfg Config) (*Result, error) {
	work := lines.Clone()

	if cfg.GuessWindow != 0 {
		work.GuessPar(residual.Wave(), residual.Data(), cfg.GuessWindow)
	}

	sub := residual
	if selectWave != nil {
		var err error
		sub, err = residual.SubWaveMask(selectWave)
		if err != nil {
			return nil, fmt.Errorf("elines: restricting to selected wavelengths: %w", err)
		}
	}

	fitted, err := profile.Fit(sub.Wave(), sub.Data(), sub.Error(), &work, profile.FitConfig{
		Method: cfg.Method,
		FTol:   cfg.FTol,
		XTol:   cfg.XTol,
		MaxFev: cfg.MaxFev,
		ErrSim: cfg.ErrSim,
		Seed:   cfg.Seed,
	})
	if err != nil {
		return nil, err
	}

	model := fitted.Set.Eval(residual.Wave())
	resid := make([]float64, residual.Len())
	floats.SubTo(resid, residual.Data(), model)

	out := &Result{
		Lines:    make(map[string]LineModel),
		Set:      fitted.Set,
		Bestfit:  model,
		Residual: resid,
		Chisq:    fitted.Chisq,
	}
	for i := range fitted.Set.Lines {
		l := &fitted.Set.Lines[i]
		if l.Kind != profile.KindGauss {
			continue
		}
		e := fitted.Errors[i]
		out.Lines[l.Name] = LineModel{
			Flux:    l.Flux.Value,
			Vel:     l.Vel.Value,
			FWHM:    math.Abs(l.Disp.Value) * profile.FWHMFactor,
			FluxErr: e.Flux,
			VelErr:  e.Vel,
			FWHMErr: e.Disp * profile.FWHMFactor,
		}
	}
	return out, nil
}
