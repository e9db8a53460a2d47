package elines

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-specfit/fit/profile"
	"github.com/cwbudde/algo-specfit/internal/testutil"
	"github.com/cwbudde/algo-specfit/spectral/spectrum"
)

func gaussLine(name string, restWave, flux, vel, disp float64) profile.Line {
	return profile.Line{
		Name:     name,
		Kind:     profile.KindGauss,
		RestWave: restWave,
		Flux:     profile.Param{Value: flux},
		Vel:      profile.Param{Value: vel},
		Disp:     profile.Param{Value: disp},
	}
}

// residualSpectrum builds a continuum-free spectrum holding two
// emission lines.
func residualSpectrum(t *testing.T) (*spectrum.Spectrum, profile.LineSet) {
	t.Helper()
	truth := profile.LineSet{Lines: []profile.Line{
		gaussLine("Hbeta", 4861.33, 40, 300, 110),
		gaussLine("OIII5007", 5006.84, 90, 300, 110),
	}}

	wave := testutil.LinearGrid(4800, 0.5, 600)
	data := truth.Eval(wave)

	s, err := spectrum.New(wave, data)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, truth
}

func TestFitRecoversLines(t *testing.T) {
	res, truth := residualSpectrum(t)

	guess := truth.Clone()
	for i := range guess.Lines {
		guess.Lines[i].Flux.Value = 10
		guess.Lines[i].Vel.Value = 200
	}

	out, err := Fit(res, &guess, nil, Config{GuessWindow: 30})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	hb, ok := out.Lines["Hbeta"]
	if !ok {
		t.Fatal("Lines: Hbeta missing")
	}
	if math.Abs(hb.Flux-40) > 0.1 {
		t.Errorf("Hbeta Flux: got %v, want 40", hb.Flux)
	}
	if math.Abs(hb.Vel-300) > 0.5 {
		t.Errorf("Hbeta Vel: got %v, want 300", hb.Vel)
	}
	if math.Abs(hb.FWHM-110*profile.FWHMFactor) > 1 {
		t.Errorf("Hbeta FWHM: got %v, want %v", hb.FWHM, 110*profile.FWHMFactor)
	}

	oiii := out.Lines["OIII5007"]
	if math.Abs(oiii.Flux-90) > 0.1 {
		t.Errorf("OIII Flux: got %v, want 90", oiii.Flux)
	}

	for i := range out.Bestfit {
		if math.Abs(out.Bestfit[i]-res.Data()[i]) > 1e-3 {
			t.Fatalf("Bestfit[%d]: got %v, want %v", i, out.Bestfit[i], res.Data()[i])
		}
		if math.Abs(out.Residual[i]) > 1e-3 {
			t.Fatalf("Residual[%d]: got %v, want ~0", i, out.Residual[i])
		}
	}
}

func TestFitSelectedRegion(t *testing.T) {
	res, truth := residualSpectrum(t)

	// Select only the OIII region; Hbeta is fixed so the restricted fit
	// stays well determined.
	sel := make([]bool, res.Len())
	for i, w := range res.Wave() {
		sel[i] = w > 4980 && w < 5040
	}

	guess := truth.Clone()
	guess.Lines[0].Flux.Fixed = true
	guess.Lines[0].Vel.Fixed = true
	guess.Lines[0].Disp.Fixed = true
	guess.Lines[1].Flux.Value = 20

	out, err := Fit(res, &guess, sel, Config{})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	if got := out.Lines["OIII5007"].Flux; math.Abs(got-90) > 0.5 {
		t.Errorf("OIII Flux: got %v, want 90 within 0.5", got)
	}
	if len(out.Bestfit) != res.Len() {
		t.Errorf("Bestfit length: got %d, want full grid %d", len(out.Bestfit), res.Len())
	}
}

func TestFitNonGaussExcluded(t *testing.T) {
	res, truth := residualSpectrum(t)

	guess := truth.Clone()
	lorentz := gaussLine("broad", 4900, 5, 0, 400)
	lorentz.Kind = profile.KindLorentz
	guess.Lines = append(guess.Lines, lorentz)

	out, err := Fit(res, &guess, nil, Config{})
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if _, ok := out.Lines["broad"]; ok {
		t.Error("Lines: Lorentzian should not aggregate by name")
	}
	if len(out.Set.Lines) != 3 {
		t.Errorf("Set.Lines: got %d, want all 3 fitted lines", len(out.Set.Lines))
	}
}

func TestFitTooNarrowSelection(t *testing.T) {
	res, truth := residualSpectrum(t)
	sel := make([]bool, res.Len())
	sel[0] = true

	guess := truth.Clone()
	if _, err := Fit(res, &guess, sel, Config{}); !errors.Is(err, spectrum.ErrTooShort) {
		t.Errorf("Fit: got error %v, want %v", err, spectrum.ErrTooShort)
	}
}
