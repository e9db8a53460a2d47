package fit

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-specfit/spectral/spectrum"
	"github.com/cwbudde/algo-specfit/spectral/template"
)

const tolerance = 1e-9

// testGrid returns n wavelengths starting at 4000 Angstrom in 1
// Angstrom steps.
func testGrid(n int) []float64 {
	wave := make([]float64, n)
	for i := range wave {
		wave[i] = 4000 + float64(i)
	}
	return wave
}

// featureRow samples a flat continuum with Gaussian features added on
// top. Each feature is {center, amplitude, width}; negative amplitudes
// model absorption.
func featureRow(wave []float64, features ...[3]float64) []float64 {
	row := make([]float64, len(wave))
	for i, w := range wave {
		v := 1.0
		for _, f := range features {
			d := (w - f[0]) / f[2]
			v += f[1] * math.Exp(-0.5*d*d)
		}
		row[i] = v
	}
	return row
}

// twoTemplates builds a library of two spectrally distinct templates
// with a fixed velocity sampling.
func twoTemplates(t *testing.T, wave []float64) *template.Library {
	t.Helper()
	base := [][]float64{
		featureRow(wave, [3]float64{4100, -0.5, 8}, [3]float64{4300, -0.3, 12}),
		featureRow(wave, [3]float64{4200, 0.4, 10}, [3]float64{4420, -0.6, 9}),
	}
	lib, err := template.New(wave, base)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	lib.SetVelSampling(75)
	return lib
}

func constSlice(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func testSpectrum(t *testing.T, wave, data []float64, sigma float64) *spectrum.Spectrum {
	t.Helper()
	spec, err := spectrum.New(wave, data, spectrum.WithError(constSlice(len(wave), sigma)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return spec
}

// mix evaluates a weighted sum of template rows.
func mix(rows [][]float64, coeff []float64) []float64 {
	out := make([]float64, len(rows[0]))
	for i := range out {
		for j, c := range coeff {
			out[i] += c * rows[j][i]
		}
	}
	return out
}

func TestSuperpositionRecoversWeights(t *testing.T) {
	wave := testGrid(512)
	lib := twoTemplates(t, wave)
	data := mix(lib.Base(), []float64{0.6, 0.4})
	spec := testSpectrum(t, wave, data, 1)

	res, err := Superposition(spec, lib, SuperpositionConfig{})
	if err != nil {
		t.Fatalf("Superposition: %v", err)
	}
	want := []float64{0.6, 0.4}
	for i, c := range res.Coeff {
		if math.Abs(c-want[i]) > tolerance {
			t.Errorf("Coeff[%d]: got %v, want %v", i, c, want[i])
		}
	}
	if res.Chisq > 1e-8 {
		t.Errorf("Chisq: got %v, want about zero", res.Chisq)
	}
	for i := range data {
		if math.Abs(res.Model[i]-data[i]) > 1e-6 {
			t.Fatalf("Model[%d]: got %v, want %v", i, res.Model[i], data[i])
		}
	}
}

func TestSuperpositionBroadened(t *testing.T) {
	wave := testGrid(512)
	lib := twoTemplates(t, wave)

	broad, err := lib.ApplyGaussianLOSVD(250, 160)
	if err != nil {
		t.Fatalf("ApplyGaussianLOSVD: %v", err)
	}
	resampled, err := broad.ResampleBase(wave)
	if err != nil {
		t.Fatalf("ResampleBase: %v", err)
	}
	data := mix(resampled.Base(), []float64{0.7, 0.3})
	spec := testSpectrum(t, wave, data, 1)

	res, err := Superposition(spec, lib, SuperpositionConfig{Kin: &KinState{Vel: 250, Disp: 160}})
	if err != nil {
		t.Fatalf("Superposition: %v", err)
	}
	want := []float64{0.7, 0.3}
	for i, c := range res.Coeff {
		if math.Abs(c-want[i]) > 1e-6 {
			t.Errorf("Coeff[%d]: got %v, want %v", i, c, want[i])
		}
	}
	if res.Chisq > 1e-6 {
		t.Errorf("Chisq: got %v, want about zero", res.Chisq)
	}
}

func TestSuperpositionResamplesLibraryGrid(t *testing.T) {
	libWave := make([]float64, 272)
	for i := range libWave {
		libWave[i] = 3990 + 2*float64(i)
	}
	lib := twoTemplates(t, libWave)

	specWave := testGrid(500)
	resampled, err := lib.ResampleBase(specWave)
	if err != nil {
		t.Fatalf("ResampleBase: %v", err)
	}
	data := mix(resampled.Base(), []float64{0.5, 0.5})
	spec := testSpectrum(t, specWave, data, 1)

	res, err := Superposition(spec, lib, SuperpositionConfig{})
	if err != nil {
		t.Fatalf("Superposition: %v", err)
	}
	for i, c := range res.Coeff {
		if math.Abs(c-0.5) > tolerance {
			t.Errorf("Coeff[%d]: got %v, want 0.5", i, c)
		}
	}
}

func TestSuperpositionSingleTemplate(t *testing.T) {
	wave := testGrid(256)
	row := featureRow(wave, [3]float64{4100, -0.5, 8})
	lib, err := template.New(wave, [][]float64{row})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	spec := testSpectrum(t, wave, row, 1)

	res, err := Superposition(spec, lib, SuperpositionConfig{})
	if err != nil {
		t.Fatalf("Superposition: %v", err)
	}
	if len(res.Coeff) != 1 || res.Coeff[0] != 1 {
		t.Errorf("Coeff: got %v, want [1]", res.Coeff)
	}
	if res.Chisq > 1e-10 {
		t.Errorf("Chisq: got %v, want zero", res.Chisq)
	}
}

func TestSuperpositionBestSingle(t *testing.T) {
	wave := testGrid(512)
	base := [][]float64{
		featureRow(wave, [3]float64{4100, -0.5, 8}),
		featureRow(wave, [3]float64{4200, 0.4, 10}),
		featureRow(wave, [3]float64{4350, -0.3, 14}),
	}
	lib, err := template.New(wave, base)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	spec := testSpectrum(t, wave, base[1], 1)

	res, err := Superposition(spec, lib, SuperpositionConfig{BestSingle: true})
	if err != nil {
		t.Fatalf("Superposition: %v", err)
	}
	want := []float64{0, 1, 0}
	for i, c := range res.Coeff {
		if c != want[i] {
			t.Errorf("Coeff[%d]: got %v, want %v", i, c, want[i])
		}
	}
	if res.Chisq > 1e-10 {
		t.Errorf("Chisq: got %v, want zero", res.Chisq)
	}
	for i := range base[1] {
		if math.Abs(res.Model[i]-base[1][i]) > tolerance {
			t.Fatalf("Model[%d]: got %v, want %v", i, res.Model[i], base[1][i])
		}
	}
}

func TestSuperpositionNegativeWeights(t *testing.T) {
	wave := testGrid(512)
	lib := twoTemplates(t, wave)
	data := mix(lib.Base(), []float64{1.2, -0.4})
	spec := testSpectrum(t, wave, data, 1)

	res, err := Superposition(spec, lib, SuperpositionConfig{Negative: true})
	if err != nil {
		t.Fatalf("Superposition: %v", err)
	}
	want := []float64{1.2, -0.4}
	for i, c := range res.Coeff {
		if math.Abs(c-want[i]) > tolerance {
			t.Errorf("Coeff[%d]: got %v, want %v", i, c, want[i])
		}
	}

	res, err = Superposition(spec, lib, SuperpositionConfig{})
	if err != nil {
		t.Fatalf("Superposition: %v", err)
	}
	for i, c := range res.Coeff {
		if c < 0 {
			t.Errorf("Coeff[%d]: got %v, want non-negative", i, c)
		}
	}
}

func TestSuperpositionMaskFit(t *testing.T) {
	wave := testGrid(512)
	lib := twoTemplates(t, wave)
	data := mix(lib.Base(), []float64{0.6, 0.4})
	maskFit := make([]bool, len(wave))
	for i := 200; i < 205; i++ {
		data[i] += 5
		maskFit[i] = true
	}
	spec := testSpectrum(t, wave, data, 1)

	res, err := Superposition(spec, lib, SuperpositionConfig{MaskFit: maskFit})
	if err != nil {
		t.Fatalf("Superposition: %v", err)
	}
	want := []float64{0.6, 0.4}
	for i, c := range res.Coeff {
		if math.Abs(c-want[i]) > tolerance {
			t.Errorf("Coeff[%d]: got %v, want %v", i, c, want[i])
		}
	}
	if res.Chisq > 1e-8 {
		t.Errorf("Chisq: got %v, want about zero", res.Chisq)
	}

	unmasked, err := Superposition(spec, lib, SuperpositionConfig{})
	if err != nil {
		t.Fatalf("Superposition: %v", err)
	}
	if unmasked.Chisq < 50 {
		t.Errorf("Chisq without mask: got %v, want dominated by the contamination", unmasked.Chisq)
	}
}

func TestSuperpositionValidation(t *testing.T) {
	wave := testGrid(64)
	lib := twoTemplates(t, wave)
	data := mix(lib.Base(), []float64{0.6, 0.4})

	spec := testSpectrum(t, wave, data, 1)
	if _, err := Superposition(spec, lib, SuperpositionConfig{MaskFit: make([]bool, 5)}); !errors.Is(err, ErrMaskMismatch) {
		t.Errorf("short mask: got %v, want ErrMaskMismatch", err)
	}

	all := make([]bool, len(wave))
	for i := range all {
		all[i] = true
	}
	if _, err := Superposition(spec, lib, SuperpositionConfig{MaskFit: all}); !errors.Is(err, ErrNoUsableData) {
		t.Errorf("all masked: got %v, want ErrNoUsableData", err)
	}

	zeroErr := testSpectrum(t, wave, data, 0)
	if _, err := Superposition(zeroErr, lib, SuperpositionConfig{}); !errors.Is(err, ErrNoUsableData) {
		t.Errorf("zero errors: got %v, want ErrNoUsableData", err)
	}
}
