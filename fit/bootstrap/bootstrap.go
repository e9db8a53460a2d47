package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/cwbudde/algo-specfit/fit"
	"github.com/cwbudde/algo-specfit/fit/elines"
	"github.com/cwbudde/algo-specfit/fit/linear"
	"github.com/cwbudde/algo-specfit/fit/profile"
	"github.com/cwbudde/algo-specfit/spectral/spectrum"
	"github.com/cwbudde/algo-specfit/spectral/template"
)

var (
	// ErrInvalidConfig reports a configuration with negative counts or
	// an out-of-range keep percentage.
	ErrInvalidConfig = errors.New("bootstrap: invalid configuration")

	// ErrTooManyRetries reports a realization that kept failing to
	// converge.
	ErrTooManyRetries = errors.New("bootstrap: too many failed realizations")
)

const (
	defaultBootstraps = 100
	defaultModKeep    = 80.0
	defaultRetryLimit = 25
)

// Config controls Estimate.
type Config struct {
	// Bootstraps is the number of noise realizations. Zero means 100.
	Bootstraps int

	// ModKeep is the percentage of templates kept in each realization,
	// in (0, 100]. Zero means 80.
	ModKeep float64

	// Workers bounds the number of realizations fitted concurrently.
	// Values below 2 run serially.
	Workers int

	// RetryLimit caps how often a realization is redrawn after a
	// failed solve. Zero means 25.
	RetryLimit int

	// Seed fixes the random streams. Zero seeds from entropy.
	Seed uint64

	// VelErr and DispErr, when both positive, draw a fresh kinematic
	// state for every realization instead of broadening the library
	// once.
	VelErr  float64
	DispErr float64

	// MaskFit excludes additional pixels from every solve. It must
	// match the spectrum length.
	MaskFit []bool

	// Lines, when set, is fitted against the residual of every
	// realization after undoing the continuum normalization.
	Lines *profile.LineSet

	// SelectWave restricts the line fit to the marked pixels.
	SelectWave []bool

	// Eline configures the line fit.
	Eline elines.Config
}

func (c Config) normalized() (Config, error) {
	if c.Bootstraps < 0 || c.RetryLimit < 0 || c.ModKeep < 0 || c.ModKeep > 100 {
		return Config{}, ErrInvalidConfig
	}
	if c.Bootstraps == 0 {
		c.Bootstraps = defaultBootstraps
	}
	if c.ModKeep == 0 {
		c.ModKeep = defaultModKeep
	}
	if c.RetryLimit == 0 {
		c.RetryLimit = defaultRetryLimit
	}
	if c.Seed == 0 {
		c.Seed = rand.Uint64()
	}
	return c, nil
}

// LineError is the bootstrap scatter of one Gaussian line.
type LineError struct {
	Flux float64
	Vel  float64
	FWHM float64
}

// Result collects the outcome of all realizations.
type Result struct {
	// Coeff holds one row of template weights per realization,
	// spanning the full library. Templates dropped from a realization
	// keep weight zero.
	Coeff [][]float64

	// LineErrors maps Gaussian line names to the standard deviation of
	// their fitted parameters across realizations. Nil when no line
	// set was fitted.
	LineErrors map[string]LineError
}

// CoeffStdDev returns the per-template sample standard deviation of
// the bootstrap weights.
func (r *Result) CoeffStdDev() []float64 {
	if len(r.Coeff) == 0 {
		return nil
	}
	out := make([]float64, len(r.Coeff[0]))
	col := make([]float64, len(r.Coeff))
	for j := range out {
		for i, row := range r.Coeff {
			col[i] = row[j]
		}
		out[j] = stat.StdDev(col, nil)
	}
	return out
}

type draw struct {
	coeff []float64
	lines map[string]elines.LineModel
}

// Estimate refits noise realizations of the spectrum against random
// sub-libraries and collects the scatter of the template weights. The
// library is broadened to kin and resampled onto the observed grid
// once up front; when cfg carries both kinematic errors, every
// realization draws its own state instead.
//
// Realizations whose solve does not converge are redrawn with fresh
// randomness, up to cfg.RetryLimit attempts each. Any other failure
// aborts the whole estimate.
func Estimate(ctx context.Context, spec *spectrum.Spectrum, lib *template.Library, kin fit.KinState, cfg Config) (*Result, error) {
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}
	if cfg.MaskFit != nil && len(cfg.MaskFit) != spec.Len() {
		return nil, fit.ErrMaskMismatch
	}

	redraw := cfg.VelErr > 0 && cfg.DispErr > 0
	var fixed *template.Library
	if !redraw {
		fixed, err = broadenOnto(lib, kin.Vel, kin.Disp, spec.Wave())
		if err != nil {
			return nil, err
		}
	}

	draws := make([]draw, cfg.Bootstraps)
	one := func(m int) error {
		for attempt := 0; ; attempt++ {
			if attempt > cfg.RetryLimit {
				return fmt.Errorf("bootstrap: realization %d: %w", m, ErrTooManyRetries)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			// Stream seeds depend only on the realization index and
			// the attempt, never on worker scheduling.
			rng := rand.New(rand.NewPCG(cfg.Seed, uint64(attempt)*uint64(cfg.Bootstraps)+uint64(m)))

			klib := fixed
			if redraw {
				v := kin.Vel + cfg.VelErr*rng.NormFloat64()
				d := kin.Disp + cfg.DispErr*rng.NormFloat64()
				var err error
				klib, err = broadenOnto(lib, v, d, spec.Wave())
				if err != nil {
					return err
				}
			}

			sub, keep, err := klib.RandomSubLibrary(cfg.ModKeep/100, rng)
			if err != nil {
				return err
			}
			pert := spec.Randomize(rng)

			res, err := fit.Superposition(pert, sub, fit.SuperpositionConfig{MaskFit: cfg.MaskFit})
			if errors.Is(err, linear.ErrNotConverged) {
				continue
			}
			if err != nil {
				return err
			}

			coeff := make([]float64, lib.BaseNumber())
			next := 0
			for i, kept := range keep {
				if kept {
					coeff[i] = res.Coeff[next]
					next++
				}
			}

			if cfg.Lines == nil {
				draws[m] = draw{coeff: coeff}
				return nil
			}

			lines, err := fitResidualLines(pert, res.Model, cfg)
			if errors.Is(err, profile.ErrNotConverged) {
				continue
			}
			if err != nil {
				return err
			}
			draws[m] = draw{coeff: coeff, lines: lines}
			return nil
		}
	}

	if workers := min(cfg.Workers, cfg.Bootstraps); workers > 1 {
		err = runParallel(cfg.Bootstraps, workers, one)
	} else {
		for m := range cfg.Bootstraps {
			if err = one(m); err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}

	rows := make([][]float64, cfg.Bootstraps)
	for m := range draws {
		rows[m] = draws[m].coeff
	}
	out := &Result{Coeff: rows}
	if cfg.Lines != nil {
		out.LineErrors = lineScatter(draws)
	}
	return out, nil
}

// broadenOnto broadens the library to a kinematic state and resamples
// it onto the observed grid.
func broadenOnto(lib *template.Library, vel, disp float64, wave []float64) (*template.Library, error) {
	b, err := lib.ApplyGaussianLOSVD(vel, disp)
	if err != nil {
		return nil, err
	}
	return b.ResampleBase(wave)
}

// fitResidualLines fits the line set against one realization's
// residual, de-normalized back to observed flux.
func fitResidualLines(pert *spectrum.Spectrum, model []float64, cfg Config) (map[string]elines.LineModel, error) {
	rd := make([]float64, pert.Len())
	floats.SubTo(rd, pert.Data(), model)
	resid, err := spectrum.New(pert.Wave(), rd,
		spectrum.WithError(pert.Error()),
		spectrum.WithMask(pert.Mask()),
		spectrum.WithNormalization(pert.Normalization()))
	if err != nil {
		return nil, fmt.Errorf("bootstrap: residual: %w", err)
	}

	res, err := elines.Fit(resid.Unnormalized(), cfg.Lines, cfg.SelectWave, cfg.Eline)
	if err != nil {
		return nil, err
	}
	return res.Lines, nil
}

// lineScatter reduces the per-realization line fits to standard
// deviations.
func lineScatter(draws []draw) map[string]LineError {
	out := make(map[string]LineError)
	if len(draws) == 0 {
		return out
	}

	n := len(draws)
	flux := make([]float64, n)
	vel := make([]float64, n)
	fwhm := make([]float64, n)
	for name := range draws[0].lines {
		for m, d := range draws {
			lm := d.lines[name]
			flux[m] = lm.Flux
			vel[m] = lm.Vel
			fwhm[m] = lm.FWHM
		}
		out[name] = LineError{
			Flux: stat.StdDev(flux, nil),
			Vel:  stat.StdDev(vel, nil),
			FWHM: stat.StdDev(fwhm, nil),
		}
	}
	return out
}

func runParallel(n, workers int, one func(int) error) error {
	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return firstErr != nil
	}

	wg.Add(workers)
	for range workers {
		go func() {
			defer wg.Done()
			for m := range jobs {
				if failed() {
					continue
				}
				if err := one(m); err != nil {
					fail(err)
				}
			}
		}()
	}
	for m := range n {
		jobs <- m
	}
	close(jobs)
	wg.Wait()

	return firstErr
}
