package fit

import (
	"context"
	"fmt"
	"math"

	"github.com/cwbudde/algo-specfit/fit/linear"
	"github.com/cwbudde/algo-specfit/fit/mcmc"
	"github.com/cwbudde/algo-specfit/spectral/spectrum"
	"github.com/cwbudde/algo-specfit/spectral/template"
)

const defaultIterations = 3

// GuessMode selects the template that seeds the kinematic sampler.
type GuessMode int

const (
	// GuessIndex seeds with the template at Index.
	GuessIndex GuessMode = iota

	// GuessAuto runs the full fit once per template and keeps the seed
	// with the lowest chi-square.
	GuessAuto

	// GuessSinglePass seeds with the template at Index and stops after
	// a single sampling and solving pass.
	GuessSinglePass
)

// ExclusionMasker marks observed-frame pixels to exclude at a trial
// redshift. linemask.Set implements it.
type ExclusionMasker interface {
	MaskObserved(wave []float64, z float64) []bool
}

// KinConfig controls KinLib.
type KinConfig struct {
	// Velocity and dispersion prior bounds in km/s.
	VelMin, VelMax   float64
	DispMin, DispMax float64

	// Iterations is the number of sample-then-solve alternations. Zero
	// means 3.
	Iterations int

	Guess GuessMode

	// Index selects the seed template for GuessIndex and
	// GuessSinglePass. Out-of-range values fall back to the first
	// template.
	Index int

	// Sampler draws the kinematic posterior. Nil means the ensemble
	// sampler.
	Sampler mcmc.Sampler

	// MCMC configures the sampler. The zero value uses the sampler
	// defaults.
	MCMC mcmc.Config

	// MaskFit excludes additional pixels throughout the fit. It must
	// match the spectrum length.
	MaskFit []bool

	// Masks supplies exclusion windows that follow the velocity
	// estimate. They are placed at the center of the velocity prior
	// first and re-placed at the posterior mean after each iteration.
	Masks ExclusionMasker

	// WithTrace keeps the posterior traces of the final iteration in
	// the result.
	WithTrace bool
}

// KinLibResult is the converged kinematic and population fit.
type KinLibResult struct {
	Vel    float64 // posterior mean velocity in km/s
	VelErr float64 // posterior standard deviation
	RVel   float64 // Gelman-Rubin statistic of the velocity chains

	Disp    float64 // posterior mean dispersion in km/s
	DispErr float64
	RDisp   float64

	Bestfit []float64 // best-fit superposition on the observed grid
	Coeff   []float64 // template weights of the final solve
	Chisq   float64

	TraceVel  mcmc.Chains // nil unless WithTrace
	TraceDisp mcmc.Chains
}

// KinLib fits the line-of-sight kinematics and the template mixture of
// a spectrum together. Each iteration samples the velocity and
// dispersion posterior for the current seed spectrum, broadens the
// library to the posterior mean and solves for the template weights;
// the composite of that solve seeds the next iteration. The reported
// kinematics, convergence statistics and weights all come from the
// final iteration.
func KinLib(ctx context.Context, spec *spectrum.Spectrum, lib *template.Library, cfg KinConfig) (*KinLibResult, error) {
	if cfg.MaskFit != nil && len(cfg.MaskFit) != spec.Len() {
		return nil, ErrMaskMismatch
	}
	if cfg.Guess == GuessAuto {
		return kinLibAuto(ctx, spec, lib, cfg)
	}

	idx := cfg.Index
	if idx < 0 || idx >= lib.BaseNumber() {
		idx = 0
	}
	seed, err := lib.Spec(idx)
	if err != nil {
		return nil, err
	}

	iterations := cfg.Iterations
	if iterations <= 0 {
		iterations = defaultIterations
	}
	if cfg.Guess == GuessSinglePass {
		iterations = 1
	}

	sampler := cfg.Sampler
	if sampler == nil {
		sampler = mcmc.Ensemble{}
	}

	// The initial mask never changes; exclusion windows are re-derived
	// from it whenever the velocity estimate moves.
	baseMask := unionMask(spec.Len(), spec.Mask(), cfg.MaskFit)
	mask := baseMask
	if cfg.Masks != nil {
		z := (cfg.VelMin + cfg.VelMax) / 2 / spectrum.SpeedOfLight
		mask = unionMask(spec.Len(), baseMask, cfg.Masks.MaskObserved(spec.Wave(), z))
	}

	sigma := fitSigma(spec)
	if countUsable(mask, sigma) == 0 {
		return nil, ErrNoUsableData
	}

	bounds := [][2]float64{
		{cfg.VelMin, cfg.VelMax},
		{cfg.DispMin, cfg.DispMax},
	}

	var (
		out   KinLibResult
		res   *linear.Result
		trace *mcmc.Trace
	)
	for i := range iterations {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		runCfg := cfg.MCMC
		if sampler.ChainBased() && i != iterations-1 {
			// Intermediate iterations only steer the composite; one
			// chain is enough for a mean.
			runCfg.Walkers = 1
		}

		model := mcmc.Model{
			Bounds:        bounds,
			LogPrior:      mcmc.UniformPrior(bounds),
			LogLikelihood: kinLogLikelihood(spec, seed, sigma, mask),
		}
		trace, err = sampler.Sample(ctx, model, runCfg)
		if err != nil {
			return nil, fmt.Errorf("fit: kinematic sampling: %w", err)
		}
		out.Vel, out.VelErr = trace.Mean(0), trace.StdDev(0)
		out.Disp, out.DispErr = trace.Mean(1), trace.StdDev(1)

		res, err = Superposition(spec, lib, SuperpositionConfig{
			Kin:     &KinState{Vel: out.Vel, Disp: out.Disp},
			MaskFit: mask,
		})
		if err != nil {
			return nil, err
		}
		if i == iterations-1 {
			break
		}

		comp, err := lib.CompositeSpectrum(res.Coeff)
		if err != nil {
			return nil, err
		}
		seed = comp
		if cfg.Masks != nil {
			z := out.Vel / spectrum.SpeedOfLight
			mask = unionMask(spec.Len(), baseMask, cfg.Masks.MaskObserved(spec.Wave(), z))
			if countUsable(mask, sigma) == 0 {
				return nil, ErrNoUsableData
			}
		}
	}

	out.RVel = trace.GelmanRubin(0)
	out.RDisp = trace.GelmanRubin(1)
	out.Bestfit = res.Model
	out.Coeff = res.Coeff
	out.Chisq = res.Chisq
	if cfg.WithTrace {
		out.TraceVel = trace.Param(0)
		out.TraceDisp = trace.Param(1)
	}

	return &out, nil
}

// kinLibAuto repeats the full fit with every template as the seed and
// keeps the best run. The coefficients of the returned result select
// the winning template.
func kinLibAuto(ctx context.Context, spec *spectrum.Spectrum, lib *template.Library, cfg KinConfig) (*KinLibResult, error) {
	sub := cfg
	sub.Guess = GuessIndex
	sub.Index = 0

	var (
		best    *KinLibResult
		bestIdx int
	)
	for i := range lib.BaseNumber() {
		keep := make([]bool, lib.BaseNumber())
		keep[i] = true
		single, err := lib.SubLibrary(keep)
		if err != nil {
			return nil, err
		}
		res, err := KinLib(ctx, spec, single, sub)
		if err != nil {
			return nil, err
		}
		if best == nil || res.Chisq < best.Chisq {
			best = res
			bestIdx = i
		}
	}

	coeff := make([]float64, lib.BaseNumber())
	coeff[bestIdx] = 1
	best.Coeff = coeff

	return best, nil
}

// kinLogLikelihood builds a Gaussian log-likelihood for the seed
// spectrum broadened to a trial state and resampled onto the observed
// grid. Masked pixels and pixels without a positive error carry no
// weight.
func kinLogLikelihood(spec, seed *spectrum.Spectrum, sigma []float64, mask []bool) func([]float64) float64 {
	var usable []int
	for i, s := range sigma {
		if s <= 0 || mask != nil && mask[i] {
			continue
		}
		usable = append(usable, i)
	}
	wave := spec.Wave()
	data := spec.Data()

	return func(theta []float64) float64 {
		model, err := seed.ApplyKin(theta[0], theta[1], wave)
		if err != nil {
			return math.Inf(-1)
		}
		m := model.Data()
		sum := 0.0
		for _, i := range usable {
			inv := 1 / (sigma[i] * sigma[i])
			d := data[i] - m[i]
			sum += d*d*inv - math.Log(inv)
		}
		return -0.5 * sum
	}
}
