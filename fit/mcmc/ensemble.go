package mcmc

import (
	"context"
	"fmt"
	"math"
)

// stretchScale is the stretch-move scale parameter; proposals are drawn
// from g(z) ~ 1/sqrt(z) on [1/stretchScale, stretchScale].
const stretchScale = 2.0

// Ensemble is an affine-invariant ensemble sampler. Walkers advance in
// two half-ensembles, each proposing stretch moves along directions to
// the complementary half. Every walker contributes one chain to the
// trace; the chains are coupled, so Config.Walkers must stay intact
// for diagnostics to be meaningful.
type Ensemble struct{}

// ChainBased reports false: walkers are coupled and cannot be reduced
// to a single chain.
func (Ensemble) ChainBased() bool { return false }

// Sample runs the ensemble. Walkers must be even and at least twice
// the dimensionality.
func (Ensemble) Sample(ctx context.Context, model Model, cfg Config) (*Trace, error) {
	if err := model.validate(); err != nil {
		return nil, err
	}
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}

	ndim := len(model.Bounds)
	if cfg.Walkers%2 != 0 || cfg.Walkers < 2*ndim {
		return nil, fmt.Errorf("mcmc: ensemble needs an even number of walkers, at least %d: %w", 2*ndim, ErrInvalidConfig)
	}

	rng := newRand(cfg.Seed)

	pos := make([][]float64, cfg.Walkers)
	logp := make([]float64, cfg.Walkers)
	for k := range pos {
		pos[k] = make([]float64, ndim)
		drawPosition(pos[k], model.Bounds, rng)
		logp[k] = model.logProb(pos[k])
	}

	trace := newTrace(ndim, cfg.Walkers, cfg.kept())
	burnRecords := cfg.Burn / cfg.Thin

	half := cfg.Walkers / 2
	y := make([]float64, ndim)

	for step := range cfg.Samples {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		for _, first := range []int{0, half} {
			other := (first + half) % cfg.Walkers
			for k := first; k < first+half; k++ {
				ref := pos[other+rng.IntN(half)]

				// z ~ g(z) on [1/a, a] by inverse transform.
				u := 1 + (stretchScale-1)*rng.Float64()
				z := u * u / stretchScale

				for i := range y {
					y[i] = ref[i] + z*(pos[k][i]-ref[i])
				}

				lp := model.logProb(y)
				lnq := float64(ndim-1)*math.Log(z) + lp - logp[k]
				if math.Log(rng.Float64()) < lnq {
					copy(pos[k], y)
					logp[k] = lp
				}
			}
		}

		if (step+1)%cfg.Thin != 0 {
			continue
		}
		rec := (step+1)/cfg.Thin - 1
		if rec < burnRecords {
			continue
		}
		for k := range pos {
			trace.record(k, rec-burnRecords, pos[k])
		}
	}

	return trace, nil
}
