package mcmc

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
)

// Errors returned by the samplers.
var (
	ErrNoLikelihood  = errors.New("mcmc: model needs a log-likelihood")
	ErrInvalidBounds = errors.New("mcmc: bounds must satisfy min < max")
	ErrInvalidConfig = errors.New("mcmc: invalid sampler configuration")
)

// Model describes the target distribution. LogPrior may be nil for a
// flat improper prior; LogLikelihood is required. Bounds define the
// parameter box used to draw initial positions, one [min, max] pair
// per dimension.
type Model struct {
	LogPrior      func(theta []float64) float64
	LogLikelihood func(theta []float64) float64
	Bounds        [][2]float64
}

// UniformPrior returns a flat log-prior that is zero strictly inside
// the bounds and -Inf on and outside their edges.
func UniformPrior(bounds [][2]float64) func([]float64) float64 {
	return func(theta []float64) float64 {
		for i, b := range bounds {
			if theta[i] <= b[0] || theta[i] >= b[1] {
				return math.Inf(-1)
			}
		}
		return 0
	}
}

func (m Model) validate() error {
	if m.LogLikelihood == nil {
		return ErrNoLikelihood
	}
	if len(m.Bounds) == 0 {
		return ErrInvalidBounds
	}
	for _, b := range m.Bounds {
		if !(b[0] < b[1]) {
			return ErrInvalidBounds
		}
	}
	return nil
}

// logProb is the log-posterior with a -Inf prior short-circuit, so an
// out-of-bounds likelihood is never evaluated.
func (m Model) logProb(theta []float64) float64 {
	lp := 0.0
	if m.LogPrior != nil {
		lp = m.LogPrior(theta)
		if math.IsInf(lp, -1) {
			return math.Inf(-1)
		}
	}
	return lp + m.LogLikelihood(theta)
}

// Config controls a sampling run. Chains record every Thin-th step and
// the first Burn/Thin records of each chain are discarded, leaving
// Samples/Thin - Burn/Thin kept samples per chain.
type Config struct {
	Walkers int    // walkers (Ensemble) or independent chains (AdaptiveMetropolis)
	Burn    int    // steps discarded from the start of each chain
	Samples int    // total steps per chain
	Thin    int    // record every Thin-th step
	Seed    uint64 // 0 = nondeterministic seeding
}

// DefaultConfig returns the standard sampling setup.
func DefaultConfig() Config {
	return Config{Walkers: 50, Burn: 50, Samples: 200, Thin: 1}
}

func (c Config) normalized() (Config, error) {
	if c.Walkers == 0 {
		c.Walkers = 50
	}
	if c.Samples == 0 {
		c.Samples = 200
	}
	if c.Thin == 0 {
		c.Thin = 1
	}
	if c.Walkers < 0 || c.Burn < 0 || c.Samples < 0 || c.Thin < 0 {
		return c, ErrInvalidConfig
	}
	if c.kept() <= 0 {
		return c, ErrInvalidConfig
	}
	return c, nil
}

func (c Config) kept() int {
	return c.Samples/c.Thin - c.Burn/c.Thin
}

// Sampler draws posterior samples of a model. ChainBased reports
// whether the backend's chains are independent, in which case a caller
// that only needs a point estimate may run a single chain.
type Sampler interface {
	Sample(ctx context.Context, model Model, cfg Config) (*Trace, error)
	ChainBased() bool
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, 0))
}

// drawPosition fills x with a uniform draw from the bounds box.
func drawPosition(x []float64, bounds [][2]float64, rng *rand.Rand) {
	for i, b := range bounds {
		x[i] = b[0] + rng.Float64()*(b[1]-b[0])
	}
}
