package mcmc

import (
	"context"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// AdaptiveMetropolis runs Config.Walkers independent random-walk
// chains. During burn-in each chain re-estimates its proposal
// covariance from its own history every AdaptInterval steps; after
// burn-in the proposal is frozen. The initial proposal is diagonal
// with a tenth of each bound range.
type AdaptiveMetropolis struct {
	AdaptInterval int     // steps between covariance updates; 0 = 50
	Epsilon       float64 // diagonal regularization of the covariance; 0 = 1e-6
}

// ChainBased reports true: chains are independent, so a caller that
// only needs a point estimate may run a single one.
func (AdaptiveMetropolis) ChainBased() bool { return true }

// Sample runs the chains sequentially and collects their thinned
// states.
func (s AdaptiveMetropolis) Sample(ctx context.Context, model Model, cfg Config) (*Trace, error) {
	if err := model.validate(); err != nil {
		return nil, err
	}
	cfg, err := cfg.normalized()
	if err != nil {
		return nil, err
	}

	adapt := s.AdaptInterval
	if adapt == 0 {
		adapt = 50
	}
	eps := s.Epsilon
	if eps == 0 {
		eps = 1e-6
	}

	ndim := len(model.Bounds)
	scale := 2.38 * 2.38 / float64(ndim)

	rng := newRand(cfg.Seed)
	trace := newTrace(ndim, cfg.Walkers, cfg.kept())
	burnRecords := cfg.Burn / cfg.Thin
	adaptRows := min(cfg.Burn, cfg.Samples)

	x := make([]float64, ndim)
	y := make([]float64, ndim)
	z := make([]float64, ndim)

	for c := range cfg.Walkers {
		drawPosition(x, model.Bounds, rng)
		lp := model.logProb(x)

		l := initialFactor(model.Bounds)
		var hist *mat.Dense
		if adaptRows > 0 {
			hist = mat.NewDense(adaptRows, ndim, nil)
		}

		for step := range cfg.Samples {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}

			for i := range z {
				z[i] = rng.NormFloat64()
			}
			for i := range y {
				v := x[i]
				for j := 0; j <= i; j++ {
					v += l.At(i, j) * z[j]
				}
				y[i] = v
			}

			if lpy := model.logProb(y); math.Log(rng.Float64()) < lpy-lp {
				copy(x, y)
				lp = lpy
			}

			if step < adaptRows {
				hist.SetRow(step, x)
				if (step+1)%adapt == 0 {
					if f, ok := adaptedFactor(hist.Slice(0, step+1, 0, ndim), scale, eps); ok {
						l = f
					}
				}
			}

			if (step+1)%cfg.Thin != 0 {
				continue
			}
			rec := (step+1)/cfg.Thin - 1
			if rec >= burnRecords {
				trace.record(c, rec-burnRecords, x)
			}
		}
	}

	return trace, nil
}

func initialFactor(bounds [][2]float64) *mat.TriDense {
	l := mat.NewTriDense(len(bounds), mat.Lower, nil)
	for i, b := range bounds {
		l.SetTri(i, i, (b[1]-b[0])/10)
	}
	return l
}

// adaptedFactor returns the Cholesky factor of scale*(cov(hist)+eps*I),
// or false when the history is still degenerate.
func adaptedFactor(hist mat.Matrix, scale, eps float64) (*mat.TriDense, bool) {
	_, n := hist.Dims()

	sym := mat.NewSymDense(n, nil)
	stat.CovarianceMatrix(sym, hist, nil)
	for i := range n {
		for j := i; j < n; j++ {
			v := scale * sym.At(i, j)
			if i == j {
				v += scale * eps
			}
			sym.SetSym(i, j, v)
		}
	}

	var chol mat.Cholesky
	if !chol.Factorize(sym) {
		return nil, false
	}
	l := mat.NewTriDense(n, mat.Lower, nil)
	chol.LTo(l)
	return l, true
}
