package profile

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Method selects the minimizer behind Fit.
type Method int

const (
	MethodLeastSquares Method = iota // Levenberg-Marquardt
	MethodSimplex                    // Nelder-Mead
)

// FitConfig controls a profile fit.
type FitConfig struct {
	Method Method
	FTol   float64 // relative chi-square tolerance; 0 = 1e-8
	XTol   float64 // relative step tolerance; 0 = 1e-8
	MaxFev int     // model evaluation budget; 0 = 9999
	ErrSim int     // Monte-Carlo redraws for parameter errors, at least 2 to take effect; 0 = off
	Seed   uint64  // error simulation seed; 0 = nondeterministic
}

func (c FitConfig) normalized() FitConfig {
	if c.FTol == 0 {
		c.FTol = 1e-8
	}
	if c.XTol == 0 {
		c.XTol = 1e-8
	}
	if c.MaxFev == 0 {
		c.MaxFev = 9999
	}
	return c
}

// ParamErrors holds the one-sigma uncertainties of one line's
// parameters. Entries stay zero where no estimate is available.
type ParamErrors struct {
	Flux float64
	Vel  float64
	Disp float64
}

// FitResult is the outcome of a profile fit.
type FitResult struct {
	Set    LineSet   // fitted parameters
	Model  []float64 // best-fit model on the input grid
	Chisq  float64
	Errors []ParamErrors // one entry per line
}

// Fit minimizes the weighted chi-square between y and the line-set
// model on x. sigma supplies per-point errors (nil for unit weights).
// The input set provides the starting values and is not modified. The
// least-squares method derives parameter errors from the Jacobian;
// ErrSim replaces them with the spread of refits against Gaussian
// redraws of y (requires sigma).
func Fit(x, y, sigma []float64, set *LineSet, cfg FitConfig) (*FitResult, error) {
	if len(set.Lines) == 0 {
		return nil, ErrNoLines
	}
	for i := range set.Lines {
		switch set.Lines[i].Kind {
		case KindGauss, KindLorentz:
		default:
			return nil, ErrUnknownKind
		}
	}
	if len(y) != len(x) || (sigma != nil && len(sigma) != len(x)) {
		return nil, ErrLengthMismatch
	}
	cfg = cfg.normalized()

	work := set.Clone()
	free := work.freeRefs()

	if len(free) == 0 {
		model := work.Eval(x)
		return &FitResult{
			Set:    work,
			Model:  model,
			Chisq:  chisquare(y, sigma, model),
			Errors: make([]ParamErrors, len(work.Lines)),
		}, nil
	}
	if len(x) < len(free) {
		return nil, ErrTooFewPoints
	}

	var (
		res *FitResult
		err error
	)
	switch cfg.Method {
	case MethodLeastSquares:
		res, err = levmar(x, y, sigma, &work, free, cfg)
	case MethodSimplex:
		res, err = simplex(x, y, sigma, &work, free, cfg)
	default:
		return nil, ErrUnknownMethod
	}
	if err != nil {
		return nil, err
	}

	if cfg.ErrSim > 1 && sigma != nil {
		simulateErrors(x, y, sigma, set, cfg, res)
	}
	return res, nil
}

func chisquare(y, sigma, model []float64) float64 {
	c := 0.0
	for i := range y {
		d := y[i] - model[i]
		if sigma != nil {
			d /= sigma[i]
		}
		c += d * d
	}
	return c
}

// levmar is a Levenberg-Marquardt loop on the weighted residuals with
// a numerical central-difference Jacobian and multiplicative damping
// of the normal equations.
func levmar(x, y, sigma []float64, work *LineSet, free []freeRef, cfg FitConfig) (*FitResult, error) {
	n := len(x)
	p := len(free)

	model := make([]float64, n)
	r := make([]float64, n)
	rp := make([]float64, n)
	rm := make([]float64, n)
	rTrial := make([]float64, n)
	jac := mat.NewDense(n, p, nil)
	jtj := mat.NewDense(p, p, nil)
	g := mat.NewVecDense(p, nil)
	rvec := mat.NewVecDense(n, r)
	var delta mat.VecDense

	fev := 0
	residuals := func(dst, th []float64) bool {
		if fev >= cfg.MaxFev {
			return false
		}
		fev++
		apply(free, th)
		work.evalTo(model, x)
		for i := range dst {
			d := y[i] - model[i]
			if sigma != nil {
				d /= sigma[i]
			}
			dst[i] = d
		}
		return true
	}

	th := pack(free)
	thTrial := make([]float64, p)
	if !residuals(r, th) {
		return nil, ErrNotConverged
	}
	chi := floats.Dot(r, r)
	lambda := 1e-3

outer:
	for {
		for j := range p {
			h := 1e-6 * max(math.Abs(th[j]), 1)
			orig := th[j]
			th[j] = orig + h
			okp := residuals(rp, th)
			th[j] = orig - h
			okm := residuals(rm, th)
			th[j] = orig
			if !okp || !okm {
				return nil, ErrNotConverged
			}
			for i := range n {
				jac.Set(i, j, (rp[i]-rm[i])/(2*h))
			}
		}
		jtj.Mul(jac.T(), jac)
		g.MulVec(jac.T(), rvec)

		for {
			a := mat.NewSymDense(p, nil)
			for i := range p {
				for j := i + 1; j < p; j++ {
					a.SetSym(i, j, jtj.At(i, j))
				}
				d := jtj.At(i, i)
				if d == 0 {
					d = 1
				}
				a.SetSym(i, i, jtj.At(i, i)+lambda*d)
			}

			var chol mat.Cholesky
			if chol.Factorize(a) && chol.SolveVecTo(&delta, g) == nil {
				for j := range p {
					thTrial[j] = free[j].p.clamped(th[j] - delta.AtVec(j))
				}
				if !residuals(rTrial, thTrial) {
					return nil, ErrNotConverged
				}

				chi2 := floats.Dot(rTrial, rTrial)
				if chi2 < chi {
					dchi := chi - chi2
					maxStep, maxTh := 0.0, 0.0
					for j := range p {
						maxStep = max(maxStep, math.Abs(thTrial[j]-th[j]))
						maxTh = max(maxTh, math.Abs(thTrial[j]))
					}
					copy(th, thTrial)
					copy(r, rTrial)
					chi = chi2
					lambda = max(lambda/10, 1e-12)
					if dchi <= cfg.FTol*max(chi, 1) || maxStep <= cfg.XTol*(1+maxTh) {
						break outer
					}
					continue outer
				}
				// Rejected micro-steps mean the minimum is already
				// reached within tolerance.
				if lambda >= 1e8 && chi2-chi <= cfg.FTol*max(chi, 1) {
					break outer
				}
			}

			lambda *= 10
			if lambda > 1e12 {
				return nil, ErrNotConverged
			}
		}
	}

	apply(free, th)
	work.evalTo(model, x)

	errs := make([]ParamErrors, len(work.Lines))
	if n > p {
		jtj.Mul(jac.T(), jac)
		var inv mat.Dense
		if err := inv.Inverse(jtj); err == nil {
			s2 := chi / float64(n-p)
			for k, ref := range free {
				if v := inv.At(k, k) * s2; v > 0 {
					setParamError(errs, ref, math.Sqrt(v))
				}
			}
		}
	}

	return &FitResult{Set: *work, Model: model, Chisq: chi, Errors: errs}, nil
}

func setParamError(errs []ParamErrors, ref freeRef, v float64) {
	switch ref.field {
	case 0:
		errs[ref.line].Flux = v
	case 1:
		errs[ref.line].Vel = v
	case 2:
		errs[ref.line].Disp = v
	}
}

// simulateErrors replaces the parameter errors with the sample spread
// of refits against Gaussian redraws of the data.
func simulateErrors(x, y, sigma []float64, set *LineSet, cfg FitConfig, res *FitResult) {
	var rng *rand.Rand
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	} else {
		rng = rand.New(rand.NewPCG(cfg.Seed, 0))
	}

	redraw := cfg
	redraw.ErrSim = 0

	yk := make([]float64, len(y))
	var samples [][]float64
	for range cfg.ErrSim {
		for i := range yk {
			yk[i] = y[i] + sigma[i]*rng.NormFloat64()
		}
		sim, err := Fit(x, yk, sigma, set, redraw)
		if err != nil {
			continue
		}
		samples = append(samples, pack(sim.Set.freeRefs()))
	}
	if len(samples) < 2 {
		return
	}

	col := make([]float64, len(samples))
	for k, ref := range res.Set.freeRefs() {
		for m, s := range samples {
			col[m] = s[k]
		}
		setParamError(res.Errors, ref, stat.StdDev(col, nil))
	}
}
