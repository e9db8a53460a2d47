package profile

import (
	"fmt"

	"gonum.org/v1/gonum/optimize"
)

// simplex minimizes the chi-square with Nelder-Mead on the free
// parameters. It produces no analytic parameter errors.
func simplex(x, y, sigma []float64, work *LineSet, free []freeRef, cfg FitConfig) (*FitResult, error) {
	model := make([]float64, len(x))

	problem := optimize.Problem{
		Func: func(theta []float64) float64 {
			apply(free, theta)
			work.evalTo(model, x)
			return chisquare(y, sigma, model)
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: cfg.MaxFev,
		Converger: &optimize.FunctionConverge{
			Absolute:   cfg.FTol,
			Iterations: 50,
		},
	}

	res, err := optimize.Minimize(problem, pack(free), settings, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("profile: simplex: %w", ErrNotConverged)
	}
	switch res.Status {
	case optimize.Failure, optimize.IterationLimit, optimize.RuntimeLimit, optimize.FunctionEvaluationLimit:
		return nil, ErrNotConverged
	}

	apply(free, res.X)
	work.evalTo(model, x)
	return &FitResult{
		Set:    *work,
		Model:  model,
		Chisq:  chisquare(y, sigma, model),
		Errors: make([]ParamErrors, len(work.Lines)),
	}, nil
}
