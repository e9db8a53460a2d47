package linear

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Errors returned by the superposition solvers.
var (
	ErrEmptyBase         = errors.New("linear: library has no templates")
	ErrDimensionMismatch = errors.New("linear: input lengths do not match")
	ErrAllMasked         = errors.New("linear: no usable data points")
	ErrNotConverged      = errors.New("linear: solver did not converge")
)

// Result holds the outcome of a superposition fit.
type Result struct {
	Coeff []float64 // one weight per template
	Model []float64 // best-fit superposition on the full grid
	Chisq float64   // over usable pixels, 1/sigma weighted
}

// Solve fits data as a weighted sum of template rows. Each base[i] is
// one template sampled on the data grid. sigma supplies per-pixel
// errors (nil for unit weights) and mask excludes pixels (nil for
// none). With negative false the weights are constrained to be
// non-negative.
func Solve(base [][]float64, data, sigma []float64, mask []bool, negative bool) (*Result, error) {
	rows, err := usable(base, data, sigma, mask)
	if err != nil {
		return nil, err
	}

	n := len(base)
	m := len(rows)
	a := mat.NewDense(m, n, nil)
	b := mat.NewVecDense(m, nil)
	for r, j := range rows {
		s := 1.0
		if sigma != nil {
			s = sigma[j]
		}
		for i := range n {
			a.Set(r, i, base[i][j]/s)
		}
		b.SetVec(r, data[j]/s)
	}

	var coeff []float64
	if negative {
		coeff, err = lsSolve(a, b)
	} else {
		coeff, err = nnls(a, b)
	}
	if err != nil {
		return nil, err
	}

	return evaluate(base, data, sigma, mask, coeff), nil
}

// SolveFixed evaluates the superposition with externally chosen
// weights, reporting its model and chi-square without optimizing.
func SolveFixed(base [][]float64, data, sigma []float64, mask []bool, coeff []float64) (*Result, error) {
	if len(coeff) != len(base) {
		return nil, ErrDimensionMismatch
	}
	if _, err := usable(base, data, sigma, mask); err != nil {
		return nil, err
	}
	return evaluate(base, data, sigma, mask, append([]float64(nil), coeff...)), nil
}

// usable validates the inputs and lists the pixels that constrain the
// fit.
func usable(base [][]float64, data, sigma []float64, mask []bool) ([]int, error) {
	if len(base) == 0 {
		return nil, ErrEmptyBase
	}
	n := len(data)
	for _, row := range base {
		if len(row) != n {
			return nil, ErrDimensionMismatch
		}
	}
	if sigma != nil && len(sigma) != n {
		return nil, ErrDimensionMismatch
	}
	if mask != nil && len(mask) != n {
		return nil, ErrDimensionMismatch
	}

	var rows []int
	for j := range n {
		if mask != nil && mask[j] {
			continue
		}
		if sigma != nil && sigma[j] <= 0 {
			continue
		}
		rows = append(rows, j)
	}
	if len(rows) == 0 {
		return nil, ErrAllMasked
	}
	return rows, nil
}

// lsSolve finds the unconstrained least-squares weights by QR
// factorization.
func lsSolve(a *mat.Dense, b *mat.VecDense) ([]float64, error) {
	m, n := a.Dims()
	if m < n {
		return nil, ErrNotConverged
	}

	var qr mat.QR
	qr.Factorize(a)
	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, b); err != nil {
		return nil, fmt.Errorf("linear: least-squares solve: %w", ErrNotConverged)
	}

	coeff := make([]float64, n)
	for i := range n {
		coeff[i] = sol.AtVec(i)
	}
	return coeff, nil
}

func evaluate(base [][]float64, data, sigma []float64, mask []bool, coeff []float64) *Result {
	model := make([]float64, len(data))
	for i, c := range coeff {
		if c == 0 {
			continue
		}
		floats.AddScaled(model, c, base[i])
	}

	chisq := 0.0
	for j := range data {
		if mask != nil && mask[j] {
			continue
		}
		if sigma != nil && sigma[j] <= 0 {
			continue
		}
		d := data[j] - model[j]
		if sigma != nil {
			d /= sigma[j]
		}
		chisq += d * d
	}
	return &Result{Coeff: coeff, Model: model, Chisq: chisq}
}
