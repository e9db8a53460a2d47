package linear

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	machEps = 2.220446049250313e-16

	// zeroTol decides when an active-set weight has reached zero.
	zeroTol = 1e-12
)

// nnls solves min ||a·x − b|| subject to x ≥ 0 with the Lawson-Hanson
// active-set method. At the solution the gradient of the objective is
// non-positive for every zero weight.
func nnls(a *mat.Dense, b *mat.VecDense) ([]float64, error) {
	m, n := a.Dims()

	x := make([]float64, n)
	xvec := mat.NewVecDense(n, x)
	passive := make([]bool, n)
	model := mat.NewVecDense(m, nil)
	resid := mat.NewVecDense(m, nil)
	grad := mat.NewVecDense(n, nil)

	// With x = 0 the residual is b itself.
	resid.CopyVec(b)
	grad.MulVec(a.T(), resid)

	tol := 10 * machEps * mat.Norm(a, 1) * float64(max(m, n))
	maxIter := 3 * n

	for iter := 0; ; {
		// Pick the zero weight with the steepest descent direction.
		j := -1
		best := tol
		for i := range n {
			if passive[i] {
				continue
			}
			if g := grad.AtVec(i); g > best {
				best = g
				j = i
			}
		}
		if j < 0 {
			return x, nil
		}
		passive[j] = true

		for {
			iter++
			if iter > maxIter {
				return nil, ErrNotConverged
			}

			z, err := passiveSolve(a, b, passive)
			if err != nil {
				return nil, err
			}

			feasible := true
			for i := range n {
				if passive[i] && z[i] <= 0 {
					feasible = false
					break
				}
			}
			if feasible {
				copy(x, z)
				break
			}

			// Step toward z until the first passive weight hits zero,
			// then retire every weight that did.
			alpha := math.Inf(1)
			for i := range n {
				if passive[i] && z[i] <= 0 {
					if r := x[i] / (x[i] - z[i]); r < alpha {
						alpha = r
					}
				}
			}
			for i := range n {
				if !passive[i] {
					continue
				}
				x[i] += alpha * (z[i] - x[i])
				if x[i] <= zeroTol {
					x[i] = 0
					passive[i] = false
				}
			}
		}

		model.MulVec(a, xvec)
		resid.SubVec(b, model)
		grad.MulVec(a.T(), resid)
	}
}

// passiveSolve solves the unconstrained least-squares problem on the
// passive columns, returning a full-length vector with zeros on the
// active set.
func passiveSolve(a *mat.Dense, b *mat.VecDense, passive []bool) ([]float64, error) {
	m, _ := a.Dims()

	var cols []int
	for i, p := range passive {
		if p {
			cols = append(cols, i)
		}
	}
	if len(cols) > m {
		return nil, ErrNotConverged
	}

	sub := mat.NewDense(m, len(cols), nil)
	for k, c := range cols {
		for r := range m {
			sub.Set(r, k, a.At(r, c))
		}
	}

	var qr mat.QR
	qr.Factorize(sub)
	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, b); err != nil {
		return nil, fmt.Errorf("linear: active-set solve: %w", ErrNotConverged)
	}

	z := make([]float64, len(passive))
	for k, c := range cols {
		z[c] = sol.AtVec(k)
	}
	return z, nil
}
