package interp

// CubicSpline interpolates with a natural cubic spline (zero second
// derivative at both ends). Outside the knot range it extrapolates the
// end segment's cubic.
type CubicSpline struct {
	xs, ys []float64
	m      []float64 // second derivatives at the knots
}

// NewCubicSpline creates a natural cubic spline through (xs[i], ys[i]).
// xs must be strictly increasing and contain at least 3 points.
func NewCubicSpline(xs, ys []float64) (*CubicSpline, error) {
	if err := validateKnots(xs, ys, 3); err != nil {
		return nil, err
	}
	return &CubicSpline{xs: xs, ys: ys, m: secondDerivatives(xs, ys)}, nil
}

// At returns the interpolated value at x.
func (s *CubicSpline) At(x float64) float64 {
	i, exact := segment(s.xs, x)
	if exact >= 0 {
		return s.ys[exact]
	}
	h := s.xs[i+1] - s.xs[i]
	t := x - s.xs[i]
	a := (s.ys[i+1]-s.ys[i])/h - h*(2*s.m[i]+s.m[i+1])/6
	return s.ys[i] + t*(a+t*(s.m[i]/2+t*(s.m[i+1]-s.m[i])/(6*h)))
}

// secondDerivatives solves the natural spline tridiagonal system with
// the Thomas algorithm. m[0] and m[n-1] stay zero.
func secondDerivatives(xs, ys []float64) []float64 {
	n := len(xs)
	m := make([]float64, n)
	cp := make([]float64, n) // eliminated superdiagonal
	dp := make([]float64, n) // eliminated right-hand side
	for i := 1; i < n-1; i++ {
		h0 := xs[i] - xs[i-1]
		h1 := xs[i+1] - xs[i]
		rhs := 6 * ((ys[i+1]-ys[i])/h1 - (ys[i]-ys[i-1])/h0)
		denom := 2 * (h0 + h1)
		if i > 1 {
			denom -= h0 * cp[i-1]
			rhs -= h0 * dp[i-1]
		}
		cp[i] = h1 / denom
		dp[i] = rhs / denom
	}
	for i := n - 2; i >= 1; i-- {
		m[i] = dp[i] - cp[i]*m[i+1]
	}
	return m
}
