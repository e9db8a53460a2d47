package interp

import (
	"errors"
	"sort"
)

var (
	ErrTooFewKnots    = errors.New("interp: too few knots")
	ErrNotIncreasing  = errors.New("interp: knots must be strictly increasing")
	ErrLengthMismatch = errors.New("interp: knots and values must have same length")
)

// Interpolator evaluates a curve fitted through a fixed set of knots.
type Interpolator interface {
	// At returns the interpolated value at x.
	At(x float64) float64
}

// Eval evaluates ip at every point of xs and returns the results.
func Eval(ip Interpolator, xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = ip.At(x)
	}
	return out
}

// Linear interpolates piecewise linearly between knots.
// Outside the knot range it extrapolates the first or last segment.
type Linear struct {
	xs, ys []float64
}

// NewLinear creates a linear interpolator through (xs[i], ys[i]).
// xs must be strictly increasing and contain at least 2 points.
func NewLinear(xs, ys []float64) (*Linear, error) {
	if err := validateKnots(xs, ys, 2); err != nil {
		return nil, err
	}
	return &Linear{xs: xs, ys: ys}, nil
}

// At returns the interpolated value at x.
func (l *Linear) At(x float64) float64 {
	i, exact := segment(l.xs, x)
	if exact >= 0 {
		return l.ys[exact]
	}
	x0, x1 := l.xs[i], l.xs[i+1]
	t := (x - x0) / (x1 - x0)
	return l.ys[i] + t*(l.ys[i+1]-l.ys[i])
}

// segment locates the knot interval containing x. It returns the index i
// of the segment [xs[i], xs[i+1]] clamped to the valid range, so points
// outside the grid map to the first or last segment. When x coincides
// with a knot, the second return value is that knot's index, else -1.
func segment(xs []float64, x float64) (int, int) {
	idx := sort.SearchFloat64s(xs, x)
	if idx < len(xs) && xs[idx] == x {
		return clampSegment(idx, len(xs)), idx
	}
	return clampSegment(idx-1, len(xs)), -1
}

func clampSegment(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-2 {
		return n - 2
	}
	return i
}

func validateKnots(xs, ys []float64, min int) error {
	if len(xs) != len(ys) {
		return ErrLengthMismatch
	}
	if len(xs) < min {
		return ErrTooFewKnots
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return ErrNotIncreasing
		}
	}
	return nil
}
