package template

import "math/rand/v2"

// RandomSubLibrary draws a random subset keeping roughly the given
// fraction of templates, at least one. The second return value marks
// the kept templates in the original library's order.
func (l *Library) RandomSubLibrary(fraction float64, rng *rand.Rand) (*Library, []bool, error) {
	if fraction <= 0 || fraction > 1 {
		return nil, nil, ErrInvalidFraction
	}

	n := len(l.base)
	count := min(max(1, int(float64(n)*fraction+0.5)), n)

	keep := make([]bool, n)
	for _, i := range rng.Perm(n)[:count] {
		keep[i] = true
	}

	sub, err := l.SubLibrary(keep)
	if err != nil {
		return nil, nil, err
	}
	return sub, keep, nil
}
