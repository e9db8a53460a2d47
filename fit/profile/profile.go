package profile

import (
	"errors"
	"math"
)

const speedOfLight = 300000.0 // km/s

// Errors returned by the profile fitter.
var (
	ErrNoLines        = errors.New("profile: line set has no lines")
	ErrUnknownKind    = errors.New("profile: unknown profile kind")
	ErrUnknownMethod  = errors.New("profile: unknown fit method")
	ErrLengthMismatch = errors.New("profile: input lengths do not match")
	ErrTooFewPoints   = errors.New("profile: fewer points than free parameters")
	ErrNotConverged   = errors.New("profile: fit did not converge")
)

// Kind selects the functional form of a line profile.
type Kind int

const (
	KindGauss Kind = iota
	KindLorentz
)

// Param is one profile parameter with optional box bounds. A fixed
// parameter keeps its value through fitting and guessing.
type Param struct {
	Value   float64
	Min     float64
	Max     float64
	Bounded bool
	Fixed   bool
}

func (p Param) clamped(v float64) float64 {
	if !p.Bounded {
		return v
	}
	return min(max(v, p.Min), p.Max)
}

// Line is a single emission-line profile. Flux integrates over
// wavelength, Vel shifts the rest wavelength and Disp sets the width,
// both in km/s.
type Line struct {
	Name     string
	Kind     Kind
	RestWave float64
	Flux     Param
	Vel      Param
	Disp     Param
}

// Center returns the observed-frame centroid wavelength.
func (l *Line) Center() float64 {
	return l.RestWave * (1 + l.Vel.Value/speedOfLight)
}

// SigmaWave returns the kinematic width in wavelength units.
func (l *Line) SigmaWave() float64 {
	return l.RestWave * math.Abs(l.Disp.Value) / speedOfLight
}

// addTo accumulates the profile onto dst. Instrumental broadening
// applies to Gaussian kinds only.
func (l *Line) addTo(dst, wave []float64, res *Resolution) {
	mu := l.Center()
	w := l.SigmaWave()

	switch l.Kind {
	case KindGauss:
		si := res.Sigma(mu)
		s2 := w*w + si*si
		if s2 <= 0 {
			return
		}
		norm := l.Flux.Value / math.Sqrt(2*math.Pi*s2)
		for i, x := range wave {
			d := x - mu
			dst[i] += norm * math.Exp(-d*d/(2*s2))
		}
	case KindLorentz:
		if w <= 0 {
			return
		}
		norm := l.Flux.Value * w / math.Pi
		for i, x := range wave {
			d := x - mu
			dst[i] += norm / (d*d + w*w)
		}
	}
}

// LineSet is an ordered collection of lines sharing one instrumental
// resolution. The zero Res means no instrumental broadening.
type LineSet struct {
	Lines []Line
	Res   *Resolution
}

// Clone returns a deep copy of the set; the resolution is shared.
func (s *LineSet) Clone() LineSet {
	return LineSet{Lines: append([]Line(nil), s.Lines...), Res: s.Res}
}

// Eval returns the summed model of all lines on the grid.
func (s *LineSet) Eval(wave []float64) []float64 {
	dst := make([]float64, len(wave))
	s.evalTo(dst, wave)
	return dst
}

func (s *LineSet) evalTo(dst, wave []float64) {
	clear(dst)
	for i := range s.Lines {
		s.Lines[i].addTo(dst, wave, s.Res)
	}
}

// GuessPar re-estimates flux and velocity of each line from the data
// inside a window centered on its observed centroid: flux from the
// windowed sum times the mean grid step, velocity from the peak
// position. Fixed parameters and lines without window coverage keep
// their values. A non-positive window is a no-op.
func (s *LineSet) GuessPar(wave, data []float64, window float64) {
	if window <= 0 || len(wave) != len(data) || len(wave) < 2 {
		return
	}
	step := (wave[len(wave)-1] - wave[0]) / float64(len(wave)-1)

	for i := range s.Lines {
		l := &s.Lines[i]
		mu := l.Center()
		lo, hi := mu-window/2, mu+window/2

		sum := 0.0
		peak := math.Inf(-1)
		peakWave := mu
		found := false
		for j, x := range wave {
			if x < lo || x > hi {
				continue
			}
			found = true
			sum += data[j]
			if data[j] > peak {
				peak = data[j]
				peakWave = x
			}
		}
		if !found {
			continue
		}

		if !l.Flux.Fixed {
			l.Flux.Value = l.Flux.clamped(sum * step)
		}
		if !l.Vel.Fixed {
			l.Vel.Value = l.Vel.clamped((peakWave/l.RestWave - 1) * speedOfLight)
		}
	}
}

// freeRef addresses one free parameter inside a set.
type freeRef struct {
	p     *Param
	line  int
	field int // 0 flux, 1 vel, 2 disp
}

func (s *LineSet) freeRefs() []freeRef {
	var free []freeRef
	for i := range s.Lines {
		l := &s.Lines[i]
		for f, p := range []*Param{&l.Flux, &l.Vel, &l.Disp} {
			if !p.Fixed {
				free = append(free, freeRef{p: p, line: i, field: f})
			}
		}
	}
	return free
}

func pack(free []freeRef) []float64 {
	theta := make([]float64, len(free))
	for k, ref := range free {
		theta[k] = ref.p.Value
	}
	return theta
}

func apply(free []freeRef, theta []float64) {
	for k, ref := range free {
		ref.p.Value = ref.p.clamped(theta[k])
	}
}
