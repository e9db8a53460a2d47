package mcmc

import (
	"math"
	"testing"
)

const tolerance = 1e-12

func TestTraceStats(t *testing.T) {
	trace := newTrace(1, 2, 3)
	for i, v := range []float64{1, 2, 3} {
		trace.record(0, i, []float64{v})
	}
	for i, v := range []float64{4, 5, 6} {
		trace.record(1, i, []float64{v})
	}

	if got := trace.Mean(0); math.Abs(got-3.5) > tolerance {
		t.Errorf("Mean: got %v, want 3.5", got)
	}
	want := math.Sqrt(91.0/6.0 - 3.5*3.5)
	if got := trace.StdDev(0); math.Abs(got-want) > tolerance {
		t.Errorf("StdDev: got %v, want %v", got, want)
	}

	if trace.NumParams() != 1 || trace.NumChains() != 2 || trace.SamplesPerChain() != 3 {
		t.Errorf("shape: got (%d, %d, %d), want (1, 2, 3)",
			trace.NumParams(), trace.NumChains(), trace.SamplesPerChain())
	}
}

func TestGelmanRubinIdenticalChains(t *testing.T) {
	const n = 100
	trace := newTrace(2, 4, n)
	for c := range 4 {
		for i := range n {
			trace.record(c, i, []float64{math.Sin(float64(i)), math.Cos(float64(i))})
		}
	}

	for p := range 2 {
		rhat := trace.GelmanRubin(p)
		if math.Abs(rhat-1) > 0.01 {
			t.Errorf("GelmanRubin(%d): got %v, want ~1 for identical chains", p, rhat)
		}
	}
}

func TestGelmanRubinTooFewChains(t *testing.T) {
	trace := newTrace(1, 2, 10)
	for c := range 2 {
		for i := range 10 {
			trace.record(c, i, []float64{float64(c*10 + i)})
		}
	}
	if got := trace.GelmanRubin(0); got != 0 {
		t.Errorf("GelmanRubin: got %v, want 0 for fewer than 3 chains", got)
	}
}

func TestGelmanRubinDivergedChains(t *testing.T) {
	const n = 50
	trace := newTrace(1, 4, n)
	for c := range 4 {
		for i := range n {
			// Chains centered far apart compared to their spread.
			trace.record(c, i, []float64{float64(100*c) + math.Sin(float64(i))})
		}
	}
	if rhat := trace.GelmanRubin(0); rhat < 10 {
		t.Errorf("GelmanRubin: got %v, want large for diverged chains", rhat)
	}
}
