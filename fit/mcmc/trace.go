package mcmc

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Chains holds the kept samples of one parameter, one row per chain.
type Chains [][]float64

// Trace is the thinned output of a sampling run.
type Trace struct {
	params []Chains
}

func newTrace(ndim, nchain, kept int) *Trace {
	t := &Trace{params: make([]Chains, ndim)}
	for p := range t.params {
		t.params[p] = make(Chains, nchain)
		for c := range t.params[p] {
			t.params[p][c] = make([]float64, kept)
		}
	}
	return t
}

// record stores one thinned state of a chain.
func (t *Trace) record(chain, idx int, theta []float64) {
	for p := range t.params {
		t.params[p][chain][idx] = theta[p]
	}
}

// NumParams returns the number of sampled parameters.
func (t *Trace) NumParams() int { return len(t.params) }

// NumChains returns the number of chains.
func (t *Trace) NumChains() int {
	if len(t.params) == 0 {
		return 0
	}
	return len(t.params[0])
}

// SamplesPerChain returns the number of kept samples in each chain.
func (t *Trace) SamplesPerChain() int {
	if t.NumChains() == 0 {
		return 0
	}
	return len(t.params[0][0])
}

// Param returns the chains of parameter p. Callers must treat the
// returned slices as read-only.
func (t *Trace) Param(p int) Chains { return t.params[p] }

// flat concatenates all chains of parameter p.
func (t *Trace) flat(p int) []float64 {
	out := make([]float64, 0, t.NumChains()*t.SamplesPerChain())
	for _, chain := range t.params[p] {
		out = append(out, chain...)
	}
	return out
}

// Mean returns the posterior mean of parameter p over all kept
// samples.
func (t *Trace) Mean(p int) float64 {
	return stat.Mean(t.flat(p), nil)
}

// StdDev returns the population standard deviation of parameter p over
// all kept samples.
func (t *Trace) StdDev(p int) float64 {
	return stat.PopStdDev(t.flat(p), nil)
}

// GelmanRubin returns the potential scale reduction of parameter p,
// comparing the between-chain and within-chain variances. Values near
// one indicate converged chains. With fewer than three chains the
// diagnostic is undefined and zero is returned.
func (t *Trace) GelmanRubin(p int) float64 {
	chains := t.params[p]
	if len(chains) < 3 {
		return 0
	}

	n := float64(len(chains[0]))
	means := make([]float64, len(chains))
	within := make([]float64, len(chains))
	for c, samples := range chains {
		means[c] = stat.Mean(samples, nil)
		within[c] = stat.Variance(samples, nil)
	}

	b := n * stat.Variance(means, nil)
	w := stat.Mean(within, nil)
	return math.Sqrt(1 - 1/n + b/(n*w))
}
