// Package mcmc provides Markov chain Monte Carlo samplers for
// low-dimensional posterior distributions.
//
//   - Ensemble: affine-invariant stretch-move ensemble sampler
//   - AdaptiveMetropolis: independent random-walk chains with an
//     adaptive proposal covariance
//   - Trace: thinned posterior samples with mean, standard deviation
//     and a between-chain convergence diagnostic
//
// Samplers draw their initial positions uniformly inside the model
// bounds and poll the context between steps, so long runs remain
// cancelable. The two backends organize their chains differently and
// their diagnostics are not interchangeable: the ensemble treats each
// walker as one chain, the Metropolis backend runs truly independent
// chains.
package mcmc
