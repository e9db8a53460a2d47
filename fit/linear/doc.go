// Package linear fits spectra as weighted sums of template spectra.
//
// Solve minimizes the chi-square between data and a linear combination
// of template rows, weighting each pixel by its inverse error. The
// default mode constrains all weights to be non-negative using the
// Lawson-Hanson active-set method; negative mode solves the
// unconstrained problem by QR factorization. SolveFixed evaluates a
// superposition with externally chosen weights.
//
// Masked pixels and pixels with non-positive errors never constrain
// the solution, but the best-fit model is always evaluated on the full
// grid.
package linear
