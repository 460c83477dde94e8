// Package solver implements a working-set coordinate descent solver for
// L1-regularized linear models (Lasso and sparse logistic regression).
//
// With n the number of samples, the objectives are:
//
//	Lasso:    ||y - Xw||² / (2n) + alpha·||w||₁
//	Logistic: Σᵢ log(1 + exp(-yᵢ·xᵢᵀw)) + alpha·||w||₁
//
// The solver combines three techniques to scale to high-dimensional
// problems:
//
//   - a growing working set of candidate features, so each inner pass only
//     sweeps the coordinates likely to be nonzero at the optimum;
//   - gap safe screening, which uses the duality gap to permanently
//     discard features whose optimal coefficient is provably zero;
//   - dual extrapolation, which combines the last K fitted-value iterates
//     through a small least-squares solve to produce a tighter feasible
//     dual point, giving a better convergence certificate and stronger
//     screening earlier.
//
// Solve is the entry point. It operates in place on caller-owned buffers
// and is generic over float32 and float64; the element type is fixed for
// the whole call. Design matrices are accessed through the ColumnSet
// interface, with dense column-major and CSC (optionally implicitly
// centered) implementations.
//
// Higher-level estimators with a gonum-based API live in package linear.
package solver
