// Package num provides the dense vector kernels and the small
// positive-definite solve used by the coordinate descent solver.
//
// The solver is generic over float32 and float64, which rules out
// gonum's float64-only BLAS bindings for the hot loops; the kernels
// here are the generic equivalents of Dot, Nrm2, Axpy, Scal and Copy.
// Estimator-level code working in float64 still goes through gonum.
package num

import (
	"math"

	celerErrors "github.com/ezoic/celer/pkg/errors"
)

// Float is the element type of every vector the solver touches.
// It is fixed once per solve call; there is no mixed-width arithmetic.
type Float interface {
	~float32 | ~float64
}

// Dot returns the inner product of x and y.
// Panics if the lengths differ.
func Dot[T Float](x, y []T) T {
	if len(x) != len(y) {
		panic("num: vector length mismatch in Dot")
	}
	var s T
	for i, v := range x {
		s += v * y[i]
	}
	return s
}

// Nrm2 returns the Euclidean norm of x.
func Nrm2[T Float](x []T) T {
	var s T
	for _, v := range x {
		s += v * v
	}
	return Sqrt(s)
}

// Sum returns the sum of the entries of x.
func Sum[T Float](x []T) T {
	var s T
	for _, v := range x {
		s += v
	}
	return s
}

// Axpy computes y += alpha*x in place.
func Axpy[T Float](alpha T, x, y []T) {
	if len(x) != len(y) {
		panic("num: vector length mismatch in Axpy")
	}
	for i, v := range x {
		y[i] += alpha * v
	}
}

// Scal scales x by alpha in place.
func Scal[T Float](alpha T, x []T) {
	for i := range x {
		x[i] *= alpha
	}
}

// Copy copies src into dst. The slices must have equal length.
func Copy[T Float](dst, src []T) {
	if len(dst) != len(src) {
		panic("num: vector length mismatch in Copy")
	}
	copy(dst, src)
}

// Sqrt returns the square root of x in the element type.
func Sqrt[T Float](x T) T {
	return T(math.Sqrt(float64(x)))
}

// Log returns the natural logarithm of x in the element type.
func Log[T Float](x T) T {
	return T(math.Log(float64(x)))
}

// Log1p returns log(1+x) in the element type.
func Log1p[T Float](x T) T {
	return T(math.Log1p(float64(x)))
}

// Exp returns e**x in the element type.
func Exp[T Float](x T) T {
	return T(math.Exp(float64(x)))
}

// Abs returns the absolute value of x.
func Abs[T Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Inf returns positive infinity in the element type.
func Inf[T Float]() T {
	return T(math.Inf(1))
}

// SolvePosDef solves the symmetric positive definite system A x = b in
// place: a holds the row-major k x k matrix and is overwritten with its
// Cholesky factor, b is overwritten with the solution. Only the lower
// triangle of a is referenced.
//
// Returns ErrNotPositiveDefinite when a pivot is not strictly positive.
// The matrices here are tiny (the extrapolation Gram system), so an
// unblocked Cholesky is all that is needed.
func SolvePosDef[T Float](a []T, b []T) error {
	k := len(b)
	if len(a) != k*k {
		return celerErrors.NewValueError("num.SolvePosDef", "matrix and vector dimensions disagree")
	}

	// Cholesky factorization A = L L^T, lower triangle in place.
	for j := 0; j < k; j++ {
		d := a[j*k+j]
		for p := 0; p < j; p++ {
			d -= a[j*k+p] * a[j*k+p]
		}
		if d <= 0 {
			return celerErrors.ErrNotPositiveDefinite
		}
		d = Sqrt(d)
		a[j*k+j] = d
		for i := j + 1; i < k; i++ {
			s := a[i*k+j]
			for p := 0; p < j; p++ {
				s -= a[i*k+p] * a[j*k+p]
			}
			a[i*k+j] = s / d
		}
	}

	// Forward substitution L z = b.
	for i := 0; i < k; i++ {
		s := b[i]
		for p := 0; p < i; p++ {
			s -= a[i*k+p] * b[p]
		}
		b[i] = s / a[i*k+i]
	}

	// Back substitution L^T x = z.
	for i := k - 1; i >= 0; i-- {
		s := b[i]
		for p := i + 1; p < k; p++ {
			s -= a[p*k+i] * b[p]
		}
		b[i] = s / a[i*k+i]
	}

	return nil
}
