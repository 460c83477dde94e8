package solver

import (
	"github.com/ezoic/celer/internal/num"
)

// Cutoffs for the overflow-safe log(1 + exp(x)).
const (
	log1pexpLow  = -18.0
	log1pexpHigh = 18.0
)

// log1pexp returns log(1 + exp(x)) without overflow: exp(x) for very
// negative x, x for very positive x.
func log1pexp[T num.Float](x T) T {
	switch {
	case x < T(log1pexpLow):
		return num.Exp(x)
	case x > T(log1pexpHigh):
		return x
	default:
		return num.Log1p(num.Exp(x))
	}
}

// sigmoid returns 1 / (1 + exp(-x)).
func sigmoid[T num.Float](x T) T {
	return 1 / (1 + num.Exp(-x))
}

// xlogx returns x·log(x) with the convention 0·log(0) = 0.
func xlogx[T num.Float](x T) T {
	if x < 1e-10 {
		return 0
	}
	return x * num.Log(x)
}

// negBinaryEntropy returns x·log(x) + (1-x)·log(1-x) on [0, 1] and +Inf
// outside. The infinity acts as a barrier: an entropy term outside its
// domain makes the dual objective -Inf, so an infeasible point is never
// retained as a certificate.
func negBinaryEntropy[T num.Float](x T) T {
	if x < 0 || x > 1 {
		return num.Inf[T]()
	}
	return xlogx(x) + xlogx(1-x)
}

// softThreshold returns sign(x)·max(|x| - u, 0), the proximal operator
// of u·|·|.
func softThreshold[T num.Float](x, u T) T {
	switch {
	case x > u:
		return x - u
	case x < -u:
		return x + u
	default:
		return 0
	}
}

// primalObjective evaluates the full primal objective. fit holds the
// residual y - Xw for Lasso and the margin Xw for logistic regression.
// Zero entries of w contribute nothing to the penalty and are skipped.
func primalObjective[T num.Float](loss Loss, alpha T, y, fit, w []T) T {
	var l1 T
	for _, wj := range w {
		if wj != 0 {
			l1 += num.Abs(wj)
		}
	}

	var data T
	switch loss {
	case Lasso:
		data = num.Dot(fit, fit) / (2 * T(len(y)))
	case Logistic:
		for i, yi := range y {
			data += log1pexp(-yi * fit[i])
		}
	}
	return alpha*l1 + data
}

// dualObjective evaluates the dual objective at theta. For Lasso:
//
//	‖y‖²/(2n) - (alpha²·n/2)·Σᵢ (yᵢ/(alpha·n) - θᵢ)²
//
// For logistic regression, minus the binary entropy barrier:
//
//	-Σᵢ Nh(alpha·yᵢ·θᵢ)
func dualObjective[T num.Float](loss Loss, alpha T, y, theta []T) T {
	n := T(len(y))
	var d T
	switch loss {
	case Lasso:
		scale := alpha * n
		for i, yi := range y {
			diff := yi/scale - theta[i]
			d -= diff * diff
		}
		d *= alpha * alpha * n / 2
		d += num.Dot(y, y) / (2 * n)
	case Logistic:
		for i, yi := range y {
			d -= negBinaryEntropy(alpha * yi * theta[i])
		}
	}
	return d
}

// buildDualCandidate writes the unscaled dual candidate derived from the
// current fit into out: R/(alpha·n) for Lasso, yᵢ·σ(-yᵢ·Xwᵢ)/alpha for
// logistic regression. The candidate is generally infeasible and must go
// through rescaleDualPoint before its dual objective is a certificate.
func buildDualCandidate[T num.Float](loss Loss, alpha T, y, fit, out []T) {
	switch loss {
	case Lasso:
		num.Copy(out, fit)
		num.Scal(1/(alpha*T(len(y))), out)
	case Logistic:
		for i, yi := range y {
			out[i] = yi * sigmoid(-yi*fit[i]) / alpha
		}
	}
}

// dualScale returns max over the given columns of |⟨X_j, theta⟩|, or of
// the signed ⟨X_j, theta⟩ under the non-negativity constraint. This is
// the amount by which a candidate violates dual feasibility.
func dualScale[T num.Float](cs ColumnSet[T], theta []T, ws []int, positive bool) T {
	var thetaSum T
	if cs.Centered() {
		thetaSum = num.Sum(theta)
	}
	var scal T
	for _, j := range ws {
		v := cs.Dot(j, theta, thetaSum)
		if !positive {
			v = num.Abs(v)
		}
		if v > scal {
			scal = v
		}
	}
	return scal
}

// rescaleDualPoint projects theta onto the dual feasible set by dividing
// by its dualScale over the given columns when that exceeds one. After
// the call the dual objective of theta is a valid lower bound on the
// primal restricted to those columns.
func rescaleDualPoint[T num.Float](cs ColumnSet[T], theta []T, ws []int, positive bool) {
	scal := dualScale(cs, theta, ws, positive)
	if scal > 1 {
		num.Scal(1/scal, theta)
	}
}
