package solver

import (
	"github.com/ezoic/celer/internal/num"
)

// Priority sentinels. Screened and zero-norm features get a value large
// enough to never win a smallest-k selection; features forced into the
// working set get a value below any computable priority, which is
// non-negative for a feasible dual point.
const (
	screenedPriority = 10000
	forcedPriority   = -1
)

// safeRadius returns the gap safe sphere radius around theta: any
// feature whose priority exceeds it has optimal coefficient zero.
func safeRadius[T num.Float](loss Loss, gap, alpha T, n int) T {
	if gap < 0 {
		// numerical noise on a converged problem
		gap = 0
	}
	switch loss {
	case Lasso:
		return num.Sqrt(2*gap/T(n)) / alpha
	default:
		return num.Sqrt(gap/2) / alpha
	}
}

// screenFeatures computes the priority of every unscreened feature with
// respect to theta and permanently screens those whose priority exceeds
// radius. The screened set only ever grows: a feature screened once is
// excluded for the remainder of the solve. Returns the number of newly
// screened features.
//
// The priority of feature j is its distance-to-boundary normalized by
// the column norm: (1 - |⟨X_j, theta⟩|)/‖X_j‖, or |⟨X_j, theta⟩ - 1|/‖X_j‖
// under the non-negativity constraint.
func screenFeatures[T num.Float](cs ColumnSet[T], theta, colNorms, prios []T, screened []bool, radius T, positive bool) int {
	var thetaSum T
	if cs.Centered() {
		thetaSum = num.Sum(theta)
	}

	newlyScreened := 0
	for j := range prios {
		if screened[j] || colNorms[j] == 0 {
			prios[j] = screenedPriority
			continue
		}
		xjTheta := cs.Dot(j, theta, thetaSum)
		if positive {
			prios[j] = num.Abs(xjTheta-1) / colNorms[j]
		} else {
			prios[j] = (1 - num.Abs(xjTheta)) / colNorms[j]
		}
		if prios[j] > radius {
			screened[j] = true
			prios[j] = screenedPriority
			newlyScreened++
		}
	}
	return newlyScreened
}
