package solver

import (
	"github.com/ezoic/celer/internal/num"
	"github.com/ezoic/celer/pkg/log"
)

// innerSolve runs coordinate descent on the subproblem restricted to the
// working set ws, for at most opts.MaxEpochs epochs. w, fit and thetaIn
// are mutated in place; thetaIn ends up holding the best local dual
// point found, which the outer driver rescales and compares against its
// own. Every opts.GapFreq epochs the local duality gap is checked and
// the loop exits early once it falls below tolInner.
//
// Epoch-budget exhaustion is reported through a warning, not an error:
// the outer loop continues from whatever state was reached.
func innerSolve[T num.Float](prob Problem[T], ws []int, w, fit, thetaIn, colNorms []T, opts Options, tolInner T, logger log.Logger) {
	cs := prob.X
	y := prob.Y
	alpha := prob.Alpha
	n := cs.Samples()

	var accel *accelBuffer[T]
	var fitAcc, thetaAcc []T
	if opts.UseAccel {
		accel = newAccelBuffer[T](opts.K, n)
		fitAcc = make([]T, n)
		thetaAcc = make([]T, n)
	}

	// gradient and curvature scratch for the logistic updates
	var z, curv []T
	if prob.Loss == Logistic {
		z = make([]T, n)
		if opts.BetterLC {
			curv = make([]T, n)
		}
	}

	var fitSum T
	if cs.Centered() {
		fitSum = num.Sum(fit)
	}

	highestDObjIn := -num.Inf[T]()

	for epoch := 0; epoch < opts.MaxEpochs; epoch++ {
		if epoch > 0 && epoch%opts.GapFreq == 0 {
			buildDualCandidate(prob.Loss, alpha, y, fit, thetaIn)
			rescaleDualPoint(cs, thetaIn, ws, prob.Positive)
			dObjIn := dualObjective(prob.Loss, alpha, y, thetaIn)

			if opts.UseAccel {
				accel.push(fit)
				if accel.full() {
					if err := accel.extrapolate(fitAcc); err != nil && opts.Verbose >= 2 {
						logger.Warn("dual extrapolation skipped",
							log.EpochKey, epoch,
							"error", err.Error(),
						)
					}
					buildDualCandidate(prob.Loss, alpha, y, fitAcc, thetaAcc)
					rescaleDualPoint(cs, thetaAcc, ws, prob.Positive)
					if dObjAccel := dualObjective(prob.Loss, alpha, y, thetaAcc); dObjAccel > dObjIn {
						dObjIn = dObjAccel
						num.Copy(thetaIn, thetaAcc)
					}
				}
			}

			if dObjIn > highestDObjIn {
				highestDObjIn = dObjIn
			}
			pObjIn := primalObjective(prob.Loss, alpha, y, fit, w)
			gapIn := pObjIn - highestDObjIn

			if opts.Verbose >= 2 {
				logger.Debug("inner gap check",
					log.EpochKey, epoch,
					log.PrimalKey, float64(pObjIn),
					log.GapKey, float64(gapIn),
				)
			}
			if gapIn < tolInner {
				if opts.Verbose >= 2 {
					logger.Debug("inner solver converged",
						log.EpochKey, epoch,
						log.GapKey, float64(gapIn),
						log.ToleranceKey, float64(tolInner),
					)
				}
				return
			}
		}

		for _, j := range ws {
			if colNorms[j] == 0 {
				continue
			}
			oldWj := w[j]

			switch prob.Loss {
			case Lasso:
				nrm2 := colNorms[j] * colNorms[j]
				u := oldWj + cs.Dot(j, fit, fitSum)/nrm2
				if prob.Positive {
					w[j] = u - alpha*T(n)/nrm2
					if w[j] < 0 {
						w[j] = 0
					}
				} else {
					w[j] = softThreshold(u, alpha*T(n)/nrm2)
				}
				if diff := w[j] - oldWj; diff != 0 {
					// fit holds the residual y - Xw
					cs.AddScaled(j, -diff, fit)
					fitSum += cs.SumDelta(j, -diff)
				}

			case Logistic:
				lcj := colNorms[j] * colNorms[j] / 4
				if opts.BetterLC {
					var curvSum T
					for i, m := range fit {
						s := sigmoid(m)
						curv[i] = s * (1 - s)
						curvSum += curv[i]
					}
					lcj = cs.CurvatureDot(j, curv, curvSum)
					if lcj <= 0 {
						// saturated margins, no usable curvature
						continue
					}
				}

				var zSum T
				for i, yi := range y {
					z[i] = yi * sigmoid(-yi*fit[i])
					zSum += z[i]
				}
				u := oldWj + cs.Dot(j, z, zSum)/lcj
				w[j] = softThreshold(u, alpha/lcj)
				if diff := w[j] - oldWj; diff != 0 {
					// fit holds the margin Xw
					cs.AddScaled(j, diff, fit)
					fitSum += cs.SumDelta(j, diff)
				}
			}
		}
	}

	logger.Warn("inner solver exhausted its epoch budget",
		log.EpochKey, opts.MaxEpochs,
		log.ToleranceKey, float64(tolInner),
		log.WorkingSetKey, len(ws),
	)
}
