package solver

import (
	"fmt"

	"github.com/ezoic/celer/internal/num"
	celerErrors "github.com/ezoic/celer/pkg/errors"
	"github.com/ezoic/celer/pkg/log"
)

// Loss selects the data-fitting term of the objective.
type Loss int

const (
	// Lasso is the squared loss ||y - Xw||²/(2n).
	Lasso Loss = iota
	// Logistic is the logistic loss Σ log(1 + exp(-yᵢ·xᵢᵀw)), with
	// labels in {-1, +1}.
	Logistic
)

// String returns the loss name.
func (l Loss) String() string {
	switch l {
	case Lasso:
		return "lasso"
	case Logistic:
		return "logreg"
	default:
		return fmt.Sprintf("Loss(%d)", int(l))
	}
}

// Problem describes one L1-regularized fit. It is immutable for the
// duration of a Solve call.
type Problem[T num.Float] struct {
	// X is the design matrix, dense or sparse.
	X ColumnSet[T]
	// Y is the target vector: real-valued for Lasso, {-1, +1} labels
	// for Logistic.
	Y []T
	// Alpha is the regularization strength, strictly positive.
	Alpha T
	// Loss selects the data-fitting term.
	Loss Loss
	// Positive constrains the coefficients to be non-negative
	// (Lasso only).
	Positive bool
}

// Options are the solver knobs. The zero value is not usable; start
// from DefaultOptions.
type Options struct {
	MaxIter       int     // outer iteration budget
	MaxEpochs     int     // inner epoch budget per subproblem
	GapFreq       int     // inner epochs between duality gap checks
	P0            int     // working set size on the first iteration
	K             int     // extrapolation history length
	Tol           float64 // outer duality gap tolerance
	TolRatioInner float64 // inner tolerance as a fraction of the outer gap, when pruning
	Prune         bool    // rebuild the working set from scratch each iteration
	UseAccel      bool    // dual extrapolation
	BetterLC      bool    // refresh the logistic Lipschitz estimates from the margins
	Verbose       int     // 0 warnings only, 1 outer progress, 2 inner progress
}

// DefaultOptions returns the reference solver configuration.
func DefaultOptions() Options {
	return Options{
		MaxIter:       50,
		MaxEpochs:     50000,
		GapFreq:       10,
		P0:            10,
		K:             6,
		Tol:           1e-6,
		TolRatioInner: 0.3,
		Prune:         true,
		UseAccel:      true,
	}
}

// GapPoint records one outer iteration of the solver.
type GapPoint[T num.Float] struct {
	Primal T // primal objective at the start of the iteration
	Gap    T // duality gap against the best dual objective so far
}

// Result is the diagnostic output of Solve. The solution itself is
// written into the caller's w, fit and theta buffers.
type Result[T num.Float] struct {
	// Gaps holds one entry per outer iteration actually run.
	Gaps []GapPoint[T]
	// Converged reports whether the final gap fell below Tol within
	// the iteration budget.
	Converged bool
}

// NIter returns the number of outer iterations run.
func (r *Result[T]) NIter() int { return len(r.Gaps) }

// FinalGap returns the duality gap of the last iteration.
func (r *Result[T]) FinalGap() T {
	if len(r.Gaps) == 0 {
		return num.Inf[T]()
	}
	return r.Gaps[len(r.Gaps)-1].Gap
}

// Solve runs the working-set solver on prob.
//
// w is the initial coefficient vector and fit its matching companion:
// the residual y - Xw for Lasso, the margin Xw for logistic regression.
// theta is an initial dual-feasible point. All three are mutated in
// place and hold the solution on return. colNorms holds the
// precomputed column norms (see ColumnNorms).
//
// Each outer iteration refreshes the global dual point from the current
// fit, computes the duality gap against the best dual objective seen so
// far, screens features that provably stay at zero, selects a working
// set, and delegates to the inner coordinate descent solver. The loop
// stops when the gap falls below opts.Tol or the iteration budget runs
// out; the latter is reported in Result, not as an error.
//
// The only fatal errors are contract violations: an unsupported loss
// kind, a non-positive alpha, or mismatched buffer lengths.
func Solve[T num.Float](prob Problem[T], w, fit, theta, colNorms []T, opts Options) (*Result[T], error) {
	cs := prob.X
	if cs == nil {
		return nil, celerErrors.NewModelError("solver.Solve", "empty design matrix", celerErrors.ErrEmptyData)
	}
	n, p := cs.Samples(), cs.Features()

	if prob.Loss != Lasso && prob.Loss != Logistic {
		return nil, celerErrors.NewValueError("solver.Solve", fmt.Sprintf("unsupported loss kind %d", int(prob.Loss)))
	}
	if prob.Positive && prob.Loss != Lasso {
		return nil, celerErrors.NewValueError("solver.Solve", "the non-negativity constraint requires the lasso loss")
	}
	if !(prob.Alpha > 0) {
		return nil, celerErrors.NewValueError("solver.Solve", "alpha must be positive")
	}
	if len(prob.Y) != n || len(fit) != n || len(theta) != n {
		return nil, celerErrors.NewDimensionError("solver.Solve", n, len(prob.Y), 0)
	}
	if len(w) != p || len(colNorms) != p {
		return nil, celerErrors.NewDimensionError("solver.Solve", p, len(w), 1)
	}

	logger := log.GetLoggerWithName("solver").With(
		log.OperationKey, log.OperationSolve,
		"loss", prob.Loss.String(),
	)
	if opts.Verbose >= 1 {
		logger.Info("solve started",
			log.SamplesKey, n,
			log.FeaturesKey, p,
			log.AlphaKey, float64(prob.Alpha),
			log.ToleranceKey, opts.Tol,
		)
	}

	res := &Result[T]{Gaps: make([]GapPoint[T], 0, opts.MaxIter)}

	screened := make([]bool, p)
	prios := make([]T, p)
	nScreened := 0

	// Local dual point of the inner solver; the outer loop keeps the
	// better of it and the freshly built global point each iteration.
	thetaInner := make([]T, n)
	num.Copy(thetaInner, theta)

	unscreened := make([]int, 0, p)
	var prevWS []int

	highestDObj := -num.Inf[T]()
	tol := T(opts.Tol)

	for t := 0; t < opts.MaxIter; t++ {
		unscreened = unscreened[:0]
		for j := 0; j < p; j++ {
			if !screened[j] {
				unscreened = append(unscreened, j)
			}
		}

		var dObj T
		if t > 0 {
			buildDualCandidate(prob.Loss, prob.Alpha, prob.Y, fit, theta)
			rescaleDualPoint(cs, theta, unscreened, prob.Positive)
			dObj = dualObjective(prob.Loss, prob.Alpha, prob.Y, theta)

			// The inner solver's dual point was only feasible for its
			// working set; rescale against every unscreened column and
			// keep it if it certifies a better bound.
			rescaleDualPoint(cs, thetaInner, unscreened, prob.Positive)
			if dObjInner := dualObjective(prob.Loss, prob.Alpha, prob.Y, thetaInner); dObjInner > dObj {
				dObj = dObjInner
				num.Copy(theta, thetaInner)
			}
		} else {
			// first iteration trusts the caller-supplied dual point
			dObj = dualObjective(prob.Loss, prob.Alpha, prob.Y, theta)
		}

		// Dual objectives are not monotone across iterations; the gap
		// is always measured against the best certificate so far.
		if dObj > highestDObj {
			highestDObj = dObj
		}
		pObj := primalObjective(prob.Loss, prob.Alpha, prob.Y, fit, w)
		gap := pObj - highestDObj
		res.Gaps = append(res.Gaps, GapPoint[T]{Primal: pObj, Gap: gap})

		if opts.Verbose >= 1 {
			logger.Info("outer iteration",
				log.IterationKey, t,
				log.PrimalKey, float64(pObj),
				log.GapKey, float64(gap),
				log.ScreenedKey, nScreened,
			)
		}
		if gap < tol {
			if opts.Verbose >= 1 {
				logger.Info("early exit",
					log.IterationKey, t,
					log.GapKey, float64(gap),
					log.ToleranceKey, opts.Tol,
				)
			}
			res.Converged = true
			break
		}

		radius := safeRadius(prob.Loss, gap, prob.Alpha, n)
		nScreened += screenFeatures(cs, theta, colNorms, prios, screened, radius, prob.Positive)

		ws := selectWorkingSet(w, prios, screened, prevWS, t, p-nScreened, opts)
		if len(ws) == 0 {
			// every feature screened: w is optimal at zero
			res.Converged = true
			break
		}

		tolInner := tol
		if opts.Prune {
			tolInner = T(opts.TolRatioInner) * gap
		}
		if opts.Verbose >= 1 {
			logger.Info("inner solve",
				log.IterationKey, t,
				log.WorkingSetKey, len(ws),
				log.ToleranceKey, float64(tolInner),
			)
		}
		innerSolve(prob, ws, w, fit, thetaInner, colNorms, opts, tolInner, logger)
		prevWS = ws
	}

	if !res.Converged {
		logger.Warn("iteration budget exhausted before reaching tolerance",
			log.IterationKey, opts.MaxIter,
			log.GapKey, float64(res.FinalGap()),
			log.ToleranceKey, opts.Tol,
		)
	}
	return res, nil
}

// selectWorkingSet picks the feature indices for the next inner solve.
// Features with a nonzero coefficient are always forced in; with
// pruning the set is rebuilt around them each iteration, without
// pruning the previous working set's unscreened members are kept and
// the size doubles. The target size is clamped to the number of
// unscreened features, and when smaller the features with the smallest
// priorities are chosen by partial selection.
func selectWorkingSet[T num.Float](w, prios []T, screened []bool, prevWS []int, iter, nUnscreened int, opts Options) []int {
	nnz := 0
	for j, wj := range w {
		if wj != 0 && !screened[j] {
			prios[j] = forcedPriority
			nnz++
		}
	}

	var wsSize int
	if opts.Prune {
		if iter == 0 {
			wsSize = opts.P0
			if nnz != 0 {
				wsSize = nnz
			}
		} else {
			wsSize = 2 * nnz
		}
	} else {
		if iter == 0 {
			// prevWS is empty on the first iteration
			wsSize = opts.P0
		} else {
			for _, j := range prevWS {
				if !screened[j] {
					prios[j] = forcedPriority
				}
			}
			wsSize = 2 * len(prevWS)
		}
	}
	if wsSize > nUnscreened {
		wsSize = nUnscreened
	}
	if wsSize <= 0 {
		return nil
	}

	if wsSize == nUnscreened {
		ws := make([]int, 0, wsSize)
		for j := range screened {
			if !screened[j] {
				ws = append(ws, j)
			}
		}
		return ws
	}
	return smallestK(prios, wsSize)
}
