package linear

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	celerErrors "github.com/ezoic/celer/pkg/errors"
	"github.com/ezoic/celer/pkg/log"
	"github.com/ezoic/celer/solver"
)

// PathResult holds a regularization path: one solution per alpha, in
// decreasing alpha order.
type PathResult struct {
	// Alphas is the regularization grid actually solved.
	Alphas []float64
	// Coefs holds the coefficients, shape (n_features × len(Alphas)).
	Coefs *mat.Dense
	// Gaps holds the final duality gap reached at each alpha.
	Gaps []float64
	// NIters holds the outer iteration count used at each alpha.
	NIters []int
}

// LassoPath solves the Lasso on a decreasing grid of regularization
// strengths, warm starting each solve with the previous solution.
//
// When no explicit grid is supplied with WithAlphas, a geometric grid
// of WithNAlphas points runs from alphaMax = ‖Xᵀy‖∞/n, above which the
// solution is exactly zero, down to eps·alphaMax. Solving the path in
// decreasing order keeps every solve cheap: the previous solution is an
// excellent start for the next, slightly smaller, alpha.
func LassoPath(X, y mat.Matrix, opts ...Option) (_ *PathResult, err error) {
	defer celerErrors.Recover(&err, "LassoPath")
	return solvePath("LassoPath", solver.Lasso, X, y, opts)
}

// LogisticPath solves the sparse logistic regression on a decreasing
// grid of regularization strengths with warm starts, like LassoPath.
// alphaMax is ‖Xᵀy‖∞/2 for the logistic loss.
func LogisticPath(X, y mat.Matrix, opts ...Option) (_ *PathResult, err error) {
	defer celerErrors.Recover(&err, "LogisticPath")
	return solvePath("LogisticPath", solver.Logistic, X, y, opts)
}

func solvePath(op string, loss solver.Loss, X, y mat.Matrix, opts []Option) (*PathResult, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	startTime := time.Now()
	data, yv, err := trainArrays(op, X, y)
	if err != nil {
		return nil, err
	}
	n, p := len(yv), len(data)/len(yv)

	if loss == solver.Logistic {
		for _, v := range yv {
			if v != -1 && v != 1 {
				return nil, celerErrors.NewValueError(op, "y must contain only -1 or +1 values")
			}
		}
	}

	cs, err := solver.NewDenseColumns(data, n, p)
	if err != nil {
		return nil, err
	}

	alphas := cfg.alphas
	if alphas == nil {
		alphaMax := criticalAlpha(cs, loss, yv, cfg.positive)
		alphas = make([]float64, cfg.nAlphas)
		if cfg.nAlphas == 1 {
			alphas[0] = alphaMax
		} else {
			floats.LogSpan(alphas, alphaMax, cfg.eps*alphaMax)
		}
	} else {
		alphas = append([]float64(nil), alphas...)
		sort.Sort(sort.Reverse(sort.Float64Slice(alphas)))
	}

	logger := log.GetLoggerWithName("linear").With(
		log.OperationKey, log.OperationPath,
		"loss", loss.String(),
	)
	logger.Info("path started",
		log.SamplesKey, n,
		log.FeaturesKey, p,
		"n_alphas", len(alphas),
	)

	res := &PathResult{
		Alphas: alphas,
		Coefs:  mat.NewDense(p, len(alphas), nil),
		Gaps:   make([]float64, len(alphas)),
		NIters: make([]int, len(alphas)),
	}

	colNorms := solver.ColumnNorms[float64](cs)
	w := make([]float64, p)
	var theta []float64
	sopts := cfg.solverOptions()

	// The first grid point is not skipped: the grid is not guaranteed
	// to start exactly at alphaMax.
	for t, alpha := range alphas {
		var fit []float64
		if loss == solver.Lasso {
			fit = lassoResidual(cs, yv, w)
		} else {
			fit = logisticMargin(cs, n, w)
		}
		if t == 0 {
			theta = initialDualPoint(cs, loss, alpha, yv, fit)
		}

		// Warm-started working set: start from the support of the
		// previous solution.
		if t > 0 {
			nnz := 0
			for _, wj := range w {
				if wj != 0 {
					nnz++
				}
			}
			sopts.P0 = nnz
			if sopts.P0 < 1 {
				sopts.P0 = 1
			}
		}

		sres, err := solver.Solve(solver.Problem[float64]{
			X:        cs,
			Y:        yv,
			Alpha:    alpha,
			Loss:     loss,
			Positive: cfg.positive && loss == solver.Lasso,
		}, w, fit, theta, colNorms, sopts)
		if err != nil {
			return nil, err
		}

		res.Coefs.SetCol(t, w)
		res.Gaps[t] = float64(sres.FinalGap())
		res.NIters[t] = sres.NIter()

		if res.Gaps[t] > cfg.tol {
			logger.Warn("objective did not converge: increasing tol may help; "+
				"very small alpha causes precision issues",
				log.AlphaKey, alpha,
				log.GapKey, res.Gaps[t],
				log.ToleranceKey, cfg.tol,
			)
		}
	}

	logger.Info("path completed",
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
		"n_alphas", len(alphas),
	)
	return res, nil
}

// criticalAlpha returns the smallest regularization for which the
// all-zero coefficient vector is optimal: ‖Xᵀy‖∞/n for the Lasso (the
// signed maximum under the non-negativity constraint) and ‖Xᵀy‖∞/2 for
// the logistic loss.
func criticalAlpha(cs solver.ColumnSet[float64], loss solver.Loss, yv []float64, positive bool) float64 {
	var ySum float64
	if cs.Centered() {
		for _, v := range yv {
			ySum += v
		}
	}
	var m float64
	for j := 0; j < cs.Features(); j++ {
		v := cs.Dot(j, yv, ySum)
		if !(positive && loss == solver.Lasso) {
			v = math.Abs(v)
		}
		if v > m {
			m = v
		}
	}
	if loss == solver.Logistic {
		return m / 2
	}
	return m / float64(len(yv))
}
