// Package linear provides L1-regularized linear models solved with the
// working-set coordinate descent solver from package solver.
//
// Two estimators are exposed:
//
//   - Lasso: L1-regularized least squares, with optional intercept and
//     non-negativity constraint
//   - SparseLogisticRegression: L1-regularized logistic regression over
//     {-1, +1} labels
//
// plus the regularization path functions LassoPath and LogisticPath,
// which solve a decreasing grid of alphas with warm starts, the way
// model selection over the regularization strength is usually done.
//
// Example usage:
//
//	lasso := linear.NewLasso(linear.WithAlpha(0.1))
//	err := lasso.Fit(X, y) // X: features, y: target values
//	if err != nil {
//		log.Fatal(err)
//	}
//	predictions, err := lasso.Predict(XTest)
//
// All estimators follow the Fit/Predict interface, validate their
// inputs with typed errors, and report progress through structured
// logging.
package linear

import (
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/celer/core/model"
	"github.com/ezoic/celer/metrics"
	celerErrors "github.com/ezoic/celer/pkg/errors"
	"github.com/ezoic/celer/pkg/log"
	"github.com/ezoic/celer/solver"
)

// Lasso is an L1-regularized least squares model:
//
//	min_w ||y - Xw||²/(2n) + alpha·||w||₁
type Lasso struct {
	State *model.StateManager // State manager (composition instead of embedding)

	cfg config

	coef      []float64 // learned coefficients
	intercept float64   // learned intercept
	dualGaps  []float64 // duality gap per outer iteration of the last Fit
	theta     []float64 // final dual point of the last Fit
	nIter     int       // outer iterations run by the last Fit

	logger log.Logger
}

// NewLasso creates a Lasso model. The defaults (alpha=1, tol=1e-4,
// pruning and acceleration on) match the reference solver; override
// them with options:
//
//	lasso := linear.NewLasso(
//		linear.WithAlpha(0.01),
//		linear.WithTol(1e-6),
//	)
func NewLasso(opts ...Option) *Lasso {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	l := &Lasso{
		State: model.NewStateManager(),
		cfg:   cfg,
	}
	l.logger = log.GetLoggerWithName("linear").With(
		log.ModelNameKey, "Lasso",
	)
	return l
}

// Fit trains the model on X (n_samples × n_features) and y (n_samples × 1).
//
// With WithWarmStart the previous coefficients seed the solver when the
// feature count matches; otherwise training starts from zero. The final
// duality gaps are available through DualGaps after the call.
//
// Errors:
//   - ErrEmptyData: if X or y are empty
//   - DimensionError: if the sample counts of X and y disagree
func (l *Lasso) Fit(X, y mat.Matrix) (err error) {
	defer celerErrors.Recover(&err, "Lasso.Fit")

	startTime := time.Now()
	data, yv, err := trainArrays("Lasso.Fit", X, y)
	if err != nil {
		return err
	}
	n, p := len(yv), len(data)/len(yv)

	l.logger.Info("training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, n,
		log.FeaturesKey, p,
		log.AlphaKey, l.cfg.alpha,
	)

	// Centering for the intercept happens on a copy; the solver only
	// ever sees the centered problem.
	var xMeans []float64
	var yMean float64
	if l.cfg.fitIntercept {
		xMeans, yMean = centerInPlace(data, yv, n, p)
	}

	cs, err := solver.NewDenseColumns(data, n, p)
	if err != nil {
		return err
	}

	w := make([]float64, p)
	if l.cfg.warmStart && len(l.coef) == p {
		copy(w, l.coef)
	}
	fit := lassoResidual(cs, yv, w)
	theta := initialDualPoint(cs, solver.Lasso, l.cfg.alpha, yv, fit)

	res, err := solver.Solve(solver.Problem[float64]{
		X:        cs,
		Y:        yv,
		Alpha:    l.cfg.alpha,
		Loss:     solver.Lasso,
		Positive: l.cfg.positive,
	}, w, fit, theta, solver.ColumnNorms[float64](cs), l.cfg.solverOptions())
	if err != nil {
		return err
	}

	l.coef = w
	l.theta = theta
	l.intercept = 0
	if l.cfg.fitIntercept {
		l.intercept = yMean
		for j, m := range xMeans {
			l.intercept -= m * w[j]
		}
	}
	l.dualGaps = make([]float64, len(res.Gaps))
	for i, g := range res.Gaps {
		l.dualGaps[i] = g.Gap
	}
	l.nIter = res.NIter()

	l.State.SetFitted()
	l.State.SetDimensions(p, n)

	l.logger.Info("training completed",
		log.OperationKey, log.OperationFit,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
		log.IterationKey, l.nIter,
		log.GapKey, float64(res.FinalGap()),
	)
	return nil
}

// Predict returns predictions X·w + intercept as an (n_samples × 1) matrix.
//
// Errors:
//   - NotFittedError: if the model hasn't been trained yet
//   - DimensionError: if X has a different feature count than training
func (l *Lasso) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	defer celerErrors.Recover(&err, "Lasso.Predict")
	if err := l.State.RequireFitted("Lasso", "Predict"); err != nil {
		return nil, err
	}
	return predictLinear("Lasso.Predict", X, l.coef, l.intercept)
}

// Score returns the coefficient of determination R² on the given data.
func (l *Lasso) Score(X, y mat.Matrix) (float64, error) {
	if err := l.State.RequireFitted("Lasso", "Score"); err != nil {
		return 0, err
	}
	pred, err := l.Predict(X)
	if err != nil {
		return 0, err
	}
	r, _ := y.Dims()
	yTrue := mat.NewVecDense(r, nil)
	yPred := mat.NewVecDense(r, nil)
	for i := 0; i < r; i++ {
		yTrue.SetVec(i, y.At(i, 0))
		yPred.SetVec(i, pred.At(i, 0))
	}
	return metrics.R2Score(yTrue, yPred)
}

// Coef returns a copy of the learned coefficients.
func (l *Lasso) Coef() []float64 {
	if l.coef == nil {
		return nil
	}
	coef := make([]float64, len(l.coef))
	copy(coef, l.coef)
	return coef
}

// Intercept returns the learned intercept.
func (l *Lasso) Intercept() float64 { return l.intercept }

// DualGaps returns the duality gap of each outer iteration of the last Fit.
func (l *Lasso) DualGaps() []float64 { return l.dualGaps }

// NIter returns the number of outer iterations run by the last Fit.
func (l *Lasso) NIter() int { return l.nIter }

// IsFitted returns whether the model has been fitted.
func (l *Lasso) IsFitted() bool { return l.State.IsFitted() }
