package linear

import (
	"math"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/celer/core/model"
	"github.com/ezoic/celer/metrics"
	celerErrors "github.com/ezoic/celer/pkg/errors"
	"github.com/ezoic/celer/pkg/log"
	"github.com/ezoic/celer/solver"
)

// SparseLogisticRegression is an L1-regularized logistic regression
// model over {-1, +1} labels:
//
//	min_w Σᵢ log(1 + exp(-yᵢ·xᵢᵀw)) + alpha·||w||₁
//
// The L1 penalty drives most coefficients to exactly zero, so the
// fitted model is a sparse linear classifier. No intercept is fitted.
type SparseLogisticRegression struct {
	State *model.StateManager

	cfg config

	coef     []float64
	dualGaps []float64
	theta    []float64
	nIter    int

	logger log.Logger
}

// NewSparseLogisticRegression creates a sparse logistic regression
// model. See NewLasso for the option defaults.
func NewSparseLogisticRegression(opts ...Option) *SparseLogisticRegression {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	clf := &SparseLogisticRegression{
		State: model.NewStateManager(),
		cfg:   cfg,
	}
	clf.logger = log.GetLoggerWithName("linear").With(
		log.ModelNameKey, "SparseLogisticRegression",
	)
	return clf
}

// Fit trains the model on X (n_samples × n_features) and labels
// y (n_samples × 1) taking values -1 or +1.
//
// Errors:
//   - ErrEmptyData: if X or y are empty
//   - DimensionError: if the sample counts of X and y disagree
//   - ValueError: if y contains a value other than -1 or +1
func (clf *SparseLogisticRegression) Fit(X, y mat.Matrix) (err error) {
	defer celerErrors.Recover(&err, "SparseLogisticRegression.Fit")

	startTime := time.Now()
	data, yv, err := trainArrays("SparseLogisticRegression.Fit", X, y)
	if err != nil {
		return err
	}
	n, p := len(yv), len(data)/len(yv)

	for _, v := range yv {
		if v != -1 && v != 1 {
			return celerErrors.NewValueError("SparseLogisticRegression.Fit",
				"y must contain only -1 or +1 values")
		}
	}

	clf.logger.Info("training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, n,
		log.FeaturesKey, p,
		log.AlphaKey, clf.cfg.alpha,
	)

	cs, err := solver.NewDenseColumns(data, n, p)
	if err != nil {
		return err
	}

	w := make([]float64, p)
	if clf.cfg.warmStart && len(clf.coef) == p {
		copy(w, clf.coef)
	}
	fit := logisticMargin(cs, n, w)
	theta := initialDualPoint(cs, solver.Logistic, clf.cfg.alpha, yv, fit)

	res, err := solver.Solve(solver.Problem[float64]{
		X:     cs,
		Y:     yv,
		Alpha: clf.cfg.alpha,
		Loss:  solver.Logistic,
	}, w, fit, theta, solver.ColumnNorms[float64](cs), clf.cfg.solverOptions())
	if err != nil {
		return err
	}

	clf.coef = w
	clf.theta = theta
	clf.dualGaps = make([]float64, len(res.Gaps))
	for i, g := range res.Gaps {
		clf.dualGaps[i] = g.Gap
	}
	clf.nIter = res.NIter()

	clf.State.SetFitted()
	clf.State.SetDimensions(p, n)

	clf.logger.Info("training completed",
		log.OperationKey, log.OperationFit,
		log.DurationMsKey, time.Since(startTime).Milliseconds(),
		log.IterationKey, clf.nIter,
		log.GapKey, float64(res.FinalGap()),
	)
	return nil
}

// DecisionFunction returns the raw margins X·w as an (n_samples × 1) matrix.
func (clf *SparseLogisticRegression) DecisionFunction(X mat.Matrix) (_ mat.Matrix, err error) {
	defer celerErrors.Recover(&err, "SparseLogisticRegression.DecisionFunction")
	if err := clf.State.RequireFitted("SparseLogisticRegression", "DecisionFunction"); err != nil {
		return nil, err
	}
	return predictLinear("SparseLogisticRegression.DecisionFunction", X, clf.coef, 0)
}

// Predict returns the predicted labels, -1 or +1, as an (n_samples × 1)
// matrix. A zero margin predicts +1.
func (clf *SparseLogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	margins, err := clf.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	r, _ := margins.Dims()
	pred := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		if margins.At(i, 0) < 0 {
			pred.Set(i, 0, -1)
		} else {
			pred.Set(i, 0, 1)
		}
	}
	return pred, nil
}

// PredictProba returns P(y = +1 | x) = sigmoid(x·w) as an
// (n_samples × 1) matrix.
func (clf *SparseLogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	margins, err := clf.DecisionFunction(X)
	if err != nil {
		return nil, err
	}
	r, _ := margins.Dims()
	proba := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		proba.Set(i, 0, 1/(1+math.Exp(-margins.At(i, 0))))
	}
	return proba, nil
}

// Score returns the classification accuracy on the given data.
func (clf *SparseLogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	pred, err := clf.Predict(X)
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
	return metrics.Accuracy(yTrue, yPred)
}

// Coef returns a copy of the learned coefficients.
func (clf *SparseLogisticRegression) Coef() []float64 {
	if clf.coef == nil {
		return nil
	}
	coef := make([]float64, len(clf.coef))
	copy(coef, clf.coef)
	return coef
}

// DualGaps returns the duality gap of each outer iteration of the last Fit.
func (clf *SparseLogisticRegression) DualGaps() []float64 { return clf.dualGaps }

// NIter returns the number of outer iterations run by the last Fit.
func (clf *SparseLogisticRegression) NIter() int { return clf.nIter }

// IsFitted returns whether the model has been fitted.
func (clf *SparseLogisticRegression) IsFitted() bool { return clf.State.IsFitted() }
