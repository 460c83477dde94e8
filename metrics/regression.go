// Package metrics provides the evaluation metrics used by the celer
// estimators and their tests.
//
// Regression metrics (MSE, RMSE, R²) operate on gonum vectors; the
// classification side provides Accuracy for {-1, +1} labels. All
// functions validate shapes and return typed errors from pkg/errors.
//
// Example usage:
//
//	r2, err := metrics.R2Score(yTrue, yPred)
//	if err != nil {
//	    log.Fatal(err)
//	}
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"

	celerErrors "github.com/ezoic/celer/pkg/errors"
)

// MSE calculates the Mean Squared Error between true and predicted values.
//
// Errors:
//   - ValueError: if the input vectors are empty
//   - DimensionError: if yTrue and yPred have different lengths
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, celerErrors.NewValueError("MSE", "empty vector")
	}
	if yPred.Len() != n {
		return 0, celerErrors.NewDimensionError("MSE", n, yPred.Len(), 0)
	}

	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// RMSE calculates the Root Mean Squared Error, the square root of MSE.
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// R2Score calculates the coefficient of determination R².
//
// R² = 1 - RSS/TSS, where RSS is the residual sum of squares and TSS
// the total sum of squares around the mean of yTrue. A constant target
// (TSS = 0) is rejected with a ValueError.
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, celerErrors.NewValueError("R2Score", "empty vector")
	}
	if yPred.Len() != n {
		return 0, celerErrors.NewDimensionError("R2Score", n, yPred.Len(), 0)
	}

	var yMean float64
	for i := 0; i < n; i++ {
		yMean += yTrue.AtVec(i)
	}
	yMean /= float64(n)

	var tss, rss float64
	for i := 0; i < n; i++ {
		dMean := yTrue.AtVec(i) - yMean
		dPred := yTrue.AtVec(i) - yPred.AtVec(i)
		tss += dMean * dMean
		rss += dPred * dPred
	}

	if tss == 0 {
		return 0, celerErrors.NewValueError("R2Score", "total sum of squares is zero")
	}
	return 1 - rss/tss, nil
}
