package metrics

import (
	"gonum.org/v1/gonum/mat"

	celerErrors "github.com/ezoic/celer/pkg/errors"
)

// Accuracy calculates the fraction of exactly matching labels.
//
// Errors:
//   - ValueError: if the input vectors are empty
//   - DimensionError: if yTrue and yPred have different lengths
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return 0, celerErrors.NewValueError("Accuracy", "empty vector")
	}
	if yPred.Len() != n {
		return 0, celerErrors.NewDimensionError("Accuracy", n, yPred.Len(), 0)
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}
