package metrics

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	celerErrors "github.com/ezoic/celer/pkg/errors"
)

func TestMSE(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})
	yPred := mat.NewVecDense(4, []float64{1, 2, 3, 2})

	mse, err := MSE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MSE returned error: %v", err)
	}
	if math.Abs(mse-1.0) > 1e-12 {
		t.Errorf("MSE = %f, want 1.0", mse)
	}

	rmse, err := RMSE(yTrue, yPred)
	if err != nil {
		t.Fatalf("RMSE returned error: %v", err)
	}
	if math.Abs(rmse-1.0) > 1e-12 {
		t.Errorf("RMSE = %f, want 1.0", rmse)
	}
}

func TestMSEDimensionMismatch(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1, 2, 3})
	yPred := mat.NewVecDense(2, []float64{1, 2})

	_, err := MSE(yTrue, yPred)
	if !errors.Is(err, celerErrors.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestR2Score(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 2, 3, 4})

	// perfect predictions
	r2, err := R2Score(yTrue, yTrue)
	if err != nil {
		t.Fatalf("R2Score returned error: %v", err)
	}
	if math.Abs(r2-1.0) > 1e-12 {
		t.Errorf("R2Score of perfect predictions = %f, want 1.0", r2)
	}

	// predicting the mean gives R² = 0
	yMean := mat.NewVecDense(4, []float64{2.5, 2.5, 2.5, 2.5})
	r2, err = R2Score(yTrue, yMean)
	if err != nil {
		t.Fatalf("R2Score returned error: %v", err)
	}
	if math.Abs(r2) > 1e-12 {
		t.Errorf("R2Score of mean predictions = %f, want 0.0", r2)
	}
}

func TestAccuracy(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, -1, 1, -1})
	yPred := mat.NewVecDense(4, []float64{1, -1, -1, -1})

	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		t.Fatalf("Accuracy returned error: %v", err)
	}
	if math.Abs(acc-0.75) > 1e-12 {
		t.Errorf("Accuracy = %f, want 0.75", acc)
	}
}
