package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	celerErrors "github.com/ezoic/celer/pkg/errors"
	"github.com/ezoic/celer/solver"
)

// trainArrays validates (X, y) and converts them to the column-major
// data and target slice the solver works on.
func trainArrays(op string, X, y mat.Matrix) (data, yv []float64, err error) {
	r, c := X.Dims()
	ry, cy := y.Dims()

	if r == 0 || c == 0 {
		return nil, nil, celerErrors.NewModelError(op, "empty data", celerErrors.ErrEmptyData)
	}
	if ry != r {
		return nil, nil, celerErrors.NewDimensionError(op, r, ry, 0)
	}
	if cy != 1 {
		return nil, nil, celerErrors.NewValueError(op, "y must be a column vector")
	}

	data = make([]float64, r*c)
	for j := 0; j < c; j++ {
		for i := 0; i < r; i++ {
			data[j*r+i] = X.At(i, j)
		}
	}
	yv = make([]float64, r)
	for i := 0; i < r; i++ {
		yv[i] = y.At(i, 0)
	}
	return data, yv, nil
}

// centerInPlace removes the column means from the column-major data and
// the mean from y, returning both so the intercept can be recovered
// after the solve.
func centerInPlace(data, yv []float64, n, p int) (xMeans []float64, yMean float64) {
	xMeans = make([]float64, p)
	for j := 0; j < p; j++ {
		col := data[j*n : (j+1)*n]
		var m float64
		for _, v := range col {
			m += v
		}
		m /= float64(n)
		xMeans[j] = m
		for i := range col {
			col[i] -= m
		}
	}
	for _, v := range yv {
		yMean += v
	}
	yMean /= float64(n)
	for i := range yv {
		yv[i] -= yMean
	}
	return xMeans, yMean
}

// lassoResidual returns y - Xw for the given coefficients.
func lassoResidual(cs solver.ColumnSet[float64], yv, w []float64) []float64 {
	fit := make([]float64, len(yv))
	copy(fit, yv)
	for j, wj := range w {
		if wj != 0 {
			cs.AddScaled(j, -wj, fit)
		}
	}
	return fit
}

// logisticMargin returns Xw for the given coefficients.
func logisticMargin(cs solver.ColumnSet[float64], n int, w []float64) []float64 {
	fit := make([]float64, n)
	for j, wj := range w {
		if wj != 0 {
			cs.AddScaled(j, wj, fit)
		}
	}
	return fit
}

// initialDualPoint builds the starting dual point from the initial fit:
// the unscaled candidate divided by its largest column correlation, so
// it starts on the boundary of the feasible set.
func initialDualPoint(cs solver.ColumnSet[float64], loss solver.Loss, alpha float64, yv, fit []float64) []float64 {
	n := len(yv)
	theta := make([]float64, n)
	switch loss {
	case solver.Lasso:
		copy(theta, fit)
	case solver.Logistic:
		for i, yi := range yv {
			theta[i] = yi / (1 + math.Exp(yi*fit[i])) / alpha
		}
	}

	var thetaSum float64
	if cs.Centered() {
		for _, v := range theta {
			thetaSum += v
		}
	}
	var scal float64
	for j := 0; j < cs.Features(); j++ {
		v := cs.Dot(j, theta, thetaSum)
		if v < 0 {
			v = -v
		}
		if v > scal {
			scal = v
		}
	}
	if scal > 0 {
		for i := range theta {
			theta[i] /= scal
		}
	}
	return theta
}

// predictLinear computes X·w + intercept as an (r × 1) matrix.
func predictLinear(op string, X mat.Matrix, coef []float64, intercept float64) (mat.Matrix, error) {
	r, c := X.Dims()
	if c != len(coef) {
		return nil, celerErrors.NewDimensionError(op, len(coef), c, 1)
	}
	pred := mat.NewDense(r, 1, nil)
	for i := 0; i < r; i++ {
		v := intercept
		for j := 0; j < c; j++ {
			v += X.At(i, j) * coef[j]
		}
		pred.Set(i, 0, v)
	}
	return pred, nil
}
