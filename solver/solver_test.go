package solver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/celer/internal/num"
	celerErrors "github.com/ezoic/celer/pkg/errors"
)

// runSolve prepares the buffers Solve expects (zero coefficients, the
// matching fit vector and a feasible dual point) and runs the solver.
func runSolve[T num.Float](t *testing.T, cs ColumnSet[T], y []T, alpha T, loss Loss, positive bool, opts Options) ([]T, *Result[T]) {
	t.Helper()
	n, p := cs.Samples(), cs.Features()

	w := make([]T, p)
	fit := make([]T, n)
	if loss == Lasso {
		num.Copy(fit, y)
	}
	theta := make([]T, n)
	buildDualCandidate(loss, alpha, y, fit, theta)
	rescaleDualPoint(cs, theta, allFeatures(p), positive)

	res, err := Solve(Problem[T]{X: cs, Y: y, Alpha: alpha, Loss: loss, Positive: positive}, w, fit, theta, ColumnNorms(cs), opts)
	require.NoError(t, err)
	return w, res
}

// orthogonalFixture is a 4x3 design with mutually orthogonal columns of
// squared norm 4, so the lasso solution is available in closed form:
// w_j = softThreshold(X_j'y/4, alpha).
func orthogonalFixture(t *testing.T) *DenseColumns[float64] {
	t.Helper()
	return denseFromRows(t, [][]float64{
		{1, 1, 1},
		{1, -1, 1},
		{1, 1, -1},
		{1, -1, -1},
	})
}

// correlatedFixture is a small dense design whose columns overlap, so
// coordinate descent needs several passes and the working set has to grow.
func correlatedFixture(t *testing.T) *DenseColumns[float64] {
	t.Helper()
	return denseFromRows(t, [][]float64{
		{1, 0, 0.5},
		{0, 3, 1},
		{2, 0, -0.5},
		{0, -1, 0},
	})
}

func tightOptions() Options {
	opts := DefaultOptions()
	opts.Tol = 1e-12
	return opts
}

func TestSolveLassoOrthogonal(t *testing.T) {
	cs := orthogonalFixture(t)
	// y = 2*X_0 + 0.5*X_1, so X'y = (8, 2, 0)
	y := []float64{2.5, 1.5, 2.5, 1.5}

	w, res := runSolve(t, cs, y, 0.25, Lasso, false, tightOptions())

	assert.True(t, res.Converged)
	assert.InDelta(t, 1.75, w[0], 1e-6)
	assert.InDelta(t, 0.25, w[1], 1e-6)
	assert.Zero(t, w[2])
}

func TestSolveLassoAboveAlphaMax(t *testing.T) {
	cs := orthogonalFixture(t)
	y := []float64{2.5, 1.5, 2.5, 1.5}

	// alphaMax = max|X'y|/n = 2; above it the zero vector is optimal and
	// the initial dual point already certifies a zero gap.
	w, res := runSolve(t, cs, y, 2.5, Lasso, false, tightOptions())

	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.NIter())
	for j, wj := range w {
		assert.Zerof(t, wj, "w[%d]", j)
	}
}

func TestSolveLassoPositive(t *testing.T) {
	cs := orthogonalFixture(t)
	// y = 2*X_0 - 0.5*X_1: unconstrained w_1 would be negative
	y := []float64{1.5, 2.5, 1.5, 2.5}

	w, res := runSolve(t, cs, y, 0.25, Lasso, true, tightOptions())

	assert.True(t, res.Converged)
	assert.InDelta(t, 1.75, w[0], 1e-6)
	assert.Zero(t, w[1])
	assert.Zero(t, w[2])
	for j, wj := range w {
		assert.GreaterOrEqualf(t, wj, 0.0, "w[%d]", j)
	}
}

func TestSolveWarmStartAtOptimum(t *testing.T) {
	cs := orthogonalFixture(t)
	y := []float64{2.5, 1.5, 2.5, 1.5}
	alpha := 0.25

	w := []float64{1.75, 0.25, 0}
	fit := make([]float64, 4)
	num.Copy(fit, y)
	for j, wj := range w {
		cs.AddScaled(j, -wj, fit)
	}
	theta := make([]float64, 4)
	buildDualCandidate(Lasso, alpha, y, fit, theta)
	rescaleDualPoint(cs, theta, allFeatures(3), false)

	res, err := Solve(Problem[float64]{X: cs, Y: y, Alpha: alpha, Loss: Lasso}, w, fit, theta, ColumnNorms(cs), tightOptions())
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.NIter())
	assert.InDelta(t, 1.75, w[0], 1e-9)
	assert.InDelta(t, 0.25, w[1], 1e-9)
}

func TestSolveCSCMatchesDense(t *testing.T) {
	// Same matrix as correlatedFixture, in compressed sparse column form.
	cs, err := NewCSCColumns(
		[]float64{1, 2, 3, -1, 0.5, 1, -0.5},
		[]int{0, 2, 1, 3, 0, 1, 2},
		[]int{0, 2, 4, 7},
		nil, 4,
	)
	require.NoError(t, err)
	y := []float64{1, 2, 0.5, -0.3}

	wSparse, resSparse := runSolve[float64](t, cs, y, 0.3, Lasso, false, tightOptions())
	wDense, resDense := runSolve[float64](t, correlatedFixture(t), y, 0.3, Lasso, false, tightOptions())

	require.True(t, resSparse.Converged)
	require.True(t, resDense.Converged)
	for j := range wDense {
		assert.InDeltaf(t, wDense[j], wSparse[j], 1e-8, "w[%d]", j)
	}
}

func TestSolveImplicitCenteringMatchesExplicit(t *testing.T) {
	data := []float64{1, 2, 3, -1, 0.5, 1, -0.5}
	indices := []int{0, 2, 1, 3, 0, 1, 2}
	indptr := []int{0, 2, 4, 7}
	means := []float64{0.75, 0.5, 0.25}
	y := []float64{1, 2, 0.5, -0.3}

	csc, err := NewCSCColumns(data, indices, indptr, means, 4)
	require.NoError(t, err)

	// densify and subtract the column means up front
	centered := make([]float64, 4*3)
	for j := 0; j < 3; j++ {
		for i := 0; i < 4; i++ {
			centered[j*4+i] = -means[j]
		}
		for k := indptr[j]; k < indptr[j+1]; k++ {
			centered[j*4+indices[k]] += data[k]
		}
	}
	dense, err := NewDenseColumns(centered, 4, 3)
	require.NoError(t, err)

	wImplicit, resImplicit := runSolve[float64](t, csc, y, 0.2, Lasso, false, tightOptions())
	wExplicit, resExplicit := runSolve[float64](t, dense, y, 0.2, Lasso, false, tightOptions())

	require.True(t, resImplicit.Converged)
	require.True(t, resExplicit.Converged)
	for j := range wExplicit {
		assert.InDeltaf(t, wExplicit[j], wImplicit[j], 1e-8, "w[%d]", j)
	}
}

func TestSolveFloat32(t *testing.T) {
	data := make([]float32, 4*3)
	for i, v := range []float64{1, 1, 1, 1, 1, -1, 1, -1, 1, 1, -1, -1} {
		data[i] = float32(v)
	}
	cs, err := NewDenseColumns(data, 4, 3)
	require.NoError(t, err)
	y := []float32{2.5, 1.5, 2.5, 1.5}

	opts := DefaultOptions()
	opts.Tol = 1e-4

	w, res := runSolve[float32](t, cs, y, 0.25, Lasso, false, opts)

	assert.True(t, res.Converged)
	assert.InDelta(t, 1.75, float64(w[0]), 5e-3)
	assert.InDelta(t, 0.25, float64(w[1]), 5e-3)
	assert.InDelta(t, 0, float64(w[2]), 5e-3)
}

func logisticFixture(t *testing.T) (*DenseColumns[float64], []float64) {
	t.Helper()
	cs := denseFromRows(t, [][]float64{
		{1.5, 0.2},
		{1.0, -0.3},
		{2.0, 0.1},
		{-1.0, 0.4},
		{-1.5, -0.2},
		{-0.8, 0.3},
	})
	y := []float64{1, 1, 1, -1, -1, -1}
	return cs, y
}

func TestSolveLogistic(t *testing.T) {
	cs, y := logisticFixture(t)

	opts := DefaultOptions()
	opts.Tol = 1e-8
	w, res := runSolve(t, cs, y, 0.5, Logistic, false, opts)

	assert.True(t, res.Converged)
	assert.Less(t, res.FinalGap(), 1e-8)
	assert.Greater(t, w[0], 0.0)

	// the first feature separates the classes; the fit must too
	margin := make([]float64, 6)
	for j, wj := range w {
		cs.AddScaled(j, wj, margin)
	}
	for i, yi := range y {
		assert.Greaterf(t, yi*margin[i], 0.0, "sample %d misclassified", i)
	}
}

func TestSolveLogisticBetterLipschitz(t *testing.T) {
	cs, y := logisticFixture(t)

	opts := DefaultOptions()
	opts.Tol = 1e-8
	wFixed, resFixed := runSolve(t, cs, y, 0.5, Logistic, false, opts)

	opts.BetterLC = true
	wCurv, resCurv := runSolve(t, cs, y, 0.5, Logistic, false, opts)

	require.True(t, resFixed.Converged)
	require.True(t, resCurv.Converged)
	for j := range wFixed {
		assert.InDeltaf(t, wFixed[j], wCurv[j], 1e-4, "w[%d]", j)
	}
}

func TestSolvePruningEquivalence(t *testing.T) {
	cs := correlatedFixture(t)
	y := []float64{1, 2, 0.5, -0.3}

	opts := tightOptions()
	opts.P0 = 1
	wPrune, resPrune := runSolve[float64](t, cs, y, 0.1, Lasso, false, opts)

	opts.Prune = false
	wGrow, resGrow := runSolve[float64](t, cs, y, 0.1, Lasso, false, opts)

	require.True(t, resPrune.Converged)
	require.True(t, resGrow.Converged)
	for j := range wPrune {
		assert.InDeltaf(t, wPrune[j], wGrow[j], 1e-8, "w[%d]", j)
	}
}

func TestSolveGapTrace(t *testing.T) {
	cs := correlatedFixture(t)
	y := []float64{1, 2, 0.5, -0.3}

	opts := tightOptions()
	opts.P0 = 1 // start from a single feature so the set has to grow
	_, res := runSolve[float64](t, cs, y, 0.05, Lasso, false, opts)

	require.True(t, res.Converged)
	require.NotEmpty(t, res.Gaps)
	for i, g := range res.Gaps {
		assert.GreaterOrEqualf(t, g.Gap, -1e-12, "gap %d", i)
		assert.GreaterOrEqualf(t, g.Primal, g.Gap, "primal %d", i)
	}
	assert.LessOrEqual(t, res.FinalGap(), res.Gaps[0].Gap)
	assert.Less(t, res.FinalGap(), opts.Tol)
}

func TestSolveBudgetExhaustion(t *testing.T) {
	cs := correlatedFixture(t)
	y := []float64{1, 2, 0.5, -0.3}

	opts := tightOptions()
	opts.MaxIter = 1
	opts.MaxEpochs = 2 // below GapFreq: the inner loop never checks its gap
	opts.P0 = 1

	w, res := runSolve[float64](t, cs, y, 0.05, Lasso, false, opts)

	assert.False(t, res.Converged)
	assert.Equal(t, 1, res.NIter())
	assert.Greater(t, res.FinalGap(), 0.0)
	// the single truncated inner solve still made progress
	nnz := 0
	for _, wj := range w {
		if wj != 0 {
			nnz++
		}
	}
	assert.Greater(t, nnz, 0)
}

func TestSolveArgumentErrors(t *testing.T) {
	cs := orthogonalFixture(t)
	y := []float64{2.5, 1.5, 2.5, 1.5}
	w := make([]float64, 3)
	fit := make([]float64, 4)
	theta := make([]float64, 4)
	norms := ColumnNorms[float64](cs)
	opts := DefaultOptions()

	t.Run("nil design", func(t *testing.T) {
		_, err := Solve(Problem[float64]{Y: y, Alpha: 0.1, Loss: Lasso}, w, fit, theta, norms, opts)
		require.Error(t, err)
		assert.True(t, errors.Is(err, celerErrors.ErrEmptyData))
	})

	t.Run("unsupported loss", func(t *testing.T) {
		_, err := Solve(Problem[float64]{X: cs, Y: y, Alpha: 0.1, Loss: Loss(7)}, w, fit, theta, norms, opts)
		require.Error(t, err)
		var ve *celerErrors.ValueError
		assert.True(t, errors.As(err, &ve))
	})

	t.Run("positive logistic", func(t *testing.T) {
		_, err := Solve(Problem[float64]{X: cs, Y: y, Alpha: 0.1, Loss: Logistic, Positive: true}, w, fit, theta, norms, opts)
		require.Error(t, err)
		var ve *celerErrors.ValueError
		assert.True(t, errors.As(err, &ve))
	})

	t.Run("non-positive alpha", func(t *testing.T) {
		_, err := Solve(Problem[float64]{X: cs, Y: y, Alpha: 0, Loss: Lasso}, w, fit, theta, norms, opts)
		require.Error(t, err)
		var ve *celerErrors.ValueError
		assert.True(t, errors.As(err, &ve))
	})

	t.Run("sample mismatch", func(t *testing.T) {
		_, err := Solve(Problem[float64]{X: cs, Y: y[:3], Alpha: 0.1, Loss: Lasso}, w, fit, theta, norms, opts)
		require.Error(t, err)
		var de *celerErrors.DimensionError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, 0, de.Axis)
	})

	t.Run("feature mismatch", func(t *testing.T) {
		_, err := Solve(Problem[float64]{X: cs, Y: y, Alpha: 0.1, Loss: Lasso}, w[:2], fit, theta, norms, opts)
		require.Error(t, err)
		var de *celerErrors.DimensionError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, 1, de.Axis)
	})
}
