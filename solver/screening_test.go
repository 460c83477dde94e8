package solver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeRadius(t *testing.T) {
	assert.InDelta(t, math.Sqrt(2*0.08/4)/0.5, safeRadius(Lasso, 0.08, 0.5, 4), 1e-15)
	assert.InDelta(t, math.Sqrt(0.08/2)/0.5, safeRadius(Logistic, 0.08, 0.5, 4), 1e-15)

	// a slightly negative gap on a converged problem clamps to zero
	assert.Zero(t, safeRadius(Lasso, -1e-14, 0.5, 4))
}

func TestScreenFeaturesAtOptimum(t *testing.T) {
	cs := orthogonalFixture(t)
	y := []float64{2.5, 1.5, 2.5, 1.5}

	// optimal dual point for alpha = 0.25: theta = (y - Xw*)/(alpha*n)
	w := []float64{1.75, 0.25, 0}
	theta := make([]float64, 4)
	copy(theta, y)
	for j, wj := range w {
		cs.AddScaled(j, -wj, theta)
	}

	norms := ColumnNorms[float64](cs)
	prios := make([]float64, 3)
	screened := make([]bool, 3)

	// at the optimum the gap is zero, so the radius collapses and only
	// the inactive feature (X_2'theta = 0) is screened
	n := screenFeatures[float64](cs, theta, norms, prios, screened, 1e-9, false)

	assert.Equal(t, 1, n)
	assert.Equal(t, []bool{false, false, true}, screened)
	assert.InDelta(t, 0, prios[0], 1e-12)
	assert.InDelta(t, 0, prios[1], 1e-12)
	assert.EqualValues(t, screenedPriority, prios[2])
}

func TestScreenFeaturesPermanent(t *testing.T) {
	cs := orthogonalFixture(t)
	norms := ColumnNorms[float64](cs)
	prios := make([]float64, 3)
	screened := []bool{false, false, true}

	// an already-screened feature keeps its sentinel priority and is not
	// counted again, whatever the radius
	theta := []float64{0.25, 0, 0.25, 0}
	n := screenFeatures[float64](cs, theta, norms, prios, screened, 1e6, false)

	assert.Zero(t, n)
	assert.True(t, screened[2])
	assert.EqualValues(t, screenedPriority, prios[2])
	assert.False(t, screened[0])
	assert.False(t, screened[1])
}

func TestScreenFeaturesZeroNormColumn(t *testing.T) {
	cs := denseFromRows(t, [][]float64{
		{1, 0},
		{1, 0},
	})
	norms := ColumnNorms[float64](cs)
	require.Zero(t, norms[1])

	prios := make([]float64, 2)
	screened := make([]bool, 2)
	theta := []float64{0.1, 0.1}

	// a zero column can never enter the working set but is not reported
	// as newly screened either
	n := screenFeatures[float64](cs, theta, norms, prios, screened, 0.01, false)

	assert.Zero(t, n)
	assert.False(t, screened[1])
	assert.EqualValues(t, screenedPriority, prios[1])
}

func TestScreenFeaturesPositive(t *testing.T) {
	cs := orthogonalFixture(t)
	norms := ColumnNorms[float64](cs)
	prios := make([]float64, 3)
	screened := make([]bool, 3)

	// under the non-negativity constraint the priority measures the
	// distance to +1 only: X_1'theta = -1 is far from the boundary
	theta := []float64{-0.25, 0.25, -0.25, 0.25}
	screenFeatures[float64](cs, theta, norms, prios, screened, 0.4, false)
	unconstrained := prios[1]

	prios2 := make([]float64, 3)
	screened2 := make([]bool, 3)
	screenFeatures[float64](cs, theta, norms, prios2, screened2, 0.4, true)

	assert.InDelta(t, 0.0, unconstrained, 1e-12)
	assert.False(t, screened[1])
	assert.True(t, screened2[1])
	assert.EqualValues(t, screenedPriority, prios2[1])
}

func TestSmallestK(t *testing.T) {
	prios := []float64{5, 1, 4, 0.5, 3, 2}

	got := smallestK(prios, 3)

	assert.Equal(t, []int{1, 3, 5}, got)
}

func TestSmallestKForced(t *testing.T) {
	// forced features carry a priority below anything computable and
	// always survive the selection
	prios := []float64{2, forcedPriority, 3, forcedPriority, 1}

	got := smallestK(prios, 2)

	assert.Equal(t, []int{1, 3}, got)
}
