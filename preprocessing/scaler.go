// Package preprocessing provides feature scaling for the linear
// estimators. An L1 penalty weights every coefficient equally, so a
// single alpha is only meaningful when the features share a scale;
// standardizing the design matrix before fitting is the usual fix.
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/celer/core/model"
	celerErrors "github.com/ezoic/celer/pkg/errors"
)

// StandardScaler standardizes features by removing the per-feature mean
// and dividing by the per-feature standard deviation. Either step can
// be switched off independently.
type StandardScaler struct {
	State *model.StateManager

	// Mean holds the per-feature mean computed by Fit. Zero when
	// centering is off.
	Mean []float64

	// Scale holds the per-feature standard deviation computed by Fit.
	// One when scaling is off, and one for near-constant features.
	Scale []float64

	withMean bool
	withStd  bool
}

// NewStandardScaler creates a StandardScaler. withMean controls the
// centering step, withStd the division by the standard deviation.
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		State:    model.NewStateManager(),
		withMean: withMean,
		withStd:  withStd,
	}
}

// Fit computes the per-feature mean and standard deviation of X
// (n_samples × n_features).
//
// Errors:
//   - ErrEmptyData: if X has no entries
func (s *StandardScaler) Fit(X mat.Matrix) (err error) {
	defer celerErrors.Recover(&err, "StandardScaler.Fit")

	r, c := X.Dims()
	if r == 0 || c == 0 {
		return celerErrors.NewModelError("StandardScaler.Fit", "empty data", celerErrors.ErrEmptyData)
	}

	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		if s.withMean {
			var sum float64
			for i := 0; i < r; i++ {
				sum += X.At(i, j)
			}
			s.Mean[j] = sum / float64(r)
		}

		s.Scale[j] = 1
		if s.withStd {
			var sq float64
			for i := 0; i < r; i++ {
				d := X.At(i, j) - s.Mean[j]
				sq += d * d
			}
			sd := math.Sqrt(sq / float64(r))
			// constant features are left untouched instead of
			// dividing by zero
			if sd > 1e-8 {
				s.Scale[j] = sd
			}
		}
	}

	s.State.SetFitted()
	s.State.SetDimensions(c, r)
	return nil
}

// Transform returns (X - mean) / scale using the fitted statistics.
//
// Errors:
//   - NotFittedError: if Fit has not been called
//   - DimensionError: if X has a different feature count than training
func (s *StandardScaler) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer celerErrors.Recover(&err, "StandardScaler.Transform")
	if err := s.State.RequireFitted("StandardScaler", "Transform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != len(s.Scale) {
		return nil, celerErrors.NewDimensionError("StandardScaler.Transform", len(s.Scale), c, 1)
	}

	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}
	return out, nil
}

// FitTransform fits the scaler on X and returns the transformed X.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized data back to the original scale:
// X·scale + mean. Coefficients fitted on standardized features divide
// by Scale instead to recover their original-scale values.
//
// Errors:
//   - NotFittedError: if Fit has not been called
//   - DimensionError: if X has a different feature count than training
func (s *StandardScaler) InverseTransform(X mat.Matrix) (_ mat.Matrix, err error) {
	defer celerErrors.Recover(&err, "StandardScaler.InverseTransform")
	if err := s.State.RequireFitted("StandardScaler", "InverseTransform"); err != nil {
		return nil, err
	}

	r, c := X.Dims()
	if c != len(s.Scale) {
		return nil, celerErrors.NewDimensionError("StandardScaler.InverseTransform", len(s.Scale), c, 1)
	}

	out := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out.Set(i, j, X.At(i, j)*s.Scale[j]+s.Mean[j])
		}
	}
	return out, nil
}

// IsFitted returns whether the scaler has been fitted.
func (s *StandardScaler) IsFitted() bool { return s.State.IsFitted() }

// String returns a short description of the scaler.
func (s *StandardScaler) String() string {
	if !s.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.withMean, s.withStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.withMean, s.withStd, len(s.Scale))
}
