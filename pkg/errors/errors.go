// Package errors provides the error types used across the celer library.
//
// The package defines typed errors for the common failure modes of
// numerical estimators (dimension mismatches, unfitted models, invalid
// values) together with sentinel errors for comparison with errors.Is.
// All constructors attach a stack trace via cockroachdb/errors, so a
// "%+v" format of any error produced here includes the capture site.
//
// Example usage:
//
//	func (m *Model) Fit(X, y mat.Matrix) (err error) {
//		defer errors.Recover(&err, "Model.Fit")
//		if r != ry {
//			return errors.NewDimensionError("Model.Fit", r, ry, 0)
//		}
//		...
//	}
package errors

import (
	"fmt"

	crdberrors "github.com/cockroachdb/errors"
)

// Sentinel errors for comparison with errors.Is.
var (
	// ErrEmptyData indicates that an input matrix or vector has no entries.
	ErrEmptyData = crdberrors.New("empty data")

	// ErrDimensionMismatch indicates incompatible input dimensions.
	ErrDimensionMismatch = crdberrors.New("dimension mismatch")

	// ErrNotFitted indicates that a model is used before training.
	ErrNotFitted = crdberrors.New("model is not fitted")

	// ErrSingularMatrix indicates a matrix that cannot be inverted.
	ErrSingularMatrix = crdberrors.New("singular matrix")

	// ErrNotPositiveDefinite indicates a symmetric solve on a matrix
	// that is not positive definite.
	ErrNotPositiveDefinite = crdberrors.New("matrix is not positive definite")

	// ErrNotImplemented indicates a requested feature that does not exist.
	ErrNotImplemented = crdberrors.New("not implemented")
)

// DimensionError reports an input whose size disagrees with what the
// operation expected along a given axis.
type DimensionError struct {
	Op       string // operation that failed, e.g. "Lasso.Fit"
	Expected int    // expected dimension
	Got      int    // actual dimension
	Axis     int    // axis on which the mismatch occurred (0 = rows)
}

// NewDimensionError creates a DimensionError with a captured stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	return crdberrors.WithStack(&DimensionError{
		Op:       op,
		Expected: expected,
		Got:      got,
		Axis:     axis,
	})
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("celer: %s: dimension mismatch on axis %d: expected %d, got %d",
		e.Op, e.Axis, e.Expected, e.Got)
}

// Unwrap makes errors.Is(err, ErrDimensionMismatch) hold for any DimensionError.
func (e *DimensionError) Unwrap() error { return ErrDimensionMismatch }

// NotFittedError reports usage of an untrained model.
type NotFittedError struct {
	ModelName string // model type, e.g. "Lasso"
	Method    string // method that was called, e.g. "Predict"
}

// NewNotFittedError creates a NotFittedError with a captured stack trace.
func NewNotFittedError(modelName, method string) error {
	return crdberrors.WithStack(&NotFittedError{
		ModelName: modelName,
		Method:    method,
	})
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("celer: %s.%s: model is not fitted; call Fit first", e.ModelName, e.Method)
}

// Unwrap makes errors.Is(err, ErrNotFitted) hold for any NotFittedError.
func (e *NotFittedError) Unwrap() error { return ErrNotFitted }

// ValueError reports an input whose value (not shape) is invalid.
type ValueError struct {
	Op      string // operation that rejected the value
	Message string // what was wrong with it
}

// NewValueError creates a ValueError with a captured stack trace.
func NewValueError(op, message string) error {
	return crdberrors.WithStack(&ValueError{Op: op, Message: message})
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("celer: %s: %s", e.Op, e.Message)
}

// ModelError wraps a lower-level error with model operation context.
type ModelError struct {
	Op      string // operation that failed
	Message string // operation-level description
	Err     error  // underlying cause, may be a sentinel
}

// NewModelError creates a ModelError wrapping cause.
func NewModelError(op, message string, cause error) error {
	return crdberrors.WithStack(&ModelError{Op: op, Message: message, Err: cause})
}

func (e *ModelError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("celer: %s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("celer: %s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ModelError) Unwrap() error { return e.Err }

// Recover converts a panic in the surrounding function into an error,
// preserving an already-set *err. Use as:
//
//	defer errors.Recover(&err, "Lasso.Fit")
//
// Panics carrying an error are wrapped with the operation name; other
// panic values are converted with their formatted value. The recovered
// error records the panic's stack.
func Recover(err *error, op string) {
	r := recover()
	if r == nil {
		return
	}
	switch v := r.(type) {
	case error:
		*err = crdberrors.Wrapf(v, "celer: %s: recovered panic", op)
	default:
		*err = crdberrors.Newf("celer: %s: recovered panic: %v", op, v)
	}
}
