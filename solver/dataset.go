package solver

import (
	"github.com/ezoic/celer/internal/num"
	celerErrors "github.com/ezoic/celer/pkg/errors"
)

// ColumnSet is the design-matrix capability the solver needs: iterate a
// feature's entries, with implicit centering when the storage requires
// it. A ColumnSet is immutable for the duration of a solve call.
//
// Methods taking a vSum argument use it only when the column is
// implicitly centered: it must then hold the sum of the entries of v.
// Uncentered implementations ignore it, so callers that know centering
// is off may pass zero.
type ColumnSet[T num.Float] interface {
	// Samples returns the number of rows.
	Samples() int

	// Features returns the number of columns.
	Features() int

	// Dot returns ⟨X_j - m_j·1, v⟩, where m_j is the column's implicit
	// center (zero when centering is off).
	Dot(j int, v []T, vSum T) T

	// AddScaled performs out += s·(X_j - m_j·1) in place.
	AddScaled(j int, s T, out []T)

	// Norm returns ‖X_j - m_j·1‖.
	Norm(j int) T

	// CurvatureDot returns Σᵢ (x_ij - m_j)²·dᵢ, the column's weighted
	// squared norm. Used by the logistic Lipschitz refresh.
	CurvatureDot(j int, d []T, dSum T) T

	// Centered reports whether implicit centering is active.
	Centered() bool

	// SumDelta returns the change in Σ out caused by AddScaled(j, s, out).
	// Only meaningful when Centered returns true.
	SumDelta(j int, s T) T
}

// ColumnNorms precomputes ‖X_j - m_j·1‖ for every column. The result is
// what Solve expects as its colNorms argument.
func ColumnNorms[T num.Float](cs ColumnSet[T]) []T {
	norms := make([]T, cs.Features())
	for j := range norms {
		norms[j] = cs.Norm(j)
	}
	return norms
}

// DenseColumns is a dense column-major design matrix.
type DenseColumns[T num.Float] struct {
	data []T // column j occupies data[j*n : (j+1)*n]
	n, p int
}

// NewDenseColumns wraps column-major data of shape (nSamples, nFeatures).
// The data is not copied; the caller must not mutate it during a solve.
func NewDenseColumns[T num.Float](data []T, nSamples, nFeatures int) (*DenseColumns[T], error) {
	if nSamples <= 0 || nFeatures <= 0 {
		return nil, celerErrors.NewModelError("NewDenseColumns", "empty design matrix", celerErrors.ErrEmptyData)
	}
	if len(data) != nSamples*nFeatures {
		return nil, celerErrors.NewDimensionError("NewDenseColumns", nSamples*nFeatures, len(data), 0)
	}
	return &DenseColumns[T]{data: data, n: nSamples, p: nFeatures}, nil
}

func (d *DenseColumns[T]) col(j int) []T {
	return d.data[j*d.n : (j+1)*d.n]
}

// Samples returns the number of rows.
func (d *DenseColumns[T]) Samples() int { return d.n }

// Features returns the number of columns.
func (d *DenseColumns[T]) Features() int { return d.p }

// Dot returns ⟨X_j, v⟩. vSum is ignored; dense columns are stored
// already centered when centering is wanted.
func (d *DenseColumns[T]) Dot(j int, v []T, _ T) T {
	return num.Dot(d.col(j), v)
}

// AddScaled performs out += s·X_j.
func (d *DenseColumns[T]) AddScaled(j int, s T, out []T) {
	num.Axpy(s, d.col(j), out)
}

// Norm returns ‖X_j‖.
func (d *DenseColumns[T]) Norm(j int) T {
	return num.Nrm2(d.col(j))
}

// CurvatureDot returns Σᵢ x_ij²·dᵢ.
func (d *DenseColumns[T]) CurvatureDot(j int, dWeights []T, _ T) T {
	col := d.col(j)
	var s T
	for i, x := range col {
		s += x * x * dWeights[i]
	}
	return s
}

// Centered reports false: dense input is materialized, never implicit.
func (d *DenseColumns[T]) Centered() bool { return false }

// SumDelta is unused for dense columns.
func (d *DenseColumns[T]) SumDelta(int, T) T { return 0 }

// CSCColumns is a design matrix in compressed sparse column form, with
// optional per-feature means for implicit centering: entry (i, j) of the
// effective matrix is x_ij - means[j], without densifying the storage.
type CSCColumns[T num.Float] struct {
	data    []T
	indices []int // row index of each stored entry
	indptr  []int // column j occupies entries indptr[j]:indptr[j+1]
	means   []T   // nil when centering is off
	n, p    int

	colSums []T // Σᵢ x_ij per column, precomputed when centering
}

// NewCSCColumns wraps CSC storage of shape (nSamples, nFeatures). means
// may be nil (no centering) or hold one value per feature. The slices
// are not copied.
func NewCSCColumns[T num.Float](data []T, indices, indptr []int, means []T, nSamples int) (*CSCColumns[T], error) {
	if len(indptr) < 2 {
		return nil, celerErrors.NewModelError("NewCSCColumns", "empty design matrix", celerErrors.ErrEmptyData)
	}
	p := len(indptr) - 1
	nnz := indptr[p]
	if len(data) != nnz || len(indices) != nnz {
		return nil, celerErrors.NewDimensionError("NewCSCColumns", nnz, len(data), 0)
	}
	if means != nil && len(means) != p {
		return nil, celerErrors.NewDimensionError("NewCSCColumns", p, len(means), 1)
	}

	c := &CSCColumns[T]{
		data:    data,
		indices: indices,
		indptr:  indptr,
		means:   means,
		n:       nSamples,
		p:       p,
	}
	if means != nil {
		c.colSums = make([]T, p)
		for j := 0; j < p; j++ {
			var s T
			for k := indptr[j]; k < indptr[j+1]; k++ {
				s += data[k]
			}
			c.colSums[j] = s
		}
	}
	return c, nil
}

// Samples returns the number of rows.
func (c *CSCColumns[T]) Samples() int { return c.n }

// Features returns the number of columns.
func (c *CSCColumns[T]) Features() int { return c.p }

// Dot returns ⟨X_j - m_j·1, v⟩ touching only the stored entries; the
// centering correction uses the caller-supplied vSum.
func (c *CSCColumns[T]) Dot(j int, v []T, vSum T) T {
	var s T
	for k := c.indptr[j]; k < c.indptr[j+1]; k++ {
		s += c.data[k] * v[c.indices[k]]
	}
	if c.means != nil {
		s -= c.means[j] * vSum
	}
	return s
}

// AddScaled performs out += s·(X_j - m_j·1). With centering active the
// mean correction touches every entry of out.
func (c *CSCColumns[T]) AddScaled(j int, s T, out []T) {
	for k := c.indptr[j]; k < c.indptr[j+1]; k++ {
		out[c.indices[k]] += s * c.data[k]
	}
	if c.means != nil {
		shift := s * c.means[j]
		for i := range out {
			out[i] -= shift
		}
	}
}

// Norm returns ‖X_j - m_j·1‖ touching only the stored entries.
func (c *CSCColumns[T]) Norm(j int) T {
	var sq T
	for k := c.indptr[j]; k < c.indptr[j+1]; k++ {
		sq += c.data[k] * c.data[k]
	}
	if c.means != nil {
		m := c.means[j]
		sq += T(c.n)*m*m - 2*m*c.colSums[j]
	}
	if sq < 0 {
		// rounding on an exactly-centered column
		sq = 0
	}
	return num.Sqrt(sq)
}

// CurvatureDot returns Σᵢ (x_ij - m_j)²·dᵢ; dSum must hold Σ d when
// centering is active.
func (c *CSCColumns[T]) CurvatureDot(j int, d []T, dSum T) T {
	var s, xd T
	for k := c.indptr[j]; k < c.indptr[j+1]; k++ {
		x := c.data[k]
		s += x * x * d[c.indices[k]]
		xd += x * d[c.indices[k]]
	}
	if c.means != nil {
		m := c.means[j]
		s += m*m*dSum - 2*m*xd
	}
	return s
}

// Centered reports whether per-feature means were supplied.
func (c *CSCColumns[T]) Centered() bool { return c.means != nil }

// SumDelta returns s·(Σ X_j - n·m_j), the change AddScaled(j, s, out)
// makes to Σ out.
func (c *CSCColumns[T]) SumDelta(j int, s T) T {
	if c.means == nil {
		return 0
	}
	return s * (c.colSums[j] - T(c.n)*c.means[j])
}
