package solver

import (
	"github.com/ezoic/celer/internal/num"
	celerErrors "github.com/ezoic/celer/pkg/errors"
)

// accelBuffer is a fixed-capacity ring of the last K fitted-value
// snapshots, one pushed per gap check of the inner solver. Once full it
// can extrapolate an accelerated fitted value from the history.
type accelBuffer[T num.Float] struct {
	snaps [][]T // k buffers of length n
	head  int   // index of the oldest snapshot
	count int

	// scratch for extrapolate
	diffs [][]T // k-1 difference vectors
	gram  []T   // (k-1)² Gram matrix, row-major
	c     []T   // combination weights
}

func newAccelBuffer[T num.Float](k, n int) *accelBuffer[T] {
	b := &accelBuffer[T]{
		snaps: make([][]T, k),
		diffs: make([][]T, k-1),
		gram:  make([]T, (k-1)*(k-1)),
		c:     make([]T, k-1),
	}
	for i := range b.snaps {
		b.snaps[i] = make([]T, n)
	}
	for i := range b.diffs {
		b.diffs[i] = make([]T, n)
	}
	return b
}

// push copies fit into the ring, evicting the oldest snapshot when full.
func (b *accelBuffer[T]) push(fit []T) {
	if b.count < len(b.snaps) {
		num.Copy(b.snaps[(b.head+b.count)%len(b.snaps)], fit)
		b.count++
		return
	}
	num.Copy(b.snaps[b.head], fit)
	b.head = (b.head + 1) % len(b.snaps)
}

// full reports whether k snapshots have accumulated.
func (b *accelBuffer[T]) full() bool {
	return b.count == len(b.snaps)
}

// at returns the i-th oldest snapshot.
func (b *accelBuffer[T]) at(i int) []T {
	return b.snaps[(b.head+i)%len(b.snaps)]
}

// weights returns the last combination weights computed by extrapolate.
func (b *accelBuffer[T]) weights() []T {
	return b.c
}

// extrapolate writes into out the convex combination Σ c_k·snapshot_k,
// where the weights c solve the (k-1)×(k-1) system UᵀU·c = 1 built from
// the snapshot differences, normalized to sum to one.
//
// When the Gram matrix is not positive definite the call falls back to
// the most recent weighted snapshot (acceleration is skipped, not
// fatal) and reports ErrNotPositiveDefinite so the caller can log it.
// The buffer must be full.
func (b *accelBuffer[T]) extrapolate(out []T) error {
	k := len(b.snaps)
	for i := 0; i < k-1; i++ {
		num.Copy(b.diffs[i], b.at(i+1))
		num.Axpy(-1, b.at(i), b.diffs[i])
	}
	for i := 0; i < k-1; i++ {
		for j := i; j < k-1; j++ {
			v := num.Dot(b.diffs[i], b.diffs[j])
			b.gram[i*(k-1)+j] = v
			b.gram[j*(k-1)+i] = v
		}
	}
	for i := range b.c {
		b.c[i] = 1
	}

	if err := num.SolvePosDef(b.gram, b.c); err != nil {
		for i := range b.c {
			b.c[i] = 0
		}
		b.c[k-2] = 1
		num.Copy(out, b.at(k-2))
		return celerErrors.NewModelError("accelBuffer.extrapolate",
			"gram system not positive definite, skipping acceleration", err)
	}

	num.Scal(1/num.Sum(b.c), b.c)
	for i := range out {
		out[i] = 0
	}
	for i := 0; i < k-1; i++ {
		num.Axpy(b.c[i], b.at(i), out)
	}
	return nil
}
