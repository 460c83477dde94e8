package solver

import (
	"sort"

	"github.com/ezoic/celer/internal/num"
)

// smallestK returns the indices of the k smallest values in prios, in
// ascending index order. A quickselect partition places the k smallest
// in front without fully sorting the priorities; only the selected
// indices are sorted, so the working set sweeps features in a
// deterministic order.
func smallestK[T num.Float](prios []T, k int) []int {
	idx := make([]int, len(prios))
	for i := range idx {
		idx[i] = i
	}

	lo, hi := 0, len(idx)-1
	for lo < hi {
		p := partition(prios, idx, lo, hi)
		switch {
		case p == k-1:
			lo = hi // done
		case p < k-1:
			lo = p + 1
		default:
			hi = p - 1
		}
	}

	ws := idx[:k:k]
	sort.Ints(ws)
	return ws
}

// partition performs a Hoare-style partition of idx[lo:hi+1] around a
// median-of-three pivot value, returning the pivot's final position.
func partition[T num.Float](prios []T, idx []int, lo, hi int) int {
	mid := lo + (hi-lo)/2
	if prios[idx[mid]] < prios[idx[lo]] {
		idx[lo], idx[mid] = idx[mid], idx[lo]
	}
	if prios[idx[hi]] < prios[idx[lo]] {
		idx[lo], idx[hi] = idx[hi], idx[lo]
	}
	if prios[idx[hi]] < prios[idx[mid]] {
		idx[mid], idx[hi] = idx[hi], idx[mid]
	}
	idx[mid], idx[hi] = idx[hi], idx[mid]
	pivot := prios[idx[hi]]

	store := lo
	for i := lo; i < hi; i++ {
		if prios[idx[i]] < pivot {
			idx[store], idx[i] = idx[i], idx[store]
			store++
		}
	}
	idx[store], idx[hi] = idx[hi], idx[store]
	return store
}
