// Package sufarray builds a suffix array and its LCP array over a byte
// window, the index C1 consumes in internal/lcpindex.
package sufarray

import "sort"

// Index is a suffix array paired with its LCP array and the inverse
// permutation (rank), built once per compressed block/window.
type Index struct {
	Data []byte
	SA   []int32 // SA[i] = starting offset of the suffix ranked i
	Rank []int32 // Rank[p] = i such that SA[i] == p
	LCP  []int32 // LCP[i] = common prefix length of suffixes ranked i-1 and i; LCP[0] == 0
}

// Build constructs the suffix array and LCP array for data using
// prefix-doubling for the ranks and the permuted-LCP (Φ) method for the LCP
// array: Φ[SA[i]] = SA[i-1], then a single text-order scan computes each
// suffix's LCP with its predecessor while the running match length drops by
// at most one per step.
func Build(data []byte) *Index {
	n := len(data)
	sa := make([]int32, n)
	rank := make([]int32, n)
	tmp := make([]int32, n)

	for i := 0; i < n; i++ {
		sa[i] = int32(i)
		rank[i] = int32(data[i])
	}

	rankAt := func(p int32, k int) int32 {
		if int(p)+k < n {
			return rank[int(p)+k]
		}
		return -1
	}

	for k := 1; n > 0; k *= 2 {
		less := func(a, b int32) bool {
			if rank[a] != rank[b] {
				return rank[a] < rank[b]
			}
			return rankAt(a, k) < rankAt(b, k)
		}
		sort.Slice(sa, func(i, j int) bool { return less(sa[i], sa[j]) })

		tmp[sa[0]] = 0
		for i := 1; i < n; i++ {
			tmp[sa[i]] = tmp[sa[i-1]]
			if less(sa[i-1], sa[i]) {
				tmp[sa[i]]++
			}
		}
		copy(rank, tmp)

		if int(rank[sa[n-1]]) == n-1 {
			break
		}
	}

	lcp := make([]int32, n)
	h := 0
	for i := 0; i < n; i++ {
		ri := int(rank[i])
		if ri > 0 {
			j := int(sa[ri-1])
			for i+h < n && j+h < n && data[i+h] == data[j+h] {
				h++
			}
			lcp[ri] = int32(h)
			if h > 0 {
				h--
			}
		} else {
			h = 0
		}
	}

	return &Index{Data: data, SA: sa, Rank: rank, LCP: lcp}
}

// Len returns the number of suffixes indexed.
func (idx *Index) Len() int { return len(idx.SA) }
