package sufarray

import (
	"sort"
	"testing"
)

func TestBuildSortsAllSuffixes(t *testing.T) {
	data := []byte("banana")
	idx := Build(data)

	if len(idx.SA) != len(data) {
		t.Fatalf("SA length = %d, want %d", len(idx.SA), len(data))
	}

	suffixes := make([]string, len(idx.SA))
	for i, p := range idx.SA {
		suffixes[i] = string(data[p:])
	}
	if !sort.StringsAreSorted(suffixes) {
		t.Fatalf("suffixes not sorted: %v", suffixes)
	}
}

func TestLCPMatchesNaive(t *testing.T) {
	data := []byte("abracadabra")
	idx := Build(data)

	for i := 1; i < len(idx.SA); i++ {
		want := naiveLCP(data[idx.SA[i-1]:], data[idx.SA[i]:])
		if int(idx.LCP[i]) != want {
			t.Errorf("LCP[%d] = %d, want %d", i, idx.LCP[i], want)
		}
	}
	if idx.LCP[0] != 0 {
		t.Errorf("LCP[0] = %d, want 0", idx.LCP[0])
	}
}

func TestRankIsInverseOfSA(t *testing.T) {
	data := []byte("mississippi")
	idx := Build(data)
	for i, p := range idx.SA {
		if int(idx.Rank[p]) != i {
			t.Errorf("Rank[SA[%d]=%d] = %d, want %d", i, p, idx.Rank[p], i)
		}
	}
}

func TestBuildEmpty(t *testing.T) {
	idx := Build(nil)
	if idx.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", idx.Len())
	}
}

func naiveLCP(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}
