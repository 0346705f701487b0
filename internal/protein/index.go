package protein

import "sort"

// DomainIndex answers "does a cut here split a domain?" in O(log n) using a
// sorted slice with a prefix-max array. Built once per fragmentation and
// never modified.
type DomainIndex struct {
	domains []Domain
	maxEnd  []int // maxEnd[i] = max(End) for domains[:i+1]
	maxIdx  []int // index into domains of the domain holding maxEnd[i]
}

// NewDomainIndex builds an index over domains.
func NewDomainIndex(domains []Domain) *DomainIndex {
	if len(domains) == 0 {
		return &DomainIndex{}
	}

	sorted := SortDomains(domains)

	maxEnd := make([]int, len(sorted))
	maxIdx := make([]int, len(sorted))
	maxEnd[0] = sorted[0].End
	for i := 1; i < len(sorted); i++ {
		maxEnd[i], maxIdx[i] = maxEnd[i-1], maxIdx[i-1]
		if sorted[i].End > maxEnd[i] {
			maxEnd[i], maxIdx[i] = sorted[i].End, i
		}
	}

	return &DomainIndex{domains: sorted, maxEnd: maxEnd, maxIdx: maxIdx}
}

// Splitting returns every domain split by a cut immediately before residue
// c, ordered by descending start.
func (x *DomainIndex) Splitting(c int) []Domain {
	var out []Domain

	// hi is the first index with start >= c; only domains[:hi] can be split.
	hi := sort.Search(len(x.domains), func(i int) bool {
		return x.domains[i].Start >= c
	})
	for i := hi - 1; i >= 0 && x.maxEnd[i] >= c; i-- {
		if x.domains[i].Splits(c) {
			out = append(out, x.domains[i])
		}
	}
	return out
}

// Oversized returns a domain split by a cut before residue c that is longer
// than max. Every split domain is considered, so a shorter domain reaching
// further cannot hide a longer one.
func (x *DomainIndex) Oversized(c, max int) (Domain, bool) {
	for _, d := range x.Splitting(c) {
		if d.Len() > max {
			return d, true
		}
	}
	return Domain{}, false
}

// SafeCut reports whether a cut immediately before residue c leaves every
// domain whole. Cutting at a domain's start or directly after its end is safe.
func (x *DomainIndex) SafeCut(c int) bool {
	_, blocked := x.Blocking(c)
	return !blocked
}

// Blocking returns the domain split by a cut before residue c. When several
// domains are split, the one reaching furthest is returned.
func (x *DomainIndex) Blocking(c int) (Domain, bool) {
	// hi is the first index with start >= c; only domains[:hi] can be split.
	hi := sort.Search(len(x.domains), func(i int) bool {
		return x.domains[i].Start >= c
	})
	if hi == 0 || x.maxEnd[hi-1] < c {
		return Domain{}, false
	}
	return x.domains[x.maxIdx[hi-1]], true
}

// ProtectedEnd returns the first safe cut at or after c, following chains of
// overlapping domains until none is split.
func (x *DomainIndex) ProtectedEnd(c int) int {
	for {
		d, blocked := x.Blocking(c)
		if !blocked {
			return c
		}
		c = d.End + 1
	}
}
