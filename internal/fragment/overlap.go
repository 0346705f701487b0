package fragment

import "github.com/inodb/alphafragment/internal/protein"

// resolver picks where the next fragment starts after an accepted cut.
type resolver struct {
	index   *protein.DomainIndex
	overlap protein.Window
}

// inWindow searches overlaps Ideal..Max then Ideal-1..Min and returns the
// first start c-o that splits no domain and lies after floor.
func (r resolver) inWindow(c, floor int) (int, bool) {
	for _, o := range r.overlap.Candidates() {
		if s := c - o; s > floor && r.index.SafeCut(s) {
			return s, true
		}
	}
	return 0, false
}

// next returns the start of the fragment following cut c. When no overlap in
// the window is domain-safe, overlaps below Min are tried down to zero; c
// itself is always safe, so this never fails. degraded reports that the
// overlap fell outside the window.
func (r resolver) next(c, floor int) (start int, degraded bool) {
	if s, ok := r.inWindow(c, floor); ok {
		return s, false
	}
	for o := r.overlap.Min - 1; o > 0; o-- {
		if s := c - o; s > floor && r.index.SafeCut(s) {
			return s, true
		}
	}
	return c, true
}
