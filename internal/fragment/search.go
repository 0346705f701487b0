package fragment

import "github.com/inodb/alphafragment/internal/protein"

// Cut is the outcome of one cut-point search from a fragment start.
type Cut struct {
	// Pos is the exclusive end of the fragment.
	Pos int
	// Next is where the following fragment starts. It equals Pos when the
	// fragment reaches the end of the range.
	Next int
	// Forced is set when the fragment was stretched past Max to keep an
	// oversized domain whole.
	Forced bool
	// Degraded is set when no overlap within the overlap window was
	// domain-safe.
	Degraded bool
	// Widened counts the len_increase steps applied to Max.
	Widened int
}

// searcher finds domain-safe cut points for one fragmentation run.
type searcher struct {
	index       *protein.DomainIndex
	length      protein.Window
	lenIncrease int
	resolver    resolver
}

func newSearcher(index *protein.DomainIndex, opts Options) *searcher {
	return &searcher{
		index:       index,
		length:      opts.Length,
		lenIncrease: opts.LenIncrease,
		resolver:    resolver{index: index, overlap: opts.Overlap},
	}
}

// cut finds where the fragment starting at start should end. end is the
// exclusive end of the working range. When every candidate in the length
// window splits a domain, Max is raised by lenIncrease and the search is
// repeated; once Max reaches the remaining length the whole remainder is
// one fragment. The budget is checked before every round.
func (s *searcher) cut(start, end int, b *budget) (Cut, error) {
	max := s.length.Max
	for widened := 0; ; widened++ {
		if b.expired() {
			return Cut{}, errBudgetExhausted
		}

		w := s.length.WithMax(max)
		if start+w.Max >= end {
			w.Max = end - start
		}
		if c, ok := s.scan(start, end, w); ok {
			c.Widened = widened
			return c, nil
		}
		if start+max >= end {
			return Cut{Pos: end, Next: end, Widened: widened}, nil
		}
		max += s.lenIncrease
	}
}

// scan tries fragment lengths in window order and accepts the first cut
// that is domain-safe, leaves room for an in-window overlap, and leaves a
// remainder of at least Min (or none). Failing that, the first cut with an
// in-window overlap is taken, and failing that the first domain-safe cut
// with a degraded overlap. While searching upward, hitting a domain longer
// than Max forces the cut past that domain, even when a shorter split domain
// reaches further.
func (s *searcher) scan(start, end int, w protein.Window) (Cut, bool) {
	var shortTail *Cut
	degraded := -1

	try := func(c int) (Cut, bool) {
		if c == end {
			return Cut{Pos: end, Next: end}, true
		}
		if !s.index.SafeCut(c) {
			return Cut{}, false
		}
		next, ok := s.resolver.inWindow(c, start)
		if !ok {
			if degraded < 0 {
				degraded = c
			}
			return Cut{}, false
		}
		if end-next >= s.length.Min {
			return Cut{Pos: c, Next: next}, true
		}
		if shortTail == nil {
			shortTail = &Cut{Pos: c, Next: next}
		}
		return Cut{}, false
	}

	for _, l := range w.Candidates() {
		c := start + l
		if l >= w.Ideal {
			if _, ok := s.index.Oversized(c, w.Max); ok {
				return s.forced(start, end, c), true
			}
		}
		if cut, ok := try(c); ok {
			return cut, true
		}
	}

	if shortTail != nil {
		return *shortTail, true
	}
	if degraded >= 0 {
		next, _ := s.resolver.next(degraded, start)
		return Cut{Pos: degraded, Next: next, Degraded: true}, true
	}
	return Cut{}, false
}

// forced ends the fragment directly after the domain chain covering c.
func (s *searcher) forced(start, end, c int) Cut {
	pos := s.index.ProtectedEnd(c)
	if pos >= end {
		return Cut{Pos: end, Next: end, Forced: true}
	}
	next, degraded := s.resolver.next(pos, start)
	return Cut{Pos: pos, Next: next, Forced: true, Degraded: degraded}
}
