package protein

import "fmt"

// Fragment is an emitted sub-range of a protein. Start and End are 0-based
// and inclusive.
type Fragment struct {
	Start int
	End   int
}

// NewFragment creates a Fragment, rejecting negative bounds and start > end.
func NewFragment(start, end int) (Fragment, error) {
	if start < 0 || start > end {
		return Fragment{}, fmt.Errorf("%w: (%d, %d)", ErrInvalidFragment, start, end)
	}
	return Fragment{Start: start, End: end}, nil
}

// Len returns the number of residues in the fragment.
func (f Fragment) Len() int {
	return f.End - f.Start + 1
}

// Overlap returns the number of residues shared with next, which is assumed
// to start at or after f. A negative value is a gap.
func (f Fragment) Overlap(next Fragment) int {
	return f.End - next.Start + 1
}

func (f Fragment) String() string {
	return fmt.Sprintf("(%d, %d)", f.Start, f.End)
}
