// Package protein provides the value types fragmentation operates on:
// protected domains, length windows, fragments and the protein record that
// owns them.
package protein

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors returned by constructors and the fragment ledger.
var (
	ErrInvalidDomain   = errors.New("invalid domain")
	ErrInvalidWindow   = errors.New("invalid window")
	ErrInvalidFragment = errors.New("invalid fragment")
	ErrFragmentOrder   = errors.New("fragment out of order")
	ErrInvalidProtein  = errors.New("invalid protein")
)

// Domain is a protected residue interval that fragmentation must never split.
// Start and End are 0-based and inclusive.
type Domain struct {
	ID    string
	Start int
	End   int
	Type  string
}

// NewDomain creates a Domain, rejecting negative bounds and start > end.
func NewDomain(id string, start, end int, kind string) (Domain, error) {
	if start < 0 || end < 0 {
		return Domain{}, fmt.Errorf("%w: %s%s bounds (%d, %d) cannot be negative", ErrInvalidDomain, kind, id, start, end)
	}
	if start > end {
		return Domain{}, fmt.Errorf("%w: %s%s start %d is after end %d", ErrInvalidDomain, kind, id, start, end)
	}
	return Domain{ID: id, Start: start, End: end, Type: kind}, nil
}

// Len returns the number of residues covered by the domain.
func (d Domain) Len() int {
	return d.End - d.Start + 1
}

// Splits reports whether cutting immediately before residue c would separate
// two residues of this domain.
func (d Domain) Splits(c int) bool {
	return c > d.Start && c <= d.End
}

func (d Domain) String() string {
	return fmt.Sprintf("%s%s (%d, %d)", d.Type, d.ID, d.Start, d.End)
}

// SortDomains returns a copy of domains ordered by Start. Ties are broken by
// the larger End first so the widest region at a position comes first.
func SortDomains(domains []Domain) []Domain {
	sorted := make([]Domain, len(domains))
	copy(sorted, domains)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End > sorted[j].End
	})
	return sorted
}
