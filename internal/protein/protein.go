package protein

import "fmt"

// Protein is one input record: a residue sequence, the range to fragment,
// and the domains and fragments attached to it. Domains and fragments are
// append-only.
type Protein struct {
	Name        string
	AccessionID string
	Sequence    string
	FirstRes    int
	LastRes     int

	domains   []Domain
	fragments []Fragment
}

// New creates a protein covering its whole sequence.
func New(name, accessionID, sequence string) (*Protein, error) {
	return NewWithRange(name, accessionID, sequence, 0, len(sequence)-1)
}

// NewWithRange creates a protein restricted to residues [first, last].
func NewWithRange(name, accessionID, sequence string, first, last int) (*Protein, error) {
	p := &Protein{
		Name:        name,
		AccessionID: accessionID,
		Sequence:    sequence,
		FirstRes:    first,
		LastRes:     last,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate rejects an empty sequence or a residue range outside it.
func (p *Protein) Validate() error {
	if p.Sequence == "" {
		return fmt.Errorf("%w: %s has an empty sequence", ErrInvalidProtein, p.Name)
	}
	if p.FirstRes < 0 || p.FirstRes > p.LastRes {
		return fmt.Errorf("%w: %s first residue %d is after last residue %d", ErrInvalidProtein, p.Name, p.FirstRes, p.LastRes)
	}
	if p.LastRes >= len(p.Sequence) {
		return fmt.Errorf("%w: %s last residue %d is beyond sequence length %d", ErrInvalidProtein, p.Name, p.LastRes, len(p.Sequence))
	}
	return nil
}

// Len returns the number of residues in [FirstRes, LastRes].
func (p *Protein) Len() int {
	return p.LastRes - p.FirstRes + 1
}

// AddDomain attaches a domain. Overlapping domains are kept as they are.
func (p *Protein) AddDomain(d Domain) {
	p.domains = append(p.domains, d)
}

// AddDomains attaches several domains in order.
func (p *Protein) AddDomains(ds []Domain) {
	p.domains = append(p.domains, ds...)
}

// Domains returns the attached domains in insertion order.
func (p *Protein) Domains() []Domain {
	out := make([]Domain, len(p.domains))
	copy(out, p.domains)
	return out
}

// AddFragment appends a fragment to the ledger. It fails if the fragment
// lies outside the protein range, starts before the last appended fragment,
// or repeats the last appended fragment.
func (p *Protein) AddFragment(f Fragment) error {
	if err := p.checkFragment(f, p.lastFragment()); err != nil {
		return err
	}
	p.fragments = append(p.fragments, f)
	return nil
}

// AddFragments appends fragments in order. Either all are appended or none.
func (p *Protein) AddFragments(fs []Fragment) error {
	last := p.lastFragment()
	for _, f := range fs {
		f := f
		if err := p.checkFragment(f, last); err != nil {
			return err
		}
		last = &f
	}
	p.fragments = append(p.fragments, fs...)
	return nil
}

func (p *Protein) lastFragment() *Fragment {
	if len(p.fragments) == 0 {
		return nil
	}
	return &p.fragments[len(p.fragments)-1]
}

func (p *Protein) checkFragment(f Fragment, last *Fragment) error {
	if f.Start < 0 || f.Start > f.End {
		return fmt.Errorf("%w: %s %v", ErrInvalidFragment, p.Name, f)
	}
	if f.Start < p.FirstRes || f.End > p.LastRes {
		return fmt.Errorf("%w: %s %v outside residues (%d, %d)", ErrInvalidFragment, p.Name, f, p.FirstRes, p.LastRes)
	}
	if last == nil {
		return nil
	}
	if f.Start < last.Start {
		return fmt.Errorf("%w: %s %v starts before previous fragment %v", ErrFragmentOrder, p.Name, f, *last)
	}
	if f == *last {
		return fmt.Errorf("%w: %s %v repeats previous fragment", ErrFragmentOrder, p.Name, f)
	}
	return nil
}

// Fragments returns the ledger in insertion order.
func (p *Protein) Fragments() []Fragment {
	out := make([]Fragment, len(p.fragments))
	copy(out, p.fragments)
	return out
}

// FragmentSequence returns the residues covered by f.
func (p *Protein) FragmentSequence(f Fragment) string {
	return p.Sequence[f.Start : f.End+1]
}

func (p *Protein) String() string {
	return fmt.Sprintf("Protein Name: %s, Accession ID: %s, Domains: %d, Fragments: %d",
		p.Name, p.AccessionID, len(p.domains), len(p.fragments))
}
