package domains

import "github.com/inodb/alphafragment/internal/protein"

// Manual serves domains given directly with the input records, keyed by
// protein name.
type Manual struct {
	byName map[string][]protein.Domain
}

// NewManual creates an empty manual source.
func NewManual() *Manual {
	return &Manual{byName: make(map[string][]protein.Domain)}
}

// Add records domains for the named protein.
func (m *Manual) Add(name string, ds []protein.Domain) {
	m.byName[name] = append(m.byName[name], ds...)
}

func (m *Manual) Name() string { return "manual" }

// Domains returns the manual domains for p.
func (m *Manual) Domains(p *protein.Protein) ([]protein.Domain, error) {
	return m.byName[p.Name], nil
}
