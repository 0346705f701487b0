// Package domains compiles the domain list for a protein from a set of
// enabled annotation sources.
package domains

import (
	"fmt"
	"sort"
	"strings"

	"github.com/inodb/alphafragment/internal/protein"
)

// Source supplies 0-indexed domains for a protein.
type Source interface {
	Name() string // e.g. "manual"
	Domains(p *protein.Protein) ([]protein.Domain, error)
}

// Registry holds the known sources by name.
type Registry struct {
	sources map[string]Source
}

// NewRegistry creates a registry containing sources.
func NewRegistry(sources ...Source) *Registry {
	r := &Registry{sources: make(map[string]Source)}
	for _, s := range sources {
		r.Register(s)
	}
	return r
}

// Register adds or replaces a source.
func (r *Registry) Register(s Source) {
	r.sources[s.Name()] = s
}

// Names returns the registered source names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compile returns the domains reported for p by each enabled source, in the
// order the sources are given. Domains are not merged; identical entries from
// different sources are kept once.
func (r *Registry) Compile(p *protein.Protein, enabled []string) ([]protein.Domain, error) {
	var out []protein.Domain
	seen := make(map[protein.Domain]bool)
	for _, name := range enabled {
		s, ok := r.sources[name]
		if !ok {
			return nil, fmt.Errorf("unknown domain source %q (registered: %s)", name, strings.Join(r.Names(), ", "))
		}
		ds, err := s.Domains(p)
		if err != nil {
			return nil, fmt.Errorf("%s domains for %s: %w", name, p.Name, err)
		}
		for _, d := range ds {
			if !seen[d] {
				seen[d] = true
				out = append(out, d)
			}
		}
	}
	return out, nil
}
