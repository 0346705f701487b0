package records

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inodb/alphafragment/internal/protein"
)

// listSep separates entries in the domains, fragments and fragment
// sequence columns.
const listSep = ";"

// FormatDomains renders domains as "type:id:start-end" entries with 1-indexed
// inclusive coordinates.
func FormatDomains(ds []protein.Domain) string {
	parts := make([]string, len(ds))
	for i, d := range ds {
		parts[i] = fmt.Sprintf("%s:%s:%d-%d", d.Type, d.ID, d.Start+1, d.End+1)
	}
	return strings.Join(parts, listSep+" ")
}

// ParseDomains parses the domains column. Coordinates are converted from
// 1-indexed to 0-indexed. An empty value or "[]" yields no domains.
func ParseDomains(s string) ([]protein.Domain, error) {
	var out []protein.Domain
	for _, entry := range splitList(s) {
		fields := strings.Split(entry, ":")
		if len(fields) < 3 {
			return nil, fmt.Errorf("domain %q: want type:id:start-end", entry)
		}
		kind := strings.TrimSpace(fields[0])
		id := strings.TrimSpace(strings.Join(fields[1:len(fields)-1], ":"))
		start, end, err := parseRange(fields[len(fields)-1])
		if err != nil {
			return nil, fmt.Errorf("domain %q: %w", entry, err)
		}
		d, err := protein.NewDomain(id, start-1, end-1, kind)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// FormatFragments renders fragments as "start-end" entries with 1-indexed
// inclusive coordinates.
func FormatFragments(fs []protein.Fragment) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = fmt.Sprintf("%d-%d", f.Start+1, f.End+1)
	}
	return strings.Join(parts, listSep+" ")
}

// ParseFragments parses the fragments column into 0-indexed fragments.
func ParseFragments(s string) ([]protein.Fragment, error) {
	var out []protein.Fragment
	for _, entry := range splitList(s) {
		start, end, err := parseRange(entry)
		if err != nil {
			return nil, fmt.Errorf("fragment %q: %w", entry, err)
		}
		f, err := protein.NewFragment(start-1, end-1)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// FormatFragmentSequences renders the residues of each fragment of p.
func FormatFragmentSequences(p *protein.Protein) string {
	fs := p.Fragments()
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = p.FragmentSequence(f)
	}
	return strings.Join(parts, listSep+" ")
}

func splitList(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	var out []string
	for _, entry := range strings.Split(s, listSep) {
		if entry = strings.TrimSpace(entry); entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

func parseRange(s string) (int, int, error) {
	lo, hi, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return 0, 0, fmt.Errorf("range %q: want start-end", s)
	}
	start, err := strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("range start: %w", err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("range end: %w", err)
	}
	return start, end, nil
}
