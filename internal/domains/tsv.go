package domains

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/inodb/alphafragment/internal/protein"
)

// Required columns of a domain annotation file.
const (
	ColAccession = "accession"
	ColID        = "id"
	ColStart     = "start"
	ColEnd       = "end"
	ColType      = "type"
)

// TSV serves domains loaded from a tab-separated annotation file, keyed by
// accession. File coordinates are 1-indexed and inclusive.
type TSV struct {
	byAccession map[string][]protein.Domain
}

func (t *TSV) Name() string { return "tsv" }

// Domains returns the domains annotated for p's accession.
func (t *TSV) Domains(p *protein.Protein) ([]protein.Domain, error) {
	return t.byAccession[p.AccessionID], nil
}

// Len returns the number of loaded domains.
func (t *TSV) Len() int {
	n := 0
	for _, ds := range t.byAccession {
		n += len(ds)
	}
	return n
}

// LoadTSV loads a domain annotation file. The header must contain the
// columns accession, id, start, end and type (case-insensitive).
func LoadTSV(path string) (*TSV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open domain file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)

	// Read header to find column indices
	if !scanner.Scan() {
		return nil, fmt.Errorf("domain file: empty file")
	}
	idx := map[string]int{}
	for i, col := range strings.Split(scanner.Text(), "\t") {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range []string{ColAccession, ColID, ColStart, ColEnd, ColType} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("domain file: missing %q column", col)
		}
	}

	t := &TSV{byAccession: make(map[string][]protein.Domain)}
	line := 1
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		get := func(col string) string {
			if i := idx[col]; i < len(fields) {
				return strings.TrimSpace(fields[i])
			}
			return ""
		}

		acc := get(ColAccession)
		if acc == "" {
			continue
		}
		start, err := strconv.Atoi(get(ColStart))
		if err != nil {
			return nil, fmt.Errorf("domain file line %d: invalid start: %w", line, err)
		}
		end, err := strconv.Atoi(get(ColEnd))
		if err != nil {
			return nil, fmt.Errorf("domain file line %d: invalid end: %w", line, err)
		}
		d, err := protein.NewDomain(get(ColID), start-1, end-1, get(ColType))
		if err != nil {
			return nil, fmt.Errorf("domain file line %d: %w", line, err)
		}
		t.byAccession[acc] = append(t.byAccession[acc], d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading domain file: %w", err)
	}

	return t, nil
}
