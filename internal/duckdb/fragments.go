package duckdb

import (
	"database/sql"
	"errors"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/alphafragment/internal/protein"
)

// ErrProteinNotFound is returned when a protein is not stored.
var ErrProteinNotFound = errors.New("protein not found")

// WriteProtein stores a protein and replaces its domains. Fragments are
// written separately with WriteFragments.
func (s *Store) WriteProtein(p *protein.Protein) error {
	if _, err := s.db.Exec(`INSERT OR REPLACE INTO proteins VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.AccessionID, p.Sequence, int64(p.FirstRes), int64(p.LastRes)); err != nil {
		return fmt.Errorf("write protein %s: %w", p.Name, err)
	}
	if _, err := s.db.Exec(`DELETE FROM domains WHERE protein = ?`, p.Name); err != nil {
		return fmt.Errorf("clear domains of %s: %w", p.Name, err)
	}

	domains := p.Domains()
	if len(domains) == 0 {
		return nil
	}
	return s.appendRows("domains", func(a *goduckdb.Appender) error {
		for _, d := range domains {
			if err := a.AppendRow(p.Name, d.ID, d.Type, int64(d.Start), int64(d.End)); err != nil {
				return fmt.Errorf("append domain: %w", err)
			}
		}
		return nil
	})
}

// WriteFragments stores the fragment ledger of p. Stored ledgers are
// append-only: writing a protein that already has fragments fails with
// protein.ErrFragmentOrder; call ClearFragments first to replace them.
func (s *Store) WriteFragments(p *protein.Protein) error {
	frags := p.Fragments()
	if len(frags) == 0 {
		return nil
	}

	var n int64
	if err := s.db.QueryRow(`SELECT count(*) FROM fragments WHERE protein = ?`, p.Name).Scan(&n); err != nil {
		return fmt.Errorf("count fragments: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s already has %d stored fragments", protein.ErrFragmentOrder, p.Name, n)
	}

	return s.appendRows("fragments", func(a *goduckdb.Appender) error {
		for i, f := range frags {
			if err := a.AppendRow(p.Name, int64(i), int64(f.Start), int64(f.End)); err != nil {
				return fmt.Errorf("append fragment: %w", err)
			}
		}
		return nil
	})
}

// ClearFragments removes the stored fragments of the named protein.
func (s *Store) ClearFragments(name string) error {
	_, err := s.db.Exec(`DELETE FROM fragments WHERE protein = ?`, name)
	return err
}

// LookupFragments returns the stored fragments of the named protein in
// ledger order.
func (s *Store) LookupFragments(name string) ([]protein.Fragment, error) {
	rows, err := s.db.Query(`SELECT start_res, end_res FROM fragments WHERE protein = ? ORDER BY idx`, name)
	if err != nil {
		return nil, fmt.Errorf("query fragments: %w", err)
	}
	defer rows.Close()

	var out []protein.Fragment
	for rows.Next() {
		var start, end int64
		if err := rows.Scan(&start, &end); err != nil {
			return nil, fmt.Errorf("scan fragment: %w", err)
		}
		out = append(out, protein.Fragment{Start: int(start), End: int(end)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fragments: %w", err)
	}
	return out, nil
}

// LoadProtein rebuilds a stored protein with its domains and fragments.
func (s *Store) LoadProtein(name string) (*protein.Protein, error) {
	var acc, seq string
	var first, last int64
	err := s.db.QueryRow(`SELECT accession_id, sequence, first_res, last_res FROM proteins WHERE name = ?`, name).
		Scan(&acc, &seq, &first, &last)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrProteinNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("query protein: %w", err)
	}

	p, err := protein.NewWithRange(name, acc, seq, int(first), int(last))
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`SELECT domain_id, domain_type, start_res, end_res FROM domains
		WHERE protein = ? ORDER BY start_res, end_res DESC`, name)
	if err != nil {
		return nil, fmt.Errorf("query domains: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d protein.Domain
		var start, end int64
		if err := rows.Scan(&d.ID, &d.Type, &start, &end); err != nil {
			return nil, fmt.Errorf("scan domain: %w", err)
		}
		d.Start, d.End = int(start), int(end)
		p.AddDomain(d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate domains: %w", err)
	}

	frags, err := s.LookupFragments(name)
	if err != nil {
		return nil, err
	}
	if err := p.AddFragments(frags); err != nil {
		return nil, err
	}
	return p, nil
}

// ProteinNames lists stored protein names in order.
func (s *Store) ProteinNames() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM proteins ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query proteins: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan protein: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
