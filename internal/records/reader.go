// Package records reads and writes protein record tables. Coordinates in the
// tables are 1-indexed and inclusive; everything handed to the rest of the
// program is 0-indexed.
package records

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/inodb/alphafragment/internal/protein"
)

// Standard column names, after normalisation.
const (
	ColName              = "name"
	ColAccessionID       = "accession_id"
	ColSequence          = "sequence"
	ColDomains           = "domains"
	ColFragments         = "fragments"
	ColFragmentSequences = "fragment_sequences"
)

var knownColumns = map[string]bool{
	ColName: true, ColAccessionID: true, ColSequence: true,
	ColDomains: true, ColFragments: true, ColFragmentSequences: true,
}

var parenthesised = regexp.MustCompile(`\(.*\)`)

// Record is one protein row.
type Record struct {
	Protein *protein.Protein
	// Domains holds the domains listed in the row, 0-indexed. They are not
	// attached to Protein.
	Domains []protein.Domain
	// Extra holds the remaining columns by normalised name.
	Extra map[string]string
	Line  int
}

// columnIndices holds the indices of the standard columns; -1 if absent.
type columnIndices struct {
	name, accessionID, sequence, domains, fragments int
}

// Reader reads protein records from a TSV or CSV table.
type Reader struct {
	csv        *csv.Reader
	file       *os.File
	gzipReader *gzip.Reader
	header     []string
	columns    columnIndices
	extra      []string
}

// Comma returns the field delimiter implied by a file name: ',' for .csv
// (optionally gzipped), tab otherwise.
func Comma(path string) rune {
	lower := strings.TrimSuffix(strings.ToLower(path), ".gz")
	if strings.HasSuffix(lower, ".csv") {
		return ','
	}
	return '\t'
}

// NewReader opens a record table. Gzipped files are detected by their magic
// bytes. Use "-" for stdin.
func NewReader(path string) (*Reader, error) {
	if path == "-" {
		return NewReaderFromReader(os.Stdin, '\t')
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records file: %w", err)
	}

	br := bufio.NewReader(file)
	magic, err := br.Peek(2)
	if err != nil && !errors.Is(err, io.EOF) {
		file.Close()
		return nil, fmt.Errorf("read records header: %w", err)
	}

	var src io.Reader = br
	var gz *gzip.Reader
	// Check for gzip magic number (0x1f, 0x8b)
	if len(magic) == 2 && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err = gzip.NewReader(br)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("create gzip reader: %w", err)
		}
		src = gz
	}

	r, err := NewReaderFromReader(src, Comma(path))
	if err != nil {
		if gz != nil {
			gz.Close()
		}
		file.Close()
		return nil, err
	}
	r.file = file
	r.gzipReader = gz
	return r, nil
}

// NewReaderFromReader creates a reader over an io.Reader using the given
// field delimiter.
func NewReaderFromReader(src io.Reader, comma rune) (*Reader, error) {
	c := csv.NewReader(src)
	c.Comma = comma
	c.FieldsPerRecord = -1
	c.LazyQuotes = true
	c.Comment = '#'

	r := &Reader{csv: c}
	if err := r.parseHeader(); err != nil {
		return nil, err
	}
	return r, nil
}

// normalizeColumn lower-cases a header and replaces spaces with underscores.
func normalizeColumn(col string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(col)), " ", "_")
}

func (r *Reader) parseHeader() error {
	header, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("records file: empty file")
		}
		return fmt.Errorf("read records header: %w", err)
	}
	r.columns = columnIndices{name: -1, accessionID: -1, sequence: -1, domains: -1, fragments: -1}
	seen := make(map[string]bool)
	for i, raw := range header {
		col := normalizeColumn(raw)
		if seen[col] {
			return fmt.Errorf("records file: duplicate column %q", col)
		}
		seen[col] = true
		r.header = append(r.header, col)

		switch col {
		case ColName:
			r.columns.name = i
		case ColAccessionID:
			r.columns.accessionID = i
		case ColSequence:
			r.columns.sequence = i
		case ColDomains:
			r.columns.domains = i
		case ColFragments:
			r.columns.fragments = i
		}
		if !knownColumns[col] {
			r.extra = append(r.extra, col)
		}
	}

	var missing []string
	for col, idx := range map[string]int{ColName: r.columns.name, ColAccessionID: r.columns.accessionID, ColSequence: r.columns.sequence} {
		if idx < 0 {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("records file: missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

// ExtraColumns returns the non-standard columns in header order.
func (r *Reader) ExtraColumns() []string {
	return r.extra
}

// Next returns the next record, or nil at end of input.
func (r *Reader) Next() (*Record, error) {
	for {
		fields, err := r.csv.Read()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		line, _ := r.csv.FieldPos(0)

		get := func(idx int) string {
			if idx >= 0 && idx < len(fields) {
				return strings.TrimSpace(fields[idx])
			}
			return ""
		}

		name := strings.TrimSpace(parenthesised.ReplaceAllString(get(r.columns.name), ""))
		if name == "" && get(r.columns.sequence) == "" {
			continue
		}

		p, err := protein.New(name, get(r.columns.accessionID), strings.ToUpper(get(r.columns.sequence)))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec := &Record{Protein: p, Line: line, Extra: make(map[string]string)}

		if rec.Domains, err = ParseDomains(get(r.columns.domains)); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		frags, err := ParseFragments(get(r.columns.fragments))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		for _, f := range frags {
			if err := p.AddFragment(f); err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
		}

		for i, col := range r.header {
			if !knownColumns[col] {
				rec.Extra[col] = get(i)
			}
		}
		return rec, nil
	}
}

// ReadAll reads all remaining records. Duplicate protein names are rejected.
func (r *Reader) ReadAll() ([]*Record, error) {
	var out []*Record
	names := make(map[string]int)
	for {
		rec, err := r.Next()
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return out, nil
		}
		if prev, ok := names[rec.Protein.Name]; ok {
			return nil, fmt.Errorf("line %d: duplicate protein name %q (first on line %d)", rec.Line, rec.Protein.Name, prev)
		}
		names[rec.Protein.Name] = rec.Line
		out = append(out, rec)
	}
}

// Close closes the underlying file, if any.
func (r *Reader) Close() error {
	if r.gzipReader != nil {
		r.gzipReader.Close()
	}
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
