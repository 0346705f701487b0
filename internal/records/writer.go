package records

import (
	"encoding/csv"
	"io"

	"github.com/inodb/alphafragment/internal/protein"
)

// Writer writes protein records with their compiled domains and fragments.
type Writer struct {
	w       *csv.Writer
	columns []string
	extra   []string
}

// NewWriter creates a record writer. extra lists additional columns, taken
// from each record's Extra map, written after the standard ones.
func NewWriter(w io.Writer, comma rune, extra []string) *Writer {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	return &Writer{
		w: cw,
		columns: []string{
			ColName,
			ColAccessionID,
			ColSequence,
			ColDomains,
			ColFragments,
			ColFragmentSequences,
		},
		extra: extra,
	}
}

// WriteHeader writes the header line.
func (rw *Writer) WriteHeader() error {
	return rw.w.Write(append(append([]string{}, rw.columns...), rw.extra...))
}

// Write writes a single record. Domains and fragments are taken from the
// record's protein.
func (rw *Writer) Write(rec *Record) error {
	return rw.w.Write(rw.row(rec.Protein, rec.Extra))
}

func (rw *Writer) row(p *protein.Protein, extra map[string]string) []string {
	values := []string{
		p.Name,
		p.AccessionID,
		p.Sequence,
		FormatDomains(p.Domains()),
		FormatFragments(p.Fragments()),
		FormatFragmentSequences(p),
	}
	for _, col := range rw.extra {
		values = append(values, extra[col])
	}
	return values
}

// Flush flushes any buffered data to the underlying writer.
func (rw *Writer) Flush() error {
	rw.w.Flush()
	return rw.w.Error()
}
