package duckdb

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file. The modification
// time is truncated to the precision DuckDB timestamps keep.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime().UTC().Truncate(time.Microsecond),
	}, nil
}

// Matches reports whether two fingerprints describe the same file contents.
func (f FileFingerprint) Matches(other FileFingerprint) bool {
	return f.Path == other.Path && f.Size == other.Size && f.ModTime.Equal(other.ModTime)
}

// RecordInput stores the fingerprint of a processed input file together with
// the number of proteins it held.
func (s *Store) RecordInput(fp FileFingerprint, proteins int) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO inputs VALUES (?, ?, ?, ?)`,
		fp.Path, fp.Size, fp.ModTime, int64(proteins))
	if err != nil {
		return fmt.Errorf("record input: %w", err)
	}
	return nil
}

// LookupInput returns the stored fingerprint for path. The boolean is false
// when the path has not been recorded.
func (s *Store) LookupInput(path string) (FileFingerprint, bool, error) {
	fp := FileFingerprint{Path: path}
	err := s.db.QueryRow(`SELECT size, mod_time FROM inputs WHERE path = ?`, path).Scan(&fp.Size, &fp.ModTime)
	if errors.Is(err, sql.ErrNoRows) {
		return FileFingerprint{}, false, nil
	}
	if err != nil {
		return FileFingerprint{}, false, fmt.Errorf("lookup input: %w", err)
	}
	fp.ModTime = fp.ModTime.UTC()
	return fp, true, nil
}
