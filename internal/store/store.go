// Package store persists finished records as one JSON file per identifier
// and decides what a resumed run may skip.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cmorand/tmharvest/internal/record"
)

// Store writes records into a single output directory, created on demand.
type Store struct {
	dir string
}

// New returns a store rooted at dir. The directory is not created until the
// first save.
func New(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the canonical output path for id.
func (s *Store) Path(id int) string {
	return filepath.Join(s.dir, fmt.Sprintf("id_%d.json", id))
}

// AlreadyComplete reports whether a record was saved by a prior run. File
// presence is the entire resume contract; content is not validated.
func (s *Store) AlreadyComplete(id int) bool {
	_, err := os.Stat(s.Path(id))
	return err == nil
}

// Save writes the record's document to a temporary sibling and renames it
// into place. A reader never observes a partial file; a crash mid-write
// leaves at most a stale temporary, never a corrupt canonical file.
func (s *Store) Save(rec *record.Record) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", s.dir, err)
	}

	data, err := rec.Document()
	if err != nil {
		return "", err
	}

	tmp := filepath.Join(s.dir, fmt.Sprintf(".id_%d.json.part", rec.ID))
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", tmp, err)
	}

	path := s.Path(rec.ID)
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return path, nil
}
