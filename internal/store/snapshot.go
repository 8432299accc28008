package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/couchcryptid/crime-zone-api/internal/domain"
)

// snapshotFile is the on-disk snapshot format. The flat record list keeps the
// file diffable and lets any collaborator with a JSON parser read the table.
type snapshotFile struct {
	Meta    Meta                 `json:"meta"`
	Records []domain.CrimeRecord `json:"records"`
}

// SaveFile persists the current snapshot to path. The write goes through a
// temp file and rename so a crash mid-write never leaves a truncated
// snapshot behind.
func (s *Store) SaveFile(path string) error {
	data, err := json.MarshalIndent(snapshotFile{Meta: s.Meta(), Records: s.Records()}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("swap snapshot file: %w", err)
	}
	return nil
}

// LoadFile replaces the table with a previously persisted snapshot.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	var file snapshotFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	s.Replace(file.Records, file.Meta)
	return nil
}
