package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileSnapshot stores the ledger snapshot as a single JSON file on disk.
type FileSnapshot struct {
	path string
}

func NewFileSnapshot(path string) (*FileSnapshot, error) {
	if path == "" {
		return nil, fmt.Errorf("snapshot file path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}
	return &FileSnapshot{path: path}, nil
}

func (s *FileSnapshot) Read(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", s.path, err)
	}
	return data, nil
}

// Write replaces the snapshot. The file is written to a sibling temp file and
// renamed into place so a crash mid-write never leaves a truncated snapshot.
func (s *FileSnapshot) Write(_ context.Context, data []byte) error {
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace snapshot %s: %w", s.path, err)
	}
	return nil
}

func (s *FileSnapshot) Delete(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete snapshot %s: %w", s.path, err)
	}
	return nil
}

func (s *FileSnapshot) Close() error { return nil }
