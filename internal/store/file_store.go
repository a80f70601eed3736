// Package store provides the persistence backends for optimizer state:
// a local JSON file (authoritative), a Redis mirror for cold starts on
// new machines and run-record audit, and a layered store combining the
// two behind the optimizer's StateStore interface.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileStore persists the optimizer state blob as a JSON file on disk
type FileStore struct {
	path   string
	logger zerolog.Logger
}

// NewFileStore creates a file-backed state store at the given path
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.With().Str("component", "file_store").Logger(),
	}
}

// Load reads the state blob, returning nil when no file exists yet
func (s *FileStore) Load(ctx context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	return data, nil
}

// Save writes the state blob, creating parent directories as needed
func (s *FileStore) Save(ctx context.Context, data []byte) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	s.logger.Debug().
		Str("path", s.path).
		Int("bytes", len(data)).
		Msg("state written to disk")

	return nil
}

// Path returns the file the store writes to
func (s *FileStore) Path() string {
	return s.path
}
