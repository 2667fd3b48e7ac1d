package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const profilesFile = "profiles.json"

// FileStore keeps every profile in one JSON object on disk. It serves single
// instance deployments without a database.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates the data directory if needed
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{path: filepath.Join(dataDir, profilesFile)}, nil
}

// GetProfile retrieves the profile document for a login
func (s *FileStore) GetProfile(_ context.Context, login string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		return nil, err
	}
	document, ok := profiles[login]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return document, nil
}

// SaveProfile creates or replaces the profile document for a login
func (s *FileStore) SaveProfile(_ context.Context, login string, document json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		return err
	}
	profiles[login] = document
	return s.store(profiles)
}

// DeleteProfile removes the profile document for a login
func (s *FileStore) DeleteProfile(_ context.Context, login string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profiles, err := s.load()
	if err != nil {
		return err
	}
	if _, ok := profiles[login]; !ok {
		return ErrProfileNotFound
	}
	delete(profiles, login)
	return s.store(profiles)
}

// Close is a no-op
func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) load() (map[string]json.RawMessage, error) {
	profiles := make(map[string]json.RawMessage)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return profiles, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to read profiles: %w", err)
	}
	if len(data) == 0 {
		return profiles, nil
	}

	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profiles: %w", err)
	}
	return profiles, nil
}

// store replaces the file through a rename so readers never see a partial write
func (s *FileStore) store(profiles map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode profiles: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), profilesFile+".*")
	if err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to write profiles: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
