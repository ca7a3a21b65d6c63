// Package prefs is the device-local key-value store. It holds exactly one
// entry: the last subject the user selected, read back as a fallback when the
// quiz screen is entered without an explicit subject.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store defines the device-local preference operations.
type Store interface {
	// LastSubject returns the stored subject and whether one is set.
	LastSubject() (string, bool)
	SetLastSubject(subject string) error
}

type fileData struct {
	LastSubject string `json:"lastSubject"`
}

// FileStore implements Store as a small JSON file.
type FileStore struct {
	mu   sync.Mutex
	path string
	data fileData
}

// DefaultPath returns the preference file location under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "desafioconcurso", "prefs.json"), nil
}

// NewFileStore opens (or lazily creates) the preference file at path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("prefs path cannot be empty")
	}
	s := &FileStore{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read prefs file '%s': %w", path, err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		// A corrupt prefs file only costs the remembered subject; start fresh.
		s.data = fileData{}
	}
	return s, nil
}

// LastSubject returns the stored subject and whether one is set.
func (s *FileStore) LastSubject() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.LastSubject, s.data.LastSubject != ""
}

// SetLastSubject persists the subject choice.
func (s *FileStore) SetLastSubject(subject string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.LastSubject = subject
	raw, err := json.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to encode prefs: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create prefs dir: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write prefs file '%s': %w", s.path, err)
	}
	return nil
}
