package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore writes artifacts as pretty-printed JSON files under a
// session directory, one file per artifact.
type FileStore struct {
	dir string
}

// NewFileStore creates the session directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes the artifact to <dir>/<kind>_<id>.json and returns the path.
func (s *FileStore) Save(kind, id string, payload interface{}) (string, error) {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal %s artifact: %w", kind, err)
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", kind, id))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s artifact: %w", kind, err)
	}
	return path, nil
}

// Load reads <dir>/<kind>_<id>.json into out.
func (s *FileStore) Load(kind, id string, out interface{}) error {
	path := filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", kind, id))
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s artifact %s: %w", kind, id, err)
	}
	return json.Unmarshal(data, out)
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error { return nil }
