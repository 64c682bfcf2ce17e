package blobstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FSStore keeps blobs as flat files in a bucket directory. Keys are content
// hashes plus extension, so they are always safe path components, but they
// are re-based anyway to keep a hostile key inside the bucket.
type FSStore struct {
	dir string
}

func NewFSStore(dir string) (*FSStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create bucket dir failed: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

func (s *FSStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("write blob %s failed: %w", key, err)
	}
	return nil
}

func (s *FSStore) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s failed: %w", key, err)
	}
	return data, nil
}

func (s *FSStore) Delete(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s failed: %w", key, err)
	}
	return nil
}

func (s *FSStore) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list bucket failed: %w", err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			keys = append(keys, e.Name())
		}
	}
	return keys, nil
}

func (s *FSStore) path(key string) string {
	return filepath.Join(s.dir, filepath.Base(key))
}
