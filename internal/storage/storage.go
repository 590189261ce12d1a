package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store saves uploaded files (listing cover images) and returns the public
// URL to serve them from.
type Store interface {
	Save(ctx context.Context, objectName, contentType string, r io.Reader) (string, error)
}

// LocalStore writes files under a directory served as static content. It is
// the development default when no GCS bucket is configured.
type LocalStore struct {
	Dir     string
	BaseURL string
}

func NewLocalStore(dir, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir %s: %w", dir, err)
	}
	return &LocalStore{Dir: dir, BaseURL: baseURL}, nil
}

func (s *LocalStore) Save(_ context.Context, objectName, _ string, r io.Reader) (string, error) {
	path := filepath.Join(s.Dir, filepath.Base(objectName))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return s.BaseURL + "/" + filepath.Base(objectName), nil
}
