package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore implements ObjectStore on the local filesystem. Default mode when
// no MinIO endpoint is configured.
type FileStore struct {
	basePath string
	baseURL  string
}

// NewFileStore creates the base directory if missing. baseURL is the public
// prefix the images are served under (e.g. "/uploads").
func NewFileStore(basePath, baseURL string) (*FileStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("storage base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &FileStore{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Put writes the image bytes under the base directory.
func (f *FileStore) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	target := filepath.Join(f.basePath, safeKey(key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create sample dir: %w", err)
	}

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

// URL returns the static path the file is served under.
func (f *FileStore) URL(_ context.Context, key string, _ time.Duration) (string, error) {
	return f.baseURL + "/" + safeKey(key), nil
}

// Delete removes the stored file. Missing files are not an error.
func (f *FileStore) Delete(_ context.Context, key string) error {
	err := os.Remove(filepath.Join(f.basePath, safeKey(key)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func safeKey(key string) string {
	key = strings.ReplaceAll(key, "..", "")
	return strings.TrimLeft(filepath.Clean("/"+key), "/")
}
