package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/desertthunder/mixtape/internal/shared"
)

// LocalStorage writes blobs into a directory served by the HTTP server at BaseURL.
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage creates dir if needed.
func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: storage.local_dir is required", shared.ErrInvalidConfig)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Dir returns the directory uploads are written to.
func (s *LocalStorage) Dir() string { return s.dir }

// Upload writes r to dir/name and returns baseURL/name.
func (s *LocalStorage) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name = filepath.Base(name)
	if name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("%w: invalid file name", shared.ErrUploadFailed)
	}

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrUploadFailed, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("%w: %v", shared.ErrUploadFailed, err)
	}

	return s.baseURL + "/" + name, nil
}

// Remove deletes the file behind url. A file that is already gone is not an error.
func (s *LocalStorage) Remove(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if url == "" || !strings.HasPrefix(url, s.baseURL+"/") {
		return fmt.Errorf("%w: %s is not a local upload", shared.ErrRemoveFailed, url)
	}

	name := path.Base(url)
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", shared.ErrRemoveFailed, err)
	}
	return nil
}
