// package storage persists uploaded images and returns the public URL they are served from.
package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/desertthunder/mixtape/internal/shared"
)

// Storage stores blobs by name and removes them by the URL Upload returned.
type Storage interface {
	// Upload stores the contents of r under name and returns its public URL.
	Upload(ctx context.Context, name string, r io.Reader) (string, error)
	// Remove deletes the blob previously returned at url.
	Remove(ctx context.Context, url string) error
}

// Backends
const (
	BackendLocal      = "local"
	BackendCloudinary = "cloudinary"
)

// New builds the [Storage] selected by cfg.Backend.
func New(cfg shared.StorageConfig) (Storage, error) {
	switch cfg.Backend {
	case BackendLocal, "":
		return NewLocalStorage(cfg.LocalDir, cfg.BaseURL)
	case BackendCloudinary:
		return NewCloudinaryStorage(cfg.CloudinaryURL, cfg.Folder)
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", shared.ErrInvalidConfig, cfg.Backend)
	}
}
