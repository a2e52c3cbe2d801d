// Package storage defines the backend interface for product photos.
//
// Backends self-register with the factory from an init() in their own
// package:
//
//	func init() {
//	    storage.Register("mybackend", func(cfg *config.Config) (Storage, error) {
//	        return NewMyBackend(cfg)
//	    })
//	}
//
// cmd/server/main.go blank-imports each backend to trigger registration, so
// adding one touches nothing in the factory itself.
package storage

import (
	"context"
	"io"
	"time"
)

// Storage is implemented by every photo backend. Paths are forward-slash
// storage keys (see PhotoPath), not filesystem paths.
type Storage interface {
	// Upload stores a file and reports where it landed plus its checksum.
	Upload(ctx context.Context, path string, reader io.Reader, size int64) (*UploadResult, error)

	// Download opens the stored file for reading. Callers own the Close.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error

	// GetURL returns a link clients can fetch the photo from. Cloud backends
	// presign for ttl; the local backend ignores ttl.
	GetURL(ctx context.Context, path string, ttl time.Duration) (string, error)

	// Exists reports whether a file is present.
	Exists(ctx context.Context, path string) (bool, error)

	// GetMetadata returns size, mtime, and checksum without fetching the body.
	GetMetadata(ctx context.Context, path string) (*FileMetadata, error)
}

// UploadResult describes a stored file.
type UploadResult struct {
	Path     string // storage key the file was written under
	Size     int64  // bytes written
	Checksum string // hex SHA-256 of the content
}

// FileMetadata describes a stored file without its content.
type FileMetadata struct {
	Path         string
	Size         int64
	Checksum     string // hex SHA-256 of the content
	LastModified time.Time
}

// PhotoPath builds the canonical storage path for a product photo.
// Photos are keyed by product ID so a re-upload replaces the previous image.
func PhotoPath(productID, ext string) string {
	return "photos/products/" + productID + ext
}
