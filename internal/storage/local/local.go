// Package local keeps product photos on the local filesystem. Suitable for
// development and single-node deployments; multiple API instances would need
// a shared filesystem, so production uses the s3 backend instead.
package local

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/freshgreens/ordering-backend/internal/config"
	"github.com/freshgreens/ordering-backend/internal/storage"
	"github.com/freshgreens/ordering-backend/pkg/checksum"
)

func init() {
	storage.Register("local", func(cfg *config.Config) (storage.Storage, error) {
		return New(&cfg.Storage.Local, cfg.Server.BaseURL)
	})
}

// LocalStorage implements storage.Storage over a directory tree.
type LocalStorage struct {
	basePath      string
	serveDirectly bool
	baseURL       string
}

// New creates the base directory if needed and returns the backend.
func New(cfg *config.LocalStorageConfig, serverBaseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(cfg.BasePath, 0750); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalStorage{
		basePath:      cfg.BasePath,
		serveDirectly: cfg.ServeDirectly,
		baseURL:       serverBaseURL,
	}, nil
}

// diskPath resolves a storage key to its filesystem location.
func (s *LocalStorage) diskPath(path string) string {
	return filepath.Join(s.basePath, filepath.FromSlash(path))
}

// Upload writes the file, hashing it in the same pass. A failed write leaves
// no partial file behind.
func (s *LocalStorage) Upload(ctx context.Context, path string, reader io.Reader, size int64) (*storage.UploadResult, error) {
	fullPath := s.diskPath(path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0750); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	hasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(file, hasher), reader)
	if err != nil {
		_ = os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return &storage.UploadResult{
		Path:     path,
		Size:     written,
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// Download opens the file for reading.
func (s *LocalStorage) Download(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.Open(s.diskPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete removes the file and prunes any parent directories it leaves empty.
// A missing file counts as already deleted.
func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	fullPath := s.diskPath(path)
	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	for dir := filepath.Dir(fullPath); dir != s.basePath; dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			break // not empty, stop pruning
		}
	}
	return nil
}

// GetURL links to the photo. With ServeDirectly the router mounts the base
// path under /files, so the URL points back at the API; otherwise a file://
// URL is returned for local inspection. ttl is ignored, local links don't
// expire.
func (s *LocalStorage) GetURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	exists, err := s.Exists(ctx, path)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("file not found: %s", path)
	}

	if s.serveDirectly {
		return fmt.Sprintf("%s/files/%s", s.baseURL, path), nil
	}
	return fmt.Sprintf("file://%s", s.diskPath(path)), nil
}

// Exists reports whether the file is on disk.
func (s *LocalStorage) Exists(ctx context.Context, path string) (bool, error) {
	if _, err := os.Stat(s.diskPath(path)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check file existence: %w", err)
	}
	return true, nil
}

// GetMetadata stats the file and hashes its content.
func (s *LocalStorage) GetMetadata(ctx context.Context, path string) (*storage.FileMetadata, error) {
	fullPath := s.diskPath(path)

	stat, err := os.Stat(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to get file metadata: %w", err)
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for checksum: %w", err)
	}
	defer file.Close()

	sum, err := checksum.CalculateSHA256(file)
	if err != nil {
		return nil, err
	}

	return &storage.FileMetadata{
		Path:         path,
		Size:         stat.Size(),
		Checksum:     sum,
		LastModified: stat.ModTime(),
	}, nil
}
