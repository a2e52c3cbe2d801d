package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	appconfig "github.com/freshgreens/ordering-backend/internal/config"
)

func TestNew_ConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     appconfig.S3StorageConfig
		wantErr bool
	}{
		{
			name:    "missing bucket",
			cfg:     appconfig.S3StorageConfig{Region: "eu-central-1"},
			wantErr: true,
		},
		{
			name:    "missing region",
			cfg:     appconfig.S3StorageConfig{Bucket: "product-photos"},
			wantErr: true,
		},
		{
			name: "static auth without keys",
			cfg: appconfig.S3StorageConfig{
				Bucket:     "product-photos",
				Region:     "eu-central-1",
				AuthMethod: "static",
			},
			wantErr: true,
		},
		{
			name: "unknown auth method",
			cfg: appconfig.S3StorageConfig{
				Bucket:     "product-photos",
				Region:     "eu-central-1",
				AuthMethod: "kerberos",
			},
			wantErr: true,
		},
		{
			name: "static auth with custom endpoint",
			cfg: appconfig.S3StorageConfig{
				Bucket:          "product-photos",
				Region:          "eu-central-1",
				AuthMethod:      "static",
				AccessKeyID:     "minio",
				SecretAccessKey: "minio-secret",
				Endpoint:        "http://localhost:9000",
			},
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(&tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("New() = nil error, want validation error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if s == nil {
				t.Error("New() returned nil storage")
			}
		})
	}
}

func TestNew_DefaultAuth(t *testing.T) {
	// Default auth resolves credentials from the environment; in CI that may
	// fail or produce no-op credentials. Only the absence of a panic matters.
	_, _ = New(&appconfig.S3StorageConfig{
		Bucket:     "product-photos",
		Region:     "eu-central-1",
		AuthMethod: "default",
	})
}

// fakeBucket is an in-memory object store behind a minimal path-style S3 REST
// facade, enough for the SDK calls the backend issues.
type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	meta    map[string]map[string]string
}

func (b *fakeBucket) handle(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")

	idx := strings.IndexByte(path, '/')
	if idx < 0 {
		// HeadBucket / CreateBucket
		if r.Method == http.MethodHead || r.Method == http.MethodPut {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	key := path[idx+1:]

	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		meta := map[string]string{}
		for hk, hv := range r.Header {
			lk := strings.ToLower(hk)
			if strings.HasPrefix(lk, "x-amz-meta-") && len(hv) > 0 {
				meta[strings.TrimPrefix(lk, "x-amz-meta-")] = hv[0]
			}
		}
		b.mu.Lock()
		b.objects[key] = data
		b.meta[key] = meta
		b.mu.Unlock()
		w.Header().Set("ETag", `"fake-etag"`)
		w.WriteHeader(http.StatusOK)

	case http.MethodGet:
		b.mu.Lock()
		data, ok := b.objects[key]
		b.mu.Unlock()
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `<?xml version="1.0"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
		w.Header().Set("ETag", `"fake-etag"`)
		w.WriteHeader(http.StatusOK)
		w.Write(data)

	case http.MethodHead:
		b.mu.Lock()
		data, ok := b.objects[key]
		metaMap := b.meta[key]
		b.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
		w.Header().Set("Last-Modified", time.Now().UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT"))
		w.Header().Set("ETag", `"fake-etag"`)
		for mk, mv := range metaMap {
			w.Header().Set("x-amz-meta-"+mk, mv)
		}
		w.WriteHeader(http.StatusOK)

	case http.MethodDelete:
		b.mu.Lock()
		delete(b.objects, key)
		delete(b.meta, key)
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newFakeS3(t *testing.T) *S3Storage {
	t.Helper()

	bucket := &fakeBucket{
		objects: map[string][]byte{},
		meta:    map[string]map[string]string{},
	}
	srv := httptest.NewServer(http.HandlerFunc(bucket.handle))
	t.Cleanup(srv.Close)

	s, err := New(&appconfig.S3StorageConfig{
		Bucket:          "product-photos",
		Region:          "eu-central-1",
		AuthMethod:      "static",
		AccessKeyID:     "test-access-key",
		SecretAccessKey: "test-secret-key",
		Endpoint:        srv.URL,
	})
	if err != nil {
		t.Fatalf("New() against fake bucket: %v", err)
	}
	return s
}

// photoJPEG is a stand-in for uploaded image bytes.
var photoJPEG = []byte("\xff\xd8\xff\xe0 fake jpeg body")

func TestUploadAndDownload(t *testing.T) {
	s := newFakeS3(t)
	ctx := context.Background()

	const key = "photos/products/prod-1.jpg"
	result, err := s.Upload(ctx, key, bytes.NewReader(photoJPEG), int64(len(photoJPEG)))
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if result.Path != key {
		t.Errorf("Path = %q, want %q", result.Path, key)
	}
	if result.Size != int64(len(photoJPEG)) {
		t.Errorf("Size = %d, want %d", result.Size, len(photoJPEG))
	}
	if len(result.Checksum) != 64 {
		t.Errorf("Checksum = %q, want 64-char SHA256 hex", result.Checksum)
	}

	rc, err := s.Download(ctx, key)
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, photoJPEG) {
		t.Errorf("Download() returned %d bytes that differ from the upload", len(got))
	}
}

func TestUpload_ChecksumIsDeterministic(t *testing.T) {
	s := newFakeS3(t)
	ctx := context.Background()

	r1, err := s.Upload(ctx, "photos/products/a.jpg", bytes.NewReader(photoJPEG), int64(len(photoJPEG)))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	r2, err := s.Upload(ctx, "photos/products/b.jpg", bytes.NewReader(photoJPEG), int64(len(photoJPEG)))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if r1.Checksum != r2.Checksum {
		t.Errorf("same bytes produced different checksums: %q vs %q", r1.Checksum, r2.Checksum)
	}
}

func TestDownload_NotFound(t *testing.T) {
	s := newFakeS3(t)

	if _, err := s.Download(context.Background(), "photos/products/ghost.jpg"); err == nil {
		t.Error("Download() = nil error for missing key")
	}
}

func TestDelete_RemovesObject(t *testing.T) {
	s := newFakeS3(t)
	ctx := context.Background()

	const key = "photos/products/prod-9.png"
	if _, err := s.Upload(ctx, key, bytes.NewReader(photoJPEG), int64(len(photoJPEG))); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if ok, _ := s.Exists(ctx, key); ok {
		t.Error("Exists = true after Delete, want false")
	}
}

func TestExists(t *testing.T) {
	s := newFakeS3(t)
	ctx := context.Background()

	if ok, err := s.Exists(ctx, "photos/products/nope.jpg"); err != nil || ok {
		t.Errorf("Exists(missing) = %v, %v, want false, nil", ok, err)
	}

	if _, err := s.Upload(ctx, "photos/products/yes.jpg", strings.NewReader("x"), 1); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if ok, err := s.Exists(ctx, "photos/products/yes.jpg"); err != nil || !ok {
		t.Errorf("Exists(present) = %v, %v, want true, nil", ok, err)
	}
}

func TestGetMetadata(t *testing.T) {
	s := newFakeS3(t)
	ctx := context.Background()

	const key = "photos/products/prod-2.webp"
	uploaded, err := s.Upload(ctx, key, bytes.NewReader(photoJPEG), int64(len(photoJPEG)))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	meta, err := s.GetMetadata(ctx, key)
	if err != nil {
		t.Fatalf("GetMetadata() error: %v", err)
	}
	if meta.Path != key {
		t.Errorf("Path = %q, want %q", meta.Path, key)
	}
	if meta.Size != int64(len(photoJPEG)) {
		t.Errorf("Size = %d, want %d", meta.Size, len(photoJPEG))
	}
	if meta.Checksum != uploaded.Checksum {
		t.Errorf("Checksum = %q, want %q from upload", meta.Checksum, uploaded.Checksum)
	}
}

func TestGetMetadata_NotFound(t *testing.T) {
	s := newFakeS3(t)

	if _, err := s.GetMetadata(context.Background(), "photos/products/ghost.jpg"); err == nil {
		t.Error("GetMetadata() = nil error for missing key")
	}
}

func TestGetURL(t *testing.T) {
	s := newFakeS3(t)
	ctx := context.Background()

	if _, err := s.GetURL(ctx, "photos/products/ghost.jpg", time.Hour); err == nil {
		t.Error("GetURL() = nil error for missing key")
	}

	const key = "photos/products/prod-3.jpg"
	if _, err := s.Upload(ctx, key, bytes.NewReader(photoJPEG), int64(len(photoJPEG))); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	url, err := s.GetURL(ctx, key, time.Hour)
	if err != nil {
		t.Fatalf("GetURL() error: %v", err)
	}
	if !strings.Contains(url, key) {
		t.Errorf("GetURL() = %q, want presigned URL containing the key", url)
	}
}

func TestEnsureBucket(t *testing.T) {
	s := newFakeS3(t)

	// The fake answers bucket-level HEAD with 200, so no CreateBucket follows.
	if err := s.EnsureBucket(context.Background()); err != nil {
		t.Fatalf("EnsureBucket() error: %v", err)
	}
}
