//go:build gcp

package store

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/clearfreight/tariffcore/pkg/canonicalize"
)

// GCSEvidenceStore keeps evidence packs in Google Cloud Storage. Behind the
// gcp build tag so default builds do not pull the GCP client chain.
type GCSEvidenceStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// GCSConfig configures a GCSEvidenceStore.
type GCSConfig struct {
	Bucket string
	Prefix string
}

// NewGCSEvidenceStore creates a GCS-backed evidence store using application
// default credentials.
func NewGCSEvidenceStore(ctx context.Context, cfg GCSConfig) (*GCSEvidenceStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: create gcs client: %w", err)
	}
	return &GCSEvidenceStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *GCSEvidenceStore) key(classificationID, checksum string) string {
	return fmt.Sprintf("%s%s/%s.zip", s.prefix, classificationID, checksum)
}

// Put stores a pack and returns its storage key. The checksum is verified
// against the bytes before upload.
func (s *GCSEvidenceStore) Put(ctx context.Context, classificationID string, pack []byte, checksum string) (string, error) {
	if got := canonicalize.HashBytes(pack); got != checksum {
		return "", fmt.Errorf("store: evidence pack checksum mismatch: got %s, want %s", got, checksum)
	}
	key := s.key(classificationID, checksum)

	obj := s.client.Bucket(s.bucket).Object(key)
	if _, err := obj.Attrs(ctx); err == nil {
		return key, nil
	}

	w := obj.NewWriter(ctx)
	w.ContentType = "application/zip"
	if _, err := w.Write(pack); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("store: gcs write failed: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("store: gcs close failed: %w", err)
	}
	return key, nil
}

// Get retrieves a pack by key.
func (s *GCSEvidenceStore) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("store: gcs get failed for %s: %w", key, err)
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}
