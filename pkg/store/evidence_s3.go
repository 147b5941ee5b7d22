package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/clearfreight/tariffcore/pkg/canonicalize"
)

// S3EvidenceStore keeps evidence packs in S3, keyed by classification id and
// pack checksum. Packs are immutable; an existing key is never overwritten.
type S3EvidenceStore struct {
	client *s3.Client
	bucket string
	prefix string
}

// S3Config configures an S3EvidenceStore.
type S3Config struct {
	Bucket   string
	Region   string
	Endpoint string // custom endpoint for MinIO or LocalStack
	Prefix   string // optional key prefix, e.g. "evidence/"
}

// NewS3EvidenceStore creates an S3-backed evidence store using ambient AWS
// credentials.
func NewS3EvidenceStore(ctx context.Context, cfg S3Config) (*S3EvidenceStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("store: load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3EvidenceStore{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

func (s *S3EvidenceStore) key(classificationID, checksum string) string {
	return fmt.Sprintf("%s%s/%s.zip", s.prefix, classificationID, checksum)
}

// Put stores a pack and returns its storage key. The checksum is verified
// against the bytes before upload.
func (s *S3EvidenceStore) Put(ctx context.Context, classificationID string, pack []byte, checksum string) (string, error) {
	if got := canonicalize.HashBytes(pack); got != checksum {
		return "", fmt.Errorf("store: evidence pack checksum mismatch: got %s, want %s", got, checksum)
	}
	key := s.key(classificationID, checksum)

	// Idempotent: content-addressed keys never change.
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return key, nil
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(pack),
		ContentType: aws.String("application/zip"),
	})
	if err != nil {
		return "", fmt.Errorf("store: s3 put failed: %w", err)
	}
	return key, nil
}

// Get retrieves a pack by key.
func (s *S3EvidenceStore) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("store: s3 get failed for %s: %w", key, err)
	}
	defer func() { _ = result.Body.Close() }()
	return io.ReadAll(result.Body)
}
