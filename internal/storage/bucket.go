package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"herba-guide/pkg/apperrors"
	"herba-guide/pkg/config"
)

// BucketService uploads prediction photos to Google Cloud Storage and derives
// their public URLs.
type BucketService struct {
	client    *storage.Client
	bucket    string
	cdnDomain string
}

func NewBucketService(ctx context.Context, cfg *config.StorageConfig) (*BucketService, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("missing GCS bucket name")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &BucketService{
		client:    client,
		bucket:    cfg.Bucket,
		cdnDomain: cfg.CDNDomain,
	}, nil
}

// Upload writes data under key and returns the object's public URL. Failures
// are not retried.
func (s *BucketService) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return "", apperrors.NewStorage("failed to write photo to bucket", err)
	}
	if err := w.Close(); err != nil {
		return "", apperrors.NewStorage("failed to finalize photo upload", err)
	}

	return s.publicURL(key), nil
}

func (s *BucketService) Close() error {
	return s.client.Close()
}

func (s *BucketService) publicURL(key string) string {
	if s.cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", s.cdnDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key)
}
