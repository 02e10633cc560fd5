// Package gcs provides a BlobStore backed by Google Cloud Storage, used to
// push the rendered chart and CSV to the bucket a website serves them from.
package gcs

import (
	"context"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

// Config captures the parameters required to write to GCS.
type Config struct {
	Bucket string
	Prefix string
}

// BlobStore writes artifacts to a configured GCS bucket.
type BlobStore struct {
	client *storage.Client
	bucket string
	prefix string
}

// New creates a GCS-backed blob store around an existing client.
func New(client *storage.Client, cfg Config) (*BlobStore, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &BlobStore{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// PutObject uploads data under the configured prefix and returns the
// gs:// URI of the object.
func (s *BlobStore) PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", fmt.Errorf("object path is required")
	}
	key := path
	if s.prefix != "" {
		key = s.prefix + "/" + strings.TrimPrefix(path, "/")
	}
	writer := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	if contentType != "" {
		writer.ContentType = contentType
	}
	if _, err := io.Copy(writer, r); err != nil {
		if closeErr := writer.Close(); closeErr != nil {
			return "", fmt.Errorf("upload object: %w (close writer: %v)", err, closeErr)
		}
		return "", fmt.Errorf("upload object: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close object writer: %w", err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, key), nil
}
