// Package storage defines the blob store abstraction used to publish run
// artifacts (the chart image and the dataset file).
package storage

import (
	"context"
	"io"
)

// BlobStore writes one artifact and returns a URI describing where it
// landed.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)
}
