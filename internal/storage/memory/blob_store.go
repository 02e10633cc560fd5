// Package memory contains an in-memory blob store for tests.
package memory

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// BlobStore records uploaded objects for inspection.
type BlobStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

// New returns an empty memory blob store.
func New() *BlobStore {
	return &BlobStore{objects: make(map[string][]byte)}
}

// PutObject stores the object bytes under path and returns a mem:// URI.
func (s *BlobStore) PutObject(_ context.Context, path string, _ string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read object data: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = data
	return fmt.Sprintf("mem://%s", path), nil
}

// Object returns the stored bytes for path.
func (s *BlobStore) Object(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[path]
	return data, ok
}

// Len returns the number of stored objects.
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
