// Package adapters provides default implementations of the document ports.
package adapters

import (
	"bytes"
	"context"
	"io"
	"sync"

	dErrors "taxsync/pkg/domain-errors"
)

// MemoryBlobStore holds blobs in process memory. Used in development and
// tests; production deployments swap in an object-store adapter.
type MemoryBlobStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemoryBlobStore() *MemoryBlobStore {
	return &MemoryBlobStore{blobs: make(map[string][]byte)}
}

func (s *MemoryBlobStore) Put(_ context.Context, key string, _ string, content io.Reader) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to read blob content")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = data
	return nil
}

func (s *MemoryBlobStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[key]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "blob not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// Len reports how many blobs are stored. Test helper.
func (s *MemoryBlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
