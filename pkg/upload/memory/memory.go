// Package memory implements an in-memory Upload Store for tests.
package memory

import (
	"context"
	"fmt"
	"sync"
)

// MemoryUploadStore keeps saved payloads in a map keyed by logical path.
type MemoryUploadStore struct {
	mu      sync.Mutex
	counter int
	saved   map[string][]byte
}

// NewMemoryUploadStore creates an empty in-memory store.
func NewMemoryUploadStore() *MemoryUploadStore {
	return &MemoryUploadStore{saved: make(map[string][]byte)}
}

func (s *MemoryUploadStore) Init(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryUploadStore) Save(ctx context.Context, payload []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	path := fmt.Sprintf("/uploads/upload_%06d.json", s.counter)
	s.saved[path] = append([]byte(nil), payload...)
	return path, nil
}

func (s *MemoryUploadStore) Close() error {
	return nil
}

// Get returns a saved payload by logical path.
func (s *MemoryUploadStore) Get(path string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.saved[path]
	return data, ok
}

// Len reports how many payloads have been saved.
func (s *MemoryUploadStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saved)
}
