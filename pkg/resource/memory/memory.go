// Package memory implements an in-memory Resource Provider, used in tests
// and wherever a server should run without touching the filesystem.
package memory

import (
	"context"
	"path"
	"strings"
	"sync"

	"github.com/rpellegrini/webserve/pkg/resource"
)

var categoryByExtension = map[string]resource.Category{
	".html": resource.CategoryHTML,
	".txt":  resource.CategoryBinary,
	".png":  resource.CategoryBinary,
	".jpg":  resource.CategoryBinary,
	".jpeg": resource.CategoryBinary,
}

// MemoryResourceStore keeps servable files in a map keyed by root-relative
// path.
type MemoryResourceStore struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemoryResourceStore creates an empty in-memory store.
func NewMemoryResourceStore() *MemoryResourceStore {
	return &MemoryResourceStore{files: make(map[string][]byte)}
}

// Put registers a servable file under a root-relative path.
func (s *MemoryResourceStore) Put(relPath string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[relPath] = data
}

func (s *MemoryResourceStore) Init(ctx context.Context) error {
	return ctx.Err()
}

func (s *MemoryResourceStore) Fetch(ctx context.Context, relPath string) (*resource.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	data, ok := s.files[relPath]
	s.mu.RUnlock()

	if !ok {
		return nil, resource.ErrNotFound
	}

	category, ok := categoryByExtension[strings.ToLower(path.Ext(relPath))]
	if !ok {
		return nil, resource.ErrUnsupportedType
	}

	return &resource.File{
		Name:     path.Base(relPath),
		Data:     data,
		Category: category,
	}, nil
}

func (s *MemoryResourceStore) Close() error {
	return nil
}
