// Package fs implements a filesystem-backed Upload Store writing into a
// single uploads directory.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// logicalPrefix is the path prefix reported back to clients, independent of
// where the uploads directory actually lives on disk.
const logicalPrefix = "/uploads/"

// FSUploadStore persists upload payloads as individual files. Names combine
// a UTC timestamp with a UUID fragment, so concurrent saves never collide
// and no locking is needed.
type FSUploadStore struct {
	dir string
}

// NewFSUploadStore creates a store writing into dir, creating it if needed.
func NewFSUploadStore(ctx context.Context, dir string) (*FSUploadStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads directory: %w", err)
	}

	return &FSUploadStore{dir: dir}, nil
}

// Init implements upload.Store.
func (s *FSUploadStore) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(s.dir)
	if err != nil {
		return fmt.Errorf("uploads directory unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("uploads path %q is not a directory", s.dir)
	}
	return nil
}

// Save writes the payload bytes verbatim under a generated name and returns
// the logical /uploads/ path.
func (s *FSUploadStore) Save(ctx context.Context, payload []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := generateName(time.Now())
	if err := os.WriteFile(filepath.Join(s.dir, name), payload, 0644); err != nil {
		return "", fmt.Errorf("failed to persist upload: %w", err)
	}

	return logicalPrefix + name, nil
}

// Close implements upload.Store.
func (s *FSUploadStore) Close() error {
	return nil
}

// generateName builds "upload_<UTC timestamp>_<uuid fragment>.json". The
// timestamp keeps names sortable; the UUID fragment makes them unique even
// within the same second.
func generateName(now time.Time) string {
	return fmt.Sprintf("upload_%s_%s.json",
		now.UTC().Format("20060102_150405"),
		uuid.NewString()[:8])
}
