// Package fs implements a filesystem-backed Resource Provider rooted at a
// single directory.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rpellegrini/webserve/pkg/resource"
)

// categoryByExtension is the closed set of servable extensions. Existence is
// checked before the extension so a missing file is always 404, never 415.
var categoryByExtension = map[string]resource.Category{
	".html": resource.CategoryHTML,
	".txt":  resource.CategoryBinary,
	".png":  resource.CategoryBinary,
	".jpg":  resource.CategoryBinary,
	".jpeg": resource.CategoryBinary,
}

// FSResourceStore serves files from a root directory on the local
// filesystem. Reads are stateless, so the store is safe for concurrent use.
type FSResourceStore struct {
	root string
}

// NewFSResourceStore creates a store rooted at the given directory. The
// directory is created if it does not exist.
func NewFSResourceStore(ctx context.Context, root string) (*FSResourceStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create resource root: %w", err)
	}

	return &FSResourceStore{root: root}, nil
}

// Init implements resource.Store. The root is prepared in the constructor,
// so Init only revalidates that it is still a directory.
func (s *FSResourceStore) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("resource root unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("resource root %q is not a directory", s.root)
	}
	return nil
}

// Fetch reads the file at relPath under the resource root.
//
// The caller guarantees relPath passed the syntactic safety checks; Fetch
// still joins with filepath.Join, which cleans the result, as a second line
// of defense rather than the primary one.
func (s *FSResourceStore) Fetch(ctx context.Context, relPath string) (*resource.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := filepath.Join(s.root, filepath.FromSlash(relPath))

	info, err := os.Stat(target)
	if err != nil || info.IsDir() {
		return nil, resource.ErrNotFound
	}

	category, ok := categoryByExtension[strings.ToLower(filepath.Ext(target))]
	if !ok {
		return nil, resource.ErrUnsupportedType
	}

	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", relPath, err)
	}

	return &resource.File{
		Name:     filepath.Base(target),
		Data:     data,
		Category: category,
	}, nil
}

// Close implements resource.Store. The filesystem store holds nothing open
// between fetches.
func (s *FSResourceStore) Close() error {
	return nil
}
