// Package resource defines the Resource Provider contract: given a validated
// root-relative path, return the file bytes and their content category. The
// connection engine only ever reads files through this interface.
package resource

import (
	"context"
	"errors"
)

// ErrNotFound reports that no servable file exists at the requested path.
var ErrNotFound = errors.New("resource not found")

// ErrUnsupportedType reports that a file exists but its extension is not one
// the server is willing to serve.
var ErrUnsupportedType = errors.New("unsupported resource type")

// Category tells the session how to present a fetched file.
type Category int

const (
	// CategoryHTML is rendered inline as text/html; charset=utf-8.
	CategoryHTML Category = iota

	// CategoryBinary is delivered as an application/octet-stream download
	// with a Content-Disposition attachment header.
	CategoryBinary
)

// File is one fetched resource.
type File struct {
	// Name is the base filename, used for the download attachment header.
	Name string

	// Data is the complete file content.
	Data []byte

	// Category selects inline versus download presentation.
	Category Category
}

// Store provides read access to servable files.
//
// Implementations must be safe for concurrent use: every worker thread
// fetches through the same Store.
type Store interface {
	// Init prepares the store for use.
	Init(ctx context.Context) error

	// Fetch returns the file at the given root-relative path, ErrNotFound
	// when it does not exist, or ErrUnsupportedType when its extension is
	// not servable. Callers must pass already-validated paths.
	Fetch(ctx context.Context, relPath string) (*File, error)

	// Close releases any held resources.
	Close() error
}
