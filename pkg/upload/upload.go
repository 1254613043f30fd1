// Package upload defines the Upload Store contract: persist a request
// payload under a generated collision-free name and report the logical path
// clients can quote back.
package upload

import "context"

// Store persists uploaded payloads.
//
// Implementations must generate unique names without any cross-thread
// coordination: concurrent saves from different workers must never collide.
type Store interface {
	// Init prepares the store for use.
	Init(ctx context.Context) error

	// Save persists the payload bytes verbatim and returns the logical path
	// of the stored file (e.g. "/uploads/upload_20240309_170405_1a2b3c4d.json").
	Save(ctx context.Context, payload []byte) (string, error)

	// Close releases any held resources.
	Close() error
}
