// Package adapter defines the interface between the server orchestrator and
// protocol front-ends. Every adapter owns its listener and connection
// handling; the shared stores are injected before Serve is called.
package adapter

import (
	"context"

	"github.com/rpellegrini/webserve/pkg/resource"
	"github.com/rpellegrini/webserve/pkg/upload"
)

// Adapter is a protocol-specific server that can be started and stopped by
// the orchestrator.
type Adapter interface {
	// Serve starts the adapter and blocks until the context is cancelled or
	// an unrecoverable error occurs.
	Serve(ctx context.Context) error

	// Stop initiates graceful shutdown and waits for it, bounded by ctx.
	Stop(ctx context.Context) error

	// SetStores injects the shared resource and upload stores. Called
	// exactly once, before Serve.
	SetStores(resources resource.Store, uploads upload.Store)

	// Protocol returns the protocol name used in logs (e.g. "HTTP").
	Protocol() string

	// Port returns the port the adapter listens on.
	Port() int
}
