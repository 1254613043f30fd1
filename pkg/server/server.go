// Package server orchestrates the lifecycle of protocol adapters sharing the
// same resource and upload stores.
package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rpellegrini/webserve/internal/logger"
	"github.com/rpellegrini/webserve/pkg/adapter"
	"github.com/rpellegrini/webserve/pkg/resource"
	"github.com/rpellegrini/webserve/pkg/upload"
)

// stopTimeout bounds each adapter's Stop call during shutdown.
const stopTimeout = 30 * time.Second

// WebServer manages the lifecycle of the registered protocol adapters. All
// adapters share the same backend stores, so every protocol sees the same
// files.
//
// Lifecycle:
//  1. Creation: New() with stores
//  2. Registration: AddAdapter() for each protocol
//  3. Startup: Serve() starts all adapters concurrently
//  4. Shutdown: context cancellation stops all adapters gracefully
//
// Thread safety: AddAdapter may be called concurrently before Serve; Serve
// must be called exactly once.
type WebServer struct {
	// resources is the shared read-side store for all adapters
	resources resource.Store

	// uploads is the shared write-side store for all adapters
	uploads upload.Store

	// adapters contains all registered protocol adapters
	adapters []adapter.Adapter

	// mu protects the adapters slice and the served flag
	mu     sync.Mutex
	served bool
}

// New creates a server around the provided stores. The stores are shared
// across every adapter added to this server.
//
// Panics if either store is nil: that is a programmer error, not a runtime
// condition.
func New(resources resource.Store, uploads upload.Store) *WebServer {
	if resources == nil {
		panic("resource store cannot be nil")
	}
	if uploads == nil {
		panic("upload store cannot be nil")
	}

	return &WebServer{
		resources: resources,
		uploads:   uploads,
	}
}

// AddAdapter registers a protocol adapter, injecting the shared stores.
// Duplicate protocols and port conflicts are rejected. Panics when called
// after Serve.
func (s *WebServer) AddAdapter(a adapter.Adapter) error {
	if a == nil {
		panic("adapter cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.served {
		panic("cannot add adapter after Serve() has been called")
	}

	protocol := a.Protocol()
	port := a.Port()

	for _, existing := range s.adapters {
		if existing.Protocol() == protocol {
			return fmt.Errorf("adapter for protocol %s already registered", protocol)
		}
		if port != 0 && existing.Port() == port {
			return fmt.Errorf("port %d already in use by %s adapter", port, existing.Protocol())
		}
	}

	a.SetStores(s.resources, s.uploads)
	s.adapters = append(s.adapters, a)

	logger.Info("Registered %s adapter on port %d", protocol, port)
	return nil
}

// Serve starts all registered adapters and blocks until the context is
// cancelled or an adapter fails.
//
// On shutdown, adapters receive Stop() in reverse registration order, each
// bounded by stopTimeout, and Serve waits for all of them to finish before
// returning. It returns context.Canceled after a signal-triggered shutdown
// and the adapter's error when one failed.
func (s *WebServer) Serve(ctx context.Context) error {
	s.mu.Lock()
	if s.served {
		s.mu.Unlock()
		panic("Serve() has already been called on this server instance")
	}
	s.served = true

	if len(s.adapters) == 0 {
		s.mu.Unlock()
		return fmt.Errorf("no adapters registered; call AddAdapter() before Serve()")
	}
	adapters := make([]adapter.Adapter, len(s.adapters))
	copy(adapters, s.adapters)
	s.mu.Unlock()

	logger.Info("Starting webserve with %d adapter(s)", len(adapters))

	// Buffered so adapter goroutines never block on reporting failures
	errChan := make(chan adapterError, len(adapters))

	var wg sync.WaitGroup
	for _, adp := range adapters {
		wg.Add(1)
		go func(a adapter.Adapter) {
			defer wg.Done()

			protocol := a.Protocol()
			logger.Info("Starting %s adapter on port %d", protocol, a.Port())

			if err := a.Serve(ctx); err != nil {
				if err != context.Canceled && ctx.Err() == nil {
					logger.Error("%s adapter failed: %v", protocol, err)
					errChan <- adapterError{protocol: protocol, err: err}
					return
				}
				logger.Debug("%s adapter stopped: %v", protocol, err)
				return
			}
			logger.Info("%s adapter stopped", protocol)
		}(adp)
	}

	var shutdownErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received (reason: %v)", ctx.Err())
		s.stopAllAdapters(adapters)
		shutdownErr = ctx.Err()

	case adapterErr := <-errChan:
		logger.Error("Adapter %s failed, stopping all adapters", adapterErr.protocol)
		s.stopAllAdapters(adapters)
		shutdownErr = fmt.Errorf("%s adapter error: %w", adapterErr.protocol, adapterErr.err)
	}

	wg.Wait()
	logger.Info("webserve stopped")

	return shutdownErr
}

// adapterError pairs an adapter protocol name with its failure.
type adapterError struct {
	protocol string
	err      error
}

// stopAllAdapters stops adapters in reverse registration order, each with
// its own timeout context.
func (s *WebServer) stopAllAdapters(adapters []adapter.Adapter) {
	for i := len(adapters) - 1; i >= 0; i-- {
		a := adapters[i]

		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		if err := a.Stop(stopCtx); err != nil {
			logger.Warn("%s adapter did not stop cleanly: %v", a.Protocol(), err)
		}
		cancel()
	}
}
