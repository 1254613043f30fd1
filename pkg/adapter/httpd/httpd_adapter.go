// Package httpd implements the HTTP/1.1 protocol adapter: a raw TCP listener
// feeding a fixed pool of worker goroutines, each running the per-connection
// session loop.
//
// The accept loop is the only sender on the connection queue. Handoff to the
// pool is non-blocking: when all workers are busy and the queue is full, the
// new connection is answered with 503 Service Unavailable and closed instead
// of waiting, so the listener never stalls and the kernel backlog never
// silently absorbs load the server cannot serve.
package httpd

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rpellegrini/webserve/internal/logger"
	"github.com/rpellegrini/webserve/pkg/httpmsg"
	"github.com/rpellegrini/webserve/pkg/resource"
	"github.com/rpellegrini/webserve/pkg/security"
	"github.com/rpellegrini/webserve/pkg/upload"
)

// serverName is the Server header value stamped on every response.
const serverName = "webserve"

// HTTPAdapter serves HTTP/1.1 over raw TCP with a fixed worker pool.
//
// Thread safety: Serve runs the accept loop on the calling goroutine and the
// workers on their own; all shared state is the connection queue, the
// shutdown channel, and atomics/sync.Map, so no additional locking is
// needed. Stop may be called from any goroutine.
type HTTPAdapter struct {
	config    Config
	resources resource.Store
	uploads   upload.Store

	// policy is built in Serve once the listener's actual port is known and
	// is read-only afterwards.
	policy security.Policy

	listener net.Listener
	port     atomic.Int32

	queue   chan net.Conn
	workers sync.WaitGroup

	shutdown     chan struct{}
	shutdownOnce sync.Once

	// sessionCtx is cancelled on shutdown so in-flight store operations
	// observe it.
	sessionCtx    context.Context
	cancelSession context.CancelFunc

	connCount   atomic.Int32
	activeConns sync.Map // remote addr -> net.Conn
}

// NewHTTPAdapter creates an HTTP adapter from the given configuration,
// applying defaults to unset fields.
func NewHTTPAdapter(config Config) (*HTTPAdapter, error) {
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid HTTP adapter configuration: %w", err)
	}

	return &HTTPAdapter{
		config:   config,
		shutdown: make(chan struct{}),
	}, nil
}

// SetStores implements adapter.Adapter.
func (s *HTTPAdapter) SetStores(resources resource.Store, uploads upload.Store) {
	s.resources = resources
	s.uploads = uploads
}

// Protocol implements adapter.Adapter.
func (s *HTTPAdapter) Protocol() string {
	return "HTTP"
}

// Port returns the actual listening port once Serve has bound the listener,
// and the configured port before that.
func (s *HTTPAdapter) Port() int {
	if p := s.port.Load(); p != 0 {
		return int(p)
	}
	return s.config.Port
}

// GetActiveConnections reports how many connections are currently being
// served by workers.
func (s *HTTPAdapter) GetActiveConnections() int32 {
	return s.connCount.Load()
}

// Serve binds the listener, starts the worker pool and runs the accept loop
// until the context is cancelled or Stop is called. It returns nil after a
// clean graceful shutdown and an error when in-flight connections had to be
// force-closed.
func (s *HTTPAdapter) Serve(ctx context.Context) error {
	if s.resources == nil || s.uploads == nil {
		return fmt.Errorf("stores not set; call SetStores before Serve")
	}

	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener

	actualPort := listener.Addr().(*net.TCPAddr).Port
	portStr := strconv.Itoa(actualPort)
	s.policy = security.NewPolicy(
		net.JoinHostPort(s.config.Host, portStr),
		"localhost:"+portStr,
		"127.0.0.1:"+portStr,
		s.config.DeniedPaths,
	)

	s.sessionCtx, s.cancelSession = context.WithCancel(context.Background())
	defer s.cancelSession()

	s.queue = make(chan net.Conn, s.config.Backlog)
	for i := 0; i < s.config.Workers; i++ {
		s.workers.Add(1)
		go s.worker(i + 1)
	}

	// Published last: a nonzero Port() means the pool and policy are ready.
	s.port.Store(int32(actualPort))

	logger.Info("HTTP server listening on %s (%d workers, backlog %d)",
		listener.Addr(), s.config.Workers, s.config.Backlog)

	go func() {
		select {
		case <-ctx.Done():
			s.initiateShutdown()
		case <-s.shutdown:
		}
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				logger.Debug("Accept loop exiting: shutdown in progress")
				close(s.queue)
				return s.awaitWorkers()
			default:
				logger.Warn("Failed to accept connection: %v", err)
				continue
			}
		}

		select {
		case s.queue <- conn:
		default:
			s.rejectBusy(conn)
		}
	}
}

// Stop initiates graceful shutdown and waits for the workers, bounded by the
// given context.
func (s *HTTPAdapter) Stop(ctx context.Context) error {
	s.initiateShutdown()

	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.forceCloseConnections()
		return fmt.Errorf("HTTP adapter stop timed out: %w", ctx.Err())
	}
}

// worker drains the connection queue until it is closed, running one session
// at a time.
func (s *HTTPAdapter) worker(id int) {
	defer s.workers.Done()

	for conn := range s.queue {
		key := conn.RemoteAddr().String()
		s.activeConns.Store(key, conn)
		active := s.connCount.Add(1)
		logger.Debug("Worker %d picked up connection from %s (active: %d)", id, key, active)

		session := newHTTPConnection(s, conn)
		session.Serve(s.sessionCtx)

		s.activeConns.Delete(key)
		s.connCount.Add(-1)
	}
}

// initiateShutdown closes the shutdown channel, the listener and the session
// context exactly once. The accept loop observes the closed listener, closes
// the queue, and workers drain what was already accepted.
func (s *HTTPAdapter) initiateShutdown() {
	s.shutdownOnce.Do(func() {
		logger.Info("HTTP server shutting down")
		close(s.shutdown)
		if s.listener != nil {
			_ = s.listener.Close()
		}
		if s.cancelSession != nil {
			s.cancelSession()
		}
	})
}

// awaitWorkers waits for the pool to drain, force-closing whatever is still
// open when ShutdownTimeout expires.
func (s *HTTPAdapter) awaitWorkers() error {
	done := make(chan struct{})
	go func() {
		s.workers.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("HTTP server shut down cleanly")
		return nil
	case <-time.After(s.config.ShutdownTimeout):
		forced := s.forceCloseConnections()
		s.workers.Wait()
		return fmt.Errorf("graceful shutdown timed out; force-closed %d connections", forced)
	}
}

// forceCloseConnections closes every connection still tracked as active and
// returns how many were closed.
func (s *HTTPAdapter) forceCloseConnections() int {
	closed := 0
	s.activeConns.Range(func(key, value any) bool {
		if conn, ok := value.(net.Conn); ok {
			logger.Warn("Force-closing connection from %v", key)
			_ = conn.Close()
			closed++
		}
		return true
	})
	return closed
}

// rejectBusy answers a connection the pool cannot absorb with 503 and closes
// it. The Retry-After hint matches the expected drain time of a full queue.
func (s *HTTPAdapter) rejectBusy(conn net.Conn) {
	defer conn.Close()

	logger.Warn("Connection queue full, rejecting %s with 503", conn.RemoteAddr())

	resp := httpmsg.NewResponse(httpmsg.StatusServiceUnavailable)
	resp.SetHeader("Date", httpmsg.HTTPDate(time.Now()))
	resp.SetHeader("Server", serverName)
	resp.SetHeader("Retry-After", "5")
	resp.SetBody(nil)
	resp.SetHeader("Connection", "close")

	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if err := resp.Write(conn); err != nil {
		logger.Debug("Failed to write 503 to %s: %v", conn.RemoteAddr(), err)
	}
}
