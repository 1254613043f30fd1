package httpd

import (
	"fmt"
	"time"
)

// Config holds the HTTP adapter settings. Zero values are filled in by
// applyDefaults, so callers can construct a partial Config and let the
// adapter complete it.
type Config struct {
	// Host is the interface address the listener binds to.
	Host string `mapstructure:"host" validate:"required"`

	// Port is the TCP port. Zero means an OS-assigned ephemeral port, which
	// is what tests use.
	Port int `mapstructure:"port" validate:"min=0,max=65535"`

	// Workers is the fixed number of connection-handling goroutines.
	Workers int `mapstructure:"workers" validate:"min=1"`

	// Backlog is the capacity of the accepted-connection queue. When the
	// queue is full new connections are answered with 503 and closed.
	Backlog int `mapstructure:"backlog" validate:"min=0"`

	// MaxRequestsPerConn caps how many requests one keep-alive connection
	// may issue before the server closes it.
	MaxRequestsPerConn int `mapstructure:"max_requests_per_conn" validate:"min=1"`

	// IdleTimeout is how long a connection may sit between requests before
	// it is closed. Zero disables the timeout.
	IdleTimeout time.Duration `mapstructure:"idle_timeout" validate:"min=0"`

	// WriteTimeout bounds each response write.
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"min=0"`

	// ShutdownTimeout is how long graceful shutdown waits for in-flight
	// connections before force-closing them.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0"`

	// MaxHeaderBytes caps the request line plus headers of one request.
	MaxHeaderBytes int `mapstructure:"max_header_bytes" validate:"min=1"`

	// MaxBodyBytes caps the declared Content-Length of one request.
	MaxBodyBytes int `mapstructure:"max_body_bytes" validate:"min=1"`

	// UploadPath is the only request path that accepts POST.
	UploadPath string `mapstructure:"upload_path" validate:"required,startswith=/"`

	// DeniedPaths lists request paths rejected with 403 regardless of
	// whether a matching file exists.
	DeniedPaths []string `mapstructure:"denied_paths"`
}

// applyDefaults fills in zero-valued fields. Port is deliberately left
// alone: zero is a valid request for an ephemeral port.
func (c *Config) applyDefaults() {
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Workers <= 0 {
		c.Workers = 10
	}
	if c.Backlog <= 0 {
		c.Backlog = 50
	}
	if c.MaxRequestsPerConn <= 0 {
		c.MaxRequestsPerConn = 100
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = 30 * time.Second
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 30 * time.Second
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
	if c.MaxHeaderBytes <= 0 {
		c.MaxHeaderBytes = 8192
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
	if c.UploadPath == "" {
		c.UploadPath = "/upload"
	}
	if c.DeniedPaths == nil {
		c.DeniedPaths = []string{"/config", "/.env", "/secret.txt"}
	}
}

// validate rejects configurations that defaults cannot repair.
func (c *Config) validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if len(c.UploadPath) == 0 || c.UploadPath[0] != '/' {
		return fmt.Errorf("upload path %q must start with /", c.UploadPath)
	}
	return nil
}
