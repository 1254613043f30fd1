package config

import (
	"strings"
	"time"
)

// ApplyDefaults sets default values for any unspecified configuration
// fields. It runs after loading from file and environment so explicit values
// are preserved and only zero values are replaced.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyResourcesDefaults(&cfg.Resources)
	applyUploadsDefaults(&cfg.Uploads)
	applyAdaptersDefaults(&cfg.Adapters)
}

// applyLoggingDefaults sets logging defaults and normalizes the level.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyServerDefaults sets server defaults.
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyResourcesDefaults sets resource store defaults.
func applyResourcesDefaults(cfg *ResourcesConfig) {
	if cfg.Type == "" {
		cfg.Type = "filesystem"
	}

	if cfg.Filesystem == nil {
		cfg.Filesystem = make(map[string]any)
	}
	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}

	if _, ok := cfg.Filesystem["path"]; !ok {
		cfg.Filesystem["path"] = "resources"
	}
}

// applyUploadsDefaults sets upload store defaults.
func applyUploadsDefaults(cfg *UploadsConfig) {
	if cfg.Type == "" {
		cfg.Type = "filesystem"
	}

	if cfg.Filesystem == nil {
		cfg.Filesystem = make(map[string]any)
	}
	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}

	if _, ok := cfg.Filesystem["path"]; !ok {
		cfg.Filesystem["path"] = "resources/uploads"
	}
}

// applyAdaptersDefaults sets adapter defaults.
func applyAdaptersDefaults(cfg *AdaptersConfig) {
	http := &cfg.HTTP

	if http.Host == "" {
		http.Host = "127.0.0.1"
	}
	if http.Port == 0 {
		http.Port = 8080
	}
	if http.Workers <= 0 {
		http.Workers = 10
	}
	if http.Backlog <= 0 {
		http.Backlog = 50
	}
	if http.MaxRequestsPerConn <= 0 {
		http.MaxRequestsPerConn = 100
	}
	if http.IdleTimeout <= 0 {
		http.IdleTimeout = 30 * time.Second
	}
	if http.WriteTimeout <= 0 {
		http.WriteTimeout = 30 * time.Second
	}
	if http.ShutdownTimeout <= 0 {
		http.ShutdownTimeout = 30 * time.Second
	}
	if http.MaxHeaderBytes <= 0 {
		http.MaxHeaderBytes = 8192
	}
	if http.MaxBodyBytes <= 0 {
		http.MaxBodyBytes = 1 << 20
	}
	if http.UploadPath == "" {
		http.UploadPath = "/upload"
	}
	if http.DeniedPaths == nil {
		http.DeniedPaths = []string{"/config", "/.env", "/secret.txt"}
	}
}
