package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile writes a YAML config into a temp dir and returns its path.
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, ""))
	require.NoError(t, err)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stdout", cfg.Logging.Output)

	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)

	assert.Equal(t, "filesystem", cfg.Resources.Type)
	assert.Equal(t, "resources", cfg.Resources.Filesystem["path"])
	assert.Equal(t, "filesystem", cfg.Uploads.Type)
	assert.Equal(t, "resources/uploads", cfg.Uploads.Filesystem["path"])

	http := cfg.Adapters.HTTP
	assert.Equal(t, "127.0.0.1", http.Host)
	assert.Equal(t, 8080, http.Port)
	assert.Equal(t, 10, http.Workers)
	assert.Equal(t, 50, http.Backlog)
	assert.Equal(t, 100, http.MaxRequestsPerConn)
	assert.Equal(t, 30*time.Second, http.IdleTimeout)
	assert.Equal(t, "/upload", http.UploadPath)
	assert.Equal(t, []string{"/config", "/.env", "/secret.txt"}, http.DeniedPaths)
}

func TestLoadFromFile(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, `
logging:
  level: debug
  format: json

resources:
  type: memory

adapters:
  http:
    port: 9090
    workers: 4
    upload_path: /api/upload
`))
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.Logging.Level, "level must be normalized to uppercase")
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "memory", cfg.Resources.Type)
	assert.Equal(t, 9090, cfg.Adapters.HTTP.Port)
	assert.Equal(t, 4, cfg.Adapters.HTTP.Workers)
	assert.Equal(t, "/api/upload", cfg.Adapters.HTTP.UploadPath)

	// Unset fields still receive defaults
	assert.Equal(t, 50, cfg.Adapters.HTTP.Backlog)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("WEBSERVE_LOGGING_LEVEL", "warn")

	cfg, err := Load(writeConfigFile(t, "logging:\n  level: info\n"))
	require.NoError(t, err)

	assert.Equal(t, "WARN", cfg.Logging.Level)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "BadLogLevel",
			yaml: "logging:\n  level: verbose\n",
		},
		{
			name: "BadResourceStoreType",
			yaml: "resources:\n  type: redis\n",
		},
		{
			name: "PortOutOfRange",
			yaml: "adapters:\n  http:\n    port: 70000\n",
		},
		{
			name: "UploadPathWithoutSlash",
			yaml: "adapters:\n  http:\n    upload_path: upload\n",
		},
		{
			name: "UploadPathInDenyList",
			yaml: "adapters:\n  http:\n    denied_paths: [\"/upload\"]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfigFile(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
