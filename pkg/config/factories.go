package config

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"github.com/rpellegrini/webserve/pkg/resource"
	resourceFs "github.com/rpellegrini/webserve/pkg/resource/fs"
	resourceMemory "github.com/rpellegrini/webserve/pkg/resource/memory"
	"github.com/rpellegrini/webserve/pkg/upload"
	uploadFs "github.com/rpellegrini/webserve/pkg/upload/fs"
	uploadMemory "github.com/rpellegrini/webserve/pkg/upload/memory"
)

// CreateResourceStore creates a resource store based on configuration.
//
// The Type field selects the implementation; the matching type-specific map
// is decoded into the store's own option struct and passed to its
// constructor.
//
// Supported types:
//   - "filesystem": serves files from a local directory (pkg/resource/fs)
//   - "memory": serves files registered in memory (pkg/resource/memory)
func CreateResourceStore(ctx context.Context, cfg *ResourcesConfig) (resource.Store, error) {
	switch cfg.Type {
	case "filesystem":
		return createFilesystemResourceStore(ctx, cfg.Filesystem)
	case "memory":
		return resourceMemory.NewMemoryResourceStore(), nil
	default:
		return nil, fmt.Errorf("unknown resource store type: %q", cfg.Type)
	}
}

// createFilesystemResourceStore creates a filesystem-backed resource store.
func createFilesystemResourceStore(ctx context.Context, options map[string]any) (resource.Store, error) {
	type FilesystemResourceStoreConfig struct {
		Path string `mapstructure:"path"`
	}

	var storeCfg FilesystemResourceStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem resource store config: %w", err)
	}

	if storeCfg.Path == "" {
		return nil, fmt.Errorf("filesystem resource store: path is required")
	}

	store, err := resourceFs.NewFSResourceStore(ctx, storeCfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem resource store: %w", err)
	}

	return store, nil
}

// CreateUploadStore creates an upload store based on configuration.
//
// Supported types:
//   - "filesystem": persists uploads into a local directory (pkg/upload/fs)
//   - "memory": keeps uploads in memory (pkg/upload/memory)
func CreateUploadStore(ctx context.Context, cfg *UploadsConfig) (upload.Store, error) {
	switch cfg.Type {
	case "filesystem":
		return createFilesystemUploadStore(ctx, cfg.Filesystem)
	case "memory":
		return uploadMemory.NewMemoryUploadStore(), nil
	default:
		return nil, fmt.Errorf("unknown upload store type: %q", cfg.Type)
	}
}

// createFilesystemUploadStore creates a filesystem-backed upload store.
func createFilesystemUploadStore(ctx context.Context, options map[string]any) (upload.Store, error) {
	type FilesystemUploadStoreConfig struct {
		Path string `mapstructure:"path"`
	}

	var storeCfg FilesystemUploadStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode filesystem upload store config: %w", err)
	}

	if storeCfg.Path == "" {
		return nil, fmt.Errorf("filesystem upload store: path is required")
	}

	store, err := uploadFs.NewFSUploadStore(ctx, storeCfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem upload store: %w", err)
	}

	return store, nil
}
