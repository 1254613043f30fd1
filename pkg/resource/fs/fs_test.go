package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rpellegrini/webserve/pkg/resource"
)

func newTestStore(t *testing.T) (*FSResourceStore, string) {
	t.Helper()
	root := t.TempDir()
	store, err := NewFSResourceStore(context.Background(), root)
	require.NoError(t, err)
	require.NoError(t, store.Init(context.Background()))
	return store, root
}

func writeFile(t *testing.T, root, name string, data []byte) {
	t.Helper()
	full := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
	require.NoError(t, os.WriteFile(full, data, 0644))
}

func TestFetch(t *testing.T) {
	store, root := newTestStore(t)
	ctx := context.Background()

	t.Run("HTMLIsInline", func(t *testing.T) {
		writeFile(t, root, "index.html", []byte("<h1>hello</h1>"))

		file, err := store.Fetch(ctx, "index.html")
		require.NoError(t, err)
		assert.Equal(t, resource.CategoryHTML, file.Category)
		assert.Equal(t, "index.html", file.Name)
		assert.Equal(t, []byte("<h1>hello</h1>"), file.Data)
	})

	t.Run("TextAndImagesAreBinary", func(t *testing.T) {
		for _, name := range []string{"notes.txt", "logo.png", "photo.jpeg", "pic.jpg"} {
			writeFile(t, root, name, []byte("payload-"+name))

			file, err := store.Fetch(ctx, name)
			require.NoError(t, err, name)
			assert.Equal(t, resource.CategoryBinary, file.Category, name)
			assert.Equal(t, []byte("payload-"+name), file.Data, name)
		}
	})

	t.Run("NestedPath", func(t *testing.T) {
		writeFile(t, root, filepath.Join("files", "deep.txt"), []byte("deep"))

		file, err := store.Fetch(ctx, "files/deep.txt")
		require.NoError(t, err)
		assert.Equal(t, "deep.txt", file.Name)
	})

	t.Run("MissingFileIsNotFound", func(t *testing.T) {
		_, err := store.Fetch(ctx, "nope.html")
		assert.ErrorIs(t, err, resource.ErrNotFound)
	})

	t.Run("DirectoryIsNotFound", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "subdir"), 0755))
		_, err := store.Fetch(ctx, "subdir")
		assert.ErrorIs(t, err, resource.ErrNotFound)
	})

	t.Run("UnsupportedExtensionBeatsContent", func(t *testing.T) {
		writeFile(t, root, "script.php", []byte("<?php ?>"))
		_, err := store.Fetch(ctx, "script.php")
		assert.ErrorIs(t, err, resource.ErrUnsupportedType)
	})

	t.Run("ExistenceCheckedBeforeExtension", func(t *testing.T) {
		// A missing file with an unsupported extension must still be 404.
		_, err := store.Fetch(ctx, "missing.php")
		assert.ErrorIs(t, err, resource.ErrNotFound)
	})
}

func TestNewFSResourceStoreCreatesRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "resources")
	_, err := NewFSResourceStore(context.Background(), root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
