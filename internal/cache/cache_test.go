package cache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/cache"
)

func newCacheWithArchive(t *testing.T, name, version, ext string) *cache.DiskCache {
	t.Helper()

	c, err := cache.New(filepath.Join(t.TempDir(), "cache"))
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "download"+ext)
	require.NoError(t, os.WriteFile(src, []byte("archive"), 0644))

	_, err = c.Store(name, version, src)
	require.NoError(t, err)
	return c
}

func TestDiskCache_StoreAndLookup(t *testing.T) {
	t.Parallel()

	c := newCacheWithArchive(t, "wine", "9.0", ".tar.xz")

	assert.True(t, c.Has("wine", "9.0"))
	assert.False(t, c.Has("wine", "8.0"))
	assert.False(t, c.Has("dxvk", "9.0"))

	path := c.GetPath("wine", "9.0")
	assert.Contains(t, path, filepath.Join("wine", "9.0", "archive.tar.xz"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "archive", string(data))
}

func TestDiskCache_StoreKeepsExtension(t *testing.T) {
	t.Parallel()

	c := newCacheWithArchive(t, "dxvk", "2.3", ".tar.gz")

	path := c.GetPath("dxvk", "2.3")
	assert.Contains(t, path, "archive.tar.gz")
}

func TestDiskCache_SizeAndClear(t *testing.T) {
	t.Parallel()

	c := newCacheWithArchive(t, "wine", "9.0", ".tar.xz")

	size, err := c.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(len("archive")), size)

	require.NoError(t, c.Clear())
	assert.False(t, c.Has("wine", "9.0"))
}
