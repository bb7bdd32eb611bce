package library_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cellar/internal/domain"
	"cellar/internal/library"
)

func newLibrary(t *testing.T) (*library.SQLiteLibrary, string) {
	t.Helper()

	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "installed.json")
	lib, err := library.NewSQLite(filepath.Join(dir, "library.db"), ledgerPath)
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib, ledgerPath
}

func wine90() *domain.InstalledComponent {
	return &domain.InstalledComponent{
		Name:        "wine-9.0",
		Category:    "runners",
		Channel:     "stable",
		Version:     "9.0",
		URL:         "http://example/wine-9.0.tar.xz",
		Path:        "/components/runners/wine-9.0",
		InstalledAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLiteLibrary_AddAndLookup(t *testing.T) {
	t.Parallel()

	lib, _ := newLibrary(t)
	c := wine90()
	require.NoError(t, lib.Add(c))

	installed, got, err := lib.IsInstalled("wine-9.0")
	require.NoError(t, err)
	require.True(t, installed)
	assert.Equal(t, c.Category, got.Category)
	assert.Equal(t, c.Version, got.Version)
	assert.True(t, c.InstalledAt.Equal(got.InstalledAt))

	installed, _, err = lib.IsInstalled("wine-8.0")
	require.NoError(t, err)
	assert.False(t, installed)
}

func TestSQLiteLibrary_ListAndRemove(t *testing.T) {
	t.Parallel()

	lib, _ := newLibrary(t)
	require.NoError(t, lib.Add(wine90()))
	require.NoError(t, lib.Add(&domain.InstalledComponent{
		Name: "dxvk-2.3", Category: "dxvk", Version: "2.3",
		URL: "http://example/dxvk.tar.gz", Path: "/components/dxvk/dxvk-2.3",
		InstalledAt: time.Now(),
	}))

	all, err := lib.List()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, lib.Remove("dxvk-2.3"))
	all, err = lib.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Contains(t, all, "wine-9.0")
}

func TestSQLiteLibrary_RemoveUnknownIsError(t *testing.T) {
	t.Parallel()

	lib, _ := newLibrary(t)
	err := lib.Remove("ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not installed")
}

func TestSQLiteLibrary_ExportsLedgerSnapshot(t *testing.T) {
	t.Parallel()

	lib, ledgerPath := newLibrary(t)
	require.NoError(t, lib.Add(wine90()))

	data, err := os.ReadFile(ledgerPath)
	require.NoError(t, err)

	var ledger domain.Ledger
	require.NoError(t, json.Unmarshal(data, &ledger))
	assert.Contains(t, ledger.Components, "wine-9.0")
}
