package repo_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cellar/internal/repo"
	"cellar/internal/state"
)

func TestManager_WaitReadyPublishesRepositoryFetched(t *testing.T) {
	t.Parallel()

	st := state.New(zap.NewNop())

	fetched := make(chan state.Result, 1)
	st.Signals.Subscribe(state.RepositoryFetched, func(res state.Result) {
		fetched <- res
	})

	sources := []repo.Source{
		{Name: repo.ComponentsRepo, URL: "http://example.invalid/components"},
		{Name: repo.DependenciesRepo, URL: "http://example.invalid/dependencies"},
		{Name: repo.InstallersRepo, URL: "http://example.invalid/installers"},
	}

	// Offline: every catalog resolves empty without the network, which is
	// enough to exercise the readiness protocol.
	m := repo.NewManager(sources, true, st, &failingClient{}, zap.NewNop())

	done := make(chan struct{})
	go func() {
		m.WaitReady()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitReady never returned")
	}

	select {
	case res := <-fetched:
		assert.True(t, res.Status)
		assert.Equal(t, 3, res.Data)
	default:
		t.Fatal("RepositoryFetched not published")
	}

	for _, name := range []string{repo.ComponentsRepo, repo.DependenciesRepo, repo.InstallersRepo} {
		r, ok := m.Get(name)
		require.True(t, ok)
		assert.Equal(t, repo.Catalog{}, r.Catalog())
	}
}

func TestManager_ManifestURL(t *testing.T) {
	t.Parallel()

	st := state.New(zap.NewNop())
	m := repo.NewManager([]repo.Source{
		{Name: repo.ComponentsRepo, URL: "http://example.invalid/components"},
	}, true, st, &failingClient{}, zap.NewNop())

	assert.Equal(t,
		"http://example.invalid/components/wine-9.0.yml",
		m.ManifestURL(repo.ComponentsRepo, "wine-9.0"))
	assert.Empty(t, m.ManifestURL("unknown", "wine-9.0"))
}
