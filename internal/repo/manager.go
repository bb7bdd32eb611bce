package repo

import (
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cellar/internal/httpclient"
	"cellar/internal/state"
)

// Canonical repository names.
const (
	ComponentsRepo   = "components"
	DependenciesRepo = "dependencies"
	InstallersRepo   = "installers"
)

// Source configures one repository: the base URL manifests hang off and
// the index URL of its catalog.
type Source struct {
	Name  string
	URL   string
	Index string
}

// Manager owns the configured repositories. Construction kicks off every
// catalog fetch concurrently; WaitReady blocks until all of them resolved
// and announces the outcome on the bus.
type Manager struct {
	st    *state.State
	log   *zap.Logger
	repos map[string]*Repo
	names []string
}

func NewManager(sources []Source, offline bool, st *state.State, client httpclient.Client, log *zap.Logger) *Manager {
	m := &Manager{
		st:    st,
		log:   log,
		repos: make(map[string]*Repo, len(sources)),
	}
	deps := Deps{Client: client, Ops: st.Ops, Log: log}
	for _, src := range sources {
		m.repos[src.Name] = New(src.Name, src.URL, src.Index, offline, deps, nil)
		m.names = append(m.names, src.Name)
	}
	return m
}

// Get returns the repository registered under name.
func (m *Manager) Get(name string) (*Repo, bool) {
	r, ok := m.repos[name]
	return r, ok
}

// WaitReady blocks until every catalog fetch has resolved, then publishes
// RepositoryFetched with the repository count.
func (m *Manager) WaitReady() {
	var g errgroup.Group
	for _, name := range m.names {
		name := name
		g.Go(func() error {
			m.st.Ops.Wait(FetchingOp(name))
			return nil
		})
	}
	_ = g.Wait()

	m.st.Signals.Publish(state.RepositoryFetched, state.Result{
		Status: true,
		Data:   len(m.repos),
	})
	m.log.Debug("all repositories fetched", zap.Int("count", len(m.repos)))
}

// ManifestURL builds the manifest location for an item in the named repo.
func (m *Manager) ManifestURL(repoName, item string) string {
	r, ok := m.repos[repoName]
	if !ok {
		return ""
	}
	return r.URL() + "/" + item + ".yml"
}
