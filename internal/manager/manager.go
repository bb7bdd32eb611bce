// Package manager drives the component lifecycle: resolving an item from
// the components catalog, downloading and verifying its archive, unpacking
// it into the local store and recording it in the library.
package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"cellar/internal/domain"
	"cellar/internal/repo"
	"cellar/internal/state"
)

type Manager struct {
	st        *state.State
	repos     *repo.Manager
	fetcher   domain.Fetcher
	cache     domain.Cache
	extractor domain.Extractor
	library   domain.Library

	componentsDir string
	log           *zap.Logger
}

func New(
	st *state.State,
	repos *repo.Manager,
	fetcher domain.Fetcher,
	cache domain.Cache,
	extractor domain.Extractor,
	library domain.Library,
	componentsDir string,
	log *zap.Logger,
) *Manager {

	return &Manager{
		st:            st,
		repos:         repos,
		fetcher:       fetcher,
		cache:         cache,
		extractor:     extractor,
		library:       library,
		componentsDir: componentsDir,
		log:           log,
	}
}

// Resolve looks the component up in the components catalog and reads its
// manifest for the download location and checksum.
func (m *Manager) Resolve(ctx context.Context, name string) (*domain.Component, *domain.Download, error) {
	r, ok := m.repos.Get(repo.ComponentsRepo)
	if !ok {
		return nil, nil, fmt.Errorf("components repository not configured")
	}

	entry, ok := r.Catalog()[name].(map[string]any)
	if !ok {
		return nil, nil, fmt.Errorf("component %s not found in catalog", name)
	}

	comp := &domain.Component{
		Name:     name,
		Category: entryString(entry, "Category"),
		Channel:  entryString(entry, "Channel"),
		Version:  entryString(entry, "Version"),
	}

	manifest := r.GetManifest(ctx, m.repos.ManifestURL(repo.ComponentsRepo, name))
	if len(manifest) == 0 {
		return nil, nil, fmt.Errorf("manifest for %s unavailable", name)
	}

	files, _ := manifest["File"].([]any)
	if len(files) == 0 {
		return nil, nil, fmt.Errorf("manifest for %s lists no files", name)
	}
	file, _ := files[0].(map[string]any)

	dl := &domain.Download{
		Name:    name,
		Version: comp.Version,
		URL:     entryString(file, "url"),
		SHA256:  entryString(file, "file_checksum"),
	}
	if dl.URL == "" {
		return nil, nil, fmt.Errorf("manifest for %s has no download url", name)
	}
	return comp, dl, nil
}

// Install runs the full pipeline for one component. The whole operation
// holds the components install lock so concurrent installs serialize; a
// registered task streams download progress to the bus.
func (m *Manager) Install(ctx context.Context, name string) (*domain.InstalledComponent, error) {
	if installed, _, _ := m.library.IsInstalled(name); installed {
		return nil, fmt.Errorf("component %s already installed", name)
	}

	comp, dl, err := m.Resolve(ctx, name)
	if err != nil {
		return nil, err
	}

	var out *domain.InstalledComponent
	err = m.st.Locks.WithLock(state.ComponentsInstall, func() error {
		task := state.NewTask("Installing " + name)
		if _, err := m.st.Tasks.Add(task); err != nil {
			return err
		}

		ic, err := m.install(ctx, task, comp, dl)
		if err != nil {
			task.StreamUpdate(0, 0, state.TaskFailed)
			return err
		}
		task.StreamUpdate(0, 0, state.TaskDone)
		out = ic
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.st.Signals.Publish(state.GNotification, state.Result{
		Status: true,
		Data: state.Notification{
			Title: "Cellar",
			Text:  fmt.Sprintf("%s %s installed", name, comp.Version),
		},
	})
	return out, nil
}

func (m *Manager) install(ctx context.Context, task *state.Task, comp *domain.Component, dl *domain.Download) (*domain.InstalledComponent, error) {
	var archive string
	if m.cache.Has(dl.Name, dl.Version) {
		archive = m.cache.GetPath(dl.Name, dl.Version)
		m.log.Debug("cache hit", zap.String("component", dl.Name), zap.String("version", dl.Version))
	} else {
		progress := func(received, total int64) {
			task.StreamUpdate(received, total, state.TaskRunning)
		}
		path, err := m.fetcher.Fetch(ctx, *dl, progress)
		if err != nil {
			return nil, err
		}
		archive, err = m.cache.Store(dl.Name, dl.Version, path)
		if err != nil {
			return nil, err
		}
	}

	task.SetSubtitle("Extracting…")
	dest := filepath.Join(m.componentsDir, comp.Category, comp.Name)
	if err := os.MkdirAll(dest, 0755); err != nil {
		return nil, err
	}
	if err := m.extractor.Extract(archive, dest); err != nil {
		os.RemoveAll(dest)
		return nil, err
	}

	ic := &domain.InstalledComponent{
		Name:        comp.Name,
		Category:    comp.Category,
		Channel:     comp.Channel,
		Version:     comp.Version,
		URL:         dl.URL,
		Path:        dest,
		InstalledAt: time.Now(),
	}
	if err := m.library.Add(ic); err != nil {
		return nil, err
	}
	return ic, nil
}

// Uninstall removes the component's tree and its library record.
func (m *Manager) Uninstall(name string) error {
	installed, ic, err := m.library.IsInstalled(name)
	if err != nil {
		return err
	}
	if !installed {
		return fmt.Errorf("component %s is not installed", name)
	}

	err = m.st.Locks.WithLock(state.ComponentsInstall, func() error {
		if ic.Path != "" {
			if err := os.RemoveAll(ic.Path); err != nil {
				return err
			}
		}
		return m.library.Remove(name)
	})
	if err != nil {
		return err
	}

	m.st.Signals.Publish(state.GNotification, state.Result{
		Status: true,
		Data: state.Notification{
			Title: "Cellar",
			Text:  fmt.Sprintf("%s removed", name),
		},
	})
	return nil
}

// ListInstalled returns the library contents sorted by name.
func (m *Manager) ListInstalled() ([]*domain.InstalledComponent, error) {
	all, err := m.library.List()
	if err != nil {
		return nil, err
	}
	out := make([]*domain.InstalledComponent, 0, len(all))
	for _, ic := range all {
		out = append(out, ic)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Search scans a repository's catalog for names containing query,
// case-insensitively. An empty query matches everything.
func (m *Manager) Search(repoName, query string) ([]string, error) {
	r, ok := m.repos.Get(repoName)
	if !ok {
		return nil, fmt.Errorf("unknown repository %s", repoName)
	}

	q := strings.ToLower(query)
	var names []string
	for name := range r.Catalog() {
		if q == "" || strings.Contains(strings.ToLower(name), q) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func entryString(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
