// Package repo fetches remote component catalogs and manifests. A Repo
// schedules its catalog fetch at construction and signals readiness
// through the operation tracker; failures never escape this layer, they
// degrade to an empty catalog so the application stays usable offline.
package repo

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"cellar/internal/httpclient"
	"cellar/internal/runner"
	"cellar/internal/state"
)

// Catalog maps item names to their metadata as parsed from a remote
// index. It is replaced wholesale on fetch, never partially mutated.
type Catalog map[string]any

// Deps are the collaborators a Repo needs.
type Deps struct {
	Client httpclient.Client
	Ops    *state.OperationTracker
	Log    *zap.Logger
}

// Repo is one remote component repository.
type Repo struct {
	name   string
	url    string
	client httpclient.Client
	ops    *state.OperationTracker
	log    *zap.Logger

	mu      sync.RWMutex
	catalog Catalog
}

// FetchingOp is the operation name callers wait on for a repo's catalog.
func FetchingOp(name string) string {
	return name + ".fetching"
}

// New builds the repo and immediately schedules the catalog fetch in the
// background; it never blocks the caller. When index is empty or offline
// is set the catalog resolves to empty without touching the network.
// onDone, if non-nil, runs once after the catalog is stored and the
// fetching gate is signaled. It is invoked from worker context.
func New(name, url, index string, offline bool, deps Deps, onDone func()) *Repo {
	r := &Repo{
		name:   name,
		url:    url,
		client: deps.Client,
		ops:    deps.Ops,
		log:    deps.Log,
	}

	r.ops.Start(FetchingOp(name))
	runner.Go(
		func() (any, error) {
			return r.fetchCatalog(index, offline), nil
		},
		func(result any, _ error) {
			r.mu.Lock()
			r.catalog = result.(Catalog)
			r.mu.Unlock()

			r.ops.Done(FetchingOp(name))
			if onDone != nil {
				onDone()
			}
		},
	)
	return r
}

func (r *Repo) Name() string { return r.name }

// URL returns the repository base URL manifests hang off.
func (r *Repo) URL() string { return r.url }

// Catalog returns the fetched catalog, or nil while the fetch is still in
// flight. Callers wanting to block use Ops.Wait(FetchingOp(name)) first.
func (r *Repo) Catalog() Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog
}

func (r *Repo) fetchCatalog(index string, offline bool) Catalog {
	if index == "" || offline {
		return Catalog{}
	}

	body, err := r.client.Get(context.Background(), index)
	if err != nil {
		r.log.Error("cannot fetch repository index",
			zap.String("repo", r.name), zap.Error(err))
		return Catalog{}
	}

	var catalog Catalog
	if err := yaml.Unmarshal(body, &catalog); err != nil {
		r.log.Error("cannot parse repository index",
			zap.String("repo", r.name), zap.Error(err))
		return Catalog{}
	}
	if catalog == nil {
		catalog = Catalog{}
	}

	r.log.Info("catalog loaded",
		zap.String("repo", r.name), zap.Int("items", len(catalog)))
	return catalog
}

// GetManifest fetches and parses a single manifest document. Transport
// and parse failures are logged and degrade to an empty catalog; this
// blocks on network I/O, so run it off any latency-sensitive goroutine.
func (r *Repo) GetManifest(ctx context.Context, url string) Catalog {
	body, err := r.client.Get(ctx, url)
	if err != nil {
		r.log.Error("cannot fetch manifest",
			zap.String("repo", r.name), zap.String("url", url), zap.Error(err))
		return Catalog{}
	}

	var manifest Catalog
	if err := yaml.Unmarshal(body, &manifest); err != nil {
		r.log.Error("cannot parse manifest",
			zap.String("repo", r.name), zap.String("url", url), zap.Error(err))
		return Catalog{}
	}
	if manifest == nil {
		manifest = Catalog{}
	}
	return manifest
}

// GetManifestPlain fetches a manifest as raw text for pass-through
// display. Unlike GetManifest, failures propagate: plain mode is not
// parsed, so there is no empty document to degrade to.
func (r *Repo) GetManifestPlain(ctx context.Context, url string) (string, error) {
	body, err := r.client.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetching %s manifest: %w", r.name, err)
	}
	return string(body), nil
}
