package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cellar/internal/cache"
	"cellar/internal/config"
	"cellar/internal/extractor"
	"cellar/internal/fetcher"
	"cellar/internal/httpclient"
	"cellar/internal/library"
	"cellar/internal/manager"
	"cellar/internal/netstatus"
	"cellar/internal/repo"
	"cellar/internal/state"
)

func Execute() error {
	rootCmd := &cobra.Command{Use: "cellar"}
	rootCmd.AddCommand(
		newUpdateCmd(),
		newSearchCmd(),
		newInstallCmd(),
		newRemoveCmd(),
		newListCmd(),
		newHealthCmd(),
		newClearCmd(),
		newVersionCmd(),
	)
	return rootCmd.Execute()
}

// app bundles everything a command needs, wired once per invocation.
type app struct {
	cfg   *config.Config
	st    *state.State
	repos *repo.Manager
	mgr   *manager.Manager
	cache *cache.DiskCache
	net   *netstatus.Checker
	lib   *library.SQLiteLibrary
	log   *zap.Logger
}

func newApp() (*app, error) {
	log := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	st := state.New(log)
	client := httpclient.NewDefaultClient(httpclient.DefaultTimeout)

	sources := make([]repo.Source, 0, len(cfg.Registries))
	for _, reg := range cfg.Registries {
		sources = append(sources, repo.Source{Name: reg.Name, URL: reg.URL, Index: reg.Index})
	}
	repos := repo.NewManager(sources, cfg.Offline, st, client, log)

	c, err := cache.New(cfg.CacheDir)
	if err != nil {
		return nil, err
	}

	lib, err := library.NewSQLite(cfg.LibraryDB, cfg.LedgerFile)
	if err != nil {
		return nil, err
	}

	mgr := manager.New(
		st,
		repos,
		fetcher.New(cfg.CacheDir, httpclient.DefaultTimeout),
		c,
		extractor.New(),
		lib,
		cfg.ComponentsDir,
		log,
	)

	return &app{
		cfg:   cfg,
		st:    st,
		repos: repos,
		mgr:   mgr,
		cache: c,
		net:   netstatus.New(cfg.StatusURL, client, st.Signals, log),
		lib:   lib,
		log:   log,
	}, nil
}

func (a *app) close() {
	_ = a.lib.Close()
	_ = a.log.Sync()
}

func newLogger() *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	if os.Getenv("CELLAR_DEBUG") != "" {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
