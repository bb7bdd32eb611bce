package domain

import (
	"context"
)

// ProgressFunc receives streaming download progress. Total is zero while
// the size is still unknown.
type ProgressFunc func(received, total int64)

type Fetcher interface {
	Fetch(ctx context.Context, d Download, progress ProgressFunc) (string, error)
}

type Cache interface {
	Has(name, version string) bool
	GetPath(name, version string) string
	Store(name, version, src string) (string, error)
	Size() (int64, error)
	Clear() error
}

type Extractor interface {
	Extract(src, dest string) error
}

type Library interface {
	Add(c *InstalledComponent) error
	Remove(name string) error
	IsInstalled(name string) (bool, *InstalledComponent, error)
	List() (map[string]*InstalledComponent, error)
	Close() error
}
