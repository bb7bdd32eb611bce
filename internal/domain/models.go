package domain

import "time"

// Component is a catalog item resolved from a repository: a runner, DLL
// dependency or runtime installable into the local component store.
type Component struct {
	Name     string
	Category string
	Channel  string
	Version  string
}

// Download describes the archive to fetch for a component, taken from its
// manifest.
type Download struct {
	Name    string
	Version string
	URL     string
	SHA256  string
}

// InstalledComponent is one row of the installed-component ledger.
type InstalledComponent struct {
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Channel     string    `json:"channel"`
	Version     string    `json:"version"`
	URL         string    `json:"url"`
	Path        string    `json:"path"`
	InstalledAt time.Time `json:"installed_at"`
}

// Ledger is the exported snapshot of everything installed.
type Ledger struct {
	Components map[string]*InstalledComponent `json:"components"`
}

func NewLedger() *Ledger {
	return &Ledger{Components: make(map[string]*InstalledComponent)}
}
