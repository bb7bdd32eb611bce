// Package library is the installed-component ledger: which runners, DLL
// dependencies and runtimes are present on disk, backed by sqlite with a
// JSON snapshot exported for external tooling.
package library

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"cellar/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS components (
    name         TEXT PRIMARY KEY,
    category     TEXT NOT NULL DEFAULT '',
    channel      TEXT NOT NULL DEFAULT '',
    version      TEXT NOT NULL,
    url          TEXT NOT NULL,
    path         TEXT NOT NULL,
    installed_at TEXT NOT NULL
);
`

type SQLiteLibrary struct {
	mu         sync.RWMutex
	db         *sql.DB
	dbPath     string
	ledgerPath string
}

func NewSQLite(dbPath, ledgerPath string) (*SQLiteLibrary, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create library directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteLibrary{
		db:         db,
		dbPath:     dbPath,
		ledgerPath: ledgerPath,
	}, nil
}

func (l *SQLiteLibrary) Add(c *domain.InstalledComponent) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, err := l.db.Exec(`
		INSERT OR REPLACE INTO components
		(name, category, channel, version, url, path, installed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.Name, c.Category, c.Channel, c.Version, c.URL, c.Path,
		c.InstalledAt.Format(time.RFC3339))
	if err != nil {
		return err
	}

	return l.exportJSON()
}

func (l *SQLiteLibrary) Remove(name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	res, err := l.db.Exec("DELETE FROM components WHERE name = ?", name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("component %s is not installed", name)
	}

	return l.exportJSON()
}

func (l *SQLiteLibrary) IsInstalled(name string) (bool, *domain.InstalledComponent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	c, err := l.get(name)
	if err == sql.ErrNoRows {
		return false, nil, nil
	}
	if err != nil {
		return false, nil, err
	}
	return true, c, nil
}

func (l *SQLiteLibrary) get(name string) (*domain.InstalledComponent, error) {
	var c domain.InstalledComponent
	var installedAt string

	err := l.db.QueryRow(`
		SELECT name, category, channel, version, url, path, installed_at
		FROM components WHERE name = ?`, name).Scan(
		&c.Name, &c.Category, &c.Channel, &c.Version, &c.URL, &c.Path, &installedAt)
	if err != nil {
		return nil, err
	}

	c.InstalledAt, _ = time.Parse(time.RFC3339, installedAt)
	return &c, nil
}

func (l *SQLiteLibrary) List() (map[string]*domain.InstalledComponent, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.list()
}

func (l *SQLiteLibrary) list() (map[string]*domain.InstalledComponent, error) {
	rows, err := l.db.Query(`
		SELECT name, category, channel, version, url, path, installed_at
		FROM components`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	components := make(map[string]*domain.InstalledComponent)
	for rows.Next() {
		var c domain.InstalledComponent
		var installedAt string

		if err := rows.Scan(&c.Name, &c.Category, &c.Channel, &c.Version,
			&c.URL, &c.Path, &installedAt); err != nil {
			return nil, err
		}
		c.InstalledAt, _ = time.Parse(time.RFC3339, installedAt)
		components[c.Name] = &c
	}

	return components, rows.Err()
}

func (l *SQLiteLibrary) exportJSON() error {
	components, err := l.list()
	if err != nil {
		return err
	}

	ledger := domain.Ledger{Components: components}
	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(l.ledgerPath), 0755); err != nil {
		return err
	}

	return os.WriteFile(l.ledgerPath, data, 0644)
}

func (l *SQLiteLibrary) Close() error {
	return l.db.Close()
}
