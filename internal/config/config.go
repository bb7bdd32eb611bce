package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	CellarDir     string     `toml:"cellar_dir"`
	BottlesDir    string     `toml:"bottles_dir"`
	ComponentsDir string     `toml:"components_dir"`
	CacheDir      string     `toml:"cache_dir"`
	LibraryDB     string     `toml:"library_db"`
	LedgerFile    string     `toml:"ledger_file"`
	Offline       bool       `toml:"offline"`
	MaxParallel   int        `toml:"max_parallel"`
	StatusURL     string     `toml:"status_url"`
	Registries    []Registry `toml:"registries"`
}

type Registry struct {
	Name  string `toml:"name"`
	URL   string `toml:"url"`
	Index string `toml:"index"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".cellar")

	return &Config{
		CellarDir:     base,
		BottlesDir:    filepath.Join(base, "bottles"),
		ComponentsDir: filepath.Join(base, "components"),
		CacheDir:      filepath.Join(base, "cache"),
		LibraryDB:     filepath.Join(base, "library.db"),
		LedgerFile:    filepath.Join(base, "installed.json"),
		MaxParallel:   4,
		StatusURL:     "https://repo.usebottles.com/components/index.yml",
		Registries: []Registry{
			{
				Name:  "components",
				URL:   "https://repo.usebottles.com/components",
				Index: "https://repo.usebottles.com/components/index.yml",
			},
			{
				Name:  "dependencies",
				URL:   "https://repo.usebottles.com/dependencies",
				Index: "https://repo.usebottles.com/dependencies/index.yml",
			},
			{
				Name:  "installers",
				URL:   "https://repo.usebottles.com/installers",
				Index: "https://repo.usebottles.com/installers/index.yml",
			},
		},
	}
}

// Path is the config file location, ~/.cellar/config.toml.
func Path() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".cellar", "config.toml")
}

// Load reads the config from the default path, falling back to defaults
// when no file exists yet.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config from path, layered over the defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the config to the default path.
func Save(cfg *Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path, creating parent directories.
func SaveTo(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
