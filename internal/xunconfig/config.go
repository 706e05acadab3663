// Package xunconfig implements project-level configuration for the xun
// engine: a handful of named constants and mode flags (constants.go), and
// a yaml-decoded xun.yaml project config describing which store backend
// and driver flavor a project runs with.
package xunconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level xun.yaml configuration.
type Config struct {
	// Store selects the store backend: "mem" (default), "sqlite", or "rpc".
	Store string `yaml:"store,omitempty"`

	// Driver selects the driver flavor: "sequential" (default), "queued",
	// or "remote".
	Driver string `yaml:"driver,omitempty"`

	// Workers is the worker pool size for the queued and remote driver
	// flavors. Ignored by the sequential driver. Defaults to DefaultWorkers.
	Workers int `yaml:"workers,omitempty"`

	// CacheDir is where the sqlite store backend keeps its database file,
	// relative to the directory containing xun.yaml. Defaults to
	// DefaultCacheDir.
	CacheDir string `yaml:"cache_dir,omitempty"`

	// RPCAddr is the address of the rpcstore server this project dials
	// when Store is "rpc". Required when Store is "rpc".
	RPCAddr string `yaml:"rpc_addr,omitempty"`

	// WorkerAddrs is the pool of worker addresses the remote driver dials.
	// Required when Driver is "remote".
	WorkerAddrs []string `yaml:"worker_addrs,omitempty"`
}

// LoadConfig reads and parses an xun.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses xun.yaml content from bytes. path is used only for
// error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for xun.yaml (or xun.yml) starting from dir and
// walking up to parent directories. Returns the path to the config file
// and a nil error if found, or an empty string and nil error if not found.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// validate checks the configuration for semantic errors.
func (c *Config) validate(path string) error {
	switch c.Store {
	case "", MemStoreBackend, SQLiteStoreBackend, RPCStoreBackend:
	default:
		return fmt.Errorf("%s: unknown store backend %q", path, c.Store)
	}

	switch c.Driver {
	case "", SequentialDriver, QueuedDriver, RemoteDriver:
	default:
		return fmt.Errorf("%s: unknown driver %q", path, c.Driver)
	}

	if c.Workers < 0 {
		return fmt.Errorf("%s: workers must be >= 0, got %d", path, c.Workers)
	}

	if c.Store == RPCStoreBackend && c.RPCAddr == "" {
		return fmt.Errorf("%s: rpc_addr is required when store is %q", path, RPCStoreBackend)
	}

	if c.Driver == RemoteDriver && len(c.WorkerAddrs) == 0 {
		return fmt.Errorf("%s: worker_addrs is required when driver is %q", path, RemoteDriver)
	}

	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.Store == "" {
		c.Store = MemStoreBackend
	}
	if c.Driver == "" {
		c.Driver = SequentialDriver
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir
	}
}

// SQLiteStorePath returns the absolute path to the sqlite store's database
// file, given the directory containing xun.yaml.
func (c *Config) SQLiteStorePath(configDir string) string {
	dir := c.CacheDir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(configDir, dir)
	}
	return filepath.Join(dir, DefaultSQLiteFile)
}
