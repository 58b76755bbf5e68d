package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Stats    StatsConfig    `toml:"stats"`
	Store    StoreConfig    `toml:"store"`
	Log      LogConfig      `toml:"log"`
	Catalog  CatalogConfig  `toml:"catalog"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Words *int   `toml:"words"`
	Seed  *int64 `toml:"seed"`
}

// StatsConfig maps stats defaults.
type StatsConfig struct {
	Last        *int `toml:"last"`
	CurveWindow *int `toml:"curve-window"`
	WeakTop     *int `toml:"weak-top"`
	WeakWindow  *int `toml:"weak-window"`
}

// StoreConfig selects where progress lives.
type StoreConfig struct {
	Backend  *string `toml:"backend"`
	Path     *string `toml:"path"`
	RedisURL *string `toml:"redis-url"`
	Key      *string `toml:"key"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level  *string `toml:"level"`
	Format *string `toml:"format"`
	File   *string `toml:"file"`
}

// CatalogConfig points at a replacement chapter catalog.
type CatalogConfig struct {
	Path *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return FileConfig{}, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// Validate checks values that can be judged without flags.
func (c FileConfig) Validate() error {
	if b := c.Store.Backend; b != nil {
		switch *b {
		case BackendSQLite, BackendRedis, BackendMemory:
		default:
			return fmt.Errorf("store.backend must be one of %s, %s, %s", BackendSQLite, BackendRedis, BackendMemory)
		}
		if *b == BackendRedis && (c.Store.RedisURL == nil || *c.Store.RedisURL == "") {
			return fmt.Errorf("store.redis-url is required for the redis backend")
		}
	}
	if w := c.Practice.Words; w != nil && *w < 0 {
		return fmt.Errorf("practice.words must be >= 0")
	}
	if f := c.Log.Format; f != nil && *f != "text" && *f != "json" {
		return fmt.Errorf("log.format must be text or json")
	}
	return nil
}
