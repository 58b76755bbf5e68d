package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Practice.Words != nil || cfg.Store.Backend != nil {
		t.Fatalf("expected empty config, got %+v", cfg)
	}
}

func TestLoadConfigEmptyPath(t *testing.T) {
	if _, err := LoadConfig(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestLoadConfigSections(t *testing.T) {
	path := writeConfig(t, `
[practice]
words = 30
seed = 7

[stats]
last = 50
curve-window = 5

[store]
backend = "redis"
redis-url = "redis://localhost:6379/1"
key = "me.progress"

[log]
level = "debug"
format = "json"

[catalog]
path = "/tmp/chapters.yaml"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Practice.Words == nil || *cfg.Practice.Words != 30 {
		t.Fatalf("unexpected words: %v", cfg.Practice.Words)
	}
	if cfg.Practice.Seed == nil || *cfg.Practice.Seed != 7 {
		t.Fatalf("unexpected seed: %v", cfg.Practice.Seed)
	}
	if cfg.Stats.Last == nil || *cfg.Stats.Last != 50 {
		t.Fatalf("unexpected last: %v", cfg.Stats.Last)
	}
	if cfg.Stats.WeakTop != nil {
		t.Fatalf("expected unset weak-top")
	}
	if *cfg.Store.Backend != BackendRedis || *cfg.Store.Key != "me.progress" {
		t.Fatalf("unexpected store: %+v", cfg.Store)
	}
	if *cfg.Log.Level != "debug" || *cfg.Log.Format != "json" {
		t.Fatalf("unexpected log: %+v", cfg.Log)
	}
	if cfg.Log.File != nil {
		t.Fatalf("expected unset log file")
	}
	if *cfg.Catalog.Path != "/tmp/chapters.yaml" {
		t.Fatalf("unexpected catalog path: %s", *cfg.Catalog.Path)
	}
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"syntax", "[practice\nwords = 1", "failed to decode"},
		{"unknown key", "[practice]\nlang = \"en\"", "practice.lang"},
		{"bad backend", "[store]\nbackend = \"s3\"", "store.backend"},
		{"redis without url", "[store]\nbackend = \"redis\"", "redis-url"},
		{"negative words", "[practice]\nwords = -1", "practice.words"},
		{"bad format", "[log]\nformat = \"xml\"", "log.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %v", tt.want, err)
			}
		})
	}
}

func TestDefaultPathsFollowXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/cfg")
	t.Setenv("XDG_DATA_HOME", "/data")
	t.Setenv("XDG_STATE_HOME", "/state")
	if got := DefaultConfigPath(); got != filepath.Join("/cfg", "keycamp", "config.toml") {
		t.Fatalf("unexpected config path: %s", got)
	}
	if got := DefaultDBPath(); got != filepath.Join("/data", "keycamp", "keycamp.db") {
		t.Fatalf("unexpected db path: %s", got)
	}
	if got := DefaultLogPath(); got != filepath.Join("/state", "keycamp", "keycamp.log") {
		t.Fatalf("unexpected log path: %s", got)
	}
}
