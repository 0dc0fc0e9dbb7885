package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalYAML = `
data:
  clicks_path: /data/clicks.csv
  embeddings_path: /data/embeddings.csv
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Model.K != 5 || cfg.Model.MaxK != 50 {
		t.Errorf("Model K/MaxK = %d/%d, want 5/50", cfg.Model.K, cfg.Model.MaxK)
	}
	if cfg.Model.WRecency != 0.25 || cfg.Model.WPosition != 0.5 || !cfg.Model.WCategory {
		t.Errorf("Model weights = %+v, want defaults 0.25/0.5/true", cfg.Model)
	}
	if cfg.Cache.Backend != "memory" || cfg.Cache.TTL != 300 {
		t.Errorf("Cache = %+v, want memory backend with 300s TTL", cfg.Cache)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
server:
  addr: ":9090"
data:
  clicks_path: /data/clicks.csv
  embeddings_path: /data/embeddings.csv
  split_date: "2026-01-15"
model:
  k: 10
  w_recency: 0.1
  w_category: false
  exclude_rule: "article.category_id == 281"
`))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
	if cfg.Model.K != 10 || cfg.Model.WRecency != 0.1 || cfg.Model.WCategory {
		t.Errorf("Model = %+v", cfg.Model)
	}
	if cfg.Model.ExcludeRule != "article.category_id == 281" {
		t.Errorf("ExcludeRule = %q", cfg.Model.ExcludeRule)
	}
	// Untouched keys keep their defaults.
	if cfg.Model.WPosition != 0.5 {
		t.Errorf("WPosition = %v, want default 0.5", cfg.Model.WPosition)
	}

	split, err := cfg.ParseSplitDate()
	if err != nil {
		t.Fatalf("ParseSplitDate() error = %v", err)
	}
	if want := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC); !split.Equal(want) {
		t.Errorf("ParseSplitDate() = %v, want %v", split, want)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("RECO_ADDR", ":7000")
	t.Setenv("RECO_CLICKS_PATH", "/env/clicks.csv")
	t.Setenv("RECO_CACHE_BACKEND", "redis")
	t.Setenv("RECO_REDIS_ADDR", "localhost:6379")
	t.Setenv("RECO_REDIS_DB", "3")

	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Errorf("Server.Addr = %q, want env override :7000", cfg.Server.Addr)
	}
	if cfg.Data.ClicksPath != "/env/clicks.csv" {
		t.Errorf("ClicksPath = %q, want env override", cfg.Data.ClicksPath)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" || cfg.Cache.RedisDB != 3 {
		t.Errorf("Cache = %+v", cfg.Cache)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{name: "missing data paths", yaml: "server:\n  addr: \":8080\"\n"},
		{name: "zero k", yaml: minimalYAML + "model:\n  k: 0\n"},
		{name: "negative recency weight", yaml: minimalYAML + "model:\n  w_recency: -1\n"},
		{name: "unknown cache backend", yaml: minimalYAML + "cache:\n  backend: etcd\n"},
		{name: "redis backend without addr", yaml: minimalYAML + "cache:\n  backend: redis\n"},
		{name: "k above max_k", yaml: minimalYAML + "model:\n  k: 60\n"},
		{name: "bad split date", yaml: "data:\n  clicks_path: /c\n  embeddings_path: /e\n  split_date: 15/01/2026\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.yaml)); err == nil {
				t.Error("Load() expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}
