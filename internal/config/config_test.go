package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Embedding.Provider != ProviderOllama {
			t.Errorf("provider = %q, want %q", cfg.Embedding.Provider, ProviderOllama)
		}
		if cfg.Embedding.Model != "all-minilm:l6-v2" || cfg.Embedding.Dimensions != 384 {
			t.Errorf("model defaults = %s/%d", cfg.Embedding.Model, cfg.Embedding.Dimensions)
		}
		if cfg.DatabasePath != "papers.db" {
			t.Errorf("database path = %q, want papers.db", cfg.DatabasePath)
		}
	})

	t.Run("file values override defaults, unset fields keep them", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "paperlens.yml")
		content := `releases_url: https://example.com/releases
embedding:
  provider: openai
  model: text-embedding-3-small
  dimensions: 1536
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("writing config: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.ReleasesURL != "https://example.com/releases" {
			t.Errorf("releases_url = %q", cfg.ReleasesURL)
		}
		if cfg.Embedding.Provider != ProviderOpenAI || cfg.Embedding.Dimensions != 1536 {
			t.Errorf("embedding = %+v", cfg.Embedding)
		}
		if cfg.CacheDir != "cache" {
			t.Errorf("cache_dir = %q, want the default", cfg.CacheDir)
		}
	})

	t.Run("environment overrides the database path", func(t *testing.T) {
		t.Setenv(EnvDatabasePath, "/tmp/override.db")

		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.DatabasePath != "/tmp/override.db" {
			t.Errorf("database path = %q, want the override", cfg.DatabasePath)
		}
	})

	t.Run("malformed yaml is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "paperlens.yml")
		if err := os.WriteFile(path, []byte("embedding: [not: a map"), 0o644); err != nil {
			t.Fatalf("writing config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected a parse error")
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"unknown provider", func(c *Config) { c.Embedding.Provider = "cohere" }, true},
		{"empty model", func(c *Config) { c.Embedding.Model = "" }, true},
		{"zero dimensions", func(c *Config) { c.Embedding.Dimensions = 0 }, true},
		{"negative dimensions", func(c *Config) { c.Embedding.Dimensions = -1 }, true},
		{"empty cache dir", func(c *Config) { c.CacheDir = "" }, true},
		{"empty database path", func(c *Config) { c.DatabasePath = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
