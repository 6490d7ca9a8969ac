// Package config handles paperlens configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Embedding provider names.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// EnvDatabasePath overrides the metadata database location.
const EnvDatabasePath = "PAPERLENS_DB"

// Config is the paperlens.yml configuration.
type Config struct {
	// ReleasesURL is the base URL the corpus artifacts are fetched from.
	ReleasesURL string `yaml:"releases_url"`

	// CacheDir is where fetched artifacts are stored.
	CacheDir string `yaml:"cache_dir"`

	// DatabasePath points at the combined papers SQLite database.
	DatabasePath string `yaml:"database_path"`

	Embedding EmbeddingConfig `yaml:"embedding"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // ollama or openai
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`

	// OllamaURL is the local Ollama endpoint (ollama provider only).
	OllamaURL string `yaml:"ollama_url"`

	// BaseURL is an OpenAI-compatible endpoint (openai provider only).
	// The API key comes from the OPENAI_API_KEY environment variable,
	// never from the config file.
	BaseURL string `yaml:"base_url"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		CacheDir:     "cache",
		DatabasePath: "papers.db",
		Embedding: EmbeddingConfig{
			Provider:   ProviderOllama,
			Model:      "all-minilm:l6-v2",
			Dimensions: 384,
		},
	}
}

// Load reads configuration from path, filling unset fields with
// defaults. A missing file yields the defaults. The PAPERLENS_DB
// environment variable overrides the database path either way.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if db := os.Getenv(EnvDatabasePath); db != "" {
		cfg.DatabasePath = db
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	switch c.Embedding.Provider {
	case ProviderOllama, ProviderOpenAI:
	default:
		return fmt.Errorf("unknown embedding provider %q (expected %s or %s)",
			c.Embedding.Provider, ProviderOllama, ProviderOpenAI)
	}

	if c.Embedding.Model == "" {
		return fmt.Errorf("embedding model must be set")
	}
	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.CacheDir == "" {
		return fmt.Errorf("cache_dir must be set")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path must be set")
	}

	return nil
}
