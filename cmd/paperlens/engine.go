package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/meridianlab/paperlens/internal/artifact"
	"github.com/meridianlab/paperlens/internal/config"
	"github.com/meridianlab/paperlens/internal/corpus"
	"github.com/meridianlab/paperlens/internal/embedding"
	"github.com/meridianlab/paperlens/internal/logger"
	"github.com/meridianlab/paperlens/internal/resolve"
	"github.com/meridianlab/paperlens/internal/search"
	"github.com/meridianlab/paperlens/internal/store"
)

// engine bundles the wired components behind one search session.
type engine struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *store.DB
	svc    *search.Service
}

func (e *engine) Close() {
	if e.db != nil {
		e.db.Close()
	}
	if e.logger != nil {
		_ = e.logger.Sync()
	}
}

// mustLoadConfig loads the configuration or exits.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading configuration: %v", err)
	}
	return cfg
}

// mustNewLogger builds the CLI logger or exits.
func mustNewLogger() *zap.Logger {
	log, err := logger.New(logLevel)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return log
}

// newProvider constructs the configured embedding provider.
func newProvider(cfg *config.Config) embedding.Provider {
	emb := cfg.Embedding
	switch emb.Provider {
	case config.ProviderOpenAI:
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			exitWithError(ExitConfigError, "OPENAI_API_KEY must be set for the openai embedding provider")
		}
		return embedding.NewOpenAIProvider(embedding.OpenAIConfig{
			APIKey:     apiKey,
			BaseURL:    emb.BaseURL,
			Model:      emb.Model,
			Dimensions: emb.Dimensions,
		})
	default:
		opts := []embedding.OllamaOption{
			embedding.WithModel(emb.Model),
			embedding.WithDimensions(emb.Dimensions),
		}
		if emb.OllamaURL != "" {
			opts = append(opts, embedding.WithOllamaURL(emb.OllamaURL))
		}
		return embedding.NewOllamaProvider(opts...)
	}
}

// mustOpenEngine wires artifacts, corpus, store and search service, or
// exits with a descriptive error.
func mustOpenEngine(ctx context.Context, opts ...search.Option) *engine {
	cfg := mustLoadConfig()
	log := mustNewLogger()

	cache := artifact.New(cfg.ReleasesURL, cfg.CacheDir, artifact.WithLogger(log))
	c, err := corpus.NewLoader(cache).Load(ctx)
	if err != nil {
		exitWithError(ExitDataError, "loading corpus artifacts: %v", err)
	}

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		exitWithError(ExitDataError, "opening metadata store: %v", err)
	}

	provider := newProvider(cfg)
	if err := c.CheckDimensions(provider.Dimensions()); err != nil {
		exitWithError(ExitConfigError, "corpus artifacts do not match the configured embedding model: %v", err)
	}

	resolver := resolve.New(db, log)
	svcOpts := append([]search.Option{search.WithLogger(log)}, opts...)
	svc := search.New(provider, c, resolver, svcOpts...)

	return &engine{cfg: cfg, logger: log, db: db, svc: svc}
}
