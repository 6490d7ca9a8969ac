// Package search orchestrates query embedding, similarity scoring,
// ranking and detail resolution into one search path.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/meridianlab/paperlens/internal/corpus"
	"github.com/meridianlab/paperlens/internal/embedding"
	"github.com/meridianlab/paperlens/internal/resolve"
	"github.com/meridianlab/paperlens/internal/similarity"
	"github.com/meridianlab/paperlens/internal/ttlcache"
)

// CacheTTL bounds how long query vectors and per-query similarity scores
// are memoized. Repeated identical queries inside the window skip both
// the embedding call and the corpus scan.
const CacheTTL = 5 * time.Minute

// Result is one ranked, resolved result page.
type Result struct {
	Records []resolve.Record
	Tier    similarity.Tier

	// CanRelax reports that the strict cutoff left the page short, so
	// the caller may offer a "show more" affordance.
	CanRelax bool
}

type scoreKey struct {
	query    string
	title    bool
	abstract bool
}

// Service runs searches against a loaded corpus.
type Service struct {
	provider embedding.Provider
	corpus   *corpus.Corpus
	resolver *resolve.Resolver
	logger   *zap.Logger
	pageSize int

	vectors *ttlcache.Cache[string, []float32]
	scores  *ttlcache.Cache[scoreKey, []similarity.PaperScore]
}

// Option configures a Service.
type Option func(*Service)

// WithPageSize overrides the default result page size. Non-positive
// values are ignored.
func WithPageSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock replaces the cache time source. Tests use this to expire
// entries without sleeping.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.vectors = ttlcache.New[string, []float32](CacheTTL, ttlcache.WithClock(now))
		s.scores = ttlcache.New[scoreKey, []similarity.PaperScore](CacheTTL, ttlcache.WithClock(now))
	}
}

// New creates a search service.
func New(provider embedding.Provider, c *corpus.Corpus, resolver *resolve.Resolver, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		corpus:   c,
		resolver: resolver,
		logger:   zap.NewNop(),
		pageSize: similarity.DefaultPageSize,
		vectors:  ttlcache.New[string, []float32](CacheTTL),
		scores:   ttlcache.New[scoreKey, []similarity.PaperScore](CacheTTL),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PageSize returns the result page size.
func (s *Service) PageSize() int {
	return s.pageSize
}

// ModelName returns the embedding model queries are projected with.
func (s *Service) ModelName() string {
	return s.provider.ModelName()
}

// Corpus returns the loaded corpus artifacts.
func (s *Service) Corpus() *corpus.Corpus {
	return s.corpus
}

// Search runs the full search path for a free-text query. Empty or
// whitespace-only queries return an empty page immediately, without
// invoking the embedding provider.
func (s *Service) Search(ctx context.Context, query string, fields similarity.Fields, tier similarity.Tier) (Result, error) {
	query = strings.TrimSpace(query)
	if query == "" || !fields.Enabled() {
		return Result{Tier: tier}, nil
	}

	scores, err := s.score(ctx, query, fields)
	if err != nil {
		return Result{}, err
	}

	ranked := similarity.Rank(scores, s.pageSize, tier)

	records, err := s.resolver.Resolve(ranked)
	if err != nil {
		return Result{}, fmt.Errorf("resolving results: %w", err)
	}

	return Result{
		Records:  records,
		Tier:     tier,
		CanRelax: tier == similarity.Strict && len(records) < s.pageSize,
	}, nil
}

// Similar returns the resolved precomputed neighbors of a paper, self
// excluded, most similar first.
func (s *Service) Similar(paperID string, limit int) ([]resolve.Record, error) {
	if limit <= 0 {
		limit = corpus.NeighborK
	}

	neighbors, err := s.corpus.Neighbors.Lookup(paperID, limit)
	if err != nil {
		return nil, err
	}

	records, err := s.resolver.ResolveNeighbors(neighbors)
	if err != nil {
		return nil, fmt.Errorf("resolving neighbors: %w", err)
	}
	return records, nil
}

// score returns per-paper similarity scores for a query, memoized for
// CacheTTL per (query, fields) pair.
func (s *Service) score(ctx context.Context, query string, fields similarity.Fields) ([]similarity.PaperScore, error) {
	key := scoreKey{query: query, title: fields.Title, abstract: fields.Abstract}
	if scores, ok := s.scores.Get(key); ok {
		return scores, nil
	}

	vector, err := s.vectorize(ctx, query)
	if err != nil {
		return nil, err
	}

	scores := similarity.ScoreCorpus(vector, s.corpus.Titles, s.corpus.Abstracts, fields)
	s.scores.Set(key, scores)
	return scores, nil
}

// vectorize embeds the query text, memoized for CacheTTL.
func (s *Service) vectorize(ctx context.Context, query string) ([]float32, error) {
	if vector, ok := s.vectors.Get(query); ok {
		return vector, nil
	}

	emb, err := s.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	s.vectors.Set(query, emb.Vector)
	return emb.Vector, nil
}
