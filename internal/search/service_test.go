package search

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/meridianlab/paperlens/internal/corpus"
	"github.com/meridianlab/paperlens/internal/embedding"
	"github.com/meridianlab/paperlens/internal/resolve"
	"github.com/meridianlab/paperlens/internal/similarity"
	"github.com/meridianlab/paperlens/internal/store"
)

// fakeProvider returns a fixed query vector and counts calls.
type fakeProvider struct {
	vector []float32
	calls  int
	err    error
}

func (f *fakeProvider) Embed(ctx context.Context, text string) (embedding.Embedding, error) {
	f.calls++
	if f.err != nil {
		return embedding.Embedding{}, f.err
	}
	return embedding.Embedding{Vector: f.vector}, nil
}

func (f *fakeProvider) ModelName() string { return "fake-model" }
func (f *fakeProvider) Dimensions() int   { return len(f.vector) }

// vectorWithCosine builds a 2-d unit vector whose cosine similarity to
// (1, 0) is exactly c.
func vectorWithCosine(c float64) []float32 {
	return []float32{float32(c), float32(math.Sqrt(1 - c*c))}
}

type fixture struct {
	provider *fakeProvider
	svc      *Service
	clock    *time.Time
}

// newFixture builds a three-paper corpus with title similarities
// 0.9/0.2/0.05 and abstract similarities 0.8/0.5/0.1 against the fake
// query vector, plus a neighbor row for p1.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	titles := corpus.NewVectorTable("title", "fake-model", 2)
	abstracts := corpus.NewVectorTable("abstract", "fake-model", 2)
	titleSims := map[string]float64{"p1": 0.9, "p2": 0.2, "p3": 0.05}
	abstractSims := map[string]float64{"p1": 0.8, "p2": 0.5, "p3": 0.1}
	for id, sim := range titleSims {
		if err := titles.Add(id, vectorWithCosine(sim)); err != nil {
			t.Fatalf("adding title vector: %v", err)
		}
	}
	for id, sim := range abstractSims {
		if err := abstracts.Add(id, vectorWithCosine(sim)); err != nil {
			t.Fatalf("adding abstract vector: %v", err)
		}
	}

	neighbors := corpus.NewNeighborTable("fake-model", 5)
	neighbors.Neighbors["p1"] = []corpus.Neighbor{
		{PaperID: "p2", Similarity: 0.7},
		{PaperID: "p3", Similarity: 0.3},
	}

	db, err := store.Open(filepath.Join(t.TempDir(), "papers.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	for _, p := range []store.Paper{
		{ID: "p1", Title: "First", Abstract: "A", Source: store.SourceScopus},
		{ID: "p2", Title: "Second", Abstract: "B", Source: store.SourceArxiv},
		{ID: "p3", Title: "Third", Source: store.SourceArxiv},
	} {
		if err := db.Upsert(p); err != nil {
			t.Fatalf("upserting %s: %v", p.ID, err)
		}
	}

	provider := &fakeProvider{vector: []float32{1, 0}}
	now := time.Unix(0, 0)
	f := &fixture{provider: provider, clock: &now}

	f.svc = New(provider, &corpus.Corpus{
		Titles:    titles,
		Abstracts: abstracts,
		Neighbors: neighbors,
	}, resolve.New(db, zap.NewNop()), WithClock(func() time.Time { return *f.clock }))

	return f
}

func resultIDs(records []resolve.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

func bothFields() similarity.Fields {
	return similarity.Fields{Title: true, Abstract: true}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("strict cutoff keeps only close matches", func(t *testing.T) {
		f := newFixture(t)

		result, err := f.svc.Search(ctx, "machine learning", bothFields(), similarity.Strict)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}

		got := resultIDs(result.Records)
		if len(got) != 2 || got[0] != "p1" || got[1] != "p2" {
			t.Fatalf("expected [p1 p2], got %v", got)
		}
		if math.Abs(float64(result.Records[0].OverallSimilarity)-0.825) > 0.001 {
			t.Errorf("p1 overall = %v, want 0.825", result.Records[0].OverallSimilarity)
		}
		if !result.CanRelax {
			t.Error("a short page should offer the relax affordance")
		}
	})

	t.Run("empty query skips the provider entirely", func(t *testing.T) {
		f := newFixture(t)

		for _, q := range []string{"", "   ", "\t\n"} {
			result, err := f.svc.Search(ctx, q, bothFields(), similarity.Strict)
			if err != nil {
				t.Fatalf("Search(%q) failed: %v", q, err)
			}
			if len(result.Records) != 0 {
				t.Errorf("Search(%q) returned %d records", q, len(result.Records))
			}
		}
		if f.provider.calls != 0 {
			t.Errorf("provider called %d times for empty queries", f.provider.calls)
		}
	})

	t.Run("no enabled fields yields an empty page", func(t *testing.T) {
		f := newFixture(t)

		result, err := f.svc.Search(ctx, "machine learning", similarity.Fields{}, similarity.Strict)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(result.Records) != 0 {
			t.Errorf("expected no records, got %d", len(result.Records))
		}
		if f.provider.calls != 0 {
			t.Errorf("provider called %d times with no enabled fields", f.provider.calls)
		}
	})

	t.Run("relaxed results contain the strict results", func(t *testing.T) {
		f := newFixture(t)

		strict, err := f.svc.Search(ctx, "q", bothFields(), similarity.Strict)
		if err != nil {
			t.Fatalf("strict Search failed: %v", err)
		}
		relaxed, err := f.svc.Search(ctx, "q", bothFields(), similarity.Relaxed)
		if err != nil {
			t.Fatalf("relaxed Search failed: %v", err)
		}

		relaxedSet := make(map[string]bool)
		for _, r := range relaxed.Records {
			relaxedSet[r.ID] = true
		}
		for _, r := range strict.Records {
			if !relaxedSet[r.ID] {
				t.Errorf("strict result %s missing under the relaxed cutoff", r.ID)
			}
		}
	})

	t.Run("embedding failure fails the query", func(t *testing.T) {
		f := newFixture(t)
		f.provider.err = errors.New("model load failed")

		if _, err := f.svc.Search(ctx, "anything", bothFields(), similarity.Strict); err == nil {
			t.Error("expected the embedding failure to surface")
		}
	})

	t.Run("ranked candidate missing from the store is dropped silently", func(t *testing.T) {
		f := newFixture(t)
		// A paper with vectors but no metadata record.
		f.svc.corpus.Titles.Add("ghost", vectorWithCosine(0.95))
		f.svc.corpus.Abstracts.Add("ghost", vectorWithCosine(0.95))

		result, err := f.svc.Search(ctx, "machine learning", bothFields(), similarity.Strict)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		for _, r := range result.Records {
			if r.ID == "ghost" {
				t.Error("ghost must be dropped from resolved output")
			}
		}
	})
}

func TestSearchCaching(t *testing.T) {
	ctx := context.Background()

	t.Run("repeated query inside the ttl embeds once", func(t *testing.T) {
		f := newFixture(t)

		for i := 0; i < 3; i++ {
			if _, err := f.svc.Search(ctx, "same query", bothFields(), similarity.Strict); err != nil {
				t.Fatalf("Search failed: %v", err)
			}
		}
		if f.provider.calls != 1 {
			t.Errorf("expected 1 embedding call, got %d", f.provider.calls)
		}
	})

	t.Run("tier change does not recompute similarity", func(t *testing.T) {
		f := newFixture(t)

		if _, err := f.svc.Search(ctx, "q", bothFields(), similarity.Strict); err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if _, err := f.svc.Search(ctx, "q", bothFields(), similarity.Relaxed); err != nil {
			t.Fatalf("relaxed Search failed: %v", err)
		}
		if f.provider.calls != 1 {
			t.Errorf("expected 1 embedding call across tiers, got %d", f.provider.calls)
		}
	})

	t.Run("expired entries re-embed", func(t *testing.T) {
		f := newFixture(t)

		if _, err := f.svc.Search(ctx, "q", bothFields(), similarity.Strict); err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		*f.clock = f.clock.Add(CacheTTL + time.Second)
		if _, err := f.svc.Search(ctx, "q", bothFields(), similarity.Strict); err != nil {
			t.Fatalf("second Search failed: %v", err)
		}
		if f.provider.calls != 2 {
			t.Errorf("expected 2 embedding calls after expiry, got %d", f.provider.calls)
		}
	})
}

func TestSimilar(t *testing.T) {
	t.Run("resolves the precomputed neighbors", func(t *testing.T) {
		f := newFixture(t)

		records, err := f.svc.Similar("p1", 5)
		if err != nil {
			t.Fatalf("Similar failed: %v", err)
		}
		got := resultIDs(records)
		if len(got) != 2 || got[0] != "p2" || got[1] != "p3" {
			t.Errorf("expected [p2 p3], got %v", got)
		}
	})

	t.Run("unknown paper fails gracefully", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.Similar("missing", 5)
		if !errors.Is(err, corpus.ErrPaperNotFound) {
			t.Errorf("expected ErrPaperNotFound, got %v", err)
		}
	})
}
