// Package build constructs the corpus artifacts from the metadata store:
// per-field vector tables and the precomputed top-k neighbor table. This
// is the offline batch path, run once per corpus update.
package build

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/meridianlab/paperlens/internal/corpus"
	"github.com/meridianlab/paperlens/internal/embedding"
	"github.com/meridianlab/paperlens/internal/similarity"
	"github.com/meridianlab/paperlens/internal/store"
)

// ProgressReporter receives progress updates during a build.
type ProgressReporter interface {
	OnProgress(stage string, current, total int)
}

// ProgressFunc is a function adapter for ProgressReporter.
type ProgressFunc func(stage string, current, total int)

// OnProgress implements ProgressReporter.
func (f ProgressFunc) OnProgress(stage string, current, total int) {
	f(stage, current, total)
}

// Stats summarizes one build.
type Stats struct {
	Papers            int
	TitlesEmbedded    int
	AbstractsEmbedded int
	NeighborRows      int
	Duration          time.Duration
}

// Builder produces corpus artifacts using an embedding provider.
type Builder struct {
	provider embedding.Provider
	progress ProgressReporter
}

// New creates a builder.
func New(provider embedding.Provider) *Builder {
	return &Builder{provider: provider}
}

// SetProgressReporter sets the progress reporter for the builder.
func (b *Builder) SetProgressReporter(reporter ProgressReporter) {
	b.progress = reporter
}

// Build embeds every paper's title and abstract and derives the neighbor
// table over the weighted-combined vectors. Papers with an empty text
// field are simply absent from that field's table.
func (b *Builder) Build(ctx context.Context, papers []store.Paper) (*corpus.Corpus, *Stats, error) {
	start := time.Now()
	model := b.provider.ModelName()
	dims := b.provider.Dimensions()

	titles := corpus.NewVectorTable("title", model, dims)
	abstracts := corpus.NewVectorTable("abstract", model, dims)

	if err := b.embedField(ctx, "title", papers, titles, func(p store.Paper) string { return p.Title }); err != nil {
		return nil, nil, err
	}
	if err := b.embedField(ctx, "abstract", papers, abstracts, func(p store.Paper) string { return p.Abstract }); err != nil {
		return nil, nil, err
	}

	neighbors, err := BuildNeighbors(ctx, titles, abstracts, corpus.NeighborK)
	if err != nil {
		return nil, nil, err
	}

	stats := &Stats{
		Papers:            len(papers),
		TitlesEmbedded:    titles.Len(),
		AbstractsEmbedded: abstracts.Len(),
		NeighborRows:      neighbors.Len(),
		Duration:          time.Since(start),
	}

	return &corpus.Corpus{
		Titles:    titles,
		Abstracts: abstracts,
		Neighbors: neighbors,
	}, stats, nil
}

// embedField embeds one text field of every paper into a vector table.
func (b *Builder) embedField(ctx context.Context, stage string, papers []store.Paper, table *corpus.VectorTable, text func(store.Paper) string) error {
	texts := make([]string, len(papers))
	for i, p := range papers {
		texts[i] = text(p)
	}

	total := len(texts)
	for i, t := range texts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if b.progress != nil {
			b.progress.OnProgress(stage, i+1, total)
		}

		batch, err := embedding.EmbedBatch(ctx, b.provider, []string{t})
		if err != nil {
			return fmt.Errorf("embedding %s of %s: %w", stage, papers[i].ID, err)
		}
		if batch.Len() == 0 {
			continue // empty field, skipped
		}

		if err := table.Add(papers[i].ID, batch.Vectors[0]); err != nil {
			return fmt.Errorf("adding %s vector: %w", stage, err)
		}
	}

	return nil
}

// BuildNeighbors computes the pairwise top-k similarity table over the
// weighted combination of title and abstract vectors. Only papers with
// both field vectors get a row. Rows hold min(k, n-1) entries, self
// excluded, sorted by descending similarity with identifier tie-break.
func BuildNeighbors(ctx context.Context, titles, abstracts *corpus.VectorTable, k int) (*corpus.NeighborTable, error) {
	if titles.Dimensions != abstracts.Dimensions {
		return nil, fmt.Errorf("vector table dimensions disagree: title %d, abstract %d",
			titles.Dimensions, abstracts.Dimensions)
	}

	combined := make(map[string][]float32)
	for id, titleVec := range titles.Vectors {
		abstractVec, ok := abstracts.Get(id)
		if !ok {
			continue
		}
		vec := make([]float32, len(titleVec))
		for i := range vec {
			vec[i] = titleVec[i]*similarity.TitleWeight + abstractVec[i]*similarity.AbstractWeight
		}
		combined[id] = vec
	}

	ids := make([]string, 0, len(combined))
	for id := range combined {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	table := corpus.NewNeighborTable(titles.ModelName, k)

	for _, id := range ids {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		row := make([]corpus.Neighbor, 0, len(ids)-1)
		for _, other := range ids {
			if other == id {
				continue
			}
			row = append(row, corpus.Neighbor{
				PaperID:    other,
				Similarity: similarity.Cosine(combined[id], combined[other]),
			})
		}

		sort.Slice(row, func(i, j int) bool {
			if row[i].Similarity != row[j].Similarity {
				return row[i].Similarity > row[j].Similarity
			}
			return row[i].PaperID < row[j].PaperID
		})

		if len(row) > k {
			row = row[:k]
		}
		table.Neighbors[id] = row
	}

	return table, nil
}
