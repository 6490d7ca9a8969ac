// Package embedding converts text into fixed-dimension sentence vectors.
package embedding

import (
	"context"
	"strings"
)

// Embedding is a dense vector representation of one text.
type Embedding struct {
	Vector []float32
}

// Dimensions returns the dimensionality of the embedding.
func (e Embedding) Dimensions() int {
	return len(e.Vector)
}

// Provider generates embeddings from text.
type Provider interface {
	// Embed generates an embedding for the given text. Failure of the
	// backing model fails the whole call; there are no partial results.
	Embed(ctx context.Context, text string) (Embedding, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions.
	Dimensions() int
}

// Batch holds the embeddings for the non-empty entries of an input batch.
// Positions maps each output row back to its input index, so callers can
// tell which entries were skipped.
type Batch struct {
	Vectors   [][]float32
	Positions []int
}

// Len returns the number of embedded rows.
func (b Batch) Len() int {
	return len(b.Vectors)
}

// EmbedBatch embeds an ordered sequence of texts, skipping entries that
// are empty or whitespace-only. The output row count may be smaller than
// the input count; Positions records which inputs survived. Any provider
// error aborts the whole batch.
func EmbedBatch(ctx context.Context, p Provider, texts []string) (Batch, error) {
	batch := Batch{
		Vectors:   make([][]float32, 0, len(texts)),
		Positions: make([]int, 0, len(texts)),
	}

	for i, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		emb, err := p.Embed(ctx, text)
		if err != nil {
			return Batch{}, err
		}
		batch.Vectors = append(batch.Vectors, emb.Vector)
		batch.Positions = append(batch.Positions, i)
	}

	return batch, nil
}
