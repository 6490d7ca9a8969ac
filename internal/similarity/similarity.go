// Package similarity scores papers against a query embedding.
//
// Each paper carries up to two similarity signals, one per text field
// (title, abstract). Signals are combined into an overall score via a
// weighted mean over the present values only; a missing signal is
// excluded from both numerator and denominator, never coerced to zero.
package similarity

import (
	"math"

	"github.com/meridianlab/paperlens/internal/corpus"
)

// Field weights for the overall score. Abstracts carry denser topical
// signal than titles, hence the 3x weight.
const (
	TitleWeight    float32 = 0.25
	AbstractWeight float32 = 0.75
)

// FieldScore is one per-field similarity signal. Valid is false when the
// field produced no signal (disabled, source text absent, or NaN input).
type FieldScore struct {
	Value float32
	Valid bool
}

// PaperScore holds the per-field and combined similarity for one paper.
// Papers with no present field signal are never materialized as scores.
type PaperScore struct {
	PaperID  string
	Title    FieldScore
	Abstract FieldScore
	Overall  float32
}

// Fields selects which text fields contribute to the search.
type Fields struct {
	Title    bool
	Abstract bool
}

// Enabled reports whether at least one field is selected.
func (f Fields) Enabled() bool {
	return f.Title || f.Abstract
}

// Cosine computes the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
func Cosine(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denominator := float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB)))
	if denominator == 0 {
		return 0
	}

	return dot / denominator
}

// WeightedMean averages the valid scores scaled by their weights, skipping
// invalid and NaN entries. The second return is false when no score
// contributed, in which case the mean is undefined.
func WeightedMean(scores []FieldScore, weights []float32) (float32, bool) {
	var valueSum, weightSum float32
	hasOne := false

	for i, s := range scores {
		if !s.Valid || math.IsNaN(float64(s.Value)) {
			continue
		}
		hasOne = true
		valueSum += s.Value * weights[i]
		weightSum += weights[i]
	}

	if !hasOne {
		return 0, false
	}
	return valueSum / weightSum, true
}

// ScoreCorpus computes per-paper similarity between a single query vector
// and every corpus vector for each enabled field. Papers for which no
// enabled field has a vector are excluded from the result entirely.
func ScoreCorpus(query []float32, titles, abstracts *corpus.VectorTable, fields Fields) []PaperScore {
	if !fields.Enabled() {
		return nil
	}

	scored := make(map[string]*PaperScore)

	score := func(id string) *PaperScore {
		if s, ok := scored[id]; ok {
			return s
		}
		s := &PaperScore{PaperID: id}
		scored[id] = s
		return s
	}

	if fields.Title && titles != nil {
		for id, vec := range titles.Vectors {
			score(id).Title = fieldCosine(query, vec)
		}
	}
	if fields.Abstract && abstracts != nil {
		for id, vec := range abstracts.Vectors {
			score(id).Abstract = fieldCosine(query, vec)
		}
	}

	results := make([]PaperScore, 0, len(scored))
	for _, s := range scored {
		overall, ok := WeightedMean(
			[]FieldScore{s.Title, s.Abstract},
			[]float32{TitleWeight, AbstractWeight},
		)
		if !ok {
			continue
		}
		s.Overall = overall
		results = append(results, *s)
	}

	return results
}

// fieldCosine wraps Cosine as a FieldScore. Undefined computations —
// mismatched vector lengths, NaN inputs, NaN results — are marked as
// absent rather than silently scored zero.
func fieldCosine(query, vec []float32) FieldScore {
	if len(query) != len(vec) || len(query) == 0 {
		return FieldScore{}
	}
	if hasNaN(vec) || hasNaN(query) {
		return FieldScore{}
	}
	sim := Cosine(query, vec)
	if math.IsNaN(float64(sim)) {
		return FieldScore{}
	}
	return FieldScore{Value: sim, Valid: true}
}

func hasNaN(vec []float32) bool {
	for _, v := range vec {
		if math.IsNaN(float64(v)) {
			return true
		}
	}
	return false
}
