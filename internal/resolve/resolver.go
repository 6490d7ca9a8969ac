// Package resolve joins ranked similarity scores with full paper
// metadata from the store.
package resolve

import (
	"sort"

	"go.uber.org/zap"

	"github.com/meridianlab/paperlens/internal/corpus"
	"github.com/meridianlab/paperlens/internal/similarity"
	"github.com/meridianlab/paperlens/internal/store"
)

// Record is one fully resolved result: paper metadata plus the scores it
// was ranked with.
type Record struct {
	store.Paper
	TitleSimilarity    similarity.FieldScore
	AbstractSimilarity similarity.FieldScore
	OverallSimilarity  float32
}

// Resolver looks up metadata records for scored candidates.
type Resolver struct {
	db     *store.DB
	logger *zap.Logger
}

// New creates a resolver over the metadata store.
func New(db *store.DB, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{db: db, logger: logger}
}

// Resolve joins scores with their metadata records, sorted by overall
// similarity descending (ties on identifier). Identifiers absent from
// the store are dropped from the result and logged; the corpus artifacts
// and the store are built from the same export, so a drop indicates a
// version skew between them.
func (r *Resolver) Resolve(scores []similarity.PaperScore) ([]Record, error) {
	if len(scores) == 0 {
		return nil, nil
	}

	ids := make([]string, len(scores))
	for i, s := range scores {
		ids[i] = s.PaperID
	}

	papers, err := r.db.GetByIDs(ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]store.Paper, len(papers))
	for _, p := range papers {
		byID[p.ID] = p
	}

	records := make([]Record, 0, len(scores))
	var missing []string
	for _, s := range scores {
		paper, ok := byID[s.PaperID]
		if !ok {
			missing = append(missing, s.PaperID)
			continue
		}
		records = append(records, Record{
			Paper:              paper,
			TitleSimilarity:    s.Title,
			AbstractSimilarity: s.Abstract,
			OverallSimilarity:  s.Overall,
		})
	}

	if len(missing) > 0 {
		r.logger.Warn("dropping candidates missing from metadata store",
			zap.Strings("paper_ids", missing))
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].OverallSimilarity != records[j].OverallSimilarity {
			return records[i].OverallSimilarity > records[j].OverallSimilarity
		}
		return records[i].ID < records[j].ID
	})

	return records, nil
}

// ResolveNeighbors resolves a precomputed neighbor row. Neighbor entries
// carry only an overall score; the per-field signals stay absent.
func (r *Resolver) ResolveNeighbors(neighbors []corpus.Neighbor) ([]Record, error) {
	scores := make([]similarity.PaperScore, len(neighbors))
	for i, n := range neighbors {
		scores[i] = similarity.PaperScore{
			PaperID: n.PaperID,
			Overall: n.Similarity,
		}
	}
	return r.Resolve(scores)
}
