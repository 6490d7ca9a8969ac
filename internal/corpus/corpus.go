// Package corpus holds the precomputed artifacts the search engine runs
// against: per-field embedding vector tables and the pairwise top-k
// neighbor table. Artifacts are produced offline once per corpus update
// and are immutable for the lifetime of a corpus version.
package corpus

import (
	"errors"
	"fmt"
	"time"
)

// Errors returned by corpus artifact operations.
var (
	ErrArtifactNotFound   = errors.New("corpus artifact not found")
	ErrPaperNotFound      = errors.New("paper not in corpus")
	ErrUnsupportedVersion = errors.New("unsupported artifact version")
)

const (
	// CurrentVersion is the artifact format version. Increment when making
	// breaking changes to the encoding.
	CurrentVersion = 1

	// NeighborK is the number of neighbors stored per paper.
	NeighborK = 5

	// Artifact file names under the cache directory.
	TitleVectorsFile    = "title_vec.gob"
	AbstractVectorsFile = "abstract_vec.gob"
	NeighborsFile       = "similar_papers.gob"
)

// VectorTable maps paper identifiers to embedding vectors for one text
// field. All vectors share the model's fixed dimension.
type VectorTable struct {
	Version    int
	Field      string // "title" or "abstract"
	ModelName  string
	Dimensions int
	CreatedAt  time.Time
	Vectors    map[string][]float32
}

// NewVectorTable creates an empty vector table for a field.
func NewVectorTable(field, modelName string, dimensions int) *VectorTable {
	return &VectorTable{
		Version:    CurrentVersion,
		Field:      field,
		ModelName:  modelName,
		Dimensions: dimensions,
		CreatedAt:  time.Now(),
		Vectors:    make(map[string][]float32),
	}
}

// Add stores a vector for a paper, rejecting dimension mismatches.
func (t *VectorTable) Add(paperID string, vector []float32) error {
	if len(vector) != t.Dimensions {
		return fmt.Errorf("vector dimension mismatch for %s: got %d, want %d", paperID, len(vector), t.Dimensions)
	}
	t.Vectors[paperID] = vector
	return nil
}

// Get returns the vector for a paper, if present.
func (t *VectorTable) Get(paperID string) ([]float32, bool) {
	vec, ok := t.Vectors[paperID]
	return vec, ok
}

// Len returns the number of papers in the table.
func (t *VectorTable) Len() int {
	return len(t.Vectors)
}

// Neighbor is one entry of a paper's precomputed similarity row.
type Neighbor struct {
	PaperID    string
	Similarity float32
}

// NeighborTable maps each paper to its top-k most similar other papers,
// sorted by descending similarity, self excluded. Asymmetry is expected:
// B may appear in A's row without A appearing in B's.
type NeighborTable struct {
	Version   int
	K         int
	ModelName string
	CreatedAt time.Time
	Neighbors map[string][]Neighbor
}

// NewNeighborTable creates an empty neighbor table.
func NewNeighborTable(modelName string, k int) *NeighborTable {
	return &NeighborTable{
		Version:   CurrentVersion,
		K:         k,
		ModelName: modelName,
		CreatedAt: time.Now(),
		Neighbors: make(map[string][]Neighbor),
	}
}

// Lookup returns up to limit neighbors of a paper, self excluded.
// Returns ErrPaperNotFound when the paper has no precomputed row.
func (t *NeighborTable) Lookup(paperID string, limit int) ([]Neighbor, error) {
	row, ok := t.Neighbors[paperID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPaperNotFound, paperID)
	}

	neighbors := make([]Neighbor, 0, len(row))
	for _, n := range row {
		if n.PaperID == paperID {
			continue
		}
		neighbors = append(neighbors, n)
	}

	if limit > 0 && len(neighbors) > limit {
		neighbors = neighbors[:limit]
	}
	return neighbors, nil
}

// Len returns the number of papers with a neighbor row.
func (t *NeighborTable) Len() int {
	return len(t.Neighbors)
}

// Corpus bundles the loaded artifacts for one corpus version.
type Corpus struct {
	Titles    *VectorTable
	Abstracts *VectorTable
	Neighbors *NeighborTable
}

// CheckDimensions verifies the corpus vectors match the embedding
// provider's output dimension. Query and corpus vectors must come from
// the same model; comparing across dimensions is undefined.
func (c *Corpus) CheckDimensions(dimensions int) error {
	for _, t := range []*VectorTable{c.Titles, c.Abstracts} {
		if t == nil {
			continue
		}
		if t.Dimensions != dimensions {
			return fmt.Errorf("%s vectors built with %d dimensions (model %s), but the embedding provider produces %d",
				t.Field, t.Dimensions, t.ModelName, dimensions)
		}
	}
	return nil
}
