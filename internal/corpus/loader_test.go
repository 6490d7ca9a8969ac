package corpus

import (
	"context"
	"path/filepath"
	"testing"
)

// dirFetcher serves artifacts from a local directory, counting fetches.
type dirFetcher struct {
	dir     string
	fetches int
}

func (f *dirFetcher) Fetch(ctx context.Context, filename string) (string, error) {
	f.fetches++
	return filepath.Join(f.dir, filename), nil
}

func writeTestArtifacts(t *testing.T, dir string) {
	t.Helper()

	titles := NewVectorTable("title", "test-model", 2)
	titles.Add("p1", []float32{1, 0})
	abstracts := NewVectorTable("abstract", "test-model", 2)
	abstracts.Add("p1", []float32{0, 1})
	neighbors := NewNeighborTable("test-model", 5)
	neighbors.Neighbors["p1"] = nil

	if err := SaveVectorTable(titles, filepath.Join(dir, TitleVectorsFile)); err != nil {
		t.Fatalf("saving titles: %v", err)
	}
	if err := SaveVectorTable(abstracts, filepath.Join(dir, AbstractVectorsFile)); err != nil {
		t.Fatalf("saving abstracts: %v", err)
	}
	if err := SaveNeighborTable(neighbors, filepath.Join(dir, NeighborsFile)); err != nil {
		t.Fatalf("saving neighbors: %v", err)
	}
}

func TestLoader(t *testing.T) {
	t.Run("loads all three artifacts", func(t *testing.T) {
		dir := t.TempDir()
		writeTestArtifacts(t, dir)

		loader := NewLoader(&dirFetcher{dir: dir})
		c, err := loader.Load(context.Background())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if c.Titles.Len() != 1 || c.Abstracts.Len() != 1 || c.Neighbors.Len() != 1 {
			t.Errorf("unexpected corpus contents: %d/%d/%d",
				c.Titles.Len(), c.Abstracts.Len(), c.Neighbors.Len())
		}
	})

	t.Run("loads exactly once per process", func(t *testing.T) {
		dir := t.TempDir()
		writeTestArtifacts(t, dir)

		fetcher := &dirFetcher{dir: dir}
		loader := NewLoader(fetcher)

		first, err := loader.Load(context.Background())
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		second, err := loader.Load(context.Background())
		if err != nil {
			t.Fatalf("second Load failed: %v", err)
		}

		if first != second {
			t.Error("repeated loads must return the same corpus")
		}
		if fetcher.fetches != 3 {
			t.Errorf("expected 3 fetches total, got %d", fetcher.fetches)
		}
	})

	t.Run("rejects disagreeing dimensions", func(t *testing.T) {
		dir := t.TempDir()
		writeTestArtifacts(t, dir)

		// Overwrite the abstract table with a different dimension.
		abstracts := NewVectorTable("abstract", "test-model", 3)
		abstracts.Add("p1", []float32{0, 1, 0})
		if err := SaveVectorTable(abstracts, filepath.Join(dir, AbstractVectorsFile)); err != nil {
			t.Fatalf("saving abstracts: %v", err)
		}

		loader := NewLoader(&dirFetcher{dir: dir})
		if _, err := loader.Load(context.Background()); err == nil {
			t.Error("expected an error for mismatched table dimensions")
		}
	})
}
