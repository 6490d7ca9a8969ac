package corpus

import (
	"context"
	"fmt"
	"sync"
)

// Fetcher resolves a remote artifact reference to a local file path.
// Implemented by artifact.Cache.
type Fetcher interface {
	Fetch(ctx context.Context, filename string) (string, error)
}

// Loader loads the corpus artifacts exactly once per process. The corpus
// is static between offline builds, so nothing is ever invalidated within
// a process lifetime.
type Loader struct {
	fetcher Fetcher

	once   sync.Once
	corpus *Corpus
	err    error
}

// NewLoader creates a loader backed by an artifact fetcher.
func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{fetcher: fetcher}
}

// Load fetches and decodes the three corpus artifacts. Repeated calls
// return the same corpus without touching the fetcher again.
func (l *Loader) Load(ctx context.Context) (*Corpus, error) {
	l.once.Do(func() {
		l.corpus, l.err = l.load(ctx)
	})
	return l.corpus, l.err
}

func (l *Loader) load(ctx context.Context) (*Corpus, error) {
	titlePath, err := l.fetcher.Fetch(ctx, TitleVectorsFile)
	if err != nil {
		return nil, fmt.Errorf("fetching title vectors: %w", err)
	}
	titles, err := LoadVectorTable(titlePath)
	if err != nil {
		return nil, err
	}

	abstractPath, err := l.fetcher.Fetch(ctx, AbstractVectorsFile)
	if err != nil {
		return nil, fmt.Errorf("fetching abstract vectors: %w", err)
	}
	abstracts, err := LoadVectorTable(abstractPath)
	if err != nil {
		return nil, err
	}

	neighborPath, err := l.fetcher.Fetch(ctx, NeighborsFile)
	if err != nil {
		return nil, fmt.Errorf("fetching neighbor table: %w", err)
	}
	neighbors, err := LoadNeighborTable(neighborPath)
	if err != nil {
		return nil, err
	}

	if titles.Dimensions != abstracts.Dimensions {
		return nil, fmt.Errorf("vector table dimensions disagree: title %d, abstract %d",
			titles.Dimensions, abstracts.Dimensions)
	}

	return &Corpus{
		Titles:    titles,
		Abstracts: abstracts,
		Neighbors: neighbors,
	}, nil
}
