// Package session holds the per-session search state: the active query,
// the relaxed-threshold flag, and the expanded "similar papers" entries.
//
// A session is strictly single-user and single-threaded: every state
// transition runs to completion before the next user action is
// processed.
package session

import (
	"context"
	"strings"

	"github.com/meridianlab/paperlens/internal/corpus"
	"github.com/meridianlab/paperlens/internal/resolve"
	"github.com/meridianlab/paperlens/internal/search"
	"github.com/meridianlab/paperlens/internal/similarity"
)

// Session is one interactive exploration session.
type Session struct {
	svc *search.Service

	query   string
	fields  similarity.Fields
	relaxed bool

	// expanded maps paper identifiers to their resolved recommendation
	// sets. Collapsing removes the entry outright; re-expansion fetches
	// again.
	expanded map[string][]resolve.Record
}

// New creates an empty session. Both search fields start enabled.
func New(svc *search.Service) *Session {
	return &Session{
		svc:      svc,
		fields:   similarity.Fields{Title: true, Abstract: true},
		expanded: make(map[string][]resolve.Record),
	}
}

// SetQuery records the active query text. Whenever the text differs from
// the previous query, the whole per-query state resets: every expanded
// recommendation entry is dropped and the threshold returns to strict.
// Re-submitting the current query changes nothing.
func (s *Session) SetQuery(query string) {
	query = strings.TrimSpace(query)
	if query == s.query {
		return
	}

	s.query = query
	s.relaxed = false
	s.expanded = make(map[string][]resolve.Record)
}

// Query returns the active query text.
func (s *Session) Query() string {
	return s.query
}

// SetFields selects which text fields the search runs against. Changing
// fields does not reset the session; only query text changes do.
func (s *Session) SetFields(fields similarity.Fields) {
	s.fields = fields
}

// Fields returns the active field selection.
func (s *Session) Fields() similarity.Fields {
	return s.fields
}

// ShowMore relaxes the similarity cutoff for the active query.
func (s *Session) ShowMore() {
	s.relaxed = true
}

// Relaxed reports whether the relaxed cutoff is active.
func (s *Session) Relaxed() bool {
	return s.relaxed
}

// Tier returns the threshold tier the active query is viewed at.
func (s *Session) Tier() similarity.Tier {
	if s.relaxed {
		return similarity.Relaxed
	}
	return similarity.Strict
}

// Results runs the search for the active query at the active tier.
func (s *Session) Results(ctx context.Context) (search.Result, error) {
	return s.svc.Search(ctx, s.query, s.fields, s.Tier())
}

// ToggleSimilar flips a paper between collapsed and expanded. Expanding
// looks up the paper's precomputed neighbors and resolves their details;
// collapsing removes the entry. The returned bool reports whether the
// paper is expanded after the call. A failed expansion leaves the
// session unchanged.
func (s *Session) ToggleSimilar(paperID string) ([]resolve.Record, bool, error) {
	if _, ok := s.expanded[paperID]; ok {
		delete(s.expanded, paperID)
		return nil, false, nil
	}

	records, err := s.svc.Similar(paperID, corpus.NeighborK)
	if err != nil {
		return nil, false, err
	}

	s.expanded[paperID] = records
	return records, true, nil
}

// Similar returns the expanded recommendation set for a paper, if any.
func (s *Session) Similar(paperID string) ([]resolve.Record, bool) {
	records, ok := s.expanded[paperID]
	return records, ok
}

// ExpandedCount returns the number of papers currently expanded.
func (s *Session) ExpandedCount() int {
	return len(s.expanded)
}
