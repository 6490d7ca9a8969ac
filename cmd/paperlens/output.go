package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/meridianlab/paperlens/internal/resolve"
	"github.com/meridianlab/paperlens/internal/store"
)

// ResultTitleMaxLen bounds titles in human-readable result listings.
const ResultTitleMaxLen = 70

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PaperResult is one resolved paper in a JSON response. Per-field
// similarities are null when the field produced no signal.
type PaperResult struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Abstract           string   `json:"abstract,omitempty"`
	DOI                string   `json:"doi,omitempty"`
	SourceID           string   `json:"source_id,omitempty"`
	Source             string   `json:"source"`
	Link               string   `json:"link,omitempty"`
	TitleSimilarity    *float32 `json:"title_similarity"`
	AbstractSimilarity *float32 `json:"abstract_similarity"`
	OverallSimilarity  float32  `json:"overall_similarity"`
}

// buildPaperResults converts resolved records to the JSON response shape.
func buildPaperResults(records []resolve.Record) []PaperResult {
	results := make([]PaperResult, 0, len(records))
	for _, r := range records {
		result := PaperResult{
			ID:                r.ID,
			Title:             r.Title,
			Abstract:          r.Abstract,
			DOI:               r.DOI,
			SourceID:          r.SourceID,
			Source:            r.Source,
			Link:              sourceLink(r.Paper),
			OverallSimilarity: r.OverallSimilarity,
		}
		if r.TitleSimilarity.Valid {
			v := r.TitleSimilarity.Value
			result.TitleSimilarity = &v
		}
		if r.AbstractSimilarity.Valid {
			v := r.AbstractSimilarity.Value
			result.AbstractSimilarity = &v
		}
		results = append(results, result)
	}
	return results
}

// sourceLink builds the outbound link for a paper based on its corpus of
// origin.
func sourceLink(p store.Paper) string {
	switch p.Source {
	case store.SourceScopus:
		if p.SourceID == "" {
			return ""
		}
		// Scopus EIDs look like "2-s2.0:85012345678"; the record URL
		// wants the part after the last colon.
		scp := p.SourceID
		if i := strings.LastIndex(scp, ":"); i >= 0 {
			scp = scp[i+1:]
		}
		return "https://www.scopus.com/inward/record.uri?partnerID=HzOxMe3b&scp=" + scp + "&origin=inward"
	case store.SourceArxiv:
		if p.DOI == "" {
			return ""
		}
		return "https://doi.org/" + p.DOI
	}
	return ""
}

// printResultsHuman prints resolved results in human-readable format.
func printResultsHuman(records []resolve.Record) {
	for i, r := range records {
		fmt.Printf("%d. [%.1f%%] %s\n", i+1, r.OverallSimilarity*100, r.ID)
		fmt.Printf("   %s\n", truncateString(r.Title, ResultTitleMaxLen))
		if r.TitleSimilarity.Valid && r.AbstractSimilarity.Valid {
			fmt.Printf("   title %.1f%% / abstract %.1f%%\n",
				r.TitleSimilarity.Value*100, r.AbstractSimilarity.Value*100)
		}
		if !r.HasAbstract() {
			fmt.Printf("   (no abstract)\n")
		}
		if link := sourceLink(r.Paper); link != "" {
			fmt.Printf("   %s\n", link)
		}
		fmt.Println()
	}
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
