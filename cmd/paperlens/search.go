package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meridianlab/paperlens/internal/search"
	"github.com/meridianlab/paperlens/internal/similarity"
)

var (
	searchNoTitle    bool
	searchNoAbstract bool
	searchMore       bool
	searchLimit      int
)

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().BoolVar(&searchNoTitle, "no-title", false, "Exclude titles from the search")
	searchCmd.Flags().BoolVar(&searchNoAbstract, "no-abstract", false, "Exclude abstracts from the search")
	searchCmd.Flags().BoolVar(&searchMore, "more", false, "Relax the similarity cutoff (show less similar matches)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", similarity.DefaultPageSize, "Maximum number of results")
}

// SearchResponse is the response for the search command.
type SearchResponse struct {
	Query    string        `json:"query"`
	Tier     string        `json:"tier"`
	Results  []PaperResult `json:"results"`
	Total    int           `json:"total"`
	CanRelax bool          `json:"can_relax"`
	Model    string        `json:"model"`
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search papers by semantic similarity",
	Long: `Search the corpus with a free-text query.

The query is embedded once and compared against every paper's title and
abstract vectors; the overall score is a weighted mean of the present
per-field similarities (abstracts weigh three times titles). Only
results above the strict cutoff are shown by default; pass --more to
drop to the relaxed cutoff.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := strings.TrimSpace(args[0])

	eng := mustOpenEngine(ctx, search.WithPageSize(searchLimit))
	defer eng.Close()

	fields := similarity.Fields{Title: !searchNoTitle, Abstract: !searchNoAbstract}
	tier := similarity.Strict
	if searchMore {
		tier = similarity.Relaxed
	}

	result, err := eng.svc.Search(ctx, query, fields, tier)
	if err != nil {
		exitWithError(ExitError, "search failed: %v", err)
	}

	if humanOutput {
		if query == "" {
			fmt.Println("Empty query; nothing to search for.")
			return nil
		}
		fmt.Printf("Search: %q (%s cutoff)\n\n", query, result.Tier)
		if len(result.Records) == 0 {
			fmt.Println("No match found with enough similarity.")
		} else {
			printResultsHuman(result.Records)
		}
		if result.CanRelax {
			fmt.Println("Run again with --more to show less similar matches.")
		}
		return nil
	}

	return outputJSON(SearchResponse{
		Query:    query,
		Tier:     result.Tier.String(),
		Results:  buildPaperResults(result.Records),
		Total:    len(result.Records),
		CanRelax: result.CanRelax,
		Model:    eng.svc.ModelName(),
	})
}
