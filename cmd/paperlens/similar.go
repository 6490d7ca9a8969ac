package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridianlab/paperlens/internal/corpus"
)

var similarLimit int

func init() {
	rootCmd.AddCommand(similarCmd)

	similarCmd.Flags().IntVarP(&similarLimit, "limit", "l", corpus.NeighborK, "Maximum number of suggestions")
}

// SimilarResponse is the response for the similar command.
type SimilarResponse struct {
	Source  PaperResult   `json:"source"`
	Similar []PaperResult `json:"similar"`
	Total   int           `json:"total"`
}

var similarCmd = &cobra.Command{
	Use:   "similar <paper-id>",
	Short: "Suggest papers similar to a specific paper",
	Long: `Suggest papers similar to a given paper, using the precomputed
pairwise similarity table instead of recomputing embeddings. The source
paper is excluded from the suggestions.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func runSimilar(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	paperID := args[0]

	eng := mustOpenEngine(ctx)
	defer eng.Close()

	source, err := eng.db.GetByID(paperID)
	if err != nil {
		exitWithError(ExitError, "looking up paper: %v", err)
	}
	if source == nil {
		exitWithError(ExitNotFound, "paper %q not found in the metadata store", paperID)
	}

	records, err := eng.svc.Similar(paperID, similarLimit)
	if err != nil {
		if errors.Is(err, corpus.ErrPaperNotFound) {
			exitWithError(ExitNotFound, "paper %q has no precomputed suggestions (rebuild the corpus with 'paperlens build')", paperID)
		}
		exitWithError(ExitError, "finding similar papers: %v", err)
	}

	if humanOutput {
		fmt.Printf("Papers similar to: %s\n", paperID)
		fmt.Printf("%q\n\n", truncateString(source.Title, ResultTitleMaxLen))
		printResultsHuman(records)
		return nil
	}

	return outputJSON(SimilarResponse{
		Source:  PaperResult{ID: source.ID, Title: source.Title, Source: source.Source, DOI: source.DOI, SourceID: source.SourceID},
		Similar: buildPaperResults(records),
		Total:   len(records),
	})
}
