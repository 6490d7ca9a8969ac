package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meridianlab/paperlens/internal/corpus"
	"github.com/meridianlab/paperlens/internal/corpus/build"
	"github.com/meridianlab/paperlens/internal/store"
)

var buildOutDir string

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildOutDir, "out", "o", "", "Output directory for the artifacts (default: the cache directory)")
}

// BuildResponse is the response for the build command.
type BuildResponse struct {
	Papers            int    `json:"papers"`
	TitlesEmbedded    int    `json:"titles_embedded"`
	AbstractsEmbedded int    `json:"abstracts_embedded"`
	NeighborRows      int    `json:"neighbor_rows"`
	DurationMs        int64  `json:"duration_ms"`
	OutDir            string `json:"out_dir"`
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the corpus artifacts from the metadata store",
	Long: `Embed every paper's title and abstract and precompute the top-5
similar-papers table, then write the three artifacts (title vectors,
abstract vectors, neighbor table) to disk.

This is the offline batch step; run it once per corpus update, then
publish the artifacts at the configured releases URL. The neighbor
table and the vector tables are written together, so a rebuild
refreshes both search paths at once.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg := mustLoadConfig()
	log := mustNewLogger()
	defer log.Sync()

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		exitWithError(ExitDataError, "opening metadata store: %v", err)
	}
	defer db.Close()

	papers, err := db.All()
	if err != nil {
		exitWithError(ExitError, "reading papers: %v", err)
	}
	if len(papers) == 0 {
		exitWithError(ExitDataError, "metadata store at %s holds no papers", cfg.DatabasePath)
	}

	builder := build.New(newProvider(cfg))
	if humanOutput {
		builder.SetProgressReporter(build.ProgressFunc(func(stage string, current, total int) {
			fmt.Fprintf(os.Stderr, "\r%s: %d/%d", stage, current, total)
			if current == total {
				fmt.Fprintln(os.Stderr)
			}
		}))
	}

	c, stats, err := builder.Build(ctx, papers)
	if err != nil {
		exitWithError(ExitError, "building corpus: %v", err)
	}

	outDir := buildOutDir
	if outDir == "" {
		outDir = cfg.CacheDir
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		exitWithError(ExitError, "creating output directory: %v", err)
	}

	if err := corpus.SaveVectorTable(c.Titles, filepath.Join(outDir, corpus.TitleVectorsFile)); err != nil {
		exitWithError(ExitError, "writing title vectors: %v", err)
	}
	if err := corpus.SaveVectorTable(c.Abstracts, filepath.Join(outDir, corpus.AbstractVectorsFile)); err != nil {
		exitWithError(ExitError, "writing abstract vectors: %v", err)
	}
	if err := corpus.SaveNeighborTable(c.Neighbors, filepath.Join(outDir, corpus.NeighborsFile)); err != nil {
		exitWithError(ExitError, "writing neighbor table: %v", err)
	}

	if humanOutput {
		fmt.Printf("Built corpus artifacts in %s\n", outDir)
		fmt.Printf("  papers: %d, titles: %d, abstracts: %d, neighbor rows: %d (%.1fs)\n",
			stats.Papers, stats.TitlesEmbedded, stats.AbstractsEmbedded,
			stats.NeighborRows, stats.Duration.Seconds())
		return nil
	}

	return outputJSON(BuildResponse{
		Papers:            stats.Papers,
		TitlesEmbedded:    stats.TitlesEmbedded,
		AbstractsEmbedded: stats.AbstractsEmbedded,
		NeighborRows:      stats.NeighborRows,
		DurationMs:        stats.Duration.Milliseconds(),
		OutDir:            outDir,
	})
}
