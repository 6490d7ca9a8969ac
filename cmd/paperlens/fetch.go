package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/meridianlab/paperlens/internal/artifact"
	"github.com/meridianlab/paperlens/internal/corpus"
)

func init() {
	rootCmd.AddCommand(fetchCmd)
}

// FetchResponse is the response for the fetch command.
type FetchResponse struct {
	Files    []string `json:"files"`
	CacheDir string   `json:"cache_dir"`
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the corpus artifacts into the local cache",
	Long: `Download the three corpus artifacts from the configured releases
URL into the cache directory. Files already cached are left untouched;
a failed download never replaces a cached file.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg := mustLoadConfig()
	log := mustNewLogger()
	defer log.Sync()

	if cfg.ReleasesURL == "" {
		exitWithError(ExitConfigError, "releases_url is not configured")
	}

	cache := artifact.New(cfg.ReleasesURL, cfg.CacheDir, artifact.WithLogger(log))

	files := []string{corpus.TitleVectorsFile, corpus.AbstractVectorsFile, corpus.NeighborsFile}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path, err := cache.Fetch(ctx, f)
		if err != nil {
			exitWithError(ExitDataError, "fetching %s: %v", f, err)
		}
		paths = append(paths, path)
	}

	if humanOutput {
		fmt.Printf("Cached %d artifacts in %s\n", len(paths), cfg.CacheDir)
		return nil
	}

	return outputJSON(FetchResponse{Files: paths, CacheDir: cfg.CacheDir})
}
