package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meridianlab/paperlens/internal/corpus"
)

func init() {
	rootCmd.AddCommand(infoCmd)
}

// ArtifactInfo describes one cached corpus artifact.
type ArtifactInfo struct {
	File  string `json:"file"`
	Bytes int64  `json:"bytes"`
}

// InfoResponse is the response for the info command.
type InfoResponse struct {
	Model        string         `json:"model"`
	Dimensions   int            `json:"dimensions"`
	TitleVectors int            `json:"title_vectors"`
	AbstractVecs int            `json:"abstract_vectors"`
	NeighborRows int            `json:"neighbor_rows"`
	NeighborK    int            `json:"neighbor_k"`
	StorePapers  int            `json:"store_papers"`
	Artifacts    []ArtifactInfo `json:"artifacts"`
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show corpus and store statistics",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	eng := mustOpenEngine(ctx)
	defer eng.Close()

	c := eng.svc.Corpus()
	count, err := eng.db.Count()
	if err != nil {
		exitWithError(ExitError, "counting papers: %v", err)
	}

	info := InfoResponse{
		Model:        c.Titles.ModelName,
		Dimensions:   c.Titles.Dimensions,
		TitleVectors: c.Titles.Len(),
		AbstractVecs: c.Abstracts.Len(),
		NeighborRows: c.Neighbors.Len(),
		NeighborK:    c.Neighbors.K,
		StorePapers:  count,
		Artifacts:    artifactInfos(eng.cfg.CacheDir),
	}

	if humanOutput {
		fmt.Printf("Model:            %s (%d dimensions)\n", info.Model, info.Dimensions)
		fmt.Printf("Title vectors:    %d\n", info.TitleVectors)
		fmt.Printf("Abstract vectors: %d\n", info.AbstractVecs)
		fmt.Printf("Neighbor rows:    %d (top %d each)\n", info.NeighborRows, info.NeighborK)
		fmt.Printf("Store papers:     %d\n", info.StorePapers)
		for _, a := range info.Artifacts {
			fmt.Printf("Artifact:         %s (%s)\n", a.File, formatBytes(a.Bytes))
		}
		return nil
	}

	return outputJSON(info)
}

// artifactInfos stats the cached artifact files. Artifacts the cache has
// not seen yet report zero bytes.
func artifactInfos(cacheDir string) []ArtifactInfo {
	files := []string{corpus.TitleVectorsFile, corpus.AbstractVectorsFile, corpus.NeighborsFile}
	infos := make([]ArtifactInfo, 0, len(files))
	for _, f := range files {
		var size int64
		if fi, err := os.Stat(filepath.Join(cacheDir, f)); err == nil {
			size = fi.Size()
		}
		infos = append(infos, ArtifactInfo{File: f, Bytes: size})
	}
	return infos
}

// formatBytes renders a byte count with a binary unit suffix.
func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
