// Package main provides the paperlens CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool

	// configPath points at the paperlens.yml configuration file
	configPath string

	// logLevel controls logger verbosity
	logLevel string
)

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "paperlens",
	Short: "Semantic search and suggestions over a research-paper corpus",
	Long: `paperlens searches a bibliographic corpus by meaning rather than
keywords. Queries and paper texts share one sentence-embedding space;
results are ranked by a weighted combination of title and abstract
similarity, and each result can expand into precomputed similar-paper
suggestions.

The corpus artifacts (vector tables, neighbor table) are produced
offline with 'paperlens build' and fetched on demand from the
configured release store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "paperlens.yml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.Version = Version
}
