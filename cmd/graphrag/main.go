// Package main is the entry point for the graphrag CLI.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags.
var version = "dev"

// cfgFile is the --config override, empty means ./settings.yaml.
var cfgFile string

// rootCmd is the base command for the graphrag CLI.
var rootCmd = &cobra.Command{
	Use:   "graphrag",
	Short: "Query a GraphRAG knowledge index and tune its prompts",
	Long: `graphrag answers questions over the parquet tables produced by a GraphRAG
indexing run and generates indexing prompts fitted to a new corpus.

Global search answers questions about the dataset as a whole through a
map-reduce over community reports. Local search answers questions about
specific entities from the context around them. Prompt-tune adapts the
three indexing prompts to the documents under the input directory.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./settings.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
