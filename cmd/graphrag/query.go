package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/smallnest/graphrag"
	"github.com/smallnest/graphrag/config"
	"github.com/smallnest/graphrag/index"
	"github.com/smallnest/graphrag/query"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Answer a question over a GraphRAG index",
	Long: `Query answers a question over the parquet tables of an indexing run.

The global method runs a map-reduce over community reports and suits
questions about the dataset as a whole. The local method maps the question
to specific entities and suits questions about them. Claims are included
when the covariates table is present in the data directory.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().String("method", "global", "search method: global or local")
	queryCmd.Flags().String("data", ".", "directory with the indexer parquet tables")
	queryCmd.Flags().String("query", "", "the question to answer")
	queryCmd.Flags().Int("community-level", graphrag.DefaultCommunityLevel, "community hierarchy level to load")
	queryCmd.Flags().String("response-type", query.DefaultResponseType, "free text describing the answer shape")
	_ = queryCmd.MarkFlagRequired("query")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	method, _ := cmd.Flags().GetString("method")
	dataDir, _ := cmd.Flags().GetString("data")
	question, _ := cmd.Flags().GetString("query")
	level, _ := cmd.Flags().GetInt("community-level")
	responseType, _ := cmd.Flags().GetString("response-type")

	if method != "global" && method != "local" {
		return fmt.Errorf("unknown search method %q, expected global or local", method)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	withCovariates := false
	if method == "local" {
		if _, err := os.Stat(filepath.Join(dataDir, index.CovariatesFile)); err == nil {
			withCovariates = true
		}
	}
	data, err := index.LoadIndexData(dataDir, withCovariates)
	if err != nil {
		return err
	}

	opts := graphrag.DefaultSearchOptions()
	opts.Query = question
	opts.CommunityLevel = level
	opts.ResponseType = responseType

	var result *query.SearchResult
	if method == "global" {
		result, err = graphrag.GlobalSearch(cmd.Context(), cfg, data, opts)
	} else {
		result, err = graphrag.LocalSearch(cmd.Context(), cfg, data, opts)
	}
	if err != nil {
		return err
	}

	fmt.Println(result.Response)
	fmt.Fprintf(os.Stderr, "\n%d LLM calls, %d prompt tokens, %.1fs\n",
		result.LLMCalls, result.PromptTokens, result.CompletionTime)
	return nil
}
