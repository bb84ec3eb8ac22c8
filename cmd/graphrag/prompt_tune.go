package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/smallnest/graphrag"
	"github.com/smallnest/graphrag/config"
	"github.com/smallnest/graphrag/prompttune"
)

var promptTuneCmd = &cobra.Command{
	Use:   "prompt-tune",
	Short: "Generate indexing prompts fitted to a corpus",
	Long: `Prompt-tune reads the input documents of a project, discovers its domain,
persona and language, generates worked extraction examples from selected
chunks and writes the three indexing prompts ready for the next run.`,
	RunE: runPromptTune,
}

func init() {
	promptTuneCmd.Flags().String("root", ".", "project root with settings.yaml and the input directory")
	promptTuneCmd.Flags().String("domain", "", "domain of the corpus, discovered when empty")
	promptTuneCmd.Flags().String("selection-method", string(prompttune.SelectRandom), "chunk selection method: random, top or auto")
	promptTuneCmd.Flags().Int("limit", prompttune.DefaultLimit, "number of chunks shown to the model")
	promptTuneCmd.Flags().String("language", "", "output language, detected when empty")
	promptTuneCmd.Flags().Int("max-tokens", prompttune.DefaultMaxTokens, "token budget of the extraction prompt")
	promptTuneCmd.Flags().Int("chunk-size", prompttune.DefaultChunkSize, "chunk size in tokens")
	promptTuneCmd.Flags().Int("min-examples-required", prompttune.DefaultMinExamplesRequired, "extraction examples kept even when over budget")
	promptTuneCmd.Flags().Bool("no-entity-types", false, "generate untyped extraction prompts")
	promptTuneCmd.Flags().String("output", "prompts", "directory to write the prompts into, relative to root")

	rootCmd.AddCommand(promptTuneCmd)
}

func runPromptTune(cmd *cobra.Command, args []string) error {
	root, _ := cmd.Flags().GetString("root")
	domain, _ := cmd.Flags().GetString("domain")
	method, _ := cmd.Flags().GetString("selection-method")
	limit, _ := cmd.Flags().GetInt("limit")
	language, _ := cmd.Flags().GetString("language")
	maxTokens, _ := cmd.Flags().GetInt("max-tokens")
	chunkSize, _ := cmd.Flags().GetInt("chunk-size")
	minExamples, _ := cmd.Flags().GetInt("min-examples-required")
	noEntityTypes, _ := cmd.Flags().GetBool("no-entity-types")
	output, _ := cmd.Flags().GetString("output")

	switch prompttune.SelectionMethod(method) {
	case prompttune.SelectRandom, prompttune.SelectTop, prompttune.SelectAuto:
	default:
		return fmt.Errorf("unknown selection method %q, expected random, top or auto", method)
	}

	path := cfgFile
	if path == "" {
		path = filepath.Join(root, "settings.yaml")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if !filepath.IsAbs(cfg.Input.Dir) {
		cfg.Input.Dir = filepath.Join(root, cfg.Input.Dir)
	}

	prompts, err := graphrag.PromptTune(cmd.Context(), cfg, graphrag.TuneOptions{
		Domain:              domain,
		Language:            language,
		SelectionMethod:     prompttune.SelectionMethod(method),
		Limit:               limit,
		MaxTokens:           maxTokens,
		ChunkSize:           chunkSize,
		MinExamplesRequired: minExamples,
		SkipEntityTypes:     noEntityTypes,
	})
	if err != nil {
		return err
	}

	if !filepath.IsAbs(output) {
		output = filepath.Join(root, output)
	}
	if err := prompttune.WritePrompts(output, prompts); err != nil {
		return err
	}
	fmt.Printf("prompts written to %s\n", output)
	return nil
}
