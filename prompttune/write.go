package prompttune

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/smallnest/graphrag/log"
)

// File names of the written prompt files.
const (
	EntityExtractionFile    = "entity_extraction.txt"
	EntitySummarizationFile = "summarize_descriptions.txt"
	CommunityReportFile     = "community_report.txt"
)

// WritePrompts stores the three generated prompts as UTF-8 text files under
// dir, creating the directory when needed.
func WritePrompts(dir string, prompts *Prompts) error {
	if prompts == nil {
		return fmt.Errorf("prompts are required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create prompt directory %s: %w", dir, err)
	}

	files := map[string]string{
		EntityExtractionFile:    prompts.EntityExtraction,
		EntitySummarizationFile: prompts.EntitySummarization,
		CommunityReportFile:     prompts.CommunityReport,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}

	log.Info("wrote %d tuned prompts to %s", len(files), dir)
	return nil
}
