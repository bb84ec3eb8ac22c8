package prompttune

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/smallnest/graphrag/llm"
	"github.com/smallnest/graphrag/log"
)

// DefaultFilePattern matches the input documents read by LoadDocs.
const DefaultFilePattern = "*.txt"

// LoadDocs reads every file under root whose base name matches pattern and
// returns their contents. Files are visited in lexical order so repeated runs
// see the documents in the same order.
func LoadDocs(root, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultFilePattern
	}

	var docs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		matched, err := filepath.Match(pattern, d.Name())
		if err != nil {
			return err
		}
		if !matched {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		if text := strings.TrimSpace(string(data)); text != "" {
			docs = append(docs, text)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load input documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no input documents matching %q found in %s", pattern, root)
	}

	log.Info("loaded %d input documents from %s", len(docs), root)
	return docs, nil
}

// TokenTextSplitter splits text into chunks of roughly ChunkSize tokens,
// breaking on word boundaries.
type TokenTextSplitter struct {
	ChunkSize int
	Counter   llm.TokenCounter
}

// NewTokenTextSplitter creates a TokenTextSplitter. A nil counter falls back
// to the approximate counter.
func NewTokenTextSplitter(chunkSize int, counter llm.TokenCounter) *TokenTextSplitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if counter == nil {
		counter = llm.ApproxTokenCounter{}
	}
	return &TokenTextSplitter{
		ChunkSize: chunkSize,
		Counter:   counter,
	}
}

// SplitText splits text into token-bounded chunks. Whitespace runs collapse
// to single spaces; a single word longer than the budget becomes its own
// chunk rather than being dropped.
func (s *TokenTextSplitter) SplitText(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	used := 0

	for _, word := range words {
		tokens := s.Counter.NumTokens(word)
		if used+tokens > s.ChunkSize && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, " "))
			current = current[:0]
			used = 0
		}
		current = append(current, word)
		used += tokens
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	return chunks
}

// SplitDocuments splits every document and returns the flattened chunk list.
func (s *TokenTextSplitter) SplitDocuments(docs []string) []string {
	var chunks []string
	for _, doc := range docs {
		chunks = append(chunks, s.SplitText(doc)...)
	}
	return chunks
}
