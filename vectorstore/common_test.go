package vectorstore

import (
	"context"
	"fmt"
)

// stubEmbedder returns a fixed vector for any text
type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = s.vector
	}
	return result, nil
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

func (s *stubEmbedder) Dimensions() int {
	return len(s.vector)
}

// testDocuments builds n documents with orthogonal-ish unit vectors
func testDocuments(n int) []Document {
	docs := make([]Document, n)
	for i := range docs {
		vector := make([]float32, n)
		vector[i] = 1
		docs[i] = Document{
			ID:         fmt.Sprintf("doc-%d", i),
			Text:       fmt.Sprintf("description of entity %d", i),
			Vector:     vector,
			Attributes: map[string]any{"title": fmt.Sprintf("ENTITY %d", i)},
		}
	}
	return docs
}
