package vectorstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/smallnest/graphrag/llm"
)

// MemoryStore is a simple in-memory vector store implementation
type MemoryStore struct {
	mu    sync.RWMutex
	docs  []Document
	index map[string]int // document ID to position in docs
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory vector store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		index: make(map[string]int),
	}
}

// LoadDocuments inserts documents, replacing any with the same ID
func (s *MemoryStore) LoadDocuments(ctx context.Context, docs []Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		if pos, ok := s.index[doc.ID]; ok {
			s.docs[pos] = doc
			continue
		}
		s.index[doc.ID] = len(s.docs)
		s.docs = append(s.docs, doc)
	}
	return nil
}

// SearchByVector returns the k documents nearest to the query vector
func (s *MemoryStore) SearchByVector(ctx context.Context, vector []float32, k int) ([]ScoredDocument, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.docs) == 0 {
		return []ScoredDocument{}, nil
	}

	scored := make([]ScoredDocument, len(s.docs))
	for i, doc := range s.docs {
		scored[i] = ScoredDocument{
			Document: doc,
			Score:    CosineSimilarity(vector, doc.Vector),
		}
	}

	// Sort by similarity score (descending)
	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k], nil
}

// SearchByText embeds the text with the embedder and searches by the result
func (s *MemoryStore) SearchByText(ctx context.Context, text string, embedder llm.Embedder, k int) ([]ScoredDocument, error) {
	vector, err := embedQuery(ctx, embedder, text)
	if err != nil {
		return nil, err
	}
	return s.SearchByVector(ctx, vector, k)
}

// SearchByID returns the stored document with the given id
func (s *MemoryStore) SearchByID(ctx context.Context, id string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.index[id]
	if !ok {
		return Document{}, fmt.Errorf("document %s not found", id)
	}
	return s.docs[pos], nil
}

// Clear removes every document in the collection
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs = nil
	s.index = make(map[string]int)
	return nil
}

// Close releases resources (no-op for the in-memory store)
func (s *MemoryStore) Close() error {
	return nil
}

// Len returns the number of stored documents
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
