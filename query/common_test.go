package query

import (
	"context"
	"strings"
	"sync"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/graphrag/model"
	"github.com/smallnest/graphrag/vectorstore"
)

// route pairs a system prompt substring with the canned response or error
// for it.
type route struct {
	match    string
	response string
	err      error
}

// routedModel answers by matching the system prompt against its routes, in
// order. Safe under the concurrent map stage.
type routedModel struct {
	mu       sync.Mutex
	routes   []route
	fallback string
	calls    int
	prompts  []string
}

func (m *routedModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var system string
	if len(messages) > 0 && len(messages[0].Parts) > 0 {
		if text, ok := messages[0].Parts[0].(llms.TextContent); ok {
			system = text.Text
		}
	}
	m.calls++
	m.prompts = append(m.prompts, system)

	for _, r := range m.routes {
		if strings.Contains(system, r.match) {
			if r.err != nil {
				return nil, r.err
			}
			return &llms.ContentResponse{
				Choices: []*llms.ContentChoice{{Content: r.response}},
			}, nil
		}
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.fallback}},
	}, nil
}

func (m *routedModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	response, err := m.GenerateContent(ctx, []llms.MessageContent{llms.TextParts("human", prompt)}, opts...)
	if err != nil {
		return "", err
	}
	return response.Choices[0].Content, nil
}

func (m *routedModel) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *routedModel) systemPrompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// fixedEmbedder embeds every text to the same vector
type fixedEmbedder struct {
	vector []float32
}

func (e *fixedEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	result := make([][]float32, len(texts))
	for i := range texts {
		result[i] = e.vector
	}
	return result, nil
}

func (e *fixedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.vector, nil
}

func (e *fixedEmbedder) Dimensions() int {
	return len(e.vector)
}

func testReports() []model.CommunityReport {
	return []model.CommunityReport{
		{ID: "r-0", ShortID: "0", CommunityID: "0", Title: "Community 0",
			Summary: "people working together", FullContent: "Community 0 is a cluster of people working together.", Rank: 8.5},
		{ID: "r-1", ShortID: "1", CommunityID: "1", Title: "Community 1",
			Summary: "an unrelated group", FullContent: "Community 1 is an unrelated group.", Rank: 4},
	}
}

func testEntities() []model.Entity {
	return []model.Entity{
		{ID: "e-1", ShortID: "1", Title: "ALICE", Type: "PERSON", Description: "engineer at the lab",
			DescriptionEmbedding: []float32{1, 0, 0}, CommunityIDs: []string{"0"},
			TextUnitIDs: []string{"t-1", "t-2"}, Rank: 2},
		{ID: "e-2", ShortID: "2", Title: "BOB", Type: "PERSON", Description: "manager of the lab",
			DescriptionEmbedding: []float32{0.9, 0.1, 0}, CommunityIDs: []string{"0"},
			TextUnitIDs: []string{"t-2"}, Rank: 1},
		{ID: "e-3", ShortID: "3", Title: "CAROL", Type: "PERSON", Description: "auditor",
			DescriptionEmbedding: []float32{0, 0, 1}, CommunityIDs: []string{"1"},
			TextUnitIDs: []string{"t-3"}, Rank: 1},
	}
}

func testRelationships() []model.Relationship {
	return []model.Relationship{
		{ID: "rel-1", ShortID: "1", Source: "ALICE", Target: "BOB", Description: "works for", Weight: 2, TextUnitIDs: []string{"t-2"}},
		{ID: "rel-2", ShortID: "2", Source: "ALICE", Target: "DAVE", Description: "knows", Weight: 1, TextUnitIDs: []string{"t-1"}},
		{ID: "rel-3", ShortID: "3", Source: "CAROL", Target: "DAVE", Description: "audits", Weight: 1, TextUnitIDs: []string{"t-3"}},
	}
}

func testTextUnits() []model.TextUnit {
	return []model.TextUnit{
		{ID: "t-1", ShortID: "0", Text: "Alice joined the lab in 2020."},
		{ID: "t-2", ShortID: "1", Text: "Alice reports to Bob."},
		{ID: "t-3", ShortID: "2", Text: "Carol audited the lab."},
	}
}

func testCovariates() map[string][]model.Covariate {
	return map[string][]model.Covariate{
		"claims": {
			{ID: "c-1", ShortID: "1", SubjectID: "ALICE", SubjectType: "entity", CovariateType: "claim",
				TextUnitIDs: []string{"t-1"},
				Attributes:  map[string]any{"type": "SAFETY VIOLATION", "status": "TRUE", "description": "ignored a protocol"}},
		},
	}
}

// testEntityStore loads the test entity embeddings into a memory store
func testEntityStore(ctx context.Context) vectorstore.Store {
	store := vectorstore.NewMemoryStore()
	docs := []vectorstore.Document{}
	for _, entity := range testEntities() {
		docs = append(docs, vectorstore.Document{
			ID:         entity.ID,
			Text:       entity.Description,
			Vector:     entity.DescriptionEmbedding,
			Attributes: map[string]any{"title": entity.Title},
		})
	}
	if err := store.LoadDocuments(ctx, docs); err != nil {
		panic(err)
	}
	return store
}
