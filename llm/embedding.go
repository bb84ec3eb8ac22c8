package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/embeddings"
)

// Embedder produces semantic embeddings for queries and documents
type Embedder interface {
	// EmbedDocuments embeds a batch of texts
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	// EmbedQuery embeds a single query text
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// Dimensions returns the embedding dimensionality, 0 if unknown yet
	Dimensions() int
}

// OpenAIEmbedderConfig configures an OpenAIEmbedder. It works with any
// OpenAI-compatible embedding endpoint (OpenAI, Azure ML, TEI, LocalAI).
type OpenAIEmbedderConfig struct {
	// APIKey authenticates against the service, optional for local endpoints
	APIKey string
	// BaseURL overrides the service URL, empty means api.openai.com
	BaseURL string
	// Model is the embedding model name
	Model string
	// BatchSize caps how many texts go into one request, default 16
	BatchSize int
	// Timeout bounds each HTTP request, default 30s
	Timeout time.Duration
}

// OpenAIEmbedder calls an OpenAI-compatible embeddings API
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	batchSize  int
	dimensions int
}

var _ Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder creates an embedder backed by the go-openai client
func NewOpenAIEmbedder(cfg OpenAIEmbedderConfig) (*OpenAIEmbedder, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("embedding model is required")
	}

	apiKey := cfg.APIKey
	if apiKey == "" {
		// Local services don't need a real key
		apiKey = "dummy-key"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 16
	}

	return &OpenAIEmbedder{
		client:    openai.NewClientWithConfig(clientConfig),
		model:     cfg.Model,
		batchSize: batchSize,
	}, nil
}

// EmbedDocuments embeds texts in batches of the configured size
func (e *OpenAIEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	result := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: batch,
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			return nil, fmt.Errorf("embedding request failed: %w", err)
		}
		if len(resp.Data) != len(batch) {
			return nil, fmt.Errorf("embedding service returned %d embeddings for %d texts", len(resp.Data), len(batch))
		}

		for _, data := range resp.Data {
			if e.dimensions == 0 {
				e.dimensions = len(data.Embedding)
			}
			result = append(result, data.Embedding)
		}
	}

	return result, nil
}

// EmbedQuery embeds a single query text
func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// Dimensions returns the embedding dimensionality observed so far
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Model returns the embedding model name
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

// LangChainEmbedder adapts langchaingo's embeddings.Embedder to the Embedder interface
type LangChainEmbedder struct {
	embedder   embeddings.Embedder
	dimensions int
}

var _ Embedder = (*LangChainEmbedder)(nil)

// NewLangChainEmbedder creates an adapter for langchaingo embedders
func NewLangChainEmbedder(embedder embeddings.Embedder) *LangChainEmbedder {
	return &LangChainEmbedder{embedder: embedder}
}

// EmbedDocuments embeds texts using the underlying langchaingo embedder
func (l *LangChainEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := l.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("langchain embedder failed: %w", err)
	}
	if l.dimensions == 0 && len(vectors) > 0 {
		l.dimensions = len(vectors[0])
	}
	return vectors, nil
}

// EmbedQuery embeds a single query using the underlying langchaingo embedder
func (l *LangChainEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := l.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("langchain embedder failed: %w", err)
	}
	if l.dimensions == 0 {
		l.dimensions = len(vector)
	}
	return vector, nil
}

// Dimensions returns the embedding dimensionality observed so far
func (l *LangChainEmbedder) Dimensions() int {
	return l.dimensions
}
