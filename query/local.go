package query

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/graphrag/llm"
)

// DefaultLocalLLMMaxTokens limits the local search completion.
const DefaultLocalLLMMaxTokens = 2000

// LocalSearchConfig configures a LocalSearch engine
type LocalSearchConfig struct {
	Model        llms.Model
	TokenCounter llm.TokenCounter

	// ResponseType describes the desired answer shape, e.g. "multiple paragraphs"
	ResponseType string
	// SystemPrompt overrides the default local search prompt. It must keep the
	// {context_data} and {response_type} placeholders.
	SystemPrompt string
	// MaxTokens limits the completion length
	MaxTokens int
	// Temperature controls sampling
	Temperature float64
}

// DefaultLocalSearchConfig returns the default local search configuration
func DefaultLocalSearchConfig() *LocalSearchConfig {
	return &LocalSearchConfig{
		ResponseType: DefaultResponseType,
		SystemPrompt: LocalSearchSystemPrompt,
		MaxTokens:    DefaultLocalLLMMaxTokens,
		Temperature:  0,
	}
}

// LocalSearch answers entity-centric questions from a mixed context of
// reports, entities, relationships, claims and source texts.
type LocalSearch struct {
	config  *LocalSearchConfig
	builder *LocalContextBuilder
}

// NewLocalSearch creates a local search engine over the given context builder
func NewLocalSearch(config *LocalSearchConfig, builder *LocalContextBuilder) (*LocalSearch, error) {
	if config == nil {
		config = DefaultLocalSearchConfig()
	}
	if config.Model == nil {
		return nil, fmt.Errorf("model is required for local search")
	}
	if builder == nil {
		return nil, fmt.Errorf("context builder is required for local search")
	}
	if config.TokenCounter == nil {
		config.TokenCounter = llm.ApproxTokenCounter{}
	}
	if builder.TokenCounter == nil {
		builder.TokenCounter = config.TokenCounter
	}
	if config.ResponseType == "" {
		config.ResponseType = DefaultResponseType
	}
	if config.SystemPrompt == "" {
		config.SystemPrompt = LocalSearchSystemPrompt
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = DefaultLocalLLMMaxTokens
	}

	return &LocalSearch{config: config, builder: builder}, nil
}

// Search builds the mixed context for query and asks the model once.
func (s *LocalSearch) Search(ctx context.Context, query string) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	start := time.Now()

	contextText, records, err := s.builder.BuildContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to build local context: %w", err)
	}

	system := strings.ReplaceAll(s.config.SystemPrompt, "{context_data}", contextText)
	system = strings.ReplaceAll(system, "{response_type}", s.config.ResponseType)
	promptTokens := s.config.TokenCounter.NumTokens(system)

	response, err := llm.Complete(ctx, s.config.Model, system, query,
		llm.WithMaxTokens(s.config.MaxTokens),
		llm.WithTemperature(s.config.Temperature))
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Response:           response,
		StructuredResponse: parseStructured(response),
		ContextData:        records,
		ContextText:        contextText,
		CompletionTime:     time.Since(start).Seconds(),
		LLMCalls:           1,
		PromptTokens:       promptTokens,
	}, nil
}
