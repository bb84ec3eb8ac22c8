package query

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/graphrag/llm"
	"github.com/smallnest/graphrag/log"
	"github.com/smallnest/graphrag/model"
)

// Default parameters of a global search.
const (
	DefaultDataMaxTokens   = 12000
	DefaultMapMaxTokens    = 1000
	DefaultReduceMaxTokens = 2000
	DefaultConcurrency     = 32
	DefaultResponseType    = "multiple paragraphs"
)

// GlobalSearchConfig configures a GlobalSearch engine
type GlobalSearchConfig struct {
	Model        llms.Model
	TokenCounter llm.TokenCounter

	// ResponseType describes the desired answer shape, e.g. "multiple paragraphs"
	ResponseType string
	// AllowGeneralKnowledge lets the answer draw on knowledge outside the dataset
	AllowGeneralKnowledge bool
	// JSONMode asks the map stage for strict JSON output
	JSONMode bool

	// DataMaxTokens bounds each map context window and the reduce context
	DataMaxTokens int
	// MapMaxTokens limits each map completion
	MapMaxTokens int
	// ReduceMaxTokens limits the final completion
	ReduceMaxTokens int
	// Temperature controls sampling for both stages
	Temperature float64
	// Concurrency bounds the parallel map calls
	Concurrency int
}

// DefaultGlobalSearchConfig returns the default global search configuration
func DefaultGlobalSearchConfig() *GlobalSearchConfig {
	return &GlobalSearchConfig{
		ResponseType:    DefaultResponseType,
		JSONMode:        true,
		DataMaxTokens:   DefaultDataMaxTokens,
		MapMaxTokens:    DefaultMapMaxTokens,
		ReduceMaxTokens: DefaultReduceMaxTokens,
		Temperature:     0,
		Concurrency:     DefaultConcurrency,
	}
}

// GlobalSearch answers a question over the whole corpus with a map-reduce
// over community reports.
type GlobalSearch struct {
	config  *GlobalSearchConfig
	builder *GlobalContextBuilder
}

// NewGlobalSearch creates a global search engine over the given reports.
// Entities are optional and improve report ordering through occurrence
// weights.
func NewGlobalSearch(config *GlobalSearchConfig, reports []model.CommunityReport, entities []model.Entity) (*GlobalSearch, error) {
	if config == nil {
		config = DefaultGlobalSearchConfig()
	}
	if config.Model == nil {
		return nil, fmt.Errorf("model is required for global search")
	}
	if config.TokenCounter == nil {
		config.TokenCounter = llm.ApproxTokenCounter{}
	}
	if config.ResponseType == "" {
		config.ResponseType = DefaultResponseType
	}
	if config.DataMaxTokens <= 0 {
		config.DataMaxTokens = DefaultDataMaxTokens
	}
	if config.MapMaxTokens <= 0 {
		config.MapMaxTokens = DefaultMapMaxTokens
	}
	if config.ReduceMaxTokens <= 0 {
		config.ReduceMaxTokens = DefaultReduceMaxTokens
	}
	if config.Concurrency <= 0 {
		config.Concurrency = DefaultConcurrency
	}

	builder := &GlobalContextBuilder{
		Reports:                  reports,
		Entities:                 entities,
		TokenCounter:             config.TokenCounter,
		IncludeCommunityRank:     true,
		IncludeCommunityWeight:   true,
		NormalizeCommunityWeight: true,
		MaxContextTokens:         config.DataMaxTokens,
	}

	return &GlobalSearch{config: config, builder: builder}, nil
}

// mapPoint is one rated key point from a map batch.
type mapPoint struct {
	Analyst     int
	Description string
	Score       float64
}

// Search runs the map-reduce search for query.
func (s *GlobalSearch) Search(ctx context.Context, query string) (*SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	start := time.Now()

	contexts, records := s.builder.BuildContext()
	log.Info("global search: %d context batches for query %q", len(contexts), query)

	points, mapTokens := s.mapAll(ctx, query, contexts)
	answer, reduceTokens, reduceCalls, err := s.reduce(ctx, query, points)
	if err != nil {
		return nil, err
	}

	return &SearchResult{
		Response:           answer,
		StructuredResponse: parseStructured(answer),
		ContextData:        records,
		ContextText:        strings.Join(contexts, "\n\n"),
		CompletionTime:     time.Since(start).Seconds(),
		LLMCalls:           len(contexts) + reduceCalls,
		PromptTokens:       mapTokens + reduceTokens,
	}, nil
}

// mapAll runs the map stage over every context window with bounded
// concurrency and collects the rated points in window order.
func (s *GlobalSearch) mapAll(ctx context.Context, query string, contexts []string) ([]mapPoint, int) {
	type mapResult struct {
		index  int
		points []mapPoint
		tokens int
	}

	results := make(chan mapResult, len(contexts))
	sem := make(chan struct{}, s.config.Concurrency)
	var wg sync.WaitGroup

	for i, contextData := range contexts {
		wg.Add(1)
		go func(idx int, data string) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic in map batch %d: %v", idx, r)
					results <- mapResult{index: idx}
				}
			}()

			sem <- struct{}{}
			defer func() { <-sem }()

			points, tokens := s.mapBatch(ctx, query, idx, data)
			results <- mapResult{index: idx, points: points, tokens: tokens}
		}(i, contextData)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	byBatch := make([][]mapPoint, len(contexts))
	totalTokens := 0
	for res := range results {
		byBatch[res.index] = res.points
		totalTokens += res.tokens
	}

	var points []mapPoint
	for _, batch := range byBatch {
		points = append(points, batch...)
	}
	return points, totalTokens
}

// mapBatch asks the model for rated key points over one context window.
// Failures degrade to an empty point list so one bad batch cannot sink the
// whole search.
func (s *GlobalSearch) mapBatch(ctx context.Context, query string, index int, contextData string) ([]mapPoint, int) {
	system := strings.ReplaceAll(MapSystemPrompt, "{context_data}", contextData)
	tokens := s.config.TokenCounter.NumTokens(system)

	opts := []llm.CompleteOption{
		llm.WithMaxTokens(s.config.MapMaxTokens),
		llm.WithTemperature(s.config.Temperature),
	}
	if s.config.JSONMode {
		opts = append(opts, llm.WithJSONMode())
	}

	response, err := llm.Complete(ctx, s.config.Model, system, query, opts...)
	if err != nil {
		log.Warn("map batch %d failed, continuing without it: %v", index, err)
		return nil, tokens
	}

	points, err := parseMapResponse(response, index)
	if err != nil {
		log.Warn("map batch %d returned unparseable points, continuing without it: %v", index, err)
		return nil, tokens
	}
	return points, tokens
}

// parseMapResponse decodes the {"points": [...]} payload of a map response.
func parseMapResponse(response string, analyst int) ([]mapPoint, error) {
	var payload struct {
		Points []struct {
			Description string  `json:"description"`
			Score       float64 `json:"score"`
		} `json:"points"`
	}
	if err := json.Unmarshal([]byte(stripCodeFence(response)), &payload); err != nil {
		return nil, err
	}

	points := make([]mapPoint, 0, len(payload.Points))
	for _, p := range payload.Points {
		points = append(points, mapPoint{Analyst: analyst, Description: p.Description, Score: p.Score})
	}
	return points, nil
}

// stripCodeFence unwraps a markdown-fenced JSON payload.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// reduce merges the rated points into the final answer. Zero-scored and
// empty points are dropped; when nothing survives the canned no-data answer
// is returned without a model call.
func (s *GlobalSearch) reduce(ctx context.Context, query string, points []mapPoint) (string, int, int, error) {
	kept := make([]mapPoint, 0, len(points))
	for _, p := range points {
		if p.Score > 0 && strings.TrimSpace(p.Description) != "" {
			kept = append(kept, p)
		}
	}
	if len(kept) == 0 && !s.config.AllowGeneralKnowledge {
		log.Warn("no surviving key points, returning the no-data answer")
		return NoDataAnswer, 0, 0, nil
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Score > kept[j].Score
	})

	var sections []string
	totalTokens := 0
	for _, p := range kept {
		section := fmt.Sprintf("----Analyst %d----\nImportance Score: %g\n%s", p.Analyst+1, p.Score, p.Description)
		sectionTokens := s.config.TokenCounter.NumTokens(section)
		if totalTokens+sectionTokens > s.config.DataMaxTokens {
			break
		}
		sections = append(sections, section)
		totalTokens += sectionTokens
	}

	system := strings.ReplaceAll(ReduceSystemPrompt, "{report_data}", strings.Join(sections, "\n\n"))
	system = strings.ReplaceAll(system, "{response_type}", s.config.ResponseType)
	if s.config.AllowGeneralKnowledge {
		system += "\n" + GeneralKnowledgeInstruction
	}
	promptTokens := s.config.TokenCounter.NumTokens(system)

	response, err := llm.Complete(ctx, s.config.Model, system, query,
		llm.WithMaxTokens(s.config.ReduceMaxTokens),
		llm.WithTemperature(s.config.Temperature))
	if err != nil {
		return "", promptTokens, 1, fmt.Errorf("reduce failed: %w", err)
	}
	return response, promptTokens, 1, nil
}
