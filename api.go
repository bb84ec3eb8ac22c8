package graphrag

import (
	"context"
	"fmt"

	"github.com/smallnest/graphrag/config"
	"github.com/smallnest/graphrag/index"
	"github.com/smallnest/graphrag/log"
	"github.com/smallnest/graphrag/model"
	"github.com/smallnest/graphrag/prompttune"
	"github.com/smallnest/graphrag/query"
	"github.com/smallnest/graphrag/vectorstore"
)

// DefaultCommunityLevel is the community hierarchy depth searches draw
// reports and entities from.
const DefaultCommunityLevel = 2

// SearchOptions controls a single search call.
type SearchOptions struct {
	// Query is the user question.
	Query string
	// CommunityLevel selects the hierarchy depth to load communities from.
	// Level 0 holds the root communities; higher levels are finer-grained.
	CommunityLevel int
	// ResponseType describes the desired answer shape in free text,
	// e.g. "multiple paragraphs" or "single page report".
	ResponseType string
}

// DefaultSearchOptions returns search options with the default community
// level and response type. Set Query before use.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		CommunityLevel: DefaultCommunityLevel,
		ResponseType:   query.DefaultResponseType,
	}
}

// GlobalSearch answers opts.Query over the whole dataset with a map-reduce
// over the community reports at opts.CommunityLevel.
func GlobalSearch(ctx context.Context, cfg *config.GraphRagConfig, data *index.IndexData, opts SearchOptions) (*query.SearchResult, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if data == nil {
		return nil, fmt.Errorf("index data is required")
	}

	chatModel, err := cfg.ChatModel()
	if err != nil {
		return nil, err
	}

	reports := index.ReadIndexerReports(data.Reports, data.Nodes, opts.CommunityLevel)
	entities := index.ReadIndexerEntities(data.Nodes, data.Entities, opts.CommunityLevel)
	log.Info("global search over %d community reports at level %d", len(reports), opts.CommunityLevel)

	qcfg := query.DefaultGlobalSearchConfig()
	qcfg.Model = chatModel
	qcfg.TokenCounter = cfg.TokenCounter()
	qcfg.ResponseType = opts.ResponseType
	qcfg.AllowGeneralKnowledge = cfg.GlobalSearch.AllowGeneralKnowledge
	qcfg.Temperature = cfg.GlobalSearch.Temperature
	if cfg.GlobalSearch.DataMaxTokens > 0 {
		qcfg.DataMaxTokens = cfg.GlobalSearch.DataMaxTokens
	}
	if cfg.GlobalSearch.MapMaxTokens > 0 {
		qcfg.MapMaxTokens = cfg.GlobalSearch.MapMaxTokens
	}
	if cfg.GlobalSearch.ReduceMaxTokens > 0 {
		qcfg.ReduceMaxTokens = cfg.GlobalSearch.ReduceMaxTokens
	}
	if cfg.GlobalSearch.Concurrency > 0 {
		qcfg.Concurrency = cfg.GlobalSearch.Concurrency
	}

	engine, err := query.NewGlobalSearch(qcfg, reports, entities)
	if err != nil {
		return nil, err
	}
	return engine.Search(ctx, opts.Query)
}

// LocalSearch answers opts.Query from the context around the entities the
// query maps to. The entity description embeddings are served from the
// vector store named by cfg.Embeddings.VectorStore.
func LocalSearch(ctx context.Context, cfg *config.GraphRagConfig, data *index.IndexData, opts SearchOptions) (*query.SearchResult, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if data == nil {
		return nil, fmt.Errorf("index data is required")
	}

	chatModel, err := cfg.ChatModel()
	if err != nil {
		return nil, err
	}
	embedder, err := cfg.Embedder()
	if err != nil {
		return nil, err
	}
	counter := cfg.TokenCounter()

	entities := index.ReadIndexerEntities(data.Nodes, data.Entities, opts.CommunityLevel)
	store, err := openEntityStore(ctx, cfg.Embeddings.VectorStore, entities)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	builder := &query.LocalContextBuilder{
		Entities:      entities,
		Relationships: index.ReadIndexerRelationships(data.Relationships),
		Reports:       index.ReadIndexerReports(data.Reports, data.Nodes, opts.CommunityLevel),
		TextUnits:     index.ReadIndexerTextUnits(data.TextUnits),

		EntityStore:  store,
		Embedder:     embedder,
		TokenCounter: counter,

		MaxContextTokens:  cfg.LocalSearch.MaxContextTokens,
		TextUnitProp:      cfg.LocalSearch.TextUnitProp,
		CommunityProp:     cfg.LocalSearch.CommunityProp,
		TopKEntities:      cfg.LocalSearch.TopKEntities,
		TopKRelationships: cfg.LocalSearch.TopKRelationships,

		IncludeEntityRank:         true,
		IncludeRelationshipWeight: true,
	}
	if len(data.Covariates) > 0 {
		builder.Covariates = map[string][]model.Covariate{
			"claims": index.ReadIndexerCovariates(data.Covariates),
		}
	}

	lcfg := query.DefaultLocalSearchConfig()
	lcfg.Model = chatModel
	lcfg.TokenCounter = counter
	lcfg.ResponseType = opts.ResponseType
	lcfg.Temperature = cfg.LocalSearch.Temperature
	if cfg.LocalSearch.LLMMaxTokens > 0 {
		lcfg.MaxTokens = cfg.LocalSearch.LLMMaxTokens
	}

	engine, err := query.NewLocalSearch(lcfg, builder)
	if err != nil {
		return nil, err
	}
	return engine.Search(ctx, opts.Query)
}

// openEntityStore opens the configured vector store and loads the entity
// description embeddings into it when the collection is rebuilt. The
// in-memory store starts empty on every open, so it is always loaded.
func openEntityStore(ctx context.Context, cfg vectorstore.Config, entities []model.Entity) (vectorstore.Store, error) {
	store, err := vectorstore.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	load := cfg.Overwrite || cfg.Type == "" || cfg.Type == vectorstore.TypeMemory
	if !load {
		return store, nil
	}

	if err := store.Clear(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to clear vector store collection: %w", err)
	}
	if err := index.StoreEntitySemanticEmbeddings(ctx, entities, store); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// TuneOptions controls how PromptTune fits the indexing prompts to the
// corpus. Zero values fall back to the prompttune defaults.
type TuneOptions struct {
	// Domain grounds the prompts; discovered from the corpus when empty.
	Domain string
	// Language is the output language; detected from the corpus when empty.
	Language string
	// SelectionMethod picks the chunks shown to the model: random, top or
	// auto. Auto clusters the chunk embeddings and needs the embedder.
	SelectionMethod prompttune.SelectionMethod
	// Limit is how many chunks to select.
	Limit int
	// MaxTokens budgets the entity extraction prompt.
	MaxTokens int
	// ChunkSize is the chunk length in tokens.
	ChunkSize int
	// MinExamplesRequired is the floor of examples kept in the extraction
	// prompt even when over budget.
	MinExamplesRequired int
	// NSubsetMax caps the chunks embedded for auto selection.
	NSubsetMax int
	// K is the cluster count for auto selection.
	K int
	// SkipEntityTypes generates extraction prompts without a fixed entity
	// type list.
	SkipEntityTypes bool
}

// PromptTune generates entity extraction, description summarization and
// community report prompts fitted to the corpus under cfg.Input.Dir. Write
// the result with prompttune.WritePrompts.
func PromptTune(ctx context.Context, cfg *config.GraphRagConfig, opts TuneOptions) (*prompttune.Prompts, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	chatModel, err := cfg.ChatModel()
	if err != nil {
		return nil, err
	}

	topts := prompttune.DefaultOptions()
	topts.Model = chatModel
	topts.TokenCounter = cfg.TokenCounter()
	topts.Domain = opts.Domain
	topts.Language = opts.Language
	topts.SkipEntityTypes = opts.SkipEntityTypes
	if opts.SelectionMethod != "" {
		topts.SelectionMethod = opts.SelectionMethod
	}
	if opts.Limit > 0 {
		topts.Limit = opts.Limit
	}
	if opts.MaxTokens > 0 {
		topts.MaxTokens = opts.MaxTokens
	}
	if opts.ChunkSize > 0 {
		topts.ChunkSize = opts.ChunkSize
	}
	if opts.MinExamplesRequired > 0 {
		topts.MinExamplesRequired = opts.MinExamplesRequired
	}
	if opts.NSubsetMax > 0 {
		topts.NSubsetMax = opts.NSubsetMax
	}
	if opts.K > 0 {
		topts.K = opts.K
	}

	if topts.SelectionMethod == prompttune.SelectAuto {
		embedder, err := cfg.Embedder()
		if err != nil {
			return nil, err
		}
		topts.Embedder = embedder
	}

	tuner, err := prompttune.NewTuner(topts)
	if err != nil {
		return nil, err
	}

	docs, err := tuner.LoadChunks(ctx, cfg.Input.Dir, cfg.Input.FilePattern)
	if err != nil {
		return nil, err
	}
	return tuner.GeneratePrompts(ctx, docs)
}
