package prompttune

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/tmc/langchaingo/llms"

	"github.com/smallnest/graphrag/llm"
	"github.com/smallnest/graphrag/log"
)

// Tuning defaults.
const (
	DefaultLimit               = 15
	DefaultMaxTokens           = 2048
	DefaultChunkSize           = 200
	DefaultK                   = 15
	DefaultNSubsetMax          = 300
	DefaultMinExamplesRequired = 2
	DefaultLanguage            = "English"
)

// Options configures a prompt tuning run.
type Options struct {
	// Model runs the generation calls.
	Model llms.Model
	// Embedder embeds chunks for auto selection. Unused otherwise.
	Embedder llm.Embedder
	// TokenCounter measures chunk sizes and the example budget.
	TokenCounter llm.TokenCounter

	// Domain labels the corpus. Empty asks the model for one.
	Domain string
	// Language is the output language of the tuned prompts. Empty asks the
	// model to detect it from the sample documents.
	Language string
	// Task seeds persona and entity type generation. Empty uses the default
	// community analysis task.
	Task string

	// SelectionMethod picks the sample chunks, default random.
	SelectionMethod SelectionMethod
	// Limit caps the sampled chunks for random and top selection.
	Limit int
	// ChunkSize is the chunk budget in tokens.
	ChunkSize int
	// K is the cluster count for auto selection.
	K int
	// NSubsetMax caps how many chunks auto selection embeds.
	NSubsetMax int
	// RandomSeed fixes the sampling order, 0 seeds from the clock.
	RandomSeed int64

	// MaxTokens is the token budget of the assembled extraction prompt.
	MaxTokens int
	// MinExamplesRequired is the number of worked examples kept even when
	// they exceed the budget.
	MinExamplesRequired int
	// SkipEntityTypes selects the untyped extraction prompt.
	SkipEntityTypes bool
	// JSONMode holds the entity type call to a JSON response.
	JSONMode bool
}

// DefaultOptions returns Options with the standard tuning defaults. The
// caller still has to set Model.
func DefaultOptions() Options {
	return Options{
		SelectionMethod:     SelectRandom,
		Limit:               DefaultLimit,
		ChunkSize:           DefaultChunkSize,
		K:                   DefaultK,
		NSubsetMax:          DefaultNSubsetMax,
		MaxTokens:           DefaultMaxTokens,
		MinExamplesRequired: DefaultMinExamplesRequired,
	}
}

// Prompts holds the three generated indexing prompts.
type Prompts struct {
	EntityExtraction    string
	EntitySummarization string
	CommunityReport     string
}

// Tuner generates corpus-adapted indexing prompts.
type Tuner struct {
	opts Options
	rng  *rand.Rand
}

// NewTuner creates a Tuner, filling zero options with defaults.
func NewTuner(opts Options) (*Tuner, error) {
	if opts.Model == nil {
		return nil, fmt.Errorf("model is required for prompt tuning")
	}
	if opts.SelectionMethod == "" {
		opts.SelectionMethod = SelectRandom
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.K <= 0 {
		opts.K = DefaultK
	}
	if opts.NSubsetMax <= 0 {
		opts.NSubsetMax = DefaultNSubsetMax
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.MinExamplesRequired <= 0 {
		opts.MinExamplesRequired = DefaultMinExamplesRequired
	}
	if opts.TokenCounter == nil {
		opts.TokenCounter = llm.ApproxTokenCounter{}
	}

	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Tuner{
		opts: opts,
		rng:  rand.New(rand.NewSource(seed)),
	}, nil
}

// LoadChunks reads the input documents under root, splits them into
// token-bounded chunks and returns the sample selected by the configured
// method.
func (t *Tuner) LoadChunks(ctx context.Context, root, pattern string) ([]string, error) {
	docs, err := LoadDocs(root, pattern)
	if err != nil {
		return nil, err
	}

	splitter := NewTokenTextSplitter(t.opts.ChunkSize, t.opts.TokenCounter)
	chunks := splitter.SplitDocuments(docs)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("input documents produced no chunks")
	}

	selector := &chunkSelector{
		method:     t.opts.SelectionMethod,
		limit:      t.opts.Limit,
		k:          t.opts.K,
		nSubsetMax: t.opts.NSubsetMax,
		embedder:   t.opts.Embedder,
		rng:        t.rng,
	}
	return selector.selectChunks(ctx, chunks)
}

// GeneratePrompts runs the generation calls against the sample documents and
// assembles the three tuned prompts. Domain and language are only generated
// when not preset in the options.
func (t *Tuner) GeneratePrompts(ctx context.Context, docs []string) (*Prompts, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents to tune prompts on")
	}

	domain := t.opts.Domain
	if domain == "" {
		var err error
		if domain, err = GenerateDomain(ctx, t.opts.Model, docs); err != nil {
			return nil, err
		}
	}
	log.Info("tuning prompts for domain: %s", domain)

	persona, err := GeneratePersona(ctx, t.opts.Model, domain, t.opts.Task)
	if err != nil {
		return nil, err
	}

	language := t.opts.Language
	if language == "" {
		if language, err = DetectLanguage(ctx, t.opts.Model, docs); err != nil {
			return nil, err
		}
	}
	log.Info("tuning prompts in language: %s", language)

	var entityTypes []string
	if !t.opts.SkipEntityTypes {
		entityTypes, err = GenerateEntityTypes(ctx, t.opts.Model, persona, t.opts.Task, docs, t.opts.JSONMode)
		if err != nil {
			return nil, err
		}
	}

	examples, err := GenerateEntityRelationshipExamples(ctx, t.opts.Model, persona, entityTypes, docs, language)
	if err != nil {
		return nil, err
	}

	rating, err := GenerateCommunityReportRating(ctx, t.opts.Model, domain, persona, docs)
	if err != nil {
		return nil, err
	}

	role, err := GenerateCommunityReporterRole(ctx, t.opts.Model, domain, persona, docs)
	if err != nil {
		return nil, err
	}

	prompts := &Prompts{
		EntityExtraction: CreateEntityExtractionPrompt(
			entityTypes, docs, examples, language,
			t.opts.TokenCounter, t.opts.MaxTokens, t.opts.MinExamplesRequired),
		EntitySummarization: CreateEntitySummarizationPrompt(persona, language),
		CommunityReport:     CreateCommunityReportPrompt(persona, role, rating, language),
	}
	log.Info("generated tuned prompts from %d sample documents", len(docs))
	return prompts, nil
}
