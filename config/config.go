// Package config loads the settings file driving search and prompt tuning.
// Configuration stays thin: a yaml file plus GRAPHRAG_ environment overrides
// mapped onto one struct, and constructors for the model, embedder and token
// counter it describes.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/smallnest/graphrag/llm"
	"github.com/smallnest/graphrag/log"
	"github.com/smallnest/graphrag/query"
	"github.com/smallnest/graphrag/vectorstore"
)

// LLMConfig configures the chat model.
type LLMConfig struct {
	APIKey         string        `yaml:"api_key" mapstructure:"api_key"`
	Model          string        `yaml:"model" mapstructure:"model"`
	APIBase        string        `yaml:"api_base" mapstructure:"api_base"`
	MaxTokens      int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature    float64       `yaml:"temperature" mapstructure:"temperature"`
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout"`
}

// EmbeddingsConfig configures the embedding model and the vector store the
// entity embeddings live in.
type EmbeddingsConfig struct {
	Model       string             `yaml:"model" mapstructure:"model"`
	APIBase     string             `yaml:"api_base" mapstructure:"api_base"`
	BatchSize   int                `yaml:"batch_size" mapstructure:"batch_size"`
	VectorStore vectorstore.Config `yaml:"vector_store" mapstructure:"vector_store"`
}

// InputConfig locates the input documents for prompt tuning.
type InputConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	FilePattern string `yaml:"file_pattern" mapstructure:"file_pattern"`
}

// GlobalSearchConfig tunes the map-reduce engine.
type GlobalSearchConfig struct {
	DataMaxTokens         int     `yaml:"data_max_tokens" mapstructure:"data_max_tokens"`
	MapMaxTokens          int     `yaml:"map_max_tokens" mapstructure:"map_max_tokens"`
	ReduceMaxTokens       int     `yaml:"reduce_max_tokens" mapstructure:"reduce_max_tokens"`
	Concurrency           int     `yaml:"concurrency" mapstructure:"concurrency"`
	AllowGeneralKnowledge bool    `yaml:"allow_general_knowledge" mapstructure:"allow_general_knowledge"`
	Temperature           float64 `yaml:"temperature" mapstructure:"temperature"`
}

// LocalSearchConfig tunes the mixed-context engine.
type LocalSearchConfig struct {
	TextUnitProp      float64 `yaml:"text_unit_prop" mapstructure:"text_unit_prop"`
	CommunityProp     float64 `yaml:"community_prop" mapstructure:"community_prop"`
	TopKEntities      int     `yaml:"top_k_entities" mapstructure:"top_k_entities"`
	TopKRelationships int     `yaml:"top_k_relationships" mapstructure:"top_k_relationships"`
	MaxContextTokens  int     `yaml:"max_context_tokens" mapstructure:"max_context_tokens"`
	LLMMaxTokens      int     `yaml:"llm_max_tokens" mapstructure:"llm_max_tokens"`
	Temperature       float64 `yaml:"temperature" mapstructure:"temperature"`
}

// GraphRagConfig is the root configuration.
type GraphRagConfig struct {
	LLM           LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Embeddings    EmbeddingsConfig   `yaml:"embeddings" mapstructure:"embeddings"`
	Input         InputConfig        `yaml:"input" mapstructure:"input"`
	EncodingModel string             `yaml:"encoding_model" mapstructure:"encoding_model"`
	GlobalSearch  GlobalSearchConfig `yaml:"global_search" mapstructure:"global_search"`
	LocalSearch   LocalSearchConfig  `yaml:"local_search" mapstructure:"local_search"`
}

// Default returns the configuration used when no settings file overrides it.
func Default() *GraphRagConfig {
	return &GraphRagConfig{
		LLM: LLMConfig{
			Model:          "gpt-4-turbo-preview",
			MaxTokens:      4000,
			Temperature:    0,
			RequestTimeout: 180 * time.Second,
		},
		Embeddings: EmbeddingsConfig{
			Model:     "text-embedding-3-small",
			BatchSize: 16,
			VectorStore: vectorstore.Config{
				Type:       vectorstore.TypeMemory,
				Collection: vectorstore.DefaultCollection,
			},
		},
		Input: InputConfig{
			Dir:         "input",
			FilePattern: "*.txt",
		},
		EncodingModel: llm.DefaultEncoding,
		GlobalSearch: GlobalSearchConfig{
			DataMaxTokens:   query.DefaultDataMaxTokens,
			MapMaxTokens:    query.DefaultMapMaxTokens,
			ReduceMaxTokens: query.DefaultReduceMaxTokens,
			Concurrency:     query.DefaultConcurrency,
			Temperature:     0,
		},
		LocalSearch: LocalSearchConfig{
			TextUnitProp:      query.DefaultTextUnitProp,
			CommunityProp:     query.DefaultCommunityProp,
			TopKEntities:      query.DefaultTopKEntities,
			TopKRelationships: query.DefaultTopKRelationships,
			MaxContextTokens:  query.DefaultLocalMaxTokens,
			LLMMaxTokens:      query.DefaultLocalLLMMaxTokens,
			Temperature:       0,
		},
	}
}

// Load reads the settings file at path, or searches for settings.yaml in the
// working directory when path is empty. A missing file falls back to the
// defaults. GRAPHRAG_ environment variables override file values, so
// GRAPHRAG_LLM_API_KEY beats llm.api_key.
func Load(path string) (*GraphRagConfig, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("settings")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("GRAPHRAG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Default()
	setDefaults(v, cfg)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		log.Debug("using config file %s", v.ConfigFileUsed())
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// setDefaults registers every key so environment overrides resolve even when
// the settings file does not mention them.
func setDefaults(v *viper.Viper, cfg *GraphRagConfig) {
	v.SetDefault("llm.api_key", cfg.LLM.APIKey)
	v.SetDefault("llm.model", cfg.LLM.Model)
	v.SetDefault("llm.api_base", cfg.LLM.APIBase)
	v.SetDefault("llm.max_tokens", cfg.LLM.MaxTokens)
	v.SetDefault("llm.temperature", cfg.LLM.Temperature)
	v.SetDefault("llm.request_timeout", cfg.LLM.RequestTimeout)

	v.SetDefault("embeddings.model", cfg.Embeddings.Model)
	v.SetDefault("embeddings.api_base", cfg.Embeddings.APIBase)
	v.SetDefault("embeddings.batch_size", cfg.Embeddings.BatchSize)
	v.SetDefault("embeddings.vector_store.type", cfg.Embeddings.VectorStore.Type)
	v.SetDefault("embeddings.vector_store.collection_name", cfg.Embeddings.VectorStore.Collection)
	v.SetDefault("embeddings.vector_store.db_uri", cfg.Embeddings.VectorStore.DBURI)
	v.SetDefault("embeddings.vector_store.url", cfg.Embeddings.VectorStore.URL)
	v.SetDefault("embeddings.vector_store.password", cfg.Embeddings.VectorStore.Password)
	v.SetDefault("embeddings.vector_store.conn_string", cfg.Embeddings.VectorStore.ConnString)
	v.SetDefault("embeddings.vector_store.dimensions", cfg.Embeddings.VectorStore.Dimensions)
	v.SetDefault("embeddings.vector_store.overwrite", cfg.Embeddings.VectorStore.Overwrite)

	v.SetDefault("input.dir", cfg.Input.Dir)
	v.SetDefault("input.file_pattern", cfg.Input.FilePattern)
	v.SetDefault("encoding_model", cfg.EncodingModel)

	v.SetDefault("global_search.data_max_tokens", cfg.GlobalSearch.DataMaxTokens)
	v.SetDefault("global_search.map_max_tokens", cfg.GlobalSearch.MapMaxTokens)
	v.SetDefault("global_search.reduce_max_tokens", cfg.GlobalSearch.ReduceMaxTokens)
	v.SetDefault("global_search.concurrency", cfg.GlobalSearch.Concurrency)
	v.SetDefault("global_search.allow_general_knowledge", cfg.GlobalSearch.AllowGeneralKnowledge)
	v.SetDefault("global_search.temperature", cfg.GlobalSearch.Temperature)

	v.SetDefault("local_search.text_unit_prop", cfg.LocalSearch.TextUnitProp)
	v.SetDefault("local_search.community_prop", cfg.LocalSearch.CommunityProp)
	v.SetDefault("local_search.top_k_entities", cfg.LocalSearch.TopKEntities)
	v.SetDefault("local_search.top_k_relationships", cfg.LocalSearch.TopKRelationships)
	v.SetDefault("local_search.max_context_tokens", cfg.LocalSearch.MaxContextTokens)
	v.SetDefault("local_search.llm_max_tokens", cfg.LocalSearch.LLMMaxTokens)
	v.SetDefault("local_search.temperature", cfg.LocalSearch.Temperature)
}

// applyEnvOverrides fills the API key from the conventional variables when
// the settings left it empty.
func (c *GraphRagConfig) applyEnvOverrides() {
	if c.LLM.APIKey == "" {
		if key := os.Getenv("GRAPHRAG_API_KEY"); key != "" {
			c.LLM.APIKey = key
		}
	}
	if c.LLM.APIKey == "" {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			c.LLM.APIKey = key
		}
	}
}

// ChatModel creates the configured chat model.
func (c *GraphRagConfig) ChatModel() (llms.Model, error) {
	var opts []openai.Option
	if c.LLM.Model != "" {
		opts = append(opts, openai.WithModel(c.LLM.Model))
	}
	if c.LLM.APIKey != "" {
		opts = append(opts, openai.WithToken(c.LLM.APIKey))
	}
	if c.LLM.APIBase != "" {
		opts = append(opts, openai.WithBaseURL(c.LLM.APIBase))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return model, nil
}

// Embedder creates the configured embedding client.
func (c *GraphRagConfig) Embedder() (llm.Embedder, error) {
	return llm.NewOpenAIEmbedder(llm.OpenAIEmbedderConfig{
		APIKey:    c.LLM.APIKey,
		BaseURL:   c.Embeddings.APIBase,
		Model:     c.Embeddings.Model,
		BatchSize: c.Embeddings.BatchSize,
		Timeout:   c.LLM.RequestTimeout,
	})
}

// TokenCounter creates the configured token counter, falling back to the
// approximate one when the encoding cannot be loaded.
func (c *GraphRagConfig) TokenCounter() llm.TokenCounter {
	counter, err := llm.NewTokenCounter(c.EncodingModel)
	if err != nil {
		log.Warn("falling back to approximate token counting: %v", err)
		return llm.ApproxTokenCounter{}
	}
	return counter
}
