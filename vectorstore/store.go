package vectorstore

import (
	"context"
	"fmt"
	"math"

	"github.com/smallnest/graphrag/llm"
)

// DefaultCollection is the collection holding entity description embeddings
const DefaultCollection = "entity_description_embeddings"

// Store type names accepted by Open
const (
	// TypeMemory is the in-memory store
	TypeMemory = "memory"
	// TypeSQLite stores vectors in a SQLite database file
	TypeSQLite = "sqlite"
	// TypeRedis stores vectors in Redis
	TypeRedis = "redis"
	// TypePostgres stores vectors in Postgres with the pgvector extension
	TypePostgres = "postgres"
)

// Document is an embedded record kept in a vector store
type Document struct {
	// ID is the unique identifier of the document
	ID string `json:"id"`
	// Text is the embedded content
	Text string `json:"text"`
	// Vector is the embedding of Text
	Vector []float32 `json:"vector"`
	// Attributes carries extra payload fields, e.g. the entity title
	Attributes map[string]any `json:"attributes,omitempty"`
}

// ScoredDocument pairs a document with its similarity to a query
type ScoredDocument struct {
	Document
	// Score is the cosine similarity to the query, higher is closer
	Score float64 `json:"score"`
}

// Store is the interface implemented by all vector store backends
type Store interface {
	// LoadDocuments inserts documents, replacing any with the same ID
	LoadDocuments(ctx context.Context, docs []Document) error
	// SearchByVector returns the k documents nearest to the query vector
	SearchByVector(ctx context.Context, vector []float32, k int) ([]ScoredDocument, error)
	// SearchByText embeds the text with the embedder and searches by the result
	SearchByText(ctx context.Context, text string, embedder llm.Embedder, k int) ([]ScoredDocument, error)
	// SearchByID returns the stored document with the given id
	SearchByID(ctx context.Context, id string) (Document, error)
	// Clear removes every document in the collection
	Clear(ctx context.Context) error
	// Close releases the underlying connection
	Close() error
}

// Config describes which vector store to open and how to reach it
type Config struct {
	// Type selects the backend: memory, sqlite, redis or postgres
	Type string `yaml:"type" mapstructure:"type"`
	// Collection is the table/key namespace, default entity_description_embeddings
	Collection string `yaml:"collection_name" mapstructure:"collection_name"`
	// DBURI is the database file path for the sqlite backend
	DBURI string `yaml:"db_uri" mapstructure:"db_uri"`
	// URL is the address for the redis backend, host:port
	URL string `yaml:"url" mapstructure:"url"`
	// Password authenticates the redis backend
	Password string `yaml:"password" mapstructure:"password"`
	// ConnString is the connection string for the postgres backend
	ConnString string `yaml:"conn_string" mapstructure:"conn_string"`
	// Dimensions sizes the postgres vector column, default 1536
	Dimensions int `yaml:"dimensions" mapstructure:"dimensions"`
	// Overwrite rebuilds the collection from the index instead of reusing it
	Overwrite bool `yaml:"overwrite" mapstructure:"overwrite"`
}

// Factory creates a Store from its configuration
type Factory func(ctx context.Context, cfg Config) (Store, error)

var factories = map[string]Factory{
	TypeMemory: func(ctx context.Context, cfg Config) (Store, error) {
		return NewMemoryStore(), nil
	},
	TypeSQLite: func(ctx context.Context, cfg Config) (Store, error) {
		return NewSQLiteStore(SQLiteOptions{Path: cfg.DBURI, Collection: cfg.Collection})
	},
	TypeRedis: func(ctx context.Context, cfg Config) (Store, error) {
		return NewRedisStore(RedisOptions{Addr: cfg.URL, Password: cfg.Password, Collection: cfg.Collection}), nil
	},
	TypePostgres: func(ctx context.Context, cfg Config) (Store, error) {
		return NewPostgresStore(ctx, PostgresOptions{
			ConnString: cfg.ConnString,
			Collection: cfg.Collection,
			Dimensions: cfg.Dimensions,
		})
	},
}

// Register adds a custom store factory under the given type name
func Register(storeType string, factory Factory) {
	factories[storeType] = factory
}

// Open creates the vector store described by cfg
func Open(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Type == "" {
		cfg.Type = TypeMemory
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	factory, ok := factories[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown vector store type: %s", cfg.Type)
	}

	store, err := factory(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s vector store: %w", cfg.Type, err)
	}
	return store, nil
}

// CosineSimilarity calculates cosine similarity between two float32 vectors
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct float64
	var normA float64
	var normB float64

	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// embedQuery turns query text into a vector, guarding against a nil embedder
func embedQuery(ctx context.Context, embedder llm.Embedder, text string) ([]float32, error) {
	if embedder == nil {
		return nil, fmt.Errorf("embedder is required for text search")
	}
	vector, err := embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	return vector, nil
}
