package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallnest/graphrag/llm"
)

// DBPool defines the interface for database connection pool
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore keeps embeddings in Postgres using the pgvector extension
// and its cosine distance operator for nearest-neighbour search.
type PostgresStore struct {
	pool       DBPool
	table      string
	dimensions int
}

var _ Store = (*PostgresStore)(nil)

// PostgresOptions configuration for Postgres connection
type PostgresOptions struct {
	ConnString string
	// Collection is the table name, default entity_description_embeddings
	Collection string
	// Dimensions sizes the vector column, default 1536
	Dimensions int
}

// NewPostgresStore creates a Postgres-backed vector store and its schema
func NewPostgresStore(ctx context.Context, opts PostgresOptions) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	store := NewPostgresStoreWithPool(pool, opts.Collection, opts.Dimensions)
	if err := store.InitSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStoreWithPool creates a store with an existing pool
// Useful for testing with mocks
func NewPostgresStoreWithPool(pool DBPool, collection string, dimensions int) *PostgresStore {
	if collection == "" {
		collection = DefaultCollection
	}
	if dimensions <= 0 {
		dimensions = 1536
	}
	return &PostgresStore{
		pool:       pool,
		table:      collection,
		dimensions: dimensions,
	}
}

// InitSchema enables pgvector and creates the collection table if needed
func (s *PostgresStore) InitSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE EXTENSION IF NOT EXISTS vector;
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			embedding vector(%d),
			attributes JSONB
		);
	`, s.table, s.dimensions)

	_, err := s.pool.Exec(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// LoadDocuments inserts documents, replacing any with the same ID
func (s *PostgresStore) LoadDocuments(ctx context.Context, docs []Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, text, embedding, attributes)
		VALUES ($1, $2, $3::vector, $4)
		ON CONFLICT (id) DO UPDATE SET
			text = EXCLUDED.text,
			embedding = EXCLUDED.embedding,
			attributes = EXCLUDED.attributes
	`, s.table)

	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}

		attrsJSON, err := json.Marshal(doc.Attributes)
		if err != nil {
			return fmt.Errorf("failed to marshal attributes: %w", err)
		}

		_, err = s.pool.Exec(ctx, query, doc.ID, doc.Text, vectorLiteral(doc.Vector), attrsJSON)
		if err != nil {
			return fmt.Errorf("failed to save document %s: %w", doc.ID, err)
		}
	}
	return nil
}

// SearchByVector returns the k documents nearest to the query vector
func (s *PostgresStore) SearchByVector(ctx context.Context, vector []float32, k int) ([]ScoredDocument, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	query := fmt.Sprintf(`
		SELECT id, text, attributes, 1 - (embedding <=> $1::vector) AS score
		FROM %s
		ORDER BY embedding <=> $1::vector
		LIMIT $2
	`, s.table)

	rows, err := s.pool.Query(ctx, query, vectorLiteral(vector), k)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var scored []ScoredDocument
	for rows.Next() {
		var doc Document
		var attrsJSON []byte
		var score float64

		if err := rows.Scan(&doc.ID, &doc.Text, &attrsJSON, &score); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		if len(attrsJSON) > 0 {
			if err := json.Unmarshal(attrsJSON, &doc.Attributes); err != nil {
				return nil, fmt.Errorf("failed to unmarshal attributes: %w", err)
			}
		}

		scored = append(scored, ScoredDocument{Document: doc, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
	}

	return scored, nil
}

// SearchByText embeds the text with the embedder and searches by the result
func (s *PostgresStore) SearchByText(ctx context.Context, text string, embedder llm.Embedder, k int) ([]ScoredDocument, error) {
	vector, err := embedQuery(ctx, embedder, text)
	if err != nil {
		return nil, err
	}
	return s.SearchByVector(ctx, vector, k)
}

// SearchByID returns the stored document with the given id
func (s *PostgresStore) SearchByID(ctx context.Context, id string) (Document, error) {
	query := fmt.Sprintf("SELECT id, text, attributes FROM %s WHERE id = $1", s.table)

	var doc Document
	var attrsJSON []byte
	err := s.pool.QueryRow(ctx, query, id).Scan(&doc.ID, &doc.Text, &attrsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return Document{}, fmt.Errorf("document %s not found", id)
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to query document %s: %w", id, err)
	}

	if len(attrsJSON) > 0 {
		if err := json.Unmarshal(attrsJSON, &doc.Attributes); err != nil {
			return Document{}, fmt.Errorf("failed to unmarshal attributes: %w", err)
		}
	}
	return doc, nil
}

// Clear removes every document in the collection
func (s *PostgresStore) Clear(ctx context.Context) error {
	query := fmt.Sprintf("DELETE FROM %s", s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// vectorLiteral renders a vector in pgvector's text format, e.g. [0.1,0.2]
func vectorLiteral(v []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, val := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(val), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
