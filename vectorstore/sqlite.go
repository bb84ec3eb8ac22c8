package vectorstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/smallnest/graphrag/llm"
)

// SQLiteStore keeps embeddings in a SQLite table, one row per document.
// Similarity is computed client-side, which is fine for the entity
// description collections the query engines work with.
type SQLiteStore struct {
	db    *sql.DB
	table string
}

var _ Store = (*SQLiteStore)(nil)

// SQLiteOptions configuration for the SQLite store
type SQLiteOptions struct {
	// Path is the database file, ":memory:" for an ephemeral store
	Path string
	// Collection is the table name, default entity_description_embeddings
	Collection string
}

// DefaultSQLitePath is the database file used when no path is configured
const DefaultSQLitePath = "./graphrag.db"

// NewSQLiteStore opens a SQLite-backed vector store and creates its schema
func NewSQLiteStore(opts SQLiteOptions) (*SQLiteStore, error) {
	if opts.Path == "" {
		opts.Path = DefaultSQLitePath
	}

	db, err := sql.Open("sqlite3", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to open database: %w", err)
	}

	table := opts.Collection
	if table == "" {
		table = DefaultCollection
	}

	store := &SQLiteStore{db: db, table: table}
	if err := store.initSchema(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			text TEXT NOT NULL,
			vector TEXT NOT NULL,
			attributes TEXT
		);
	`, s.table)

	_, err := s.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// LoadDocuments inserts documents, replacing any with the same ID
func (s *SQLiteStore) LoadDocuments(ctx context.Context, docs []Document) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (id, text, vector, attributes)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			vector = excluded.vector,
			attributes = excluded.attributes
	`, s.table)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}

		vectorJSON, err := json.Marshal(doc.Vector)
		if err != nil {
			return fmt.Errorf("failed to marshal vector: %w", err)
		}
		attrsJSON, err := json.Marshal(doc.Attributes)
		if err != nil {
			return fmt.Errorf("failed to marshal attributes: %w", err)
		}

		if _, err := tx.ExecContext(ctx, query, doc.ID, doc.Text, string(vectorJSON), string(attrsJSON)); err != nil {
			return fmt.Errorf("failed to save document %s: %w", doc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit documents: %w", err)
	}
	return nil
}

// SearchByVector returns the k documents nearest to the query vector
func (s *SQLiteStore) SearchByVector(ctx context.Context, vector []float32, k int) ([]ScoredDocument, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	query := fmt.Sprintf("SELECT id, text, vector, attributes FROM %s", s.table)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var scored []ScoredDocument
	for rows.Next() {
		var doc Document
		var vectorJSON, attrsJSON string

		if err := rows.Scan(&doc.ID, &doc.Text, &vectorJSON, &attrsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		if err := json.Unmarshal([]byte(vectorJSON), &doc.Vector); err != nil {
			return nil, fmt.Errorf("failed to unmarshal vector: %w", err)
		}
		if attrsJSON != "" && attrsJSON != "null" {
			if err := json.Unmarshal([]byte(attrsJSON), &doc.Attributes); err != nil {
				return nil, fmt.Errorf("failed to unmarshal attributes: %w", err)
			}
		}

		scored = append(scored, ScoredDocument{
			Document: doc,
			Score:    CosineSimilarity(vector, doc.Vector),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document rows: %w", err)
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
func (s *SQLiteStore) SearchByText(ctx context.Context, text string, embedder llm.Embedder, k int) ([]ScoredDocument, error) {
	vector, err := embedQuery(ctx, embedder, text)
	if err != nil {
		return nil, err
	}
	return s.SearchByVector(ctx, vector, k)
}

// SearchByID returns the stored document with the given id
func (s *SQLiteStore) SearchByID(ctx context.Context, id string) (Document, error) {
	query := fmt.Sprintf("SELECT id, text, vector, attributes FROM %s WHERE id = ?", s.table)

	var doc Document
	var vectorJSON, attrsJSON string
	err := s.db.QueryRowContext(ctx, query, id).Scan(&doc.ID, &doc.Text, &vectorJSON, &attrsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, fmt.Errorf("document %s not found", id)
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to query document %s: %w", id, err)
	}

	if err := json.Unmarshal([]byte(vectorJSON), &doc.Vector); err != nil {
		return Document{}, fmt.Errorf("failed to unmarshal vector: %w", err)
	}
	if attrsJSON != "" && attrsJSON != "null" {
		if err := json.Unmarshal([]byte(attrsJSON), &doc.Attributes); err != nil {
			return Document{}, fmt.Errorf("failed to unmarshal attributes: %w", err)
		}
	}
	return doc, nil
}

// Clear removes every document in the collection
func (s *SQLiteStore) Clear(ctx context.Context) error {
	query := fmt.Sprintf("DELETE FROM %s", s.table)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
