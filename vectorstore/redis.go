package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/smallnest/graphrag/llm"
)

// RedisStore keeps embeddings as JSON values in Redis, with a set per
// collection tracking the stored document ids.
type RedisStore struct {
	client     *redis.Client
	prefix     string
	collection string
}

var _ Store = (*RedisStore)(nil)

// RedisOptions configuration for Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Prefix is prepended to every key, default "graphrag:"
	Prefix string
	// Collection namespaces the documents, default entity_description_embeddings
	Collection string
}

// NewRedisStore creates a Redis-backed vector store
func NewRedisStore(opts RedisOptions) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "graphrag:"
	}
	collection := opts.Collection
	if collection == "" {
		collection = DefaultCollection
	}

	return &RedisStore{
		client:     client,
		prefix:     prefix,
		collection: collection,
	}
}

func (s *RedisStore) docKey(id string) string {
	return fmt.Sprintf("%s%s:doc:%s", s.prefix, s.collection, id)
}

func (s *RedisStore) idsKey() string {
	return fmt.Sprintf("%s%s:ids", s.prefix, s.collection)
}

// LoadDocuments inserts documents, replacing any with the same ID
func (s *RedisStore) LoadDocuments(ctx context.Context, docs []Document) error {
	pipe := s.client.Pipeline()

	for _, doc := range docs {
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal document %s: %w", doc.ID, err)
		}
		pipe.Set(ctx, s.docKey(doc.ID), data, 0)
		pipe.SAdd(ctx, s.idsKey(), doc.ID)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save documents to redis: %w", err)
	}
	return nil
}

// SearchByVector returns the k documents nearest to the query vector
func (s *RedisStore) SearchByVector(ctx context.Context, vector []float32, k int) ([]ScoredDocument, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive")
	}

	ids, err := s.client.SMembers(ctx, s.idsKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if len(ids) == 0 {
		return []ScoredDocument{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.docKey(id)
	}

	// MGet returns nil for expired or deleted keys, which we skip
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch documents: %w", err)
	}

	var scored []ScoredDocument
	for _, value := range values {
		if value == nil {
			continue
		}
		strData, ok := value.(string)
		if !ok {
			continue
		}

		var doc Document
		if err := json.Unmarshal([]byte(strData), &doc); err != nil {
			continue
		}
		scored = append(scored, ScoredDocument{
			Document: doc,
			Score:    CosineSimilarity(vector, doc.Vector),
		})
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
func (s *RedisStore) SearchByText(ctx context.Context, text string, embedder llm.Embedder, k int) ([]ScoredDocument, error) {
	vector, err := embedQuery(ctx, embedder, text)
	if err != nil {
		return nil, err
	}
	return s.SearchByVector(ctx, vector, k)
}

// SearchByID returns the stored document with the given id
func (s *RedisStore) SearchByID(ctx context.Context, id string) (Document, error) {
	data, err := s.client.Get(ctx, s.docKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return Document{}, fmt.Errorf("document %s not found", id)
	}
	if err != nil {
		return Document{}, fmt.Errorf("failed to fetch document %s: %w", id, err)
	}

	var doc Document
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return Document{}, fmt.Errorf("failed to unmarshal document %s: %w", id, err)
	}
	return doc, nil
}

// Clear removes every document in the collection
func (s *RedisStore) Clear(ctx context.Context) error {
	ids, err := s.client.SMembers(ctx, s.idsKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to list documents for clearing: %w", err)
	}

	pipe := s.client.Pipeline()
	for _, id := range ids {
		pipe.Del(ctx, s.docKey(id))
	}
	pipe.Del(ctx, s.idsKey())

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
