package index

import (
	"context"
	"fmt"

	"github.com/smallnest/graphrag/log"
	"github.com/smallnest/graphrag/model"
	"github.com/smallnest/graphrag/vectorstore"
)

// StoreEntitySemanticEmbeddings loads the description embeddings of the
// entities into the vector store, keyed by entity ID with the title kept as
// an attribute. Entities without an embedding are skipped.
func StoreEntitySemanticEmbeddings(ctx context.Context, entities []model.Entity, store vectorstore.Store) error {
	docs := make([]vectorstore.Document, 0, len(entities))
	for _, entity := range entities {
		if len(entity.DescriptionEmbedding) == 0 {
			continue
		}
		docs = append(docs, vectorstore.Document{
			ID:         entity.ID,
			Text:       entity.Description,
			Vector:     entity.DescriptionEmbedding,
			Attributes: map[string]any{"title": entity.Title},
		})
	}

	if err := store.LoadDocuments(ctx, docs); err != nil {
		return fmt.Errorf("failed to store entity embeddings: %w", err)
	}
	log.Info("stored %d entity description embeddings", len(docs))
	return nil
}
