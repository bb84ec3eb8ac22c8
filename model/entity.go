package model

// Entity is a node of the knowledge graph, extracted from source documents
// by the indexing pipeline.
type Entity struct {
	// ID is the unique identifier of the entity
	ID string `json:"id"`
	// ShortID is a human-readable identifier used in context tables
	ShortID string `json:"short_id"`
	// Title is the display name of the entity
	Title string `json:"title"`
	// Type is the entity category, e.g. "person" or "organization"
	Type string `json:"type,omitempty"`
	// Description summarizes the entity across all its mentions
	Description string `json:"description,omitempty"`
	// DescriptionEmbedding is the semantic embedding of Description
	DescriptionEmbedding []float32 `json:"description_embedding,omitempty"`
	// CommunityIDs lists the communities the entity belongs to
	CommunityIDs []string `json:"community_ids,omitempty"`
	// TextUnitIDs lists the text units the entity appears in
	TextUnitIDs []string `json:"text_unit_ids,omitempty"`
	// Rank is the prominence of the entity, by default its node degree
	Rank int `json:"rank"`
	// Attributes carries additional indexer columns
	Attributes map[string]any `json:"attributes,omitempty"`
}
