package model

// Relationship is an edge of the knowledge graph connecting two entities.
type Relationship struct {
	// ID is the unique identifier of the relationship
	ID string `json:"id"`
	// ShortID is a human-readable identifier used in context tables
	ShortID string `json:"short_id"`
	// Source is the title of the source entity
	Source string `json:"source"`
	// Target is the title of the target entity
	Target string `json:"target"`
	// Weight is the strength of the relationship
	Weight float64 `json:"weight"`
	// Description explains why the two entities are related
	Description string `json:"description,omitempty"`
	// TextUnitIDs lists the text units the relationship was extracted from
	TextUnitIDs []string `json:"text_unit_ids,omitempty"`
	// Attributes carries additional indexer columns
	Attributes map[string]any `json:"attributes,omitempty"`
}
