package model

// Community is a cluster of related entities detected by the indexing
// pipeline. Communities form a hierarchy; level 0 is the coarsest.
type Community struct {
	// ID is the unique identifier of the community
	ID string `json:"id"`
	// ShortID is a human-readable identifier
	ShortID string `json:"short_id"`
	// Title is the display name of the community
	Title string `json:"title"`
	// Level is the depth of the community in the hierarchy
	Level int `json:"level"`
	// EntityIDs lists the member entities
	EntityIDs []string `json:"entity_ids,omitempty"`
	// RelationshipIDs lists the member relationships
	RelationshipIDs []string `json:"relationship_ids,omitempty"`
	// Attributes carries additional indexer columns
	Attributes map[string]any `json:"attributes,omitempty"`
}

// CommunityReport is an LLM-generated summary of a single community.
type CommunityReport struct {
	// ID is the unique identifier of the report
	ID string `json:"id"`
	// ShortID is a human-readable identifier used in context tables
	ShortID string `json:"short_id"`
	// CommunityID identifies the community the report describes
	CommunityID string `json:"community_id"`
	// Title is the report headline
	Title string `json:"title"`
	// Summary is the executive summary of the report
	Summary string `json:"summary"`
	// FullContent is the complete report body
	FullContent string `json:"full_content"`
	// Rank rates the importance of the community, 0 to 10
	Rank float64 `json:"rank"`
	// Attributes carries additional indexer columns
	Attributes map[string]any `json:"attributes,omitempty"`
}
