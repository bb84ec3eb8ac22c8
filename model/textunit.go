package model

// TextUnit is a chunk of source document text, the retrieval unit the
// search engines quote from.
type TextUnit struct {
	// ID is the unique identifier of the text unit
	ID string `json:"id"`
	// ShortID is a human-readable identifier used in context tables
	ShortID string `json:"short_id"`
	// Text is the chunk content
	Text string `json:"text"`
	// EntityIDs lists the entities mentioned in the chunk
	EntityIDs []string `json:"entity_ids,omitempty"`
	// RelationshipIDs lists the relationships extracted from the chunk
	RelationshipIDs []string `json:"relationship_ids,omitempty"`
	// CovariateIDs lists the covariates extracted from the chunk
	CovariateIDs []string `json:"covariate_ids,omitempty"`
	// NTokens is the chunk length in tokens
	NTokens int `json:"n_tokens"`
	// DocumentIDs lists the source documents the chunk came from
	DocumentIDs []string `json:"document_ids,omitempty"`
	// Attributes carries additional indexer columns
	Attributes map[string]any `json:"attributes,omitempty"`
}
