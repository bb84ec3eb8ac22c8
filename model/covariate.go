package model

// Covariate is a claim or other qualifying statement about an entity,
// extracted by the indexing pipeline.
type Covariate struct {
	// ID is the unique identifier of the covariate
	ID string `json:"id"`
	// ShortID is a human-readable identifier used in context tables
	ShortID string `json:"short_id"`
	// SubjectID is the title of the entity the covariate is about
	SubjectID string `json:"subject_id"`
	// SubjectType is the kind of subject, usually "entity"
	SubjectType string `json:"subject_type"`
	// CovariateType is the kind of covariate, usually "claim"
	CovariateType string `json:"covariate_type"`
	// TextUnitIDs lists the text units the covariate was extracted from
	TextUnitIDs []string `json:"text_unit_ids,omitempty"`
	// Attributes carries claim fields such as status, dates and description
	Attributes map[string]any `json:"attributes,omitempty"`
}
