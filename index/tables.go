package index

// Parquet table names produced by an indexing run.
const (
	NodesFile         = "create_final_nodes.parquet"
	EntitiesFile      = "create_final_entities.parquet"
	ReportsFile       = "create_final_community_reports.parquet"
	TextUnitsFile     = "create_final_text_units.parquet"
	RelationshipsFile = "create_final_relationships.parquet"
	CovariatesFile    = "create_final_covariates.parquet"
)

// NodeRow is one graph node occurrence in the final nodes table. The same
// entity appears once per hierarchy level it was clustered at.
type NodeRow struct {
	ID        string `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Title     string `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8"`
	Level     int64  `parquet:"name=level, type=INT64"`
	Degree    int64  `parquet:"name=degree, type=INT64"`
	Community *int64 `parquet:"name=community, type=INT64, repetitiontype=OPTIONAL"`
}

// EntityRow is one extracted entity in the final entities table.
type EntityRow struct {
	ID                   string    `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Name                 string    `parquet:"name=name, type=BYTE_ARRAY, convertedtype=UTF8"`
	Type                 string    `parquet:"name=type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Description          string    `parquet:"name=description, type=BYTE_ARRAY, convertedtype=UTF8"`
	HumanReadableID      int64     `parquet:"name=human_readable_id, type=INT64"`
	TextUnitIDs          []string  `parquet:"name=text_unit_ids, type=LIST, valuetype=BYTE_ARRAY, valueconvertedtype=UTF8"`
	DescriptionEmbedding []float64 `parquet:"name=description_embedding, type=LIST, valuetype=DOUBLE"`
}

// ReportRow is one community report in the final community reports table.
type ReportRow struct {
	ID          string  `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	CommunityID int64   `parquet:"name=community, type=INT64"`
	Level       int64   `parquet:"name=level, type=INT64"`
	Title       string  `parquet:"name=title, type=BYTE_ARRAY, convertedtype=UTF8"`
	Summary     string  `parquet:"name=summary, type=BYTE_ARRAY, convertedtype=UTF8"`
	FullContent string  `parquet:"name=full_content, type=BYTE_ARRAY, convertedtype=UTF8"`
	Rank        float64 `parquet:"name=rank, type=DOUBLE"`
}

// TextUnitRow is one source text chunk in the final text units table.
type TextUnitRow struct {
	ID              string   `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Text            string   `parquet:"name=text, type=BYTE_ARRAY, convertedtype=UTF8"`
	NTokens         int64    `parquet:"name=n_tokens, type=INT64"`
	DocumentIDs     []string `parquet:"name=document_ids, type=LIST, valuetype=BYTE_ARRAY, valueconvertedtype=UTF8"`
	EntityIDs       []string `parquet:"name=entity_ids, type=LIST, valuetype=BYTE_ARRAY, valueconvertedtype=UTF8"`
	RelationshipIDs []string `parquet:"name=relationship_ids, type=LIST, valuetype=BYTE_ARRAY, valueconvertedtype=UTF8"`
}

// RelationshipRow is one graph edge in the final relationships table.
type RelationshipRow struct {
	ID              string   `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	HumanReadableID int64    `parquet:"name=human_readable_id, type=INT64"`
	Source          string   `parquet:"name=source, type=BYTE_ARRAY, convertedtype=UTF8"`
	Target          string   `parquet:"name=target, type=BYTE_ARRAY, convertedtype=UTF8"`
	Description     string   `parquet:"name=description, type=BYTE_ARRAY, convertedtype=UTF8"`
	Weight          float64  `parquet:"name=weight, type=DOUBLE"`
	Rank            int64    `parquet:"name=rank, type=INT64"`
	TextUnitIDs     []string `parquet:"name=text_unit_ids, type=LIST, valuetype=BYTE_ARRAY, valueconvertedtype=UTF8"`
}

// CovariateRow is one claim in the final covariates table.
type CovariateRow struct {
	ID              string `parquet:"name=id, type=BYTE_ARRAY, convertedtype=UTF8"`
	HumanReadableID int64  `parquet:"name=human_readable_id, type=INT64"`
	CovariateType   string `parquet:"name=covariate_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Type            string `parquet:"name=type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Description     string `parquet:"name=description, type=BYTE_ARRAY, convertedtype=UTF8"`
	SubjectID       string `parquet:"name=subject_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	Status          string `parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8"`
	StartDate       string `parquet:"name=start_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	EndDate         string `parquet:"name=end_date, type=BYTE_ARRAY, convertedtype=UTF8"`
	SourceText      string `parquet:"name=source_text, type=BYTE_ARRAY, convertedtype=UTF8"`
	TextUnitID      string `parquet:"name=text_unit_id, type=BYTE_ARRAY, convertedtype=UTF8"`
}
