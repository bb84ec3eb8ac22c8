// Package index loads the tabular outputs of an indexing run and converts
// them into the knowledge model consumed by the search engines.
//
// An indexing run leaves a directory of parquet tables (final nodes, entities,
// community reports, text units, relationships and optionally covariates).
// LoadIndexData reads them back, and the ReadIndexer* adapters filter and join
// the raw rows into model objects at a chosen community level:
//
//	data, err := index.LoadIndexData("./output", true)
//	if err != nil {
//		log.Fatal(err)
//	}
//	entities := index.ReadIndexerEntities(data.Nodes, data.Entities, 2)
//	reports := index.ReadIndexerReports(data.Reports, data.Nodes, 2)
package index
