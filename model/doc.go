// Package model defines the knowledge-graph records produced by a GraphRAG
// indexing run and consumed by the query engines.
//
// The types map one-to-one onto the standard index artifacts: entities,
// relationships, communities, community reports, text units and covariates.
// They are plain data carriers; filtering and joining live in the index
// package, ranking and context assembly in the query package.
package model
