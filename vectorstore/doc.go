// Package vectorstore provides the embedding stores used by local search to
// match query text against entity descriptions.
//
// Four backends are included: an in-memory store, SQLite, Redis and Postgres
// (pgvector). All implement the Store interface and are created through the
// Open factory from a Config, so the backend can be switched in settings
// without code changes:
//
//	store, err := vectorstore.Open(ctx, vectorstore.Config{
//		Type:       vectorstore.TypeSQLite,
//		Collection: vectorstore.DefaultCollection,
//		DBURI:      "./graphrag.db",
//	})
//
// Additional backends can be plugged in with Register.
package vectorstore
