// Package knowledge wraps the embedded vector store behind the operations
// the ingestion and retrieval paths need: upsert, delete-by-filter, count,
// and filtered top-k similarity search.
//
// The store persists on disk under a directory keyed by a stable collection
// name, so index state survives process restarts; reopening an existing
// collection does not re-embed anything. Embedding generation is delegated
// to a Genkit ai.Embedder through the bridge in embedder.go.
//
// Store is safe for concurrent use by multiple goroutines.
package knowledge
