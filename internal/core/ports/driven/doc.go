// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports).
//
// These are the narrow capabilities the engine consumes: the vault
// listing, the embedding provider, the persistent vector store, the
// embedding cache and the index state. Implementations live under
// internal/adapters/driven; the engine only ever sees these
// interfaces, so every collaborator can be swapped for a fake in
// tests.
package driven
