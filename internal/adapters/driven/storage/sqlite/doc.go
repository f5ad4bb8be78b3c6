// Package sqlite provides the SQLite-based implementation of the
// storage-side driven ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. It implements three store
// interfaces through a single database connection:
//
//   - VectorStore: chunk rows with embedding vectors and similarity queries
//   - IndexStateStore: per-document indexed content hashes
//   - EmbeddingCache: memoised embedding vectors by content fingerprint
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// Vectors are stored as little-endian float32 BLOBs alongside their
// dimension; similarity is computed in Go at query time, which keeps
// the store portable and the ranking deterministic.
//
// # Data Location
//
// By default, the database is stored at ~/.vaultrag/data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
