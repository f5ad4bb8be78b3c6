package driven

import (
	"context"

	"github.com/inkwell-notes/vaultrag/internal/core/domain"
)

// StoreStats reports row counts for one model namespace.
type StoreStats struct {
	// Documents is the number of indexed documents.
	Documents int

	// Chunks is the number of stored chunk rows.
	Chunks int
}

// VectorStore persists chunk rows with their embedding vectors and
// answers similarity queries. Rows are namespaced by model: switching
// the embedding model never mixes vector spaces.
type VectorStore interface {
	// ReplaceDocument atomically replaces every row owned by path for
	// the given model with the supplied chunks and records docHash as
	// the document's indexed fingerprint. Delete-then-insert runs in
	// one transaction so readers never observe a half-written
	// document and a crash can never mark a partial write as current.
	ReplaceDocument(ctx context.Context, path, model, docHash string, chunks []domain.EmbeddedChunk) error

	// DeleteDocument removes every row and the indexed fingerprint
	// owned by path for the given model.
	DeleteDocument(ctx context.Context, path, model string) error

	// Query returns the chunks most similar to the query vector among
	// rows of the given model, per the options. Rows whose stored
	// vector dimension differs from len(vector) are excluded from the
	// candidate set.
	Query(ctx context.Context, vector []float32, model string, opts domain.QueryOptions) ([]domain.QueryResult, error)

	// Stats reports document and chunk counts for a model.
	Stats(ctx context.Context, model string) (StoreStats, error)

	// Close releases resources.
	Close() error
}

// IndexStateStore reads the persisted index state: the mapping from
// document path to the content hash it was last fully indexed with,
// per model. Writes happen through VectorStore.ReplaceDocument and
// DeleteDocument so state and rows stay transactionally consistent.
type IndexStateStore interface {
	// IndexedHashes returns path -> content hash for every fully
	// indexed document of the given model.
	IndexedHashes(ctx context.Context, model string) (map[string]string, error)
}
