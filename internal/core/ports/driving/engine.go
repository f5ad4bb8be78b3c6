package driving

import (
	"context"

	"github.com/inkwell-notes/vaultrag/internal/core/domain"
)

// Indexer keeps the vector index in sync with the vault.
type Indexer interface {
	// UpdateIndex diffs the vault against the index state and brings
	// the index up to date. At most one run may be active per vault;
	// a second call returns domain.ErrIndexInProgress. onProgress may
	// be nil.
	UpdateIndex(ctx context.Context, opts domain.IndexOptions, onProgress domain.ProgressFunc) (*domain.IndexStats, error)

	// Running reports whether an index run is currently active.
	Running() bool
}

// Retriever answers similarity queries over the index.
type Retriever interface {
	// Query embeds the text and returns the most similar chunks.
	Query(ctx context.Context, text string, opts domain.QueryOptions) ([]domain.QueryResult, error)

	// QueryVector runs a similarity query with a pre-computed vector.
	QueryVector(ctx context.Context, vector []float32, opts domain.QueryOptions) ([]domain.QueryResult, error)

	// Retrieve is the chat-layer entry point: it skips retrieval and
	// returns nil results when contextTokens already exceeds the
	// configured threshold, otherwise behaves like Query.
	Retrieve(ctx context.Context, text string, contextTokens int, opts domain.QueryOptions) ([]domain.QueryResult, error)
}
