package driven

import "context"

// EmbeddingCache memoises embedding vectors by content fingerprint and
// model. It is a derived, rebuildable structure: discarding it costs
// recomputation, never correctness. Entries for one model are useless
// to another (different vector space), so the model is part of the key.
type EmbeddingCache interface {
	// Get returns the cached vector for (contentHash, model), with
	// ok=false on a miss.
	Get(ctx context.Context, contentHash, model string) (vector []float32, ok bool, err error)

	// Put stores a vector under (contentHash, model).
	Put(ctx context.Context, contentHash, model string, vector []float32) error
}
