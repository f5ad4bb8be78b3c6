package memory

import (
	"context"
	"sync"

	"github.com/inkwell-notes/vaultrag/internal/core/ports/driven"
)

// Ensure EmbeddingCache implements the interface.
var _ driven.EmbeddingCache = (*EmbeddingCache)(nil)

// cacheKey namespaces entries by model.
type cacheKey struct {
	contentHash string
	model       string
}

// EmbeddingCache is an in-memory implementation of driven.EmbeddingCache.
type EmbeddingCache struct {
	mu      sync.RWMutex
	entries map[cacheKey][]float32
}

// NewEmbeddingCache creates a new in-memory embedding cache.
func NewEmbeddingCache() *EmbeddingCache {
	return &EmbeddingCache{
		entries: make(map[cacheKey][]float32),
	}
}

// Get returns the cached vector for (contentHash, model).
func (c *EmbeddingCache) Get(_ context.Context, contentHash, model string) ([]float32, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vector, ok := c.entries[cacheKey{contentHash, model}]
	if !ok {
		return nil, false, nil
	}
	return append([]float32(nil), vector...), true, nil
}

// Put stores a vector under (contentHash, model).
func (c *EmbeddingCache) Put(_ context.Context, contentHash, model string, vector []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{contentHash, model}] = append([]float32(nil), vector...)
	return nil
}

// Len returns the number of cached entries, for test assertions.
func (c *EmbeddingCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
