// Package memory provides in-memory implementations of the storage
// driven ports, used in tests and as a reference for the port
// contracts. Ranking behaviour matches the SQLite adapter exactly.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/inkwell-notes/vaultrag/internal/core/domain"
	"github.com/inkwell-notes/vaultrag/internal/core/ports/driven"
	"github.com/inkwell-notes/vaultrag/internal/pathfilter"
)

// Ensure VectorStore implements the interfaces.
var _ driven.VectorStore = (*VectorStore)(nil)
var _ driven.IndexStateStore = (*VectorStore)(nil)

// document is the stored state for one (path, model) pair.
type document struct {
	hash   string
	chunks []domain.EmbeddedChunk
}

// key namespaces documents by model.
type key struct {
	path  string
	model string
}

// VectorStore is an in-memory implementation of driven.VectorStore and
// driven.IndexStateStore.
type VectorStore struct {
	mu   sync.RWMutex
	docs map[key]document
}

// NewVectorStore creates a new in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		docs: make(map[key]document),
	}
}

// ReplaceDocument swaps a document's chunks and records its hash.
func (s *VectorStore) ReplaceDocument(_ context.Context, path, model, docHash string, chunks []domain.EmbeddedChunk) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key{path, model}] = document{
		hash:   docHash,
		chunks: append([]domain.EmbeddedChunk(nil), chunks...),
	}
	return nil
}

// DeleteDocument removes a document's chunks and hash.
func (s *VectorStore) DeleteDocument(_ context.Context, path, model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, key{path, model})
	return nil
}

// Query ranks the model's chunks by cosine similarity.
func (s *VectorStore) Query(_ context.Context, vector []float32, model string, opts domain.QueryOptions) ([]domain.QueryResult, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultSettings().Retrieval.Limit
	}

	filter := pathfilter.New(opts.IncludePatterns, opts.ExcludePatterns)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var results []domain.QueryResult
	for k, doc := range s.docs {
		if k.model != model {
			continue
		}
		if !filter.Empty() && !filter.Match(k.path) {
			continue
		}
		for _, ec := range doc.chunks {
			if len(ec.Vector) != len(vector) {
				continue
			}
			similarity := domain.CosineSimilarity(vector, ec.Vector)
			if similarity < opts.MinSimilarity {
				continue
			}
			results = append(results, domain.QueryResult{
				Chunk:        ec.Chunk,
				DocumentPath: k.path,
				Similarity:   similarity,
			})
		}
	}

	domain.SortQueryResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Stats reports document and chunk counts for a model.
func (s *VectorStore) Stats(_ context.Context, model string) (driven.StoreStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats driven.StoreStats
	for k, doc := range s.docs {
		if k.model != model {
			continue
		}
		stats.Documents++
		stats.Chunks += len(doc.chunks)
	}
	return stats, nil
}

// Close is a no-op.
func (s *VectorStore) Close() error {
	return nil
}

// IndexedHashes returns path -> content hash for a model.
func (s *VectorStore) IndexedHashes(_ context.Context, model string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hashes := make(map[string]string)
	for k, doc := range s.docs {
		if k.model == model {
			hashes[k.path] = doc.hash
		}
	}
	return hashes, nil
}

// Chunks returns the stored chunks for a document, for test assertions.
func (s *VectorStore) Chunks(path, model string) []domain.EmbeddedChunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.EmbeddedChunk(nil), s.docs[key{path, model}].chunks...)
}
