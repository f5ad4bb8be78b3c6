package domain

import "time"

// IndexOptions configures an index run.
type IndexOptions struct {
	// ReindexAll treats every listed document as changed, ignoring
	// stored content hashes. Cached embeddings are still reused.
	ReindexAll bool
}

// IndexProgress is delivered to the progress callback during an index
// run. For one run, CompletedChunks is non-decreasing across calls.
type IndexProgress struct {
	// CompletedChunks is the number of chunks durably embedded and
	// stored so far, cache hits included.
	CompletedChunks int

	// TotalChunks is the total number of chunks staged for this run.
	TotalChunks int

	// WaitingForRateLimit is true while the embedding gateway is
	// backing off from a provider rate limit.
	WaitingForRateLimit bool
}

// ProgressFunc receives progress updates. May be nil. Called from a
// single goroutine; implementations need no locking of their own.
type ProgressFunc func(IndexProgress)

// IndexStats summarises a completed index run.
type IndexStats struct {
	// DocumentsScanned is the number of documents listed from the
	// vault after include/exclude filtering.
	DocumentsScanned int

	// DocumentsChanged is the number of new or modified documents
	// that were re-chunked and re-embedded.
	DocumentsChanged int

	// DocumentsRemoved is the number of documents deleted from the
	// index because they vanished from the vault.
	DocumentsRemoved int

	// DocumentsFailed is the number of documents skipped because
	// reading or storing them failed non-fatally.
	DocumentsFailed int

	// ChunksEmbedded is the number of chunks sent to the embedding
	// provider (cache misses only).
	ChunksEmbedded int

	// CacheHits is the number of chunks served from the embedding
	// cache.
	CacheHits int

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}

// CacheHitRate returns the fraction of staged chunks served from the
// cache, or 0 when nothing was staged.
func (s IndexStats) CacheHitRate() float64 {
	total := s.CacheHits + s.ChunksEmbedded
	if total == 0 {
		return 0
	}
	return float64(s.CacheHits) / float64(total)
}
