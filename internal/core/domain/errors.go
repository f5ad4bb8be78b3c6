package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrIndexInProgress indicates an index run is already active for
	// the vault. Concurrent runs never interleave; callers retry later.
	ErrIndexInProgress = errors.New("index update in progress")

	// ErrSourceUnavailable indicates the vault could not be listed or
	// a document could not be read.
	ErrSourceUnavailable = errors.New("document source unavailable")

	// ErrRateLimited indicates the embedding provider rejected a
	// request due to rate limiting. Retried with backoff; only
	// surfaced once the retry budget is exhausted.
	ErrRateLimited = errors.New("rate limited")

	// ErrAuth indicates invalid or missing embedding provider
	// credentials. Fatal: the whole index run aborts.
	ErrAuth = errors.New("authentication failed")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured, so indexing and semantic queries are disabled.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrDimensionMismatch indicates a vector's dimension does not
	// match the active model's configured dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)

// Index phases, used to attribute a failure to a pipeline stage.
const (
	PhaseList  = "list"
	PhaseRead  = "read"
	PhaseChunk = "chunk"
	PhaseEmbed = "embed"
	PhaseStore = "store"
)

// IndexError attributes an indexing failure to a document and phase so
// callers can render a precise message.
type IndexError struct {
	// Path is the affected document's vault-relative path. Empty when
	// the failure is not tied to a single document.
	Path string

	// Phase is one of the Phase* constants.
	Phase string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *IndexError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("indexing failed during %s: %v", e.Phase, e.Err)
	}
	return fmt.Sprintf("indexing %s failed during %s: %v", e.Path, e.Phase, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *IndexError) Unwrap() error {
	return e.Err
}
