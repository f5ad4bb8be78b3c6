package driven

import "context"

// EmbeddingService generates vector embeddings from text. It is the
// narrow capability wrapped by the embedding gateway; rate limiting,
// batching and retries live in the gateway, not here.
//
// Implementations classify provider failures with the domain
// sentinels: HTTP 429 wraps domain.ErrRateLimited, 401/403 wraps
// domain.ErrAuth. Anything else is a transport error.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
//   - Local models via inference servers
type EmbeddingService interface {
	// Embed generates one embedding per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the name of the embedding model being used.
	Model() string

	// Dimensions returns the embedding vector size (e.g. 768, 1536).
	Dimensions() int

	// Close releases resources.
	Close() error
}
