package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available embedding providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// ChunkingSettings holds chunker configuration.
type ChunkingSettings struct {
	// ChunkSize is the target chunk size in characters.
	ChunkSize int

	// Overlap is the number of characters shared between adjacent
	// chunks. Zero disables overlap.
	Overlap int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name. Rows, cache entries and
	// index state are all namespaced by this value.
	Model string

	// Dimensions is the embedding vector size for the model.
	Dimensions int

	// BaseURL is the API endpoint (for Ollama or compatible APIs).
	BaseURL string

	// APIKeyEnv names the environment variable holding the API key.
	// The key itself is never written to the settings file.
	APIKeyEnv string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	return e.Provider.IsValid() && e.Model != ""
}

// GatewaySettings holds embedding gateway batching and backoff knobs.
// Provider limits vary, so every value is configuration rather than a
// hard-coded constant.
type GatewaySettings struct {
	// BatchSize is the maximum number of texts per provider call.
	BatchSize int

	// Concurrency bounds the number of in-flight provider calls.
	Concurrency int

	// MaxRetries is the retry ceiling for rate-limited or transient
	// failures before the run fails.
	MaxRetries int

	// BaseBackoff is the initial backoff delay.
	BaseBackoff time.Duration

	// MaxBackoff caps the exponential backoff delay.
	MaxBackoff time.Duration

	// RequestsPerSecond throttles provider calls proactively.
	// Zero disables throttling.
	RequestsPerSecond float64
}

// RetrievalSettings holds query-time configuration.
type RetrievalSettings struct {
	// Limit is the maximum number of results per query.
	Limit int

	// MinSimilarity excludes results scoring below this value.
	MinSimilarity float64

	// ThresholdTokens is the context budget above which retrieval is
	// skipped entirely (the caller's context already fills the
	// prompt). Zero disables the check.
	ThresholdTokens int
}

// VaultSettings holds document source configuration.
type VaultSettings struct {
	// Root is the vault directory.
	Root string

	// IncludePatterns restricts indexing to matching documents.
	// Empty means every supported document.
	IncludePatterns []string

	// ExcludePatterns removes matching documents from indexing.
	ExcludePatterns []string

	// Extensions lists indexable file extensions.
	Extensions []string
}

// Settings holds all engine settings.
type Settings struct {
	Vault     VaultSettings
	Chunking  ChunkingSettings
	Embedding EmbeddingSettings
	Gateway   GatewaySettings
	Retrieval RetrievalSettings
}

// DefaultSettings returns settings with sensible defaults.
// The embedding provider defaults to a local Ollama instance.
func DefaultSettings() Settings {
	return Settings{
		Vault: VaultSettings{
			Extensions: []string{".md", ".txt"},
		},
		Chunking: ChunkingSettings{
			ChunkSize: 1000,
			Overlap:   0,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderOllama,
			Model:      "nomic-embed-text",
			Dimensions: 768,
		},
		Gateway: GatewaySettings{
			BatchSize:   16,
			Concurrency: 2,
			MaxRetries:  5,
			BaseBackoff: 500 * time.Millisecond,
			MaxBackoff:  30 * time.Second,
		},
		Retrieval: RetrievalSettings{
			Limit:         5,
			MinSimilarity: 0.4,
		},
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
