package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexStats_CacheHitRate(t *testing.T) {
	tests := []struct {
		name     string
		stats    IndexStats
		expected float64
	}{
		{
			name:     "no chunks staged",
			stats:    IndexStats{},
			expected: 0,
		},
		{
			name:     "all hits",
			stats:    IndexStats{CacheHits: 10},
			expected: 1.0,
		},
		{
			name:     "half hits",
			stats:    IndexStats{CacheHits: 5, ChunksEmbedded: 5},
			expected: 0.5,
		},
		{
			name:     "all misses",
			stats:    IndexStats{ChunksEmbedded: 7},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, tt.stats.CacheHitRate(), 1e-9)
		})
	}
}

func TestIndexError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := &IndexError{Path: "notes/a.md", Phase: PhaseEmbed, Err: cause}

	assert.Contains(t, err.Error(), "notes/a.md")
	assert.Contains(t, err.Error(), PhaseEmbed)
	assert.ErrorIs(t, err, cause)
}

func TestIndexError_NoPath(t *testing.T) {
	err := &IndexError{Phase: PhaseList, Err: ErrSourceUnavailable}
	assert.Contains(t, err.Error(), PhaseList)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestAIProvider(t *testing.T) {
	assert.True(t, AIProviderOllama.IsValid())
	assert.True(t, AIProviderOpenAI.IsValid())
	assert.False(t, AIProvider("anthropic").IsValid())

	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.False(t, AIProviderOllama.RequiresAPIKey())

	assert.Equal(t, unknownDescription, AIProvider("bogus").Description())
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()
	assert.True(t, s.Embedding.IsConfigured())
	assert.Positive(t, s.Chunking.ChunkSize)
	assert.Zero(t, s.Chunking.Overlap)
	assert.Positive(t, s.Gateway.BatchSize)
	assert.Positive(t, s.Gateway.MaxRetries)
	assert.Equal(t, EmbeddingDimensions()[s.Embedding.Model], s.Embedding.Dimensions)
}
