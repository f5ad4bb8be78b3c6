package services

import (
	"context"
	"fmt"

	"github.com/inkwell-notes/vaultrag/internal/core/domain"
	"github.com/inkwell-notes/vaultrag/internal/logger"
)

// Query embeds the text with the active model and runs a similarity
// query. Zero-valued options pick up the configured retrieval
// defaults.
func (e *Engine) Query(ctx context.Context, text string, opts domain.QueryOptions) ([]domain.QueryResult, error) {
	if e.gw == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if domain.NormalizeText(text) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	vector, err := e.gw.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return e.QueryVector(ctx, vector, opts)
}

// QueryVector runs a similarity query with a pre-computed vector.
func (e *Engine) QueryVector(ctx context.Context, vector []float32, opts domain.QueryOptions) ([]domain.QueryResult, error) {
	if want := e.settings.Embedding.Dimensions; want > 0 && len(vector) != want {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, model uses %d",
			domain.ErrDimensionMismatch, len(vector), want)
	}

	if opts.Limit <= 0 {
		opts.Limit = e.settings.Retrieval.Limit
	}
	if opts.MinSimilarity == 0 {
		opts.MinSimilarity = e.settings.Retrieval.MinSimilarity
	}

	return e.store.Query(ctx, vector, e.Model(), opts)
}

// Retrieve is the chat-layer entry point. When the caller's context
// already exceeds the configured token threshold, retrieval is skipped
// and nil results are returned; the prompt is full enough without us.
func (e *Engine) Retrieve(ctx context.Context, text string, contextTokens int, opts domain.QueryOptions) ([]domain.QueryResult, error) {
	threshold := e.settings.Retrieval.ThresholdTokens
	if threshold > 0 && contextTokens > threshold {
		logger.Debug("Skipping retrieval: context %d tokens over threshold %d", contextTokens, threshold)
		return nil, nil
	}
	return e.Query(ctx, text, opts)
}
