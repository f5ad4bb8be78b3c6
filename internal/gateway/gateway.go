// Package gateway batches chunk embedding through the provider under
// rate-limit and concurrency discipline.
//
// The gateway owns everything the thin embedding client does not:
// splitting work into provider-sized batches, bounding in-flight
// calls, proactive throttling, exponential backoff with jitter on
// rate limits and transient transport failures, and abort-on-auth
// failures. Batch completion callbacks are serialised so the caller
// can mutate state without its own locking.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/inkwell-notes/vaultrag/internal/core/domain"
	"github.com/inkwell-notes/vaultrag/internal/core/ports/driven"
	"github.com/inkwell-notes/vaultrag/internal/logger"
)

// BatchResult is one completed provider batch. Vectors[i] corresponds
// to Chunks[i]; chunk identity is always preserved.
type BatchResult struct {
	Chunks  []domain.Chunk
	Vectors [][]float32
}

// BatchFunc consumes a completed batch. Called from a single
// goroutine, in completion order. Returning an error aborts the run.
type BatchFunc func(BatchResult) error

// WaitFunc is notified when the gateway starts (true) and stops
// (false) waiting out a provider rate limit.
type WaitFunc func(waiting bool)

// Gateway drives an EmbeddingService in rate-limited batches.
type Gateway struct {
	svc     driven.EmbeddingService
	cfg     domain.GatewaySettings
	limiter *rate.Limiter

	mu      sync.Mutex
	waiting int
	onWait  WaitFunc
}

// New creates a gateway over the given embedding service. Zero-valued
// batching and backoff settings fall back to the engine defaults;
// MaxRetries zero means failures are not retried.
func New(svc driven.EmbeddingService, cfg domain.GatewaySettings) *Gateway {
	def := domain.DefaultSettings().Gateway
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = def.BaseBackoff
	}
	if cfg.MaxBackoff < cfg.BaseBackoff {
		cfg.MaxBackoff = def.MaxBackoff
	}

	g := &Gateway{
		svc: svc,
		cfg: cfg,
	}
	if cfg.RequestsPerSecond > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	return g
}

// Model returns the wrapped service's model name.
func (g *Gateway) Model() string {
	return g.svc.Model()
}

// Dimensions returns the wrapped service's vector size.
func (g *Gateway) Dimensions() int {
	return g.svc.Dimensions()
}

// EmbedChunks embeds every chunk, delivering completed batches to
// onBatch one at a time. Results of in-flight batches are discarded on
// cancellation or failure; a batch is always delivered whole or not at
// all. onWait may be nil.
func (g *Gateway) EmbedChunks(ctx context.Context, chunks []domain.Chunk, onBatch BatchFunc, onWait WaitFunc) error {
	if len(chunks) == 0 {
		return nil
	}

	g.mu.Lock()
	g.onWait = onWait
	g.waiting = 0
	g.mu.Unlock()

	batches := g.partition(chunks)
	workers := g.cfg.Concurrency
	if workers > len(batches) {
		workers = len(batches)
	}
	logger.Debug("Embedding %d chunks in %d batches (%d workers)", len(chunks), len(batches), workers)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	batchCh := make(chan []domain.Chunk)
	resultCh := make(chan BatchResult)
	errCh := make(chan error, workers)

	go func() {
		defer close(batchCh)
		for _, b := range batches {
			select {
			case <-ctx.Done():
				return
			case batchCh <- b:
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range batchCh {
				vectors, err := g.embedWithRetry(ctx, chunkTexts(b))
				if err != nil {
					errCh <- err
					cancel()
					return
				}
				select {
				case <-ctx.Done():
					return
				case resultCh <- BatchResult{Chunks: b, Vectors: vectors}:
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Single collector: onBatch never runs concurrently with itself.
	for result := range resultCh {
		if err := onBatch(result); err != nil {
			cancel()
			for range resultCh {
				// Drain so workers can exit.
			}
			return err
		}
	}

	select {
	case err := <-errCh:
		return fmt.Errorf("embed batches: %w", err)
	default:
	}

	return ctx.Err()
}

// EmbedText embeds a single text (the query path) with the same
// throttling and retry discipline as batch embedding.
func (g *Gateway) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := g.embedWithRetry(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// embedWithRetry calls the provider, retrying rate-limited and
// transient failures with exponential backoff and ±50% jitter.
// Auth failures abort immediately.
func (g *Gateway) embedWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	backoff := g.cfg.BaseBackoff

	for attempt := 0; ; attempt++ {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		vectors, err := g.svc.Embed(ctx, texts)
		if err == nil {
			if len(vectors) != len(texts) {
				return nil, fmt.Errorf("provider returned %d vectors for %d texts", len(vectors), len(texts))
			}
			return vectors, nil
		}

		if errors.Is(err, domain.ErrAuth) || errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt >= g.cfg.MaxRetries {
			return nil, fmt.Errorf("retry budget exhausted after %d attempts: %w", attempt+1, err)
		}

		if errors.Is(err, domain.ErrRateLimited) {
			logger.Debug("Rate limited, backing off %v (attempt %d)", backoff, attempt+1)
		} else {
			logger.Debug("Transient embed failure: %v, backing off %v (attempt %d)", err, backoff, attempt+1)
		}

		g.enterWait()
		waitErr := sleep(ctx, withJitter(backoff))
		g.leaveWait()
		if waitErr != nil {
			return nil, waitErr
		}

		backoff *= 2
		if backoff > g.cfg.MaxBackoff {
			backoff = g.cfg.MaxBackoff
		}
	}
}

// partition splits chunks into provider-sized batches.
func (g *Gateway) partition(chunks []domain.Chunk) [][]domain.Chunk {
	var batches [][]domain.Chunk
	for start := 0; start < len(chunks); start += g.cfg.BatchSize {
		end := start + g.cfg.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batches = append(batches, chunks[start:end])
	}
	return batches
}

func (g *Gateway) enterWait() {
	g.mu.Lock()
	g.waiting++
	notify := g.waiting == 1 && g.onWait != nil
	onWait := g.onWait
	g.mu.Unlock()
	if notify {
		onWait(true)
	}
}

func (g *Gateway) leaveWait() {
	g.mu.Lock()
	g.waiting--
	notify := g.waiting == 0 && g.onWait != nil
	onWait := g.onWait
	g.mu.Unlock()
	if notify {
		onWait(false)
	}
}

// withJitter spreads a delay across [d/2, 3d/2) so concurrent workers
// do not retry in lockstep.
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d/2 + time.Duration(rand.Int64N(int64(d)))
}

// sleep waits for d or until ctx is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func chunkTexts(chunks []domain.Chunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}
