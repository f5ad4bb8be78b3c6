package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/inkwell-notes/vaultrag/internal/chunker"
	"github.com/inkwell-notes/vaultrag/internal/core/domain"
	"github.com/inkwell-notes/vaultrag/internal/core/ports/driven"
	"github.com/inkwell-notes/vaultrag/internal/core/ports/driving"
	"github.com/inkwell-notes/vaultrag/internal/gateway"
	"github.com/inkwell-notes/vaultrag/internal/logger"
)

// Ensure Engine implements the interfaces.
var _ driving.Indexer = (*Engine)(nil)
var _ driving.Retriever = (*Engine)(nil)

// Engine coordinates indexing and retrieval for one vault.
type Engine struct {
	source   driven.DocumentSource
	store    driven.VectorStore
	state    driven.IndexStateStore
	cache    driven.EmbeddingCache
	gw       *gateway.Gateway
	chunker  *chunker.Chunker
	settings domain.Settings

	running atomic.Bool
}

// NewEngine creates the engine. The embedding service may be nil, in
// which case indexing and semantic queries return
// domain.ErrEmbeddingUnavailable.
func NewEngine(
	source driven.DocumentSource,
	store driven.VectorStore,
	state driven.IndexStateStore,
	cache driven.EmbeddingCache,
	embedder driven.EmbeddingService,
	settings domain.Settings,
) *Engine {
	e := &Engine{
		source:   source,
		store:    store,
		state:    state,
		cache:    cache,
		settings: settings,
		chunker: chunker.New(
			chunker.WithChunkSize(settings.Chunking.ChunkSize),
			chunker.WithOverlap(settings.Chunking.Overlap),
		),
	}
	if embedder != nil {
		e.gw = gateway.New(embedder, settings.Gateway)
	}
	return e
}

// Model returns the active embedding model name.
func (e *Engine) Model() string {
	if e.gw == nil {
		return e.settings.Embedding.Model
	}
	return e.gw.Model()
}

// StoreStats reports index size for the active model.
func (e *Engine) StoreStats(ctx context.Context) (driven.StoreStats, error) {
	return e.store.Stats(ctx, e.Model())
}

// Running reports whether an index run is currently active.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// docPlan is the staged work for one changed document.
type docPlan struct {
	ref     domain.DocumentRef
	chunks  []domain.Chunk
	vectors [][]float32
	missing int // chunks still waiting for an embedding
}

// UpdateIndex diffs the vault against the stored index state and
// applies the difference. Per-document read and store failures are
// counted and skipped; embedding failures abort the run because every
// remaining document would fail the same way.
func (e *Engine) UpdateIndex(ctx context.Context, opts domain.IndexOptions, onProgress domain.ProgressFunc) (*domain.IndexStats, error) {
	if e.gw == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if !e.running.CompareAndSwap(false, true) {
		return nil, domain.ErrIndexInProgress
	}
	defer e.running.Store(false)

	start := time.Now()
	model := e.gw.Model()
	stats := &domain.IndexStats{}

	logger.Section("Updating index (model %s)", model)

	// 1. List the vault and load the stored state.
	refs, err := e.source.ListDocuments(ctx)
	if err != nil {
		return nil, &domain.IndexError{Phase: domain.PhaseList, Err: err}
	}
	stats.DocumentsScanned = len(refs)

	indexed, err := e.state.IndexedHashes(ctx, model)
	if err != nil {
		return nil, &domain.IndexError{Phase: domain.PhaseList, Err: err}
	}

	// 2. Diff: changed documents and removed paths.
	current := make(map[string]bool, len(refs))
	var changed []domain.DocumentRef
	for _, ref := range refs {
		current[ref.Path] = true
		if opts.ReindexAll || indexed[ref.Path] != ref.ContentHash {
			changed = append(changed, ref)
		}
	}
	var removed []string
	for path := range indexed {
		if !current[path] {
			removed = append(removed, path)
		}
	}
	logger.Info("Scanned %d documents: %d changed, %d removed", len(refs), len(changed), len(removed))

	// 3. Apply removals first so queries stop seeing vanished notes
	// even if the run is cancelled later.
	for _, path := range removed {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err := e.store.DeleteDocument(ctx, path, model); err != nil {
			logger.Warn("Removing %s from index: %v", path, err)
			stats.DocumentsFailed++
			continue
		}
		stats.DocumentsRemoved++
	}

	// 4. Read and chunk every changed document, partitioning chunks
	// into cache hits and texts that need the provider.
	plans := make([]*docPlan, 0, len(changed))
	var toEmbed []domain.Chunk
	owner := make(map[string]*docPlan) // chunk ID -> plan

	for _, ref := range changed {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		content, err := e.source.ReadContent(ctx, ref.Path)
		if err != nil {
			logger.Warn("Reading %s: %v", ref.Path, err)
			stats.DocumentsFailed++
			continue
		}
		// A rename or save between listing and reading changes the
		// hash; index what was actually read.
		hash := domain.HashText(content)
		if hash != ref.ContentHash {
			ref.ContentHash = hash
		}

		chunks := e.chunker.Split(ref.Path, content)
		plan := &docPlan{
			ref:     ref,
			chunks:  chunks,
			vectors: make([][]float32, len(chunks)),
		}

		for i, ch := range chunks {
			vector, ok, err := e.cache.Get(ctx, ch.ContentHash, model)
			if err != nil {
				return nil, &domain.IndexError{Path: ref.Path, Phase: domain.PhaseEmbed, Err: err}
			}
			if ok {
				plan.vectors[i] = vector
				stats.CacheHits++
				continue
			}
			plan.missing++
			toEmbed = append(toEmbed, ch)
			owner[ch.ID] = plan
		}
		plans = append(plans, plan)
	}

	// 5. Stage progress over every chunk of every changed document.
	total := 0
	for _, plan := range plans {
		total += len(plan.chunks)
	}
	tracker := newProgressTracker(onProgress, total)
	tracker.emit()

	commit := func(plan *docPlan) {
		embedded := make([]domain.EmbeddedChunk, len(plan.chunks))
		for i := range plan.chunks {
			embedded[i] = domain.EmbeddedChunk{Chunk: plan.chunks[i], Vector: plan.vectors[i]}
		}
		if err := e.store.ReplaceDocument(ctx, plan.ref.Path, model, plan.ref.ContentHash, embedded); err != nil {
			logger.Warn("Storing %s: %v", plan.ref.Path, err)
			stats.DocumentsFailed++
			return
		}
		stats.DocumentsChanged++
		tracker.addCompleted(len(plan.chunks))
	}

	// 6. Commit documents fully served from the cache right away.
	for _, plan := range plans {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if plan.missing == 0 {
			commit(plan)
		}
	}

	// 7. Embed the misses; each document commits as soon as its last
	// chunk arrives, so a crash or cancellation loses at most the
	// in-flight documents.
	if len(toEmbed) > 0 {
		err = e.gw.EmbedChunks(ctx, toEmbed,
			func(batch gateway.BatchResult) error {
				for i, ch := range batch.Chunks {
					vector := batch.Vectors[i]
					if want := e.settings.Embedding.Dimensions; want > 0 && len(vector) != want {
						return fmt.Errorf("%w: provider returned %d dimensions, expected %d",
							domain.ErrDimensionMismatch, len(vector), want)
					}
					if err := e.cache.Put(ctx, ch.ContentHash, model, vector); err != nil {
						logger.Warn("Caching embedding for %s: %v", ch.DocumentPath, err)
					}
					stats.ChunksEmbedded++

					plan := owner[ch.ID]
					for j := range plan.chunks {
						if plan.chunks[j].ID == ch.ID && plan.vectors[j] == nil {
							plan.vectors[j] = vector
							plan.missing--
							break
						}
					}
					if plan.missing == 0 {
						commit(plan)
					}
				}
				return nil
			},
			tracker.setWaiting,
		)
		if err != nil {
			return nil, &domain.IndexError{Phase: domain.PhaseEmbed, Err: err}
		}
	}

	stats.Duration = time.Since(start)
	logger.Info("Index update done in %v: %d changed, %d removed, %d failed, %d embedded, %d cache hits",
		stats.Duration.Round(time.Millisecond), stats.DocumentsChanged, stats.DocumentsRemoved,
		stats.DocumentsFailed, stats.ChunksEmbedded, stats.CacheHits)
	return stats, nil
}

// progressTracker serialises progress callbacks and keeps
// CompletedChunks non-decreasing.
type progressTracker struct {
	mu        sync.Mutex
	fn        domain.ProgressFunc
	completed int
	total     int
	waiting   bool
}

func newProgressTracker(fn domain.ProgressFunc, total int) *progressTracker {
	return &progressTracker{fn: fn, total: total}
}

func (p *progressTracker) addCompleted(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed += n
	p.emitLocked()
}

func (p *progressTracker) setWaiting(waiting bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waiting = waiting
	p.emitLocked()
}

func (p *progressTracker) emit() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.emitLocked()
}

func (p *progressTracker) emitLocked() {
	if p.fn == nil {
		return
	}
	p.fn(domain.IndexProgress{
		CompletedChunks:     p.completed,
		TotalChunks:         p.total,
		WaitingForRateLimit: p.waiting,
	})
}
