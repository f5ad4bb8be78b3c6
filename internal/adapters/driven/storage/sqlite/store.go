package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/inkwell-notes/vaultrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/inkwell-notes/vaultrag/internal/core/domain"
	"github.com/inkwell-notes/vaultrag/internal/core/ports/driven"
	"github.com/inkwell-notes/vaultrag/internal/pathfilter"
)

// Store is the SQLite-backed persistence layer: chunk rows with their
// vectors, per-document index state, and the embedding cache, all in
// one database file.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (and if needed creates) the index database under
// dataDir. If dataDir is empty, defaults to ~/.vaultrag/data/index.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".vaultrag", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")

	// WAL keeps queries responsive while an index run is writing.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// VectorStore returns a VectorStore interface backed by this store.
func (s *Store) VectorStore() driven.VectorStore {
	return &vectorStore{store: s}
}

// IndexStateStore returns an IndexStateStore interface backed by this store.
func (s *Store) IndexStateStore() driven.IndexStateStore {
	return &indexStateStore{store: s}
}

// EmbeddingCache returns an EmbeddingCache interface backed by this store.
func (s *Store) EmbeddingCache() driven.EmbeddingCache {
	return &embeddingCache{store: s}
}

// PruneCache drops every cached embedding for a model. The port has
// no eviction; this is the maintenance entry point for retiring a
// model's cache namespace.
func (s *Store) PruneCache(ctx context.Context, model string) (int64, error) {
	return (&embeddingCache{store: s}).Prune(ctx, model)
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Vector Store ====================

// vectorStore implements driven.VectorStore.
type vectorStore struct {
	store *Store
}

var _ driven.VectorStore = (*vectorStore)(nil)

// ReplaceDocument swaps a document's rows and records its indexed
// fingerprint in one transaction. Delete-then-insert means a document
// is always either fully present under its recorded hash or absent.
func (v *vectorStore) ReplaceDocument(ctx context.Context, path, model, docHash string, chunks []domain.EmbeddedChunk) error {
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chunks WHERE document_path = ? AND model = ?", path, model); err != nil {
		return fmt.Errorf("deleting old chunks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, document_path, model, position, start_offset, end_offset, content, content_hash, embedding, dimensions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, ec := range chunks {
		if _, err := stmt.ExecContext(ctx,
			ec.Chunk.ID, path, model, ec.Chunk.Position,
			ec.Chunk.StartOffset, ec.Chunk.EndOffset,
			ec.Chunk.Text, ec.Chunk.ContentHash,
			float32SliceToBytes(ec.Vector), len(ec.Vector)); err != nil {
			return fmt.Errorf("inserting chunk: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO indexed_documents (path, model, content_hash)
		VALUES (?, ?, ?)
		ON CONFLICT(path, model) DO UPDATE SET
			content_hash = excluded.content_hash,
			indexed_at = CURRENT_TIMESTAMP
	`, path, model, docHash); err != nil {
		return fmt.Errorf("recording index state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// DeleteDocument removes a document's rows and its indexed fingerprint.
func (v *vectorStore) DeleteDocument(ctx context.Context, path, model string) error {
	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM chunks WHERE document_path = ? AND model = ?", path, model); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM indexed_documents WHERE path = ? AND model = ?", path, model); err != nil {
		return fmt.Errorf("deleting index state: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Query scans the model's rows and ranks them by cosine similarity in
// Go. Rows with a different vector dimension than the query are
// skipped rather than treated as errors: they are leftovers from a
// dimension change and will be replaced on the next index run.
func (v *vectorStore) Query(ctx context.Context, vector []float32, model string, opts domain.QueryOptions) ([]domain.QueryResult, error) {
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", domain.ErrInvalidInput)
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultSettings().Retrieval.Limit
	}

	filter := pathfilter.New(opts.IncludePatterns, opts.ExcludePatterns)

	rows, err := v.store.db.QueryContext(ctx, `
		SELECT id, document_path, position, start_offset, end_offset, content, content_hash, embedding, dimensions
		FROM chunks WHERE model = ?
	`, model)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var results []domain.QueryResult
	for rows.Next() {
		var chunk domain.Chunk
		var embeddingBlob []byte
		var dimensions int
		if err := rows.Scan(&chunk.ID, &chunk.DocumentPath, &chunk.Position,
			&chunk.StartOffset, &chunk.EndOffset, &chunk.Text, &chunk.ContentHash,
			&embeddingBlob, &dimensions); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}

		if dimensions != len(vector) {
			continue
		}
		if !filter.Empty() && !filter.Match(chunk.DocumentPath) {
			continue
		}

		similarity := domain.CosineSimilarity(vector, bytesToFloat32Slice(embeddingBlob))
		if similarity < opts.MinSimilarity {
			continue
		}

		results = append(results, domain.QueryResult{
			Chunk:        chunk,
			DocumentPath: chunk.DocumentPath,
			Similarity:   similarity,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}

	domain.SortQueryResults(results)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Stats reports document and chunk counts for a model.
func (v *vectorStore) Stats(ctx context.Context, model string) (driven.StoreStats, error) {
	var stats driven.StoreStats

	row := v.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM indexed_documents WHERE model = ?", model)
	if err := row.Scan(&stats.Documents); err != nil {
		return stats, fmt.Errorf("counting documents: %w", err)
	}

	row = v.store.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE model = ?", model)
	if err := row.Scan(&stats.Chunks); err != nil {
		return stats, fmt.Errorf("counting chunks: %w", err)
	}

	return stats, nil
}

// Close closes the underlying store.
func (v *vectorStore) Close() error {
	return v.store.Close()
}

// ==================== Index State Store ====================

// indexStateStore implements driven.IndexStateStore.
type indexStateStore struct {
	store *Store
}

var _ driven.IndexStateStore = (*indexStateStore)(nil)

// IndexedHashes returns path -> content hash for every indexed
// document of the given model.
func (i *indexStateStore) IndexedHashes(ctx context.Context, model string) (map[string]string, error) {
	rows, err := i.store.db.QueryContext(ctx,
		"SELECT path, content_hash FROM indexed_documents WHERE model = ?", model)
	if err != nil {
		return nil, fmt.Errorf("querying index state: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var path, hash string
		if err := rows.Scan(&path, &hash); err != nil {
			return nil, fmt.Errorf("scanning index state: %w", err)
		}
		hashes[path] = hash
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating index state: %w", err)
	}

	return hashes, nil
}

// ==================== Embedding Cache ====================

// embeddingCache implements driven.EmbeddingCache.
type embeddingCache struct {
	store *Store
}

var _ driven.EmbeddingCache = (*embeddingCache)(nil)

// Get returns the cached vector for (contentHash, model).
func (c *embeddingCache) Get(ctx context.Context, contentHash, model string) ([]float32, bool, error) {
	row := c.store.db.QueryRowContext(ctx,
		"SELECT embedding FROM embedding_cache WHERE content_hash = ? AND model = ?",
		contentHash, model)

	var blob []byte
	if err := row.Scan(&blob); err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	return bytesToFloat32Slice(blob), true, nil
}

// Prune drops every cached vector for a model. Useful after retiring
// a model whose namespace would otherwise sit in the cache forever.
func (c *embeddingCache) Prune(ctx context.Context, model string) (int64, error) {
	res, err := c.store.db.ExecContext(ctx,
		"DELETE FROM embedding_cache WHERE model = ?", model)
	if err != nil {
		return 0, fmt.Errorf("pruning cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting pruned entries: %w", err)
	}
	return n, nil
}

// Put stores a vector under (contentHash, model).
func (c *embeddingCache) Put(ctx context.Context, contentHash, model string, vector []float32) error {
	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO embedding_cache (content_hash, model, embedding)
		VALUES (?, ?, ?)
		ON CONFLICT(content_hash, model) DO UPDATE SET
			embedding = excluded.embedding
	`, contentHash, model, float32SliceToBytes(vector))
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// ==================== Helpers ====================

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
