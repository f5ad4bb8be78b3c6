package domain

import "time"

// DocumentRef identifies a document in the vault without carrying its
// content. Content is retrieved lazily through the DocumentSource port.
type DocumentRef struct {
	// Path is the vault-relative path and the unique document key.
	Path string

	// ContentHash is the fingerprint of the normalised document content.
	ContentHash string

	// MTime is the document's last modification time.
	MTime time.Time
}

// Chunk is a bounded segment of a document and the unit of embedding
// and retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentPath is the vault-relative path of the owning document.
	DocumentPath string

	// StartOffset is the byte offset of the chunk start in the
	// original document text. Always < EndOffset.
	StartOffset int

	// EndOffset is the byte offset one past the chunk end.
	EndOffset int

	// Position is the ordinal position within the document.
	Position int

	// Text is the chunk content.
	Text string

	// ContentHash is the fingerprint of the normalised chunk text.
	// It is the embedding cache key and stays stable across runs.
	ContentHash string
}

// EmbeddedChunk pairs a chunk with its embedding vector for a model.
// Rows in the vector store are created from this shape.
type EmbeddedChunk struct {
	Chunk  Chunk
	Vector []float32
}
