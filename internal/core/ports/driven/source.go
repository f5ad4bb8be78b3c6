package driven

import (
	"context"

	"github.com/inkwell-notes/vaultrag/internal/core/domain"
)

// DocumentSource abstracts the vault: it lists documents with their
// content fingerprints and retrieves content lazily. The engine never
// creates or deletes source documents.
type DocumentSource interface {
	// ListDocuments returns a reference for every indexable document
	// currently in the vault. A failure to hash one document must not
	// abort the listing.
	ListDocuments(ctx context.Context) ([]domain.DocumentRef, error)

	// ReadContent returns the full text of the document at path.
	// Returns domain.ErrNotFound if the document vanished after
	// listing.
	ReadContent(ctx context.Context, path string) (string, error)
}
