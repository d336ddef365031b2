package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/ragledger/internal/core/domain"
)

// DocumentStore persists documents and the records they own.
type DocumentStore interface {
	// Register inserts doc unless a document with the same ID exists.
	// Returns the stored document and whether this call created it.
	Register(ctx context.Context, doc *domain.Document) (*domain.Document, bool, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns documents matching filter, oldest first.
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)

	// CompareAndSetStatus moves a document from expected to next and stores
	// previous as the interrupted status. Returns ErrConflict when the
	// current status is no longer expected.
	CompareAndSetStatus(ctx context.Context, id string, expected, next, previous domain.DocumentStatus, at time.Time) error

	// UpdateMetadata replaces the descriptive fields of a document.
	UpdateMetadata(ctx context.Context, id string, meta domain.DocumentMetadata, at time.Time) error

	// Delete removes a document and everything it owns.
	// Processing runs survive with their document reference cleared.
	Delete(ctx context.Context, id string) error

	// PutFile upserts a file variant.
	PutFile(ctx context.Context, file domain.DocumentFile) error

	// GetFile retrieves one file variant.
	GetFile(ctx context.Context, documentID, variant string) (*domain.DocumentFile, error)

	// ListFiles returns all file variants of a document.
	ListFiles(ctx context.Context, documentID string) ([]domain.DocumentFile, error)

	// PutLink upserts a link keyed by (document, link type, URL).
	PutLink(ctx context.Context, link domain.DocumentLink) error

	// ListLinks returns all links of a document.
	ListLinks(ctx context.Context, documentID string) ([]domain.DocumentLink, error)
}
