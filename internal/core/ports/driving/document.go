package driving

import (
	"context"

	"github.com/custodia-labs/ragledger/internal/core/domain"
)

// DocumentRegistry owns document identity and the lifecycle state machine.
type DocumentRegistry interface {
	// Register creates a document if absent. Registering an existing ID is a
	// no-op unless the source URI differs, which fails with ErrConflict.
	Register(ctx context.Context, req RegisterDocumentRequest) (*domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List returns documents matching filter.
	List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error)

	// AdvanceStatus moves a document to next per the lifecycle state machine.
	// Fails with ErrInvalidTransition when next is unreachable.
	AdvanceStatus(ctx context.Context, id string, next domain.DocumentStatus) (*domain.Document, error)

	// UpdateMetadata replaces the descriptive fields of a document.
	UpdateMetadata(ctx context.Context, id string, meta domain.DocumentMetadata) (*domain.Document, error)

	// Delete removes a document and everything it owns.
	Delete(ctx context.Context, id string) error

	// PutFile records a stored file variant.
	PutFile(ctx context.Context, req PutFileRequest) (*domain.DocumentFile, error)

	// GetFile retrieves a file variant.
	GetFile(ctx context.Context, documentID, variant string) (*domain.DocumentFile, error)

	// ListFiles returns the file variants of a document.
	ListFiles(ctx context.Context, documentID string) ([]domain.DocumentFile, error)

	// AddLink attaches an external link to a document.
	AddLink(ctx context.Context, req AddLinkRequest) (*domain.DocumentLink, error)

	// ListLinks returns the links of a document.
	ListLinks(ctx context.Context, documentID string) ([]domain.DocumentLink, error)
}

// RegisterDocumentRequest registers a document.
type RegisterDocumentRequest struct {
	// ID is derived from Source and SourceURI when empty.
	ID        string `json:"document_id"`
	Source    string `json:"source" validate:"required"`
	SourceURI string `json:"source_uri" validate:"required"`

	Metadata domain.DocumentMetadata `json:"-"`
}

// PutFileRequest records a file variant.
type PutFileRequest struct {
	DocumentID string `json:"document_id" validate:"required"`
	Variant    string `json:"variant" validate:"required"`
	StorageURI string `json:"storage_uri" validate:"required"`
	SHA256     string `json:"sha256" validate:"omitempty,len=64,hexadecimal"`
	Bytes      int64  `json:"bytes" validate:"gte=0"`
	MimeType   string `json:"mime_type"`
}

// AddLinkRequest attaches a link.
type AddLinkRequest struct {
	DocumentID string `json:"document_id" validate:"required"`
	LinkType   string `json:"link_type" validate:"required"`
	URL        string `json:"url" validate:"required,url"`
	Label      string `json:"label"`
}
