package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driven"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
	"github.com/custodia-labs/ragledger/internal/logger"
)

// Ensure DocumentRegistry implements the interface.
var _ driving.DocumentRegistry = (*DocumentRegistry)(nil)

// DocumentRegistry owns document identity and lifecycle status.
type DocumentRegistry struct {
	docs driven.DocumentStore
	now  func() time.Time
}

// NewDocumentRegistry creates a new document registry.
func NewDocumentRegistry(docs driven.DocumentStore) *DocumentRegistry {
	return &DocumentRegistry{docs: docs, now: utcNow}
}

// Register creates a document in the discovered status if absent.
func (s *DocumentRegistry) Register(ctx context.Context, req driving.RegisterDocumentRequest) (*domain.Document, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	id := req.ID
	if id == "" {
		id = domain.StableDocumentID(req.Source, req.SourceURI)
	}

	now := s.now()
	stored, created, err := s.docs.Register(ctx, &domain.Document{
		ID:               id,
		Source:           req.Source,
		SourceURI:        req.SourceURI,
		Status:           domain.StatusDiscovered,
		DocumentMetadata: req.Metadata,
		CreatedAt:        now,
		UpdatedAt:        now,
	})
	if err != nil {
		return nil, err
	}

	if !created && stored.SourceURI != req.SourceURI {
		return nil, fmt.Errorf("%w: document %s is registered with source_uri %q",
			domain.ErrConflict, id, stored.SourceURI)
	}

	logger.Debug("document registered", "document_id", id, "created", created)
	return stored, nil
}

// Get retrieves a document by ID.
func (s *DocumentRegistry) Get(ctx context.Context, id string) (*domain.Document, error) {
	if err := requireArgs("document_id", id); err != nil {
		return nil, err
	}
	return s.docs.Get(ctx, id)
}

// List returns documents matching filter.
func (s *DocumentRegistry) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, filter.Status)
	}
	return s.docs.List(ctx, filter)
}

// AdvanceStatus moves a document along the lifecycle state machine.
// Moving to the current status is a no-op.
func (s *DocumentRegistry) AdvanceStatus(
	ctx context.Context,
	id string,
	next domain.DocumentStatus,
) (*domain.Document, error) {
	if err := requireArgs("document_id", id); err != nil {
		return nil, err
	}
	if !next.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrInvalidInput, next)
	}

	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Status == next {
		return doc, nil
	}
	if !doc.Status.CanTransitionTo(next, doc.PreviousStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, doc.Status, next)
	}

	var previous domain.DocumentStatus
	if next == domain.StatusNeedsReview {
		previous = doc.Status
	}

	// Compare-and-set: a concurrent advance surfaces as ErrConflict.
	if err := s.docs.CompareAndSetStatus(ctx, id, doc.Status, next, previous, s.now()); err != nil {
		return nil, err
	}

	logger.Debug("document status advanced", "document_id", id, "from", doc.Status, "to", next)
	return s.docs.Get(ctx, id)
}

// UpdateMetadata replaces the descriptive fields of a document.
func (s *DocumentRegistry) UpdateMetadata(
	ctx context.Context,
	id string,
	meta domain.DocumentMetadata,
) (*domain.Document, error) {
	if err := requireArgs("document_id", id); err != nil {
		return nil, err
	}
	if meta.PublishedYear < 0 {
		return nil, fmt.Errorf("%w: published_year must be positive", domain.ErrInvalidInput)
	}

	if err := s.docs.UpdateMetadata(ctx, id, meta, s.now()); err != nil {
		return nil, err
	}
	return s.docs.Get(ctx, id)
}

// Delete removes a document and everything it owns.
func (s *DocumentRegistry) Delete(ctx context.Context, id string) error {
	if err := requireArgs("document_id", id); err != nil {
		return err
	}
	if err := s.docs.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info("document deleted", "document_id", id)
	return nil
}

// PutFile records a stored file variant, replacing any previous record.
func (s *DocumentRegistry) PutFile(ctx context.Context, req driving.PutFileRequest) (*domain.DocumentFile, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	file := domain.DocumentFile{
		DocumentID: req.DocumentID,
		Variant:    req.Variant,
		StorageURI: req.StorageURI,
		SHA256:     req.SHA256,
		Bytes:      req.Bytes,
		MimeType:   req.MimeType,
		UpdatedAt:  s.now(),
	}
	if err := s.docs.PutFile(ctx, file); err != nil {
		return nil, err
	}
	return &file, nil
}

// GetFile retrieves a file variant.
func (s *DocumentRegistry) GetFile(ctx context.Context, documentID, variant string) (*domain.DocumentFile, error) {
	if err := requireArgs("document_id", documentID, "variant", variant); err != nil {
		return nil, err
	}
	return s.docs.GetFile(ctx, documentID, variant)
}

// ListFiles returns the file variants of a document.
func (s *DocumentRegistry) ListFiles(ctx context.Context, documentID string) ([]domain.DocumentFile, error) {
	return s.docs.ListFiles(ctx, documentID)
}

// AddLink attaches an external link to a document.
func (s *DocumentRegistry) AddLink(ctx context.Context, req driving.AddLinkRequest) (*domain.DocumentLink, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	link := domain.DocumentLink{
		DocumentID: req.DocumentID,
		LinkType:   req.LinkType,
		URL:        req.URL,
		Label:      req.Label,
	}
	if err := s.docs.PutLink(ctx, link); err != nil {
		return nil, err
	}
	return &link, nil
}

// ListLinks returns the links of a document.
func (s *DocumentRegistry) ListLinks(ctx context.Context, documentID string) ([]domain.DocumentLink, error) {
	return s.docs.ListLinks(ctx, documentID)
}
