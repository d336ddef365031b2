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

// Ensure SearchProjection implements the interface.
var _ driving.SearchProjection = (*SearchProjection)(nil)

// SearchProjection maintains the derived per-document search view.
type SearchProjection struct {
	projections  driven.ProjectionStore
	docs         driven.DocumentStore
	defaultLimit int
	now          func() time.Time
}

// NewSearchProjection creates a new search projection service.
func NewSearchProjection(
	projections driven.ProjectionStore,
	docs driven.DocumentStore,
	defaultLimit int,
) *SearchProjection {
	if defaultLimit <= 0 {
		defaultLimit = domain.DefaultSettings().Search.DefaultLimit
	}
	return &SearchProjection{
		projections:  projections,
		docs:         docs,
		defaultLimit: defaultLimit,
		now:          utcNow,
	}
}

// Refresh rebuilds the projection of a document from its current title,
// author and the caller-derived searchable text.
func (s *SearchProjection) Refresh(
	ctx context.Context,
	req driving.RefreshProjectionRequest,
) (*domain.SearchProjection, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	doc, err := s.docs.Get(ctx, req.DocumentID)
	if err != nil {
		return nil, err
	}

	p := domain.SearchProjection{
		DocumentID:  doc.ID,
		PreviewText: req.PreviewText,
		SearchText:  domain.BuildSearchText(doc.Title, doc.Author, req.SearchableText),
		UpdatedAt:   s.now(),
	}
	if err := s.projections.Refresh(ctx, p); err != nil {
		return nil, err
	}

	logger.Debug("projection refreshed", "document_id", doc.ID)
	return &p, nil
}

// Get retrieves the projection of a document.
func (s *SearchProjection) Get(ctx context.Context, documentID string) (*domain.SearchProjection, error) {
	if err := requireArgs("document_id", documentID); err != nil {
		return nil, err
	}
	return s.projections.Get(ctx, documentID)
}

// Search returns documents whose projection contains every query term.
func (s *SearchProjection) Search(ctx context.Context, query string, limit int) ([]domain.SearchHit, error) {
	terms := domain.SearchTerms(query)
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = s.defaultLimit
	}
	return s.projections.Search(ctx, terms, limit)
}
