package driving

import (
	"context"

	"github.com/custodia-labs/ragledger/internal/core/domain"
)

// SearchProjection maintains and queries the derived search view.
type SearchProjection interface {
	// Refresh fully replaces the projection of a document.
	Refresh(ctx context.Context, req RefreshProjectionRequest) (*domain.SearchProjection, error)

	// Get retrieves the projection of a document.
	Get(ctx context.Context, documentID string) (*domain.SearchProjection, error)

	// Search returns documents matching every query term.
	// A non-positive limit uses the configured default.
	Search(ctx context.Context, query string, limit int) ([]domain.SearchHit, error)
}

// RefreshProjectionRequest rebuilds a projection.
type RefreshProjectionRequest struct {
	DocumentID     string `json:"document_id" validate:"required"`
	PreviewText    string `json:"preview_text"`
	SearchableText string `json:"searchable_text"`
}
