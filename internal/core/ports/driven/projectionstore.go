package driven

import (
	"context"

	"github.com/custodia-labs/ragledger/internal/core/domain"
)

// ProjectionStore persists the derived search projection, one row per document.
type ProjectionStore interface {
	// Refresh fully replaces the projection of a document.
	Refresh(ctx context.Context, projection domain.SearchProjection) error

	// Get retrieves the projection of a document.
	Get(ctx context.Context, documentID string) (*domain.SearchProjection, error)

	// Search returns documents whose search text contains every term,
	// most recently refreshed first.
	Search(ctx context.Context, terms []string, limit int) ([]domain.SearchHit, error)
}
