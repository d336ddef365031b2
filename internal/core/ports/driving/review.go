package driving

import (
	"context"

	"github.com/custodia-labs/ragledger/internal/core/domain"
)

// ReviewQueue escalates document versions for human attention.
type ReviewQueue interface {
	// Enqueue appends an open entry. Entries are never deduplicated.
	Enqueue(ctx context.Context, req EnqueueReviewRequest) (*domain.ReviewEntry, error)

	// Resolve closes an entry. Fails with ErrAlreadyResolved when closed.
	Resolve(ctx context.Context, reviewID string) (*domain.ReviewEntry, error)

	// Get retrieves an entry by ID.
	Get(ctx context.Context, reviewID string) (*domain.ReviewEntry, error)

	// List returns entries matching filter.
	List(ctx context.Context, filter domain.ReviewFilter) ([]domain.ReviewEntry, error)
}

// EnqueueReviewRequest escalates a document version.
type EnqueueReviewRequest struct {
	DocumentID      string `json:"document_id" validate:"required"`
	PipelineVersion string `json:"pipeline_version" validate:"required"`
	Reason          string `json:"reason" validate:"required"`
}
