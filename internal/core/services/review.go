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

// Ensure ReviewQueue implements the interface.
var _ driving.ReviewQueue = (*ReviewQueue)(nil)

// ReviewQueue records escalations for human attention.
type ReviewQueue struct {
	reviews driven.ReviewStore
	now     func() time.Time
}

// NewReviewQueue creates a new review queue.
func NewReviewQueue(reviews driven.ReviewStore) *ReviewQueue {
	return &ReviewQueue{reviews: reviews, now: utcNow}
}

// Enqueue appends an open entry. Each call is a distinct detection event.
func (s *ReviewQueue) Enqueue(ctx context.Context, req driving.EnqueueReviewRequest) (*domain.ReviewEntry, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	entry := &domain.ReviewEntry{
		ID:              newID(),
		DocumentID:      req.DocumentID,
		PipelineVersion: req.PipelineVersion,
		Reason:          req.Reason,
		Status:          domain.ReviewOpen,
		CreatedAt:       s.now(),
	}
	if err := s.reviews.Enqueue(ctx, entry); err != nil {
		return nil, err
	}

	logger.Debug("review enqueued", "review_id", entry.ID, "document_id", entry.DocumentID, "reason", entry.Reason)
	return entry, nil
}

// Resolve closes an open entry.
func (s *ReviewQueue) Resolve(ctx context.Context, reviewID string) (*domain.ReviewEntry, error) {
	if err := requireArgs("review_id", reviewID); err != nil {
		return nil, err
	}

	entry, err := s.reviews.Resolve(ctx, reviewID, s.now())
	if err != nil {
		return nil, err
	}

	logger.Debug("review resolved", "review_id", reviewID)
	return entry, nil
}

// Get retrieves an entry by ID.
func (s *ReviewQueue) Get(ctx context.Context, reviewID string) (*domain.ReviewEntry, error) {
	if err := requireArgs("review_id", reviewID); err != nil {
		return nil, err
	}
	return s.reviews.Get(ctx, reviewID)
}

// List returns entries matching filter.
func (s *ReviewQueue) List(ctx context.Context, filter domain.ReviewFilter) ([]domain.ReviewEntry, error) {
	switch filter.Status {
	case "", domain.ReviewOpen, domain.ReviewResolved:
	default:
		return nil, fmt.Errorf("%w: unknown review status %q", domain.ErrInvalidInput, filter.Status)
	}
	return s.reviews.List(ctx, filter)
}
