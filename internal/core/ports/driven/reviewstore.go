package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/ragledger/internal/core/domain"
)

// ReviewStore persists review queue entries.
type ReviewStore interface {
	// Enqueue appends an entry. Entries are never deduplicated.
	Enqueue(ctx context.Context, entry *domain.ReviewEntry) error

	// Get retrieves an entry by ID.
	Get(ctx context.Context, id string) (*domain.ReviewEntry, error)

	// List returns entries matching filter, oldest first.
	List(ctx context.Context, filter domain.ReviewFilter) ([]domain.ReviewEntry, error)

	// Resolve closes an open entry. Returns ErrAlreadyResolved otherwise.
	Resolve(ctx context.Context, id string, at time.Time) (*domain.ReviewEntry, error)
}
