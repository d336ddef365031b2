package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/ragledger/internal/core/domain"
)

// RunStore persists processing runs.
type RunStore interface {
	// Start inserts run unless a run with the same idempotency key exists,
	// as one atomic conditional insert. Returns the stored run and whether
	// this call created it.
	Start(ctx context.Context, run *domain.ProcessingRun) (*domain.ProcessingRun, bool, error)

	// Get retrieves a run by ID.
	Get(ctx context.Context, id string) (*domain.ProcessingRun, error)

	// MarkRunning moves a pending run to running. Running runs are left as is.
	// Returns ErrAlreadyTerminal for terminal runs.
	MarkRunning(ctx context.Context, id string) (*domain.ProcessingRun, error)

	// Finish moves a non-terminal run to a terminal status exactly once.
	// Returns ErrAlreadyTerminal and leaves the run untouched otherwise.
	Finish(ctx context.Context, id string, status domain.RunStatus, metrics domain.RunMetrics, at time.Time) (*domain.ProcessingRun, error)

	// LatestFor returns the most recently started run of a document version.
	LatestFor(ctx context.Context, documentID, pipelineVersion string) (*domain.ProcessingRun, error)

	// LatestSucceededVersion returns the pipeline version of the most
	// recently committed successful run of a document.
	LatestSucceededVersion(ctx context.Context, documentID string) (string, error)

	// List returns runs matching filter, most recently started first.
	List(ctx context.Context, filter domain.RunFilter) ([]domain.ProcessingRun, error)

	// Delete removes a run and its errors.
	Delete(ctx context.Context, id string) error
}

// ErrorStore persists processing errors. Errors are append-only.
type ErrorStore interface {
	// Append records an error against an existing run.
	Append(ctx context.Context, procErr *domain.ProcessingError) error

	// ListByRun returns the errors of a run, oldest first.
	ListByRun(ctx context.Context, runID string) ([]domain.ProcessingError, error)

	// ListByCorrelation returns the errors of every run sharing a
	// correlation ID, oldest first.
	ListByCorrelation(ctx context.Context, correlationID string, limit int) ([]domain.ProcessingError, error)
}
