package driving

import (
	"context"

	"github.com/custodia-labs/ragledger/internal/core/domain"
)

// RunTracker records pipeline executions with idempotent creation and
// write-once completion.
type RunTracker interface {
	// StartRun returns the existing run for the idempotency key, or creates
	// a pending run. The boolean reports whether a run was created.
	StartRun(ctx context.Context, req StartRunRequest) (*domain.ProcessingRun, bool, error)

	// MarkRunning moves a pending run to running.
	MarkRunning(ctx context.Context, runID string) (*domain.ProcessingRun, error)

	// FinishRun moves a run to a terminal status. Fails with
	// ErrAlreadyTerminal when the run already finished.
	FinishRun(ctx context.Context, req FinishRunRequest) (*domain.ProcessingRun, error)

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, runID string) (*domain.ProcessingRun, error)

	// ListRuns returns runs matching filter, newest first.
	ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.ProcessingRun, error)

	// LatestRunFor returns the most recently started run of a document version.
	LatestRunFor(ctx context.Context, documentID, pipelineVersion string) (*domain.ProcessingRun, error)

	// DeleteRun removes a run and its errors.
	DeleteRun(ctx context.Context, runID string) error
}

// StartRunRequest starts a run.
type StartRunRequest struct {
	CorrelationID   string `json:"correlation_id" validate:"required"`
	PipelineVersion string `json:"pipeline_version" validate:"required"`
	IdempotencyKey  string `json:"idempotency_key" validate:"required"`
	// DocumentID is optional; runs may fail before a document is resolved.
	DocumentID string `json:"document_id"`
}

// FinishRunRequest finishes a run.
type FinishRunRequest struct {
	RunID   string            `json:"run_id" validate:"required"`
	Status  domain.RunStatus  `json:"status" validate:"required,oneof=succeeded failed cancelled"`
	Metrics domain.RunMetrics `json:"metrics"`
}

// ErrorLedger appends structured processing errors. Recording an error
// never changes the status of its run.
type ErrorLedger interface {
	// RecordError appends an error to a run. Empty correlation ID and
	// pipeline version are copied from the run.
	RecordError(ctx context.Context, req RecordErrorRequest) (*domain.ProcessingError, error)

	// ErrorsForRun returns the errors of a run, oldest first.
	ErrorsForRun(ctx context.Context, runID string) ([]domain.ProcessingError, error)

	// ErrorsForCorrelation returns errors across every retry of a task.
	ErrorsForCorrelation(ctx context.Context, correlationID string, limit int) ([]domain.ProcessingError, error)
}

// RecordErrorRequest records an error.
type RecordErrorRequest struct {
	RunID           string              `json:"run_id" validate:"required"`
	CorrelationID   string              `json:"correlation_id"`
	PipelineVersion string              `json:"pipeline_version"`
	DocumentID      string              `json:"document_id"`
	Step            string              `json:"step" validate:"required"`
	Code            string              `json:"error_code"`
	Message         string              `json:"message" validate:"required"`
	Details         domain.ErrorDetails `json:"details"`
}
