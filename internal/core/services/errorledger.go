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

// Ensure ErrorLedger implements the interface.
var _ driving.ErrorLedger = (*ErrorLedger)(nil)

// ErrorLedger appends processing errors to runs.
type ErrorLedger struct {
	errs driven.ErrorStore
	runs driven.RunStore
	now  func() time.Time
}

// NewErrorLedger creates a new error ledger.
func NewErrorLedger(errs driven.ErrorStore, runs driven.RunStore) *ErrorLedger {
	return &ErrorLedger{errs: errs, runs: runs, now: utcNow}
}

// RecordError appends an error to a run without touching the run status.
// Correlation fields must match the run; empty ones are copied from it.
func (s *ErrorLedger) RecordError(
	ctx context.Context,
	req driving.RecordErrorRequest,
) (*domain.ProcessingError, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	run, err := s.runs.Get(ctx, req.RunID)
	if err != nil {
		return nil, err
	}

	if req.CorrelationID != "" && req.CorrelationID != run.CorrelationID {
		return nil, fmt.Errorf("%w: correlation_id %q does not match run %s",
			domain.ErrInvalidInput, req.CorrelationID, run.ID)
	}
	if req.PipelineVersion != "" && req.PipelineVersion != run.PipelineVersion {
		return nil, fmt.Errorf("%w: pipeline_version %q does not match run %s",
			domain.ErrInvalidInput, req.PipelineVersion, run.ID)
	}

	documentID := req.DocumentID
	if documentID == "" {
		documentID = run.DocumentID
	}

	procErr := &domain.ProcessingError{
		ID:              newID(),
		RunID:           run.ID,
		CorrelationID:   run.CorrelationID,
		PipelineVersion: run.PipelineVersion,
		DocumentID:      documentID,
		Step:            req.Step,
		Code:            req.Code,
		Message:         req.Message,
		Details:         req.Details,
		CreatedAt:       s.now(),
	}
	if err := s.errs.Append(ctx, procErr); err != nil {
		return nil, err
	}

	logger.Debug("error recorded", "run_id", run.ID, "step", req.Step, "code", req.Code)
	return procErr, nil
}

// ErrorsForRun returns the errors of a run, oldest first.
func (s *ErrorLedger) ErrorsForRun(ctx context.Context, runID string) ([]domain.ProcessingError, error) {
	if err := requireArgs("run_id", runID); err != nil {
		return nil, err
	}
	return s.errs.ListByRun(ctx, runID)
}

// ErrorsForCorrelation returns errors across every run sharing a
// correlation ID, including runs whose document was deleted.
func (s *ErrorLedger) ErrorsForCorrelation(
	ctx context.Context,
	correlationID string,
	limit int,
) ([]domain.ProcessingError, error) {
	if err := requireArgs("correlation_id", correlationID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRunLimit
	}
	return s.errs.ListByCorrelation(ctx, correlationID, limit)
}
