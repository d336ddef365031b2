package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driven"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
	"github.com/custodia-labs/ragledger/internal/logger"
)

// Ensure RunTracker implements the interface.
var _ driving.RunTracker = (*RunTracker)(nil)

// defaultRunLimit caps run listings when no limit is given.
const defaultRunLimit = 100

// RunTracker records processing runs.
type RunTracker struct {
	runs driven.RunStore
	now  func() time.Time
}

// NewRunTracker creates a new run tracker.
func NewRunTracker(runs driven.RunStore) *RunTracker {
	return &RunTracker{runs: runs, now: utcNow}
}

// StartRun returns the run already holding the idempotency key, or creates
// a pending one. Concurrent callers sharing a key all receive the same run.
// The document must exist only when a new run is created: a retry still
// resolves to its run after the document was deleted.
func (s *RunTracker) StartRun(
	ctx context.Context,
	req driving.StartRunRequest,
) (*domain.ProcessingRun, bool, error) {
	if err := validateRequest(req); err != nil {
		return nil, false, err
	}

	run, created, err := s.runs.Start(ctx, &domain.ProcessingRun{
		ID:              newID(),
		CorrelationID:   req.CorrelationID,
		PipelineVersion: req.PipelineVersion,
		DocumentID:      req.DocumentID,
		IdempotencyKey:  req.IdempotencyKey,
		Status:          domain.RunPending,
		StartedAt:       s.now(),
	})
	if errors.Is(err, domain.ErrNotFound) && req.DocumentID != "" {
		return nil, false, fmt.Errorf("run document %s: %w", req.DocumentID, err)
	}
	if err != nil {
		return nil, false, err
	}

	if created {
		logger.Debug("run started", "run_id", run.ID, "correlation_id", run.CorrelationID,
			"pipeline_version", run.PipelineVersion)
	} else {
		logger.Debug("run deduplicated", "run_id", run.ID, "idempotency_key", req.IdempotencyKey,
			"correlation_id", req.CorrelationID)
	}
	return run, created, nil
}

// MarkRunning moves a pending run to running.
func (s *RunTracker) MarkRunning(ctx context.Context, runID string) (*domain.ProcessingRun, error) {
	if err := requireArgs("run_id", runID); err != nil {
		return nil, err
	}
	return s.runs.MarkRunning(ctx, runID)
}

// FinishRun moves a run to a terminal status exactly once.
func (s *RunTracker) FinishRun(ctx context.Context, req driving.FinishRunRequest) (*domain.ProcessingRun, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	run, err := s.runs.Finish(ctx, req.RunID, req.Status, req.Metrics, s.now())
	if err != nil {
		return nil, err
	}

	logger.Debug("run finished", "run_id", run.ID, "status", run.Status)
	return run, nil
}

// GetRun retrieves a run by ID.
func (s *RunTracker) GetRun(ctx context.Context, runID string) (*domain.ProcessingRun, error) {
	if err := requireArgs("run_id", runID); err != nil {
		return nil, err
	}
	return s.runs.Get(ctx, runID)
}

// ListRuns returns runs matching filter, newest first.
func (s *RunTracker) ListRuns(ctx context.Context, filter domain.RunFilter) ([]domain.ProcessingRun, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, fmt.Errorf("%w: unknown run status %q", domain.ErrInvalidInput, filter.Status)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultRunLimit
	}
	return s.runs.List(ctx, filter)
}

// LatestRunFor returns the most recently started run of a document version.
func (s *RunTracker) LatestRunFor(
	ctx context.Context,
	documentID, pipelineVersion string,
) (*domain.ProcessingRun, error) {
	if err := requireArgs("document_id", documentID, "pipeline_version", pipelineVersion); err != nil {
		return nil, err
	}
	return s.runs.LatestFor(ctx, documentID, pipelineVersion)
}

// DeleteRun removes a run and its errors.
func (s *RunTracker) DeleteRun(ctx context.Context, runID string) error {
	if err := requireArgs("run_id", runID); err != nil {
		return err
	}
	if err := s.runs.Delete(ctx, runID); err != nil {
		return err
	}
	logger.Info("run deleted", "run_id", runID)
	return nil
}
