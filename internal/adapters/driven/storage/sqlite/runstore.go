package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driven"
)

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

var runColumns = []string{
	"run_id", "correlation_id", "pipeline_version", "document_id", "idempotency_key",
	"status", "metrics", "started_at", "finished_at",
}

// Start inserts run unless its idempotency key exists. The insert is a
// single conditional statement; the loser of a race reads the winner's row.
// A run naming a missing document is not inserted and reads as ErrNotFound.
func (s *runStore) Start(ctx context.Context, run *domain.ProcessingRun) (*domain.ProcessingRun, bool, error) {
	metrics, err := toJSON(run.Metrics)
	if err != nil {
		return nil, false, err
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO processing_runs (run_id, correlation_id, pipeline_version, document_id,
			idempotency_key, status, metrics, started_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?
		WHERE ? = '' OR EXISTS (SELECT 1 FROM documents WHERE document_id = ?)
		ON CONFLICT(idempotency_key) DO NOTHING
	`, run.ID, run.CorrelationID, run.PipelineVersion, nullString(run.DocumentID),
		run.IdempotencyKey, string(run.Status), metrics, run.StartedAt.UTC(),
		run.DocumentID, run.DocumentID)
	if err != nil {
		return nil, false, fmt.Errorf("starting run: %w", err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return nil, false, err
	}

	stored, err := s.getBy(ctx, sq.Eq{"idempotency_key": run.IdempotencyKey})
	if err != nil {
		return nil, false, err
	}
	return stored, n == 1, nil
}

// Get retrieves a run by ID.
func (s *runStore) Get(ctx context.Context, id string) (*domain.ProcessingRun, error) {
	return s.getBy(ctx, sq.Eq{"run_id": id})
}

func (s *runStore) getBy(ctx context.Context, where sq.Eq) (*domain.ProcessingRun, error) {
	stmt, args, err := sq.Select(runColumns...).From("processing_runs").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return scanRun(s.store.db.QueryRowContext(ctx, stmt, args...))
}

// MarkRunning moves a pending run to running.
func (s *runStore) MarkRunning(ctx context.Context, id string) (*domain.ProcessingRun, error) {
	_, err := s.store.db.ExecContext(ctx, `
		UPDATE processing_runs SET status = ? WHERE run_id = ? AND status = ?
	`, string(domain.RunRunning), id, string(domain.RunPending))
	if err != nil {
		return nil, fmt.Errorf("marking run running: %w", err)
	}

	run, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if run.Status.IsTerminal() {
		return nil, domain.ErrAlreadyTerminal
	}
	return run, nil
}

// Finish moves a non-terminal run to a terminal status with one conditional
// update, stamping the commit order used by LatestSucceededVersion.
func (s *runStore) Finish(
	ctx context.Context,
	id string,
	status domain.RunStatus,
	metrics domain.RunMetrics,
	at time.Time,
) (*domain.ProcessingRun, error) {
	if !status.IsTerminal() {
		return nil, domain.ErrInvalidInput
	}

	metricsJSON, err := toJSON(metrics)
	if err != nil {
		return nil, err
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE processing_runs SET
			status = ?,
			metrics = ?,
			finished_at = ?,
			finish_seq = (SELECT COALESCE(MAX(finish_seq), 0) + 1 FROM processing_runs)
		WHERE run_id = ? AND status IN (?, ?)
	`, string(status), metricsJSON, at.UTC(), id, string(domain.RunPending), string(domain.RunRunning))
	if err != nil {
		return nil, fmt.Errorf("finishing run: %w", err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return nil, err
	}

	run, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrAlreadyTerminal
	}
	return run, nil
}

// LatestFor returns the most recently started run of a document version.
func (s *runStore) LatestFor(ctx context.Context, documentID, pipelineVersion string) (*domain.ProcessingRun, error) {
	stmt, args, err := sq.Select(runColumns...).From("processing_runs").
		Where(sq.Eq{"document_id": documentID, "pipeline_version": pipelineVersion}).
		OrderBy("rowid DESC").
		Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return scanRun(s.store.db.QueryRowContext(ctx, stmt, args...))
}

// LatestSucceededVersion returns the version of the last committed success.
func (s *runStore) LatestSucceededVersion(ctx context.Context, documentID string) (string, error) {
	var version string
	err := s.store.db.QueryRowContext(ctx, `
		SELECT pipeline_version FROM processing_runs
		WHERE document_id = ? AND status = ?
		ORDER BY finish_seq DESC
		LIMIT 1
	`, documentID, string(domain.RunSucceeded)).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading latest version: %w", err)
	}
	return version, nil
}

// List returns runs matching filter, most recently started first.
func (s *runStore) List(ctx context.Context, filter domain.RunFilter) ([]domain.ProcessingRun, error) {
	query := sq.Select(runColumns...).From("processing_runs").OrderBy("rowid DESC")
	if filter.CorrelationID != "" {
		query = query.Where(sq.Eq{"correlation_id": filter.CorrelationID})
	}
	if filter.PipelineVersion != "" {
		query = query.Where(sq.Eq{"pipeline_version": filter.PipelineVersion})
	}
	if filter.DocumentID != "" {
		query = query.Where(sq.Eq{"document_id": filter.DocumentID})
	}
	if filter.Status != "" {
		query = query.Where(sq.Eq{"status": string(filter.Status)})
	}
	return selectRows(ctx, s.store.db, limitQuery(query, filter.Limit), scanRun)
}

// Delete removes a run; its errors go with it through ON DELETE CASCADE.
func (s *runStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM processing_runs WHERE run_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// errorStore implements driven.ErrorStore.
type errorStore struct {
	store *Store
}

var _ driven.ErrorStore = (*errorStore)(nil)

var errorColumns = []string{
	"error_id", "run_id", "correlation_id", "pipeline_version", "document_id",
	"step", "error_code", "message", "details", "created_at",
}

// Append records an error against an existing run.
func (s *errorStore) Append(ctx context.Context, procErr *domain.ProcessingError) error {
	details, err := toJSON(procErr.Details)
	if err != nil {
		return err
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO processing_errors (error_id, run_id, correlation_id, pipeline_version, document_id,
			step, error_code, message, details, created_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM processing_runs WHERE run_id = ?)
	`, procErr.ID, procErr.RunID, procErr.CorrelationID, procErr.PipelineVersion,
		nullString(procErr.DocumentID), procErr.Step, nullString(procErr.Code), procErr.Message,
		details, procErr.CreatedAt.UTC(), procErr.RunID)
	if err != nil {
		return fmt.Errorf("recording error: %w", err)
	}
	return requireAffected(res)
}

// ListByRun returns the errors of a run, oldest first.
func (s *errorStore) ListByRun(ctx context.Context, runID string) ([]domain.ProcessingError, error) {
	query := sq.Select(errorColumns...).From("processing_errors").
		Where(sq.Eq{"run_id": runID}).
		OrderBy("rowid")
	return selectRows(ctx, s.store.db, query, scanError)
}

// ListByCorrelation returns errors sharing a correlation ID, oldest first.
func (s *errorStore) ListByCorrelation(
	ctx context.Context,
	correlationID string,
	limit int,
) ([]domain.ProcessingError, error) {
	query := sq.Select(errorColumns...).From("processing_errors").
		Where(sq.Eq{"correlation_id": correlationID}).
		OrderBy("rowid")
	return selectRows(ctx, s.store.db, limitQuery(query, limit), scanError)
}

func scanRun(row scanner) (*domain.ProcessingRun, error) {
	var r domain.ProcessingRun
	var status string
	var documentID, metrics sql.NullString
	var startedAt, finishedAt sql.NullTime
	err := row.Scan(&r.ID, &r.CorrelationID, &r.PipelineVersion, &documentID, &r.IdempotencyKey,
		&status, &metrics, &startedAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	r.DocumentID = documentID.String
	r.Status = domain.RunStatus(status)
	if err := fromJSON(metrics, &r.Metrics); err != nil {
		return nil, err
	}
	r.StartedAt = timeOf(startedAt)
	r.FinishedAt = timeOf(finishedAt)
	return &r, nil
}

func scanError(row scanner) (*domain.ProcessingError, error) {
	var e domain.ProcessingError
	var documentID, code, details sql.NullString
	var createdAt sql.NullTime
	if err := row.Scan(&e.ID, &e.RunID, &e.CorrelationID, &e.PipelineVersion, &documentID,
		&e.Step, &code, &e.Message, &details, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning error: %w", err)
	}
	e.DocumentID = documentID.String
	e.Code = code.String
	if err := fromJSON(details, &e.Details); err != nil {
		return nil, err
	}
	e.CreatedAt = timeOf(createdAt)
	return &e, nil
}
