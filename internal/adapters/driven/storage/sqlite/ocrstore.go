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

// ocrStore implements driven.OcrStore.
type ocrStore struct {
	store *Store
}

var _ driven.OcrStore = (*ocrStore)(nil)

var ocrRunColumns = []string{
	"ocr_run_id", "document_id", "pipeline_version", "engine", "status", "metrics",
	"created_at", "finished_at",
}

// CreateRun inserts a new OCR run for an existing document.
func (s *ocrStore) CreateRun(ctx context.Context, run *domain.OcrRun) error {
	metrics, err := toJSON(run.Metrics)
	if err != nil {
		return err
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO ocr_runs (ocr_run_id, document_id, pipeline_version, engine, status, metrics, created_at)
		SELECT ?, ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM documents WHERE document_id = ?)
		ON CONFLICT(ocr_run_id) DO NOTHING
	`, run.ID, run.DocumentID, run.PipelineVersion, run.Engine, string(run.Status), metrics,
		run.CreatedAt.UTC(), run.DocumentID)
	if err != nil {
		return fmt.Errorf("creating ocr run: %w", err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	found, err := exists(ctx, s.store.db, "SELECT 1 FROM ocr_runs WHERE ocr_run_id = ?", run.ID)
	if err != nil {
		return fmt.Errorf("checking ocr run: %w", err)
	}
	if found {
		return domain.ErrConflict
	}
	return domain.ErrNotFound
}

// GetRun retrieves an OCR run by ID.
func (s *ocrStore) GetRun(ctx context.Context, id string) (*domain.OcrRun, error) {
	return getOcrRun(ctx, s.store.db, id)
}

func getOcrRun(ctx context.Context, q queryer, id string) (*domain.OcrRun, error) {
	stmt, args, err := sq.Select(ocrRunColumns...).From("ocr_runs").
		Where(sq.Eq{"ocr_run_id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return scanOcrRun(q.QueryRowContext(ctx, stmt, args...))
}

// ListRuns returns the OCR runs of a document version, oldest first.
func (s *ocrStore) ListRuns(ctx context.Context, documentID, pipelineVersion string) ([]domain.OcrRun, error) {
	query := sq.Select(ocrRunColumns...).From("ocr_runs").
		Where(sq.Eq{"document_id": documentID}).
		OrderBy("rowid")
	if pipelineVersion != "" {
		query = query.Where(sq.Eq{"pipeline_version": pipelineVersion})
	}
	return selectRows(ctx, s.store.db, query, scanOcrRun)
}

// UpsertPage records a page result while the run is still open.
func (s *ocrStore) UpsertPage(ctx context.Context, page domain.OcrPage) error {
	quality, err := toJSON(page.Quality)
	if err != nil {
		return err
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO ocr_pages (ocr_run_id, page_number, consensus_uri, quality, updated_at)
		SELECT ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM ocr_runs WHERE ocr_run_id = ? AND status IN (?, ?))
		ON CONFLICT(ocr_run_id, page_number) DO UPDATE SET
			consensus_uri = excluded.consensus_uri,
			quality = excluded.quality,
			updated_at = excluded.updated_at
	`, page.RunID, page.PageNumber, nullString(page.ConsensusURI), quality, page.UpdatedAt.UTC(),
		page.RunID, string(domain.RunPending), string(domain.RunRunning))
	if err != nil {
		return fmt.Errorf("upserting ocr page: %w", err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if _, err := s.GetRun(ctx, page.RunID); err != nil {
		return err
	}
	return domain.ErrAlreadyTerminal
}

// ListPages returns the pages of an OCR run ordered by page number.
func (s *ocrStore) ListPages(ctx context.Context, runID string) ([]domain.OcrPage, error) {
	query := sq.Select("ocr_run_id", "page_number", "consensus_uri", "quality", "updated_at").
		From("ocr_pages").
		Where(sq.Eq{"ocr_run_id": runID}).
		OrderBy("page_number")
	return selectRows(ctx, s.store.db, query, func(row scanner) (*domain.OcrPage, error) {
		var p domain.OcrPage
		var uri, quality sql.NullString
		var updatedAt sql.NullTime
		if err := row.Scan(&p.RunID, &p.PageNumber, &uri, &quality, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning ocr page: %w", err)
		}
		p.ConsensusURI = uri.String
		if err := fromJSON(quality, &p.Quality); err != nil {
			return nil, err
		}
		p.UpdatedAt = timeOf(updatedAt)
		return &p, nil
	})
}

// FinishRun moves an open OCR run to a terminal status exactly once and
// merges metrics into the stored ones within the same transaction.
func (s *ocrStore) FinishRun(
	ctx context.Context,
	id string,
	status domain.RunStatus,
	metrics domain.OcrMetrics,
	at time.Time,
) (*domain.OcrRun, error) {
	if !status.IsTerminal() {
		return nil, domain.ErrInvalidInput
	}

	var finished *domain.OcrRun
	err := s.store.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE ocr_runs SET status = ?, finished_at = ?
			WHERE ocr_run_id = ? AND status IN (?, ?)
		`, string(status), at.UTC(), id, string(domain.RunPending), string(domain.RunRunning))
		if err != nil {
			return fmt.Errorf("finishing ocr run: %w", err)
		}

		n, err := rowsAffected(res)
		if err != nil {
			return err
		}

		run, err := getOcrRun(ctx, tx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrAlreadyTerminal
		}

		run.Metrics = run.Metrics.Merge(metrics)
		merged, err := toJSON(run.Metrics)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE ocr_runs SET metrics = ? WHERE ocr_run_id = ?", merged, id); err != nil {
			return fmt.Errorf("storing ocr metrics: %w", err)
		}

		finished = run
		return nil
	})
	if err != nil {
		return nil, err
	}
	return finished, nil
}

func scanOcrRun(row scanner) (*domain.OcrRun, error) {
	var r domain.OcrRun
	var status string
	var metrics sql.NullString
	var createdAt, finishedAt sql.NullTime
	err := row.Scan(&r.ID, &r.DocumentID, &r.PipelineVersion, &r.Engine, &status, &metrics,
		&createdAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning ocr run: %w", err)
	}
	r.Status = domain.RunStatus(status)
	if err := fromJSON(metrics, &r.Metrics); err != nil {
		return nil, err
	}
	r.CreatedAt = timeOf(createdAt)
	r.FinishedAt = timeOf(finishedAt)
	return &r, nil
}
