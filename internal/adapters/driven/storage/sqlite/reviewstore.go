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

// reviewStore implements driven.ReviewStore.
type reviewStore struct {
	store *Store
}

var _ driven.ReviewStore = (*reviewStore)(nil)

var reviewColumns = []string{
	"review_id", "document_id", "pipeline_version", "reason", "status", "created_at", "resolved_at",
}

// Enqueue appends an entry for an existing document.
func (s *reviewStore) Enqueue(ctx context.Context, entry *domain.ReviewEntry) error {
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO review_queue (review_id, document_id, pipeline_version, reason, status, created_at)
		SELECT ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM documents WHERE document_id = ?)
		ON CONFLICT(review_id) DO NOTHING
	`, entry.ID, entry.DocumentID, entry.PipelineVersion, entry.Reason, string(entry.Status),
		entry.CreatedAt.UTC(), entry.DocumentID)
	if err != nil {
		return fmt.Errorf("enqueueing review: %w", err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	found, err := exists(ctx, s.store.db, "SELECT 1 FROM review_queue WHERE review_id = ?", entry.ID)
	if err != nil {
		return fmt.Errorf("checking review: %w", err)
	}
	if found {
		return domain.ErrConflict
	}
	return domain.ErrNotFound
}

// Get retrieves an entry by ID.
func (s *reviewStore) Get(ctx context.Context, id string) (*domain.ReviewEntry, error) {
	stmt, args, err := sq.Select(reviewColumns...).From("review_queue").
		Where(sq.Eq{"review_id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return scanReview(s.store.db.QueryRowContext(ctx, stmt, args...))
}

// List returns entries matching filter, oldest first.
func (s *reviewStore) List(ctx context.Context, filter domain.ReviewFilter) ([]domain.ReviewEntry, error) {
	query := sq.Select(reviewColumns...).From("review_queue").OrderBy("rowid")
	if filter.DocumentID != "" {
		query = query.Where(sq.Eq{"document_id": filter.DocumentID})
	}
	if filter.Status != "" {
		query = query.Where(sq.Eq{"status": string(filter.Status)})
	}
	return selectRows(ctx, s.store.db, limitQuery(query, filter.Limit), scanReview)
}

// Resolve closes an open entry.
func (s *reviewStore) Resolve(ctx context.Context, id string, at time.Time) (*domain.ReviewEntry, error) {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE review_queue SET status = ?, resolved_at = ?
		WHERE review_id = ? AND status = ?
	`, string(domain.ReviewResolved), at.UTC(), id, string(domain.ReviewOpen))
	if err != nil {
		return nil, fmt.Errorf("resolving review: %w", err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return nil, err
	}

	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, domain.ErrAlreadyResolved
	}
	return entry, nil
}

func scanReview(row scanner) (*domain.ReviewEntry, error) {
	var e domain.ReviewEntry
	var status string
	var createdAt, resolvedAt sql.NullTime
	err := row.Scan(&e.ID, &e.DocumentID, &e.PipelineVersion, &e.Reason, &status, &createdAt, &resolvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning review: %w", err)
	}
	e.Status = domain.ReviewStatus(status)
	e.CreatedAt = timeOf(createdAt)
	e.ResolvedAt = timeOf(resolvedAt)
	return &e, nil
}
