package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driven"
)

// projectionStore implements driven.ProjectionStore.
type projectionStore struct {
	store *Store
}

var _ driven.ProjectionStore = (*projectionStore)(nil)

// Refresh fully replaces the projection of a document. Each refresh takes
// the next refresh_seq, which orders search results.
func (s *projectionStore) Refresh(ctx context.Context, p domain.SearchProjection) error {
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO search_projection (document_id, preview_text, search_text, updated_at, refresh_seq)
		SELECT ?, ?, ?, ?, (SELECT COALESCE(MAX(refresh_seq), 0) + 1 FROM search_projection)
		WHERE EXISTS (SELECT 1 FROM documents WHERE document_id = ?)
		ON CONFLICT(document_id) DO UPDATE SET
			preview_text = excluded.preview_text,
			search_text = excluded.search_text,
			updated_at = excluded.updated_at,
			refresh_seq = excluded.refresh_seq
	`, p.DocumentID, nullString(p.PreviewText), p.SearchText, p.UpdatedAt.UTC(), p.DocumentID)
	if err != nil {
		return fmt.Errorf("refreshing projection: %w", err)
	}
	return requireAffected(res)
}

// Get retrieves the projection of a document.
func (s *projectionStore) Get(ctx context.Context, documentID string) (*domain.SearchProjection, error) {
	var p domain.SearchProjection
	var preview sql.NullString
	var updatedAt sql.NullTime
	err := s.store.db.QueryRowContext(ctx, `
		SELECT document_id, preview_text, search_text, updated_at
		FROM search_projection WHERE document_id = ?
	`, documentID).Scan(&p.DocumentID, &preview, &p.SearchText, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning projection: %w", err)
	}
	p.PreviewText = preview.String
	p.UpdatedAt = timeOf(updatedAt)
	return &p, nil
}

// Search returns documents whose search text contains every term,
// most recently refreshed first. Terms match as plain substrings.
func (s *projectionStore) Search(ctx context.Context, terms []string, limit int) ([]domain.SearchHit, error) {
	query := sq.Select("p.document_id", "d.title", "p.preview_text", "p.updated_at").
		From("search_projection p").
		Join("documents d ON d.document_id = p.document_id").
		OrderBy("p.refresh_seq DESC")
	for _, t := range terms {
		query = query.Where(sq.Expr("instr(p.search_text, ?) > 0", t))
	}

	return selectRows(ctx, s.store.db, limitQuery(query, limit), func(row scanner) (*domain.SearchHit, error) {
		var h domain.SearchHit
		var title, preview sql.NullString
		var updatedAt sql.NullTime
		if err := row.Scan(&h.DocumentID, &title, &preview, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning search hit: %w", err)
		}
		h.Title = title.String
		h.PreviewText = preview.String
		h.UpdatedAt = timeOf(updatedAt)
		return &h, nil
	})
}
