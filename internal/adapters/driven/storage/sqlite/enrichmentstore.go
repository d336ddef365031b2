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

// enrichmentStore implements driven.EnrichmentStore.
type enrichmentStore struct {
	store *Store
}

var _ driven.EnrichmentStore = (*enrichmentStore)(nil)

var enrichmentColumns = []string{
	"chunk_id", "enrichment_version", "model", "chunk_sha256", "input_sha256", "confidence",
	"accepted", "output", "error", "rejected_at", "applied_at", "created_at", "updated_at",
}

// Propose upserts an unaccepted enrichment unless the version was rejected.
// Re-proposing resets acceptance and keeps the original creation time.
func (s *enrichmentStore) Propose(ctx context.Context, e *domain.ChunkEnrichment) error {
	output, err := toJSON(e.Output)
	if err != nil {
		return err
	}

	var confidence sql.NullFloat64
	if e.Confidence != nil {
		confidence = sql.NullFloat64{Float64: *e.Confidence, Valid: true}
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO chunk_enrichments (chunk_id, enrichment_version, model, chunk_sha256, input_sha256,
			confidence, accepted, output, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, 0, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM chunks WHERE chunk_id = ?)
		ON CONFLICT(chunk_id, enrichment_version) DO UPDATE SET
			model = excluded.model,
			chunk_sha256 = excluded.chunk_sha256,
			input_sha256 = excluded.input_sha256,
			confidence = excluded.confidence,
			accepted = 0,
			output = excluded.output,
			error = NULL,
			applied_at = NULL,
			updated_at = excluded.updated_at
		WHERE chunk_enrichments.rejected_at IS NULL
	`, e.ChunkID, e.EnrichmentVersion, e.Model, e.ChunkSHA256, e.InputSHA256, confidence,
		output, e.CreatedAt.UTC(), e.UpdatedAt.UTC(), e.ChunkID)
	if err != nil {
		return fmt.Errorf("proposing enrichment: %w", err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// Nothing written: either the chunk is gone or the version was rejected.
	if _, err := s.Get(ctx, e.ChunkID, e.EnrichmentVersion); err != nil {
		return err
	}
	return domain.ErrEnrichmentRejected
}

// Get retrieves one enrichment.
func (s *enrichmentStore) Get(ctx context.Context, chunkID, enrichmentVersion string) (*domain.ChunkEnrichment, error) {
	stmt, args, err := sq.Select(enrichmentColumns...).From("chunk_enrichments").
		Where(sq.Eq{"chunk_id": chunkID, "enrichment_version": enrichmentVersion}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}

	var row enrichmentRow
	err = s.store.db.QueryRowContext(ctx, stmt, args...).Scan(row.dest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning enrichment: %w", err)
	}
	return row.enrichment()
}

// ListForChunk returns every enrichment version of a chunk.
func (s *enrichmentStore) ListForChunk(ctx context.Context, chunkID string) ([]domain.ChunkEnrichment, error) {
	query := sq.Select(enrichmentColumns...).From("chunk_enrichments").
		Where(sq.Eq{"chunk_id": chunkID}).
		OrderBy("enrichment_version")
	return selectRows(ctx, s.store.db, query, func(sc scanner) (*domain.ChunkEnrichment, error) {
		var row enrichmentRow
		if err := sc.Scan(row.dest()...); err != nil {
			return nil, fmt.Errorf("scanning enrichment: %w", err)
		}
		return row.enrichment()
	})
}

// Accept accepts an enrichment whose hash still matches the chunk. The hash
// comparison happens inside the update so a concurrent re-chunk cannot slip
// between the check and the write.
func (s *enrichmentStore) Accept(
	ctx context.Context,
	chunkID, enrichmentVersion string,
	at time.Time,
) (*domain.ChunkEnrichment, error) {
	_, err := s.store.db.ExecContext(ctx, `
		UPDATE chunk_enrichments SET accepted = 1, applied_at = ?, updated_at = ?
		WHERE chunk_id = ? AND enrichment_version = ?
			AND accepted = 0
			AND rejected_at IS NULL
			AND chunk_sha256 <> ''
			AND chunk_sha256 = (SELECT sha256 FROM chunks WHERE chunk_id = ?)
	`, at.UTC(), at.UTC(), chunkID, enrichmentVersion, chunkID)
	if err != nil {
		return nil, fmt.Errorf("accepting enrichment: %w", err)
	}

	e, err := s.Get(ctx, chunkID, enrichmentVersion)
	if err != nil {
		return nil, err
	}
	if e.IsRejected() {
		return nil, domain.ErrEnrichmentRejected
	}

	var current sql.NullString
	err = s.store.db.QueryRowContext(ctx, "SELECT sha256 FROM chunks WHERE chunk_id = ?", chunkID).Scan(&current)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reading chunk hash: %w", err)
	}
	if e.IsStale(current.String) {
		return nil, domain.ErrStaleEnrichment
	}
	return e, nil
}

// Reject permanently rejects an unaccepted enrichment. Rejecting twice keeps
// the first reason.
func (s *enrichmentStore) Reject(
	ctx context.Context,
	chunkID, enrichmentVersion, reason string,
	at time.Time,
) (*domain.ChunkEnrichment, error) {
	_, err := s.store.db.ExecContext(ctx, `
		UPDATE chunk_enrichments SET error = ?, rejected_at = ?, updated_at = ?
		WHERE chunk_id = ? AND enrichment_version = ? AND accepted = 0 AND rejected_at IS NULL
	`, reason, at.UTC(), at.UTC(), chunkID, enrichmentVersion)
	if err != nil {
		return nil, fmt.Errorf("rejecting enrichment: %w", err)
	}

	e, err := s.Get(ctx, chunkID, enrichmentVersion)
	if err != nil {
		return nil, err
	}
	if e.Accepted {
		return nil, domain.ErrConflict
	}
	return e, nil
}

// Candidates returns chunks of indexed documents needing enrichment,
// ordered by document and chunk index.
func (s *enrichmentStore) Candidates(
	ctx context.Context,
	filter domain.CandidateFilter,
) ([]domain.EnrichmentCandidate, error) {
	columns := []string{
		"c.document_id", "c.pipeline_version", "c.chunk_id", "c.chunk_index", "c.sha256", "c.text_uri",
	}
	for _, col := range enrichmentColumns {
		columns = append(columns, "e."+col)
	}

	query := sq.Select(columns...).
		From("chunks c").
		Join("documents d ON d.document_id = c.document_id").
		LeftJoin("chunk_enrichments e ON e.chunk_id = c.chunk_id AND e.enrichment_version = ?",
			filter.EnrichmentVersion).
		Where(sq.Eq{"c.pipeline_version": filter.PipelineVersion, "d.status": string(domain.StatusIndexed)}).
		OrderBy("c.document_id", "c.chunk_index")
	if filter.Source != "" {
		query = query.Where(sq.Eq{"d.source": filter.Source})
	}

	rows, err := selectRows(ctx, s.store.db, query, scanCandidate)
	if err != nil {
		return nil, err
	}

	var out []domain.EnrichmentCandidate
	for _, c := range rows {
		if !domain.NeedsEnrichment(c.ChunkSHA256, c.Existing, filter.IncludeRejected) {
			continue
		}
		out = append(out, c)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func scanCandidate(sc scanner) (*domain.EnrichmentCandidate, error) {
	var c domain.EnrichmentCandidate
	var sha, textURI sql.NullString
	var row enrichmentRow
	dest := append([]any{&c.DocumentID, &c.PipelineVersion, &c.ChunkID, &c.ChunkIndex, &sha, &textURI},
		row.dest()...)
	if err := sc.Scan(dest...); err != nil {
		return nil, fmt.Errorf("scanning candidate: %w", err)
	}
	c.ChunkSHA256 = sha.String
	c.TextURI = textURI.String

	if row.chunkID.Valid {
		existing, err := row.enrichment()
		if err != nil {
			return nil, err
		}
		c.Existing = existing
	}
	return &c, nil
}

// enrichmentRow holds a chunk_enrichments row where every column may be
// NULL, as it is on the outer side of a join.
type enrichmentRow struct {
	chunkID    sql.NullString
	version    sql.NullString
	model      sql.NullString
	chunkSHA   sql.NullString
	inputSHA   sql.NullString
	confidence sql.NullFloat64
	accepted   sql.NullBool
	output     sql.NullString
	errMsg     sql.NullString
	rejectedAt sql.NullTime
	appliedAt  sql.NullTime
	createdAt  sql.NullTime
	updatedAt  sql.NullTime
}

func (r *enrichmentRow) dest() []any {
	return []any{
		&r.chunkID, &r.version, &r.model, &r.chunkSHA, &r.inputSHA, &r.confidence,
		&r.accepted, &r.output, &r.errMsg, &r.rejectedAt, &r.appliedAt, &r.createdAt, &r.updatedAt,
	}
}

func (r *enrichmentRow) enrichment() (*domain.ChunkEnrichment, error) {
	e := &domain.ChunkEnrichment{
		ChunkID:           r.chunkID.String,
		EnrichmentVersion: r.version.String,
		Model:             r.model.String,
		ChunkSHA256:       r.chunkSHA.String,
		InputSHA256:       r.inputSHA.String,
		Accepted:          r.accepted.Bool,
		Error:             r.errMsg.String,
		RejectedAt:        timeOf(r.rejectedAt),
		AppliedAt:         timeOf(r.appliedAt),
		CreatedAt:         timeOf(r.createdAt),
		UpdatedAt:         timeOf(r.updatedAt),
	}
	if r.confidence.Valid {
		c := r.confidence.Float64
		e.Confidence = &c
	}
	if err := fromJSON(r.output, &e.Output); err != nil {
		return nil, err
	}
	return e, nil
}
