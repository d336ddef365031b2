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

// artifactStore implements driven.ArtifactStore.
type artifactStore struct {
	store *Store
}

var _ driven.ArtifactStore = (*artifactStore)(nil)

var chunkColumns = []string{
	"chunk_id", "document_id", "pipeline_version", "chunk_index", "text_uri", "sha256",
	"token_count", "section_path", "page_start", "page_end", "locator", "created_at", "updated_at",
}

// PutExtraction upserts an extraction, keeping its original creation time.
func (s *artifactStore) PutExtraction(ctx context.Context, extraction domain.Extraction) error {
	metrics, err := toJSON(extraction.Metrics)
	if err != nil {
		return err
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO extractions (document_id, pipeline_version, extractor, extracted_uri, metrics,
			created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM documents WHERE document_id = ?)
		ON CONFLICT(document_id, pipeline_version, extractor) DO UPDATE SET
			extracted_uri = excluded.extracted_uri,
			metrics = excluded.metrics,
			updated_at = excluded.updated_at
	`, extraction.DocumentID, extraction.PipelineVersion, extraction.Extractor,
		nullString(extraction.ExtractedURI), metrics,
		extraction.CreatedAt.UTC(), extraction.UpdatedAt.UTC(), extraction.DocumentID)
	if err != nil {
		return fmt.Errorf("saving extraction: %w", err)
	}
	return requireAffected(res)
}

// GetExtraction retrieves one extraction.
func (s *artifactStore) GetExtraction(
	ctx context.Context,
	documentID, pipelineVersion, extractor string,
) (*domain.Extraction, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT document_id, pipeline_version, extractor, extracted_uri, metrics, created_at, updated_at
		FROM extractions WHERE document_id = ? AND pipeline_version = ? AND extractor = ?
	`, documentID, pipelineVersion, extractor)
	return scanExtraction(row)
}

// ListExtractions returns every extraction of a document.
func (s *artifactStore) ListExtractions(ctx context.Context, documentID string) ([]domain.Extraction, error) {
	query := sq.Select("document_id", "pipeline_version", "extractor", "extracted_uri", "metrics",
		"created_at", "updated_at").
		From("extractions").
		Where(sq.Eq{"document_id": documentID}).
		OrderBy("pipeline_version", "extractor")
	return selectRows(ctx, s.store.db, query, scanExtraction)
}

// ReplaceChunks swaps the chunk set of a document version in one
// transaction. Surviving chunk IDs are updated in place so their
// enrichments are kept; removed chunks cascade their enrichments.
func (s *artifactStore) ReplaceChunks(
	ctx context.Context,
	documentID, pipelineVersion string,
	chunks []domain.Chunk,
) error {
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		ids[i] = c.ID
	}

	return s.store.withTx(ctx, func(tx *sql.Tx) error {
		// Park current indexes below zero so new indexes never collide
		// with the (document, version, index) uniqueness constraint.
		if _, err := tx.ExecContext(ctx, `
			UPDATE chunks SET chunk_index = -(chunk_index + 1)
			WHERE document_id = ? AND pipeline_version = ?
		`, documentID, pipelineVersion); err != nil {
			return fmt.Errorf("parking chunk indexes: %w", err)
		}

		found, err := exists(ctx, tx, "SELECT 1 FROM documents WHERE document_id = ?", documentID)
		if err != nil {
			return fmt.Errorf("checking document: %w", err)
		}
		if !found {
			return domain.ErrNotFound
		}

		if len(ids) > 0 {
			stmt, args, err := sq.Select("1").From("chunks").
				Where(sq.Eq{"chunk_id": ids}).
				Where(sq.Or{
					sq.NotEq{"document_id": documentID},
					sq.NotEq{"pipeline_version": pipelineVersion},
				}).
				Limit(1).ToSql()
			if err != nil {
				return fmt.Errorf("building query: %w", err)
			}
			foreign, err := exists(ctx, tx, stmt, args...)
			if err != nil {
				return fmt.Errorf("checking chunk ownership: %w", err)
			}
			if foreign {
				return fmt.Errorf("%w: chunk id owned by another document version", domain.ErrConflict)
			}
		}

		del := sq.Delete("chunks").Where(sq.Eq{
			"document_id":      documentID,
			"pipeline_version": pipelineVersion,
		})
		if len(ids) > 0 {
			del = del.Where(sq.NotEq{"chunk_id": ids})
		}
		stmt, args, err := del.ToSql()
		if err != nil {
			return fmt.Errorf("building delete: %w", err)
		}
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("deleting replaced chunks: %w", err)
		}

		insert, err := tx.PrepareContext(ctx, `
			INSERT INTO chunks (chunk_id, document_id, pipeline_version, chunk_index, text_uri, sha256,
				token_count, section_path, page_start, page_end, locator, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(chunk_id) DO UPDATE SET
				chunk_index = excluded.chunk_index,
				text_uri = excluded.text_uri,
				sha256 = excluded.sha256,
				token_count = excluded.token_count,
				section_path = excluded.section_path,
				page_start = excluded.page_start,
				page_end = excluded.page_end,
				locator = excluded.locator,
				updated_at = excluded.updated_at
		`)
		if err != nil {
			return fmt.Errorf("preparing statement: %w", err)
		}
		defer insert.Close()

		for _, c := range chunks {
			if _, err := insert.ExecContext(ctx, c.ID, documentID, pipelineVersion, c.Index,
				nullString(c.TextURI), nullString(c.SHA256), c.TokenCount, nullString(c.SectionPath),
				c.PageStart, c.PageEnd, nullString(c.Locator), c.CreatedAt.UTC(), c.UpdatedAt.UTC()); err != nil {
				return fmt.Errorf("saving chunk %d: %w", c.Index, err)
			}
		}
		return nil
	})
}

// ListChunks returns the chunks of a document version ordered by index.
func (s *artifactStore) ListChunks(ctx context.Context, documentID, pipelineVersion string) ([]domain.Chunk, error) {
	query := sq.Select(chunkColumns...).From("chunks").
		Where(sq.Eq{"document_id": documentID, "pipeline_version": pipelineVersion}).
		OrderBy("chunk_index")
	return selectRows(ctx, s.store.db, query, scanChunk)
}

// GetChunk retrieves a chunk by ID.
func (s *artifactStore) GetChunk(ctx context.Context, chunkID string) (*domain.Chunk, error) {
	stmt, args, err := sq.Select(chunkColumns...).From("chunks").Where(sq.Eq{"chunk_id": chunkID}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return scanChunk(s.store.db.QueryRowContext(ctx, stmt, args...))
}

// PutProvenance upserts a provenance record.
func (s *artifactStore) PutProvenance(ctx context.Context, provenance domain.Provenance) error {
	attributes, err := toJSON(provenance.Attributes)
	if err != nil {
		return err
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO provenance (document_id, pipeline_version, source_uri, label, license,
			retrieved_at, attributes, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM documents WHERE document_id = ?)
		ON CONFLICT(document_id, pipeline_version, source_uri) DO UPDATE SET
			label = excluded.label,
			license = excluded.license,
			retrieved_at = excluded.retrieved_at,
			attributes = excluded.attributes,
			updated_at = excluded.updated_at
	`, provenance.DocumentID, provenance.PipelineVersion, provenance.SourceURI,
		nullString(provenance.Label), nullString(provenance.License), nullTime(provenance.RetrievedAt),
		attributes, provenance.UpdatedAt.UTC(), provenance.DocumentID)
	if err != nil {
		return fmt.Errorf("saving provenance: %w", err)
	}
	return requireAffected(res)
}

// ListProvenance returns the provenance records of a document version.
func (s *artifactStore) ListProvenance(
	ctx context.Context,
	documentID, pipelineVersion string,
) ([]domain.Provenance, error) {
	query := sq.Select("document_id", "pipeline_version", "source_uri", "label", "license",
		"retrieved_at", "attributes", "updated_at").
		From("provenance").
		Where(sq.Eq{"document_id": documentID, "pipeline_version": pipelineVersion}).
		OrderBy("source_uri")
	return selectRows(ctx, s.store.db, query, func(row scanner) (*domain.Provenance, error) {
		var p domain.Provenance
		var label, license, attributes sql.NullString
		var retrievedAt, updatedAt sql.NullTime
		if err := row.Scan(&p.DocumentID, &p.PipelineVersion, &p.SourceURI, &label, &license,
			&retrievedAt, &attributes, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning provenance: %w", err)
		}
		p.Label = label.String
		p.License = license.String
		p.RetrievedAt = timeOf(retrievedAt)
		p.UpdatedAt = timeOf(updatedAt)
		if err := fromJSON(attributes, &p.Attributes); err != nil {
			return nil, err
		}
		return &p, nil
	})
}

func scanExtraction(row scanner) (*domain.Extraction, error) {
	var e domain.Extraction
	var uri, metrics sql.NullString
	var createdAt, updatedAt sql.NullTime
	err := row.Scan(&e.DocumentID, &e.PipelineVersion, &e.Extractor, &uri, &metrics, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning extraction: %w", err)
	}
	e.ExtractedURI = uri.String
	if err := fromJSON(metrics, &e.Metrics); err != nil {
		return nil, err
	}
	e.CreatedAt = timeOf(createdAt)
	e.UpdatedAt = timeOf(updatedAt)
	return &e, nil
}

func scanChunk(row scanner) (*domain.Chunk, error) {
	var c domain.Chunk
	var textURI, sha, section, locator sql.NullString
	var createdAt, updatedAt sql.NullTime
	err := row.Scan(&c.ID, &c.DocumentID, &c.PipelineVersion, &c.Index, &textURI, &sha,
		&c.TokenCount, &section, &c.PageStart, &c.PageEnd, &locator, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	c.TextURI = textURI.String
	c.SHA256 = sha.String
	c.SectionPath = section.String
	c.Locator = locator.String
	c.CreatedAt = timeOf(createdAt)
	c.UpdatedAt = timeOf(updatedAt)
	return &c, nil
}
