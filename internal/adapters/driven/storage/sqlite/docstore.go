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

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

var documentColumns = []string{
	"document_id", "source", "source_uri", "status", "previous_status",
	"canonical_url", "title", "author", "published_year", "language", "content_type", "is_scanned",
	"content_fingerprint", "canonical_sha256", "canonical_etag", "categories", "source_dataset",
	"created_at", "updated_at",
}

// Register inserts doc unless its ID exists, then returns the stored row.
func (s *documentStore) Register(ctx context.Context, doc *domain.Document) (*domain.Document, bool, error) {
	categories, err := toJSON(doc.Categories)
	if err != nil {
		return nil, false, err
	}

	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO documents (document_id, source, source_uri, status, previous_status,
			canonical_url, title, author, published_year, language, content_type, is_scanned,
			content_fingerprint, canonical_sha256, canonical_etag, categories, source_dataset,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO NOTHING
	`, doc.ID, doc.Source, doc.SourceURI, string(doc.Status), nullString(string(doc.PreviousStatus)),
		nullString(doc.CanonicalURL), nullString(doc.Title), nullString(doc.Author),
		doc.PublishedYear, nullString(doc.Language), nullString(doc.ContentType), nullBool(doc.IsScanned),
		nullString(doc.ContentFingerprint), nullString(doc.CanonicalSHA256), nullString(doc.CanonicalETag),
		categories, nullString(doc.SourceDataset), doc.CreatedAt.UTC(), doc.UpdatedAt.UTC())
	if err != nil {
		return nil, false, fmt.Errorf("registering document: %w", err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return nil, false, err
	}

	stored, err := s.Get(ctx, doc.ID)
	if err != nil {
		return nil, false, err
	}
	return stored, n == 1, nil
}

// Get retrieves a document by ID.
func (s *documentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	stmt, args, err := sq.Select(documentColumns...).From("documents").
		Where(sq.Eq{"document_id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("building query: %w", err)
	}
	return scanDocument(s.store.db.QueryRowContext(ctx, stmt, args...))
}

// List returns documents matching filter, oldest first.
func (s *documentStore) List(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	query := sq.Select(documentColumns...).From("documents").OrderBy("rowid")
	if filter.Source != "" {
		query = query.Where(sq.Eq{"source": filter.Source})
	}
	if filter.Status != "" {
		query = query.Where(sq.Eq{"status": string(filter.Status)})
	}
	return selectRows(ctx, s.store.db, limitQuery(query, filter.Limit), scanDocument)
}

// CompareAndSetStatus moves a document from expected to next in one
// conditional update.
func (s *documentStore) CompareAndSetStatus(
	ctx context.Context,
	id string,
	expected, next, previous domain.DocumentStatus,
	at time.Time,
) error {
	res, err := s.store.db.ExecContext(ctx, `
		UPDATE documents SET status = ?, previous_status = ?, updated_at = ?
		WHERE document_id = ? AND status = ?
	`, string(next), nullString(string(previous)), at.UTC(), id, string(expected))
	if err != nil {
		return fmt.Errorf("updating document status: %w", err)
	}

	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	found, err := exists(ctx, s.store.db, "SELECT 1 FROM documents WHERE document_id = ?", id)
	if err != nil {
		return fmt.Errorf("checking document: %w", err)
	}
	if !found {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

// UpdateMetadata replaces the descriptive fields of a document.
func (s *documentStore) UpdateMetadata(
	ctx context.Context,
	id string,
	meta domain.DocumentMetadata,
	at time.Time,
) error {
	categories, err := toJSON(meta.Categories)
	if err != nil {
		return err
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE documents SET
			canonical_url = ?, title = ?, author = ?, published_year = ?, language = ?,
			content_type = ?, is_scanned = ?, content_fingerprint = ?, canonical_sha256 = ?,
			canonical_etag = ?, categories = ?, source_dataset = ?, updated_at = ?
		WHERE document_id = ?
	`, nullString(meta.CanonicalURL), nullString(meta.Title), nullString(meta.Author), meta.PublishedYear,
		nullString(meta.Language), nullString(meta.ContentType), nullBool(meta.IsScanned),
		nullString(meta.ContentFingerprint), nullString(meta.CanonicalSHA256), nullString(meta.CanonicalETag),
		categories, nullString(meta.SourceDataset), at.UTC(), id)
	if err != nil {
		return fmt.Errorf("updating document metadata: %w", err)
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

// Delete removes a document. Owned rows go with it through ON DELETE
// CASCADE; runs keep existing with document_id set to NULL.
func (s *documentStore) Delete(ctx context.Context, id string) error {
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM documents WHERE document_id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
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

// PutFile upserts a file variant.
func (s *documentStore) PutFile(ctx context.Context, file domain.DocumentFile) error {
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO document_files (document_id, variant, storage_uri, sha256, bytes, mime_type, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM documents WHERE document_id = ?)
		ON CONFLICT(document_id, variant) DO UPDATE SET
			storage_uri = excluded.storage_uri,
			sha256 = excluded.sha256,
			bytes = excluded.bytes,
			mime_type = excluded.mime_type,
			updated_at = excluded.updated_at
	`, file.DocumentID, file.Variant, file.StorageURI, nullString(file.SHA256), file.Bytes,
		nullString(file.MimeType), file.UpdatedAt.UTC(), file.DocumentID)
	if err != nil {
		return fmt.Errorf("saving document file: %w", err)
	}
	return requireAffected(res)
}

// GetFile retrieves one file variant.
func (s *documentStore) GetFile(ctx context.Context, documentID, variant string) (*domain.DocumentFile, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT document_id, variant, storage_uri, sha256, bytes, mime_type, updated_at
		FROM document_files WHERE document_id = ? AND variant = ?
	`, documentID, variant)
	return scanFile(row)
}

// ListFiles returns the file variants of a document ordered by variant.
func (s *documentStore) ListFiles(ctx context.Context, documentID string) ([]domain.DocumentFile, error) {
	query := sq.Select("document_id", "variant", "storage_uri", "sha256", "bytes", "mime_type", "updated_at").
		From("document_files").
		Where(sq.Eq{"document_id": documentID}).
		OrderBy("variant")
	return selectRows(ctx, s.store.db, query, scanFile)
}

// PutLink upserts a link.
func (s *documentStore) PutLink(ctx context.Context, link domain.DocumentLink) error {
	res, err := s.store.db.ExecContext(ctx, `
		INSERT INTO document_links (document_id, link_type, url, label)
		SELECT ?, ?, ?, ?
		WHERE EXISTS (SELECT 1 FROM documents WHERE document_id = ?)
		ON CONFLICT(document_id, link_type, url) DO UPDATE SET label = excluded.label
	`, link.DocumentID, link.LinkType, link.URL, nullString(link.Label), link.DocumentID)
	if err != nil {
		return fmt.Errorf("saving document link: %w", err)
	}
	return requireAffected(res)
}

// ListLinks returns the links of a document ordered by type and URL.
func (s *documentStore) ListLinks(ctx context.Context, documentID string) ([]domain.DocumentLink, error) {
	query := sq.Select("document_id", "link_type", "url", "label").
		From("document_links").
		Where(sq.Eq{"document_id": documentID}).
		OrderBy("link_type", "url")
	return selectRows(ctx, s.store.db, query, func(row scanner) (*domain.DocumentLink, error) {
		var link domain.DocumentLink
		var label sql.NullString
		if err := row.Scan(&link.DocumentID, &link.LinkType, &link.URL, &label); err != nil {
			return nil, fmt.Errorf("scanning document link: %w", err)
		}
		link.Label = label.String
		return &link, nil
	})
}

// requireAffected maps a conditional insert that wrote nothing to
// ErrNotFound: its parent row does not exist.
func requireAffected(res sql.Result) error {
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func scanDocument(row scanner) (*domain.Document, error) {
	var doc domain.Document
	var status string
	var previous, canonicalURL, title, author, language, contentType sql.NullString
	var fingerprint, canonicalSHA, canonicalETag, categories, dataset sql.NullString
	var year sql.NullInt64
	var scanned sql.NullBool
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(&doc.ID, &doc.Source, &doc.SourceURI, &status, &previous,
		&canonicalURL, &title, &author, &year, &language, &contentType, &scanned,
		&fingerprint, &canonicalSHA, &canonicalETag, &categories, &dataset,
		&createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Status = domain.DocumentStatus(status)
	doc.PreviousStatus = domain.DocumentStatus(previous.String)
	doc.CanonicalURL = canonicalURL.String
	doc.Title = title.String
	doc.Author = author.String
	doc.PublishedYear = int(year.Int64)
	doc.Language = language.String
	doc.ContentType = contentType.String
	if scanned.Valid {
		doc.IsScanned = &scanned.Bool
	}
	doc.ContentFingerprint = fingerprint.String
	doc.CanonicalSHA256 = canonicalSHA.String
	doc.CanonicalETag = canonicalETag.String
	if err := fromJSON(categories, &doc.Categories); err != nil {
		return nil, err
	}
	doc.SourceDataset = dataset.String
	doc.CreatedAt = timeOf(createdAt)
	doc.UpdatedAt = timeOf(updatedAt)
	return &doc, nil
}

func scanFile(row scanner) (*domain.DocumentFile, error) {
	var f domain.DocumentFile
	var sha, mime sql.NullString
	var updatedAt sql.NullTime
	err := row.Scan(&f.DocumentID, &f.Variant, &f.StorageURI, &sha, &f.Bytes, &mime, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning document file: %w", err)
	}
	f.SHA256 = sha.String
	f.MimeType = mime.String
	f.UpdatedAt = timeOf(updatedAt)
	return &f, nil
}
