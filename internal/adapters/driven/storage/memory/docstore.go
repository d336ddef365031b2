package memory

import (
	"context"
	"sort"
	"time"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driven"
)

// documentStore implements driven.DocumentStore.
type documentStore struct {
	store *Store
}

var _ driven.DocumentStore = (*documentStore)(nil)

func copyDocument(doc domain.Document) *domain.Document {
	doc.Categories = cloneStrings(doc.Categories)
	if doc.IsScanned != nil {
		scanned := *doc.IsScanned
		doc.IsScanned = &scanned
	}
	return &doc
}

// Register inserts doc unless its ID exists.
func (s *documentStore) Register(_ context.Context, doc *domain.Document) (*domain.Document, bool, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if row, ok := s.store.documents[doc.ID]; ok {
		return copyDocument(row.doc), false, nil
	}

	s.store.documents[doc.ID] = &documentRow{doc: *copyDocument(*doc), seq: s.store.nextSeq()}
	return copyDocument(*doc), true, nil
}

// Get retrieves a document by ID.
func (s *documentStore) Get(_ context.Context, id string) (*domain.Document, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	row, ok := s.store.documents[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyDocument(row.doc), nil
}

// List returns documents matching filter, oldest first.
func (s *documentStore) List(_ context.Context, filter domain.DocumentFilter) ([]domain.Document, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	rows := make([]*documentRow, 0, len(s.store.documents))
	for _, row := range s.store.documents {
		if filter.Source != "" && row.doc.Source != filter.Source {
			continue
		}
		if filter.Status != "" && row.doc.Status != filter.Status {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	docs := make([]domain.Document, 0, len(rows))
	for _, row := range limitOf(rows, filter.Limit) {
		docs = append(docs, *copyDocument(row.doc))
	}
	return docs, nil
}

// CompareAndSetStatus moves a document from expected to next.
func (s *documentStore) CompareAndSetStatus(
	_ context.Context,
	id string,
	expected, next, previous domain.DocumentStatus,
	at time.Time,
) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	row, ok := s.store.documents[id]
	if !ok {
		return domain.ErrNotFound
	}
	if row.doc.Status != expected {
		return domain.ErrConflict
	}

	row.doc.Status = next
	row.doc.PreviousStatus = previous
	row.doc.UpdatedAt = at
	return nil
}

// UpdateMetadata replaces the descriptive fields of a document.
func (s *documentStore) UpdateMetadata(_ context.Context, id string, meta domain.DocumentMetadata, at time.Time) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	row, ok := s.store.documents[id]
	if !ok {
		return domain.ErrNotFound
	}

	row.doc.DocumentMetadata = copyDocument(domain.Document{DocumentMetadata: meta}).DocumentMetadata
	row.doc.UpdatedAt = at
	return nil
}

// Delete removes a document and everything it owns.
func (s *documentStore) Delete(_ context.Context, id string) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if !s.store.hasDocument(id) {
		return domain.ErrNotFound
	}
	s.store.deleteDocument(id)
	return nil
}

// PutFile upserts a file variant.
func (s *documentStore) PutFile(_ context.Context, file domain.DocumentFile) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if !s.store.hasDocument(file.DocumentID) {
		return domain.ErrNotFound
	}
	s.store.files[fileKey{file.DocumentID, file.Variant}] = file
	return nil
}

// GetFile retrieves one file variant.
func (s *documentStore) GetFile(_ context.Context, documentID, variant string) (*domain.DocumentFile, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	file, ok := s.store.files[fileKey{documentID, variant}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &file, nil
}

// ListFiles returns the file variants of a document ordered by variant.
func (s *documentStore) ListFiles(_ context.Context, documentID string) ([]domain.DocumentFile, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var files []domain.DocumentFile
	for k, f := range s.store.files {
		if k.documentID == documentID {
			files = append(files, f)
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Variant < files[j].Variant })
	return files, nil
}

// PutLink upserts a link.
func (s *documentStore) PutLink(_ context.Context, link domain.DocumentLink) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if !s.store.hasDocument(link.DocumentID) {
		return domain.ErrNotFound
	}
	s.store.links[linkKey{link.DocumentID, link.LinkType, link.URL}] = link
	return nil
}

// ListLinks returns the links of a document ordered by type and URL.
func (s *documentStore) ListLinks(_ context.Context, documentID string) ([]domain.DocumentLink, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var links []domain.DocumentLink
	for k, l := range s.store.links {
		if k.documentID == documentID {
			links = append(links, l)
		}
	}
	sort.Slice(links, func(i, j int) bool {
		if links[i].LinkType != links[j].LinkType {
			return links[i].LinkType < links[j].LinkType
		}
		return links[i].URL < links[j].URL
	})
	return links, nil
}
