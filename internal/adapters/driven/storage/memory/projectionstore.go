package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driven"
)

// projectionStore implements driven.ProjectionStore.
type projectionStore struct {
	store *Store
}

var _ driven.ProjectionStore = (*projectionStore)(nil)

// Refresh fully replaces the projection of a document.
func (s *projectionStore) Refresh(_ context.Context, projection domain.SearchProjection) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if !s.store.hasDocument(projection.DocumentID) {
		return domain.ErrNotFound
	}
	s.store.projections[projection.DocumentID] = &projectionRow{projection: projection, seq: s.store.nextSeq()}
	return nil
}

// Get retrieves the projection of a document.
func (s *projectionStore) Get(_ context.Context, documentID string) (*domain.SearchProjection, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	row, ok := s.store.projections[documentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p := row.projection
	return &p, nil
}

// Search returns documents whose search text contains every term.
func (s *projectionStore) Search(_ context.Context, terms []string, limit int) ([]domain.SearchHit, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var rows []*projectionRow
	for _, row := range s.store.projections {
		if containsAll(row.projection.SearchText, terms) {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	hits := make([]domain.SearchHit, 0, len(rows))
	for _, row := range limitOf(rows, limit) {
		p := row.projection
		hits = append(hits, domain.SearchHit{
			DocumentID:  p.DocumentID,
			Title:       s.store.documents[p.DocumentID].doc.Title,
			PreviewText: p.PreviewText,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	return hits, nil
}

func containsAll(text string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(text, t) {
			return false
		}
	}
	return true
}
