package memory

import (
	"context"
	"sort"
	"time"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driven"
)

// reviewStore implements driven.ReviewStore.
type reviewStore struct {
	store *Store
}

var _ driven.ReviewStore = (*reviewStore)(nil)

// Enqueue appends an entry.
func (s *reviewStore) Enqueue(_ context.Context, entry *domain.ReviewEntry) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if !s.store.hasDocument(entry.DocumentID) {
		return domain.ErrNotFound
	}
	if _, ok := s.store.reviews[entry.ID]; ok {
		return domain.ErrConflict
	}
	s.store.reviews[entry.ID] = &reviewRow{entry: *entry, seq: s.store.nextSeq()}
	return nil
}

// Get retrieves an entry by ID.
func (s *reviewStore) Get(_ context.Context, id string) (*domain.ReviewEntry, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	row, ok := s.store.reviews[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	entry := row.entry
	return &entry, nil
}

// List returns entries matching filter, oldest first.
func (s *reviewStore) List(_ context.Context, filter domain.ReviewFilter) ([]domain.ReviewEntry, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var rows []*reviewRow
	for _, row := range s.store.reviews {
		if filter.DocumentID != "" && row.entry.DocumentID != filter.DocumentID {
			continue
		}
		if filter.Status != "" && row.entry.Status != filter.Status {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	entries := make([]domain.ReviewEntry, 0, len(rows))
	for _, row := range limitOf(rows, filter.Limit) {
		entries = append(entries, row.entry)
	}
	return entries, nil
}

// Resolve closes an open entry.
func (s *reviewStore) Resolve(_ context.Context, id string, at time.Time) (*domain.ReviewEntry, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	row, ok := s.store.reviews[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if row.entry.Status == domain.ReviewResolved {
		return nil, domain.ErrAlreadyResolved
	}

	row.entry.Status = domain.ReviewResolved
	row.entry.ResolvedAt = at
	entry := row.entry
	return &entry, nil
}
