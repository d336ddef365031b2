package memory

import (
	"context"
	"sort"
	"time"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driven"
)

// enrichmentStore implements driven.EnrichmentStore.
type enrichmentStore struct {
	store *Store
}

var _ driven.EnrichmentStore = (*enrichmentStore)(nil)

func copyEnrichment(e domain.ChunkEnrichment) *domain.ChunkEnrichment {
	if e.Confidence != nil {
		c := *e.Confidence
		e.Confidence = &c
	}
	e.Output.Keywords = cloneStrings(e.Output.Keywords)
	return &e
}

// Propose upserts an unaccepted enrichment unless the version was rejected.
func (s *enrichmentStore) Propose(_ context.Context, enrichment *domain.ChunkEnrichment) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if _, ok := s.store.chunks[enrichment.ChunkID]; !ok {
		return domain.ErrNotFound
	}

	key := enrichmentKey{enrichment.ChunkID, enrichment.EnrichmentVersion}
	next := *copyEnrichment(*enrichment)
	next.Accepted = false
	next.AppliedAt = time.Time{}
	next.Error = ""
	next.RejectedAt = time.Time{}

	if prev, ok := s.store.enrichments[key]; ok {
		if prev.IsRejected() {
			return domain.ErrEnrichmentRejected
		}
		next.CreatedAt = prev.CreatedAt
	}
	s.store.enrichments[key] = next
	return nil
}

// Get retrieves one enrichment.
func (s *enrichmentStore) Get(_ context.Context, chunkID, enrichmentVersion string) (*domain.ChunkEnrichment, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	e, ok := s.store.enrichments[enrichmentKey{chunkID, enrichmentVersion}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copyEnrichment(e), nil
}

// ListForChunk returns every enrichment version of a chunk.
func (s *enrichmentStore) ListForChunk(_ context.Context, chunkID string) ([]domain.ChunkEnrichment, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var out []domain.ChunkEnrichment
	for k, e := range s.store.enrichments {
		if k.chunkID == chunkID {
			out = append(out, *copyEnrichment(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrichmentVersion < out[j].EnrichmentVersion })
	return out, nil
}

// Accept accepts an enrichment whose hash matches the current chunk.
// Accepting an accepted enrichment leaves it unchanged.
func (s *enrichmentStore) Accept(
	_ context.Context,
	chunkID, enrichmentVersion string,
	at time.Time,
) (*domain.ChunkEnrichment, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	key := enrichmentKey{chunkID, enrichmentVersion}
	e, ok := s.store.enrichments[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if e.IsRejected() {
		return nil, domain.ErrEnrichmentRejected
	}
	if e.IsStale(s.store.chunks[chunkID].SHA256) {
		return nil, domain.ErrStaleEnrichment
	}
	if e.Accepted {
		return copyEnrichment(e), nil
	}

	e.Accepted = true
	e.AppliedAt = at
	e.UpdatedAt = at
	s.store.enrichments[key] = e
	return copyEnrichment(e), nil
}

// Reject permanently rejects an unaccepted enrichment. Rejecting twice keeps
// the first reason.
func (s *enrichmentStore) Reject(
	_ context.Context,
	chunkID, enrichmentVersion, reason string,
	at time.Time,
) (*domain.ChunkEnrichment, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	key := enrichmentKey{chunkID, enrichmentVersion}
	e, ok := s.store.enrichments[key]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if e.Accepted {
		return nil, domain.ErrConflict
	}
	if e.IsRejected() {
		return copyEnrichment(e), nil
	}

	e.Error = reason
	e.RejectedAt = at
	e.UpdatedAt = at
	s.store.enrichments[key] = e
	return copyEnrichment(e), nil
}

// Candidates returns chunks of indexed documents needing enrichment,
// ordered by document and chunk index.
func (s *enrichmentStore) Candidates(
	_ context.Context,
	filter domain.CandidateFilter,
) ([]domain.EnrichmentCandidate, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var out []domain.EnrichmentCandidate
	for _, c := range s.store.chunks {
		if c.PipelineVersion != filter.PipelineVersion {
			continue
		}
		row, ok := s.store.documents[c.DocumentID]
		if !ok || row.doc.Status != domain.StatusIndexed {
			continue
		}
		if filter.Source != "" && row.doc.Source != filter.Source {
			continue
		}

		var existing *domain.ChunkEnrichment
		if e, ok := s.store.enrichments[enrichmentKey{c.ID, filter.EnrichmentVersion}]; ok {
			existing = copyEnrichment(e)
		}
		if !domain.NeedsEnrichment(c.SHA256, existing, filter.IncludeRejected) {
			continue
		}

		out = append(out, domain.EnrichmentCandidate{
			DocumentID:      c.DocumentID,
			PipelineVersion: c.PipelineVersion,
			ChunkID:         c.ID,
			ChunkIndex:      c.Index,
			ChunkSHA256:     c.SHA256,
			TextURI:         c.TextURI,
			Existing:        existing,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DocumentID != out[j].DocumentID {
			return out[i].DocumentID < out[j].DocumentID
		}
		return out[i].ChunkIndex < out[j].ChunkIndex
	})
	return limitOf(out, filter.Limit), nil
}
