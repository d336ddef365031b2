package memory

import (
	"context"
	"sort"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driven"
)

// artifactStore implements driven.ArtifactStore.
type artifactStore struct {
	store *Store
}

var _ driven.ArtifactStore = (*artifactStore)(nil)

// PutExtraction upserts an extraction, keeping its original creation time.
func (s *artifactStore) PutExtraction(_ context.Context, extraction domain.Extraction) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if !s.store.hasDocument(extraction.DocumentID) {
		return domain.ErrNotFound
	}

	key := extractionKey{extraction.DocumentID, extraction.PipelineVersion, extraction.Extractor}
	if prev, ok := s.store.extractions[key]; ok {
		extraction.CreatedAt = prev.CreatedAt
	}
	s.store.extractions[key] = extraction
	return nil
}

// GetExtraction retrieves one extraction.
func (s *artifactStore) GetExtraction(
	_ context.Context,
	documentID, pipelineVersion, extractor string,
) (*domain.Extraction, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	e, ok := s.store.extractions[extractionKey{documentID, pipelineVersion, extractor}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

// ListExtractions returns every extraction of a document.
func (s *artifactStore) ListExtractions(_ context.Context, documentID string) ([]domain.Extraction, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var out []domain.Extraction
	for k, e := range s.store.extractions {
		if k.documentID == documentID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PipelineVersion != out[j].PipelineVersion {
			return out[i].PipelineVersion < out[j].PipelineVersion
		}
		return out[i].Extractor < out[j].Extractor
	})
	return out, nil
}

// ReplaceChunks replaces the chunk set of a document version under one lock.
func (s *artifactStore) ReplaceChunks(
	_ context.Context,
	documentID, pipelineVersion string,
	chunks []domain.Chunk,
) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if !s.store.hasDocument(documentID) {
		return domain.ErrNotFound
	}

	keep := make(map[string]struct{}, len(chunks))
	for _, c := range chunks {
		if existing, ok := s.store.chunks[c.ID]; ok &&
			(existing.DocumentID != documentID || existing.PipelineVersion != pipelineVersion) {
			return domain.ErrConflict
		}
		keep[c.ID] = struct{}{}
	}

	for id, c := range s.store.chunks {
		if c.DocumentID != documentID || c.PipelineVersion != pipelineVersion {
			continue
		}
		if _, ok := keep[id]; !ok {
			s.store.deleteChunk(id)
		}
	}

	for _, c := range chunks {
		if prev, ok := s.store.chunks[c.ID]; ok {
			c.CreatedAt = prev.CreatedAt
		}
		s.store.chunks[c.ID] = c
	}
	return nil
}

// ListChunks returns the chunks of a document version ordered by index.
func (s *artifactStore) ListChunks(_ context.Context, documentID, pipelineVersion string) ([]domain.Chunk, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var out []domain.Chunk
	for _, c := range s.store.chunks {
		if c.DocumentID == documentID && c.PipelineVersion == pipelineVersion {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

// GetChunk retrieves a chunk by ID.
func (s *artifactStore) GetChunk(_ context.Context, chunkID string) (*domain.Chunk, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	c, ok := s.store.chunks[chunkID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

// PutProvenance upserts a provenance record.
func (s *artifactStore) PutProvenance(_ context.Context, provenance domain.Provenance) error {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	if !s.store.hasDocument(provenance.DocumentID) {
		return domain.ErrNotFound
	}
	provenance.Attributes = cloneAttributes(provenance.Attributes)
	s.store.provenance[provenanceKey{provenance.DocumentID, provenance.PipelineVersion, provenance.SourceURI}] = provenance
	return nil
}

// ListProvenance returns the provenance records of a document version.
func (s *artifactStore) ListProvenance(
	_ context.Context,
	documentID, pipelineVersion string,
) ([]domain.Provenance, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()

	var out []domain.Provenance
	for k, p := range s.store.provenance {
		if k.documentID == documentID && k.pipelineVersion == pipelineVersion {
			p.Attributes = cloneAttributes(p.Attributes)
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceURI < out[j].SourceURI })
	return out, nil
}
