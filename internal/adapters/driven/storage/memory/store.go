package memory

import (
	"sync"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driven"
)

type fileKey struct{ documentID, variant string }

type linkKey struct{ documentID, linkType, url string }

type extractionKey struct{ documentID, pipelineVersion, extractor string }

type provenanceKey struct{ documentID, pipelineVersion, sourceURI string }

type pageKey struct {
	runID      string
	pageNumber int
}

type enrichmentKey struct{ chunkID, enrichmentVersion string }

type documentRow struct {
	doc domain.Document
	seq int64
}

type runRow struct {
	run       domain.ProcessingRun
	startSeq  int64
	finishSeq int64
}

type ocrRunRow struct {
	run domain.OcrRun
	seq int64
}

type reviewRow struct {
	entry domain.ReviewEntry
	seq   int64
}

type projectionRow struct {
	projection domain.SearchProjection
	seq        int64
}

// Store is an in-memory ledger providing every store interface through
// wrapper types.
type Store struct {
	mu  sync.RWMutex
	seq int64

	documents   map[string]*documentRow
	files       map[fileKey]domain.DocumentFile
	links       map[linkKey]domain.DocumentLink
	extractions map[extractionKey]domain.Extraction
	chunks      map[string]domain.Chunk
	provenance  map[provenanceKey]domain.Provenance
	runs        map[string]*runRow
	runKeys     map[string]string
	errors      []domain.ProcessingError
	ocrRuns     map[string]*ocrRunRow
	ocrPages    map[pageKey]domain.OcrPage
	enrichments map[enrichmentKey]domain.ChunkEnrichment
	reviews     map[string]*reviewRow
	projections map[string]*projectionRow
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		documents:   make(map[string]*documentRow),
		files:       make(map[fileKey]domain.DocumentFile),
		links:       make(map[linkKey]domain.DocumentLink),
		extractions: make(map[extractionKey]domain.Extraction),
		chunks:      make(map[string]domain.Chunk),
		provenance:  make(map[provenanceKey]domain.Provenance),
		runs:        make(map[string]*runRow),
		runKeys:     make(map[string]string),
		ocrRuns:     make(map[string]*ocrRunRow),
		ocrPages:    make(map[pageKey]domain.OcrPage),
		enrichments: make(map[enrichmentKey]domain.ChunkEnrichment),
		reviews:     make(map[string]*reviewRow),
		projections: make(map[string]*projectionRow),
	}
}

// DocumentStore returns a DocumentStore interface backed by this store.
func (s *Store) DocumentStore() driven.DocumentStore {
	return &documentStore{store: s}
}

// ArtifactStore returns an ArtifactStore interface backed by this store.
func (s *Store) ArtifactStore() driven.ArtifactStore {
	return &artifactStore{store: s}
}

// RunStore returns a RunStore interface backed by this store.
func (s *Store) RunStore() driven.RunStore {
	return &runStore{store: s}
}

// ErrorStore returns an ErrorStore interface backed by this store.
func (s *Store) ErrorStore() driven.ErrorStore {
	return &errorStore{store: s}
}

// OcrStore returns an OcrStore interface backed by this store.
func (s *Store) OcrStore() driven.OcrStore {
	return &ocrStore{store: s}
}

// EnrichmentStore returns an EnrichmentStore interface backed by this store.
func (s *Store) EnrichmentStore() driven.EnrichmentStore {
	return &enrichmentStore{store: s}
}

// ReviewStore returns a ReviewStore interface backed by this store.
func (s *Store) ReviewStore() driven.ReviewStore {
	return &reviewStore{store: s}
}

// ProjectionStore returns a ProjectionStore interface backed by this store.
func (s *Store) ProjectionStore() driven.ProjectionStore {
	return &projectionStore{store: s}
}

// nextSeq returns a monotonically increasing sequence number (caller must hold lock).
func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// hasDocument reports whether a document exists (caller must hold lock).
func (s *Store) hasDocument(id string) bool {
	_, ok := s.documents[id]
	return ok
}

// deleteChunk removes a chunk and its enrichments (caller must hold lock).
func (s *Store) deleteChunk(id string) {
	delete(s.chunks, id)
	for k := range s.enrichments {
		if k.chunkID == id {
			delete(s.enrichments, k)
		}
	}
}

// deleteDocument removes a document and everything it owns. Runs keep
// existing with their document reference cleared (caller must hold lock).
func (s *Store) deleteDocument(id string) {
	delete(s.documents, id)
	delete(s.projections, id)

	for k := range s.files {
		if k.documentID == id {
			delete(s.files, k)
		}
	}
	for k := range s.links {
		if k.documentID == id {
			delete(s.links, k)
		}
	}
	for k := range s.extractions {
		if k.documentID == id {
			delete(s.extractions, k)
		}
	}
	for k := range s.provenance {
		if k.documentID == id {
			delete(s.provenance, k)
		}
	}
	for chunkID, c := range s.chunks {
		if c.DocumentID == id {
			s.deleteChunk(chunkID)
		}
	}
	for runID, row := range s.ocrRuns {
		if row.run.DocumentID != id {
			continue
		}
		delete(s.ocrRuns, runID)
		for k := range s.ocrPages {
			if k.runID == runID {
				delete(s.ocrPages, k)
			}
		}
	}
	for reviewID, row := range s.reviews {
		if row.entry.DocumentID == id {
			delete(s.reviews, reviewID)
		}
	}
	for _, row := range s.runs {
		if row.run.DocumentID == id {
			row.run.DocumentID = ""
		}
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneAttributes(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func limitOf[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
