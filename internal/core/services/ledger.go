package services

import (
	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driven"
)

// Stores groups the driven ports a Ledger is built from.
type Stores struct {
	Documents   driven.DocumentStore
	Artifacts   driven.ArtifactStore
	Runs        driven.RunStore
	Errors      driven.ErrorStore
	OCR         driven.OcrStore
	Enrichments driven.EnrichmentStore
	Reviews     driven.ReviewStore
	Projections driven.ProjectionStore
}

// Ledger wires one service per ledger component.
type Ledger struct {
	Documents   *DocumentRegistry
	Artifacts   *ArtifactService
	Runs        *RunTracker
	Errors      *ErrorLedger
	OCR         *OcrTracker
	Enrichments *EnrichmentLedger
	Reviews     *ReviewQueue
	Search      *SearchProjection
}

// NewLedger creates every service over stores using settings.
func NewLedger(stores Stores, settings domain.Settings) *Ledger {
	reviews := NewReviewQueue(stores.Reviews)

	return &Ledger{
		Documents:   NewDocumentRegistry(stores.Documents),
		Artifacts:   NewArtifactService(stores.Artifacts, stores.Runs, reviews, settings.Extraction),
		Runs:        NewRunTracker(stores.Runs),
		Errors:      NewErrorLedger(stores.Errors, stores.Runs),
		OCR:         NewOcrTracker(stores.OCR, settings.OCR),
		Enrichments: NewEnrichmentLedger(stores.Enrichments),
		Reviews:     reviews,
		Search:      NewSearchProjection(stores.Projections, stores.Documents, settings.Search.DefaultLimit),
	}
}
