package domain

import "time"

// ReviewStatus is the status of a review queue entry.
type ReviewStatus string

// Review statuses.
const (
	ReviewOpen     ReviewStatus = "open"
	ReviewResolved ReviewStatus = "resolved"
)

// ReviewEntry escalates a document version for human attention.
// Entries are append-only; each one records a distinct detection event.
type ReviewEntry struct {
	ID              string
	DocumentID      string
	PipelineVersion string
	Reason          string
	Status          ReviewStatus

	CreatedAt time.Time
	// ResolvedAt is zero while the entry is open.
	ResolvedAt time.Time
}

// ReviewFilter narrows review listings. Zero fields are ignored.
type ReviewFilter struct {
	DocumentID string
	Status     ReviewStatus
	Limit      int
}
