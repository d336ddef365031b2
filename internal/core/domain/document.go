package domain

import "time"

// DocumentStatus is the lifecycle status of a document.
type DocumentStatus string

// Document lifecycle statuses.
//
// The happy path is discovered → fetched → extracted → chunked → indexed.
// Failed is absorbing and reachable from any status. NeedsReview is reachable
// from any non-failed status and resolves back to the status it interrupted.
const (
	StatusDiscovered  DocumentStatus = "discovered"
	StatusFetched     DocumentStatus = "fetched"
	StatusExtracted   DocumentStatus = "extracted"
	StatusChunked     DocumentStatus = "chunked"
	StatusIndexed     DocumentStatus = "indexed"
	StatusFailed      DocumentStatus = "failed"
	StatusNeedsReview DocumentStatus = "needs_review"
)

// happyPath orders the forward statuses.
var happyPath = map[DocumentStatus]int{
	StatusDiscovered: 0,
	StatusFetched:    1,
	StatusExtracted:  2,
	StatusChunked:    3,
	StatusIndexed:    4,
}

// IsValid reports whether s is a known status.
func (s DocumentStatus) IsValid() bool {
	if _, ok := happyPath[s]; ok {
		return true
	}
	return s == StatusFailed || s == StatusNeedsReview
}

// CanTransitionTo reports whether a document currently in status s may move
// to next. previous is the status interrupted by needs_review and is only
// consulted when s is StatusNeedsReview.
//
// Staying in the same status is not a transition and returns false.
func (s DocumentStatus) CanTransitionTo(next, previous DocumentStatus) bool {
	if !s.IsValid() || !next.IsValid() || s == next {
		return false
	}
	switch {
	case s == StatusFailed:
		return false
	case next == StatusFailed, next == StatusNeedsReview:
		return true
	case s == StatusNeedsReview:
		return next == previous
	}
	return happyPath[next] > happyPath[s]
}

// Document is the canonical identity and lifecycle state of an ingested document.
type Document struct {
	// ID is the stable, externally assigned identifier.
	ID string

	// Source names the collection the document was discovered in.
	Source string

	// SourceURI is the original location. Immutable once registered.
	SourceURI string

	// Status is the current lifecycle status.
	Status DocumentStatus

	// PreviousStatus is the status interrupted by needs_review.
	// Empty unless Status is StatusNeedsReview.
	PreviousStatus DocumentStatus

	// DocumentMetadata holds descriptive and content-addressing fields.
	DocumentMetadata

	// CreatedAt is when the document was first registered.
	CreatedAt time.Time

	// UpdatedAt is when the document was last modified.
	UpdatedAt time.Time
}

// DocumentMetadata holds the mutable descriptive fields of a document.
type DocumentMetadata struct {
	CanonicalURL  string
	Title         string
	Author        string
	PublishedYear int
	Language      string
	ContentType   string
	// IsScanned is nil when unknown.
	IsScanned *bool

	// ContentFingerprint detects that the underlying content changed.
	ContentFingerprint string
	CanonicalSHA256    string
	CanonicalETag      string

	Categories    []string
	SourceDataset string
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	Source string
	Status DocumentStatus
	Limit  int
}

// DocumentFile is a named variant of the stored bytes for a document.
// At most one record exists per (DocumentID, Variant).
type DocumentFile struct {
	DocumentID string
	// Variant names the derivation, e.g. "raw" or "canonicalized".
	Variant    string
	StorageURI string
	SHA256     string
	Bytes      int64
	MimeType   string
	UpdatedAt  time.Time
}

// DocumentLink is an external link attached to a document.
// Unique per (DocumentID, LinkType, URL).
type DocumentLink struct {
	DocumentID string
	LinkType   string
	URL        string
	Label      string
}
