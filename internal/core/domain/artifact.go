package domain

import (
	"fmt"
	"time"
)

// Extraction is one text-extraction result for a document.
// Keyed by (DocumentID, PipelineVersion, Extractor); re-running the same key overwrites.
type Extraction struct {
	DocumentID      string
	PipelineVersion string
	Extractor       string

	// ExtractedURI locates the extracted text in object storage.
	ExtractedURI string

	Metrics ExtractionMetrics

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ExtractionMetrics are the measurements an extractor reports.
// Unknown keys survive a round trip through Extra.
type ExtractionMetrics struct {
	Chars      int   `json:"chars"`
	Pages      int   `json:"pages"`
	DurationMS int64 `json:"duration_ms"`

	Extra map[string]any `json:"-"`
}

// MarshalJSON implements json.Marshaler.
func (m ExtractionMetrics) MarshalJSON() ([]byte, error) {
	type plain ExtractionMetrics
	return marshalWithExtra(plain(m), m.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *ExtractionMetrics) UnmarshalJSON(data []byte) error {
	type plain ExtractionMetrics
	var p plain
	extra, err := unmarshalWithExtra(data, &p)
	if err != nil {
		return err
	}
	*m = ExtractionMetrics(p)
	m.Extra = extra
	return nil
}

// Chunk is a contiguous text unit derived from an extraction.
type Chunk struct {
	// ID is globally unique.
	ID string

	DocumentID      string
	PipelineVersion string

	// Index is the zero-based position within (DocumentID, PipelineVersion).
	Index int

	// TextURI locates the chunk text in object storage.
	TextURI string

	// SHA256 is the content hash used for enrichment staleness checks.
	SHA256 string

	TokenCount  int
	SectionPath string

	// PageStart and PageEnd are 1-based; zero means unknown.
	PageStart int
	PageEnd   int
	Locator   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateChunkSequence checks that chunks belong to documentID and
// pipelineVersion and that their indexes form {0, 1, ..., n-1}.
// An empty set is a valid sequence.
func ValidateChunkSequence(documentID, pipelineVersion string, chunks []Chunk) error {
	seen := make([]bool, len(chunks))
	ids := make(map[string]struct{}, len(chunks))

	for i := range chunks {
		c := &chunks[i]
		if c.DocumentID != documentID || c.PipelineVersion != pipelineVersion {
			return fmt.Errorf("%w: chunk %d belongs to %s@%s",
				ErrInvalidChunkSequence, c.Index, c.DocumentID, c.PipelineVersion)
		}
		if c.Index < 0 || c.Index >= len(chunks) {
			return fmt.Errorf("%w: index %d outside [0, %d)", ErrInvalidChunkSequence, c.Index, len(chunks))
		}
		if seen[c.Index] {
			return fmt.Errorf("%w: duplicate index %d", ErrInvalidChunkSequence, c.Index)
		}
		seen[c.Index] = true

		if c.ID != "" {
			if _, dup := ids[c.ID]; dup {
				return fmt.Errorf("%w: duplicate chunk id %s", ErrInvalidChunkSequence, c.ID)
			}
			ids[c.ID] = struct{}{}
		}
	}

	// n distinct indexes in [0, n) cannot leave a gap.
	return nil
}

// Provenance is a citation record for a document version.
// Keyed by (DocumentID, PipelineVersion, SourceURI).
type Provenance struct {
	DocumentID      string
	PipelineVersion string
	SourceURI       string

	Label       string
	License     string
	RetrievedAt time.Time
	Attributes  map[string]string

	UpdatedAt time.Time
}
