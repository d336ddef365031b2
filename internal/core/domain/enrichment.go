package domain

import "time"

// ChunkEnrichment is one model-proposed metadata improvement for a chunk.
// Keyed by (ChunkID, EnrichmentVersion).
type ChunkEnrichment struct {
	ChunkID           string
	EnrichmentVersion string
	Model             string

	// ChunkSHA256 is the chunk hash the enrichment was computed against.
	ChunkSHA256 string
	// InputSHA256 hashes the full model input (prompt plus chunk).
	InputSHA256 string

	// Confidence is nil when the model reported none.
	Confidence *float64
	Accepted   bool
	Output     EnrichmentOutput

	// Error holds the rejection reason.
	Error      string
	RejectedAt time.Time
	AppliedAt  time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRejected reports whether the enrichment was rejected.
func (e *ChunkEnrichment) IsRejected() bool {
	return !e.RejectedAt.IsZero()
}

// IsStale reports whether the chunk changed since the enrichment was computed.
func (e *ChunkEnrichment) IsStale(currentChunkSHA256 string) bool {
	return currentChunkSHA256 == "" || e.ChunkSHA256 != currentChunkSHA256
}

// EnrichmentOutput is the metadata proposed by the model.
type EnrichmentOutput struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
	Language string   `json:"language"`

	Extra map[string]any `json:"-"`
}

// MarshalJSON implements json.Marshaler.
func (o EnrichmentOutput) MarshalJSON() ([]byte, error) {
	type plain EnrichmentOutput
	return marshalWithExtra(plain(o), o.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *EnrichmentOutput) UnmarshalJSON(data []byte) error {
	type plain EnrichmentOutput
	var p plain
	extra, err := unmarshalWithExtra(data, &p)
	if err != nil {
		return err
	}
	*o = EnrichmentOutput(p)
	o.Extra = extra
	return nil
}

// EnrichmentCandidate is a chunk that needs (re-)enrichment for a version.
type EnrichmentCandidate struct {
	DocumentID      string
	PipelineVersion string
	ChunkID         string
	ChunkIndex      int
	ChunkSHA256     string
	TextURI         string

	// Existing is the current enrichment row, nil when none exists.
	Existing *ChunkEnrichment
}

// CandidateFilter selects enrichment candidates.
type CandidateFilter struct {
	PipelineVersion   string
	EnrichmentVersion string
	// Source restricts candidates to documents from one source.
	Source          string
	Limit           int
	IncludeRejected bool
}

// NeedsEnrichment reports whether a chunk with hash chunkSHA256 and current
// enrichment existing (possibly nil) is a candidate.
func NeedsEnrichment(chunkSHA256 string, existing *ChunkEnrichment, includeRejected bool) bool {
	switch {
	case existing == nil:
		return true
	case existing.ChunkSHA256 != chunkSHA256:
		return true
	case existing.Accepted && existing.AppliedAt.IsZero():
		return true
	case !existing.Accepted && includeRejected:
		return true
	}
	return false
}
