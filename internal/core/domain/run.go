package domain

import "time"

// RunStatus is the status of a processing run or OCR run.
type RunStatus string

// Run statuses. Pending and running are non-terminal; a run transitions
// exactly once into a terminal status and is never reopened.
const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// IsValid reports whether s is a known status.
func (s RunStatus) IsValid() bool {
	switch s {
	case RunPending, RunRunning, RunSucceeded, RunFailed, RunCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether s is a terminal status.
func (s RunStatus) IsTerminal() bool {
	return s == RunSucceeded || s == RunFailed || s == RunCancelled
}

// TerminalRunStatuses lists the terminal statuses.
var TerminalRunStatuses = []RunStatus{RunSucceeded, RunFailed, RunCancelled}

// ProcessingRun is one pipeline execution attempt.
type ProcessingRun struct {
	ID string

	// CorrelationID groups retries of the same logical task.
	CorrelationID string

	PipelineVersion string

	// DocumentID is a weak reference: empty when the run failed before a
	// document was resolved, or after the document was deleted.
	DocumentID string

	// IdempotencyKey deduplicates run creation.
	IdempotencyKey string

	Status  RunStatus
	Metrics RunMetrics

	StartedAt time.Time
	// FinishedAt is zero until the run is terminal.
	FinishedAt time.Time
}

// HasDocument reports whether the run references a document.
func (r *ProcessingRun) HasDocument() bool {
	return r.DocumentID != ""
}

// RunMetrics are the measurements reported when a run finishes.
type RunMetrics struct {
	DurationMS     int64 `json:"duration_ms"`
	ItemsProcessed int   `json:"items_processed"`
	PagesProcessed int   `json:"pages_processed"`
	ChunksWritten  int   `json:"chunks_written"`

	Extra map[string]any `json:"-"`
}

// MarshalJSON implements json.Marshaler.
func (m RunMetrics) MarshalJSON() ([]byte, error) {
	type plain RunMetrics
	return marshalWithExtra(plain(m), m.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *RunMetrics) UnmarshalJSON(data []byte) error {
	type plain RunMetrics
	var p plain
	extra, err := unmarshalWithExtra(data, &p)
	if err != nil {
		return err
	}
	*m = RunMetrics(p)
	m.Extra = extra
	return nil
}

// RunFilter narrows run listings. Zero fields are ignored.
type RunFilter struct {
	CorrelationID   string
	PipelineVersion string
	DocumentID      string
	Status          RunStatus
	Limit           int
}

// ProcessingError is a structured failure recorded against a run.
// CorrelationID and PipelineVersion are copied so errors can be correlated
// across retries.
type ProcessingError struct {
	ID              string
	RunID           string
	CorrelationID   string
	PipelineVersion string
	DocumentID      string

	// Step names the pipeline stage that failed, e.g. "ocr".
	Step    string
	Code    string
	Message string
	Details ErrorDetails

	CreatedAt time.Time
}

// ErrorDetails is the structured context of a processing error.
type ErrorDetails struct {
	Exception  string `json:"exception"`
	Attempt    int    `json:"attempt"`
	PageNumber int    `json:"page_number"`
	URI        string `json:"uri"`

	Extra map[string]any `json:"-"`
}

// MarshalJSON implements json.Marshaler.
func (d ErrorDetails) MarshalJSON() ([]byte, error) {
	type plain ErrorDetails
	return marshalWithExtra(plain(d), d.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *ErrorDetails) UnmarshalJSON(data []byte) error {
	type plain ErrorDetails
	var p plain
	extra, err := unmarshalWithExtra(data, &p)
	if err != nil {
		return err
	}
	*d = ErrorDetails(p)
	d.Extra = extra
	return nil
}
