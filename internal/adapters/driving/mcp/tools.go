package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
)

// DocumentOutput describes a registered document.
type DocumentOutput struct {
	DocumentID     string `json:"document_id"`
	Source         string `json:"source"`
	SourceURI      string `json:"source_uri"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status,omitempty"`
	Title          string `json:"title,omitempty"`
	UpdatedAt      string `json:"updated_at"`
}

// RegisterDocumentInput is the input schema for the register_document tool.
type RegisterDocumentInput struct {
	DocumentID         string `json:"document_id,omitempty" jsonschema:"stable document ID; derived from the source URI when empty"`
	Source             string `json:"source" jsonschema:"collection the document was discovered in"`
	SourceURI          string `json:"source_uri" jsonschema:"original location of the document"`
	Title              string `json:"title,omitempty" jsonschema:"document title"`
	Author             string `json:"author,omitempty" jsonschema:"document author"`
	ContentType        string `json:"content_type,omitempty" jsonschema:"MIME type of the original"`
	ContentFingerprint string `json:"content_fingerprint,omitempty" jsonschema:"fingerprint used to detect content changes"`
}

// AdvanceStatusInput is the input schema for the advance_status tool.
type AdvanceStatusInput struct {
	DocumentID string `json:"document_id" jsonschema:"document to advance"`
	Status     string `json:"status" jsonschema:"next status: discovered, fetched, extracted, chunked, indexed, failed or needs_review"`
}

// RunOutput describes a processing run.
type RunOutput struct {
	RunID           string `json:"run_id"`
	CorrelationID   string `json:"correlation_id"`
	PipelineVersion string `json:"pipeline_version"`
	DocumentID      string `json:"document_id,omitempty"`
	IdempotencyKey  string `json:"idempotency_key"`
	Status          string `json:"status"`
	Created         bool   `json:"created"`
	StartedAt       string `json:"started_at"`
	FinishedAt      string `json:"finished_at,omitempty"`
}

// StartRunInput is the input schema for the start_run tool.
type StartRunInput struct {
	CorrelationID      string `json:"correlation_id" jsonschema:"ID shared by every retry of a task"`
	PipelineVersion    string `json:"pipeline_version" jsonschema:"pipeline version the run executes"`
	DocumentID         string `json:"document_id,omitempty" jsonschema:"document the run processes"`
	IdempotencyKey     string `json:"idempotency_key,omitempty" jsonschema:"idempotency key; derived from version, document and fingerprint when empty"`
	ContentFingerprint string `json:"content_fingerprint,omitempty" jsonschema:"content fingerprint used to derive the key"`
}

// FinishRunInput is the input schema for the finish_run tool.
type FinishRunInput struct {
	RunID          string `json:"run_id" jsonschema:"run to finish"`
	Status         string `json:"status" jsonschema:"terminal status: succeeded, failed or cancelled"`
	DurationMS     int64  `json:"duration_ms,omitempty" jsonschema:"run duration in milliseconds"`
	ItemsProcessed int    `json:"items_processed,omitempty" jsonschema:"items processed"`
	PagesProcessed int    `json:"pages_processed,omitempty" jsonschema:"pages processed"`
	ChunksWritten  int    `json:"chunks_written,omitempty" jsonschema:"chunks written"`
}

// RecordErrorInput is the input schema for the record_error tool.
type RecordErrorInput struct {
	RunID      string `json:"run_id" jsonschema:"run the error belongs to"`
	Step       string `json:"step" jsonschema:"pipeline step that failed"`
	Message    string `json:"message" jsonschema:"error message"`
	Code       string `json:"error_code,omitempty" jsonschema:"machine readable error code"`
	Exception  string `json:"exception,omitempty" jsonschema:"exception type"`
	Attempt    int    `json:"attempt,omitempty" jsonschema:"retry attempt"`
	PageNumber int    `json:"page_number,omitempty" jsonschema:"page the error occurred on"`
}

// RecordErrorOutput is the output schema for the record_error tool.
type RecordErrorOutput struct {
	ErrorID string `json:"error_id"`
	RunID   string `json:"run_id"`
}

// LatestRunInput is the input schema for the latest_run tool.
type LatestRunInput struct {
	DocumentID      string `json:"document_id" jsonschema:"document to look up"`
	PipelineVersion string `json:"pipeline_version" jsonschema:"pipeline version to look up"`
}

// LatestVersionInput is the input schema for the latest_version tool.
type LatestVersionInput struct {
	DocumentID string `json:"document_id" jsonschema:"document to look up"`
}

// LatestVersionOutput is the output schema for the latest_version tool.
type LatestVersionOutput struct {
	DocumentID      string `json:"document_id"`
	PipelineVersion string `json:"pipeline_version"`
}

// ChunkInput describes one chunk of a put_chunks call.
type ChunkInput struct {
	ChunkID     string `json:"chunk_id,omitempty" jsonschema:"chunk ID; derived from document, version and index when empty"`
	Index       int    `json:"index" jsonschema:"zero-based chunk index"`
	TextURI     string `json:"text_uri" jsonschema:"location of the chunk text"`
	SHA256      string `json:"sha256" jsonschema:"hex SHA-256 of the chunk text"`
	TokenCount  int    `json:"token_count,omitempty" jsonschema:"token count"`
	SectionPath string `json:"section_path,omitempty" jsonschema:"section heading path"`
	PageStart   int    `json:"page_start,omitempty" jsonschema:"first page, 1-based"`
	PageEnd     int    `json:"page_end,omitempty" jsonschema:"last page, 1-based"`
}

// PutChunksInput is the input schema for the put_chunks tool.
type PutChunksInput struct {
	DocumentID      string       `json:"document_id" jsonschema:"document the chunks belong to"`
	PipelineVersion string       `json:"pipeline_version" jsonschema:"pipeline version that produced the chunks"`
	Chunks          []ChunkInput `json:"chunks" jsonschema:"complete chunk set, indexes dense from zero"`
}

// PutChunksOutput is the output schema for the put_chunks tool.
type PutChunksOutput struct {
	ChunkIDs []string `json:"chunk_ids"`
	Count    int      `json:"count"`
}

// EnqueueReviewInput is the input schema for the enqueue_review tool.
type EnqueueReviewInput struct {
	DocumentID      string `json:"document_id" jsonschema:"document to review"`
	PipelineVersion string `json:"pipeline_version" jsonschema:"pipeline version to review"`
	Reason          string `json:"reason" jsonschema:"why the document needs review"`
}

// ResolveReviewInput is the input schema for the resolve_review tool.
type ResolveReviewInput struct {
	ReviewID string `json:"review_id" jsonschema:"review entry to resolve"`
}

// ReviewOutput describes a review entry.
type ReviewOutput struct {
	ReviewID        string `json:"review_id"`
	DocumentID      string `json:"document_id"`
	PipelineVersion string `json:"pipeline_version"`
	Reason          string `json:"reason"`
	Status          string `json:"status"`
}

// SearchInput is the input schema for the search_documents tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query; every term must match"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum number of results to return"`
}

// SearchOutput is the output schema for the search_documents tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID  string `json:"document_id"`
	Title       string `json:"title"`
	PreviewText string `json:"preview_text,omitempty"`
	UpdatedAt   string `json:"updated_at"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "register_document",
		Description: "Register a document, or refresh the metadata of a known one",
	}, s.handleRegisterDocument)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "advance_status",
		Description: "Advance the lifecycle status of a document",
	}, s.handleAdvanceStatus)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "start_run",
		Description: "Start a processing run, or return the run already started for the idempotency key",
	}, s.handleStartRun)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "finish_run",
		Description: "Finish a processing run exactly once",
	}, s.handleFinishRun)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "latest_run",
		Description: "Get the most recently started run of a document version",
	}, s.handleLatestRun)

	if s.ports.Errors != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "record_error",
			Description: "Append a structured error to a processing run",
		}, s.handleRecordError)
	}

	if s.ports.Artifacts != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "latest_version",
			Description: "Get the pipeline version of the newest successful run of a document",
		}, s.handleLatestVersion)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "put_chunks",
			Description: "Replace the chunk set of a document version",
		}, s.handlePutChunks)
	}

	if s.ports.Reviews != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "enqueue_review",
			Description: "Escalate a document version for human review",
		}, s.handleEnqueueReview)
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "resolve_review",
			Description: "Resolve an open review entry",
		}, s.handleResolveReview)
	}

	if s.ports.Search != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "search_documents",
			Description: "Search documents by title, author and text",
		}, s.handleSearch)
	}
}

func (s *Server) handleRegisterDocument(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RegisterDocumentInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	doc, err := s.ports.Documents.Register(ctx, driving.RegisterDocumentRequest{
		ID:        input.DocumentID,
		Source:    input.Source,
		SourceURI: input.SourceURI,
		Metadata: domain.DocumentMetadata{
			Title:              input.Title,
			Author:             input.Author,
			ContentType:        input.ContentType,
			ContentFingerprint: input.ContentFingerprint,
		},
	})
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, toDocumentOutput(doc), nil
}

func (s *Server) handleAdvanceStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AdvanceStatusInput,
) (*mcp.CallToolResult, DocumentOutput, error) {
	doc, err := s.ports.Documents.AdvanceStatus(ctx, input.DocumentID, domain.DocumentStatus(input.Status))
	if err != nil {
		return nil, DocumentOutput{}, err
	}
	return nil, toDocumentOutput(doc), nil
}

func (s *Server) handleStartRun(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input StartRunInput,
) (*mcp.CallToolResult, RunOutput, error) {
	key := input.IdempotencyKey
	if key == "" && input.DocumentID != "" && input.ContentFingerprint != "" {
		key = domain.IdempotencyKey(input.PipelineVersion, input.DocumentID, input.ContentFingerprint)
	}

	run, created, err := s.ports.Runs.StartRun(ctx, driving.StartRunRequest{
		CorrelationID:   input.CorrelationID,
		PipelineVersion: input.PipelineVersion,
		IdempotencyKey:  key,
		DocumentID:      input.DocumentID,
	})
	if err != nil {
		return nil, RunOutput{}, err
	}

	out := toRunOutput(run)
	out.Created = created
	return nil, out, nil
}

func (s *Server) handleFinishRun(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FinishRunInput,
) (*mcp.CallToolResult, RunOutput, error) {
	run, err := s.ports.Runs.FinishRun(ctx, driving.FinishRunRequest{
		RunID:  input.RunID,
		Status: domain.RunStatus(input.Status),
		Metrics: domain.RunMetrics{
			DurationMS:     input.DurationMS,
			ItemsProcessed: input.ItemsProcessed,
			PagesProcessed: input.PagesProcessed,
			ChunksWritten:  input.ChunksWritten,
		},
	})
	if err != nil {
		return nil, RunOutput{}, err
	}
	return nil, toRunOutput(run), nil
}

func (s *Server) handleLatestRun(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LatestRunInput,
) (*mcp.CallToolResult, RunOutput, error) {
	run, err := s.ports.Runs.LatestRunFor(ctx, input.DocumentID, input.PipelineVersion)
	if err != nil {
		return nil, RunOutput{}, err
	}
	return nil, toRunOutput(run), nil
}

func (s *Server) handleRecordError(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecordErrorInput,
) (*mcp.CallToolResult, RecordErrorOutput, error) {
	recorded, err := s.ports.Errors.RecordError(ctx, driving.RecordErrorRequest{
		RunID:   input.RunID,
		Step:    input.Step,
		Message: input.Message,
		Code:    input.Code,
		Details: domain.ErrorDetails{
			Exception:  input.Exception,
			Attempt:    input.Attempt,
			PageNumber: input.PageNumber,
		},
	})
	if err != nil {
		return nil, RecordErrorOutput{}, err
	}
	return nil, RecordErrorOutput{ErrorID: recorded.ID, RunID: recorded.RunID}, nil
}

func (s *Server) handleLatestVersion(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LatestVersionInput,
) (*mcp.CallToolResult, LatestVersionOutput, error) {
	v, err := s.ports.Artifacts.GetLatestVersion(ctx, input.DocumentID)
	if err != nil {
		return nil, LatestVersionOutput{}, err
	}
	return nil, LatestVersionOutput{DocumentID: input.DocumentID, PipelineVersion: v}, nil
}

func (s *Server) handlePutChunks(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PutChunksInput,
) (*mcp.CallToolResult, PutChunksOutput, error) {
	chunks := make([]domain.Chunk, len(input.Chunks))
	for i, c := range input.Chunks {
		chunks[i] = domain.Chunk{
			ID:              c.ChunkID,
			DocumentID:      input.DocumentID,
			PipelineVersion: input.PipelineVersion,
			Index:           c.Index,
			TextURI:         c.TextURI,
			SHA256:          c.SHA256,
			TokenCount:      c.TokenCount,
			SectionPath:     c.SectionPath,
			PageStart:       c.PageStart,
			PageEnd:         c.PageEnd,
		}
	}

	stored, err := s.ports.Artifacts.PutChunks(ctx, input.DocumentID, input.PipelineVersion, chunks)
	if err != nil {
		return nil, PutChunksOutput{}, err
	}

	out := PutChunksOutput{ChunkIDs: make([]string, len(stored)), Count: len(stored)}
	for i := range stored {
		out.ChunkIDs[i] = stored[i].ID
	}
	return nil, out, nil
}

func (s *Server) handleEnqueueReview(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input EnqueueReviewInput,
) (*mcp.CallToolResult, ReviewOutput, error) {
	entry, err := s.ports.Reviews.Enqueue(ctx, driving.EnqueueReviewRequest{
		DocumentID:      input.DocumentID,
		PipelineVersion: input.PipelineVersion,
		Reason:          input.Reason,
	})
	if err != nil {
		return nil, ReviewOutput{}, err
	}
	return nil, toReviewOutput(entry), nil
}

func (s *Server) handleResolveReview(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResolveReviewInput,
) (*mcp.CallToolResult, ReviewOutput, error) {
	entry, err := s.ports.Reviews.Resolve(ctx, input.ReviewID)
	if err != nil {
		return nil, ReviewOutput{}, err
	}
	return nil, toReviewOutput(entry), nil
}

// handleSearch handles the search_documents tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	hits, err := s.ports.Search.Search(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(hits)),
		Count:   len(hits),
	}

	for i := range hits {
		output.Results[i] = SearchResultOutput{
			DocumentID:  hits[i].DocumentID,
			Title:       hits[i].Title,
			PreviewText: hits[i].PreviewText,
			UpdatedAt:   formatTime(hits[i].UpdatedAt),
		}
	}

	return nil, output, nil
}

func toDocumentOutput(doc *domain.Document) DocumentOutput {
	return DocumentOutput{
		DocumentID:     doc.ID,
		Source:         doc.Source,
		SourceURI:      doc.SourceURI,
		Status:         string(doc.Status),
		PreviousStatus: string(doc.PreviousStatus),
		Title:          doc.Title,
		UpdatedAt:      formatTime(doc.UpdatedAt),
	}
}

func toRunOutput(run *domain.ProcessingRun) RunOutput {
	return RunOutput{
		RunID:           run.ID,
		CorrelationID:   run.CorrelationID,
		PipelineVersion: run.PipelineVersion,
		DocumentID:      run.DocumentID,
		IdempotencyKey:  run.IdempotencyKey,
		Status:          string(run.Status),
		StartedAt:       formatTime(run.StartedAt),
		FinishedAt:      formatTime(run.FinishedAt),
	}
}

func toReviewOutput(entry *domain.ReviewEntry) ReviewOutput {
	return ReviewOutput{
		ReviewID:        entry.ID,
		DocumentID:      entry.DocumentID,
		PipelineVersion: entry.PipelineVersion,
		Reason:          entry.Reason,
		Status:          string(entry.Status),
	}
}

// formatTime renders t as RFC 3339, or empty when unset.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
