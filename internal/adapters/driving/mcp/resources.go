package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ragledger/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for ledger resources.
	uriScheme = "ragledger://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "reviews",
		Name:        "reviews",
		Description: "Open entries of the human review queue",
		MIMEType:    "application/json",
	}, s.handleReviewsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{documentId}",
		Name:        "document",
		Description: "Registry entry of a document with its files and links",
		MIMEType:    "application/json",
	}, s.handleDocumentResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "runs/{runId}/errors",
		Name:        "run-errors",
		Description: "Errors recorded against a processing run",
		MIMEType:    "application/json",
	}, s.handleRunErrorsResource)
}

// handleReviewsResource returns the open review entries.
func (s *Server) handleReviewsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Reviews == nil {
		return jsonResult(req.Params.URI, []ReviewOutput{})
	}

	entries, err := s.ports.Reviews.List(ctx, domain.ReviewFilter{Status: domain.ReviewOpen})
	if err != nil {
		return nil, fmt.Errorf("listing reviews: %w", err)
	}

	out := make([]ReviewOutput, len(entries))
	for i := range entries {
		out[i] = toReviewOutput(&entries[i])
	}
	return jsonResult(req.Params.URI, out)
}

// documentResource is the JSON body of a document resource.
type documentResource struct {
	DocumentOutput
	Files []fileInfo `json:"files"`
	Links []linkInfo `json:"links"`
}

type fileInfo struct {
	Variant    string `json:"variant"`
	StorageURI string `json:"storage_uri"`
	SHA256     string `json:"sha256,omitempty"`
	Bytes      int64  `json:"bytes"`
}

type linkInfo struct {
	LinkType string `json:"link_type"`
	URL      string `json:"url"`
	Label    string `json:"label,omitempty"`
}

// handleDocumentResource returns a document with its files and links.
func (s *Server) handleDocumentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID := extractDocumentID(req.Params.URI)
	if docID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Documents.Get(ctx, docID)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	files, err := s.ports.Documents.ListFiles(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	links, err := s.ports.Documents.ListLinks(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("listing links: %w", err)
	}

	body := documentResource{
		DocumentOutput: toDocumentOutput(doc),
		Files:          make([]fileInfo, len(files)),
		Links:          make([]linkInfo, len(links)),
	}
	for i := range files {
		body.Files[i] = fileInfo{
			Variant:    files[i].Variant,
			StorageURI: files[i].StorageURI,
			SHA256:     files[i].SHA256,
			Bytes:      files[i].Bytes,
		}
	}
	for i := range links {
		body.Links[i] = linkInfo{
			LinkType: links[i].LinkType,
			URL:      links[i].URL,
			Label:    links[i].Label,
		}
	}

	return jsonResult(req.Params.URI, body)
}

type errorInfo struct {
	ErrorID   string `json:"error_id"`
	Step      string `json:"step"`
	Code      string `json:"error_code,omitempty"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

// handleRunErrorsResource returns the errors of a run, oldest first.
func (s *Server) handleRunErrorsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Errors == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	runID := extractRunID(req.Params.URI)
	if runID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	errs, err := s.ports.Errors.ErrorsForRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("listing errors: %w", err)
	}

	out := make([]errorInfo, len(errs))
	for i := range errs {
		out[i] = errorInfo{
			ErrorID:   errs[i].ID,
			Step:      errs[i].Step,
			Code:      errs[i].Code,
			Message:   errs[i].Message,
			CreatedAt: formatTime(errs[i].CreatedAt),
		}
	}
	return jsonResult(req.Params.URI, out)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractRunID extracts the run ID from a URI like ragledger://runs/{runId}/errors.
func extractRunID(uri string) string {
	const prefix = uriScheme + "runs/"
	const suffix = "/errors"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}

// extractDocumentID extracts the document ID from a URI like ragledger://documents/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "documents/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
