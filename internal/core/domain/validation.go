package domain

import (
	"strings"
	"unicode/utf8"
)

// Extraction validation issue codes.
const (
	IssueExtractionEmpty    = "extraction_empty"
	IssueExtractionTooShort = "extraction_too_short"
	IssueExtractionLowAlpha = "extraction_low_alpha_ratio"
)

// ValidationIssue describes a quality problem found in extracted text.
type ValidationIssue struct {
	Code    string
	Message string
	Details map[string]any
}

// ExtractionGate holds the thresholds extracted text must meet.
type ExtractionGate struct {
	MinChars      int
	MinAlphaRatio float64
}

// DefaultExtractionGate returns the default extraction thresholds.
func DefaultExtractionGate() ExtractionGate {
	return ExtractionGate{MinChars: 200, MinAlphaRatio: 0.15}
}

// Validate returns the issues found in text. Empty text yields a single issue.
func (g ExtractionGate) Validate(text, contentType string) []ValidationIssue {
	normalized := strings.TrimSpace(text)
	if normalized == "" {
		return []ValidationIssue{{Code: IssueExtractionEmpty, Message: "Extracted text is empty."}}
	}

	var issues []ValidationIssue
	chars := utf8.RuneCountInString(normalized)
	if chars < g.MinChars {
		issues = append(issues, ValidationIssue{
			Code:    IssueExtractionTooShort,
			Message: "Extracted text is too short.",
			Details: map[string]any{"chars": chars, "min_chars": g.MinChars},
		})
	}

	alpha := 0
	for _, r := range normalized {
		if isASCIILetter(r) {
			alpha++
		}
	}
	ratio := float64(alpha) / float64(chars)
	if ratio < g.MinAlphaRatio {
		issues = append(issues, ValidationIssue{
			Code:    IssueExtractionLowAlpha,
			Message: "Extracted text looks low-quality (low alphabetic ratio).",
			Details: map[string]any{
				"alpha_ratio":     ratio,
				"min_alpha_ratio": g.MinAlphaRatio,
				"content_type":    contentType,
			},
		})
	}

	return issues
}
