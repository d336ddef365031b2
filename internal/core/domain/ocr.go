package domain

import (
	"strings"
	"time"
	"unicode"
)

// OcrRun is one OCR attempt over a document version.
// A document may have many; choosing the authoritative one is left to callers.
type OcrRun struct {
	ID              string
	DocumentID      string
	PipelineVersion string
	Engine          string
	Status          RunStatus
	Metrics         OcrMetrics

	CreatedAt  time.Time
	FinishedAt time.Time
}

// OcrMetrics summarise an OCR run.
type OcrMetrics struct {
	Pages       int   `json:"pages"`
	PagesFailed int   `json:"pages_failed"`
	DurationMS  int64 `json:"duration_ms"`

	Extra map[string]any `json:"-"`
}

// MarshalJSON implements json.Marshaler.
func (m OcrMetrics) MarshalJSON() ([]byte, error) {
	type plain OcrMetrics
	return marshalWithExtra(plain(m), m.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *OcrMetrics) UnmarshalJSON(data []byte) error {
	type plain OcrMetrics
	var p plain
	extra, err := unmarshalWithExtra(data, &p)
	if err != nil {
		return err
	}
	*m = OcrMetrics(p)
	m.Extra = extra
	return nil
}

// Merge overlays the non-zero fields and extra keys of update onto m.
func (m OcrMetrics) Merge(update OcrMetrics) OcrMetrics {
	out := m
	if update.Pages != 0 {
		out.Pages = update.Pages
	}
	if update.PagesFailed != 0 {
		out.PagesFailed = update.PagesFailed
	}
	if update.DurationMS != 0 {
		out.DurationMS = update.DurationMS
	}
	if len(update.Extra) > 0 {
		out.Extra = make(map[string]any, len(m.Extra)+len(update.Extra))
		for k, v := range m.Extra {
			out.Extra[k] = v
		}
		for k, v := range update.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// OcrPage is the consensus result for one page of an OCR run.
type OcrPage struct {
	RunID      string
	PageNumber int

	// ConsensusURI locates the merged page text.
	ConsensusURI string
	Quality      PageQuality

	UpdatedAt time.Time
}

// PageQuality is the quality report for a page of OCR output.
type PageQuality struct {
	Chars          int     `json:"chars"`
	AlphaChars     int     `json:"alpha_chars"`
	AlphaRatio     float64 `json:"alpha_ratio"`
	PrintableRatio float64 `json:"printable_ratio"`
	LooksEmpty     bool    `json:"looks_empty"`

	Extra map[string]any `json:"-"`
}

// MarshalJSON implements json.Marshaler.
func (q PageQuality) MarshalJSON() ([]byte, error) {
	type plain PageQuality
	return marshalWithExtra(plain(q), q.Extra)
}

// UnmarshalJSON implements json.Unmarshaler.
func (q *PageQuality) UnmarshalJSON(data []byte) error {
	type plain PageQuality
	var p plain
	extra, err := unmarshalWithExtra(data, &p)
	if err != nil {
		return err
	}
	*q = PageQuality(p)
	q.Extra = extra
	return nil
}

// AssessOCRText measures the quality of OCR output for a page.
func AssessOCRText(text string) PageQuality {
	normalized := strings.TrimSpace(text)
	if normalized == "" {
		return PageQuality{LooksEmpty: true}
	}

	var chars, alpha, printable int
	for _, r := range normalized {
		chars++
		if isASCIILetter(r) {
			alpha++
		}
		if r == '\n' || r == '\t' || (r >= 0x20 && r <= 0x7E) {
			printable++
		}
	}

	return PageQuality{
		Chars:          chars,
		AlphaChars:     alpha,
		AlphaRatio:     float64(alpha) / float64(chars),
		PrintableRatio: float64(printable) / float64(chars),
	}
}

// QualityGate holds the thresholds an OCR page must meet.
type QualityGate struct {
	MinCharsPerPage   int
	MinAlphaRatio     float64
	MinPrintableRatio float64
}

// DefaultQualityGate returns the default OCR page thresholds.
func DefaultQualityGate() QualityGate {
	return QualityGate{
		MinCharsPerPage:   40,
		MinAlphaRatio:     0.10,
		MinPrintableRatio: 0.85,
	}
}

// Passes reports whether q meets every threshold of g.
func (g QualityGate) Passes(q PageQuality) bool {
	if q.LooksEmpty {
		return false
	}
	return q.Chars >= g.MinCharsPerPage &&
		q.AlphaRatio >= g.MinAlphaRatio &&
		q.PrintableRatio >= g.MinPrintableRatio
}

func isASCIILetter(r rune) bool {
	return r <= unicode.MaxASCII && unicode.IsLetter(r)
}
