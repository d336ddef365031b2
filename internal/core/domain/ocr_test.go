package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestRunStatus tests validity and terminality of run statuses
func TestRunStatus(t *testing.T) {
	assert.False(t, RunPending.IsTerminal())
	assert.False(t, RunRunning.IsTerminal())
	for _, s := range TerminalRunStatuses {
		assert.True(t, s.IsValid())
		assert.True(t, s.IsTerminal())
	}
	assert.False(t, RunStatus("done").IsValid())
}

// TestAssessOCRText tests page quality measurements
func TestAssessOCRText(t *testing.T) {
	t.Run("blank page", func(t *testing.T) {
		q := AssessOCRText("  \n\t ")
		assert.True(t, q.LooksEmpty)
		assert.Zero(t, q.Chars)
	})

	t.Run("clean text", func(t *testing.T) {
		q := AssessOCRText("abcd 1234")
		assert.False(t, q.LooksEmpty)
		assert.Equal(t, 9, q.Chars)
		assert.Equal(t, 4, q.AlphaChars)
		assert.InDelta(t, 4.0/9.0, q.AlphaRatio, 1e-9)
		assert.InDelta(t, 1.0, q.PrintableRatio, 1e-9)
	})

	t.Run("non-ascii lowers printable ratio", func(t *testing.T) {
		q := AssessOCRText("abéé")
		assert.Equal(t, 4, q.Chars)
		assert.Equal(t, 2, q.AlphaChars)
		assert.InDelta(t, 0.5, q.PrintableRatio, 1e-9)
	})
}

// TestQualityGate_Passes tests OCR page thresholds
func TestQualityGate_Passes(t *testing.T) {
	gate := DefaultQualityGate()

	assert.True(t, gate.Passes(AssessOCRText(strings.Repeat("lorem ipsum ", 10))))
	assert.False(t, gate.Passes(AssessOCRText("")))
	assert.False(t, gate.Passes(AssessOCRText("short")))
	assert.False(t, gate.Passes(AssessOCRText(strings.Repeat("1234 ", 20))))
}

// TestOcrMetrics_Merge tests metric overlay on finish
func TestOcrMetrics_Merge(t *testing.T) {
	base := OcrMetrics{Pages: 10, DurationMS: 500, Extra: map[string]any{"engine_version": "5.3"}}
	merged := base.Merge(OcrMetrics{PagesFailed: 2, Extra: map[string]any{"dpi": 300}})

	assert.Equal(t, 10, merged.Pages)
	assert.Equal(t, 2, merged.PagesFailed)
	assert.Equal(t, int64(500), merged.DurationMS)
	assert.Equal(t, "5.3", merged.Extra["engine_version"])
	assert.Equal(t, 300, merged.Extra["dpi"])
	assert.NotContains(t, base.Extra, "dpi")
}
