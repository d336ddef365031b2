package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, verbose bool) *bytes.Buffer {
	t.Helper()
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verbose)
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Debug("run started", "run_id", "r-1", "created", true)

	out := buf.String()
	assert.Contains(t, out, "level=DEBUG")
	assert.Contains(t, out, `msg="run started"`)
	assert.Contains(t, out, "run_id=r-1")
	assert.Contains(t, out, "created=true")
}

func TestDebugAndInfo_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("hidden")
	Info("hidden")

	assert.Zero(t, buf.Len())
}

func TestWarnAndError_AlwaysEmitted(t *testing.T) {
	buf := capture(t, false)

	Warn("page below quality gate", "page", 3)
	Error("finish failed", "err", "boom")

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "page=3")
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "err=boom")
}

func TestSection(t *testing.T) {
	buf := capture(t, true)
	Section("Migrations")
	assert.Equal(t, "\n=== Migrations ===\n", buf.String())
}

func TestSection_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)
	Section("Migrations")
	assert.Zero(t, buf.Len())
}
