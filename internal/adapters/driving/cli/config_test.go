package cli

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigSetAndGet(t *testing.T) {
	setupTestServices(t)

	out := mustExecute(t, "config", "set", "search.default_limit", "25")
	assert.Contains(t, out, "Set search.default_limit = 25")

	out = mustExecute(t, "config", "get", "search.default_limit")
	assert.Equal(t, "25\n", out)

	out = mustExecute(t, "config", "get")
	assert.Contains(t, out, "Effective settings:")
	assert.Contains(t, out, "search.default_limit:        25")
	assert.Contains(t, out, "mcp.port:                    0")
}

func TestConfigGet_UnsetKey(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "config", "get", "storage.data_dir")
	assert.EqualError(t, err, "storage.data_dir is not set")
}

func TestConfigPath(t *testing.T) {
	setupTestServices(t)

	out := mustExecute(t, "config", "path")
	assert.Equal(t, "config.toml", filepath.Base(strings.TrimSpace(out)))
}

func TestConfig_NotConfigured(t *testing.T) {
	SetServices(nil)

	_, err := execute(t, "config", "get")
	assert.EqualError(t, err, "settings service not configured")
}
