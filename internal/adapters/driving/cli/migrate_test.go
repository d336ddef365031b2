package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragledger/internal/adapters/driven/storage/sqlite"
)

func TestMigrate_ReportsSchemaVersion(t *testing.T) {
	store, err := sqlite.NewStore(t.TempDir())
	require.NoError(t, err)

	closed := false
	SetServices(&Services{
		Schema: store,
		Close: func() error {
			closed = true
			return store.Close()
		},
	})
	t.Cleanup(func() { SetServices(nil) })

	out := mustExecute(t, "migrate")
	assert.Contains(t, out, "Ledger at "+store.Path())
	assert.Contains(t, out, "schema version")
	assert.True(t, closed)
}

func TestMigrate_NotConfigured(t *testing.T) {
	SetServices(nil)

	_, err := execute(t, "migrate")
	assert.EqualError(t, err, "ledger database not configured")
}

func TestBootstrap_RunsBeforeCommand(t *testing.T) {
	SetServices(nil)
	t.Cleanup(func() {
		SetBootstrap(nil)
		SetServices(nil)
	})

	var got Options
	SetBootstrap(func(opts Options) (*Services, error) {
		got = opts
		l := setupTestServices(t)
		return &Services{Documents: l.Documents, Reviews: l.Reviews}, nil
	})

	dir := t.TempDir()
	out := mustExecute(t, "--data-dir", dir, "review", "list")
	assert.Equal(t, dir, got.DataDir)
	assert.Contains(t, out, "Review queue is empty.")
}

func TestBootstrap_SkippedForVersion(t *testing.T) {
	SetServices(nil)
	t.Cleanup(func() { SetBootstrap(nil) })

	called := false
	SetBootstrap(func(Options) (*Services, error) {
		called = true
		return &Services{}, nil
	})

	mustExecute(t, "version")
	assert.False(t, called)
}
