package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragledger/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragledger/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/services"
)

// setupTestServices wires the commands to a ledger over a fresh in-memory
// store and a config file in a temp directory.
func setupTestServices(t *testing.T) *services.Ledger {
	t.Helper()

	store := memory.NewStore()
	ledger := services.NewLedger(services.Stores{
		Documents:   store.DocumentStore(),
		Artifacts:   store.ArtifactStore(),
		Runs:        store.RunStore(),
		Errors:      store.ErrorStore(),
		OCR:         store.OcrStore(),
		Enrichments: store.EnrichmentStore(),
		Reviews:     store.ReviewStore(),
		Projections: store.ProjectionStore(),
	}, domain.DefaultSettings())

	configStore, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	SetServices(&Services{
		Documents:   ledger.Documents,
		Artifacts:   ledger.Artifacts,
		Runs:        ledger.Runs,
		Errors:      ledger.Errors,
		OCR:         ledger.OCR,
		Enrichments: ledger.Enrichments,
		Reviews:     ledger.Reviews,
		Search:      ledger.Search,
		Settings:    services.NewSettingsService(configStore),
	})
	t.Cleanup(func() { SetServices(nil) })

	return ledger
}

// resetFlags restores every flag under cmd to its default. Flag variables
// are package level and would otherwise leak between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns everything written.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	resetFlags(rootCmd)
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// mustExecute runs the root command and fails the test on error.
func mustExecute(t *testing.T, args ...string) string {
	t.Helper()
	out, err := execute(t, args...)
	require.NoError(t, err, out)
	return out
}
