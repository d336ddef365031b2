package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
	"github.com/custodia-labs/ragledger/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// skipBootstrap marks commands that never touch the ledger.
const skipBootstrap = "skip-bootstrap"

// Options are the global flags every command shares.
type Options struct {
	DataDir   string
	ConfigDir string
	Verbose   bool
}

// SchemaInfo reports the state of the ledger database.
type SchemaInfo interface {
	SchemaVersion(ctx context.Context) (int, error)
	Path() string
}

// Services holds the driving ports the commands call.
type Services struct {
	Documents   driving.DocumentRegistry
	Artifacts   driving.ArtifactService
	Runs        driving.RunTracker
	Errors      driving.ErrorLedger
	OCR         driving.OcrTracker
	Enrichments driving.EnrichmentLedger
	Reviews     driving.ReviewQueue
	Search      driving.SearchProjection
	Settings    driving.SettingsService
	Schema      SchemaInfo

	// Close releases the resources behind the services. May be nil.
	Close func() error
}

// Bootstrap builds the services once the global flags are parsed.
type Bootstrap func(opts Options) (*Services, error)

var (
	options   Options
	bootstrap Bootstrap
	closer    func() error
)

var (
	documentRegistry driving.DocumentRegistry
	artifactService  driving.ArtifactService
	runTracker       driving.RunTracker
	errorLedger      driving.ErrorLedger
	ocrTracker       driving.OcrTracker
	enrichmentLedger driving.EnrichmentLedger
	reviewQueue      driving.ReviewQueue
	searchProjection driving.SearchProjection
	settingsService  driving.SettingsService
	schemaInfo       SchemaInfo
)

var rootCmd = &cobra.Command{
	Use:   "ragledger",
	Short: "Lineage ledger for document ingestion pipelines",
	Long: `ragledger records what happened to every document flowing through an
ingestion pipeline: its lifecycle status, versioned artifacts, processing
runs and errors, OCR attempts, chunk enrichments and the human review queue.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&options.DataDir, "data-dir", "", "ledger data directory (default ~/.ragledger/data)")
	flags.StringVar(&options.ConfigDir, "config-dir", "", "configuration directory (default ~/.ragledger)")
	flags.BoolVarP(&options.Verbose, "verbose", "v", false, "enable debug logging")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap sets the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices injects services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	documentRegistry = s.Documents
	artifactService = s.Artifacts
	runTracker = s.Runs
	errorLedger = s.Errors
	ocrTracker = s.OCR
	enrichmentLedger = s.Enrichments
	reviewQueue = s.Reviews
	searchProjection = s.Search
	settingsService = s.Settings
	schemaInfo = s.Schema
	closer = s.Close
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(options.Verbose)

	if cmd.Annotations[skipBootstrap] == "true" || bootstrap == nil || documentRegistry != nil {
		return nil
	}

	services, err := bootstrap(options)
	if err != nil {
		return fmt.Errorf("opening ledger: %w", err)
	}
	SetServices(services)

	if settingsService != nil && settingsService.Get().Verbose {
		logger.SetVerbose(true)
	}
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if closer == nil {
		return nil
	}
	err := closer()
	closer = nil
	return err
}

// errNotConfigured reports a command run without its service.
func errNotConfigured(name string) error {
	return errors.New(name + " not configured")
}
