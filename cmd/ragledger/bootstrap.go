package main

import (
	"fmt"

	"github.com/custodia-labs/ragledger/internal/adapters/driven/config/file"
	"github.com/custodia-labs/ragledger/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ragledger/internal/adapters/driving/cli"
	"github.com/custodia-labs/ragledger/internal/core/services"
	"github.com/custodia-labs/ragledger/internal/logger"
)

// bootstrap opens the configuration and the SQLite ledger and wires the
// services the commands run against.
func bootstrap(opts cli.Options) (*cli.Services, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings := settingsService.Get()

	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = settings.Storage.DataDir
	}

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, err
	}
	logger.Debug("ledger opened", "path", store.Path())

	ledger := services.NewLedger(services.Stores{
		Documents:   store.DocumentStore(),
		Artifacts:   store.ArtifactStore(),
		Runs:        store.RunStore(),
		Errors:      store.ErrorStore(),
		OCR:         store.OcrStore(),
		Enrichments: store.EnrichmentStore(),
		Reviews:     store.ReviewStore(),
		Projections: store.ProjectionStore(),
	}, settings)

	return &cli.Services{
		Documents:   ledger.Documents,
		Artifacts:   ledger.Artifacts,
		Runs:        ledger.Runs,
		Errors:      ledger.Errors,
		OCR:         ledger.OCR,
		Enrichments: ledger.Enrichments,
		Reviews:     ledger.Reviews,
		Search:      ledger.Search,
		Settings:    settingsService,
		Schema:      store,
		Close:       store.Close,
	}, nil
}
