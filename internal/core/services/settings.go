package services

import (
	"fmt"

	"github.com/custodia-labs/ragledger/internal/core/domain"
	"github.com/custodia-labs/ragledger/internal/core/ports/driven"
	"github.com/custodia-labs/ragledger/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsService resolves settings from a config store.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get returns the configured settings. Unset or zero values fall back to
// domain.DefaultSettings.
func (s *SettingsService) Get() domain.Settings {
	defaults := domain.DefaultSettings()
	if s.configStore == nil {
		return defaults
	}

	return domain.Settings{
		Storage: domain.StorageSettings{
			DataDir: s.getString(domain.KeyStorageDataDir, defaults.Storage.DataDir),
		},
		Search: domain.SearchSettings{
			DefaultLimit: s.getInt(domain.KeySearchDefaultLimit, defaults.Search.DefaultLimit),
		},
		MCP: domain.MCPSettings{
			Port: s.getInt(domain.KeyMCPPort, defaults.MCP.Port),
		},
		OCR: domain.QualityGate{
			MinCharsPerPage:   s.getInt(domain.KeyOCRMinCharsPerPage, defaults.OCR.MinCharsPerPage),
			MinAlphaRatio:     s.getFloat(domain.KeyOCRMinAlphaRatio, defaults.OCR.MinAlphaRatio),
			MinPrintableRatio: s.getFloat(domain.KeyOCRMinPrintableRatio, defaults.OCR.MinPrintableRatio),
		},
		Extraction: domain.ExtractionGate{
			MinChars:      s.getInt(domain.KeyExtractionMinChars, defaults.Extraction.MinChars),
			MinAlphaRatio: s.getFloat(domain.KeyExtractionMinAlpha, defaults.Extraction.MinAlphaRatio),
		},
		Verbose: s.getBool(domain.KeyLogVerbose, defaults.Verbose),
	}
}

// Value returns the raw configuration value stored under key.
func (s *SettingsService) Value(key string) (any, bool) {
	if s.configStore == nil {
		return nil, false
	}
	return s.configStore.Get(key)
}

// Set stores a configuration value.
func (s *SettingsService) Set(key string, value any) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Path returns the configuration file path.
func (s *SettingsService) Path() string {
	if s.configStore == nil {
		return ""
	}
	return s.configStore.Path()
}

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
