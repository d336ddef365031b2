package driving

import "github.com/custodia-labs/ragledger/internal/core/domain"

// SettingsService resolves application settings from configuration.
type SettingsService interface {
	// Get returns the current settings, defaults applied.
	Get() domain.Settings

	// Value returns the raw configuration value stored under key.
	Value(key string) (any, bool)

	// Set stores a configuration value by dot-notation key.
	Set(key string, value any) error

	// Path returns the configuration file path.
	Path() string
}
