package driving

import "github.com/niemi-bil/infoflex-bridge/internal/core/domain"

// SettingsService materialises application settings from configuration.
type SettingsService interface {
	// Get returns the current settings with defaults applied.
	Get() (*domain.Settings, error)

	// Set stores a single configuration key.
	Set(key string, value any) error

	// Reload re-reads configuration from storage.
	Reload() error
}
