package driving

import "github.com/custodia-labs/stockwatch/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings. Secrets are never written.
	Save(settings *domain.AppSettings) error

	// SetSourceMode updates the source mode.
	SetSourceMode(mode domain.SourceMode) error

	// Validate checks that current settings can drive a pass.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
