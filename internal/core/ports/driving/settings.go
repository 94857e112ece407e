package driving

import "github.com/custodia-labs/oscalgen-cli/internal/core/domain"

// SettingsService loads and persists application settings.
type SettingsService interface {
	// Get retrieves current settings, with defaults filled in.
	Get() (*domain.AppSettings, error)

	// Save persists settings.
	Save(settings *domain.AppSettings) error
}
