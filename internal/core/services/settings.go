package services

import (
	"fmt"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedDims     = "embedding.dimensions"

	keyLLMProvider = "llm.provider"
	keyLLMModel    = "llm.model"
	keyLLMBaseURL  = "llm.base_url"
	keyLLMAPIKey   = "llm.api_key"
	keyLLMRPM      = "llm.requests_per_minute"

	keyGenTopK       = "generation.top_k"
	keyGenRetries    = "generation.max_critique_retries"
	keyGenWorkers    = "generation.workers"
	keyGenConfigExts = "generation.config_extensions"

	keyCatalogPath = "catalog.path"
	keyProfilePath = "catalog.profile_path"

	keyIgnoreDirs       = "analysis.ignore_dirs"
	keyIgnoreExtensions = "analysis.ignore_extensions"
	keyIgnorePatterns   = "analysis.ignore_patterns"
)

// SettingsService manages application settings on top of a config
// store.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Missing keys fall back
// to the defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:      s.configStore.GetString(keyEmbedModel),
			BaseURL:    s.configStore.GetString(keyEmbedBaseURL),
			APIKey:     s.configStore.GetString(keyEmbedAPIKey),
			Dimensions: s.configStore.GetInt(keyEmbedDims),
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:             s.configStore.GetString(keyLLMModel),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			RequestsPerMinute: s.configStore.GetInt(keyLLMRPM),
		},
		Generation: domain.GenerationSettings{
			TopK:               s.configStore.GetInt(keyGenTopK),
			MaxCritiqueRetries: s.configStore.GetInt(keyGenRetries),
			Workers:            s.configStore.GetInt(keyGenWorkers),
			ConfigExtensions:   s.configStore.GetStringSlice(keyGenConfigExts),
		}.Normalise(),
		Catalog: domain.CatalogSettings{
			CatalogPath: s.configStore.GetString(keyCatalogPath),
			ProfilePath: s.configStore.GetString(keyProfilePath),
		},
		Analysis: domain.AnalysisSettings{
			IgnoreDirs:       s.configStore.GetStringSlice(keyIgnoreDirs),
			IgnoreExtensions: s.configStore.GetStringSlice(keyIgnoreExtensions),
			IgnorePatterns:   s.configStore.GetStringSlice(keyIgnorePatterns),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	pairs := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, string(settings.Embedding.Provider)},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyEmbedDims, settings.Embedding.Dimensions},
		{keyLLMProvider, string(settings.LLM.Provider)},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMRPM, settings.LLM.RequestsPerMinute},
		{keyGenTopK, settings.Generation.TopK},
		{keyGenRetries, settings.Generation.MaxCritiqueRetries},
		{keyGenWorkers, settings.Generation.Workers},
		{keyGenConfigExts, settings.Generation.ConfigExtensions},
		{keyCatalogPath, settings.Catalog.CatalogPath},
		{keyProfilePath, settings.Catalog.ProfilePath},
		{keyIgnoreDirs, settings.Analysis.IgnoreDirs},
		{keyIgnoreExtensions, settings.Analysis.IgnoreExtensions},
		{keyIgnorePatterns, settings.Analysis.IgnorePatterns},
	}
	for _, p := range pairs {
		if err := s.configStore.Set(p.key, p.value); err != nil {
			return fmt.Errorf("save %s: %w", p.key, err)
		}
	}

	// API keys are only written when present so an empty form field
	// never wipes a stored credential.
	if settings.Embedding.APIKey != "" {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyEmbedAPIKey, err)
		}
	}
	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save %s: %w", keyLLMAPIKey, err)
		}
	}

	return s.configStore.Save()
}

// getProvider reads a provider key with a default.
func (s *SettingsService) getProvider(key string, fallback domain.AIProvider) domain.AIProvider {
	if value := s.configStore.GetString(key); value != "" {
		return domain.AIProvider(value)
	}
	return fallback
}
