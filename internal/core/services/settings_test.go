package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/oscalgen-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
)

func TestSettingsService_GetDefaults(t *testing.T) {
	svc := NewSettingsService(memory.NewConfigStore())

	settings, err := svc.Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
	assert.Equal(t, domain.AIProviderOllama, settings.LLM.Provider)
	assert.Equal(t, domain.DefaultTopK, settings.Generation.TopK)
	assert.Equal(t, domain.DefaultMaxCritiqueRetries, settings.Generation.MaxCritiqueRetries)
	assert.Equal(t, domain.DefaultWorkers, settings.Generation.Workers)
	assert.Equal(t, domain.DefaultConfigExtensions(), settings.Generation.ConfigExtensions)
	assert.Empty(t, settings.Catalog.CatalogPath)
}

func TestSettingsService_GetFromStore(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set("embedding.provider", "openai"))
	require.NoError(t, store.Set("embedding.api_key", "sk-test"))
	require.NoError(t, store.Set("embedding.dimensions", 1536))
	require.NoError(t, store.Set("llm.provider", "openai"))
	require.NoError(t, store.Set("llm.model", "gpt-4o"))
	require.NoError(t, store.Set("llm.requests_per_minute", 30))
	require.NoError(t, store.Set("generation.top_k", 8))
	require.NoError(t, store.Set("generation.workers", 4))
	require.NoError(t, store.Set("catalog.path", "/data/catalog.json"))
	require.NoError(t, store.Set("analysis.ignore_dirs", []string{"fixtures"}))

	settings, err := NewSettingsService(store).Get()
	require.NoError(t, err)

	assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
	assert.Equal(t, "sk-test", settings.Embedding.APIKey)
	assert.Equal(t, 1536, settings.Embedding.Dimensions)
	assert.True(t, settings.Embedding.IsConfigured())
	assert.Equal(t, "gpt-4o", settings.LLM.Model)
	assert.Equal(t, 30, settings.LLM.RequestsPerMinute)
	assert.Equal(t, 8, settings.Generation.TopK)
	assert.Equal(t, 4, settings.Generation.Workers)
	assert.Equal(t, "/data/catalog.json", settings.Catalog.CatalogPath)
	assert.Equal(t, []string{"fixtures"}, settings.Analysis.IgnoreDirs)
}

func TestSettingsService_SaveRoundTrip(t *testing.T) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store)

	in := domain.DefaultAppSettings()
	in.LLM.Provider = domain.AIProviderOpenAI
	in.LLM.APIKey = "sk-live"
	in.LLM.Model = "gpt-4o-mini"
	in.Generation.MaxCritiqueRetries = 5
	in.Catalog.CatalogPath = "/data/catalog.json"
	in.Catalog.ProfilePath = "/data/profile.json"

	require.NoError(t, svc.Save(in))

	out, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, out.LLM.Provider)
	assert.Equal(t, "sk-live", out.LLM.APIKey)
	assert.Equal(t, "gpt-4o-mini", out.LLM.Model)
	assert.Equal(t, 5, out.Generation.MaxCritiqueRetries)
	assert.Equal(t, "/data/profile.json", out.Catalog.ProfilePath)
}

func TestSettingsService_SaveKeepsStoredKey(t *testing.T) {
	store := memory.NewConfigStore()
	svc := NewSettingsService(store)

	first := domain.DefaultAppSettings()
	first.LLM.Provider = domain.AIProviderOpenAI
	first.LLM.APIKey = "sk-original"
	require.NoError(t, svc.Save(first))

	// Saving with an empty key must not wipe the stored credential.
	second := domain.DefaultAppSettings()
	second.LLM.Provider = domain.AIProviderOpenAI
	require.NoError(t, svc.Save(second))

	out, err := svc.Get()
	require.NoError(t, err)
	assert.Equal(t, "sk-original", out.LLM.APIKey)
}

func TestSettingsService_NormalisesGeneration(t *testing.T) {
	store := memory.NewConfigStore()
	require.NoError(t, store.Set("generation.top_k", -3))
	require.NoError(t, store.Set("generation.config_extensions", []string{"YAML", "", ".Toml"}))

	settings, err := NewSettingsService(store).Get()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultTopK, settings.Generation.TopK)
	assert.Equal(t, []string{".yaml", ".toml"}, settings.Generation.ConfigExtensions)
}
