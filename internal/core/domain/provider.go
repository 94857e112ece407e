package domain

// AIProvider identifies an AI service backend.
type AIProvider string

// Supported providers.
const (
	AIProviderOpenAI AIProvider = "openai"
	AIProviderOllama AIProvider = "ollama"
)

// EmbeddingSettings configures the embedding provider.
type EmbeddingSettings struct {
	// Provider selects the backend.
	Provider AIProvider

	// APIKey authenticates hosted providers. Unused by ollama.
	APIKey string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// Model is the embedding model name. Empty uses the provider
	// default.
	Model string

	// Dimensions overrides the vector size where the model supports
	// truncated embeddings.
	Dimensions int
}

// IsConfigured reports whether the settings name a usable provider.
// Hosted providers additionally need a key.
func (s *EmbeddingSettings) IsConfigured() bool {
	switch s.Provider {
	case AIProviderOllama:
		return true
	case AIProviderOpenAI:
		return s.APIKey != ""
	default:
		return false
	}
}

// LLMSettings configures the completion provider.
type LLMSettings struct {
	// Provider selects the backend.
	Provider AIProvider

	// APIKey authenticates hosted providers. Unused by ollama.
	APIKey string

	// BaseURL overrides the provider endpoint.
	BaseURL string

	// Model is the completion model name. Empty uses the provider
	// default.
	Model string

	// RequestsPerMinute throttles completion calls at the transport
	// boundary. 0 uses the provider default.
	RequestsPerMinute int
}

// IsConfigured reports whether the settings name a usable provider.
// Hosted providers additionally need a key.
func (s *LLMSettings) IsConfigured() bool {
	switch s.Provider {
	case AIProviderOllama:
		return true
	case AIProviderOpenAI:
		return s.APIKey != ""
	default:
		return false
	}
}

// CatalogSettings locates the OSCAL documents a generation run maps
// against.
type CatalogSettings struct {
	// CatalogPath is the OSCAL catalog JSON file.
	CatalogPath string

	// ProfilePath is the OSCAL profile JSON file. Optional; without it
	// parameters resolve from catalog prose alone.
	ProfilePath string
}

// AnalysisSettings carries extra ignore entries for the repository
// walk, on top of the built-in lists.
type AnalysisSettings struct {
	IgnoreDirs       []string
	IgnoreExtensions []string
	IgnorePatterns   []string
}

// AppSettings aggregates every user-tunable setting.
type AppSettings struct {
	Embedding  EmbeddingSettings
	LLM        LLMSettings
	Generation GenerationSettings
	Catalog    CatalogSettings
	Analysis   AnalysisSettings
}

// DefaultAppSettings returns settings for a local ollama setup with the
// reference generation tunables.
func DefaultAppSettings() *AppSettings {
	return &AppSettings{
		Embedding:  EmbeddingSettings{Provider: AIProviderOllama},
		LLM:        LLMSettings{Provider: AIProviderOllama},
		Generation: DefaultGenerationSettings(),
	}
}
