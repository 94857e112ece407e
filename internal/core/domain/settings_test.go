package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGenerationSettings_Normalise tests default filling
func TestGenerationSettings_Normalise(t *testing.T) {
	s := GenerationSettings{}.Normalise()

	assert.Equal(t, DefaultTopK, s.TopK)
	assert.Equal(t, DefaultMaxCritiqueRetries, s.MaxCritiqueRetries)
	assert.Equal(t, DefaultWorkers, s.Workers)
	assert.Equal(t, DefaultConfigExtensions(), s.ConfigExtensions)
}

// TestGenerationSettings_NormaliseExtensions tests extension cleanup
func TestGenerationSettings_NormaliseExtensions(t *testing.T) {
	s := GenerationSettings{ConfigExtensions: []string{"YAML", ".Json", ""}}.Normalise()

	assert.Equal(t, []string{".yaml", ".json"}, s.ConfigExtensions)
}

// TestGenerationSettings_AllowsExtension tests the allow-list check
func TestGenerationSettings_AllowsExtension(t *testing.T) {
	s := DefaultGenerationSettings()

	assert.True(t, s.AllowsExtension(".yaml"))
	assert.True(t, s.AllowsExtension(".YML"))
	assert.False(t, s.AllowsExtension(".exe"))
	assert.False(t, s.AllowsExtension(".md"))
	assert.False(t, s.AllowsExtension(""))
}
