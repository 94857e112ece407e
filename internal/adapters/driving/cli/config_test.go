package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceConfigValue_Integer(t *testing.T) {
	assert.Equal(t, 15, coerceConfigValue("generation.top_k", "15"))
}

func TestCoerceConfigValue_String(t *testing.T) {
	assert.Equal(t, "gpt-4o", coerceConfigValue("llm.model", "gpt-4o"))
}

func TestCoerceConfigValue_ListKey(t *testing.T) {
	got := coerceConfigValue("analysis.ignore_dirs", "vendor, node_modules,,dist")
	assert.Equal(t, []string{"vendor", "node_modules", "dist"}, got)
}

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "(not set)", maskSecret(""))
	assert.Equal(t, "********", maskSecret("sk-abc"))
}
