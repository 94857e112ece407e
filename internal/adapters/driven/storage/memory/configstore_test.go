package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_SetAndGet(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("embedding.provider", "ollama"))

	val, ok := store.Get("embedding.provider")
	assert.True(t, ok)
	assert.Equal(t, "ollama", val)

	_, ok = store.Get("llm.provider")
	assert.False(t, ok)
}

func TestConfigStore_SetReplaces(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.model", "llama3"))
	require.NoError(t, store.Set("llm.model", "gpt-4o"))

	assert.Equal(t, "gpt-4o", store.GetString("llm.model"))
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("llm.model", "llama3"))
	require.NoError(t, store.Set("generation.workers", 4))
	require.NoError(t, store.Set("generation.top_k", int64(15)))
	require.NoError(t, store.Set("verbose", true))
	require.NoError(t, store.Set("analysis.ignore_extensions", []string{".proto", ".lock"}))
	require.NoError(t, store.Set("analysis.ignore_dirs", []any{"vendor", "dist"}))

	assert.Equal(t, "llama3", store.GetString("llm.model"))
	assert.Equal(t, 4, store.GetInt("generation.workers"))
	assert.Equal(t, 15, store.GetInt("generation.top_k"))
	assert.True(t, store.GetBool("verbose"))
	assert.Equal(t, []string{".proto", ".lock"}, store.GetStringSlice("analysis.ignore_extensions"))
	assert.Equal(t, []string{"vendor", "dist"}, store.GetStringSlice("analysis.ignore_dirs"))
}

func TestConfigStore_TypedGetters_MissingOrWrongType(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("generation.top_k", "fifteen"))

	assert.Zero(t, store.GetInt("generation.top_k"))
	assert.Empty(t, store.GetString("llm.model"))
	assert.False(t, store.GetBool("missing"))
	assert.Nil(t, store.GetStringSlice("missing"))
}

func TestConfigStore_SaveLoadAreNoOps(t *testing.T) {
	store := NewConfigStore()

	require.NoError(t, store.Set("catalog.path", "/catalog.json"))
	require.NoError(t, store.Save())
	require.NoError(t, store.Load())

	assert.Equal(t, "/catalog.json", store.GetString("catalog.path"))
	assert.Equal(t, ":memory:", store.Path())
}

func TestConfigStore_ConcurrentAccess(t *testing.T) {
	store := NewConfigStore()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = store.Set("generation.workers", j)
				_ = store.GetInt("generation.workers")
			}
		}()
	}
	wg.Wait()

	_, ok := store.Get("generation.workers")
	assert.True(t, ok)
}
