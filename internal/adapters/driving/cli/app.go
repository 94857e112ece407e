package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/oscalgen-cli/internal/adapters/driven/ai"
	"github.com/custodia-labs/oscalgen-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/oscalgen-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/oscalgen-cli/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/oscalgen-cli/internal/core/services"
	"github.com/custodia-labs/oscalgen-cli/internal/normalisers/source"
)

// Persisted index filenames under the data directory.
const (
	chunkIndexFile   = "chunks.vec"
	summaryIndexFile = "summaries.vec"
)

var dataDir string

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "",
		"data directory for the index and metadata (default ~/.oscalgen/data)")
}

// app holds the wired adapter set behind one command invocation.
type app struct {
	settings  *domain.AppSettings
	prompts   driven.PromptStore
	store     *sqlite.Store
	embedding driven.EmbeddingService
	llm       driven.LLMService
	dataDir   string
}

// newApp wires config, storage and provider adapters. The embedding
// provider is always required; the LLM provider only when needLLM is
// set, so plain analysis works without a completion model.
func newApp(needLLM bool) (*app, error) {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	settings, err := services.NewSettingsService(configStore).Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	promptStore, err := file.NewPromptStore("")
	if err != nil {
		return nil, fmt.Errorf("open prompt store: %w", err)
	}

	dir, err := resolveDataDir()
	if err != nil {
		return nil, err
	}
	store, err := sqlite.NewStore(dir)
	if err != nil {
		return nil, fmt.Errorf("open metadata store: %w", err)
	}

	a := &app{
		settings: settings,
		prompts:  promptStore,
		store:    store,
		dataDir:  dir,
	}

	a.embedding, err = ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		a.Close()
		return nil, err
	}
	if a.embedding == nil {
		a.Close()
		return nil, fmt.Errorf("no embedding provider configured; set embedding.provider in %s", configStore.Path())
	}

	if needLLM {
		a.llm, err = ai.CreateAndValidateLLMService(&settings.LLM)
		if err != nil {
			a.Close()
			return nil, err
		}
		if a.llm == nil {
			a.Close()
			return nil, fmt.Errorf("no llm provider configured; set llm.provider in %s", configStore.Path())
		}
	}

	return a, nil
}

// Close releases every held resource. Safe on a partially built app.
func (a *app) Close() {
	if a.embedding != nil {
		a.embedding.Close()
	}
	if a.llm != nil {
		a.llm.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}

func (a *app) chunkIndexPath() string {
	return filepath.Join(a.dataDir, chunkIndexFile)
}

func (a *app) summaryIndexPath() string {
	return filepath.Join(a.dataDir, summaryIndexFile)
}

// loadIndex opens a persisted index, telling the user to analyse first
// when it does not exist yet.
func (a *app) loadIndex(path string) (*flat.Index, error) {
	idx, err := flat.Load(path)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("index %s not found; run 'oscalgen analyze' first", path)
	}
	return idx, err
}

// loadOrCreateIndex opens a persisted index, falling back to an empty
// one sized for the active embedding model.
func (a *app) loadOrCreateIndex(path string) (*flat.Index, error) {
	idx, err := flat.Load(path)
	if errors.Is(err, domain.ErrNotFound) {
		return flat.New(a.embedding.Dimensions())
	}
	return idx, err
}

// walkIgnore maps the configured extra ignore entries onto the walker.
func (a *app) walkIgnore() source.Ignore {
	return source.Ignore{
		Dirs:         a.settings.Analysis.IgnoreDirs,
		Extensions:   a.settings.Analysis.IgnoreExtensions,
		NamePatterns: a.settings.Analysis.IgnorePatterns,
	}
}

func resolveDataDir() (string, error) {
	if dataDir != "" {
		return dataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".oscalgen", "data"), nil
}
