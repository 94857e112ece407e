package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driven"
)

// --- Mock implementations shared by the service tests ---

// mockEmbeddingService implements driven.EmbeddingService.
// It returns a constant vector unless vectors maps a specific text.
type mockEmbeddingService struct {
	dimensions int
	vectors    map[string][]float32
	embedErr   error
}

func (m *mockEmbeddingService) Embed(_ context.Context, text string) ([]float32, error) {
	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return make([]float32, m.dim()), nil
}

func (m *mockEmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbeddingService) Dimensions() int { return m.dim() }
func (m *mockEmbeddingService) ModelName() string { return "mock-embed" }
func (m *mockEmbeddingService) Close() error      { return nil }

func (m *mockEmbeddingService) dim() int {
	if m.dimensions > 0 {
		return m.dimensions
	}
	return 4
}

// mockVectorIndex implements driven.VectorIndex over recorded hits.
type mockVectorIndex struct {
	mu        sync.Mutex
	hits      []driven.VectorHit
	inserted  map[string][]float32
	searchErr error
	insertErr error
}

func (m *mockVectorIndex) Insert(_ context.Context, id string, embedding []float32) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inserted == nil {
		m.inserted = make(map[string][]float32)
	}
	m.inserted[id] = embedding
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorIndex) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.hits)
	if len(m.inserted) > n {
		n = len(m.inserted)
	}
	return n
}

func (m *mockVectorIndex) Persist(_ string) error { return nil }
func (m *mockVectorIndex) Close() error           { return nil }

// mockLLMService implements driven.LLMService with scripted responses.
// Responses are returned in call order; the last one repeats.
type mockLLMService struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
}

func (m *mockLLMService) Complete(_ context.Context, prompt string, _ driven.CompleteOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.prompts)
	m.prompts = append(m.prompts, prompt)

	if call < len(m.errs) && m.errs[call] != nil {
		return "", m.errs[call]
	}
	if len(m.responses) == 0 {
		return "", fmt.Errorf("no scripted response for call %d", call)
	}
	if call >= len(m.responses) {
		return m.responses[len(m.responses)-1], nil
	}
	return m.responses[call], nil
}

func (m *mockLLMService) ModelName() string { return "mock-llm" }
func (m *mockLLMService) Close() error      { return nil }

func (m *mockLLMService) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// mockCatalogResolver implements driven.CatalogResolver from a fixed
// descriptor set.
type mockCatalogResolver struct {
	descriptors map[string]domain.ControlDescriptor
	resolveErr  error
}

func (m *mockCatalogResolver) Resolve(_ context.Context, controlIDs []string) ([]domain.ControlDescriptor, error) {
	if m.resolveErr != nil {
		return nil, m.resolveErr
	}
	out := make([]domain.ControlDescriptor, 0, len(controlIDs))
	for _, id := range controlIDs {
		ctrl, ok := m.descriptors[id]
		if !ok {
			return nil, fmt.Errorf("control %s: %w", id, domain.ErrNotFound)
		}
		out = append(out, ctrl)
	}
	return out, nil
}

// mockChunkProducer implements driven.ChunkProducer with fixed output.
type mockChunkProducer struct {
	chunks   []driven.RawChunk
	chunkErr error
}

func (m *mockChunkProducer) Chunk(_ context.Context, _ string, _ string) ([]driven.RawChunk, error) {
	if m.chunkErr != nil {
		return nil, m.chunkErr
	}
	return m.chunks, nil
}
