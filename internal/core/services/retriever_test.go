package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/oscalgen-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driven"
)

func storedChunk(t *testing.T, store driven.ChunkStore, id, file string, hints ...string) {
	t.Helper()
	record := &domain.ChunkRecord{
		ID:         id,
		SourceFile: file,
		Content:    "content of " + id,
		StartLine:  1,
		EndLine:    10,
		Type:       domain.ChunkTypeCodeFunction,
	}
	for _, h := range hints {
		record.AddHint(h)
	}
	require.NoError(t, store.SaveChunk(context.Background(), record))
}

func storedSummary(t *testing.T, store driven.ChunkStore, file string) {
	t.Helper()
	require.NoError(t, store.SaveSummary(context.Background(), &domain.ChunkRecord{
		ID:         file,
		SourceFile: file,
		Content:    "summary of " + file,
		Type:       domain.ChunkTypeFileSummary,
	}))
}

// TestRetriever_Gather tests the dual-index merge
func TestRetriever_Gather(t *testing.T) {
	store := memory.NewChunkStore()
	storedChunk(t, store, "c1", "tls.go")
	storedChunk(t, store, "c2", "server.go")
	storedSummary(t, store, "tls.go")

	retriever := NewRetriever(
		&mockVectorIndex{hits: []driven.VectorHit{{ID: "c1", Similarity: 0.91}, {ID: "c2", Similarity: 0.82}}},
		&mockVectorIndex{hits: []driven.VectorHit{{ID: "tls.go", Similarity: 0.88}}},
		store,
		&mockEmbeddingService{},
	)

	bundle, err := retriever.Gather(context.Background(), validControl(), domain.DefaultGenerationSettings())

	require.NoError(t, err)
	assert.Equal(t, "SC-8", bundle.ControlID)
	require.Len(t, bundle.Items, 3)
	// Merged evidence comes back in descending score order.
	assert.Equal(t, "c1", bundle.Items[0].Chunk.ID)
	assert.Equal(t, "tls.go", bundle.Items[1].Chunk.ID)
	assert.Equal(t, domain.EvidenceSourceSummary, bundle.Items[1].Source)
	assert.Equal(t, "c2", bundle.Items[2].Chunk.ID)
}

// TestRetriever_Gather_HintBoost tests hinted chunks outrank similarity hits
func TestRetriever_Gather_HintBoost(t *testing.T) {
	store := memory.NewChunkStore()
	storedChunk(t, store, "c1", "server.go")
	storedChunk(t, store, "c2", "tls.go", "sc8")

	retriever := NewRetriever(
		&mockVectorIndex{hits: []driven.VectorHit{{ID: "c1", Similarity: 0.99}}},
		&mockVectorIndex{},
		store,
		&mockEmbeddingService{},
	)

	bundle, err := retriever.Gather(context.Background(), validControl(), domain.DefaultGenerationSettings())

	require.NoError(t, err)
	require.Len(t, bundle.Items, 2)
	assert.Equal(t, "c2", bundle.Items[0].Chunk.ID, "a deterministic hint match beats any cosine score")
	assert.Equal(t, domain.EvidenceSourceHint, bundle.Items[0].Source)
}

// TestRetriever_Gather_DeduplicatesAcrossSources tests one chunk found
// twice keeps its best score
func TestRetriever_Gather_DeduplicatesAcrossSources(t *testing.T) {
	store := memory.NewChunkStore()
	storedChunk(t, store, "c1", "tls.go", "sc8")

	retriever := NewRetriever(
		&mockVectorIndex{hits: []driven.VectorHit{{ID: "c1", Similarity: 0.75}}},
		&mockVectorIndex{},
		store,
		&mockEmbeddingService{},
	)

	bundle, err := retriever.Gather(context.Background(), validControl(), domain.DefaultGenerationSettings())

	require.NoError(t, err)
	require.Len(t, bundle.Items, 1)
	assert.Equal(t, domain.HintBoostScore, bundle.Items[0].Score)
}

// TestRetriever_Gather_CapsMergedEvidence tests the merge cap
func TestRetriever_Gather_CapsMergedEvidence(t *testing.T) {
	store := memory.NewChunkStore()
	hits := make([]driven.VectorHit, 6)
	for i := range hits {
		id := string(rune('a' + i))
		storedChunk(t, store, id, id+".go")
		hits[i] = driven.VectorHit{ID: id, Similarity: 0.9 - float64(i)*0.05}
	}

	retriever := NewRetriever(
		&mockVectorIndex{hits: hits},
		&mockVectorIndex{},
		store,
		&mockEmbeddingService{},
	)

	settings := domain.GenerationSettings{TopK: 2}.Normalise()
	bundle, err := retriever.Gather(context.Background(), validControl(), settings)

	require.NoError(t, err)
	assert.Len(t, bundle.Items, 2, "each index is queried at the configured depth")
}

// TestRetriever_Gather_EmptyIndices tests graceful no-evidence behaviour
func TestRetriever_Gather_EmptyIndices(t *testing.T) {
	retriever := NewRetriever(
		&mockVectorIndex{},
		&mockVectorIndex{},
		memory.NewChunkStore(),
		&mockEmbeddingService{},
	)

	bundle, err := retriever.Gather(context.Background(), validControl(), domain.DefaultGenerationSettings())

	require.NoError(t, err)
	assert.True(t, bundle.Empty())
}

// TestRetriever_Gather_SkipsOrphanedIndexEntries tests index ids without
// stored records are dropped, not fatal
func TestRetriever_Gather_SkipsOrphanedIndexEntries(t *testing.T) {
	store := memory.NewChunkStore()
	storedChunk(t, store, "c1", "tls.go")

	retriever := NewRetriever(
		&mockVectorIndex{hits: []driven.VectorHit{{ID: "gone", Similarity: 0.95}, {ID: "c1", Similarity: 0.80}}},
		&mockVectorIndex{},
		store,
		&mockEmbeddingService{},
	)

	bundle, err := retriever.Gather(context.Background(), validControl(), domain.DefaultGenerationSettings())

	require.NoError(t, err)
	require.Len(t, bundle.Items, 1)
	assert.Equal(t, "c1", bundle.Items[0].Chunk.ID)
}

// TestRetriever_Gather_EmbedFailure tests query embedding errors propagate
func TestRetriever_Gather_EmbedFailure(t *testing.T) {
	retriever := NewRetriever(
		&mockVectorIndex{},
		&mockVectorIndex{},
		memory.NewChunkStore(),
		&mockEmbeddingService{embedErr: errors.New("model offline")},
	)

	_, err := retriever.Gather(context.Background(), validControl(), domain.DefaultGenerationSettings())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "embed control query")
}

// TestRetriever_Gather_SearchFailure tests index errors propagate
func TestRetriever_Gather_SearchFailure(t *testing.T) {
	broken := &mockVectorIndex{searchErr: errors.New("index corrupt")}
	broken.hits = []driven.VectorHit{{ID: "x"}} // non-empty so the search runs

	retriever := NewRetriever(broken, &mockVectorIndex{}, memory.NewChunkStore(), &mockEmbeddingService{})

	_, err := retriever.Gather(context.Background(), validControl(), domain.DefaultGenerationSettings())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "chunk index")
}
