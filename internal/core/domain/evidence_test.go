package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evidenceItem(id string, score float64, source EvidenceSource) EvidenceItem {
	return EvidenceItem{
		Chunk:  &ChunkRecord{ID: id, SourceFile: id + ".go"},
		Score:  score,
		Source: source,
	}
}

// TestMergeEvidence_Dedup tests that duplicates keep the best score
func TestMergeEvidence_Dedup(t *testing.T) {
	items := []EvidenceItem{
		evidenceItem("a", 0.4, EvidenceSourceChunk),
		evidenceItem("a", 0.9, EvidenceSourceSummary),
		evidenceItem("b", 0.5, EvidenceSourceChunk),
	}

	merged := MergeEvidence(items, 0)
	require.Len(t, merged, 2)
	assert.Equal(t, "a", merged[0].Chunk.ID)
	assert.Equal(t, 0.9, merged[0].Score)
	assert.Equal(t, EvidenceSourceSummary, merged[0].Source)
}

// TestMergeEvidence_Ordering tests score-descending order with id tie-break
func TestMergeEvidence_Ordering(t *testing.T) {
	items := []EvidenceItem{
		evidenceItem("c", 0.5, EvidenceSourceChunk),
		evidenceItem("a", 0.5, EvidenceSourceChunk),
		evidenceItem("b", 0.8, EvidenceSourceSummary),
	}

	merged := MergeEvidence(items, 0)
	require.Len(t, merged, 3)
	assert.Equal(t, "b", merged[0].Chunk.ID)
	assert.Equal(t, "a", merged[1].Chunk.ID, "ties break by ascending chunk id")
	assert.Equal(t, "c", merged[2].Chunk.ID)
}

// TestMergeEvidence_Cap tests the bundle bound
func TestMergeEvidence_Cap(t *testing.T) {
	items := []EvidenceItem{
		evidenceItem("a", 0.9, EvidenceSourceChunk),
		evidenceItem("b", 0.8, EvidenceSourceChunk),
		evidenceItem("c", 0.7, EvidenceSourceChunk),
	}

	merged := MergeEvidence(items, 2)
	require.Len(t, merged, 2)
	assert.Equal(t, "a", merged[0].Chunk.ID)
	assert.Equal(t, "b", merged[1].Chunk.ID)
}

// TestMergeEvidence_NilChunks tests that nil chunk references are dropped
func TestMergeEvidence_NilChunks(t *testing.T) {
	items := []EvidenceItem{
		{Chunk: nil, Score: 1.0},
		evidenceItem("a", 0.5, EvidenceSourceChunk),
	}

	merged := MergeEvidence(items, 0)
	require.Len(t, merged, 1)
	assert.Equal(t, "a", merged[0].Chunk.ID)
}

// TestEvidenceBundle_Contains tests provenance lookup
func TestEvidenceBundle_Contains(t *testing.T) {
	bundle := EvidenceBundle{
		ControlID: "SC-8",
		Items:     []EvidenceItem{evidenceItem("a", 0.5, EvidenceSourceChunk)},
	}

	assert.True(t, bundle.Contains("a.go"))
	assert.False(t, bundle.Contains("missing.go"))
	assert.False(t, bundle.Empty())
	assert.True(t, (&EvidenceBundle{}).Empty())
}
