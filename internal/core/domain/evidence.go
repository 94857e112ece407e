package domain

import "sort"

// EvidenceSource identifies which index produced an evidence item.
type EvidenceSource string

// Available evidence sources.
const (
	// EvidenceSourceChunk is the fine-grained chunk index.
	EvidenceSourceChunk EvidenceSource = "chunk"

	// EvidenceSourceSummary is the whole-file summary index.
	EvidenceSourceSummary EvidenceSource = "summary"

	// EvidenceSourceHint marks chunks pulled in by a control-hint match
	// rather than by vector similarity.
	EvidenceSourceHint EvidenceSource = "hint"
)

// HintBoostScore is the fixed score assigned to hint-matched evidence.
// It sits above the cosine similarity range so deterministic matches
// outrank any semantic hit during merge.
const HintBoostScore = 2.0

// EvidenceItem pairs a chunk record with its retrieval score.
// The record reference is non-owning; the index owns the record.
type EvidenceItem struct {
	// Chunk is the matched record.
	Chunk *ChunkRecord

	// Score is the similarity to the query (higher is more relevant).
	// Scores within a bundle use the same metric and are comparable.
	Score float64

	// Source names the index that produced this item.
	Source EvidenceSource
}

// EvidenceBundle is the retrieval result for one control: an ordered,
// deduplicated, bounded evidence set. Created fresh per control per run
// and never persisted.
type EvidenceBundle struct {
	// ControlID is the control this evidence was retrieved for.
	ControlID string

	// Items is ordered by descending score, ties broken by ascending
	// chunk id for determinism.
	Items []EvidenceItem
}

// Empty returns true when the bundle holds no evidence.
func (b *EvidenceBundle) Empty() bool {
	return len(b.Items) == 0
}

// Contains reports whether the bundle references the given source file.
// Used by validation to reject fabricated provenance.
func (b *EvidenceBundle) Contains(sourceFile string) bool {
	for _, item := range b.Items {
		if item.Chunk != nil && item.Chunk.SourceFile == sourceFile {
			return true
		}
	}
	return false
}

// MergeEvidence deduplicates items by chunk id keeping the best score,
// sorts by descending score with chunk id tie-break, and caps the result
// at limit entries. A limit <= 0 means no cap.
func MergeEvidence(items []EvidenceItem, limit int) []EvidenceItem {
	best := make(map[string]EvidenceItem, len(items))
	for _, item := range items {
		if item.Chunk == nil {
			continue
		}
		id := item.Chunk.ID
		if prev, ok := best[id]; !ok || item.Score > prev.Score {
			best[id] = item
		}
	}

	merged := make([]EvidenceItem, 0, len(best))
	for _, item := range best {
		merged = append(merged, item)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Score != merged[j].Score {
			return merged[i].Score > merged[j].Score
		}
		return merged[i].Chunk.ID < merged[j].Chunk.ID
	})

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}
