package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/oscalgen-cli/internal/logger"
)

// Retriever gathers evidence for one control from the dual semantic
// index: the fine-grained chunk index and the whole-file summary index,
// boosted by chunks whose stored control hints name the control.
type Retriever struct {
	chunkIndex   driven.VectorIndex
	summaryIndex driven.VectorIndex
	chunkStore   driven.ChunkStore
	embedding    driven.EmbeddingService
}

// NewRetriever creates a retriever over both indices.
func NewRetriever(
	chunkIndex driven.VectorIndex,
	summaryIndex driven.VectorIndex,
	chunkStore driven.ChunkStore,
	embedding driven.EmbeddingService,
) *Retriever {
	return &Retriever{
		chunkIndex:   chunkIndex,
		summaryIndex: summaryIndex,
		chunkStore:   chunkStore,
		embedding:    embedding,
	}
}

// Gather builds the evidence bundle for a control. Both indices are
// queried with the control's description at the configured depth, then
// hint-flagged chunks join, and the merged set is deduplicated and
// capped at twice the per-index depth. Empty indices contribute
// nothing; a control with no evidence at all still gets a bundle.
func (r *Retriever) Gather(
	ctx context.Context, ctrl domain.ControlDescriptor, settings domain.GenerationSettings,
) (domain.EvidenceBundle, error) {
	bundle := domain.EvidenceBundle{ControlID: ctrl.ID}

	query, err := r.embedding.Embed(ctx, ctrl.Description)
	if err != nil {
		return bundle, fmt.Errorf("embed control query: %w", err)
	}

	var items []domain.EvidenceItem

	chunkItems, err := r.searchIndex(ctx, r.chunkIndex, query, settings.TopK, domain.EvidenceSourceChunk)
	if err != nil {
		return bundle, fmt.Errorf("chunk index: %w", err)
	}
	items = append(items, chunkItems...)

	summaryItems, err := r.searchIndex(ctx, r.summaryIndex, query, settings.TopK, domain.EvidenceSourceSummary)
	if err != nil {
		return bundle, fmt.Errorf("summary index: %w", err)
	}
	items = append(items, summaryItems...)

	hintItems, err := r.hintMatches(ctx, ctrl)
	if err != nil {
		return bundle, fmt.Errorf("hint matches: %w", err)
	}
	items = append(items, hintItems...)

	bundle.Items = domain.MergeEvidence(items, 2*settings.TopK)
	logger.Debug("Evidence for %s: %d chunk, %d summary, %d hint -> %d merged",
		ctrl.ID, len(chunkItems), len(summaryItems), len(hintItems), len(bundle.Items))

	return bundle, nil
}

// searchIndex queries one index and hydrates the hits from the store.
func (r *Retriever) searchIndex(
	ctx context.Context, index driven.VectorIndex, query []float32, k int, source domain.EvidenceSource,
) ([]domain.EvidenceItem, error) {
	if index == nil || index.Len() == 0 {
		return nil, nil
	}

	hits, err := index.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}

	items := make([]domain.EvidenceItem, 0, len(hits))
	for _, hit := range hits {
		chunk, err := r.lookup(ctx, hit.ID, source)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Index entry without a stored record; skip rather than fail
				logger.Warn("Indexed id %s has no stored record", hit.ID)
				continue
			}
			return nil, err
		}
		items = append(items, domain.EvidenceItem{
			Chunk:  chunk,
			Score:  hit.Similarity,
			Source: source,
		})
	}
	return items, nil
}

// lookup resolves an index id against the matching store table.
func (r *Retriever) lookup(ctx context.Context, id string, source domain.EvidenceSource) (*domain.ChunkRecord, error) {
	if source == domain.EvidenceSourceSummary {
		return r.chunkStore.GetSummary(ctx, id)
	}
	return r.chunkStore.GetChunk(ctx, id)
}

// hintMatches pulls in every stored chunk whose control hints name this
// control, regardless of semantic similarity. Hint evidence carries a
// fixed score above the cosine range so deterministic matches always
// survive the merge.
func (r *Retriever) hintMatches(ctx context.Context, ctrl domain.ControlDescriptor) ([]domain.EvidenceItem, error) {
	chunks, err := r.chunkStore.ListChunks(ctx, "")
	if err != nil {
		return nil, err
	}

	key := ctrl.HintKey()
	var items []domain.EvidenceItem
	for i := range chunks {
		if chunks[i].HasHint(key) {
			items = append(items, domain.EvidenceItem{
				Chunk:  &chunks[i],
				Score:  domain.HintBoostScore,
				Source: domain.EvidenceSourceHint,
			})
		}
	}
	return items, nil
}
