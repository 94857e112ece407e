package driven

import (
	"context"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
)

// RawChunk is one unit produced by a chunk producer before embedding.
type RawChunk struct {
	// Content is the chunk text.
	Content string

	// StartLine and EndLine bound the chunk in the source file (1-based).
	StartLine int
	EndLine   int

	// Type classifies the chunk.
	Type domain.ChunkType
}

// ChunkProducer turns a file into a sequence of text chunks with line
// ranges. The parsing heuristics behind it are an external concern; the
// pipeline only relies on this contract.
type ChunkProducer interface {
	// Chunk splits the file content into raw chunks. The declared
	// language may inform splitting but malformed input never fails:
	// the worst case is a single whole-file chunk.
	Chunk(ctx context.Context, path string, content string) ([]RawChunk, error)
}
