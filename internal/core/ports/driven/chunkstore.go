package driven

import (
	"context"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
)

// ChunkStore persists chunk records and whole-file summary records with
// their metadata. Chunk records are keyed by chunk id; summary records
// by file path. Records are immutable once stored except for additive
// flag/hint enrichment via UpdateHints.
type ChunkStore interface {
	// SaveChunk stores or replaces a chunk record.
	SaveChunk(ctx context.Context, record *domain.ChunkRecord) error

	// GetChunk retrieves a chunk record by id.
	// Returns domain.ErrNotFound when absent.
	GetChunk(ctx context.Context, id string) (*domain.ChunkRecord, error)

	// ListChunks returns every chunk record, optionally filtered to one
	// source file when sourceFile is non-empty.
	ListChunks(ctx context.Context, sourceFile string) ([]domain.ChunkRecord, error)

	// ClearChunks removes every chunk record. Summary records are kept.
	// Chunk records live exactly as long as the index built over them,
	// so a rebuild clears the table first.
	ClearChunks(ctx context.Context) error

	// SaveSummary stores or replaces the summary record for a file.
	SaveSummary(ctx context.Context, record *domain.ChunkRecord) error

	// GetSummary retrieves the summary record for a file path.
	// Returns domain.ErrNotFound when absent.
	GetSummary(ctx context.Context, sourceFile string) (*domain.ChunkRecord, error)

	// ListSummaries returns every summary record.
	ListSummaries(ctx context.Context) ([]domain.ChunkRecord, error)

	// UpdateHints additively merges flags and control hints into the
	// record identified by id (chunk) or source file (summary).
	UpdateHints(ctx context.Context, id string, flags domain.SecurityFlags, hints []string) error

	// Close releases resources.
	Close() error
}
