package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driven"
)

// Ensure ChunkStore implements the interface.
var _ driven.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is an in-memory implementation of driven.ChunkStore,
// used in tests and for single-shot runs that need no persistence.
type ChunkStore struct {
	mu        sync.RWMutex
	chunks    map[string]domain.ChunkRecord
	summaries map[string]domain.ChunkRecord
}

// NewChunkStore creates a new in-memory chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		chunks:    make(map[string]domain.ChunkRecord),
		summaries: make(map[string]domain.ChunkRecord),
	}
}

// SaveChunk stores or replaces a chunk record.
func (s *ChunkStore) SaveChunk(_ context.Context, record *domain.ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[record.ID] = *record
	return nil
}

// GetChunk retrieves a chunk record by id.
func (s *ChunkStore) GetChunk(_ context.Context, id string) (*domain.ChunkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

// ListChunks returns every chunk record, optionally filtered by source
// file, ordered by id for determinism.
func (s *ChunkStore) ListChunks(_ context.Context, sourceFile string) ([]domain.ChunkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.ChunkRecord, 0, len(s.chunks))
	for _, record := range s.chunks {
		if sourceFile != "" && record.SourceFile != sourceFile {
			continue
		}
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// ClearChunks removes every chunk record, keeping summaries.
func (s *ChunkStore) ClearChunks(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = make(map[string]domain.ChunkRecord)
	return nil
}

// SaveSummary stores or replaces the summary record for a file.
func (s *ChunkStore) SaveSummary(_ context.Context, record *domain.ChunkRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[record.SourceFile] = *record
	return nil
}

// GetSummary retrieves the summary record for a file path.
func (s *ChunkStore) GetSummary(_ context.Context, sourceFile string) (*domain.ChunkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.summaries[sourceFile]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &record, nil
}

// ListSummaries returns every summary record ordered by source file.
func (s *ChunkStore) ListSummaries(_ context.Context) ([]domain.ChunkRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]domain.ChunkRecord, 0, len(s.summaries))
	for _, record := range s.summaries {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].SourceFile < records[j].SourceFile })
	return records, nil
}

// UpdateHints additively merges flags and hints into a chunk or
// summary record.
func (s *ChunkStore) UpdateHints(_ context.Context, id string, flags domain.SecurityFlags, hints []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record, ok := s.chunks[id]; ok {
		s.chunks[id] = mergeHints(record, flags, hints)
		return nil
	}
	if record, ok := s.summaries[id]; ok {
		s.summaries[id] = mergeHints(record, flags, hints)
		return nil
	}
	return domain.ErrNotFound
}

// Close releases nothing for the in-memory store.
func (s *ChunkStore) Close() error {
	return nil
}

func mergeHints(record domain.ChunkRecord, flags domain.SecurityFlags, hints []string) domain.ChunkRecord {
	for flag, on := range flags {
		if on {
			if record.Flags == nil {
				record.Flags = domain.SecurityFlags{}
			}
			record.Flags[flag] = true
		}
	}
	for _, hint := range hints {
		record.AddHint(hint)
	}
	return record
}
