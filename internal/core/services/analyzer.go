package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driven"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driving"
	"github.com/custodia-labs/oscalgen-cli/internal/inspectors"
	"github.com/custodia-labs/oscalgen-cli/internal/inspectors/hints"
	"github.com/custodia-labs/oscalgen-cli/internal/logger"
	"github.com/custodia-labs/oscalgen-cli/internal/normalisers/source"
	"github.com/custodia-labs/oscalgen-cli/internal/prompts"
)

// Ensure AnalyzerService implements the interfaces.
var (
	_ driving.AnalyzerService = (*AnalyzerService)(nil)
	_ driven.PromptStoreAware = (*AnalyzerService)(nil)
)

// summaryMaxTokens bounds one file-summary completion.
const summaryMaxTokens = 512

// AnalyzerService populates the dual semantic index. Analyze chunks,
// flags and embeds every retained file into the chunk index; Summarize
// writes one model summary per file into the summary index.
type AnalyzerService struct {
	chunker      driven.ChunkProducer
	embedding    driven.EmbeddingService
	llm          driven.LLMService
	chunkIndex   driven.VectorIndex
	summaryIndex driven.VectorIndex
	chunkStore   driven.ChunkStore
	registry     *hints.Registry
	promptStore  driven.PromptStore
	ignore       source.Ignore
}

// NewAnalyzerService creates an analyzer. The llm parameter is only
// needed for Summarize and may be nil for plain analysis runs.
func NewAnalyzerService(
	chunker driven.ChunkProducer,
	embedding driven.EmbeddingService,
	llm driven.LLMService,
	chunkIndex driven.VectorIndex,
	summaryIndex driven.VectorIndex,
	chunkStore driven.ChunkStore,
) *AnalyzerService {
	return &AnalyzerService{
		chunker:      chunker,
		embedding:    embedding,
		llm:          llm,
		chunkIndex:   chunkIndex,
		summaryIndex: summaryIndex,
		chunkStore:   chunkStore,
		registry:     hints.Default(),
	}
}

// SetHintRegistry replaces the default control-hint registry.
func (s *AnalyzerService) SetHintRegistry(registry *hints.Registry) {
	if registry != nil {
		s.registry = registry
	}
}

// SetPromptStore sets the store for customisable prompts.
func (s *AnalyzerService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// SetIgnore supplements the built-in walk ignore lists.
func (s *AnalyzerService) SetIgnore(ignore source.Ignore) {
	s.ignore = ignore
}

// Analyze walks the repository and indexes every retained file:
// chunking, pattern-rule flagging, hint matching, embedding, and
// insertion into the chunk index. Per-file failures are collected and
// reported; the pass continues.
func (s *AnalyzerService) Analyze(ctx context.Context, repoPath string) (*driving.AnalyzeResult, error) {
	logger.Section("Repository Analysis")
	logger.Info("Analysing %s", repoPath)

	files, err := source.WalkWith(repoPath, s.ignore)
	if err != nil {
		return nil, err
	}
	logger.Info("Selected %d files", len(files))

	// Chunk records live exactly as long as the index built over them.
	// The hint path reads the store directly, so rows from earlier
	// passes must go before this rebuild writes fresh ones.
	if err := s.chunkStore.ClearChunks(ctx); err != nil {
		return nil, fmt.Errorf("clear chunk records: %w", err)
	}

	result := &driving.AnalyzeResult{}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		indexed, flagged, err := s.analyzeFile(ctx, f)
		if err != nil {
			logger.Warn("Analysis of %s failed: %v", f.Path, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", f.Path, err))
			continue
		}
		result.FilesScanned++
		result.ChunksIndexed += indexed
		result.FlaggedChunks += flagged
	}

	logger.Info("Analysis done: %d files, %d chunks, %d flagged",
		result.FilesScanned, result.ChunksIndexed, result.FlaggedChunks)
	return result, nil
}

// analyzeFile chunks, flags, embeds and indexes one file.
func (s *AnalyzerService) analyzeFile(ctx context.Context, f source.File) (indexed, flagged int, err error) {
	content, err := source.ReadText(f)
	if err != nil {
		return 0, 0, err
	}

	raw, err := s.chunker.Chunk(ctx, f.Path, content)
	if err != nil {
		return 0, 0, fmt.Errorf("chunk: %w", err)
	}
	if len(raw) == 0 {
		return 0, 0, nil
	}

	texts := make([]string, len(raw))
	for i, rc := range raw {
		texts[i] = rc.Content
	}
	embeddings, err := s.embedding.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, 0, fmt.Errorf("embed: %w", err)
	}
	if len(embeddings) != len(raw) {
		return 0, 0, fmt.Errorf("embedding count mismatch: %d chunks, %d vectors", len(raw), len(embeddings))
	}

	for i, rc := range raw {
		record := &domain.ChunkRecord{
			ID:         uuid.New().String(),
			SourceFile: f.Path,
			Type:       rc.Type,
			Content:    rc.Content,
			StartLine:  rc.StartLine,
			EndLine:    rc.EndLine,
			Embedding:  embeddings[i],
		}

		record.Flags = inspectors.ExtractFlags(rc.Content, f.Language)
		for _, hint := range inspectors.DeriveControlHints(record.Flags) {
			record.AddHint(hint)
		}
		for _, hint := range s.registry.Search(rc.Content, f.Language) {
			record.AddHint(hint)
		}
		if len(record.Flags) > 0 {
			flagged++
		}

		if err := s.chunkStore.SaveChunk(ctx, record); err != nil {
			return indexed, flagged, fmt.Errorf("save chunk: %w", err)
		}
		if err := s.chunkIndex.Insert(ctx, record.ID, record.Embedding); err != nil {
			return indexed, flagged, fmt.Errorf("index chunk: %w", err)
		}
		indexed++
	}

	return indexed, flagged, nil
}

// Summarize writes one model security summary per analysed file into
// the summary index. It relies on chunk records from a prior Analyze
// pass to know which files exist.
func (s *AnalyzerService) Summarize(ctx context.Context, repoPath string) (*driving.SummarizeResult, error) {
	logger.Section("File Summarisation")

	if s.llm == nil {
		return nil, fmt.Errorf("summarise: %w", domain.ErrLLMUnavailable)
	}

	chunks, err := s.chunkStore.ListChunks(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: no analysed files; run analyse first", domain.ErrInvalidInput)
	}

	files := distinctSourceFiles(chunks)
	logger.Info("Summarising %d files", len(files))

	template := prompts.Defaults[driven.PromptFileSummary]
	if s.promptStore != nil {
		if tmpl, err := s.promptStore.Load(driven.PromptFileSummary); err == nil && tmpl != "" {
			template = tmpl
		}
	}

	result := &driving.SummarizeResult{}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := s.summarizeFile(ctx, repoPath, path, template); err != nil {
			logger.Warn("Summary of %s failed: %v", path, err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
			continue
		}
		result.FilesSummarized++
	}

	logger.Info("Summarisation done: %d files", result.FilesSummarized)
	return result, nil
}

// summarizeFile generates, embeds and indexes one file summary. The
// summary index and store key summaries by source file path so repeat
// runs replace rather than accumulate.
func (s *AnalyzerService) summarizeFile(ctx context.Context, repoPath, path, template string) error {
	f := source.File{Path: path, AbsPath: filepath.Join(repoPath, path), Language: source.Language(path)}
	content, err := source.ReadText(f)
	if err != nil {
		return err
	}

	prompt := prompts.BuildFileSummary(template, path, content)
	summary, err := s.llm.Complete(ctx, prompt, driven.CompleteOptions{
		MaxTokens:   summaryMaxTokens,
		Temperature: 0,
	})
	if err != nil {
		return fmt.Errorf("summarise: %w", err)
	}

	embedding, err := s.embedding.Embed(ctx, summary)
	if err != nil {
		return fmt.Errorf("embed summary: %w", err)
	}

	record := &domain.ChunkRecord{
		ID:         path,
		SourceFile: path,
		Type:       domain.ChunkTypeFileSummary,
		Content:    summary,
		Embedding:  embedding,
	}
	record.Flags = inspectors.ExtractFlags(content, f.Language)
	for _, hint := range inspectors.DeriveControlHints(record.Flags) {
		record.AddHint(hint)
	}

	if err := s.chunkStore.SaveSummary(ctx, record); err != nil {
		return fmt.Errorf("save summary: %w", err)
	}
	if err := s.summaryIndex.Insert(ctx, path, embedding); err != nil {
		return fmt.Errorf("index summary: %w", err)
	}
	return nil
}

// distinctSourceFiles returns the unique source files present in a
// chunk listing, in first-seen order.
func distinctSourceFiles(chunks []domain.ChunkRecord) []string {
	seen := make(map[string]bool)
	var files []string
	for _, c := range chunks {
		if !seen[c.SourceFile] {
			seen[c.SourceFile] = true
			files = append(files, c.SourceFile)
		}
	}
	return files
}
