package driving

import "context"

// AnalyzeResult summarises one indexing pass over a repository.
type AnalyzeResult struct {
	// FilesScanned counts files that survived the ignore lists.
	FilesScanned int

	// ChunksIndexed counts chunk records inserted into the chunk index.
	ChunksIndexed int

	// FlaggedChunks counts chunks with at least one security flag set.
	FlaggedChunks int

	// Errors holds per-file failures that did not abort the pass.
	Errors []string
}

// SummarizeResult summarises one file-summary pass.
type SummarizeResult struct {
	// FilesSummarized counts summaries inserted into the summary index.
	FilesSummarized int

	// Errors holds per-file failures that did not abort the pass.
	Errors []string
}

// AnalyzerService runs the indexing passes that populate the dual
// semantic index: chunking, embedding, rule-based flagging, and
// file-level security summaries.
type AnalyzerService interface {
	// Analyze walks the repository, chunks and embeds every retained
	// file, applies the pattern rules, and populates the chunk index.
	Analyze(ctx context.Context, repoPath string) (*AnalyzeResult, error)

	// Summarize writes an LLM security summary per analysed file and
	// populates the summary index. Requires a prior Analyze pass.
	Summarize(ctx context.Context, repoPath string) (*SummarizeResult, error)
}
