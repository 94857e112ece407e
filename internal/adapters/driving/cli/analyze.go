package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/oscalgen-cli/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/oscalgen-cli/internal/core/services"
	"github.com/custodia-labs/oscalgen-cli/internal/postprocessors/chunker"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [repo-path]",
	Short: "Index a repository into the chunk index",
	Long: `Walks the repository, splits every retained file into chunks, applies
the security pattern rules, embeds each chunk and writes the chunk
index. Run this before summarize or generate.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	// Each analysis pass rebuilds the chunk index from scratch; the
	// analyzer clears the stored chunk records to match before it
	// writes fresh ones.
	chunkIndex, err := flat.New(a.embedding.Dimensions())
	if err != nil {
		return err
	}
	summaryIndex, err := a.loadOrCreateIndex(a.summaryIndexPath())
	if err != nil {
		return err
	}

	analyzer := services.NewAnalyzerService(
		chunker.New(), a.embedding, a.llm, chunkIndex, summaryIndex, a.store)
	analyzer.SetPromptStore(a.prompts)
	analyzer.SetIgnore(a.walkIgnore())

	result, err := analyzer.Analyze(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if err := chunkIndex.Persist(a.chunkIndexPath()); err != nil {
		return fmt.Errorf("persist chunk index: %w", err)
	}

	cmd.Printf("Indexed %d chunks from %d files (%d flagged)\n",
		result.ChunksIndexed, result.FilesScanned, result.FlaggedChunks)
	for _, e := range result.Errors {
		cmd.Printf("  warning: %s\n", e)
	}
	return nil
}
