package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/oscalgen-cli/internal/core/services"
	"github.com/custodia-labs/oscalgen-cli/internal/postprocessors/chunker"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [repo-path]",
	Short: "Write a model security summary per analysed file",
	Long: `Generates one security-focused summary per file already present in
the chunk index and writes the summary index. Requires a prior analyze
pass and a configured LLM provider.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}

func runSummarize(cmd *cobra.Command, args []string) error {
	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	chunkIndex, err := a.loadIndex(a.chunkIndexPath())
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

	result, err := analyzer.Summarize(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("summarisation failed: %w", err)
	}

	if err := summaryIndex.Persist(a.summaryIndexPath()); err != nil {
		return fmt.Errorf("persist summary index: %w", err)
	}

	cmd.Printf("Summarised %d files\n", result.FilesSummarized)
	for _, e := range result.Errors {
		cmd.Printf("  warning: %s\n", e)
	}
	return nil
}
