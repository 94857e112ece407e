package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/services"
)

// evaluationFile is the evaluation artifact filename.
const evaluationFile = "evaluation_results.json"

var evaluateOutput string

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [requirements-file]",
	Short: "Score generated requirements along four quality dimensions",
	Long: `Independently scores each implemented requirement (status alignment,
explanation quality, configuration support, overall consistency) on a
0-2 scale and writes ` + evaluationFile + `. Evaluation is read-only
and never feeds back into generation.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateOutput, "output", "o", ".", "output directory")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	requirements, err := readRequirements(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	evaluator := services.NewEvaluatorService(a.llm)
	evaluator.SetPromptStore(a.prompts)

	result, err := evaluator.Evaluate(cmd.Context(), requirements)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	if err := os.MkdirAll(evaluateOutput, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	report := struct {
		Evaluations []domain.Evaluation `json:"evaluations"`
		Errors      []string            `json:"errors,omitempty"`
	}{
		Evaluations: result.Evaluations,
		Errors:      result.Errors,
	}
	if err := writeJSON(filepath.Join(evaluateOutput, evaluationFile), report); err != nil {
		return err
	}

	for _, e := range result.Evaluations {
		cmd.Printf("%s: %d/8\n", e.ControlID, e.Total())
	}
	for _, e := range result.Errors {
		cmd.Printf("  warning: %s\n", e)
	}
	return nil
}

// readRequirements loads an implemented-requirements artifact, either
// the wrapped object generate writes or a bare array.
func readRequirements(path string) ([]domain.ImplementedRequirement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read requirements: %w", err)
	}

	var wrapped struct {
		ImplementedRequirements []domain.ImplementedRequirement `json:"implemented-requirements"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil && len(wrapped.ImplementedRequirements) > 0 {
		return wrapped.ImplementedRequirements, nil
	}

	var bare []domain.ImplementedRequirement
	if err := json.Unmarshal(data, &bare); err != nil {
		return nil, fmt.Errorf("parse requirements %s: %w", path, err)
	}
	return bare, nil
}
