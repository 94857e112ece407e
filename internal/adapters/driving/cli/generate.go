package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/oscalgen-cli/internal/adapters/driven/catalog/oscal"
	"github.com/custodia-labs/oscalgen-cli/internal/core/domain"
	"github.com/custodia-labs/oscalgen-cli/internal/core/ports/driving"
	"github.com/custodia-labs/oscalgen-cli/internal/core/services"
)

// Output artifact filenames.
const (
	requirementsFile = "implemented_requirements.json"
	failuresFile     = "validation_failures.json"
)

var (
	generateControls string
	generateOutput   string
	generateCatalog  string
	generateProfile  string
	generateWorkers  int
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate implemented-requirement records for a set of controls",
	Long: `Resolves the requested controls against the OSCAL catalog and profile,
gathers evidence from the index, and drives the draft-validate-repair
loop per control. Accepted records are written to ` + requirementsFile + `;
records that exhausted their repair budget, with full violation
history, to ` + failuresFile + `.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateControls, "controls", "c", "",
		"comma-separated control ids (e.g. sc-8,ac-6)")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", ".", "output directory")
	generateCmd.Flags().StringVar(&generateCatalog, "catalog", "", "OSCAL catalog JSON (default from config)")
	generateCmd.Flags().StringVar(&generateProfile, "profile", "", "OSCAL profile JSON (default from config)")
	generateCmd.Flags().IntVar(&generateWorkers, "workers", 0, "concurrent control pipelines (default from config)")
	_ = generateCmd.MarkFlagRequired("controls")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	controlIDs := splitControls(generateControls)
	if len(controlIDs) == 0 {
		return fmt.Errorf("no control ids given")
	}

	a, err := newApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	catalogPath := generateCatalog
	if catalogPath == "" {
		catalogPath = a.settings.Catalog.CatalogPath
	}
	if catalogPath == "" {
		return fmt.Errorf("no catalog given; pass --catalog or set catalog.path in config")
	}
	profilePath := generateProfile
	if profilePath == "" {
		profilePath = a.settings.Catalog.ProfilePath
	}

	resolver, err := oscal.NewResolver(catalogPath, profilePath)
	if err != nil {
		return err
	}

	chunkIndex, err := a.loadIndex(a.chunkIndexPath())
	if err != nil {
		return err
	}
	summaryIndex, err := a.loadOrCreateIndex(a.summaryIndexPath())
	if err != nil {
		return err
	}

	retriever := services.NewRetriever(chunkIndex, summaryIndex, a.store, a.embedding)
	mapper := services.NewMapper(a.llm)
	mapper.SetPromptStore(a.prompts)

	settings := a.settings.Generation
	if generateWorkers > 0 {
		settings.Workers = generateWorkers
	}

	engine := services.NewEngine(resolver, retriever, mapper, settings)
	result, err := engine.Generate(cmd.Context(), controlIDs)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if err := writeGenerateArtifacts(generateOutput, result); err != nil {
		return err
	}

	cmd.Printf("Accepted %d of %d controls\n", len(result.Accepted), len(result.Accepted)+len(result.Failed))
	if !result.AllAccepted() {
		for _, rec := range result.Failed {
			cmd.Printf("  failed: %s\n", rec.ControlID)
		}
		// Partial output is on disk; the non-zero exit is the batch
		// verdict, decided here and nowhere in the core.
		return fmt.Errorf("%d control(s) failed validation; see %s",
			len(result.Failed), filepath.Join(generateOutput, failuresFile))
	}
	return nil
}

// writeGenerateArtifacts writes the accepted requirements and, when any
// control failed, the failure report with full violation history.
func writeGenerateArtifacts(dir string, result *driving.GenerateResult) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	requirements := struct {
		ImplementedRequirements []domain.ImplementedRequirement `json:"implemented-requirements"`
	}{
		ImplementedRequirements: result.Requirements(),
	}
	if err := writeJSON(filepath.Join(dir, requirementsFile), requirements); err != nil {
		return err
	}

	if len(result.Failed) == 0 {
		return nil
	}
	failures := struct {
		Failures []domain.RecordOutcome `json:"failures"`
	}{
		Failures: result.Failed,
	}
	return writeJSON(filepath.Join(dir, failuresFile), failures)
}

// writeJSON writes indented JSON to path.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// splitControls parses a comma-separated control list.
func splitControls(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
