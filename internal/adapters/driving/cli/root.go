// Package cli implements the cobra command surface. Commands stay
// thin: they wire adapters to core services, translate results to
// output files and exit codes, and never hold generation logic.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/oscalgen-cli/internal/logger"
)

var (
	verbose bool
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "oscalgen",
	Short: "Generate OSCAL control mappings from repository evidence",
	Long: `oscalgen analyses a source repository into a dual semantic index,
then drafts, validates and repairs OSCAL implemented-requirement records
for a set of catalog controls.

Typical flow:
  oscalgen analyze ./repo
  oscalgen summarize ./repo
  oscalgen generate --controls sc-8,ac-6 --output ./out
  oscalgen evaluate ./out/implemented_requirements.json`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose progress logging to stderr")
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
