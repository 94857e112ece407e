package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/oscalgen-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/oscalgen-cli/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change stored configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Sets a single configuration key, e.g.

  oscalgen config set llm.model gpt-4o
  oscalgen config set generation.top_k 15
  oscalgen config set analysis.ignore_dirs vendor,node_modules

List-valued keys take comma-separated values. Integer values are
stored as integers.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	settings, err := services.NewSettingsService(configStore).Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	cmd.Printf("Config file: %s\n\n", configStore.Path())
	cmd.Printf("embedding.provider    %s\n", settings.Embedding.Provider)
	cmd.Printf("embedding.model       %s\n", settings.Embedding.Model)
	cmd.Printf("embedding.base_url    %s\n", settings.Embedding.BaseURL)
	cmd.Printf("embedding.api_key     %s\n", maskSecret(settings.Embedding.APIKey))
	cmd.Printf("embedding.dimensions  %d\n", settings.Embedding.Dimensions)
	cmd.Printf("llm.provider          %s\n", settings.LLM.Provider)
	cmd.Printf("llm.model             %s\n", settings.LLM.Model)
	cmd.Printf("llm.base_url          %s\n", settings.LLM.BaseURL)
	cmd.Printf("llm.api_key           %s\n", maskSecret(settings.LLM.APIKey))
	cmd.Printf("llm.requests_per_minute %d\n", settings.LLM.RequestsPerMinute)
	cmd.Printf("generation.top_k      %d\n", settings.Generation.TopK)
	cmd.Printf("generation.max_critique_retries %d\n", settings.Generation.MaxCritiqueRetries)
	cmd.Printf("generation.workers    %d\n", settings.Generation.Workers)
	cmd.Printf("generation.config_extensions %s\n", strings.Join(settings.Generation.ConfigExtensions, ","))
	cmd.Printf("catalog.path          %s\n", settings.Catalog.CatalogPath)
	cmd.Printf("catalog.profile_path  %s\n", settings.Catalog.ProfilePath)
	cmd.Printf("analysis.ignore_dirs  %s\n", strings.Join(settings.Analysis.IgnoreDirs, ","))
	cmd.Printf("analysis.ignore_extensions %s\n", strings.Join(settings.Analysis.IgnoreExtensions, ","))
	cmd.Printf("analysis.ignore_patterns %s\n", strings.Join(settings.Analysis.IgnorePatterns, ","))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, raw := args[0], args[1]

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	if err := configStore.Set(key, coerceConfigValue(key, raw)); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	if err := configStore.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	cmd.Printf("Set %s\n", key)
	return nil
}

// listValuedKeys hold comma-separated values on the command line.
var listValuedKeys = map[string]bool{
	"generation.config_extensions": true,
	"analysis.ignore_dirs":         true,
	"analysis.ignore_extensions":   true,
	"analysis.ignore_patterns":     true,
}

func coerceConfigValue(key, raw string) any {
	if listValuedKeys[key] {
		var out []string
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

func maskSecret(s string) string {
	if s == "" {
		return "(not set)"
	}
	return "********"
}
