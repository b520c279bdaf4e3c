package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/keepmind9/radarcord/internal/core"
	"github.com/keepmind9/radarcord/pkg/radarcord"
	"github.com/spf13/cobra"
)

var (
	validateShow bool
	validateJSON bool
)

// ValidationResult represents the validation result
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Config   string   `json:"config"`
	Library  string   `json:"library,omitempty"`
	Interval string   `json:"interval,omitempty"`
	Targets  []string `json:"targets,omitempty"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate radarcord configuration file",
	Long: `Validate the radarcord configuration file without connecting to Discord.

This command checks:
  - YAML syntax and environment variables
  - Required tokens
  - Interval, overlap and reviews endpoint settings
  - Notification targets

Exit codes:
  0 - Configuration is valid
  1 - Configuration has errors`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resolveConfigPath(configFile)
		if err != nil {
			return err
		}

		result, cfg := validateFile(path)
		if validateShow && cfg != nil {
			showConfig(cmd.OutOrStdout(), path, cfg)
		}

		if err := outputValidationResult(cmd.OutOrStdout(), result, validateJSON); err != nil {
			return err
		}
		if !result.Valid {
			return fmt.Errorf("configuration %s is invalid", path)
		}
		return nil
	},
}

func validateFile(path string) (ValidationResult, *core.Config) {
	cfg, err := core.LoadConfig(path)
	if err != nil {
		return ValidationResult{
			Valid:  false,
			Config: path,
			Errors: []string{err.Error()},
		}, nil
	}

	return ValidationResult{
		Valid:    true,
		Config:   path,
		Library:  cfg.Discord.Library,
		Interval: cfg.IntervalDuration().String(),
		Targets:  cfg.NotifyTargets(),
		Warnings: validateConfigDetails(cfg),
	}, cfg
}

func showConfig(w io.Writer, path string, cfg *core.Config) {
	fmt.Fprintf(w, "✓ Configuration loaded: %s\n\n", path)
	fmt.Fprintf(w, "Radarcord:\n")
	fmt.Fprintf(w, "  - API root: %s\n", cfg.Radarcord.APIRoot)
	fmt.Fprintf(w, "  - Shards: %d\n", cfg.Radarcord.ShardCount)
	fmt.Fprintf(w, "  - Interval: %s (%v)\n", cfg.Radarcord.Interval, cfg.IntervalDuration())
	fmt.Fprintf(w, "  - Overlap: %s\n", cfg.OverlapPolicy())
	fmt.Fprintf(w, "  - Reviews endpoint: %s\n", cfg.Radarcord.ReviewsEndpoint)
	fmt.Fprintf(w, "\nDiscord:\n")
	fmt.Fprintf(w, "  - Library: %s\n", cfg.Discord.Library)
	fmt.Fprintf(w, "\nNotify (%d):\n", len(cfg.NotifyTargets()))
	for _, target := range cfg.NotifyTargets() {
		fmt.Fprintf(w, "  - %s\n", target)
	}
	fmt.Fprintln(w)
}

func outputValidationResult(w io.Writer, result ValidationResult, jsonFormat bool) error {
	if jsonFormat {
		output, err := json.Marshal(result)
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		fmt.Fprintln(w, string(output))
		return nil
	}

	if !result.Valid {
		fmt.Fprintln(w, "❌ Configuration is invalid")
		fmt.Fprintf(w, "  - Config: %s\n", result.Config)
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  - %s\n", e)
		}
		return nil
	}

	fmt.Fprintln(w, "✓ Configuration is valid")
	fmt.Fprintf(w, "  - Config: %s\n", result.Config)
	fmt.Fprintf(w, "  - Library: %s\n", result.Library)
	fmt.Fprintf(w, "  - Interval: %s\n", result.Interval)
	fmt.Fprintf(w, "  - Notification targets: %d\n", len(result.Targets))
	if len(result.Warnings) > 0 {
		fmt.Fprintln(w, "\n⚠ Warnings:")
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
	return nil
}

// validateConfigDetails reports settings that load fine but are likely mistakes
func validateConfigDetails(cfg *core.Config) []string {
	var warnings []string

	if len(cfg.NotifyTargets()) == 0 {
		warnings = append(warnings, "No notification targets configured - results are only logged")
	}

	if cfg.IntervalDuration() < radarcord.Safe.Duration() && cfg.Radarcord.ShardCount > 1 {
		warnings = append(warnings, fmt.Sprintf("Interval %v with %d shards may hit rate limits - consider the safe preset",
			cfg.IntervalDuration(), cfg.Radarcord.ShardCount))
	}

	if cfg.OverlapPolicy() == radarcord.AllowConcurrent && cfg.RequestTimeout() >= cfg.IntervalDuration() {
		warnings = append(warnings, "Request timeout is not shorter than the interval - posts may overlap, consider overlap: skip")
	}

	if cfg.Notify.Webhook.ID != "" && cfg.Notify.Channel.ID == cfg.Notify.Webhook.ID {
		warnings = append(warnings, "Channel and webhook ids are identical - the webhook id is probably wrong")
	}

	return warnings
}

func init() {
	validateCmd.Flags().BoolVar(&validateShow, "show", false, "Show full configuration details")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output in JSON format")
}
