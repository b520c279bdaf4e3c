package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/keepmind9/radarcord/pkg/radarcord"
	"github.com/spf13/cobra"
)

var presetsJSON bool

// PresetOutput is one row of presets --json
type PresetOutput struct {
	Name    string `json:"name"`
	Seconds int    `json:"seconds"`
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the autopost interval presets",
	Long: `List the named autopost intervals accepted by radarcord.interval.

Radarcord rate-limits stats posts, so slower presets are safer for bots that
run many processes against the same API token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printPresets(cmd.OutOrStdout(), presetsJSON)
	},
}

func printPresets(w io.Writer, jsonFormat bool) error {
	presets := radarcord.IntervalPresets()

	if jsonFormat {
		out := make([]PresetOutput, 0, len(presets))
		for _, p := range presets {
			out = append(out, PresetOutput{Name: p.String(), Seconds: radarcord.GetTimeout(p)})
		}
		output, err := json.Marshal(out)
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		fmt.Fprintln(w, string(output))
		return nil
	}

	now := time.Now()
	fmt.Fprintln(w, "Interval presets:")
	for _, p := range presets {
		every := humanize.RelTime(now, now.Add(p.Duration()), "", "")
		fmt.Fprintf(w, "  %-18s %4ds  (every %s)\n", p.String(), p.Seconds(), every)
	}
	return nil
}

func init() {
	presetsCmd.Flags().BoolVar(&presetsJSON, "json", false, "Output in JSON format")
}
