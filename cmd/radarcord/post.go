package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/keepmind9/radarcord/internal/core"
	"github.com/keepmind9/radarcord/pkg/radarcord"
	"github.com/spf13/cobra"
)

var (
	postShards int
	postNotify bool
	postJSON   bool

	// engineOptions are applied to every engine the CLI builds
	engineOptions []core.EngineOption
)

// PostOutput is the JSON shape printed by post --json
type PostOutput struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
	Reply      string `json:"reply"`
	Guilds     int    `json:"guilds"`
	Shards     int    `json:"shards"`
}

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Post bot stats to Radarcord once",
	Long: `Connect to Discord, wait for the Ready event and post the current guild
and shard counts to Radarcord once.

With --notify the configured notification targets receive the result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		config, _, err := loadConfig()
		if err != nil {
			return err
		}

		engine, err := startEngine(cmd.Context(), config)
		if err != nil {
			return err
		}
		defer engine.Stop()

		shards := postShards
		if shards <= 0 {
			shards = config.Radarcord.ShardCount
		}

		result, err := engine.PostOnce(cmd.Context(), shards, postNotify)
		if err != nil {
			return fmt.Errorf("failed to post stats: %w", err)
		}

		return printPostResult(cmd.OutOrStdout(), result, engine.GuildCount(), shards, postJSON)
	},
}

func startEngine(ctx context.Context, config *core.Config) (*core.Engine, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	engine := core.NewEngine(config, engineOptions...)
	if err := engine.Start(ctx); err != nil {
		return nil, err
	}
	return engine, nil
}

func printPostResult(w io.Writer, result *radarcord.StatsPostResult, guilds, shards int, jsonFormat bool) error {
	if jsonFormat {
		output, err := json.Marshal(PostOutput{
			StatusCode: result.StatusCode,
			Message:    result.Message,
			Reply:      result.Body.Message,
			Guilds:     guilds,
			Shards:     shards,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		fmt.Fprintln(w, string(output))
		return nil
	}

	fmt.Fprintf(w, "✓ %s\n", result.Message)
	fmt.Fprintf(w, "  - Status: %d\n", result.StatusCode)
	fmt.Fprintf(w, "  - Guilds: %s\n", humanize.Comma(int64(guilds)))
	fmt.Fprintf(w, "  - Shards: %d\n", shards)
	if result.Body.Message != "" {
		fmt.Fprintf(w, "  - Reply:  %s\n", result.Body.Message)
	}
	return nil
}

func init() {
	postCmd.Flags().IntVar(&postShards, "shards", 0, "Shard count to report (default: radarcord.shard_count)")
	postCmd.Flags().BoolVar(&postNotify, "notify", false, "Send the result to the configured notification targets")
	postCmd.Flags().BoolVar(&postJSON, "json", false, "Output in JSON format")
}
