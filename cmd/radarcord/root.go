package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/keepmind9/radarcord/internal/core"
	"github.com/keepmind9/radarcord/internal/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFile string
	envFile    string
)

var rootCmd = &cobra.Command{
	Use:   "radarcord",
	Short: "radarcord posts Discord bot stats to the Radarcord bot list",
	Long: `radarcord connects to Discord as your bot (discordgo or arikawa), reports
its guild and shard counts to the Radarcord API once or on a fixed interval,
and can mirror every result into a Discord channel, a webhook, Telegram or
Feishu.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadEnvFile(envFile)
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Load environment variables from this file (default: .env if present)")

	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(autopostCmd)
	rootCmd.AddCommand(reviewsCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnvFile loads path, or ./.env when path is empty and the file exists
func loadEnvFile(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

// defaultConfigLocations are searched in order when --config is not given
func defaultConfigLocations() []string {
	return []string{
		"config.yaml",
		filepath.Join(os.Getenv("HOME"), ".config/radarcord/config.yaml"),
		"/etc/radarcord/config.yaml",
	}
}

// resolveConfigPath returns the explicit path or the first default location
// that exists
func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return path, nil
	}
	for _, loc := range defaultConfigLocations() {
		if _, err := os.Stat(loc); err == nil {
			return loc, nil
		}
	}
	return "", fmt.Errorf("no configuration file found, pass --config or create ./config.yaml")
}

// loadConfig resolves, loads and applies the logging section of the config
func loadConfig() (*core.Config, string, error) {
	path, err := resolveConfigPath(configFile)
	if err != nil {
		return nil, "", err
	}

	config, err := core.LoadConfig(path)
	if err != nil {
		return nil, path, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.InitLogger(config.LoggerConfig()); err != nil {
		return nil, path, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"config_file": path,
		"log_level":   config.Logging.Level,
		"log_file":    config.Logging.File,
	}).Debug("logger-initialized")

	return config, path, nil
}
