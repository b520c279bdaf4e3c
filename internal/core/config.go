// Package core provides the configuration and the engine behind the radarcord CLI.
//
// The core package connects a Discord gateway with the Radarcord stats API. It
// handles:
//
//   - Configuration loading and validation (from YAML files)
//   - Opening the configured Discord library and waiting for Ready
//   - Building the stats client and the notification callbacks
//   - Running and stopping the autopost scheduler
//
// # Example Configuration
//
//	radarcord:
//	  token: "${RADARCORD_TOKEN}"
//	  interval: "safe"
//	  overlap: "skip"
//	discord:
//	  library: "discordgo"
//	  token: "${DISCORD_TOKEN}"
//	notify:
//	  channel:
//	    id: "123456789012345678"
//	    mode: "embed"
//	logging:
//	  level: "info"
package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/keepmind9/radarcord/internal/logger"
	"github.com/keepmind9/radarcord/pkg/constants"
	"github.com/keepmind9/radarcord/pkg/radarcord"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLogLevel      = "info"
	DefaultLogMaxBackups = 5

	DefaultLibrary         = LibraryDiscordgo
	DefaultIntervalName    = "default"
	DefaultOverlap         = "allow"
	DefaultReviewsEndpoint = "bot"
	DefaultChannelMode     = ModeEmbed
)

// Discord libraries the CLI can open
const (
	LibraryDiscordgo = "discordgo"
	LibraryArikawa   = "arikawa"
)

// Channel notification modes
const (
	ModeEmbed   = "embed"
	ModeContent = "content"
)

// LoadConfig loads configuration from file and expands environment variables
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses and validates YAML configuration
func ParseConfig(data []byte) (*Config, error) {
	expandedData, err := expandEnv(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to expand environment variables: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// expandEnv replaces ${VAR_NAME} patterns with environment variable values
func expandEnv(input string) (string, error) {
	var missingVars []string

	result := os.Expand(input, func(key string) string {
		if val := os.Getenv(key); val != "" {
			return val
		}
		missingVars = append(missingVars, key)
		return ""
	})

	if len(missingVars) > 0 {
		return "", fmt.Errorf("missing required environment variables: %s",
			strings.Join(missingVars, ", "))
	}

	return result, nil
}

// validateConfig fills defaults and rejects unusable configuration
func validateConfig(config *Config) error {
	rc := &config.Radarcord
	if rc.Token == "" {
		return fmt.Errorf("radarcord.token is required")
	}
	if rc.APIRoot == "" {
		rc.APIRoot = constants.DefaultAPIRoot
	}
	rc.APIRoot = strings.TrimRight(rc.APIRoot, "/")
	if rc.ShardCount == 0 {
		rc.ShardCount = constants.DefaultShardCount
	}
	if rc.ShardCount < 0 {
		return fmt.Errorf("radarcord.shard_count must be positive (got %d)", rc.ShardCount)
	}
	if rc.Interval == "" {
		rc.Interval = DefaultIntervalName
	}
	interval, err := parseInterval(rc.Interval)
	if err != nil {
		return fmt.Errorf("invalid radarcord.interval: %w", err)
	}
	if interval < constants.MinInterval {
		return fmt.Errorf("radarcord.interval must be at least %v (got %v)", constants.MinInterval, interval)
	}
	if rc.Overlap == "" {
		rc.Overlap = DefaultOverlap
	}
	if rc.Overlap != "allow" && rc.Overlap != "skip" {
		return fmt.Errorf("radarcord.overlap must be allow or skip (got %q)", rc.Overlap)
	}
	if rc.ReviewsEndpoint == "" {
		rc.ReviewsEndpoint = DefaultReviewsEndpoint
	}
	if rc.ReviewsEndpoint != "bot" && rc.ReviewsEndpoint != "reviews" {
		return fmt.Errorf("radarcord.reviews_endpoint must be bot or reviews (got %q)", rc.ReviewsEndpoint)
	}
	if rc.Timeout == "" {
		rc.Timeout = constants.DefaultRequestTimeout.String()
	}
	if _, err := time.ParseDuration(rc.Timeout); err != nil {
		return fmt.Errorf("invalid radarcord.timeout: %w", err)
	}

	dc := &config.Discord
	if dc.Token == "" {
		return fmt.Errorf("discord.token is required")
	}
	if dc.Library == "" {
		dc.Library = DefaultLibrary
	}
	dc.Library = strings.ToLower(dc.Library)
	if dc.Library != LibraryDiscordgo && dc.Library != LibraryArikawa {
		return fmt.Errorf("discord.library must be %s or %s (got %q)", LibraryDiscordgo, LibraryArikawa, dc.Library)
	}
	if dc.ReadyTimeout == "" {
		dc.ReadyTimeout = constants.DefaultReadyTimeout.String()
	}
	if _, err := time.ParseDuration(dc.ReadyTimeout); err != nil {
		return fmt.Errorf("invalid discord.ready_timeout: %w", err)
	}

	if err := validateNotify(&config.Notify); err != nil {
		return err
	}

	// Set default logging configuration
	if config.Logging.Level == "" {
		config.Logging.Level = DefaultLogLevel
	}
	if config.Logging.MaxSize == 0 {
		config.Logging.MaxSize = constants.DefaultLogMaxSize
	}
	if config.Logging.MaxBackups == 0 {
		config.Logging.MaxBackups = DefaultLogMaxBackups
	}
	if config.Logging.MaxAge == 0 {
		config.Logging.MaxAge = constants.DefaultLogMaxAge
	}

	return nil
}

func validateNotify(n *NotifyConfig) error {
	if n.Channel.Mode == "" {
		n.Channel.Mode = DefaultChannelMode
	}
	if n.Channel.Mode != ModeEmbed && n.Channel.Mode != ModeContent {
		return fmt.Errorf("notify.channel.mode must be %s or %s (got %q)", ModeEmbed, ModeContent, n.Channel.Mode)
	}
	if n.Channel.Mode == ModeContent && n.Channel.ID != "" && n.Channel.Content == "" {
		return fmt.Errorf("notify.channel.content is required in content mode")
	}

	if (n.Webhook.ID == "") != (n.Webhook.Token == "") {
		return fmt.Errorf("notify.webhook requires both id and token")
	}

	if n.Telegram.Enabled {
		if n.Telegram.Token == "" || n.Telegram.ChatID == "" {
			return fmt.Errorf("notify.telegram requires token and chat_id when enabled")
		}
		if _, err := strconv.ParseInt(n.Telegram.ChatID, 10, 64); err != nil {
			return fmt.Errorf("notify.telegram.chat_id must be numeric: %w", err)
		}
	}

	if n.Feishu.Enabled {
		if n.Feishu.AppID == "" || n.Feishu.AppSecret == "" || n.Feishu.ChatID == "" {
			return fmt.Errorf("notify.feishu requires app_id, app_secret and chat_id when enabled")
		}
	}

	return nil
}

// parseInterval accepts a preset name, a Go duration or plain seconds
func parseInterval(s string) (time.Duration, error) {
	if preset, err := radarcord.ParseIntervalPreset(s); err == nil {
		return preset.Duration(), nil
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%q is neither a preset nor a duration", s)
	}
	return d, nil
}

// IntervalDuration returns the autopost interval
func (c *Config) IntervalDuration() time.Duration {
	d, err := parseInterval(c.Radarcord.Interval)
	if err != nil {
		return constants.DefaultInterval
	}
	return d
}

// OverlapPolicy returns the configured scheduler overlap policy
func (c *Config) OverlapPolicy() radarcord.OverlapPolicy {
	if c.Radarcord.Overlap == "skip" {
		return radarcord.SkipIfBusy
	}
	return radarcord.AllowConcurrent
}

// ReviewsEndpoint returns the configured reviews path
func (c *Config) ReviewsEndpoint() radarcord.ReviewsEndpoint {
	if c.Radarcord.ReviewsEndpoint == "reviews" {
		return radarcord.ReviewsFromReviews
	}
	return radarcord.ReviewsFromBot
}

// RequestTimeout returns the HTTP timeout for Radarcord calls
func (c *Config) RequestTimeout() time.Duration {
	d, err := time.ParseDuration(c.Radarcord.Timeout)
	if err != nil {
		return constants.DefaultRequestTimeout
	}
	return d
}

// ReadyTimeout returns how long to wait for the gateway Ready event
func (c *Config) ReadyTimeout() time.Duration {
	d, err := time.ParseDuration(c.Discord.ReadyTimeout)
	if err != nil {
		return constants.DefaultReadyTimeout
	}
	return d
}

// LoggerConfig converts the logging section for logger.InitLogger
func (c *Config) LoggerConfig() logger.Config {
	return logger.Config{
		Level:        c.Logging.Level,
		Format:       c.Logging.Format,
		File:         c.Logging.File,
		MaxSize:      c.Logging.MaxSize,
		MaxBackups:   c.Logging.MaxBackups,
		MaxAge:       c.Logging.MaxAge,
		Compress:     c.Logging.Compress,
		EnableStdout: c.Logging.StdoutEnabled(),
	}
}

// NotifyTargets lists the configured notification targets by name
func (c *Config) NotifyTargets() []string {
	var targets []string
	if c.Notify.Channel.ID != "" {
		targets = append(targets, "channel")
	}
	if c.Notify.Webhook.ID != "" {
		targets = append(targets, "webhook")
	}
	if c.Notify.Telegram.Enabled {
		targets = append(targets, "telegram")
	}
	if c.Notify.Feishu.Enabled {
		targets = append(targets, "feishu")
	}
	return targets
}
