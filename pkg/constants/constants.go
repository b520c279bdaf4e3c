package constants

import "time"

// Radarcord API
const (
	// DefaultRoot is the Radarcord website root
	DefaultRoot = "https://radarcord.net"
	// DefaultAPIRoot is the base URL every API path is appended to
	DefaultAPIRoot = DefaultRoot + "/api"
	// StatsPostedMessage is the human summary attached to every successful post
	StatsPostedMessage = "Stats posted successfully!"
)

// Autopost intervals
const (
	// DefaultInterval is used when an autopost is started with a zero interval
	DefaultInterval = 120 * time.Second
	// MinInterval is the shortest interval the CLI configuration accepts
	MinInterval = 60 * time.Second
	// DefaultShardCount is reported when the caller passes a non-positive shard count
	DefaultShardCount = 1
)

// Message length limits for different platforms
const (
	// MaxDiscordMessageLength is Discord's message character limit
	MaxDiscordMessageLength = 2000
	// MaxDiscordEmbedFieldLength is Discord's embed field value limit
	MaxDiscordEmbedFieldLength = 1024
	// MaxTelegramMessageLength is Telegram's message character limit
	MaxTelegramMessageLength = 4096
	// MaxFeishuMessageLength is Feishu's message character limit
	MaxFeishuMessageLength = 20000
)

// Gateway timeouts
const (
	// DefaultReadyTimeout bounds how long the CLI waits for the gateway Ready event
	DefaultReadyTimeout = 30 * time.Second
	// DefaultRequestTimeout is the HTTP timeout the CLI uses when none is configured
	DefaultRequestTimeout = 15 * time.Second
)

// Token masking
const (
	// MinSecretLengthForMasking is the minimum secret length to apply masking
	MinSecretLengthForMasking = 10
	// SecretMaskPrefixLength is the length of prefix to show before masking
	SecretMaskPrefixLength = 4
	// SecretMaskSuffixLength is the length of suffix to show after masking
	SecretMaskSuffixLength = 4
)

// Logging defaults
const (
	// DefaultLogMaxSize is the default maximum log file size in MB
	DefaultLogMaxSize = 100
	// DefaultLogMaxAge is the default maximum number of days to retain old logs
	DefaultLogMaxAge = 30
)
