package core

// Config represents the complete radarcord configuration structure
type Config struct {
	Radarcord RadarcordConfig `yaml:"radarcord"`
	Discord   DiscordConfig   `yaml:"discord"`
	Notify    NotifyConfig    `yaml:"notify"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// RadarcordConfig represents the Radarcord API client configuration
type RadarcordConfig struct {
	Token           string `yaml:"token"`            // Radarcord API token, sent verbatim as Authorization
	APIRoot         string `yaml:"api_root"`         // Default: https://radarcord.net/api
	ShardCount      int    `yaml:"shard_count"`      // Default: 1
	Interval        string `yaml:"interval"`         // Preset name (default, safe, ...) or duration ("5m")
	Overlap         string `yaml:"overlap"`          // allow | skip
	ReviewsEndpoint string `yaml:"reviews_endpoint"` // bot | reviews
	Timeout         string `yaml:"timeout"`          // HTTP request timeout (e.g., "15s")
}

// DiscordConfig represents the Discord gateway configuration
type DiscordConfig struct {
	Library      string `yaml:"library"`       // discordgo | arikawa
	Token        string `yaml:"token"`         // Bot token without the "Bot " prefix
	ReadyTimeout string `yaml:"ready_timeout"` // Max wait for the Ready event (default: 30s)
}

// NotifyConfig represents where post results are mirrored to
type NotifyConfig struct {
	Channel  ChannelNotifyConfig  `yaml:"channel"`
	Webhook  WebhookNotifyConfig  `yaml:"webhook"`
	Telegram TelegramNotifyConfig `yaml:"telegram"`
	Feishu   FeishuNotifyConfig   `yaml:"feishu"`
}

// ChannelNotifyConfig sends each result into a Discord channel
type ChannelNotifyConfig struct {
	ID      string `yaml:"id"`
	Mode    string `yaml:"mode"`    // embed | content
	Content string `yaml:"content"` // Template for content mode: {status}, {message}, {body}, {guilds}
}

// WebhookNotifyConfig sends each result through a Discord webhook
type WebhookNotifyConfig struct {
	ID      string `yaml:"id"`
	Token   string `yaml:"token"`
	Content string `yaml:"content"` // Optional template; the default embed is sent when empty
}

// TelegramNotifyConfig mirrors results into a Telegram chat
type TelegramNotifyConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  string `yaml:"chat_id"`
}

// FeishuNotifyConfig mirrors results into a Feishu group chat
type FeishuNotifyConfig struct {
	Enabled   bool   `yaml:"enabled"`
	AppID     string `yaml:"app_id"`
	AppSecret string `yaml:"app_secret"`
	ChatID    string `yaml:"chat_id"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`         // debug, info, warn, error
	Format       string `yaml:"format"`        // json | text (default: by level)
	File         string `yaml:"file"`          // Log file path
	MaxSize      int    `yaml:"max_size"`      // Single file max size in MB (default: 100)
	MaxBackups   int    `yaml:"max_backups"`   // Number of backups to keep (default: 5)
	MaxAge       int    `yaml:"max_age"`       // Maximum days to retain (default: 30)
	Compress     bool   `yaml:"compress"`      // Whether to compress old logs
	EnableStdout *bool  `yaml:"enable_stdout"` // Also output to stdout (default: true)
}

// StdoutEnabled reports whether logs go to stdout
func (l LoggingConfig) StdoutEnabled() bool {
	return l.EnableStdout == nil || *l.EnableStdout
}
