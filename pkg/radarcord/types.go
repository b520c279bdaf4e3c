package radarcord

import "context"

// StatsPostBody is the JSON body the API answers a stats post with
type StatsPostBody struct {
	Message string `json:"message"`
}

// StatsPostResult is the outcome of one successful stats post
type StatsPostResult struct {
	StatusCode int           `json:"statusCode"`
	Body       StatsPostBody `json:"body"`
	Message    string        `json:"message"`
}

// Review is a single user review of the bot.
// Identifiers are snowflakes kept as text.
type Review struct {
	Content string `json:"content"`
	Stars   int    `json:"stars"`
	BotID   string `json:"botId"`
	UserID  string `json:"userId"`
}

// WebhookData identifies a Discord webhook
type WebhookData struct {
	ID    string `json:"id" yaml:"id"`
	Token string `json:"token" yaml:"token"`
}

// Callback is run with the result of a stats post
type Callback func(ctx context.Context, result *StatsPostResult) error

// Connection is the part of a connected bot client the stats client reads.
// The caller owns its lifecycle.
type Connection interface {
	// IsReady reports whether the gateway has delivered its ready event
	IsReady() bool
	// BotID returns the bot's user/application id, or "" when unknown
	BotID() string
	// GuildCount returns the number of guilds currently cached
	GuildCount() int
}

// IsOK reports whether code is a 2xx HTTP status
func IsOK(code int) bool {
	return code >= 200 && code < 300
}
