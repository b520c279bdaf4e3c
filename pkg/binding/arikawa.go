package binding

import (
	"context"
	"fmt"
	"sync"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/webhook"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/keepmind9/radarcord/pkg/constants"
	"github.com/keepmind9/radarcord/pkg/radarcord"
	"github.com/sirupsen/logrus"
)

// ArikawaReadyState exposes the last Ready event of an arikawa state
type ArikawaReadyState interface {
	Ready() gateway.ReadyEvent
}

// ArikawaGuildStore lists cached guilds; store.Cabinet satisfies it
type ArikawaGuildStore interface {
	Guilds() ([]discord.Guild, error)
}

// ArikawaClient defines the REST calls the messenger needs from state.State
type ArikawaClient interface {
	Channel(id discord.ChannelID) (*discord.Channel, error)
	SendMessageComplex(channelID discord.ChannelID, data api.SendMessageData) (*discord.Message, error)
}

// ArikawaWebhook executes a single webhook
type ArikawaWebhook interface {
	Execute(data webhook.ExecuteData) error
}

// ArikawaConnection reads readiness, identity and guild count off an
// arikawa state
type ArikawaConnection struct {
	ready  ArikawaReadyState
	guilds ArikawaGuildStore
	options
}

// NewArikawaConnection creates a connection from a state's Ready accessor and
// its guild store, usually NewArikawaConnection(s, s.Cabinet)
func NewArikawaConnection(ready ArikawaReadyState, guilds ArikawaGuildStore, opts ...Option) *ArikawaConnection {
	return &ArikawaConnection{ready: ready, guilds: guilds, options: newOptions(opts)}
}

var _ radarcord.Connection = (*ArikawaConnection)(nil)

// IsReady reports whether a Ready event with a valid user was received
func (c *ArikawaConnection) IsReady() bool {
	if c.ready == nil {
		return false
	}
	return c.ready.Ready().User.ID.IsValid()
}

// BotID returns the bot user's id
func (c *ArikawaConnection) BotID() string {
	if !c.IsReady() {
		return ""
	}
	return c.ready.Ready().User.ID.String()
}

// GuildCount returns the number of cached guilds, 0 when the store fails
func (c *ArikawaConnection) GuildCount() int {
	if c.guilds == nil {
		return 0
	}
	guilds, err := c.guilds.Guilds()
	if err != nil {
		c.log().WithField("error", err).Warn("failed-to-list-arikawa-guilds")
		return 0
	}
	return len(guilds)
}

// ArikawaMessenger implements radarcord.Messenger over arikawa
type ArikawaMessenger struct {
	client     ArikawaClient
	newWebhook func(id discord.WebhookID, token string) ArikawaWebhook
	options
}

// NewArikawaMessenger creates a messenger over an arikawa client or state
func NewArikawaMessenger(client ArikawaClient, opts ...Option) *ArikawaMessenger {
	return &ArikawaMessenger{
		client:  client,
		options: newOptions(opts),
		newWebhook: func(id discord.WebhookID, token string) ArikawaWebhook {
			return webhook.New(id, token)
		},
	}
}

var _ radarcord.Messenger = (*ArikawaMessenger)(nil)

// ResolveChannel fetches the channel and reports whether it accepts messages
func (a *ArikawaMessenger) ResolveChannel(_ context.Context, channelID string) (*radarcord.ChannelInfo, error) {
	id, err := parseSnowflake(channelID)
	if err != nil {
		return nil, err
	}
	channel, err := a.client.Channel(discord.ChannelID(id))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel %s: %w", channelID, err)
	}
	if channel == nil {
		return nil, fmt.Errorf("channel %s not found", channelID)
	}
	return &radarcord.ChannelInfo{
		ID:        channel.ID.String(),
		TextBased: isArikawaTextChannel(channel.Type),
	}, nil
}

// SendMessage sends msg to a channel
func (a *ArikawaMessenger) SendMessage(_ context.Context, channelID string, msg radarcord.Message) error {
	id, err := parseSnowflake(channelID)
	if err != nil {
		return err
	}

	_, err = a.client.SendMessageComplex(discord.ChannelID(id), api.SendMessageData{
		Content: truncateTail(msg.Content, constants.MaxDiscordMessageLength),
		Embeds:  toArikawaEmbeds(msg.Embeds),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to channel %s: %w", channelID, err)
	}

	a.log().WithField("channel", channelID).Debug("stats-message-sent-to-discord")
	return nil
}

// SendWebhook executes a webhook with msg
func (a *ArikawaMessenger) SendWebhook(_ context.Context, hook radarcord.WebhookData, msg radarcord.Message) error {
	id, err := parseSnowflake(hook.ID)
	if err != nil {
		return err
	}

	err = a.newWebhook(discord.WebhookID(id), hook.Token).Execute(webhook.ExecuteData{
		Content: truncateTail(msg.Content, constants.MaxDiscordMessageLength),
		Embeds:  toArikawaEmbeds(msg.Embeds),
	})
	if err != nil {
		return fmt.Errorf("failed to execute webhook %s: %w", hook.ID, err)
	}

	a.log().WithFields(logrus.Fields{
		"webhook": hook.ID,
		"token":   maskSecret(hook.Token),
	}).Debug("stats-message-sent-to-discord-webhook")
	return nil
}

func parseSnowflake(s string) (discord.Snowflake, error) {
	sf, err := discord.ParseSnowflake(s)
	if err != nil {
		return 0, fmt.Errorf("invalid snowflake %q: %w", s, err)
	}
	if !sf.IsValid() {
		return 0, fmt.Errorf("invalid snowflake %q", s)
	}
	return sf, nil
}

func toArikawaEmbeds(embeds []radarcord.Embed) []discord.Embed {
	if len(embeds) == 0 {
		return nil
	}
	out := make([]discord.Embed, 0, len(embeds))
	for _, e := range embeds {
		fields := make([]discord.EmbedField, 0, len(e.Fields))
		for _, f := range e.Fields {
			fields = append(fields, discord.EmbedField{
				Name:   f.Name,
				Value:  truncateTail(f.Value, constants.MaxDiscordEmbedFieldLength),
				Inline: f.Inline,
			})
		}
		out = append(out, discord.Embed{
			Title:       e.Title,
			Description: e.Description,
			Fields:      fields,
		})
	}
	return out
}

func isArikawaTextChannel(t discord.ChannelType) bool {
	switch t {
	case discord.GuildText,
		discord.DirectMessage,
		discord.GroupDM,
		discord.GuildNews,
		discord.GuildVoice,
		discord.GuildNewsThread,
		discord.GuildPublicThread,
		discord.GuildPrivateThread:
		return true
	}
	return false
}

// ArikawaGateway is an open arikawa state ready for posting
type ArikawaGateway struct {
	state *state.State
	opts  []Option
}

// OpenArikawa logs in with the guilds intent and waits for the Ready event.
// opts are passed on to the connection and the messenger.
func OpenArikawa(ctx context.Context, token string, opts ...Option) (*ArikawaGateway, error) {
	log := newOptions(opts).log()
	log.WithField("token", maskSecret(token)).Info("opening-arikawa-gateway")

	s := state.New("Bot " + token)
	s.AddIntents(gateway.IntentGuilds)

	ready := make(chan struct{})
	var once sync.Once
	s.AddHandler(func(r *gateway.ReadyEvent) {
		once.Do(func() {
			log.WithFields(logrus.Fields{
				"user":   r.User.Username,
				"guilds": len(r.Guilds),
			}).Info("arikawa-gateway-ready")
			close(ready)
		})
	})

	if err := s.Open(ctx); err != nil {
		return nil, fmt.Errorf("failed to open discord connection: %w", err)
	}

	select {
	case <-ready:
		return &ArikawaGateway{state: s, opts: opts}, nil
	case <-ctx.Done():
		s.Close()
		return nil, fmt.Errorf("waiting for discord ready event: %w", ctx.Err())
	}
}

// Connection returns the stats-client view of the state
func (g *ArikawaGateway) Connection() radarcord.Connection {
	return NewArikawaConnection(g.state, g.state.Cabinet, g.opts...)
}

// Messenger returns the notifier view of the state
func (g *ArikawaGateway) Messenger() radarcord.Messenger {
	return NewArikawaMessenger(g.state, g.opts...)
}

// Close closes the gateway connection
func (g *ArikawaGateway) Close() error {
	if err := g.state.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	return nil
}
