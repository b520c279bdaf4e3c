package binding

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/keepmind9/radarcord/pkg/constants"
	"github.com/keepmind9/radarcord/pkg/radarcord"
	"github.com/sirupsen/logrus"
)

// DiscordgoSession defines the REST calls the messenger needs from
// discordgo.Session, so tests can mock it
type DiscordgoSession interface {
	Channel(channelID string, options ...discordgo.RequestOption) (*discordgo.Channel, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

var _ DiscordgoSession = (*discordgo.Session)(nil)

// DiscordgoConnection reads readiness, identity and guild count off a
// discordgo state cache
type DiscordgoConnection struct {
	state *discordgo.State
}

// NewDiscordgoConnection wraps the state of a discordgo session
func NewDiscordgoConnection(state *discordgo.State) *DiscordgoConnection {
	return &DiscordgoConnection{state: state}
}

var _ radarcord.Connection = (*DiscordgoConnection)(nil)

// IsReady reports whether the Ready event has populated the state
func (c *DiscordgoConnection) IsReady() bool {
	if c.state == nil {
		return false
	}
	c.state.RLock()
	defer c.state.RUnlock()
	return c.state.User != nil
}

// BotID returns the bot user's id
func (c *DiscordgoConnection) BotID() string {
	if c.state == nil {
		return ""
	}
	c.state.RLock()
	defer c.state.RUnlock()
	if c.state.User == nil {
		return ""
	}
	return c.state.User.ID
}

// GuildCount returns the number of guilds in the state cache
func (c *DiscordgoConnection) GuildCount() int {
	if c.state == nil {
		return 0
	}
	c.state.RLock()
	defer c.state.RUnlock()
	return len(c.state.Guilds)
}

// DiscordgoMessenger implements radarcord.Messenger over discordgo
type DiscordgoMessenger struct {
	session DiscordgoSession
	options
}

// NewDiscordgoMessenger creates a messenger over a discordgo session
func NewDiscordgoMessenger(session DiscordgoSession, opts ...Option) *DiscordgoMessenger {
	return &DiscordgoMessenger{session: session, options: newOptions(opts)}
}

var _ radarcord.Messenger = (*DiscordgoMessenger)(nil)

// ResolveChannel fetches the channel and reports whether it accepts messages
func (d *DiscordgoMessenger) ResolveChannel(ctx context.Context, channelID string) (*radarcord.ChannelInfo, error) {
	if d.session == nil {
		return nil, fmt.Errorf("discord session not initialized")
	}
	channel, err := d.session.Channel(channelID, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch channel %s: %w", channelID, err)
	}
	if channel == nil {
		return nil, fmt.Errorf("channel %s not found", channelID)
	}
	return &radarcord.ChannelInfo{
		ID:        channel.ID,
		TextBased: isDiscordgoTextChannel(channel.Type),
	}, nil
}

// SendMessage sends msg to a channel
func (d *DiscordgoMessenger) SendMessage(ctx context.Context, channelID string, msg radarcord.Message) error {
	if d.session == nil {
		return fmt.Errorf("discord session not initialized")
	}

	_, err := d.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: truncateTail(msg.Content, constants.MaxDiscordMessageLength),
		Embeds:  toDiscordgoEmbeds(msg.Embeds),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send message to channel %s: %w", channelID, err)
	}

	d.log().WithField("channel", channelID).Debug("stats-message-sent-to-discord")
	return nil
}

// SendWebhook executes a webhook with msg
func (d *DiscordgoMessenger) SendWebhook(ctx context.Context, hook radarcord.WebhookData, msg radarcord.Message) error {
	if d.session == nil {
		return fmt.Errorf("discord session not initialized")
	}

	_, err := d.session.WebhookExecute(hook.ID, hook.Token, false, &discordgo.WebhookParams{
		Content: truncateTail(msg.Content, constants.MaxDiscordMessageLength),
		Embeds:  toDiscordgoEmbeds(msg.Embeds),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to execute webhook %s: %w", hook.ID, err)
	}

	d.log().WithFields(logrus.Fields{
		"webhook": hook.ID,
		"token":   maskSecret(hook.Token),
	}).Debug("stats-message-sent-to-discord-webhook")
	return nil
}

func toDiscordgoEmbeds(embeds []radarcord.Embed) []*discordgo.MessageEmbed {
	if len(embeds) == 0 {
		return nil
	}
	out := make([]*discordgo.MessageEmbed, 0, len(embeds))
	for _, e := range embeds {
		fields := make([]*discordgo.MessageEmbedField, 0, len(e.Fields))
		for _, f := range e.Fields {
			fields = append(fields, &discordgo.MessageEmbedField{
				Name:   f.Name,
				Value:  truncateTail(f.Value, constants.MaxDiscordEmbedFieldLength),
				Inline: f.Inline,
			})
		}
		out = append(out, &discordgo.MessageEmbed{
			Title:       e.Title,
			Description: e.Description,
			Fields:      fields,
		})
	}
	return out
}

func isDiscordgoTextChannel(t discordgo.ChannelType) bool {
	switch t {
	case discordgo.ChannelTypeGuildText,
		discordgo.ChannelTypeDM,
		discordgo.ChannelTypeGroupDM,
		discordgo.ChannelTypeGuildNews,
		discordgo.ChannelTypeGuildVoice,
		discordgo.ChannelTypeGuildNewsThread,
		discordgo.ChannelTypeGuildPublicThread,
		discordgo.ChannelTypeGuildPrivateThread:
		return true
	}
	return false
}

// DiscordgoGateway is an open discordgo session ready for posting
type DiscordgoGateway struct {
	session *discordgo.Session
	opts    []Option
}

// OpenDiscordgo logs in with the guilds intent and waits for the Ready event.
// opts are passed on to the messenger.
func OpenDiscordgo(ctx context.Context, token string, opts ...Option) (*DiscordgoGateway, error) {
	log := newOptions(opts).log()
	log.WithField("token", maskSecret(token)).Info("opening-discordgo-gateway")

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	ready := make(chan struct{})
	session.AddHandlerOnce(func(_ *discordgo.Session, r *discordgo.Ready) {
		log.WithFields(logrus.Fields{
			"user":   r.User.Username,
			"guilds": len(r.Guilds),
		}).Info("discordgo-gateway-ready")
		close(ready)
	})

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("failed to open discord connection: %w", err)
	}

	select {
	case <-ready:
		return &DiscordgoGateway{session: session, opts: opts}, nil
	case <-ctx.Done():
		session.Close()
		return nil, fmt.Errorf("waiting for discord ready event: %w", ctx.Err())
	}
}

// Connection returns the stats-client view of the session
func (g *DiscordgoGateway) Connection() radarcord.Connection {
	return NewDiscordgoConnection(g.session.State)
}

// Messenger returns the notifier view of the session
func (g *DiscordgoGateway) Messenger() radarcord.Messenger {
	return NewDiscordgoMessenger(g.session, g.opts...)
}

// Close closes the gateway connection
func (g *DiscordgoGateway) Close() error {
	if err := g.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}
	return nil
}
