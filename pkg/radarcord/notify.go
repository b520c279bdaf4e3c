package radarcord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// EmbedField is one name/value pair of an Embed
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a platform-neutral rich message block
type Embed struct {
	Title       string
	Description string
	Fields      []EmbedField
}

// Message is platform-neutral outgoing content
type Message struct {
	Content string
	Embeds  []Embed
}

// ChannelInfo describes a resolved channel
type ChannelInfo struct {
	ID        string
	TextBased bool
}

// Messenger is what a chat platform binding provides to the notifier
type Messenger interface {
	// ResolveChannel looks a channel up by id. It fails when the id does not
	// resolve to a channel.
	ResolveChannel(ctx context.Context, channelID string) (*ChannelInfo, error)
	// SendMessage posts msg into the channel
	SendMessage(ctx context.Context, channelID string, msg Message) error
	// SendWebhook posts msg through a webhook without a live connection
	SendWebhook(ctx context.Context, hook WebhookData, msg Message) error
}

// EmbedBuilder builds a custom embed from a post result
type EmbedBuilder func(result *StatsPostResult) Embed

// ContentBuilder builds arbitrary message content from a post result
type ContentBuilder func(result *StatsPostResult) Message

// DefaultEmbed shows the status code and the raw response body
func DefaultEmbed(result *StatsPostResult) Embed {
	body, err := json.Marshal(result.Body)
	if err != nil {
		body = []byte(fmt.Sprintf("%+v", result.Body))
	}
	return Embed{
		Title:       "Message from Radarcord API",
		Description: "The Radarcord API has sent back a message!",
		Fields: []EmbedField{
			{Name: "Status Code", Value: fmt.Sprintf("%d", result.StatusCode), Inline: true},
			{Name: "Body", Value: string(body), Inline: true},
		},
	}
}

// NotifierOption configures a Notifier
type NotifierOption func(*Notifier)

// WithNotifierLogger sets where swallowed send failures are logged
func WithNotifierLogger(log logrus.FieldLogger) NotifierOption {
	return func(n *Notifier) {
		if log != nil {
			n.log = log
		}
	}
}

// OnSendError registers an observer for swallowed send failures
func OnSendError(fn func(target string, err error)) NotifierOption {
	return func(n *Notifier) {
		n.onSendError = fn
	}
}

// Notifier produces callbacks that mirror post results into chat.
//
// Send failures are isolated: they are logged and reported to the OnSendError
// observer, never returned, so a notification problem cannot stop an
// autopost loop. Channel resolution failures are returned.
type Notifier struct {
	messenger   Messenger
	log         logrus.FieldLogger
	onSendError func(target string, err error)
}

// NewNotifier creates a Notifier over a platform Messenger
func NewNotifier(m Messenger, opts ...NotifierOption) (*Notifier, error) {
	if m == nil {
		return nil, &ArgumentError{Arg: "messenger", Expected: "a radarcord.Messenger", Got: "nil"}
	}
	n := &Notifier{
		messenger: m,
		log:       logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// SendEmbed returns a callback sending an embed to channelID. A nil custom
// builder falls back to DefaultEmbed.
func (n *Notifier) SendEmbed(channelID string, custom EmbedBuilder) (Callback, error) {
	if channelID == "" {
		return nil, &ArgumentError{Arg: "channelID", Expected: "a channel id", Got: "an empty string"}
	}
	build := custom
	if build == nil {
		build = DefaultEmbed
	}
	return func(ctx context.Context, result *StatsPostResult) error {
		msg := Message{Embeds: []Embed{build(result)}}
		return n.sendToChannel(ctx, channelID, msg)
	}, nil
}

// SendCustomContent returns a callback sending whatever content builds
func (n *Notifier) SendCustomContent(channelID string, content ContentBuilder) (Callback, error) {
	if channelID == "" {
		return nil, &ArgumentError{Arg: "channelID", Expected: "a channel id", Got: "an empty string"}
	}
	if content == nil {
		return nil, &ArgumentError{Arg: "content", Expected: "a ContentBuilder", Got: "nil"}
	}
	return func(ctx context.Context, result *StatsPostResult) error {
		return n.sendToChannel(ctx, channelID, content(result))
	}, nil
}

// SendMessageWithWebhook returns a callback posting through a webhook. A nil
// custom builder sends the default embed.
func (n *Notifier) SendMessageWithWebhook(hook WebhookData, custom ContentBuilder) (Callback, error) {
	if hook.ID == "" || hook.Token == "" {
		return nil, &ArgumentError{Arg: "hook", Expected: "webhook id and token", Got: "an incomplete WebhookData"}
	}
	return func(ctx context.Context, result *StatsPostResult) error {
		var msg Message
		if custom != nil {
			msg = custom(result)
		} else {
			msg = Message{Embeds: []Embed{DefaultEmbed(result)}}
		}
		if err := n.messenger.SendWebhook(ctx, hook, msg); err != nil {
			n.reportSendError("webhook:"+hook.ID, err)
		}
		return nil
	}, nil
}

func (n *Notifier) sendToChannel(ctx context.Context, channelID string, msg Message) error {
	channel, err := n.messenger.ResolveChannel(ctx, channelID)
	if err != nil || channel == nil {
		return newError(err, "Invalid channel ID: %s.", channelID)
	}
	if !channel.TextBased {
		return newError(nil, "Channel ID %s is valid, however the resolved channel is not text based!", channelID)
	}

	if err := n.messenger.SendMessage(ctx, channelID, msg); err != nil {
		n.reportSendError(channelID, err)
	}
	return nil
}

func (n *Notifier) reportSendError(target string, err error) {
	n.log.WithFields(logrus.Fields{
		"target": target,
		"error":  err,
	}).Error("failed-to-send-stats-notification")
	if n.onSendError != nil {
		n.onSendError(target, err)
	}
}

// Chain runs callbacks in order with the same result. Every callback runs;
// their errors are joined.
func Chain(cbs ...Callback) Callback {
	return func(ctx context.Context, result *StatsPostResult) error {
		var errs []error
		for _, cb := range cbs {
			if cb == nil {
				continue
			}
			if err := cb(ctx, result); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
