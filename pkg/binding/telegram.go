package binding

import (
	"context"
	"fmt"
	"strconv"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/keepmind9/radarcord/pkg/constants"
	"github.com/keepmind9/radarcord/pkg/radarcord"
	"github.com/sirupsen/logrus"
)

// TelegramAPI defines the Bot API calls the messenger needs; *tgbotapi.BotAPI
// satisfies it
type TelegramAPI interface {
	GetChat(config tgbotapi.ChatInfoConfig) (tgbotapi.Chat, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

var _ TelegramAPI = (*tgbotapi.BotAPI)(nil)

// TelegramMessenger mirrors post results into Telegram chats. Channel ids are
// numeric chat ids. Embeds are flattened to plain text.
type TelegramMessenger struct {
	bot TelegramAPI
	options
}

// NewTelegramMessenger creates a messenger over a Telegram bot
func NewTelegramMessenger(bot TelegramAPI, opts ...Option) *TelegramMessenger {
	return &TelegramMessenger{bot: bot, options: newOptions(opts)}
}

// NewTelegramMessengerFromToken logs in to the Bot API
func NewTelegramMessengerFromToken(token string, opts ...Option) (*TelegramMessenger, error) {
	o := newOptions(opts)
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		o.log().WithField("error", err).Error("failed-to-initialize-telegram-bot")
		return nil, fmt.Errorf("failed to initialize Telegram bot: %w", err)
	}

	o.log().WithFields(logrus.Fields{
		"bot_username": bot.Self.UserName,
		"bot_id":       bot.Self.ID,
	}).Info("telegram-bot-initialized-successfully")
	return &TelegramMessenger{bot: bot, options: o}, nil
}

var _ radarcord.Messenger = (*TelegramMessenger)(nil)

// ResolveChannel checks that the chat exists and the bot can see it
func (t *TelegramMessenger) ResolveChannel(_ context.Context, chatID string) (*radarcord.ChannelInfo, error) {
	id, err := parseChatID(chatID)
	if err != nil {
		return nil, err
	}
	chat, err := t.bot.GetChat(tgbotapi.ChatInfoConfig{ChatConfig: tgbotapi.ChatConfig{ChatID: id}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chat %s: %w", chatID, err)
	}
	return &radarcord.ChannelInfo{
		ID:        strconv.FormatInt(chat.ID, 10),
		TextBased: true,
	}, nil
}

// SendMessage sends msg as plain text
func (t *TelegramMessenger) SendMessage(_ context.Context, chatID string, msg radarcord.Message) error {
	id, err := parseChatID(chatID)
	if err != nil {
		return err
	}

	text := renderPlainText(msg)
	if n := utf8.RuneCountInString(text); n > constants.MaxTelegramMessageLength {
		t.log().WithFields(logrus.Fields{
			"original_length": n,
			"max_length":      constants.MaxTelegramMessageLength,
		}).Info("truncating-message-for-telegram-limit")
		text = truncateTail(text, constants.MaxTelegramMessageLength)
	}

	if _, err := t.bot.Send(tgbotapi.NewMessage(id, text)); err != nil {
		return fmt.Errorf("failed to send message to chat %s: %w", chatID, err)
	}

	t.log().WithField("chat_id", chatID).Debug("stats-message-sent-to-telegram")
	return nil
}

// SendWebhook is not supported by Telegram
func (t *TelegramMessenger) SendWebhook(context.Context, radarcord.WebhookData, radarcord.Message) error {
	return radarcord.ErrWebhookUnsupported
}

func parseChatID(chatID string) (int64, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat ID format: %w", err)
	}
	return id, nil
}
