package binding

import (
	"context"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/keepmind9/radarcord/pkg/constants"
	"github.com/keepmind9/radarcord/pkg/radarcord"
	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"github.com/sirupsen/logrus"
)

// FeishuAPI is the slice of the Feishu (Lark) open API the messenger uses
type FeishuAPI interface {
	// GetChat fails when the chat does not exist or the app is not a member
	GetChat(ctx context.Context, chatID string) error
	// SendText posts a text message into a chat
	SendText(ctx context.Context, chatID, text string) error
}

// larkAPI implements FeishuAPI with the official SDK client
type larkAPI struct {
	client *lark.Client
	options
}

// NewLarkAPI creates a FeishuAPI from app credentials
func NewLarkAPI(appID, appSecret string, opts ...Option) FeishuAPI {
	o := newOptions(opts)
	o.log().WithField("app_id", maskSecret(appID)).Info("creating-feishu-client")
	return &larkAPI{client: lark.NewClient(appID, appSecret), options: o}
}

func (l *larkAPI) GetChat(ctx context.Context, chatID string) error {
	req := larkim.NewGetChatReqBuilder().
		ChatId(chatID).
		Build()

	resp, err := l.client.Im.Chat.Get(ctx, req)
	if err != nil {
		return err
	}
	if !resp.Success() {
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}
	return nil
}

func (l *larkAPI) SendText(ctx context.Context, chatID, text string) error {
	content, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return err
	}

	body := larkim.NewCreateMessageReqBodyBuilder().
		ReceiveId(chatID).
		MsgType(larkim.MsgTypeText).
		Content(string(content)).
		Build()

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(body).
		Build()

	resp, err := l.client.Im.Message.Create(ctx, req)
	if err != nil {
		return err
	}
	if !resp.Success() {
		l.log().WithFields(logrus.Fields{
			"chat_id":    chatID,
			"code":       resp.Code,
			"msg":        resp.Msg,
			"request_id": resp.RequestId(),
		}).Error("failed-to-send-message-to-feishu-api-error")
		return fmt.Errorf("API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}
	return nil
}

// FeishuMessenger mirrors post results into Feishu group chats
type FeishuMessenger struct {
	api FeishuAPI
	options
}

// NewFeishuMessenger creates a messenger over the Feishu API
func NewFeishuMessenger(api FeishuAPI, opts ...Option) *FeishuMessenger {
	return &FeishuMessenger{api: api, options: newOptions(opts)}
}

var _ radarcord.Messenger = (*FeishuMessenger)(nil)

// ResolveChannel checks that the chat exists
func (f *FeishuMessenger) ResolveChannel(ctx context.Context, chatID string) (*radarcord.ChannelInfo, error) {
	if chatID == "" {
		return nil, fmt.Errorf("chat ID is required for Feishu")
	}
	if err := f.api.GetChat(ctx, chatID); err != nil {
		return nil, fmt.Errorf("failed to fetch chat %s: %w", chatID, err)
	}
	return &radarcord.ChannelInfo{ID: chatID, TextBased: true}, nil
}

// SendMessage sends msg as a text message
func (f *FeishuMessenger) SendMessage(ctx context.Context, chatID string, msg radarcord.Message) error {
	text := renderPlainText(msg)
	if n := utf8.RuneCountInString(text); n > constants.MaxFeishuMessageLength {
		f.log().WithFields(logrus.Fields{
			"original_length": n,
			"max_length":      constants.MaxFeishuMessageLength,
		}).Info("truncating-message-for-feishu-limit")
		text = truncateTail(text, constants.MaxFeishuMessageLength)
	}

	if err := f.api.SendText(ctx, chatID, text); err != nil {
		return fmt.Errorf("failed to send message to chat %s: %w", chatID, err)
	}

	f.log().WithField("chat_id", chatID).Debug("stats-message-sent-to-feishu")
	return nil
}

// SendWebhook is not supported by Feishu
func (f *FeishuMessenger) SendWebhook(context.Context, radarcord.WebhookData, radarcord.Message) error {
	return radarcord.ErrWebhookUnsupported
}
