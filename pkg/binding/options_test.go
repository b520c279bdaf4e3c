package binding

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/keepmind9/radarcord/internal/logger"
	"github.com/keepmind9/radarcord/pkg/constants"
	"github.com/keepmind9/radarcord/pkg/radarcord"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debugLogger() (*logrus.Logger, *logtest.Hook) {
	l, hook := logtest.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return l, hook
}

func messages(hook *logtest.Hook) []string {
	var out []string
	for _, e := range hook.AllEntries() {
		out = append(out, e.Message)
	}
	return out
}

func TestOptions_FallsBackToGlobalLogger(t *testing.T) {
	global, _ := logtest.NewNullLogger()
	logger.SetLogger(global)
	t.Cleanup(func() { logger.SetLogger(nil) })

	assert.Same(t, global, newOptions(nil).log())

	custom, _ := logtest.NewNullLogger()
	assert.Same(t, custom, newOptions([]Option{WithLogger(custom)}).log())
}

func TestDiscordgoMessenger_WithLogger(t *testing.T) {
	l, hook := debugLogger()
	m := NewDiscordgoMessenger(newMockDiscordgoSession(), WithLogger(l))

	require.NoError(t, m.SendMessage(context.Background(), "100", statsMessage()))
	require.NoError(t, m.SendWebhook(context.Background(), radarcord.WebhookData{ID: "555", Token: "hook-token-123456"}, statsMessage()))

	assert.Equal(t, []string{"stats-message-sent-to-discord", "stats-message-sent-to-discord-webhook"}, messages(hook))
	assert.Equal(t, "hook***3456", hook.LastEntry().Data["token"])
}

func TestArikawa_WithLogger(t *testing.T) {
	l, hook := debugLogger()

	conn := NewArikawaConnection(&mockReadyState{}, &mockGuildStore{err: errors.New("store closed")}, WithLogger(l))
	assert.Equal(t, 0, conn.GuildCount())
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "failed-to-list-arikawa-guilds", hook.LastEntry().Message)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)

	m := NewArikawaMessenger(newMockArikawaClient(), WithLogger(l))
	require.NoError(t, m.SendMessage(context.Background(), discord.ChannelID(100).String(), statsMessage()))
	assert.Equal(t, "stats-message-sent-to-discord", hook.LastEntry().Message)
}

func TestTelegramMessenger_MultibyteUnderLimitIsNotTruncated(t *testing.T) {
	l, hook := debugLogger()
	api := &mockTelegramAPI{}
	m := NewTelegramMessenger(api, WithLogger(l))

	// more bytes than the limit, fewer runes
	text := strings.Repeat("é", constants.MaxTelegramMessageLength-100)
	require.Greater(t, len(text), constants.MaxTelegramMessageLength)

	require.NoError(t, m.SendMessage(context.Background(), "42", radarcord.Message{Content: text}))
	assert.Equal(t, text, api.sent[0].Text)
	assert.NotContains(t, messages(hook), "truncating-message-for-telegram-limit")
	assert.Contains(t, messages(hook), "stats-message-sent-to-telegram")
}

func TestTelegramMessenger_MultibyteOverLimitIsTruncated(t *testing.T) {
	l, hook := debugLogger()
	api := &mockTelegramAPI{}
	m := NewTelegramMessenger(api, WithLogger(l))

	text := strings.Repeat("é", constants.MaxTelegramMessageLength+10)
	require.NoError(t, m.SendMessage(context.Background(), "42", radarcord.Message{Content: text}))

	assert.Equal(t, constants.MaxTelegramMessageLength, utf8.RuneCountInString(api.sent[0].Text))
	assert.True(t, strings.HasSuffix(api.sent[0].Text, "..."))
	assert.Contains(t, messages(hook), "truncating-message-for-telegram-limit")
}

func TestFeishuMessenger_MultibyteUnderLimitIsNotTruncated(t *testing.T) {
	l, hook := debugLogger()
	api := &mockFeishuAPI{}
	m := NewFeishuMessenger(api, WithLogger(l))

	text := strings.Repeat("统", constants.MaxFeishuMessageLength-100)
	require.Greater(t, len(text), constants.MaxFeishuMessageLength)

	require.NoError(t, m.SendMessage(context.Background(), "oc_abc", radarcord.Message{Content: text}))
	assert.Equal(t, text, api.sent[0].text)
	assert.NotContains(t, messages(hook), "truncating-message-for-feishu-limit")
	assert.Contains(t, messages(hook), "stats-message-sent-to-feishu")
}

func TestFeishuMessenger_MultibyteOverLimitIsTruncated(t *testing.T) {
	l, hook := debugLogger()
	api := &mockFeishuAPI{}
	m := NewFeishuMessenger(api, WithLogger(l))

	text := strings.Repeat("统", constants.MaxFeishuMessageLength+1)
	require.NoError(t, m.SendMessage(context.Background(), "oc_abc", radarcord.Message{Content: text}))

	assert.Equal(t, constants.MaxFeishuMessageLength, utf8.RuneCountInString(api.sent[0].text))
	assert.Contains(t, messages(hook), "truncating-message-for-feishu-limit")
}
