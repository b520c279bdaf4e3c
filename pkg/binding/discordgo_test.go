package binding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/keepmind9/radarcord/pkg/constants"
	"github.com/keepmind9/radarcord/pkg/radarcord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockDiscordgoSession records calls instead of hitting the REST API
type mockDiscordgoSession struct {
	channels map[string]*discordgo.Channel
	sendErr  error

	sent     []*discordgo.MessageSend
	sentTo   []string
	webhooks []*discordgo.WebhookParams
	hookIDs  []string
}

func (m *mockDiscordgoSession) Channel(channelID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	ch, ok := m.channels[channelID]
	if !ok {
		return nil, errors.New("HTTP 404 Not Found")
	}
	return ch, nil
}

func (m *mockDiscordgoSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sent = append(m.sent, data)
	m.sentTo = append(m.sentTo, channelID)
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (m *mockDiscordgoSession) WebhookExecute(webhookID, _ string, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.webhooks = append(m.webhooks, data)
	m.hookIDs = append(m.hookIDs, webhookID)
	return nil, nil
}

func newMockDiscordgoSession() *mockDiscordgoSession {
	return &mockDiscordgoSession{
		channels: map[string]*discordgo.Channel{
			"100": {ID: "100", Type: discordgo.ChannelTypeGuildText},
			"200": {ID: "200", Type: discordgo.ChannelTypeGuildCategory},
			"300": {ID: "300", Type: discordgo.ChannelTypeGuildPublicThread},
		},
	}
}

func statsMessage() radarcord.Message {
	return radarcord.Message{
		Embeds: []radarcord.Embed{radarcord.DefaultEmbed(&radarcord.StatsPostResult{
			StatusCode: 200,
			Body:       radarcord.StatsPostBody{Message: "ok"},
			Message:    constants.StatsPostedMessage,
		})},
	}
}

func TestDiscordgoConnection(t *testing.T) {
	state := discordgo.NewState()
	conn := NewDiscordgoConnection(state)

	assert.False(t, conn.IsReady())
	assert.Empty(t, conn.BotID())
	assert.Equal(t, 0, conn.GuildCount())

	state.User = &discordgo.User{ID: "123456789012345678"}
	require.NoError(t, state.GuildAdd(&discordgo.Guild{ID: "1"}))
	require.NoError(t, state.GuildAdd(&discordgo.Guild{ID: "2"}))

	assert.True(t, conn.IsReady())
	assert.Equal(t, "123456789012345678", conn.BotID())
	assert.Equal(t, 2, conn.GuildCount())
}

func TestDiscordgoConnection_NilState(t *testing.T) {
	conn := NewDiscordgoConnection(nil)
	assert.False(t, conn.IsReady())
	assert.Empty(t, conn.BotID())
	assert.Equal(t, 0, conn.GuildCount())
}

func TestDiscordgoMessenger_ResolveChannel(t *testing.T) {
	m := NewDiscordgoMessenger(newMockDiscordgoSession())

	tests := []struct {
		name     string
		id       string
		wantText bool
		wantErr  bool
	}{
		{name: "guild text", id: "100", wantText: true},
		{name: "category", id: "200", wantText: false},
		{name: "thread", id: "300", wantText: true},
		{name: "unknown", id: "999", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := m.ResolveChannel(context.Background(), tt.id)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, info)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, info.ID)
			assert.Equal(t, tt.wantText, info.TextBased)
		})
	}
}

func TestDiscordgoMessenger_SendMessage(t *testing.T) {
	session := newMockDiscordgoSession()
	m := NewDiscordgoMessenger(session)

	require.NoError(t, m.SendMessage(context.Background(), "100", statsMessage()))

	require.Len(t, session.sent, 1)
	assert.Equal(t, "100", session.sentTo[0])
	embed := session.sent[0].Embeds[0]
	assert.Equal(t, "Message from Radarcord API", embed.Title)
	require.Len(t, embed.Fields, 2)
	assert.Equal(t, "Status Code", embed.Fields[0].Name)
	assert.Equal(t, "200", embed.Fields[0].Value)
	assert.True(t, embed.Fields[0].Inline)
}

func TestDiscordgoMessenger_SendMessageTruncates(t *testing.T) {
	session := newMockDiscordgoSession()
	m := NewDiscordgoMessenger(session)

	long := strings.Repeat("a", constants.MaxDiscordMessageLength+50)
	require.NoError(t, m.SendMessage(context.Background(), "100", radarcord.Message{Content: long}))

	got := session.sent[0].Content
	assert.Len(t, got, constants.MaxDiscordMessageLength)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Nil(t, session.sent[0].Embeds)
}

func TestDiscordgoMessenger_SendErrors(t *testing.T) {
	session := newMockDiscordgoSession()
	session.sendErr = errors.New("Missing Permissions")
	m := NewDiscordgoMessenger(session)

	err := m.SendMessage(context.Background(), "100", statsMessage())
	assert.ErrorContains(t, err, "Missing Permissions")

	err = m.SendWebhook(context.Background(), radarcord.WebhookData{ID: "1", Token: "t"}, statsMessage())
	assert.ErrorContains(t, err, "Missing Permissions")
}

func TestDiscordgoMessenger_SendWebhook(t *testing.T) {
	session := newMockDiscordgoSession()
	m := NewDiscordgoMessenger(session)

	hook := radarcord.WebhookData{ID: "555", Token: "webhook-token-value"}
	require.NoError(t, m.SendWebhook(context.Background(), hook, radarcord.Message{Content: "posted"}))

	require.Len(t, session.webhooks, 1)
	assert.Equal(t, "555", session.hookIDs[0])
	assert.Equal(t, "posted", session.webhooks[0].Content)
}

func TestDiscordgoMessenger_NilSession(t *testing.T) {
	m := NewDiscordgoMessenger(nil)
	ctx := context.Background()

	_, err := m.ResolveChannel(ctx, "100")
	assert.Error(t, err)
	assert.Error(t, m.SendMessage(ctx, "100", radarcord.Message{}))
	assert.Error(t, m.SendWebhook(ctx, radarcord.WebhookData{}, radarcord.Message{}))
}

func TestDiscordgoMessenger_WithNotifier(t *testing.T) {
	session := newMockDiscordgoSession()
	n, err := radarcord.NewNotifier(NewDiscordgoMessenger(session))
	require.NoError(t, err)

	cb, err := n.SendEmbed("100", nil)
	require.NoError(t, err)
	require.NoError(t, cb(context.Background(), &radarcord.StatsPostResult{StatusCode: 200}))
	assert.Len(t, session.sent, 1)

	cb, err = n.SendEmbed("200", nil)
	require.NoError(t, err)
	assert.ErrorContains(t, cb(context.Background(), &radarcord.StatsPostResult{StatusCode: 200}), "not text based")
}
