package binding

import (
	"context"
	"errors"
	"testing"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/webhook"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/keepmind9/radarcord/pkg/radarcord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadyState struct {
	ev gateway.ReadyEvent
}

func (m *mockReadyState) Ready() gateway.ReadyEvent { return m.ev }

type mockGuildStore struct {
	guilds []discord.Guild
	err    error
}

func (m *mockGuildStore) Guilds() ([]discord.Guild, error) { return m.guilds, m.err }

type mockArikawaClient struct {
	channels map[discord.ChannelID]*discord.Channel
	sendErr  error
	sent     []api.SendMessageData
	sentTo   []discord.ChannelID
}

func (m *mockArikawaClient) Channel(id discord.ChannelID) (*discord.Channel, error) {
	ch, ok := m.channels[id]
	if !ok {
		return nil, errors.New("Unknown Channel")
	}
	return ch, nil
}

func (m *mockArikawaClient) SendMessageComplex(id discord.ChannelID, data api.SendMessageData) (*discord.Message, error) {
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sent = append(m.sent, data)
	m.sentTo = append(m.sentTo, id)
	return &discord.Message{ChannelID: id}, nil
}

type mockArikawaWebhook struct {
	err      error
	executed []webhook.ExecuteData
}

func (m *mockArikawaWebhook) Execute(data webhook.ExecuteData) error {
	if m.err != nil {
		return m.err
	}
	m.executed = append(m.executed, data)
	return nil
}

func newMockArikawaClient() *mockArikawaClient {
	return &mockArikawaClient{
		channels: map[discord.ChannelID]*discord.Channel{
			100: {ID: 100, Type: discord.GuildText},
			200: {ID: 200, Type: discord.GuildCategory},
		},
	}
}

func TestArikawaConnection(t *testing.T) {
	ready := &mockReadyState{}
	store := &mockGuildStore{guilds: []discord.Guild{{ID: 1}, {ID: 2}, {ID: 3}}}
	conn := NewArikawaConnection(ready, store)

	assert.False(t, conn.IsReady())
	assert.Empty(t, conn.BotID())

	ready.ev.User = discord.User{ID: 123456789012345678}
	assert.True(t, conn.IsReady())
	assert.Equal(t, "123456789012345678", conn.BotID())
	assert.Equal(t, 3, conn.GuildCount())
}

func TestArikawaConnection_GuildStoreError(t *testing.T) {
	conn := NewArikawaConnection(&mockReadyState{}, &mockGuildStore{err: errors.New("store closed")})
	assert.Equal(t, 0, conn.GuildCount())

	assert.Equal(t, 0, NewArikawaConnection(nil, nil).GuildCount())
	assert.False(t, NewArikawaConnection(nil, nil).IsReady())
}

func TestArikawaMessenger_ResolveChannel(t *testing.T) {
	m := NewArikawaMessenger(newMockArikawaClient())
	ctx := context.Background()

	info, err := m.ResolveChannel(ctx, "100")
	require.NoError(t, err)
	assert.Equal(t, "100", info.ID)
	assert.True(t, info.TextBased)

	info, err = m.ResolveChannel(ctx, "200")
	require.NoError(t, err)
	assert.False(t, info.TextBased)

	_, err = m.ResolveChannel(ctx, "999")
	assert.Error(t, err)

	_, err = m.ResolveChannel(ctx, "not-a-snowflake")
	assert.ErrorContains(t, err, "invalid snowflake")

	_, err = m.ResolveChannel(ctx, "0")
	assert.ErrorContains(t, err, "invalid snowflake")
}

func TestArikawaMessenger_SendMessage(t *testing.T) {
	client := newMockArikawaClient()
	m := NewArikawaMessenger(client)

	require.NoError(t, m.SendMessage(context.Background(), "100", statsMessage()))

	require.Len(t, client.sent, 1)
	assert.Equal(t, discord.ChannelID(100), client.sentTo[0])
	require.Len(t, client.sent[0].Embeds, 1)
	embed := client.sent[0].Embeds[0]
	assert.Equal(t, "Message from Radarcord API", embed.Title)
	assert.Equal(t, "Body", embed.Fields[1].Name)

	client.sendErr = errors.New("Missing Access")
	assert.ErrorContains(t, m.SendMessage(context.Background(), "100", statsMessage()), "Missing Access")
}

func TestArikawaMessenger_SendWebhook(t *testing.T) {
	hook := &mockArikawaWebhook{}
	var gotID discord.WebhookID
	var gotToken string

	m := NewArikawaMessenger(newMockArikawaClient())
	m.newWebhook = func(id discord.WebhookID, token string) ArikawaWebhook {
		gotID, gotToken = id, token
		return hook
	}

	data := radarcord.WebhookData{ID: "555", Token: "webhook-token-value"}
	require.NoError(t, m.SendWebhook(context.Background(), data, radarcord.Message{Content: "posted"}))

	assert.Equal(t, discord.WebhookID(555), gotID)
	assert.Equal(t, "webhook-token-value", gotToken)
	require.Len(t, hook.executed, 1)
	assert.Equal(t, "posted", hook.executed[0].Content)

	hook.err = errors.New("Unknown Webhook")
	assert.ErrorContains(t, m.SendWebhook(context.Background(), data, radarcord.Message{}), "Unknown Webhook")

	assert.Error(t, m.SendWebhook(context.Background(), radarcord.WebhookData{ID: "abc"}, radarcord.Message{}))
}

func TestIsArikawaTextChannel(t *testing.T) {
	assert.True(t, isArikawaTextChannel(discord.GuildText))
	assert.True(t, isArikawaTextChannel(discord.DirectMessage))
	assert.True(t, isArikawaTextChannel(discord.GuildPrivateThread))
	assert.False(t, isArikawaTextChannel(discord.GuildCategory))
}
