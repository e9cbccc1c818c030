package discord_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/reactkit/internal/messenger"
	rkdiscord "github.com/gosuda/reactkit/internal/messenger/discord"
)

type recordingPublisher struct {
	mu        sync.Mutex
	reactions []messenger.ReactionEvent
	messages  []messenger.Message
	err       error
}

func (p *recordingPublisher) PublishReaction(_ context.Context, ev messenger.ReactionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reactions = append(p.reactions, ev)
	return p.err
}

func (p *recordingPublisher) PublishMessage(_ context.Context, msg messenger.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return p.err
}

func reaction(user, emoji string) *discordgo.MessageReaction {
	return &discordgo.MessageReaction{
		UserID:    user,
		MessageID: "msg-001",
		ChannelID: "ch-123",
		Emoji:     discordgo.Emoji{Name: emoji},
	}
}

func botSession(t *testing.T) *discordgo.Session {
	t.Helper()

	s, err := discordgo.New("Bot test-token")
	require.NoError(t, err)
	s.State.User = &discordgo.User{ID: "bot-1"}

	return s
}

func TestBridge_Reactions(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	b := rkdiscord.NewBridge(t.Context(), pub)
	s := botSession(t)

	b.OnReactionAdd(s, &discordgo.MessageReactionAdd{MessageReaction: reaction("u-1", "▶")})
	b.OnReactionAdd(s, &discordgo.MessageReactionAdd{MessageReaction: reaction("bot-1", "◀")})
	b.OnReactionRemove(s, &discordgo.MessageReactionRemove{MessageReaction: reaction("u-1", "▶")})
	b.OnReactionAdd(s, &discordgo.MessageReactionAdd{})

	require.Len(t, pub.reactions, 2)
	assert.Equal(t, messenger.ReactionEvent{
		Action:    messenger.ReactionAdded,
		Marker:    messenger.MarkerNext,
		UserID:    "u-1",
		MessageID: "msg-001",
		ChannelID: "ch-123",
		Platform:  "discord",
	}, pub.reactions[0])
	assert.Equal(t, messenger.ReactionRemoved, pub.reactions[1].Action)
}

func TestBridge_CustomEmojiUsesAPIName(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	b := rkdiscord.NewBridge(t.Context(), pub)

	r := reaction("u-1", "party")
	r.Emoji.ID = "123456"
	b.OnReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: r})

	require.Len(t, pub.reactions, 1)
	assert.Equal(t, messenger.Marker("party:123456"), pub.reactions[0].Marker)
}

func TestBridge_Messages(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{}
	b := rkdiscord.NewBridge(t.Context(), pub)

	b.OnMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        "msg-9",
		ChannelID: "ch-123",
		Content:   "~menu",
		Author:    &discordgo.User{ID: "u-1"},
	}})
	b.OnMessageCreate(nil, &discordgo.MessageCreate{})

	require.Len(t, pub.messages, 1)
	assert.Equal(t, messenger.Message{
		ID:        "msg-9",
		ChannelID: "ch-123",
		AuthorID:  "u-1",
		Content:   "~menu",
		Platform:  "discord",
	}, pub.messages[0])
}

func TestBridge_PublishFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	pub := &recordingPublisher{err: errors.New("redis down")}
	b := rkdiscord.NewBridge(t.Context(), pub)

	assert.NotPanics(t, func() {
		b.OnReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: reaction("u-1", "▶")})
		b.OnMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{ID: "m"}})
	})
}

func TestBridge_AttachEnablesSyncEvents(t *testing.T) {
	t.Parallel()

	s := botSession(t)
	detach := rkdiscord.NewBridge(t.Context(), &recordingPublisher{}).Attach(s)
	defer detach()

	assert.True(t, s.SyncEvents)
}

func TestBridge_FeedsBroker(t *testing.T) {
	t.Parallel()

	broker := messenger.NewBroker()
	events, cleanup := broker.SubscribeReactions(t.Context(), messenger.ReactionFilter{MessageID: "msg-001", UserID: "u-1"})
	defer cleanup()

	b := rkdiscord.NewBridge(t.Context(), broker)
	b.OnReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: reaction("u-2", "◀")})
	b.OnReactionAdd(nil, &discordgo.MessageReactionAdd{MessageReaction: reaction("u-1", "▶")})

	ev := <-events
	assert.Equal(t, messenger.MarkerNext, ev.Marker)
}
