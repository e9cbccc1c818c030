package messenger_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/reactkit/internal/messenger"
)

func added(msgID messenger.MessageID, user messenger.UserID, marker messenger.Marker) messenger.ReactionEvent {
	return messenger.ReactionEvent{
		Action:    messenger.ReactionAdded,
		Marker:    marker,
		UserID:    user,
		MessageID: msgID,
		ChannelID: "ch-1",
	}
}

func TestReactionFilter_Matches(t *testing.T) {
	t.Parallel()

	ev := added("msg-1", "u-1", "👍")

	tests := []struct {
		name   string
		filter messenger.ReactionFilter
		want   bool
	}{
		{name: "empty filter matches", filter: messenger.ReactionFilter{}, want: true},
		{name: "message match", filter: messenger.ReactionFilter{MessageID: "msg-1"}, want: true},
		{name: "message mismatch", filter: messenger.ReactionFilter{MessageID: "msg-2"}, want: false},
		{name: "user mismatch", filter: messenger.ReactionFilter{UserID: "u-2"}, want: false},
		{name: "action mismatch", filter: messenger.ReactionFilter{Action: messenger.ReactionRemoved}, want: false},
		{name: "channel mismatch", filter: messenger.ReactionFilter{ChannelID: "ch-2"}, want: false},
		{name: "platform mismatch", filter: messenger.ReactionFilter{Platform: "slack"}, want: false},
		{name: "full match", filter: messenger.ReactionFilter{MessageID: "msg-1", UserID: "u-1", Action: messenger.ReactionAdded}, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.filter.Matches(ev))
		})
	}
}

func TestMessageFilter_Matches(t *testing.T) {
	t.Parallel()

	msg := messenger.Message{ID: "m", ChannelID: "ch-1", AuthorID: "u-1", Platform: "discord"}

	assert.True(t, messenger.MessageFilter{}.Matches(msg))
	assert.True(t, messenger.MessageFilter{ChannelID: "ch-1", AuthorID: "u-1", Platform: "discord"}.Matches(msg))
	assert.False(t, messenger.MessageFilter{ChannelID: "ch-2"}.Matches(msg))
	assert.False(t, messenger.MessageFilter{AuthorID: "u-2"}.Matches(msg))
	assert.False(t, messenger.MessageFilter{Platform: "slack"}.Matches(msg))
}

func TestBroker_SubscribeReactions(t *testing.T) {
	t.Parallel()

	t.Run("delivers matching events in publish order", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		b := messenger.NewBroker()
		events, cleanup := b.SubscribeReactions(ctx, messenger.ReactionFilter{MessageID: "msg-1", UserID: "u-1"})
		defer cleanup()

		require.NoError(t, b.PublishReaction(ctx, added("msg-1", "u-1", "A")))
		require.NoError(t, b.PublishReaction(ctx, added("msg-1", "u-2", "X")))
		require.NoError(t, b.PublishReaction(ctx, added("msg-2", "u-1", "Y")))
		require.NoError(t, b.PublishReaction(ctx, added("msg-1", "u-1", "B")))

		first := <-events
		second := <-events
		assert.Equal(t, messenger.Marker("A"), first.Marker)
		assert.Equal(t, messenger.Marker("B"), second.Marker)

		select {
		case ev := <-events:
			t.Fatalf("unexpected event %+v", ev)
		default:
		}
	})

	t.Run("cleanup closes channel and unregisters", func(t *testing.T) {
		t.Parallel()

		b := messenger.NewBroker()
		events, cleanup := b.SubscribeReactions(t.Context(), messenger.ReactionFilter{})

		reactions, _ := b.Subscribers()
		assert.Equal(t, 1, reactions)

		cleanup()
		cleanup() // idempotent

		_, ok := <-events
		assert.False(t, ok)
		reactions, _ = b.Subscribers()
		assert.Equal(t, 0, reactions)
	})

	t.Run("context cancellation tears subscription down", func(t *testing.T) {
		t.Parallel()

		b := messenger.NewBroker()
		ctx, cancel := context.WithCancel(t.Context())
		events, cleanup := b.SubscribeReactions(ctx, messenger.ReactionFilter{})
		defer cleanup()

		cancel()

		require.Eventually(t, func() bool {
			reactions, _ := b.Subscribers()
			return reactions == 0
		}, time.Second, time.Millisecond)

		_, ok := <-events
		assert.False(t, ok)
	})

	t.Run("full subscriber drops instead of blocking", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		b := messenger.NewBroker()
		_, cleanup := b.SubscribeReactions(ctx, messenger.ReactionFilter{})
		defer cleanup()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for range 100 {
				_ = b.PublishReaction(ctx, added("msg-1", "u-1", "A"))
			}
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("publish blocked on a full subscriber")
		}
	})
}

func TestBroker_SubscribeMessages(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	b := messenger.NewBroker()
	messages, cleanup := b.SubscribeMessages(ctx, messenger.MessageFilter{ChannelID: "ch-1", AuthorID: "u-1"})

	require.NoError(t, b.PublishMessage(ctx, messenger.Message{ID: "a", ChannelID: "ch-2", AuthorID: "u-1"}))
	require.NoError(t, b.PublishMessage(ctx, messenger.Message{ID: "b", ChannelID: "ch-1", AuthorID: "u-2"}))
	require.NoError(t, b.PublishMessage(ctx, messenger.Message{ID: "c", ChannelID: "ch-1", AuthorID: "u-1", Content: "red"}))

	got := <-messages
	assert.Equal(t, messenger.MessageID("c"), got.ID)
	assert.Equal(t, "red", got.Content)

	cleanup()
	_, n := b.Subscribers()
	assert.Equal(t, 0, n)
}

func TestNextReaction(t *testing.T) {
	t.Parallel()

	t.Run("returns queued event", func(t *testing.T) {
		t.Parallel()

		events := make(chan messenger.ReactionEvent, 1)
		events <- added("msg-1", "u-1", "A")

		ev, err := messenger.NextReaction(t.Context(), events, nil)
		require.NoError(t, err)
		assert.Equal(t, messenger.Marker("A"), ev.Marker)
	})

	t.Run("expiry is a timeout", func(t *testing.T) {
		t.Parallel()

		_, err := messenger.NextReaction(t.Context(), make(chan messenger.ReactionEvent), time.After(10*time.Millisecond))
		require.ErrorIs(t, err, messenger.ErrTimeout)
	})

	t.Run("cancellation returns context error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err := messenger.NextReaction(ctx, make(chan messenger.ReactionEvent), nil)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("closed channel without cancellation is a timeout", func(t *testing.T) {
		t.Parallel()

		events := make(chan messenger.ReactionEvent)
		close(events)

		_, err := messenger.NextReaction(t.Context(), events, nil)
		require.ErrorIs(t, err, messenger.ErrTimeout)
	})
}
