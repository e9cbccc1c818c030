package prompt_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/reactkit/internal/messenger"
	"github.com/gosuda/reactkit/internal/messenger/messengertest"
	"github.com/gosuda/reactkit/internal/prompt"
)

const user messenger.UserID = "u-1"

func promptMessage() *messenger.Message {
	return &messenger.Message{ID: "prompt-1", ChannelID: "ch-1", AuthorID: "bot", Platform: "fake"}
}

// reactWhenSeeded publishes the given reactions by who once the last marker is attached.
func reactWhenSeeded(fake *messengertest.Fake, last messenger.Marker, who messenger.UserID, reactions ...messenger.Marker) {
	fake.OnAdd = func(msg *messenger.Message, marker messenger.Marker) {
		if marker != last {
			return
		}
		for _, r := range reactions {
			fake.React(msg, who, r)
		}
	}
}

// --- WaitForReaction ---

func TestWaitForReaction(t *testing.T) {
	t.Parallel()

	markers := []messenger.Marker{"A", "B"}

	t.Run("later marker picked first resolves to its index", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()
		reactWhenSeeded(fake, "B", user, "B", "A")

		idx, marker, err := prompt.WaitForReaction(t.Context(), fake, promptMessage(), user, markers, time.Second)

		require.NoError(t, err)
		assert.Equal(t, 1, idx)
		assert.Equal(t, messenger.Marker("B"), marker)
		assert.Equal(t, markers, fake.AddedMarkers())
	})

	t.Run("unlisted markers are ignored", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()
		reactWhenSeeded(fake, "B", user, "C", "A")

		idx, marker, err := prompt.WaitForReaction(t.Context(), fake, promptMessage(), user, markers, time.Second)

		require.NoError(t, err)
		assert.Equal(t, 0, idx)
		assert.Equal(t, messenger.Marker("A"), marker)
	})

	t.Run("only unlisted marker times out", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()
		reactWhenSeeded(fake, "B", user, "C")

		idx, _, err := prompt.WaitForReaction(t.Context(), fake, promptMessage(), user, markers, 50*time.Millisecond)

		require.ErrorIs(t, err, messenger.ErrTimeout)
		assert.Equal(t, -1, idx)
	})

	t.Run("reactions from other users are ignored", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()
		reactWhenSeeded(fake, "B", "someone-else", "A")

		_, _, err := prompt.WaitForReaction(t.Context(), fake, promptMessage(), user, markers, 50*time.Millisecond)

		require.ErrorIs(t, err, messenger.ErrTimeout)
	})

	t.Run("no reaction times out", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()

		_, _, err := prompt.WaitForReaction(t.Context(), fake, promptMessage(), user, markers, 50*time.Millisecond)

		require.ErrorIs(t, err, messenger.ErrTimeout)
		assert.Contains(t, err.Error(), "prompt.WaitForReaction")
	})

	t.Run("pick during seeding is not lost", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()
		reactWhenSeeded(fake, "A", user, "A")

		idx, _, err := prompt.WaitForReaction(t.Context(), fake, promptMessage(), user, markers, time.Second)

		require.NoError(t, err)
		assert.Equal(t, 0, idx)
	})

	t.Run("seeding failure is a transport error", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()
		fake.AddErr = errors.New("missing access")

		_, _, err := prompt.WaitForReaction(t.Context(), fake, promptMessage(), user, markers, time.Second)

		require.ErrorIs(t, err, messenger.ErrTransport)
		assert.NotErrorIs(t, err, messenger.ErrTimeout)
	})

	t.Run("empty markers is structural", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()

		_, _, err := prompt.WaitForReaction(t.Context(), fake, promptMessage(), user, nil, time.Second)

		require.ErrorIs(t, err, messenger.ErrStructural)
		assert.Empty(t, fake.Calls())
	})

	t.Run("non-positive timeout is structural", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()

		_, _, err := prompt.WaitForReaction(t.Context(), fake, promptMessage(), user, markers, 0)

		require.ErrorIs(t, err, messenger.ErrInvalidTimeout)
		assert.Empty(t, fake.Calls())
	})

	t.Run("cancelled context is reported", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()
		ctx, cancel := context.WithCancel(t.Context())
		fake.OnAdd = func(*messenger.Message, messenger.Marker) { cancel() }

		_, _, err := prompt.WaitForReaction(ctx, fake, promptMessage(), user, []messenger.Marker{"A"}, time.Second)

		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("subscription is released", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()
		reactWhenSeeded(fake, "B", user, "A")

		_, _, err := prompt.WaitForReaction(t.Context(), fake, promptMessage(), user, markers, time.Second)
		require.NoError(t, err)

		reactions, _ := fake.Subscribers()
		assert.Equal(t, 0, reactions)
	})
}

// --- WaitForYesNo ---

func TestWaitForYesNo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		marker messenger.Marker
		want   bool
	}{
		{name: "affirmative", marker: messenger.MarkerYes, want: true},
		{name: "negative", marker: messenger.MarkerNo, want: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fake := messengertest.New()
			reactWhenSeeded(fake, messenger.MarkerNo, user, tc.marker)

			got, err := prompt.WaitForYesNo(t.Context(), fake, promptMessage(), user, time.Second)

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, prompt.YesNoMarkers, fake.AddedMarkers())
		})
	}

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()

		got, err := prompt.WaitForYesNo(t.Context(), fake, promptMessage(), user, 30*time.Millisecond)

		require.ErrorIs(t, err, messenger.ErrTimeout)
		assert.False(t, got)
	})
}

// --- WaitForMessage ---

func waitSubscribed(t *testing.T, fake *messengertest.Fake) {
	t.Helper()
	require.Eventually(t, func() bool {
		_, n := fake.Subscribers()
		return n == 1
	}, time.Second, time.Millisecond)
}

func TestWaitForMessage(t *testing.T) {
	t.Parallel()

	t.Run("returns first message by user in channel", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()
		type result struct {
			msg messenger.Message
			ok  bool
		}
		done := make(chan result, 1)

		go func() {
			msg, ok := prompt.WaitForMessage(t.Context(), fake, promptMessage(), user, time.Second)
			done <- result{msg, ok}
		}()

		waitSubscribed(t, fake)
		fake.Say("ch-other", user, "wrong channel")
		fake.Say("ch-1", "someone-else", "wrong user")
		fake.Say("ch-1", user, "red")
		fake.Say("ch-1", user, "blue")

		res := <-done
		require.True(t, res.ok)
		assert.Equal(t, "red", res.msg.Content)
		assert.Equal(t, user, res.msg.AuthorID)
	})

	t.Run("timeout is an empty result", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()

		msg, ok := prompt.WaitForMessage(t.Context(), fake, promptMessage(), user, 20*time.Millisecond)

		assert.False(t, ok)
		assert.Empty(t, msg.ID)
		_, n := fake.Subscribers()
		assert.Equal(t, 0, n)
	})

	t.Run("content variant", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()
		done := make(chan string, 1)

		go func() {
			content, _ := prompt.WaitForMessageContent(t.Context(), fake, promptMessage(), user, time.Second)
			done <- content
		}()

		waitSubscribed(t, fake)
		fake.Say("ch-1", user, "green")

		assert.Equal(t, "green", <-done)
	})

	t.Run("content variant timeout", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()

		content, ok := prompt.WaitForMessageContent(t.Context(), fake, promptMessage(), user, 10*time.Millisecond)

		assert.False(t, ok)
		assert.Empty(t, content)
	})
}
