package menu_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/reactkit/internal/menu"
	"github.com/gosuda/reactkit/internal/messenger"
	"github.com/gosuda/reactkit/internal/messenger/messengertest"
)

func displayed(fake *messengertest.Fake, n, page int) *menu.Menu {
	opts := options(time.Second)
	opts.Page = page
	opts.Message = &messenger.Message{ID: "display", ChannelID: "ch-1", AuthorID: "bot"}
	return menu.New(fake, invocation(), pages(n), opts)
}

func trigger(marker messenger.Marker) messenger.ReactionEvent {
	return messenger.ReactionEvent{
		Action:    messenger.ReactionAdded,
		Marker:    marker,
		UserID:    invoker,
		MessageID: "display",
		ChannelID: "ch-1",
	}
}

func TestNextPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		pages int
		from  int
		want  int
	}{
		{name: "interior advances by one", pages: 5, from: 2, want: 3},
		{name: "first advances by one", pages: 5, from: 0, want: 1},
		{name: "last wraps to first", pages: 5, from: 4, want: 0},
		{name: "single page stays", pages: 1, from: 0, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fake := messengertest.New()
			m := displayed(fake, tc.pages, tc.from)

			menu.NextPage(t.Context(), m, trigger(messenger.MarkerNext))

			assert.Equal(t, tc.want, m.Options.Page)
			assert.Equal(t, []messenger.Marker{messenger.MarkerNext}, fake.RemovedMarkers())
		})
	}
}

func TestPrevPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		pages int
		from  int
		want  int
	}{
		{name: "interior retreats by one", pages: 5, from: 2, want: 1},
		{name: "last retreats by one", pages: 5, from: 4, want: 3},
		{name: "first wraps to last", pages: 5, from: 0, want: 4},
		{name: "single page stays", pages: 1, from: 0, want: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fake := messengertest.New()
			m := displayed(fake, tc.pages, tc.from)

			menu.PrevPage(t.Context(), m, trigger(messenger.MarkerPrev))

			assert.Equal(t, tc.want, m.Options.Page)
		})
	}
}

func TestFirstAndLastPage(t *testing.T) {
	t.Parallel()

	fake := messengertest.New()
	m := displayed(fake, 4, 2)

	menu.LastPage(t.Context(), m, trigger(messenger.MarkerLast))
	assert.Equal(t, 3, m.Options.Page)

	menu.FirstPage(t.Context(), m, trigger(messenger.MarkerFirst))
	assert.Equal(t, 0, m.Options.Page)

	assert.Equal(t, []messenger.Marker{messenger.MarkerLast, messenger.MarkerFirst}, fake.RemovedMarkers())
}

func TestPageControls_RemoveFailureIsIgnored(t *testing.T) {
	t.Parallel()

	fake := messengertest.New()
	fake.RemoveErr = errors.New("missing permissions")
	m := displayed(fake, 3, 0)

	menu.NextPage(t.Context(), m, trigger(messenger.MarkerNext))

	assert.Equal(t, 1, m.Options.Page)
}

func TestClose(t *testing.T) {
	t.Parallel()

	t.Run("deletes display message", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()
		m := displayed(fake, 2, 0)

		menu.Close(t.Context(), m, trigger(messenger.MarkerClose))

		assert.Nil(t, m.Options.Message)
		assert.Equal(t, []messenger.MessageID{"display"}, fake.DeletedIDs())
	})

	t.Run("second close is a no-op", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()
		m := displayed(fake, 2, 0)

		require.NotPanics(t, func() {
			menu.Close(t.Context(), m, trigger(messenger.MarkerClose))
			menu.Close(t.Context(), m, trigger(messenger.MarkerClose))
		})

		assert.Len(t, fake.DeletedIDs(), 1)
		assert.Equal(t, []string{"delete"}, fake.Calls())
	})

	t.Run("delete failure keeps the session", func(t *testing.T) {
		t.Parallel()

		fake := messengertest.New()
		fake.DeleteErr = errors.New("unknown message")
		m := displayed(fake, 2, 0)

		menu.Close(t.Context(), m, trigger(messenger.MarkerClose))

		assert.NotNil(t, m.Options.Message)
	})
}

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := menu.DefaultOptions()

	assert.Equal(t, 0, opts.Page)
	assert.Equal(t, 30*time.Second, opts.Timeout)
	assert.Nil(t, opts.Message)
	assert.False(t, opts.NonBlockingSeed)
	require.Len(t, opts.Controls, 3)
	assert.Equal(t, messenger.MarkerPrev, opts.Controls[0].Marker)
	assert.Equal(t, messenger.MarkerClose, opts.Controls[1].Marker)
	assert.Equal(t, messenger.MarkerNext, opts.Controls[2].Marker)
}
