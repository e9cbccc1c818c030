package redis_test

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/reactkit/internal/messenger"
	redisstore "github.com/gosuda/reactkit/internal/store/redis"
)

func TestChannels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "reactions", got: redisstore.ReactionsChannel("reactkit"), want: "reactkit:reactions"},
		{name: "messages", got: redisstore.MessagesChannel("reactkit"), want: "reactkit:messages"},
		{name: "custom prefix", got: redisstore.ReactionsChannel("shard-2"), want: "shard-2:reactions"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.got)
		})
	}

	assert.NotEqual(t, redisstore.ReactionsChannel("p"), redisstore.MessagesChannel("p"))
}

func unreachable() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestNew_UnreachableServer(t *testing.T) {
	t.Parallel()

	relay, err := redisstore.New(t.Context(), redisstore.Options{Addr: "127.0.0.1:1", Prefix: "reactkit"})

	require.Error(t, err)
	assert.Nil(t, relay)
	assert.Contains(t, err.Error(), "redis.New: ping")
}

func TestRelay_PublishFailureIsTransport(t *testing.T) {
	t.Parallel()

	relay := redisstore.NewWithClient(unreachable(), "reactkit")
	defer func() { _ = relay.Close() }()

	err := relay.PublishReaction(t.Context(), messenger.ReactionEvent{Action: messenger.ReactionAdded, Marker: messenger.MarkerNext})
	require.ErrorIs(t, err, messenger.ErrTransport)
	assert.Contains(t, err.Error(), "redis.Relay.PublishReaction")

	err = relay.PublishMessage(t.Context(), messenger.Message{ID: "m-1"})
	require.ErrorIs(t, err, messenger.ErrTransport)
	assert.Contains(t, err.Error(), "redis.Relay.PublishMessage")
}

func TestRelay_RunFailsWithoutServer(t *testing.T) {
	t.Parallel()

	relay := redisstore.NewWithClient(unreachable(), "reactkit")
	defer func() { _ = relay.Close() }()

	err := relay.Run(t.Context(), messenger.NewBroker())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis.Relay.Run")
}
