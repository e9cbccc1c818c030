// Package redis relays chat events between bot processes over Redis pub/sub.
package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/reactkit/internal/messenger"
)

// Options configure a Relay connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces the pub/sub channels.
	Prefix string
}

// Relay publishes chat events to Redis and feeds events published by any
// process back into a local messenger.Publisher.
//
// Messages are stamped with the Relay's origin before publishing so command
// routers can tell their own gateway's messages from other processes'.
type Relay struct {
	client *redis.Client
	prefix string
	origin string
}

// Compile-time interface check.
var _ messenger.Publisher = (*Relay)(nil) //nolint:gochecknoglobals // compile-time check

// New connects to Redis and verifies the connection.
func New(ctx context.Context, opts Options) (*Relay, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis.New: ping: %w", err)
	}

	return NewWithClient(client, opts.Prefix), nil
}

// NewWithClient wraps an existing client without pinging it.
func NewWithClient(client *redis.Client, prefix string) *Relay {
	return &Relay{client: client, prefix: prefix, origin: uuid.NewString()}
}

// Origin returns the identifier stamped on messages this Relay publishes.
func (r *Relay) Origin() string {
	return r.origin
}

// Close closes the underlying Redis client.
func (r *Relay) Close() error {
	if err := r.client.Close(); err != nil {
		return fmt.Errorf("redis.Relay.Close: %w", err)
	}
	return nil
}

// PublishReaction publishes ev as JSON on the reactions channel.
func (r *Relay) PublishReaction(ctx context.Context, ev messenger.ReactionEvent) error {
	return r.publish(ctx, "redis.Relay.PublishReaction", ReactionsChannel(r.prefix), ev)
}

// PublishMessage publishes msg as JSON on the messages channel. Messages
// without an origin are stamped with the Relay's.
func (r *Relay) PublishMessage(ctx context.Context, msg messenger.Message) error {
	return r.publish(ctx, "redis.Relay.PublishMessage", MessagesChannel(r.prefix), r.stamp(msg))
}

func (r *Relay) stamp(msg messenger.Message) messenger.Message {
	if msg.Origin == "" {
		msg.Origin = r.origin
	}
	return msg
}

func (r *Relay) publish(ctx context.Context, op, channel string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%s: marshal: %w", op, err)
	}

	if err := r.client.Publish(ctx, channel, payload).Err(); err != nil {
		return messenger.Transport(op, err)
	}
	return nil
}

// Run subscribes to both channels and forwards every decoded event to sink
// until ctx is done. Undecodable payloads are logged and skipped.
func (r *Relay) Run(ctx context.Context, sink messenger.Publisher) error {
	sub := r.client.Subscribe(ctx, ReactionsChannel(r.prefix), MessagesChannel(r.prefix))
	defer func() { _ = sub.Close() }()

	// Wait for subscription confirmation.
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis.Relay.Run: receive confirmation: %w", err)
	}

	redisCh := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-redisCh:
			if !ok {
				return nil
			}
			if err := r.deliver(ctx, msg.Channel, msg.Payload, sink); err != nil {
				log.Warn().Err(err).Str("channel", msg.Channel).Msg("redis relay: drop event")
			}
		}
	}
}

func (r *Relay) deliver(ctx context.Context, channel, payload string, sink messenger.Publisher) error {
	switch channel {
	case ReactionsChannel(r.prefix):
		var ev messenger.ReactionEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return fmt.Errorf("redis.Relay.deliver: decode reaction: %w", err)
		}
		return sink.PublishReaction(ctx, ev)
	case MessagesChannel(r.prefix):
		var msg messenger.Message
		if err := json.Unmarshal([]byte(payload), &msg); err != nil {
			return fmt.Errorf("redis.Relay.deliver: decode message: %w", err)
		}
		return sink.PublishMessage(ctx, msg)
	default:
		return fmt.Errorf("redis.Relay.deliver: unexpected channel %q", channel)
	}
}

// ReactionsChannel returns the Redis channel name for reaction events.
func ReactionsChannel(prefix string) string {
	return prefix + ":reactions"
}

// MessagesChannel returns the Redis channel name for message events.
func MessagesChannel(prefix string) string {
	return prefix + ":messages"
}
