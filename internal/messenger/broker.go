package messenger

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// subscriberBuffer is the per-subscription channel capacity. A subscriber that
// falls this far behind starts losing events.
const subscriberBuffer = 32

type reactionSub struct {
	filter ReactionFilter
	ch     chan ReactionEvent
}

type messageSub struct {
	filter MessageFilter
	ch     chan Message
}

// Broker is an in-process EventSource and Publisher. Platform adapters publish
// gateway events into it; prompts and menus subscribe with filters.
type Broker struct {
	mu        sync.RWMutex
	reactions map[uuid.UUID]*reactionSub
	messages  map[uuid.UUID]*messageSub
}

// Compile-time interface checks.
var (
	_ EventSource = (*Broker)(nil) //nolint:gochecknoglobals // compile-time check
	_ Publisher   = (*Broker)(nil) //nolint:gochecknoglobals // compile-time check
)

// NewBroker creates an empty Broker.
func NewBroker() *Broker {
	return &Broker{
		reactions: make(map[uuid.UUID]*reactionSub),
		messages:  make(map[uuid.UUID]*messageSub),
	}
}

// SubscribeReactions registers a reaction subscription. The channel is closed
// once the returned cleanup func runs or ctx is done, whichever comes first.
func (b *Broker) SubscribeReactions(ctx context.Context, filter ReactionFilter) (<-chan ReactionEvent, func()) {
	id := uuid.New()
	sub := &reactionSub{filter: filter, ch: make(chan ReactionEvent, subscriberBuffer)}

	b.mu.Lock()
	b.reactions[id] = sub
	b.mu.Unlock()

	cleanup := b.watch(ctx, func() {
		if _, ok := b.reactions[id]; ok {
			delete(b.reactions, id)
			close(sub.ch)
		}
	})

	return sub.ch, cleanup
}

// SubscribeMessages registers a message subscription. The channel is closed
// once the returned cleanup func runs or ctx is done, whichever comes first.
func (b *Broker) SubscribeMessages(ctx context.Context, filter MessageFilter) (<-chan Message, func()) {
	id := uuid.New()
	sub := &messageSub{filter: filter, ch: make(chan Message, subscriberBuffer)}

	b.mu.Lock()
	b.messages[id] = sub
	b.mu.Unlock()

	cleanup := b.watch(ctx, func() {
		if _, ok := b.messages[id]; ok {
			delete(b.messages, id)
			close(sub.ch)
		}
	})

	return sub.ch, cleanup
}

// watch runs remove under the write lock exactly once, either when ctx is done
// or when the returned func is called.
func (b *Broker) watch(ctx context.Context, remove func()) func() {
	var once sync.Once
	done := make(chan struct{})

	cleanup := func() {
		once.Do(func() {
			close(done)
			b.mu.Lock()
			remove()
			b.mu.Unlock()
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cleanup()
		case <-done:
		}
	}()

	return cleanup
}

// PublishReaction delivers ev to every matching reaction subscription.
func (b *Broker) PublishReaction(_ context.Context, ev ReactionEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.reactions {
		if !sub.filter.Matches(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			log.Warn().
				Str("message_id", string(ev.MessageID)).
				Str("marker", string(ev.Marker)).
				Msg("reaction subscriber full, dropping event")
		}
	}

	return nil
}

// PublishMessage delivers msg to every matching message subscription.
func (b *Broker) PublishMessage(_ context.Context, msg Message) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.messages {
		if !sub.filter.Matches(msg) {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
			log.Warn().
				Str("message_id", string(msg.ID)).
				Str("channel_id", string(msg.ChannelID)).
				Msg("message subscriber full, dropping event")
		}
	}

	return nil
}

// Subscribers returns the number of live reaction and message subscriptions.
func (b *Broker) Subscribers() (reactions, messages int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.reactions), len(b.messages)
}
