package messenger

import (
	"context"
	"time"
)

// NextReaction blocks until the next event arrives on events, expired fires,
// or ctx is done. Expiry yields ErrTimeout; cancellation yields ctx.Err().
func NextReaction(ctx context.Context, events <-chan ReactionEvent, expired <-chan time.Time) (ReactionEvent, error) {
	select {
	case ev, ok := <-events:
		if !ok {
			if err := ctx.Err(); err != nil {
				return ReactionEvent{}, err
			}
			return ReactionEvent{}, ErrTimeout
		}
		return ev, nil
	case <-expired:
		return ReactionEvent{}, ErrTimeout
	case <-ctx.Done():
		return ReactionEvent{}, ctx.Err()
	}
}
