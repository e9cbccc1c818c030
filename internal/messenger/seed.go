package messenger

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Seeder attaches ordered sets of reaction markers to messages.
type Seeder struct {
	messenger Messenger
	limiter   *rate.Limiter
}

// SeederOption configures optional Seeder parameters.
type SeederOption func(*Seeder)

// WithLimiter makes every attach wait on l first.
func WithLimiter(l *rate.Limiter) SeederOption {
	return func(s *Seeder) {
		s.limiter = l
	}
}

// NewSeeder creates a Seeder that attaches reactions through m.
func NewSeeder(m Messenger, opts ...SeederOption) *Seeder {
	s := &Seeder{messenger: m}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed attaches markers to msg in order and returns once all are attached.
// The first failure is returned and the remaining markers are left unattached.
func (s *Seeder) Seed(ctx context.Context, msg *Message, markers []Marker) error {
	for i, marker := range markers {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("messenger.Seeder.Seed: wait for limiter: %w", err)
			}
		}

		if err := s.messenger.AddReaction(ctx, msg, marker); err != nil {
			return fmt.Errorf("messenger.Seeder.Seed: marker %d (%s): %w", i, marker, err)
		}
	}

	return nil
}

// SeedAsync attaches markers to msg in order on a detached goroutine and
// returns immediately. The goroutine is neither joined nor cancelled with ctx;
// failures are logged and never reach the caller.
func (s *Seeder) SeedAsync(ctx context.Context, msg *Message, markers []Marker) {
	bgCtx := context.WithoutCancel(ctx)
	ordered := make([]Marker, len(markers))
	copy(ordered, markers)

	go func() {
		if err := s.Seed(bgCtx, msg, ordered); err != nil {
			log.Warn().Err(err).
				Str("message_id", string(msg.ID)).
				Str("platform", s.messenger.Platform()).
				Msg("background reaction seeding failed")
		}
	}()
}
