package prompt

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/gosuda/reactkit/internal/messenger"
)

// YesNoMarkers are the markers used by WaitForYesNo, affirmative first.
var YesNoMarkers = []messenger.Marker{messenger.MarkerYes, messenger.MarkerNo} //nolint:gochecknoglobals // fixed marker set

type config struct {
	seeder *messenger.Seeder
}

// Option configures a reaction prompt.
type Option func(*config)

// WithSeeder replaces the default unpaced seeder used to attach markers.
func WithSeeder(s *messenger.Seeder) Option {
	return func(c *config) {
		c.seeder = s
	}
}

// WaitForReaction attaches markers to msg and waits for user to react with one
// of them. It returns the index of the chosen marker within markers and the
// marker itself. Reactions with other markers are ignored.
//
// Errors:
//   - messenger.ErrTimeout when user does not pick a marker within timeout.
//   - messenger.ErrTransport when attaching a marker fails.
//   - messenger.ErrStructural for an empty marker set or non-positive timeout.
func WaitForReaction(
	ctx context.Context,
	client messenger.Client,
	msg *messenger.Message,
	user messenger.UserID,
	markers []messenger.Marker,
	timeout time.Duration,
	opts ...Option,
) (int, messenger.Marker, error) {
	if len(markers) == 0 {
		return -1, "", fmt.Errorf("prompt.WaitForReaction: %w", messenger.ErrNoMarkers)
	}
	if timeout <= 0 {
		return -1, "", fmt.Errorf("prompt.WaitForReaction: %w", messenger.ErrInvalidTimeout)
	}

	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.seeder == nil {
		cfg.seeder = messenger.NewSeeder(client)
	}

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The subscription must exist before seeding: picks made while later
	// markers are still being attached are queued on it.
	events, cleanup := client.SubscribeReactions(subCtx, messenger.ReactionFilter{
		MessageID: msg.ID,
		UserID:    user,
		Action:    messenger.ReactionAdded,
		Platform:  msg.Platform,
	})
	defer cleanup()

	if err := cfg.seeder.Seed(ctx, msg, markers); err != nil {
		return -1, "", fmt.Errorf("prompt.WaitForReaction: %w", err)
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		ev, err := messenger.NextReaction(ctx, events, timer.C)
		if err != nil {
			return -1, "", fmt.Errorf("prompt.WaitForReaction: %w", err)
		}

		if idx := slices.Index(markers, ev.Marker); idx >= 0 {
			return idx, markers[idx], nil
		}
	}
}

// WaitForYesNo is a reaction prompt with ✅ for yes and ❌ for no.
// It fails the same way WaitForReaction does.
func WaitForYesNo(
	ctx context.Context,
	client messenger.Client,
	msg *messenger.Message,
	user messenger.UserID,
	timeout time.Duration,
	opts ...Option,
) (bool, error) {
	idx, _, err := WaitForReaction(ctx, client, msg, user, YesNoMarkers, timeout, opts...)
	if err != nil {
		return false, err
	}
	return idx == 0, nil
}
