// Package menu implements paginated, reaction-driven menus.
//
// A Menu renders one page at a time into a single display message, seeds the
// message with one reaction per Control, and waits for the invoking user to
// react. The matching control's Handler runs with exclusive access to the Menu
// and may change the page or close the menu. The loop ends when a handler
// deletes the display message, the user reacts with an unknown marker, or the
// wait times out; in the last two cases the display message stays with its
// reactions stripped.
package menu

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/reactkit/internal/messenger"
)

// DefaultTimeout is how long a menu waits for each reaction by default.
const DefaultTimeout = 30 * time.Second

// Handler reacts to a control being triggered. It receives exclusive access
// to the menu for the duration of the call.
type Handler interface {
	Handle(ctx context.Context, m *Menu, ev messenger.ReactionEvent)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, m *Menu, ev messenger.ReactionEvent)

// Handle calls f(ctx, m, ev).
func (f HandlerFunc) Handle(ctx context.Context, m *Menu, ev messenger.ReactionEvent) {
	f(ctx, m, ev)
}

// Control binds a reaction marker to a Handler. Markers must be unique per menu.
type Control struct {
	Marker  messenger.Marker
	Handler Handler
}

// Options tweak a menu. Handlers may change them while the menu runs.
type Options struct {
	// Page is the 0-based index of the page to render next.
	Page int
	// Timeout bounds each wait for a reaction.
	Timeout time.Duration
	// Message is the display message. When set before Run it must be a bot
	// message; it is edited instead of sending a new one and is not seeded.
	Message *messenger.Message
	// Controls are seeded onto the display message in order.
	Controls []Control
	// NonBlockingSeed seeds controls in the background so the menu starts
	// waiting before every marker is visible.
	NonBlockingSeed bool
}

// DefaultOptions returns page 0, a 30s timeout and the ◀ ❌ ▶ controls.
func DefaultOptions() Options {
	return Options{
		Page:     0,
		Timeout:  DefaultTimeout,
		Controls: DefaultControls(),
	}
}

// DefaultControls returns previous page, close and next page controls.
func DefaultControls() []Control {
	return []Control{
		{Marker: messenger.MarkerPrev, Handler: HandlerFunc(PrevPage)},
		{Marker: messenger.MarkerClose, Handler: HandlerFunc(Close)},
		{Marker: messenger.MarkerNext, Handler: HandlerFunc(NextPage)},
	}
}

// Menu is one running paginated menu session.
type Menu struct {
	ID         uuid.UUID
	Invocation *messenger.Message
	Pages      []messenger.Page
	Options    Options

	client    messenger.Client
	seeder    *messenger.Seeder
	tracker   *Tracker
	logger    zerolog.Logger
	startedAt time.Time
}

// MenuOption configures optional Menu dependencies.
type MenuOption func(*Menu)

// WithSeeder replaces the default unpaced seeder.
func WithSeeder(s *messenger.Seeder) MenuOption {
	return func(m *Menu) {
		m.seeder = s
	}
}

// WithTracker registers the menu with t while it runs.
func WithTracker(t *Tracker) MenuOption {
	return func(m *Menu) {
		m.tracker = t
	}
}

// New creates a menu answering the invocation message. Reactions are only
// accepted from the invocation's author.
func New(
	client messenger.Client,
	invocation *messenger.Message,
	pages []messenger.Page,
	opts Options,
	menuOpts ...MenuOption,
) *Menu {
	m := &Menu{
		ID:         uuid.New(),
		Invocation: invocation,
		Pages:      pages,
		Options:    opts,
		client:     client,
	}
	for _, opt := range menuOpts {
		opt(m)
	}
	if m.seeder == nil {
		m.seeder = messenger.NewSeeder(client)
	}

	m.logger = log.With().
		Str("menu_id", m.ID.String()).
		Str("channel_id", string(invocation.ChannelID)).
		Str("user_id", string(invocation.AuthorID)).
		Logger()

	return m
}

// Client returns the platform client the menu renders through.
func (m *Menu) Client() messenger.Client {
	return m.client
}

// Logger returns the menu's session-scoped logger.
func (m *Menu) Logger() *zerolog.Logger {
	return &m.logger
}

// Run drives the menu until it is closed, times out, or receives an unknown
// marker. It returns the display message, or nil if a handler deleted it.
//
// Structural problems (no pages, page out of bounds, non-positive timeout,
// duplicate markers) are reported before any network call. Transport errors
// abort the session and are returned along with the display message, if any.
// A timeout or an unknown marker ends the session without an error.
func (m *Menu) Run(ctx context.Context) (*messenger.Message, error) {
	if err := m.validate(); err != nil {
		return m.Options.Message, fmt.Errorf("menu.Menu.Run: %w", err)
	}

	m.startedAt = time.Now()
	if m.tracker != nil {
		defer m.tracker.remove(m.ID)
	}

	for {
		ev, ctl, err := m.step(ctx)
		switch {
		case err == nil:
			ctl.Handler.Handle(ctx, m, ev)
			if m.Options.Message == nil {
				m.logger.Debug().Msg("menu closed")
				return nil, nil
			}

		case errors.Is(err, messenger.ErrTimeout):
			m.logger.Debug().Msg("menu timed out")
			if cleanErr := m.cleanReactions(ctx); cleanErr != nil {
				return m.Options.Message, fmt.Errorf("menu.Menu.Run: %w", cleanErr)
			}
			return m.Options.Message, nil

		case errors.Is(err, messenger.ErrInvalidChoice):
			m.logger.Debug().Err(err).Msg("menu ended on unknown marker")
			if cleanErr := m.cleanReactions(ctx); cleanErr != nil {
				// The bot often lacks permission to manage reactions.
				m.logger.Warn().Err(cleanErr).Msg("strip menu reactions")
			}
			return m.Options.Message, nil

		default:
			return m.Options.Message, fmt.Errorf("menu.Menu.Run: %w", err)
		}
	}
}

// step renders the current page and waits for the invoking user's next reaction.
func (m *Menu) step(ctx context.Context) (messenger.ReactionEvent, Control, error) {
	if err := m.checkPage(); err != nil {
		return messenger.ReactionEvent{}, Control{}, err
	}
	page := m.Pages[m.Options.Page]

	fresh := m.Options.Message == nil
	if fresh {
		msg, err := m.client.SendMessage(ctx, m.Invocation.ChannelID, page)
		if err != nil {
			return messenger.ReactionEvent{}, Control{}, fmt.Errorf("send page: %w", err)
		}
		m.Options.Message = msg
	}

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, cleanup := m.client.SubscribeReactions(subCtx, messenger.ReactionFilter{
		MessageID: m.Options.Message.ID,
		UserID:    m.Invocation.AuthorID,
		Action:    messenger.ReactionAdded,
		Platform:  m.Options.Message.Platform,
	})
	defer cleanup()

	if fresh {
		if err := m.seed(ctx); err != nil {
			return messenger.ReactionEvent{}, Control{}, err
		}
	} else {
		if err := m.client.EditMessage(ctx, m.Options.Message, page); err != nil {
			return messenger.ReactionEvent{}, Control{}, fmt.Errorf("edit page: %w", err)
		}
	}
	m.track()

	timer := time.NewTimer(m.Options.Timeout)
	defer timer.Stop()

	ev, err := messenger.NextReaction(ctx, events, timer.C)
	if err != nil {
		return messenger.ReactionEvent{}, Control{}, err
	}

	ctl, ok := m.lookup(ev.Marker)
	if !ok {
		return ev, Control{}, fmt.Errorf("%w: %s", messenger.ErrInvalidChoice, ev.Marker)
	}

	return ev, ctl, nil
}

func (m *Menu) seed(ctx context.Context) error {
	markers := make([]messenger.Marker, 0, len(m.Options.Controls))
	for _, ctl := range m.Options.Controls {
		markers = append(markers, ctl.Marker)
	}

	if m.Options.NonBlockingSeed {
		m.seeder.SeedAsync(ctx, m.Options.Message, markers)
		return nil
	}

	if err := m.seeder.Seed(ctx, m.Options.Message, markers); err != nil {
		return fmt.Errorf("seed controls: %w", err)
	}
	return nil
}

// lookup returns the first control bound to marker.
func (m *Menu) lookup(marker messenger.Marker) (Control, bool) {
	for _, ctl := range m.Options.Controls {
		if ctl.Marker == marker {
			return ctl, true
		}
	}
	return Control{}, false
}

func (m *Menu) cleanReactions(ctx context.Context) error {
	if m.Options.Message == nil {
		return nil
	}
	if err := m.client.RemoveAllReactions(ctx, m.Options.Message); err != nil {
		return fmt.Errorf("strip reactions: %w", err)
	}
	return nil
}

func (m *Menu) validate() error {
	if err := m.checkPage(); err != nil {
		return err
	}
	if m.Options.Timeout <= 0 {
		return messenger.ErrInvalidTimeout
	}

	seen := make(map[messenger.Marker]struct{}, len(m.Options.Controls))
	for _, ctl := range m.Options.Controls {
		if _, dup := seen[ctl.Marker]; dup {
			return fmt.Errorf("%w: %s", messenger.ErrDuplicateMarker, ctl.Marker)
		}
		seen[ctl.Marker] = struct{}{}
	}

	return nil
}

func (m *Menu) checkPage() error {
	if len(m.Pages) == 0 {
		return messenger.ErrNoPages
	}
	if m.Options.Page < 0 || m.Options.Page >= len(m.Pages) {
		return fmt.Errorf("%w: page %d of %d", messenger.ErrPageOutOfRange, m.Options.Page, len(m.Pages))
	}
	return nil
}

func (m *Menu) track() {
	if m.tracker == nil {
		return
	}
	platform := m.Invocation.Platform
	if m.Options.Message != nil && m.Options.Message.Platform != "" {
		platform = m.Options.Message.Platform
	}
	m.tracker.put(Session{
		ID:        m.ID,
		Platform:  platform,
		ChannelID: m.Invocation.ChannelID,
		UserID:    m.Invocation.AuthorID,
		Page:      m.Options.Page,
		PageCount: len(m.Pages),
		StartedAt: m.startedAt,
	})
}
