package slack

import (
	"context"
	"slices"
	"sync"

	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/reactkit/internal/messenger"
)

// Platform is the identifier carried by every Slack message and event.
const Platform = "slack"

// SlackAPI abstracts the subset of the Slack client used by SlackMessenger.
// This allows testing without real HTTP calls.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slacklib.MsgOption) (string, string, error)
	UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slacklib.MsgOption) (string, string, string, error)
	DeleteMessageContext(ctx context.Context, channelID, timestamp string) (string, string, error)
	AddReactionContext(ctx context.Context, name string, item slacklib.ItemRef) error
	RemoveReactionContext(ctx context.Context, name string, item slacklib.ItemRef) error
}

// SlackMessenger implements messenger.Messenger for Slack. Message IDs are
// message timestamps.
//
// A Slack bot can only remove its own reactions, so SlackMessenger remembers
// the markers it attached to recent messages and RemoveAllReactions strips
// those. Only the most recently used DefaultTrackedMessages messages are
// remembered; older ones keep their markers.
type SlackMessenger struct {
	api       SlackAPI
	botUserID messenger.UserID

	mu       sync.Mutex
	attached *lru.Cache // messenger.MessageID -> []messenger.Marker
}

// DefaultTrackedMessages bounds how many messages' markers are remembered.
const DefaultTrackedMessages = 1024

// Option configures a SlackMessenger.
type Option func(*options)

type options struct {
	tracked int
}

// WithTrackedMessages sets how many messages' markers are remembered.
// Non-positive values keep the default.
func WithTrackedMessages(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.tracked = n
		}
	}
}

// Compile-time interface check.
var _ messenger.Messenger = (*SlackMessenger)(nil) //nolint:gochecknoglobals // compile-time check

// NewSlackMessenger creates a SlackMessenger with the given API client.
// botUserID is the bot's own Slack user ID.
func NewSlackMessenger(api SlackAPI, botUserID messenger.UserID, opts ...Option) *SlackMessenger {
	o := options{tracked: DefaultTrackedMessages}
	for _, opt := range opts {
		opt(&o)
	}

	attached, _ := lru.New(o.tracked) // fails only for a non-positive size

	return &SlackMessenger{
		api:       api,
		botUserID: botUserID,
		attached:  attached,
	}
}

// SendMessage posts a page to a Slack channel.
func (m *SlackMessenger) SendMessage(ctx context.Context, channelID messenger.ChannelID, page messenger.Page) (*messenger.Message, error) {
	ch, ts, err := m.api.PostMessageContext(ctx, string(channelID), pageOptions(page)...)
	if err != nil {
		return nil, messenger.Transport("slack.SlackMessenger.SendMessage", err)
	}
	if ch == "" {
		ch = string(channelID)
	}

	return &messenger.Message{
		ID:        messenger.MessageID(ts),
		ChannelID: messenger.ChannelID(ch),
		AuthorID:  m.botUserID,
		Content:   page.Content,
		Platform:  Platform,
		Bot:       true,
	}, nil
}

// EditMessage replaces the text and blocks of msg with page.
func (m *SlackMessenger) EditMessage(ctx context.Context, msg *messenger.Message, page messenger.Page) error {
	_, _, _, err := m.api.UpdateMessageContext(ctx, string(msg.ChannelID), string(msg.ID), pageOptions(page)...)
	if err != nil {
		return messenger.Transport("slack.SlackMessenger.EditMessage", err)
	}

	return nil
}

// DeleteMessage deletes msg.
func (m *SlackMessenger) DeleteMessage(ctx context.Context, msg *messenger.Message) error {
	if _, _, err := m.api.DeleteMessageContext(ctx, string(msg.ChannelID), string(msg.ID)); err != nil {
		return messenger.Transport("slack.SlackMessenger.DeleteMessage", err)
	}

	m.attached.Remove(msg.ID)

	return nil
}

// AddReaction attaches marker to msg as the bot.
func (m *SlackMessenger) AddReaction(ctx context.Context, msg *messenger.Message, marker messenger.Marker) error {
	ref := slacklib.NewRefToMessage(string(msg.ChannelID), string(msg.ID))
	if err := m.api.AddReactionContext(ctx, ReactionName(marker), ref); err != nil {
		return messenger.Transport("slack.SlackMessenger.AddReaction", err)
	}

	m.mu.Lock()
	markers := m.markers(msg.ID)
	if !slices.Contains(markers, marker) {
		m.attached.Add(msg.ID, append(markers, marker))
	}
	m.mu.Unlock()

	return nil
}

// RemoveReaction removes the bot's own marker from msg. Other users'
// reactions cannot be removed on Slack and are left in place.
func (m *SlackMessenger) RemoveReaction(ctx context.Context, msg *messenger.Message, marker messenger.Marker, user messenger.UserID) error {
	if user != m.botUserID {
		log.Debug().
			Str("message_id", string(msg.ID)).
			Str("user_id", string(user)).
			Msg("slack: cannot remove another user's reaction")
		return nil
	}

	if err := m.removeOwn(ctx, msg, marker); err != nil {
		return messenger.Transport("slack.SlackMessenger.RemoveReaction", err)
	}

	return nil
}

// RemoveAllReactions removes every marker the bot attached to msg.
func (m *SlackMessenger) RemoveAllReactions(ctx context.Context, msg *messenger.Message) error {
	m.mu.Lock()
	markers := slices.Clone(m.markers(msg.ID))
	m.mu.Unlock()

	for _, marker := range markers {
		if err := m.removeOwn(ctx, msg, marker); err != nil {
			return messenger.Transport("slack.SlackMessenger.RemoveAllReactions", err)
		}
	}

	return nil
}

// Platform returns the messenger platform identifier.
func (m *SlackMessenger) Platform() string {
	return Platform
}

func (m *SlackMessenger) removeOwn(ctx context.Context, msg *messenger.Message, marker messenger.Marker) error {
	ref := slacklib.NewRefToMessage(string(msg.ChannelID), string(msg.ID))
	if err := m.api.RemoveReactionContext(ctx, ReactionName(marker), ref); err != nil {
		return err //nolint:wrapcheck // wrapped by callers
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	markers, ok := m.attached.Peek(msg.ID)
	if !ok {
		return nil
	}
	remaining := slices.DeleteFunc(
		slices.Clone(markers.([]messenger.Marker)), //nolint:forcetypeassert // only markers are stored
		func(mk messenger.Marker) bool { return mk == marker },
	)
	if len(remaining) == 0 {
		m.attached.Remove(msg.ID)
	} else {
		m.attached.Add(msg.ID, remaining)
	}

	return nil
}

// markers returns the markers attached to id. m.mu must be held.
func (m *SlackMessenger) markers(id messenger.MessageID) []messenger.Marker {
	v, ok := m.attached.Get(id)
	if !ok {
		return nil
	}
	return v.([]messenger.Marker) //nolint:forcetypeassert // only markers are stored
}

func pageOptions(page messenger.Page) []slacklib.MsgOption {
	return []slacklib.MsgOption{
		slacklib.MsgOptionText(FallbackText(page), false),
		slacklib.MsgOptionBlocks(BuildPageBlocks(page)...),
	}
}
