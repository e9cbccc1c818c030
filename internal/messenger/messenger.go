package messenger

import "context"

// ChannelID identifies a channel (or DM) within a messenger platform.
type ChannelID string

// MessageID uniquely identifies a message within a messenger platform.
type MessageID string

// UserID identifies a user within a messenger platform.
type UserID string

// Marker is a reaction symbol identifying a user-visible choice.
// Unicode emoji are used as-is; platform custom emoji use the platform's API name.
type Marker string

// Common markers used by prompts and menus.
const (
	MarkerYes      Marker = "✅"
	MarkerNo       Marker = "❌"
	MarkerPrev     Marker = "◀"
	MarkerNext     Marker = "▶"
	MarkerClose    Marker = "❌"
	MarkerFirst    Marker = "⏪"
	MarkerLast     Marker = "⏩"
	MarkerDog      Marker = "🐶"
	MarkerCat      Marker = "🐱"
	MarkerThumbsUp Marker = "👍"
)

// EmbedField is a single name/value row of an Embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Embed is a platform-neutral rich block attached to a Page.
type Embed struct {
	Title       string       `json:"title,omitempty"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color,omitempty"`
	Footer      string       `json:"footer,omitempty"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

// Page is a renderable message payload. Prompts and menus never inspect it;
// only platform adapters do.
type Page struct {
	Content string `json:"content,omitempty"`
	Embed   *Embed `json:"embed,omitempty"`
}

// Message is a handle to a message posted on a platform.
type Message struct {
	ID        MessageID `json:"id"`
	ChannelID ChannelID `json:"channel_id"`
	AuthorID  UserID    `json:"author_id"`
	Content   string    `json:"content,omitempty"`
	Platform  string    `json:"platform"`
	Bot       bool      `json:"bot,omitempty"` // authored by a bot account
	// Origin identifies the bot process whose gateway received the message.
	// It is empty when events are not relayed between processes.
	Origin string `json:"origin,omitempty"`
}

// ReactionAction distinguishes reaction additions from removals.
type ReactionAction string

const (
	ReactionAdded   ReactionAction = "added"
	ReactionRemoved ReactionAction = "removed"
)

// ReactionEvent is a single reaction change observed on a message.
type ReactionEvent struct {
	Action    ReactionAction `json:"action"`
	Marker    Marker         `json:"marker"`
	UserID    UserID         `json:"user_id"`
	MessageID MessageID      `json:"message_id"`
	ChannelID ChannelID      `json:"channel_id"`
	Platform  string         `json:"platform"`
}

// Messenger abstracts the message and reaction calls of a chat platform
// (Discord, Slack, etc.). Implementations wrap every failure with ErrTransport.
type Messenger interface {
	// SendMessage posts a page to a channel and returns a handle to the new message.
	SendMessage(ctx context.Context, channelID ChannelID, page Page) (*Message, error)

	// EditMessage replaces the content of an existing message with page.
	EditMessage(ctx context.Context, msg *Message, page Page) error

	// DeleteMessage removes a message.
	DeleteMessage(ctx context.Context, msg *Message) error

	// AddReaction attaches marker to msg as the bot user.
	AddReaction(ctx context.Context, msg *Message, marker Marker) error

	// RemoveReaction removes one user's marker from msg.
	RemoveReaction(ctx context.Context, msg *Message, marker Marker, userID UserID) error

	// RemoveAllReactions strips every reaction the platform allows the bot to remove.
	RemoveAllReactions(ctx context.Context, msg *Message) error

	// Platform returns the messenger platform identifier (e.g. "slack", "discord").
	Platform() string
}

// ReactionFilter scopes a reaction subscription. Empty fields match anything.
type ReactionFilter struct {
	MessageID MessageID
	ChannelID ChannelID
	UserID    UserID
	Action    ReactionAction
	Platform  string
}

// Matches reports whether ev falls inside the filter's scope.
func (f ReactionFilter) Matches(ev ReactionEvent) bool {
	if f.MessageID != "" && f.MessageID != ev.MessageID {
		return false
	}
	if f.ChannelID != "" && f.ChannelID != ev.ChannelID {
		return false
	}
	if f.UserID != "" && f.UserID != ev.UserID {
		return false
	}
	if f.Action != "" && f.Action != ev.Action {
		return false
	}
	if f.Platform != "" && f.Platform != ev.Platform {
		return false
	}
	return true
}

// MessageFilter scopes a message subscription. Empty fields match anything.
type MessageFilter struct {
	ChannelID ChannelID
	AuthorID  UserID
	Platform  string
}

// Matches reports whether msg falls inside the filter's scope.
func (f MessageFilter) Matches(msg Message) bool {
	if f.ChannelID != "" && f.ChannelID != msg.ChannelID {
		return false
	}
	if f.AuthorID != "" && f.AuthorID != msg.AuthorID {
		return false
	}
	if f.Platform != "" && f.Platform != msg.Platform {
		return false
	}
	return true
}

// EventSource delivers incoming events to filtered subscribers. Events on a
// subscription arrive in publish order. The returned func tears the
// subscription down; it is also torn down when ctx is done.
type EventSource interface {
	SubscribeReactions(ctx context.Context, filter ReactionFilter) (<-chan ReactionEvent, func())
	SubscribeMessages(ctx context.Context, filter MessageFilter) (<-chan Message, func())
}

// Publisher accepts events from platform adapters.
type Publisher interface {
	PublishReaction(ctx context.Context, ev ReactionEvent) error
	PublishMessage(ctx context.Context, msg Message) error
}

// Client bundles the capabilities prompts and menus need from a platform.
type Client interface {
	Messenger
	EventSource
}

type client struct {
	Messenger
	EventSource
}

// NewClient combines a platform messenger with an event source.
func NewClient(m Messenger, events EventSource) Client {
	return client{Messenger: m, EventSource: events}
}
