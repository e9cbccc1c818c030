package ws

import "github.com/gosuda/reactkit/internal/messenger"

// Event types sent on the live feed.
const (
	EventReaction = "reaction"
	EventMessage  = "message"
)

// Event is one frame of the live feed. Exactly one of Reaction and Message is set.
type Event struct {
	Type     string                   `json:"type"`
	Reaction *messenger.ReactionEvent `json:"reaction,omitempty"`
	Message  *messenger.Message       `json:"message,omitempty"`
}
