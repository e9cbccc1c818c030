// Package ws streams chat events to WebSocket clients.
package ws

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/reactkit/internal/messenger"
)

// Hub serves WebSocket connections fed from an event source.
type Hub struct {
	events messenger.EventSource
}

// NewHub creates a new WebSocket hub.
func NewHub(events messenger.EventSource) *Hub {
	return &Hub{events: events}
}

// ServeEvents streams reaction and message events as JSON frames.
// The optional query parameters platform, channel_id and user_id narrow the
// feed; user_id matches reactors and message authors.
func (h *Hub) ServeEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	platform := q.Get("platform")
	channelID := messenger.ChannelID(q.Get("channel_id"))
	userID := messenger.UserID(q.Get("user_id"))

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket accept")
		return
	}
	defer conn.CloseNow()

	// Clients never send; CloseRead handles control frames and cancels ctx
	// when the peer goes away.
	ctx := conn.CloseRead(r.Context())

	reactions, cleanupReactions := h.events.SubscribeReactions(ctx, messenger.ReactionFilter{
		ChannelID: channelID,
		UserID:    userID,
		Platform:  platform,
	})
	defer cleanupReactions()

	messages, cleanupMessages := h.events.SubscribeMessages(ctx, messenger.MessageFilter{
		ChannelID: channelID,
		AuthorID:  userID,
		Platform:  platform,
	})
	defer cleanupMessages()

	for {
		var ev Event
		select {
		case <-ctx.Done():
			_ = conn.Close(websocket.StatusNormalClosure, "connection closed")
			return
		case reaction, ok := <-reactions:
			if !ok {
				return
			}
			ev = Event{Type: EventReaction, Reaction: &reaction}
		case msg, ok := <-messages:
			if !ok {
				return
			}
			ev = Event{Type: EventMessage, Message: &msg}
		}

		if writeErr := write(ctx, conn, ev); writeErr != nil {
			log.Debug().Err(writeErr).Msg("websocket write")
			return
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, ev Event) error {
	return wsjson.Write(ctx, conn, ev)
}
