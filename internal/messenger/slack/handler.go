package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/reactkit/internal/messenger"
)

// Handler processes Slack Events API webhooks and publishes reactions and
// channel messages.
type Handler struct {
	signingSecret string
	pub           messenger.Publisher
	botUserID     messenger.UserID
}

// NewHandler creates a new Slack webhook handler. Reactions made by botUserID
// are not published.
func NewHandler(signingSecret string, pub messenger.Publisher, botUserID messenger.UserID) *Handler {
	return &Handler{
		signingSecret: signingSecret,
		pub:           pub,
		botUserID:     botUserID,
	}
}

// slackEvent represents the outer envelope of Slack Events API payloads.
type slackEvent struct {
	Type      string          `json:"type"`
	Challenge string          `json:"challenge,omitempty"`
	Event     json.RawMessage `json:"event,omitempty"`
}

// innerEvent represents the inner event within an event_callback.
type innerEvent struct {
	Type     string `json:"type"`
	Subtype  string `json:"subtype,omitempty"`
	Channel  string `json:"channel"`
	TS       string `json:"ts"`
	Text     string `json:"text"`
	User     string `json:"user"`
	BotID    string `json:"bot_id,omitempty"`
	Reaction string `json:"reaction,omitempty"`
	Item     struct {
		Type    string `json:"type"`
		Channel string `json:"channel"`
		TS      string `json:"ts"`
	} `json:"item"`
}

// HandleEvents is an http.HandlerFunc for POST /slack/events.
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	if verifyErr := h.verifySignature(r.Header, body); verifyErr != nil {
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var envelope slackEvent
	if unmarshalErr := json.Unmarshal(body, &envelope); unmarshalErr != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	switch envelope.Type {
	case "url_verification":
		h.handleURLVerification(w, envelope.Challenge)
		return
	case "event_callback":
		h.handleEventCallback(r.Context(), w, envelope.Event)
		return
	default:
		w.WriteHeader(http.StatusOK)
	}
}

// handleURLVerification responds to Slack's URL verification challenge.
func (h *Handler) handleURLVerification(w http.ResponseWriter, challenge string) {
	w.Header().Set("Content-Type", "application/json")

	resp := map[string]string{"challenge": challenge}
	if encodeErr := json.NewEncoder(w).Encode(resp); encodeErr != nil {
		log.Error().Err(encodeErr).Msg("encode url verification response")
	}
}

// handleEventCallback processes an event_callback payload.
func (h *Handler) handleEventCallback(ctx context.Context, w http.ResponseWriter, rawEvent json.RawMessage) {
	var evt innerEvent
	if unmarshalErr := json.Unmarshal(rawEvent, &evt); unmarshalErr != nil {
		http.Error(w, "invalid event JSON", http.StatusBadRequest)
		return
	}

	var publishErr error
	switch evt.Type {
	case "reaction_added":
		publishErr = h.publishReaction(ctx, messenger.ReactionAdded, &evt)
	case "reaction_removed":
		publishErr = h.publishReaction(ctx, messenger.ReactionRemoved, &evt)
	case "message":
		// Edits, deletions and joins carry a subtype and are not new messages.
		if evt.Subtype == "" || evt.Subtype == "bot_message" {
			publishErr = h.pub.PublishMessage(ctx, messenger.Message{
				ID:        messenger.MessageID(evt.TS),
				ChannelID: messenger.ChannelID(evt.Channel),
				AuthorID:  messenger.UserID(evt.User),
				Content:   evt.Text,
				Platform:  Platform,
				Bot:       evt.BotID != "",
			})
		}
	}

	if publishErr != nil {
		log.Error().Err(publishErr).Str("event_type", evt.Type).Msg("slack: publish event")
	}

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) publishReaction(ctx context.Context, action messenger.ReactionAction, evt *innerEvent) error {
	if evt.Item.Type != "message" || messenger.UserID(evt.User) == h.botUserID {
		return nil
	}

	return h.pub.PublishReaction(ctx, messenger.ReactionEvent{
		Action:    action,
		Marker:    MarkerFor(evt.Reaction),
		UserID:    messenger.UserID(evt.User),
		MessageID: messenger.MessageID(evt.Item.TS),
		ChannelID: messenger.ChannelID(evt.Item.Channel),
		Platform:  Platform,
	})
}

// verifySignature validates the Slack request signature using the signing secret.
func (h *Handler) verifySignature(header http.Header, body []byte) error {
	sv, err := slacklib.NewSecretsVerifier(header, h.signingSecret)
	if err != nil {
		return fmt.Errorf("slack.Handler.verifySignature: create verifier: %w", err)
	}

	if _, writeErr := sv.Write(body); writeErr != nil {
		return fmt.Errorf("slack.Handler.verifySignature: write body: %w", writeErr)
	}

	if ensureErr := sv.Ensure(); ensureErr != nil {
		return fmt.Errorf("slack.Handler.verifySignature: ensure: %w", ensureErr)
	}

	return nil
}
