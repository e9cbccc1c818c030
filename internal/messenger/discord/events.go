package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/reactkit/internal/messenger"
)

// Bridge turns gateway events into messenger events and hands them to a
// Publisher. The session must dispatch synchronously so events keep their
// gateway order.
type Bridge struct {
	ctx context.Context //nolint:containedctx // handlers have no request context
	pub messenger.Publisher
}

// NewBridge creates a Bridge publishing to pub. ctx bounds every publish.
func NewBridge(ctx context.Context, pub messenger.Publisher) *Bridge {
	return &Bridge{ctx: ctx, pub: pub}
}

// Attach registers the bridge handlers on s and returns a function that
// removes them.
func (b *Bridge) Attach(s *discordgo.Session) func() {
	s.SyncEvents = true

	removers := []func(){
		s.AddHandler(b.OnReactionAdd),
		s.AddHandler(b.OnReactionRemove),
		s.AddHandler(b.OnMessageCreate),
	}

	return func() {
		for _, remove := range removers {
			remove()
		}
	}
}

// OnReactionAdd publishes an added reaction. The bot's own reactions are skipped.
func (b *Bridge) OnReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.MessageReaction == nil || isSelf(s, r.UserID) {
		return
	}
	b.publishReaction(messenger.ReactionAdded, r.MessageReaction)
}

// OnReactionRemove publishes a removed reaction.
func (b *Bridge) OnReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.MessageReaction == nil || isSelf(s, r.UserID) {
		return
	}
	b.publishReaction(messenger.ReactionRemoved, r.MessageReaction)
}

// OnMessageCreate publishes a new channel message.
func (b *Bridge) OnMessageCreate(_ *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil {
		return
	}

	if err := b.pub.PublishMessage(b.ctx, *fromMessage(m.Message)); err != nil {
		log.Warn().Err(err).Str("message_id", m.ID).Msg("discord: publish message failed")
	}
}

func (b *Bridge) publishReaction(action messenger.ReactionAction, r *discordgo.MessageReaction) {
	ev := messenger.ReactionEvent{
		Action:    action,
		Marker:    messenger.Marker(r.Emoji.APIName()),
		UserID:    messenger.UserID(r.UserID),
		MessageID: messenger.MessageID(r.MessageID),
		ChannelID: messenger.ChannelID(r.ChannelID),
		Platform:  Platform,
	}

	if err := b.pub.PublishReaction(b.ctx, ev); err != nil {
		log.Warn().Err(err).
			Str("message_id", r.MessageID).
			Str("action", string(action)).
			Msg("discord: publish reaction failed")
	}
}

func isSelf(s *discordgo.Session, userID string) bool {
	return s != nil && s.State != nil && s.State.User != nil && s.State.User.ID == userID
}
