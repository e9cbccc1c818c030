package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/gosuda/reactkit/internal/messenger"
)

// Platform is the identifier carried by every Discord message and event.
const Platform = "discord"

// DiscordAPI abstracts the subset of the Discord client used by DiscordMessenger.
// This allows testing without real HTTP calls.
type DiscordAPI interface {
	ChannelMessageSendComplex(ctx context.Context, channelID string, data *discordgo.MessageSend) (*discordgo.Message, error)
	ChannelMessageEditComplex(ctx context.Context, edit *discordgo.MessageEdit) (*discordgo.Message, error)
	ChannelMessageDelete(ctx context.Context, channelID, messageID string) error
	MessageReactionAdd(ctx context.Context, channelID, messageID, emoji string) error
	MessageReactionRemove(ctx context.Context, channelID, messageID, emoji, userID string) error
	MessageReactionsRemoveAll(ctx context.Context, channelID, messageID string) error
}

// sessionAPI adapts a *discordgo.Session to DiscordAPI, threading ctx into
// every REST request.
type sessionAPI struct {
	s *discordgo.Session
}

// NewSessionAPI wraps a connected discordgo session.
func NewSessionAPI(s *discordgo.Session) DiscordAPI {
	return &sessionAPI{s: s}
}

func (a *sessionAPI) ChannelMessageSendComplex(ctx context.Context, channelID string, data *discordgo.MessageSend) (*discordgo.Message, error) {
	return a.s.ChannelMessageSendComplex(channelID, data, discordgo.WithContext(ctx))
}

func (a *sessionAPI) ChannelMessageEditComplex(ctx context.Context, edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	return a.s.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
}

func (a *sessionAPI) ChannelMessageDelete(ctx context.Context, channelID, messageID string) error {
	return a.s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx))
}

func (a *sessionAPI) MessageReactionAdd(ctx context.Context, channelID, messageID, emoji string) error {
	return a.s.MessageReactionAdd(channelID, messageID, emoji, discordgo.WithContext(ctx))
}

func (a *sessionAPI) MessageReactionRemove(ctx context.Context, channelID, messageID, emoji, userID string) error {
	return a.s.MessageReactionRemove(channelID, messageID, emoji, userID, discordgo.WithContext(ctx))
}

func (a *sessionAPI) MessageReactionsRemoveAll(ctx context.Context, channelID, messageID string) error {
	return a.s.MessageReactionsRemoveAll(channelID, messageID, discordgo.WithContext(ctx))
}

// DiscordMessenger implements messenger.Messenger for Discord.
type DiscordMessenger struct {
	api DiscordAPI
}

// Compile-time interface check.
var _ messenger.Messenger = (*DiscordMessenger)(nil) //nolint:gochecknoglobals // compile-time check

// NewDiscordMessenger creates a DiscordMessenger with the given API client.
func NewDiscordMessenger(api DiscordAPI) *DiscordMessenger {
	return &DiscordMessenger{api: api}
}

// SendMessage posts a page to a Discord channel.
func (m *DiscordMessenger) SendMessage(ctx context.Context, channelID messenger.ChannelID, page messenger.Page) (*messenger.Message, error) {
	data := &discordgo.MessageSend{Content: page.Content}
	if page.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{toEmbed(page.Embed)}
	}

	sent, err := m.api.ChannelMessageSendComplex(ctx, string(channelID), data)
	if err != nil {
		return nil, messenger.Transport("discord.DiscordMessenger.SendMessage", err)
	}

	return fromMessage(sent), nil
}

// EditMessage replaces the content and embed of msg with page. A page without
// an embed clears the existing one.
func (m *DiscordMessenger) EditMessage(ctx context.Context, msg *messenger.Message, page messenger.Page) error {
	embeds := []*discordgo.MessageEmbed{}
	if page.Embed != nil {
		embeds = append(embeds, toEmbed(page.Embed))
	}

	edit := discordgo.NewMessageEdit(string(msg.ChannelID), string(msg.ID)).
		SetContent(page.Content).
		SetEmbeds(embeds)

	if _, err := m.api.ChannelMessageEditComplex(ctx, edit); err != nil {
		return messenger.Transport("discord.DiscordMessenger.EditMessage", err)
	}

	return nil
}

// DeleteMessage deletes msg.
func (m *DiscordMessenger) DeleteMessage(ctx context.Context, msg *messenger.Message) error {
	if err := m.api.ChannelMessageDelete(ctx, string(msg.ChannelID), string(msg.ID)); err != nil {
		return messenger.Transport("discord.DiscordMessenger.DeleteMessage", err)
	}

	return nil
}

// AddReaction attaches marker to msg as the bot.
func (m *DiscordMessenger) AddReaction(ctx context.Context, msg *messenger.Message, marker messenger.Marker) error {
	if err := m.api.MessageReactionAdd(ctx, string(msg.ChannelID), string(msg.ID), string(marker)); err != nil {
		return messenger.Transport("discord.DiscordMessenger.AddReaction", err)
	}

	return nil
}

// RemoveReaction removes user's marker from msg.
func (m *DiscordMessenger) RemoveReaction(ctx context.Context, msg *messenger.Message, marker messenger.Marker, user messenger.UserID) error {
	if err := m.api.MessageReactionRemove(ctx, string(msg.ChannelID), string(msg.ID), string(marker), string(user)); err != nil {
		return messenger.Transport("discord.DiscordMessenger.RemoveReaction", err)
	}

	return nil
}

// RemoveAllReactions clears every reaction on msg.
func (m *DiscordMessenger) RemoveAllReactions(ctx context.Context, msg *messenger.Message) error {
	if err := m.api.MessageReactionsRemoveAll(ctx, string(msg.ChannelID), string(msg.ID)); err != nil {
		return messenger.Transport("discord.DiscordMessenger.RemoveAllReactions", err)
	}

	return nil
}

// Platform returns the messenger platform identifier.
func (m *DiscordMessenger) Platform() string {
	return Platform
}

func toEmbed(e *messenger.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	if e.Footer != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}

	return out
}

func fromMessage(msg *discordgo.Message) *messenger.Message {
	out := &messenger.Message{
		ID:        messenger.MessageID(msg.ID),
		ChannelID: messenger.ChannelID(msg.ChannelID),
		Content:   msg.Content,
		Platform:  Platform,
	}
	if msg.Author != nil {
		out.AuthorID = messenger.UserID(msg.Author.ID)
		out.Bot = msg.Author.Bot
	}

	return out
}
