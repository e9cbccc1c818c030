// Package prompt waits for a single answer from a user, either as their next
// message in a channel or as a reaction on a prompt message.
package prompt

import (
	"context"
	"time"

	"github.com/gosuda/reactkit/internal/messenger"
)

// WaitForMessage returns the next message user sends in the anchor's channel.
// It reports false when nothing arrives within timeout or ctx is done; a
// missing answer is a normal outcome, not an error.
func WaitForMessage(
	ctx context.Context,
	events messenger.EventSource,
	anchor *messenger.Message,
	user messenger.UserID,
	timeout time.Duration,
) (messenger.Message, bool) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	messages, cleanup := events.SubscribeMessages(waitCtx, messenger.MessageFilter{
		ChannelID: anchor.ChannelID,
		AuthorID:  user,
		Platform:  anchor.Platform,
	})
	defer cleanup()

	select {
	case msg, ok := <-messages:
		return msg, ok
	case <-waitCtx.Done():
		return messenger.Message{}, false
	}
}

// WaitForMessageContent is WaitForMessage returning only the message text.
func WaitForMessageContent(
	ctx context.Context,
	events messenger.EventSource,
	anchor *messenger.Message,
	user messenger.UserID,
	timeout time.Duration,
) (string, bool) {
	msg, ok := WaitForMessage(ctx, events, anchor, user, timeout)
	if !ok {
		return "", false
	}
	return msg.Content, true
}
