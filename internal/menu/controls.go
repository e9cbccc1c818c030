package menu

import (
	"context"

	"github.com/gosuda/reactkit/internal/messenger"
)

// RemoveTrigger removes the reaction that triggered ev from the display
// message so the user can press the same control again. Failures are logged.
func (m *Menu) RemoveTrigger(ctx context.Context, ev messenger.ReactionEvent) {
	if m.Options.Message == nil {
		return
	}
	if err := m.client.RemoveReaction(ctx, m.Options.Message, ev.Marker, ev.UserID); err != nil {
		m.logger.Debug().Err(err).Str("marker", string(ev.Marker)).Msg("remove trigger reaction")
	}
}

// NextPage moves the menu forward, wrapping from the last page to the first.
func NextPage(ctx context.Context, m *Menu, ev messenger.ReactionEvent) {
	m.RemoveTrigger(ctx, ev)

	if m.Options.Page >= len(m.Pages)-1 {
		m.Options.Page = 0
	} else {
		m.Options.Page++
	}
}

// PrevPage moves the menu backward, wrapping from the first page to the last.
func PrevPage(ctx context.Context, m *Menu, ev messenger.ReactionEvent) {
	m.RemoveTrigger(ctx, ev)

	if m.Options.Page <= 0 {
		m.Options.Page = len(m.Pages) - 1
	} else {
		m.Options.Page--
	}
}

// FirstPage jumps to the first page.
func FirstPage(ctx context.Context, m *Menu, ev messenger.ReactionEvent) {
	m.RemoveTrigger(ctx, ev)
	m.Options.Page = 0
}

// LastPage jumps to the last page.
func LastPage(ctx context.Context, m *Menu, ev messenger.ReactionEvent) {
	m.RemoveTrigger(ctx, ev)
	m.Options.Page = len(m.Pages) - 1
}

// Close deletes the display message, which ends the menu. It is a no-op when
// the message is already gone. If deletion fails the menu keeps running.
func Close(ctx context.Context, m *Menu, _ messenger.ReactionEvent) {
	if m.Options.Message == nil {
		return
	}
	if err := m.client.DeleteMessage(ctx, m.Options.Message); err != nil {
		m.logger.Warn().Err(err).Msg("delete menu message")
		return
	}
	m.Options.Message = nil
}
