// Package messengertest provides an in-memory messenger.Client for tests.
package messengertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/gosuda/reactkit/internal/messenger"
)

// Fake records every platform call and routes events through a real Broker.
// Hooks run synchronously on the calling goroutine, outside the Fake's lock.
type Fake struct {
	*messenger.Broker

	PlatformName string

	// Injected failures. AddErrOn limits AddErr to a single marker when set.
	SendErr      error
	EditErr      error
	DeleteErr    error
	AddErr       error
	AddErrOn     messenger.Marker
	RemoveErr    error
	RemoveAllErr error

	// OnAdd runs after each successful AddReaction.
	OnAdd func(msg *messenger.Message, marker messenger.Marker)
	// OnEdit runs after each successful EditMessage.
	OnEdit func(msg *messenger.Message, page messenger.Page)

	mu         sync.Mutex
	nextID     int
	sent       []messenger.Page
	edits      []messenger.Page
	added      []messenger.Marker
	removed    []messenger.Marker
	deleted    []messenger.MessageID
	removeAlls int
	calls      []string
}

// Compile-time interface check.
var _ messenger.Client = (*Fake)(nil) //nolint:gochecknoglobals // compile-time check

// New creates a Fake with its own Broker.
func New() *Fake {
	return &Fake{Broker: messenger.NewBroker(), PlatformName: "fake"}
}

func (f *Fake) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

// SendMessage implements messenger.Messenger.
func (f *Fake) SendMessage(_ context.Context, channelID messenger.ChannelID, page messenger.Page) (*messenger.Message, error) {
	f.record("send")
	if f.SendErr != nil {
		return nil, messenger.Transport("messengertest.Fake.SendMessage", f.SendErr)
	}

	f.mu.Lock()
	f.nextID++
	id := messenger.MessageID(fmt.Sprintf("msg-%d", f.nextID))
	f.sent = append(f.sent, page)
	f.mu.Unlock()

	return &messenger.Message{
		ID:        id,
		ChannelID: channelID,
		AuthorID:  "bot",
		Content:   page.Content,
		Platform:  f.PlatformName,
		Bot:       true,
	}, nil
}

// EditMessage implements messenger.Messenger.
func (f *Fake) EditMessage(_ context.Context, msg *messenger.Message, page messenger.Page) error {
	f.record("edit")
	if f.EditErr != nil {
		return messenger.Transport("messengertest.Fake.EditMessage", f.EditErr)
	}

	f.mu.Lock()
	f.edits = append(f.edits, page)
	f.mu.Unlock()

	if f.OnEdit != nil {
		f.OnEdit(msg, page)
	}
	return nil
}

// DeleteMessage implements messenger.Messenger.
func (f *Fake) DeleteMessage(_ context.Context, msg *messenger.Message) error {
	f.record("delete")
	if f.DeleteErr != nil {
		return messenger.Transport("messengertest.Fake.DeleteMessage", f.DeleteErr)
	}

	f.mu.Lock()
	f.deleted = append(f.deleted, msg.ID)
	f.mu.Unlock()
	return nil
}

// AddReaction implements messenger.Messenger.
func (f *Fake) AddReaction(_ context.Context, msg *messenger.Message, marker messenger.Marker) error {
	f.record("add")
	if f.AddErr != nil && (f.AddErrOn == "" || f.AddErrOn == marker) {
		return messenger.Transport("messengertest.Fake.AddReaction", f.AddErr)
	}

	f.mu.Lock()
	f.added = append(f.added, marker)
	f.mu.Unlock()

	if f.OnAdd != nil {
		f.OnAdd(msg, marker)
	}
	return nil
}

// RemoveReaction implements messenger.Messenger.
func (f *Fake) RemoveReaction(_ context.Context, _ *messenger.Message, marker messenger.Marker, _ messenger.UserID) error {
	f.record("remove")
	if f.RemoveErr != nil {
		return messenger.Transport("messengertest.Fake.RemoveReaction", f.RemoveErr)
	}

	f.mu.Lock()
	f.removed = append(f.removed, marker)
	f.mu.Unlock()
	return nil
}

// RemoveAllReactions implements messenger.Messenger.
func (f *Fake) RemoveAllReactions(context.Context, *messenger.Message) error {
	f.record("remove_all")
	if f.RemoveAllErr != nil {
		return messenger.Transport("messengertest.Fake.RemoveAllReactions", f.RemoveAllErr)
	}

	f.mu.Lock()
	f.removeAlls++
	f.mu.Unlock()
	return nil
}

// Platform implements messenger.Messenger.
func (f *Fake) Platform() string { return f.PlatformName }

// React publishes a reaction addition by user on msg.
func (f *Fake) React(msg *messenger.Message, user messenger.UserID, marker messenger.Marker) {
	_ = f.PublishReaction(context.Background(), messenger.ReactionEvent{
		Action:    messenger.ReactionAdded,
		Marker:    marker,
		UserID:    user,
		MessageID: msg.ID,
		ChannelID: msg.ChannelID,
		Platform:  f.PlatformName,
	})
}

// Say publishes a message by user in channelID.
func (f *Fake) Say(channelID messenger.ChannelID, user messenger.UserID, content string) {
	f.mu.Lock()
	f.nextID++
	id := messenger.MessageID(fmt.Sprintf("msg-%d", f.nextID))
	f.mu.Unlock()

	_ = f.PublishMessage(context.Background(), messenger.Message{
		ID:        id,
		ChannelID: channelID,
		AuthorID:  user,
		Content:   content,
		Platform:  f.PlatformName,
	})
}

// SentPages returns the pages passed to SendMessage.
func (f *Fake) SentPages() []messenger.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]messenger.Page(nil), f.sent...)
}

// EditedPages returns the pages passed to EditMessage.
func (f *Fake) EditedPages() []messenger.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]messenger.Page(nil), f.edits...)
}

// AddedMarkers returns the markers attached, in call order.
func (f *Fake) AddedMarkers() []messenger.Marker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]messenger.Marker(nil), f.added...)
}

// RemovedMarkers returns the markers passed to RemoveReaction.
func (f *Fake) RemovedMarkers() []messenger.Marker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]messenger.Marker(nil), f.removed...)
}

// DeletedIDs returns the IDs of deleted messages.
func (f *Fake) DeletedIDs() []messenger.MessageID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]messenger.MessageID(nil), f.deleted...)
}

// RemoveAllCount returns how many times RemoveAllReactions succeeded.
func (f *Fake) RemoveAllCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removeAlls
}

// Calls returns the names of every platform call, in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
