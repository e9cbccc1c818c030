package menu

import (
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gosuda/reactkit/internal/messenger"
)

// Session is a point-in-time view of a running menu.
type Session struct {
	ID        uuid.UUID           `json:"id"`
	Platform  string              `json:"platform"`
	ChannelID messenger.ChannelID `json:"channel_id"`
	UserID    messenger.UserID    `json:"user_id"`
	Page      int                 `json:"page"`
	PageCount int                 `json:"page_count"`
	StartedAt time.Time           `json:"started_at"`
}

// Tracker keeps track of the menus currently running in this process.
// It is safe for concurrent use.
type Tracker struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]Session
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{sessions: make(map[uuid.UUID]Session)}
}

// List returns the running menus, oldest first.
func (t *Tracker) List() []Session {
	t.mu.RLock()
	out := make([]Session, 0, len(t.sessions))
	for _, s := range t.sessions {
		out = append(out, s)
	}
	t.mu.RUnlock()

	slices.SortFunc(out, func(a, b Session) int {
		return a.StartedAt.Compare(b.StartedAt)
	})
	return out
}

// Get returns the running menu with the given ID.
func (t *Tracker) Get(id uuid.UUID) (Session, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.sessions[id]
	return s, ok
}

// Len returns the number of running menus.
func (t *Tracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.sessions)
}

func (t *Tracker) put(s Session) {
	t.mu.Lock()
	t.sessions[s.ID] = s
	t.mu.Unlock()
}

func (t *Tracker) remove(id uuid.UUID) {
	t.mu.Lock()
	delete(t.sessions, id)
	t.mu.Unlock()
}
