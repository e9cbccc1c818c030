package v1_test

import (
	"github.com/google/uuid"

	"github.com/gosuda/reactkit/internal/menu"
)

// ---------------------------------------------------------------------------
// Mock MenuLister
// ---------------------------------------------------------------------------

type mockMenuLister struct {
	sessions []menu.Session
}

func (m *mockMenuLister) List() []menu.Session { return m.sessions }

func (m *mockMenuLister) Get(id uuid.UUID) (menu.Session, bool) {
	for _, s := range m.sessions {
		if s.ID == id {
			return s, true
		}
	}
	return menu.Session{}, false
}

func (m *mockMenuLister) Len() int { return len(m.sessions) }

// ---------------------------------------------------------------------------
// Mock SubscriberCounter / PlatformLister
// ---------------------------------------------------------------------------

type mockCounter struct {
	reactions, messages int
}

func (m mockCounter) Subscribers() (int, int) { return m.reactions, m.messages }

type mockPlatforms []string

func (m mockPlatforms) Platforms() []string { return m }
