package v1

import (
	"github.com/google/uuid"

	"github.com/gosuda/reactkit/internal/menu"
)

// MenuLister exposes running menus for handler testing.
// *menu.Tracker satisfies this interface.
type MenuLister interface {
	List() []menu.Session
	Get(id uuid.UUID) (menu.Session, bool)
	Len() int
}

// SubscriberCounter reports open event subscriptions.
// *messenger.Broker satisfies this interface.
type SubscriberCounter interface {
	Subscribers() (reactions, messages int)
}

// PlatformLister reports the connected chat platforms.
// *bot.Registry satisfies this interface.
type PlatformLister interface {
	Platforms() []string
}
