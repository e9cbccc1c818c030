package bot

import (
	"maps"
	"slices"
	"sync"

	"github.com/gosuda/reactkit/internal/messenger"
)

// Registry maps platform names to the clients commands run against.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]messenger.Client
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]messenger.Client),
	}
}

// Register adds a client for the given platform name, replacing any previous one.
func (r *Registry) Register(platform string, c messenger.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[platform] = c
}

// Get returns the client for the given platform, or false if not registered.
func (r *Registry) Get(platform string) (messenger.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[platform]
	return c, ok
}

// Platforms returns the registered platform names in sorted order.
func (r *Registry) Platforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.clients))
}
