package notify

import (
	"context"
	"sync"
)

// Sink delivers a supervisor reply into a live conversation session.
type Sink interface {
	Reply(ctx context.Context, sessionID, text string) error
}

// Registry holds the single live conversation sink. The conversation endpoint
// installs its sink when it starts; registering again replaces the previous
// sink rather than accumulating. There is no unregister: a stale sink is
// simply overwritten by the next session.
type Registry struct {
	mu   sync.RWMutex
	sink Sink
}

// NewRegistry creates an empty sink registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register installs s as the live sink, replacing any previous one.
func (r *Registry) Register(s Sink) {
	r.mu.Lock()
	r.sink = s
	r.mu.Unlock()
}

// Current returns the live sink, or nil when no session has registered.
func (r *Registry) Current() Sink {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sink
}
