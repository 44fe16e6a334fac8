package bus

import (
	"sync"

	"weave/internal/screen"
)

// ClientRegistry maps a client ID to its live screen.Client, so a client
// worker processing a ClientInstruction off the bus can find where to
// write the rendered frame. Grounded on dcosson-h2/internal/session/
// session.go's Clients slice + clientsMu — upgraded from sync.Mutex to
// sync.RWMutex since lookups now happen concurrently from several client
// workers rather than from one render path holding the lock for the
// whole render.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[string]*screen.Client
}

// NewClientRegistry creates an empty registry.
func NewClientRegistry() *ClientRegistry {
	return &ClientRegistry{clients: make(map[string]*screen.Client)}
}

// Add registers a client, replacing any prior client registered under the
// same ID.
func (r *ClientRegistry) Add(c *screen.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ID] = c
}

// Remove unregisters a client by ID. A no-op if the ID isn't present.
func (r *ClientRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
}

// Get returns the client registered under id, if any.
func (r *ClientRegistry) Get(id string) (*screen.Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	return c, ok
}

// ForEach calls fn for a snapshot of the currently registered clients.
// Copying the slice under the lock (rather than holding it for the
// duration of fn) matches dcosson-h2's ForEachClient, which takes the same
// snapshot-then-release approach so a slow per-client render doesn't
// block registration of a new client.
func (r *ClientRegistry) ForEach(fn func(*screen.Client)) {
	r.mu.RLock()
	snapshot := make([]*screen.Client, 0, len(r.clients))
	for _, c := range r.clients {
		snapshot = append(snapshot, c)
	}
	r.mu.RUnlock()
	for _, c := range snapshot {
		fn(c)
	}
}

// Count returns the number of registered clients.
func (r *ClientRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
