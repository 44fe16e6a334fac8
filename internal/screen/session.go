package screen

import (
	"fmt"
	"sync"
)

// Session is a named group of tabs shared by every attached Client, the
// top-level object the daemon hands out on attach.
type Session struct {
	ID   string
	Name string

	mu        sync.RWMutex
	tabs      []*Tab
	activeTab int
	clients   map[string]*Client
}

// NewSession creates an empty session; call AddTab before attaching any
// client.
func NewSession(id, name string) *Session {
	return &Session{ID: id, Name: name, clients: make(map[string]*Client)}
}

// AddTab appends a new tab and makes it active.
func (s *Session) AddTab(t *Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tabs = append(s.tabs, t)
	s.activeTab = len(s.tabs) - 1
}

// RemoveTab removes the tab with the given ID, closing all its panes.
// Refuses to remove the session's last tab: a session with zero tabs has
// nothing to attach a client to.
func (s *Session) RemoveTab(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tabs) <= 1 {
		return fmt.Errorf("screen: cannot remove the last tab in session %q", s.ID)
	}
	for i, t := range s.tabs {
		if t.ID != id {
			continue
		}
		for _, p := range t.Panes() {
			p.Close()
		}
		s.tabs = append(s.tabs[:i], s.tabs[i+1:]...)
		if s.activeTab >= len(s.tabs) {
			s.activeTab = len(s.tabs) - 1
		}
		return nil
	}
	return fmt.Errorf("screen: tab %q not found", id)
}

// Tabs returns the session's tabs in display order.
func (s *Session) Tabs() []*Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Tab, len(s.tabs))
	copy(out, s.tabs)
	return out
}

// ActiveTab returns the currently active tab, or nil if the session has
// none.
func (s *Session) ActiveTab() *Tab {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.activeTab < 0 || s.activeTab >= len(s.tabs) {
		return nil
	}
	return s.tabs[s.activeTab]
}

// SetActiveTab switches the active tab by ID.
func (s *Session) SetActiveTab(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tabs {
		if t.ID == id {
			s.activeTab = i
			return nil
		}
	}
	return fmt.Errorf("screen: tab %q not found", id)
}

// NextTab / PrevTab cycle the active tab, wrapping around.
func (s *Session) NextTab() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tabs) == 0 {
		return
	}
	s.activeTab = (s.activeTab + 1) % len(s.tabs)
}

func (s *Session) PrevTab() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tabs) == 0 {
		return
	}
	s.activeTab = (s.activeTab - 1 + len(s.tabs)) % len(s.tabs)
}

// AddClient registers a newly attached client.
func (s *Session) AddClient(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = c
}

// RemoveClient detaches a client.
func (s *Session) RemoveClient(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, id)
}

// ForEachClient calls fn for every attached client, holding only a read
// lock for the duration of the snapshot (not for fn itself).
func (s *Session) ForEachClient(fn func(*Client)) {
	s.mu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()
	for _, c := range clients {
		fn(c)
	}
}

// ClientCount reports how many clients are currently attached.
func (s *Session) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
