package screen

import (
	"fmt"
	"sync"

	"weave/internal/layout"
	"weave/internal/pane"
)

// Tab is one workspace within a session: a layout tree over a set of panes.
// Focus is tracked per attached client (two clients on the same tab may
// focus different panes), with a tab-wide default a client falls back to
// until it changes focus of its own — e.g. right after attaching.
type Tab struct {
	ID   string
	Name string

	Layout *layout.Tree

	mu            sync.RWMutex
	panes         map[string]*pane.Pane
	focused       string            // default focus, used until a client sets its own
	focusByClient map[string]string // clientID -> paneID
}

// NewTab creates a tab whose layout starts as a single rootPane filling
// rect.
func NewTab(id, name string, rootPane *pane.Pane, rect layout.Rect) *Tab {
	return &Tab{
		ID:            id,
		Name:          name,
		Layout:        layout.NewTree(rootPane.ID, rect),
		panes:         map[string]*pane.Pane{rootPane.ID: rootPane},
		focused:       rootPane.ID,
		focusByClient: make(map[string]string),
	}
}

// AddPane registers p in the tab's pane set without placing it in the
// layout; callers place it via Layout.Split or Layout.AddFloating first.
func (t *Tab) AddPane(p *pane.Pane) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.panes[p.ID] = p
}

// RemovePane closes and forgets p, reassigning focus to the tab's new
// topmost floating pane or an arbitrary remaining tiled pane if p was
// focused.
func (t *Tab) RemovePane(paneID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.panes[paneID]
	if !ok {
		return fmt.Errorf("screen: pane %q not in tab %q", paneID, t.ID)
	}
	delete(t.panes, paneID)
	p.Close()

	t.Layout.RemoveFloating(paneID)
	_ = t.Layout.Close(paneID) // no-op error if paneID wasn't tiled (e.g. was floating)

	if t.focused == paneID {
		t.focused = t.anyPaneLocked()
	}
	for clientID, focusedID := range t.focusByClient {
		if focusedID == paneID {
			t.focusByClient[clientID] = t.anyPaneLocked()
		}
	}
	return nil
}

func (t *Tab) anyPaneLocked() string {
	if fs := t.Layout.Floating(); len(fs) > 0 {
		return fs[len(fs)-1].PaneID
	}
	for id := range t.Layout.Rects() {
		return id
	}
	return ""
}

// Pane returns the pane registered under id.
func (t *Tab) Pane(id string) (*pane.Pane, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.panes[id]
	return p, ok
}

// Panes returns all panes registered in the tab, in no particular order.
func (t *Tab) Panes() []*pane.Pane {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*pane.Pane, 0, len(t.panes))
	for _, p := range t.panes {
		out = append(out, p)
	}
	return out
}

// Focused returns the pane ID clientID currently has focused, falling back
// to the tab's default focus if clientID hasn't set its own yet (including
// the zero value "", used by tab-wide contexts that aren't scoped to any
// one client).
func (t *Tab) Focused(clientID string) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if id, ok := t.focusByClient[clientID]; ok {
		return id
	}
	return t.focused
}

// SetFocus moves clientID's input focus to paneID if it belongs to this
// tab. clientID == "" updates the tab's default focus instead of any one
// client's, the fallback every client without its own focus entry reads.
func (t *Tab) SetFocus(clientID, paneID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.panes[paneID]; !ok {
		return fmt.Errorf("screen: pane %q not in tab %q", paneID, t.ID)
	}
	if clientID == "" {
		t.focused = paneID
		return nil
	}
	t.focusByClient[clientID] = paneID
	return nil
}

// BroadcastInput writes b to every pane currently in the tab, for a
// client's sync-input mode.
func (t *Tab) BroadcastInput(b []byte) {
	for _, p := range t.Panes() {
		p.Write(b)
	}
}

// RouteInput writes b to clientID's currently focused pane only.
func (t *Tab) RouteInput(clientID string, b []byte) error {
	id := t.Focused(clientID)
	p, ok := t.Pane(id)
	if !ok {
		return fmt.Errorf("screen: no focused pane in tab %q", t.ID)
	}
	return p.Write(b)
}
