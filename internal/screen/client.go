// Package screen is the render compositor: it owns Tab/Session/Client
// bookkeeping, draws a tab's panes (tiled + floating) into one ANSI byte
// stream per client with box-drawing borders, tracks per-pane dirty rows
// so a redraw only touches what changed, and implements directional focus
// search across a tab's layout.
package screen

import (
	"io"
	"sync"
)

// Client is one attached viewer of a Session: its own output stream and
// terminal size, independent of any other attached client.
type Client struct {
	ID   string
	Name string

	Output   io.Writer
	outputMu sync.Mutex

	Rows, Cols int

	// SyncInput, when set, routes this client's keystrokes to every pane in
	// the active tab instead of only the focused one (tmux's
	// synchronize-panes). The flag is stored per client, but the daemon's
	// sync toggle flips it on every registered client at once.
	SyncInput bool

	lastRender map[string][]int // per-pane dirty rows rendered last frame, for debugging/metrics
}

// NewClient creates a client writing to out.
func NewClient(id string, out io.Writer, rows, cols int) *Client {
	return &Client{ID: id, Output: out, Rows: rows, Cols: cols, lastRender: make(map[string][]int)}
}

// Write sends already-framed output bytes to the client under its output
// lock, mirroring the teacher's c.OutputMu-guarded c.Output.Write pattern
// so concurrent renders (status bar vs. screen content) never interleave.
func (c *Client) Write(b []byte) (int, error) {
	c.outputMu.Lock()
	defer c.outputMu.Unlock()
	return c.Output.Write(b)
}

// Resize updates the client's known terminal size.
func (c *Client) Resize(rows, cols int) {
	c.Rows, c.Cols = rows, cols
}
