package daemon

import (
	"fmt"

	"github.com/google/shlex"
	"github.com/google/uuid"

	"weave/internal/bus"
	"weave/internal/layout"
	"weave/internal/pane"
	"weave/internal/screen"
)

// findTab looks up a tab by ID across every tab in the daemon's session.
func (d *Daemon) findTab(tabID string) (*screen.Tab, error) {
	for _, t := range d.Session.Tabs() {
		if t.ID == tabID {
			return t, nil
		}
	}
	return nil, fmt.Errorf("daemon: tab %q not found", tabID)
}

// handleScreenInstruction applies one resolved router Action's layout-level
// effect. Runs on the bus's single screen worker, so layout-tree mutations
// never race each other.
func (d *Daemon) handleScreenInstruction(instr bus.ScreenInstruction) error {
	tab, err := d.findTab(instr.TabID)
	if err != nil {
		return err
	}

	switch instr.Kind {
	case bus.ScreenSplit:
		return d.splitPane(tab, instr)
	case bus.ScreenClosePane:
		return d.closePane(tab, instr.PaneID)
	case bus.ScreenFocusDirection:
		return tab.FocusDirection(instr.ClientID, instr.Direction)
	case bus.ScreenFocusPane:
		return tab.SetFocus(instr.ClientID, instr.PaneID)
	case bus.ScreenNextTab:
		d.Session.NextTab()
		return nil
	case bus.ScreenPrevTab:
		d.Session.PrevTab()
		return nil
	case bus.ScreenNewTab:
		return d.newTab()
	case bus.ScreenCloseTab:
		return d.Session.RemoveTab(instr.TabID)
	case bus.ScreenFullscreenToggle:
		if _, ok := tab.Layout.IsFullscreen(); ok {
			tab.Layout.RestoreFullscreen()
			return nil
		}
		return tab.Layout.Fullscreen(tab.Focused(instr.ClientID))
	case bus.ScreenSyncToggle:
		d.Registry.ForEach(func(c *screen.Client) {
			c.SyncInput = !c.SyncInput
		})
		return nil
	case bus.ScreenResize:
		return tab.Layout.Resize(instr.Rect)
	case bus.ScreenAdjustSplit:
		return tab.Layout.AdjustSplit(instr.PaneID, instr.Delta)
	default:
		return fmt.Errorf("daemon: unknown screen instruction kind %v", instr.Kind)
	}
}

// splitPane spawns a new pane running the session's configured shell and
// places it beside instr.PaneID in the tab's layout tree.
func (d *Daemon) splitPane(tab *screen.Tab, instr bus.ScreenInstruction) error {
	rects := tab.Layout.Rects()
	rect, ok := rects[instr.PaneID]
	if !ok {
		return fmt.Errorf("daemon: split target %q has no tiled rect", instr.PaneID)
	}

	argv, err := shellArgv(d.Cfg.Shell)
	if err != nil {
		return err
	}
	rows, cols := rect.H, rect.W
	p, err := pane.NewTerminal(argv[0], argv[1:], rows, cols, nil)
	if err != nil {
		return fmt.Errorf("daemon: spawn split pane: %w", err)
	}

	if err := tab.Layout.Split(instr.PaneID, instr.Orientation, p.ID); err != nil {
		p.Close()
		return err
	}
	tab.AddPane(p)
	tab.SetFocus(instr.ClientID, p.ID)
	p.OnOutput = d.onPaneOutputFunc(tab.ID, p.ID)
	p.OnExit = d.onPaneExitFunc(tab.ID, p.ID)
	d.Log.PaneSpawn(tab.ID, p.ID, d.Cfg.Shell)
	return nil
}

func (d *Daemon) closePane(tab *screen.Tab, paneID string) error {
	if err := tab.RemovePane(paneID); err != nil {
		return err
	}
	if len(tab.Panes()) == 0 {
		return d.Session.RemoveTab(tab.ID)
	}
	return nil
}

func (d *Daemon) newTab() error {
	argv, err := shellArgv(d.Cfg.Shell)
	if err != nil {
		return err
	}
	p, err := pane.NewTerminal(argv[0], argv[1:], defaultRows, defaultCols, nil)
	if err != nil {
		return fmt.Errorf("daemon: spawn tab pane: %w", err)
	}
	tab := screen.NewTab(uuid.New().String(), "tab", p, layout.Rect{X: 0, Y: 0, W: defaultCols, H: defaultRows})
	tab.AddPane(p)
	d.Session.AddTab(tab)
	p.OnOutput = d.onPaneOutputFunc(tab.ID, p.ID)
	p.OnExit = d.onPaneExitFunc(tab.ID, p.ID)
	d.Log.PaneSpawn(tab.ID, p.ID, d.Cfg.Shell)
	return nil
}

func shellArgv(shell string) ([]string, error) {
	argv, err := shlex.Split(shell)
	if err != nil || len(argv) == 0 {
		return nil, fmt.Errorf("daemon: invalid shell command %q: %w", shell, err)
	}
	return argv, nil
}

// handlePtyInstruction performs one pane-addressed PTY operation.
func (d *Daemon) handlePtyInstruction(instr bus.PtyInstruction) error {
	p, ok := d.findPane(instr.PaneID)
	if !ok {
		return fmt.Errorf("daemon: pane %q not found", instr.PaneID)
	}
	switch instr.Kind {
	case bus.PtyWrite:
		if err := p.Write(instr.Data); err != nil {
			d.Log.PTYError(instr.PaneID, err)
			return err
		}
		return nil
	case bus.PtyResize:
		p.Resize(instr.Rows, instr.Cols)
		return nil
	case bus.PtyKill:
		return p.Close()
	default:
		return fmt.Errorf("daemon: unknown pty instruction kind %v", instr.Kind)
	}
}

func (d *Daemon) findPane(paneID string) (*pane.Pane, bool) {
	for _, t := range d.Session.Tabs() {
		if p, ok := t.Pane(paneID); ok {
			return p, true
		}
	}
	return nil, false
}

// handleClientInstruction delivers one already-rendered frame (or a
// lifecycle signal) to its addressed client.
func (d *Daemon) handleClientInstruction(instr bus.ClientInstruction) error {
	c, ok := d.Registry.Get(instr.ClientID)
	if !ok {
		return nil // client detached between submit and drain; nothing to do
	}
	switch instr.Kind {
	case bus.ClientFullRepaint, bus.ClientDirtyRepaint:
		_, err := c.Write(instr.Frame)
		return err
	case bus.ClientStatusTick, bus.ClientDetach:
		return nil // handled by the connection's own goroutine, not the worker
	default:
		return fmt.Errorf("daemon: unknown client instruction kind %v", instr.Kind)
	}
}

// onPaneOutputFunc returns the callback wired to a pane's OnOutput: it asks
// every attached client for a dirty repaint of the tab the pane belongs to.
func (d *Daemon) onPaneOutputFunc(tabID, paneID string) func() {
	return func() {
		tab, err := d.findTab(tabID)
		if err != nil {
			return
		}
		d.Registry.ForEach(func(c *screen.Client) {
			frame := screen.RenderDirty(tab, c)
			if len(frame) == 0 {
				return
			}
			d.Bus.SubmitClient(bus.ClientInstruction{ClientID: c.ID, Kind: bus.ClientDirtyRepaint, Frame: frame})
		})
	}
}

// onPaneExitFunc returns the callback wired to a pane's OnExit. When
// AutoCloseOnExit is set, the pane (and its tab, if it was the tab's last
// pane and the session has another tab) is torn down automatically;
// otherwise the exited pane is left
// in place showing its final screen, matching a real terminal's behavior
// for a shell that's configured not to auto-close.
func (d *Daemon) onPaneExitFunc(tabID, paneID string) func(error) {
	return func(err error) {
		d.Log.PaneExit(tabID, paneID, err)
		if !d.Cfg.AutoCloseOnExit {
			return
		}
		d.Bus.SubmitScreen(bus.ScreenInstruction{TabID: tabID, PaneID: paneID, Kind: bus.ScreenClosePane})
	}
}
