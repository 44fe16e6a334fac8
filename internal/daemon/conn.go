package daemon

import (
	"context"
	"encoding/json"
	"net"
	"time"

	"github.com/google/uuid"

	"weave/internal/bus"
	"weave/internal/layout"
	"weave/internal/router"
	"weave/internal/screen"
)

// escTimerDelay is how long the router waits after a lone ESC byte before
// resolving it as a literal Escape keypress rather than the start of a
// multi-byte sequence, mirroring the teacher's overlay.EscTimer delay.
const escTimerDelay = 50 * time.Millisecond

// acceptLoop accepts attach connections until ctx is cancelled or the
// listener closes, handling each one in its own goroutine.
func (d *Daemon) acceptLoop(ctx context.Context) error {
	for {
		conn, err := d.Listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return err
			}
		}
		go d.handleConn(ctx, conn)
	}
}

// handleConn performs the attach handshake, then pumps input frames from
// conn until the client disconnects.
func (d *Daemon) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	req, err := bus.ReadRequest(conn)
	if err != nil {
		return
	}

	tab := d.Session.ActiveTab()
	if tab == nil {
		bus.WriteResponse(conn, &bus.AttachResponse{Error: "session has no active tab"})
		return
	}

	rows, cols := req.Rows, req.Cols
	if rows <= 0 || cols <= 0 {
		rows, cols = defaultRows, defaultCols
	}

	client := screen.NewClient(uuid.New().String(), conn, rows, cols)
	d.Registry.Add(client)
	d.Session.AddClient(client)
	defer func() {
		d.Registry.Remove(client.ID)
		d.Session.RemoveClient(client.ID)
	}()

	if err := bus.WriteResponse(conn, &bus.AttachResponse{OK: true, TabID: tab.ID, PaneID: tab.Focused(client.ID)}); err != nil {
		return
	}

	client.Write([]byte("\033[2J\033[H"))
	client.Write([]byte("\033[?1000h\033[?1006h"))
	if frame := screen.Render(tab, client); len(frame) > 0 {
		client.Write(frame)
	}
	defer client.Write([]byte("\033[?1000l\033[?1006l"))

	r := router.New()
	d.Cfg.ApplyKeybindings(r)

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go d.escTimerLoop(connCtx, r, client)

	d.readClientFrames(conn, client, r)
}

// escTimerLoop periodically nudges the router's pending-escape timer so a
// lone ESC byte that isn't followed by more input within escTimerDelay
// resolves to a literal Escape keypress instead of waiting forever for a
// second byte that will never come.
func (d *Daemon) escTimerLoop(ctx context.Context, r *router.Router, client *screen.Client) {
	ticker := time.NewTicker(escTimerDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, out := range r.FlushTimer() {
				d.dispatchOutput(client, out)
			}
		}
	}
}

// readClientFrames reads framed input from the attach connection until it
// disconnects, routing each data frame through r and each control frame
// through its resize/detach handling.
func (d *Daemon) readClientFrames(conn net.Conn, client *screen.Client, r *router.Router) {
	for {
		frameType, payload, err := bus.ReadFrame(conn)
		if err != nil {
			return
		}
		switch frameType {
		case bus.FrameData:
			for _, out := range r.Feed(payload) {
				if d.dispatchOutput(client, out) {
					return // client asked to detach, or quit the session
				}
			}
		case bus.FrameControl:
			d.handleControlFrame(client, payload)
		}
	}
}

func (d *Daemon) handleControlFrame(client *screen.Client, payload []byte) {
	var ctrl bus.ControlMessage
	if err := json.Unmarshal(payload, &ctrl); err != nil {
		return
	}
	if ctrl.Type != "resize" || ctrl.Rows <= 0 || ctrl.Cols <= 0 {
		return
	}
	client.Resize(ctrl.Rows, ctrl.Cols)
	tab := d.Session.ActiveTab()
	if tab == nil {
		return
	}
	d.Bus.SubmitScreen(bus.ScreenInstruction{
		TabID: tab.ID,
		Kind:  bus.ScreenResize,
		Rect:  layout.Rect{X: 0, Y: 0, W: ctrl.Cols, H: ctrl.Rows},
	})
	if frame := screen.Render(tab, client); len(frame) > 0 {
		client.Write(frame)
	}
}

// dispatchOutput turns one router.Output into either raw pane input, a
// mouse passthrough, or a bus instruction reflecting the resolved Action.
// Returns true if the caller's read loop should stop (the client detached
// or asked to quit the session).
func (d *Daemon) dispatchOutput(client *screen.Client, out router.Output) bool {
	tab := d.Session.ActiveTab()
	if tab == nil {
		return false
	}

	switch {
	case out.Forward != nil:
		d.forwardToPane(tab, client, out.Forward)
	case out.Paste != nil:
		d.forwardToPane(tab, client, out.Paste)
	case out.Mouse != nil:
		// Mouse reports are dropped here: they trigger no action and are
		// not forwarded to any pane.
	case out.Action != router.ActionNone:
		return d.dispatchAction(tab, client, out.Action)
	}
	return false
}

func (d *Daemon) forwardToPane(tab *screen.Tab, client *screen.Client, data []byte) {
	if client.SyncInput {
		tab.BroadcastInput(data)
		return
	}
	d.Bus.SubmitPty(bus.PtyInstruction{PaneID: tab.Focused(client.ID), Kind: bus.PtyWrite, Data: data})
}

func (d *Daemon) dispatchAction(tab *screen.Tab, client *screen.Client, action router.Action) bool {
	focused := tab.Focused(client.ID)
	switch action {
	case router.ActionSplitHorizontal:
		d.Bus.SubmitScreen(bus.ScreenInstruction{TabID: tab.ID, PaneID: focused, ClientID: client.ID, Kind: bus.ScreenSplit, Orientation: layout.Horizontal})
	case router.ActionSplitVertical:
		d.Bus.SubmitScreen(bus.ScreenInstruction{TabID: tab.ID, PaneID: focused, ClientID: client.ID, Kind: bus.ScreenSplit, Orientation: layout.Vertical})
	case router.ActionClosePane:
		d.Bus.SubmitScreen(bus.ScreenInstruction{TabID: tab.ID, PaneID: focused, Kind: bus.ScreenClosePane})
	case router.ActionNextTab:
		d.Bus.SubmitScreen(bus.ScreenInstruction{TabID: tab.ID, Kind: bus.ScreenNextTab})
	case router.ActionPrevTab:
		d.Bus.SubmitScreen(bus.ScreenInstruction{TabID: tab.ID, Kind: bus.ScreenPrevTab})
	case router.ActionNewTab:
		d.Bus.SubmitScreen(bus.ScreenInstruction{TabID: tab.ID, Kind: bus.ScreenNewTab})
	case router.ActionFocusUp:
		d.Bus.SubmitScreen(bus.ScreenInstruction{TabID: tab.ID, ClientID: client.ID, Kind: bus.ScreenFocusDirection, Direction: screen.DirUp})
	case router.ActionFocusDown:
		d.Bus.SubmitScreen(bus.ScreenInstruction{TabID: tab.ID, ClientID: client.ID, Kind: bus.ScreenFocusDirection, Direction: screen.DirDown})
	case router.ActionFocusLeft:
		d.Bus.SubmitScreen(bus.ScreenInstruction{TabID: tab.ID, ClientID: client.ID, Kind: bus.ScreenFocusDirection, Direction: screen.DirLeft})
	case router.ActionFocusRight:
		d.Bus.SubmitScreen(bus.ScreenInstruction{TabID: tab.ID, ClientID: client.ID, Kind: bus.ScreenFocusDirection, Direction: screen.DirRight})
	case router.ActionFullscreenToggle:
		d.Bus.SubmitScreen(bus.ScreenInstruction{TabID: tab.ID, ClientID: client.ID, Kind: bus.ScreenFullscreenToggle})
	case router.ActionSyncToggle:
		d.Bus.SubmitScreen(bus.ScreenInstruction{TabID: tab.ID, Kind: bus.ScreenSyncToggle})
	case router.ActionDetach:
		return true
	case router.ActionQuit:
		d.Shutdown()
		return true
	}
	return false
}
