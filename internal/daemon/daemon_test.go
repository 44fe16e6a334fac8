package daemon

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"weave/internal/bus"
	"weave/internal/config"
	"weave/internal/eventlog"
	"weave/internal/layout"
	"weave/internal/pane"
	"weave/internal/router"
	"weave/internal/screen"
)

// blockingPlugin never produces output on its own; tests drive it purely
// through Write/Close so pane lifecycle stays deterministic.
func blockingPlugin(ctx context.Context, in io.Reader, out io.Writer) error {
	<-ctx.Done()
	return ctx.Err()
}

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	root := pane.NewPlugin(blockingPlugin, 24, 80)
	tab := screen.NewTab("tab-1", "main", root, layout.Rect{X: 0, Y: 0, W: 80, H: 24})
	tab.AddPane(root)

	sess := screen.NewSession("sess-1", "test")
	sess.AddTab(tab)

	d := &Daemon{
		Name:     "test",
		Cfg:      config.Default(),
		Session:  sess,
		Bus:      bus.NewWithCapacity(32),
		Registry: bus.NewClientRegistry(),
		Log:      eventlog.Nop(),
	}
	root.OnOutput = d.onPaneOutputFunc(tab.ID, root.ID)
	root.OnExit = d.onPaneExitFunc(tab.ID, root.ID)
	return d
}

func TestFindTab(t *testing.T) {
	d := newTestDaemon(t)
	tab, err := d.findTab("tab-1")
	if err != nil {
		t.Fatalf("findTab: %v", err)
	}
	if tab.ID != "tab-1" {
		t.Fatalf("got tab %q, want tab-1", tab.ID)
	}
	if _, err := d.findTab("missing"); err == nil {
		t.Fatal("expected error for unknown tab ID")
	}
}

func TestHandleScreenInstructionFocusDirection(t *testing.T) {
	d := newTestDaemon(t)
	tab, _ := d.findTab("tab-1")
	other := pane.NewPlugin(blockingPlugin, 24, 40)
	if err := tab.Layout.Split(tab.Focused(""), layout.Vertical, other.ID); err != nil {
		t.Fatalf("split: %v", err)
	}
	tab.AddPane(other)

	err := d.handleScreenInstruction(bus.ScreenInstruction{
		TabID:     tab.ID,
		Kind:      bus.ScreenFocusDirection,
		Direction: screen.DirRight,
	})
	if err != nil {
		t.Fatalf("handleScreenInstruction: %v", err)
	}
}

func TestHandleScreenInstructionNextPrevTab(t *testing.T) {
	d := newTestDaemon(t)
	root2 := pane.NewPlugin(blockingPlugin, 24, 80)
	tab2 := screen.NewTab("tab-2", "second", root2, layout.Rect{X: 0, Y: 0, W: 80, H: 24})
	tab2.AddPane(root2)
	d.Session.AddTab(tab2)

	if d.Session.ActiveTab().ID != "tab-2" {
		t.Fatalf("expected tab-2 active after AddTab, got %q", d.Session.ActiveTab().ID)
	}

	if err := d.handleScreenInstruction(bus.ScreenInstruction{TabID: "tab-2", Kind: bus.ScreenPrevTab}); err != nil {
		t.Fatalf("prev tab: %v", err)
	}
	if d.Session.ActiveTab().ID != "tab-1" {
		t.Fatalf("expected tab-1 active after PrevTab, got %q", d.Session.ActiveTab().ID)
	}

	if err := d.handleScreenInstruction(bus.ScreenInstruction{TabID: "tab-1", Kind: bus.ScreenNextTab}); err != nil {
		t.Fatalf("next tab: %v", err)
	}
	if d.Session.ActiveTab().ID != "tab-2" {
		t.Fatalf("expected tab-2 active after NextTab, got %q", d.Session.ActiveTab().ID)
	}
}

func TestHandleScreenInstructionSyncToggle(t *testing.T) {
	d := newTestDaemon(t)
	var buf bytes.Buffer
	c := screen.NewClient("c1", &buf, 24, 80)
	d.Registry.Add(c)

	if err := d.handleScreenInstruction(bus.ScreenInstruction{TabID: "tab-1", Kind: bus.ScreenSyncToggle}); err != nil {
		t.Fatalf("sync toggle: %v", err)
	}
	if !c.SyncInput {
		t.Fatal("expected SyncInput to flip to true")
	}
}

func TestHandleScreenInstructionFullscreenToggle(t *testing.T) {
	d := newTestDaemon(t)
	tab, _ := d.findTab("tab-1")

	if err := d.handleScreenInstruction(bus.ScreenInstruction{TabID: tab.ID, Kind: bus.ScreenFullscreenToggle}); err != nil {
		t.Fatalf("enter fullscreen: %v", err)
	}
	if _, ok := tab.Layout.IsFullscreen(); !ok {
		t.Fatal("expected tab to be fullscreen")
	}
	if err := d.handleScreenInstruction(bus.ScreenInstruction{TabID: tab.ID, Kind: bus.ScreenFullscreenToggle}); err != nil {
		t.Fatalf("exit fullscreen: %v", err)
	}
	if _, ok := tab.Layout.IsFullscreen(); ok {
		t.Fatal("expected tab to no longer be fullscreen")
	}
}

func TestHandleScreenInstructionUnknownKind(t *testing.T) {
	d := newTestDaemon(t)
	err := d.handleScreenInstruction(bus.ScreenInstruction{TabID: "tab-1", Kind: bus.ScreenInstructionKind(999)})
	if err == nil {
		t.Fatal("expected error for unknown screen instruction kind")
	}
}

func TestSplitAndClosePane(t *testing.T) {
	d := newTestDaemon(t)
	d.Cfg.Shell = "true"
	tab, _ := d.findTab("tab-1")
	root := tab.Focused("")

	if err := d.splitPane(tab, bus.ScreenInstruction{TabID: tab.ID, PaneID: root, Orientation: layout.Vertical}); err != nil {
		t.Fatalf("splitPane: %v", err)
	}
	if got := len(tab.Panes()); got != 2 {
		t.Fatalf("expected 2 panes after split, got %d", got)
	}

	var newPaneID string
	for _, p := range tab.Panes() {
		if p.ID != root {
			newPaneID = p.ID
		}
	}
	if newPaneID == "" {
		t.Fatal("expected a new pane distinct from root")
	}
	if tab.Focused("") != newPaneID {
		t.Fatalf("expected focus to move to the new pane, got %q", tab.Focused(""))
	}

	if err := d.closePane(tab, newPaneID); err != nil {
		t.Fatalf("closePane: %v", err)
	}
	if got := len(tab.Panes()); got != 1 {
		t.Fatalf("expected 1 pane after close, got %d", got)
	}
}

func TestSplitPaneRejectsUnknownTarget(t *testing.T) {
	d := newTestDaemon(t)
	d.Cfg.Shell = "true"
	tab, _ := d.findTab("tab-1")
	err := d.splitPane(tab, bus.ScreenInstruction{TabID: tab.ID, PaneID: "nope"})
	if err == nil {
		t.Fatal("expected error splitting against an untiled pane ID")
	}
}

func TestNewTab(t *testing.T) {
	d := newTestDaemon(t)
	d.Cfg.Shell = "true"
	before := len(d.Session.Tabs())
	if err := d.newTab(); err != nil {
		t.Fatalf("newTab: %v", err)
	}
	if got := len(d.Session.Tabs()); got != before+1 {
		t.Fatalf("expected %d tabs, got %d", before+1, got)
	}
}

func TestShellArgvRejectsEmpty(t *testing.T) {
	if _, err := shellArgv(""); err == nil {
		t.Fatal("expected error for empty shell command")
	}
	argv, err := shellArgv("sh -c true")
	if err != nil {
		t.Fatalf("shellArgv: %v", err)
	}
	if len(argv) != 3 || argv[0] != "sh" {
		t.Fatalf("unexpected argv: %v", argv)
	}
}

func TestHandlePtyInstruction(t *testing.T) {
	d := newTestDaemon(t)
	tab, _ := d.findTab("tab-1")
	paneID := tab.Focused("")

	if err := d.handlePtyInstruction(bus.PtyInstruction{PaneID: paneID, Kind: bus.PtyResize, Rows: 30, Cols: 100}); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if err := d.handlePtyInstruction(bus.PtyInstruction{PaneID: "missing", Kind: bus.PtyResize}); err == nil {
		t.Fatal("expected error for unknown pane ID")
	}
	if err := d.handlePtyInstruction(bus.PtyInstruction{PaneID: paneID, Kind: bus.PtyKill}); err != nil {
		t.Fatalf("kill: %v", err)
	}
}

func TestFindPaneAcrossTabs(t *testing.T) {
	d := newTestDaemon(t)
	root2 := pane.NewPlugin(blockingPlugin, 24, 80)
	tab2 := screen.NewTab("tab-2", "second", root2, layout.Rect{X: 0, Y: 0, W: 80, H: 24})
	tab2.AddPane(root2)
	d.Session.AddTab(tab2)

	p, ok := d.findPane(root2.ID)
	if !ok || p.ID != root2.ID {
		t.Fatalf("expected to find pane in tab-2, got %v %v", p, ok)
	}
	if _, ok := d.findPane("missing"); ok {
		t.Fatal("expected no pane found for unknown ID")
	}
}

func TestHandleClientInstruction(t *testing.T) {
	d := newTestDaemon(t)
	var buf bytes.Buffer
	c := screen.NewClient("c1", &buf, 24, 80)
	d.Registry.Add(c)

	err := d.handleClientInstruction(bus.ClientInstruction{ClientID: "c1", Kind: bus.ClientFullRepaint, Frame: []byte("hi")})
	if err != nil {
		t.Fatalf("handleClientInstruction: %v", err)
	}
	if buf.String() != "hi" {
		t.Fatalf("expected frame written to client, got %q", buf.String())
	}

	// A client that detached between submit and drain is a no-op, not an
	// error.
	if err := d.handleClientInstruction(bus.ClientInstruction{ClientID: "gone", Kind: bus.ClientFullRepaint}); err != nil {
		t.Fatalf("expected nil error for unknown client, got %v", err)
	}

	if err := d.handleClientInstruction(bus.ClientInstruction{ClientID: "c1", Kind: bus.ClientInstructionKind(999)}); err == nil {
		t.Fatal("expected error for unknown client instruction kind")
	}
}

func TestOnPaneExitFuncRespectsAutoCloseOnExit(t *testing.T) {
	d := newTestDaemon(t)
	tab, _ := d.findTab("tab-1")

	d.Cfg.AutoCloseOnExit = false
	fn := d.onPaneExitFunc(tab.ID, tab.Focused(""))
	fn(nil)
	select {
	case instr := <-d.Bus.Screen:
		t.Fatalf("expected no screen instruction when AutoCloseOnExit is false, got %+v", instr)
	case <-time.After(20 * time.Millisecond):
	}

	d.Cfg.AutoCloseOnExit = true
	fn = d.onPaneExitFunc(tab.ID, tab.Focused(""))
	fn(nil)
	select {
	case instr := <-d.Bus.Screen:
		if instr.Kind != bus.ScreenClosePane {
			t.Fatalf("expected ScreenClosePane, got %+v", instr)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a ScreenClosePane instruction when AutoCloseOnExit is true")
	}
}

func TestOnPaneOutputFuncNotifiesEveryAttachedClient(t *testing.T) {
	d := newTestDaemon(t)
	tab, _ := d.findTab("tab-1")
	var buf bytes.Buffer
	c := screen.NewClient("c1", &buf, 24, 80)
	d.Registry.Add(c)

	fn := d.onPaneOutputFunc(tab.ID, tab.Focused(""))
	fn()
	select {
	case instr := <-d.Bus.Client:
		if instr.ClientID != "c1" || instr.Kind != bus.ClientDirtyRepaint {
			t.Fatalf("unexpected client instruction: %+v", instr)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a dirty-repaint instruction for the attached client")
	}
}

func TestOnPaneOutputFuncSkipsUnknownTab(t *testing.T) {
	d := newTestDaemon(t)
	var buf bytes.Buffer
	c := screen.NewClient("c1", &buf, 24, 80)
	d.Registry.Add(c)

	fn := d.onPaneOutputFunc("missing-tab", "whatever")
	fn()
	select {
	case instr := <-d.Bus.Client:
		t.Fatalf("expected no instruction for a tab that no longer exists, got %+v", instr)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestDispatchActionDetachAndQuit(t *testing.T) {
	d := newTestDaemon(t)
	tab, _ := d.findTab("tab-1")
	var buf bytes.Buffer
	c := screen.NewClient("c1", &buf, 24, 80)

	if stop := d.dispatchAction(tab, c, router.ActionDetach); !stop {
		t.Fatal("expected ActionDetach to stop the read loop")
	}

	done := d.cancelled()
	if stopped := d.dispatchAction(tab, c, router.ActionQuit); !stopped {
		t.Fatal("expected ActionQuit to stop the read loop")
	}
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("expected ActionQuit to cancel the daemon")
	}
}

func TestDispatchActionUnrecognizedReturnsFalse(t *testing.T) {
	d := newTestDaemon(t)
	tab, _ := d.findTab("tab-1")
	var buf bytes.Buffer
	c := screen.NewClient("c1", &buf, 24, 80)
	if stop := d.dispatchAction(tab, c, router.Action(-1)); stop {
		t.Fatal("expected an unrecognized action not to stop the read loop")
	}
}

func TestDispatchOutputForwardsToPane(t *testing.T) {
	d := newTestDaemon(t)
	var buf bytes.Buffer
	c := screen.NewClient("c1", &buf, 24, 80)

	stop := d.dispatchOutput(c, router.Output{Forward: []byte("x")})
	if stop {
		t.Fatal("forwarding a keystroke should never stop the read loop")
	}
	select {
	case instr := <-d.Bus.Pty:
		if instr.Kind != bus.PtyWrite || string(instr.Data) != "x" {
			t.Fatalf("unexpected pty instruction: %+v", instr)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a PtyWrite instruction")
	}
}

func TestForwardToPaneBroadcastsWhenSyncInput(t *testing.T) {
	d := newTestDaemon(t)
	tab, _ := d.findTab("tab-1")
	var buf bytes.Buffer
	c := screen.NewClient("c1", &buf, 24, 80)
	c.SyncInput = true

	d.forwardToPane(tab, c, []byte("y"))
	select {
	case instr := <-d.Bus.Pty:
		t.Fatalf("expected sync-input to bypass the pty lane entirely, got %+v", instr)
	case <-time.After(20 * time.Millisecond):
	}
}

// cancelled exposes d.cancel's effect for tests without needing a live
// context.Context wired through Run; Shutdown is a no-op when cancel is
// unset, so tests that exercise ActionQuit set one up themselves.
func (d *Daemon) cancelled() <-chan struct{} {
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	return ctx.Done()
}
