package screen

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"weave/internal/layout"
	"weave/internal/pane"
)

// newTestPane creates a plugin pane that echoes whatever it's written back
// onto its own Grid, so tests can populate visible content via Pane.Write
// without needing a real PTY.
func newTestPane(t *testing.T, rows, cols int) *pane.Pane {
	t.Helper()
	fn := func(ctx context.Context, in io.Reader, out io.Writer) error {
		buf := make([]byte, 4096)
		for {
			n, err := in.Read(buf)
			if n > 0 {
				out.Write(buf[:n])
			}
			if err != nil {
				return nil
			}
		}
	}
	return pane.NewPlugin(fn, rows, cols)
}

func TestTabAddAndRemovePane(t *testing.T) {
	root := newTestPane(t, 10, 10)
	tab := NewTab("tab1", "main", root, layout.Rect{X: 0, Y: 0, W: 20, H: 10})

	second := newTestPane(t, 10, 10)
	tab.AddPane(second)
	if err := tab.Layout.Split(root.ID, layout.Horizontal, second.ID); err != nil {
		t.Fatalf("split: %v", err)
	}
	if err := tab.RemovePane(second.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := tab.Pane(second.ID); ok {
		t.Fatalf("removed pane should no longer be registered")
	}
	if st, _ := second.State(); st != pane.StateClosed {
		t.Fatalf("removed pane should be closed, got %v", st)
	}
}

func TestRenderDrawsBordersAndContent(t *testing.T) {
	root := newTestPane(t, 8, 18)
	tab := NewTab("tab1", "main", root, layout.Rect{X: 0, Y: 0, W: 20, H: 10})
	root.Write([]byte("hi"))
	time.Sleep(10 * time.Millisecond)

	c := NewClient("c1", io.Discard, 10, 20)
	out := Render(tab, c)
	if !bytes.Contains(out, []byte("┌")) {
		t.Fatalf("expected a border to be drawn, got %q", out)
	}
	if !bytes.Contains(out, []byte("hi")) {
		t.Fatalf("expected pane content %q in rendered output, got %q", "hi", out)
	}
}

func TestRenderFullscreenShowsOnlyThatPane(t *testing.T) {
	root := newTestPane(t, 8, 18)
	tab := NewTab("tab1", "main", root, layout.Rect{X: 0, Y: 0, W: 20, H: 10})
	second := newTestPane(t, 8, 18)
	tab.AddPane(second)
	tab.Layout.Split(root.ID, layout.Horizontal, second.ID)

	root.Write([]byte("ROOTMARK"))
	second.Write([]byte("SECONDMARK"))
	time.Sleep(10 * time.Millisecond)

	if err := tab.Layout.Fullscreen(second.ID); err != nil {
		t.Fatalf("fullscreen: %v", err)
	}
	c := NewClient("c1", io.Discard, 10, 20)
	out := Render(tab, c)
	if bytes.Contains(out, []byte("ROOTMARK")) {
		t.Fatalf("fullscreen render should not include the non-fullscreen pane's content, got %q", out)
	}
	if !bytes.Contains(out, []byte("SECONDMARK")) {
		t.Fatalf("fullscreen render should include the fullscreened pane's content, got %q", out)
	}
}

func TestSessionTabCycling(t *testing.T) {
	s := NewSession("s1", "main")
	p1 := newTestPane(t, 5, 5)
	p2 := newTestPane(t, 5, 5)
	t1 := NewTab("t1", "one", p1, layout.Rect{X: 0, Y: 0, W: 10, H: 5})
	t2 := NewTab("t2", "two", p2, layout.Rect{X: 0, Y: 0, W: 10, H: 5})
	s.AddTab(t1)
	s.AddTab(t2)

	if s.ActiveTab().ID != "t2" {
		t.Fatalf("expected most recently added tab to be active")
	}
	s.NextTab()
	if s.ActiveTab().ID != "t1" {
		t.Fatalf("expected NextTab to wrap around to t1")
	}
	s.PrevTab()
	if s.ActiveTab().ID != "t2" {
		t.Fatalf("expected PrevTab to go back to t2")
	}
}

func TestFocusDirection(t *testing.T) {
	root := newTestPane(t, 5, 5)
	tab := NewTab("tab1", "main", root, layout.Rect{X: 0, Y: 0, W: 20, H: 20})
	right := newTestPane(t, 5, 5)
	tab.AddPane(right)
	tab.Layout.Split(root.ID, layout.Horizontal, right.ID)

	if err := tab.FocusDirection("", DirRight); err != nil {
		t.Fatalf("focus direction: %v", err)
	}
	if tab.Focused("") != right.ID {
		t.Fatalf("expected focus to move to the pane on the right, got %q", tab.Focused(""))
	}
	// Moving right again has no further candidate; focus should stay put.
	if err := tab.FocusDirection("", DirRight); err != nil {
		t.Fatalf("focus direction: %v", err)
	}
	if tab.Focused("") != right.ID {
		t.Fatalf("focus should stay on the rightmost pane")
	}
}

func TestBroadcastInputReachesAllPanes(t *testing.T) {
	var gotA, gotB []byte
	fnA := func(ctx context.Context, in io.Reader, out io.Writer) error {
		buf := make([]byte, 4)
		n, _ := in.Read(buf)
		gotA = buf[:n]
		return nil
	}
	fnB := func(ctx context.Context, in io.Reader, out io.Writer) error {
		buf := make([]byte, 4)
		n, _ := in.Read(buf)
		gotB = buf[:n]
		return nil
	}
	pA := pane.NewPlugin(fnA, 5, 5)
	pB := pane.NewPlugin(fnB, 5, 5)
	tab := NewTab("tab1", "main", pA, layout.Rect{X: 0, Y: 0, W: 20, H: 20})
	tab.AddPane(pB)
	tab.Layout.Split(pA.ID, layout.Horizontal, pB.ID)

	tab.BroadcastInput([]byte("go"))
	time.Sleep(20 * time.Millisecond)
	if string(gotA) != "go" || string(gotB) != "go" {
		t.Fatalf("broadcast should reach both panes, got a=%q b=%q", gotA, gotB)
	}
}
