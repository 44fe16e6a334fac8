package vt

import (
	"strings"
	"testing"
)

func feed(g *Grid, s string) {
	p := NewParser(g)
	p.Write([]byte(s))
}

func cellText(g *Grid, row, col int) string {
	return g.Cell(row, col).Grapheme
}

func rowText(g *Grid, row int) string {
	out := make([]rune, 0, g.Width())
	for c := 0; c < g.Width(); c++ {
		cell := g.Cell(row, c)
		if cell.IsWideSpacer() {
			continue
		}
		if cell.Grapheme == "" {
			out = append(out, ' ')
			continue
		}
		for _, r := range cell.Grapheme {
			out = append(out, r)
		}
	}
	return string(out)
}

func TestWideCharAfterPadding(t *testing.T) {
	g := NewGrid(24, 80)
	feed(g, strings.Repeat(" ", 79)+"漢")
	if got := rowText(g, 0); got != strings.Repeat(" ", 79)+" " {
		t.Fatalf("row 0 = %q, want 79 spaces then a trailing blank (wide char bounced to next row)", got)
	}
	if cellText(g, 1, 0) != "漢" {
		t.Fatalf("expected wide char wrapped to row 1 col 0, got %q", cellText(g, 1, 0))
	}
}

func TestSGRPersistsAcrossNewlineUntilReset(t *testing.T) {
	g := NewGrid(24, 80)
	feed(g, "\x1b[31mA\nB\x1b[0mC")
	a := g.Cell(0, 0)
	if a.Grapheme != "A" || a.Style.Fg != Indexed(1) {
		t.Fatalf("cell(0,0) = %+v, want A fg=red", a)
	}
	b := g.Cell(1, 0)
	if b.Grapheme != "B" || b.Style.Fg != Indexed(1) {
		t.Fatalf("cell(1,0) = %+v, want B fg=red", b)
	}
	c := g.Cell(1, 1)
	if c.Grapheme != "C" || c.Style.Fg != DefaultColor {
		t.Fatalf("cell(1,1) = %+v, want C fg=default", c)
	}
}

func TestAltScreenPreservesPrimary(t *testing.T) {
	g := NewGrid(5, 5)
	feed(g, "XYZ")
	feed(g, "\x1b[?1049h")
	feed(g, "Q")
	feed(g, "\x1b[?1049l")

	if got := rowText(g, 0); got != "XYZ  " {
		t.Fatalf("primary row 0 = %q, want %q", got, "XYZ  ")
	}
	if g.ScrollbackLen() != 0 {
		t.Fatalf("scrollback should be untouched by alt-screen activity, got %d rows", g.ScrollbackLen())
	}
}

func TestResizeReflowRoundTrip(t *testing.T) {
	g := NewGrid(24, 10)
	line := "abcdefghijklmnopqrstuvwxy" // 25 chars
	feed(g, line)

	g.Resize(24, 5)
	g.Resize(24, 10)

	got := rowText(g, 0)
	want := line[:10]
	if got != want {
		t.Fatalf("row 0 after round-trip resize = %q, want %q", got, want)
	}
}

func TestResizeIdempotent(t *testing.T) {
	g := NewGrid(24, 80)
	feed(g, "hello world, this is a reasonably long line of text to wrap around a bit")
	g.Resize(24, 40)
	snap1 := snapshot(g)
	g.Resize(24, 40)
	snap2 := snapshot(g)
	if snap1 != snap2 {
		t.Fatalf("resize(W)->resize(W) changed content:\nbefore: %q\nafter:  %q", snap1, snap2)
	}
}

func snapshot(g *Grid) string {
	s := ""
	for r := 0; r < g.Height(); r++ {
		s += rowText(g, r) + "\n"
	}
	return s
}

func TestPendingWrapAtLastColumn(t *testing.T) {
	g := NewGrid(3, 5)
	feed(g, "abcde")
	if !g.PendingWrap() {
		t.Fatalf("expected pending wrap after filling the last column")
	}
	feed(g, "f")
	if g.PendingWrap() {
		t.Fatalf("pending wrap should clear after the next printable character wraps")
	}
	if cellText(g, 1, 0) != "f" {
		t.Fatalf("wrapped char should land at row 1 col 0, got %q", cellText(g, 1, 0))
	}
}

func TestScrollbackCapEviction(t *testing.T) {
	g := NewGrid(2, 5)
	g.SetScrollbackCap(3)
	for i := 0; i < 10; i++ {
		feed(g, "x\n")
	}
	if g.ScrollbackLen() > 3 {
		t.Fatalf("scrollback cap exceeded: %d rows", g.ScrollbackLen())
	}
}

func TestSaveRestoreCursor(t *testing.T) {
	g := NewGrid(10, 10)
	feed(g, "\x1b[31m")
	feed(g, "\x1b[3;3H")
	feed(g, "\x1b7") // DECSC
	feed(g, "\x1b[5;5H\x1b[0m")
	feed(g, "\x1b8") // DECRC
	cur := g.Cursor()
	if cur.Row != 2 || cur.Col != 2 {
		t.Fatalf("cursor after restore = (%d,%d), want (2,2)", cur.Row, cur.Col)
	}
	if cur.Style.Fg != Indexed(1) {
		t.Fatalf("style after restore = %+v, want fg=red", cur.Style)
	}
}

func TestCloseBoundaryWideCharAtWidthMinusOne(t *testing.T) {
	g := NewGrid(3, 5)
	feed(g, "abc漢") // a b c 漢 at cols 0,1,2,3-4
	if cellText(g, 0, 3) != "漢" || !g.Cell(0, 4).IsWideSpacer() {
		t.Fatalf("wide char at col width-2 should occupy cols 3,4 on same row")
	}
}

func TestDeviceStatusReportRoundTrip(t *testing.T) {
	g := NewGrid(10, 10)
	var got []byte
	g.OnDeviceReport = func(b []byte) { got = append(got, b...) }
	feed(g, "\x1b[5;5H\x1b[6n")
	want := "\x1b[5;5R"
	if string(got) != want {
		t.Fatalf("DSR response = %q, want %q", got, want)
	}
}

func TestOSCTitle(t *testing.T) {
	g := NewGrid(5, 5)
	var title string
	g.OnTitleChange = func(s string) { title = s }
	feed(g, "\x1b]2;hello\x07")
	if title != "hello" {
		t.Fatalf("title = %q, want hello", title)
	}
}

func TestOSC52ClipboardGated(t *testing.T) {
	g := NewGrid(5, 5)
	var got []byte
	g.OnClipboardWrite = func(sel string, data []byte) { got = data }
	g.ClipboardAllowed = func(string) bool { return false }
	feed(g, "\x1b]52;c;aGVsbG8=\x07")
	if got != nil {
		t.Fatalf("clipboard write should have been gated off")
	}
	g.ClipboardAllowed = func(string) bool { return true }
	feed(g, "\x1b]52;c;aGVsbG8=\x07")
	if string(got) != "hello" {
		t.Fatalf("clipboard payload = %q, want hello", got)
	}
}
