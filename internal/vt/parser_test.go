package vt

import "testing"

func TestFeedIncrementality(t *testing.T) {
	whole := NewGrid(5, 20)
	feed(whole, "\x1b[31mhello\x1b[0m world")

	split := NewGrid(5, 20)
	p := NewParser(split)
	seq := "\x1b[31mhello\x1b[0m world"
	for i := 0; i < len(seq); i++ {
		p.Write([]byte{seq[i]})
	}

	for c := 0; c < 20; c++ {
		a, b := whole.Cell(0, c), split.Cell(0, c)
		if a.Grapheme != b.Grapheme || a.Style != b.Style {
			t.Fatalf("byte-at-a-time feed diverged at col %d: whole=%+v split=%+v", c, a, b)
		}
	}
}

func TestSGRTruecolorColonForm(t *testing.T) {
	g := NewGrid(3, 10)
	feed(g, "\x1b[38:2:10:20:30mX")
	c := g.Cell(0, 0)
	if c.Style.Fg.Kind != ColorRGB || c.Style.Fg.R != 10 || c.Style.Fg.G != 20 || c.Style.Fg.B != 30 {
		t.Fatalf("fg = %+v, want RGB(10,20,30)", c.Style.Fg)
	}
}

func TestSGR256ColorClassicForm(t *testing.T) {
	g := NewGrid(3, 10)
	feed(g, "\x1b[38;5;200mX")
	c := g.Cell(0, 0)
	if c.Style.Fg != Indexed(200) {
		t.Fatalf("fg = %+v, want Indexed(200)", c.Style.Fg)
	}
}

func TestUnknownCSIDoesNotCorruptState(t *testing.T) {
	g := NewGrid(3, 10)
	feed(g, "\x1b[999zA")
	if g.Cell(0, 0).Grapheme != "A" {
		t.Fatalf("unknown CSI should be discarded and parsing should resume cleanly, got %q", g.Cell(0, 0).Grapheme)
	}
}

func TestInvalidUTF8ReplacedWithReplacementChar(t *testing.T) {
	g := NewGrid(3, 10)
	feed(g, string([]byte{0xff, 'A'}))
	if g.Cell(0, 0).Grapheme != "�" {
		t.Fatalf("expected replacement char for invalid lead byte, got %q", g.Cell(0, 0).Grapheme)
	}
	if g.Cell(0, 1).Grapheme != "A" {
		t.Fatalf("parsing should resume after invalid byte, got %q", g.Cell(0, 1).Grapheme)
	}
}

func TestScrollRegionBoundsSU(t *testing.T) {
	g := NewGrid(5, 5)
	feed(g, "\x1b[2;4r") // scroll region rows 2-4 (1-indexed); homes cursor to (0,0)
	feed(g, "A")
	feed(g, "\x1b[1S") // scroll up within the region, row 0 is outside it
	if g.Cell(0, 0).Grapheme != "A" {
		t.Fatalf("scroll region leaked outside its bounds: cell(0,0) = %q, want A", g.Cell(0, 0).Grapheme)
	}
}

func TestCloseBoundaryTrailingSpaceAtLastColumn(t *testing.T) {
	g := NewGrid(2, 5)
	feed(g, "ab") // cursor at col 2
	feed(g, "\x1b[3C")
	feed(g, "漢") // at col 4 (width-1): emit space, wrap
	if g.Cell(0, 4).Grapheme != " " {
		t.Fatalf("expected trailing space at last column before wrap, got %q", g.Cell(0, 4).Grapheme)
	}
	if g.Cell(1, 0).Grapheme != "漢" {
		t.Fatalf("expected wide char to land at the start of the next row, got %q", g.Cell(1, 0).Grapheme)
	}
}
