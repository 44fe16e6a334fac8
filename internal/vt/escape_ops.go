package vt

// Index implements ESC D (IND): move down one row, scrolling the region if
// already at its bottom. Unlike the parser's plain-LF handling (which
// issues an explicit carriage return before this), IND never touches the
// cursor's column.
func (g *Grid) Index() { g.LineFeed() }

// ReverseIndex implements ESC M (RI): move up one row, scrolling the
// region down if already at its top.
func (g *Grid) ReverseIndex() {
	b := g.active()
	if b.cursor.Row == b.scrollTop {
		g.scrollDown(1)
	} else if b.cursor.Row > 0 {
		b.cursor.Row--
	}
}

// NextLine implements ESC E (NEL): carriage return plus a line feed,
// starting a new logical line.
func (g *Grid) NextLine() {
	g.CarriageReturn()
	g.LineFeed()
}

// DesignateCharset implements ESC ( / ESC ) SCS: assign a charset to G0 or
// G1. Only ASCII and DEC Special Graphics (the spec's "legacy
// line-drawing") are distinguished; anything else is treated as ASCII.
func (g *Grid) DesignateCharset(gset int, final byte) {
	if gset < 0 || gset > 3 {
		return
	}
	cs := CharsetASCII
	if final == '0' {
		cs = CharsetDECSpecialGraphics
	}
	g.charsets[gset] = cs
}

// ShiftOut selects G1 into GL (C0 0x0E, SO).
func (g *Grid) ShiftOut() { g.gl = 1 }

// ShiftIn selects G0 into GL (C0 0x0F, SI).
func (g *Grid) ShiftIn() { g.gl = 0 }

// FullReset implements ESC c (RIS): reset modes, charsets, tab stops, and
// clear both buffers, matching a child's expectation that RIS returns the
// terminal to its power-on state.
func (g *Grid) FullReset() {
	g.modes = Modes{AutoWrap: true}
	g.charsets = [4]Charset{}
	g.gl = 0
	g.pendingWrap = false
	g.tabStops = defaultTabStops(g.width)
	g.alt = false
	g.title = ""
	g.currentHyperlink = ""
	for _, buf := range []*buffer{g.primary, g.alternate} {
		for r := range buf.rows {
			buf.rows[r] = NewRow(g.width, DefaultColor)
		}
		buf.cursor = Cursor{Visible: true}
		buf.saved = nil
		buf.scrollTop, buf.scrollBottom = 0, g.height-1
	}
	g.primary.scrollback = nil
	g.markAllDirty()
}

// translateCharset maps a printable ASCII byte through the currently
// invoked (GL) charset, implementing DEC Special Graphics line-drawing
// (the `lqkx...` box-drawing substitution table) when selected.
func (g *Grid) translateCharset(r rune) rune {
	if g.charsets[g.gl] != CharsetDECSpecialGraphics {
		return r
	}
	if repl, ok := decSpecialGraphics[r]; ok {
		return repl
	}
	return r
}

// decSpecialGraphics is the DEC Special Graphics character set mapping for
// the subset of ASCII bytes it redefines (0x60-0x7e), used by curses/ncurses
// line-drawing UIs when they select G0/G1 to '0'.
var decSpecialGraphics = map[rune]rune{
	'`': '◆', // diamond
	'a': '▒', // checkerboard
	'b': '␉', // HT symbol
	'c': '␌', // FF symbol
	'd': '␍', // CR symbol
	'e': '␊', // LF symbol
	'f': '°', // degree
	'g': '±', // plus/minus
	'h': '␤', // NL symbol
	'i': '␋', // VT symbol
	'j': '┘', // box drawings light up and left
	'k': '┐', // box drawings light down and left
	'l': '┌', // box drawings light down and right
	'm': '└', // box drawings light up and right
	'n': '┼', // box drawings light vertical and horizontal
	'o': '⎺', // horizontal scan line 1
	'p': '⎻', // horizontal scan line 3
	'q': '─', // horizontal line
	'r': '⎼', // horizontal scan line 7
	's': '⎽', // horizontal scan line 9
	't': '├', // box drawings light vertical and right
	'u': '┤', // box drawings light vertical and left
	'v': '┴', // box drawings light up and horizontal
	'w': '┬', // box drawings light down and horizontal
	'x': '│', // vertical line
	'y': '≤', // less-than-or-equal
	'z': '≥', // greater-than-or-equal
	'{': 'π', // pi
	'|': '≠', // not equal
	'}': '£', // pound sterling
	'~': '·', // centered dot
}
