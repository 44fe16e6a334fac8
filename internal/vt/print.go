package vt

// Print writes one grapheme cluster at the cursor with the current brush,
// implementing spec §4.1's "Printing a grapheme" algorithm: resolve width,
// resolve pending wrap, write, advance, and re-arm pending wrap at the
// right edge.
func (g *Grid) Print(cluster string) {
	width := graphemeWidth(cluster)
	if width == 0 {
		// Zero-width joiners/combining marks merge into the previous cell
		// rather than occupying a column of their own.
		g.mergeCombining(cluster)
		return
	}

	if g.pendingWrap && g.modes.AutoWrap {
		g.lineFeedForWrap()
		g.pendingWrap = false
	}

	b := g.active()
	col := b.cursor.Col
	row := b.cursor.Row

	if width == 2 && col == g.width-1 {
		// Width-2 character at the last column: spec's chosen policy is
		// emit-space-and-wrap (see the Open Question in SPEC_FULL.md — not
		// re-litigated here, just the one call site).
		g.setCell(row, col, BlankCell(b.cursor.Style.Bg))
		if g.modes.AutoWrap {
			g.lineFeedForWrap()
		}
		b = g.active()
		col = b.cursor.Col
		row = b.cursor.Row
	}

	lead := Cell{Grapheme: cluster, Width: width, Style: b.cursor.Style, Hyperlink: g.currentHyperlink}
	g.setCell(row, col, lead)
	if width == 2 && col+1 < g.width {
		g.setCell(row, col+1, WideSpacer(lead))
	}

	b.cursor.Col += width
	if b.cursor.Col >= g.width {
		b.cursor.Col = g.width - 1
		g.pendingWrap = true
	}
}

// mergeCombining appends a zero-width combining mark to the grapheme
// already occupying the cell immediately behind the cursor.
func (g *Grid) mergeCombining(mark string) {
	b := g.active()
	col := b.cursor.Col - 1
	if g.pendingWrap {
		col = b.cursor.Col
	}
	if col < 0 {
		return
	}
	row := b.cursor.Row
	if row < 0 || row >= len(b.rows) || col >= g.width {
		return
	}
	cell := &b.rows[row].Cells[col]
	if cell.IsWideSpacer() && col > 0 {
		cell = &b.rows[row].Cells[col-1]
	}
	cell.Grapheme += mark
	g.markDirty(row)
}

// lineFeedForWrap advances to the next line as part of wrap handling: the
// new row inherits the "not canonical" flag since it is a continuation of
// the same logical line, distinct from an explicit \n which starts a new
// logical line.
func (g *Grid) lineFeedForWrap() {
	g.LineFeedContinuation()
	b := g.active()
	b.cursor.Col = 0
}

// LineFeed moves the cursor down one row, scrolling within the scroll
// region if already at its bottom, and marks the new row canonical (an
// explicit \n always starts a fresh logical line).
func (g *Grid) LineFeed() {
	g.lineFeedInternal(true)
}

// LineFeedContinuation is LineFeed's wrap-driven sibling: it scrolls the
// same way but marks the resulting row as a wrapped continuation.
func (g *Grid) LineFeedContinuation() {
	g.lineFeedInternal(false)
}

func (g *Grid) lineFeedInternal(canonical bool) {
	b := g.active()
	top, bottom := b.scrollTop, b.scrollBottom
	if b.cursor.Row == bottom {
		g.scrollUp(1)
	} else if b.cursor.Row < g.height-1 {
		b.cursor.Row++
	}
	if b.cursor.Row >= top && b.cursor.Row <= bottom {
		b.rows[b.cursor.Row].IsCanonical = canonical
	}
}

// scrollUp moves n rows out of the top of the scroll region. On the
// primary buffer with the region's top at row 0, departing rows migrate
// into scrollback (spec §4.1's "On scroll-up at the top row..."); the
// alternate buffer and any non-zero-top scroll region simply discard them.
func (g *Grid) scrollUp(n int) {
	b := g.active()
	top, bottom := b.scrollTop, b.scrollBottom
	if n <= 0 || top > bottom {
		return
	}
	if n > bottom-top+1 {
		n = bottom - top + 1
	}

	retain := !g.alt && top == 0
	for i := 0; i < n; i++ {
		departing := b.rows[top]
		if retain {
			b.scrollback = append(b.scrollback, departing.Clone())
		}
		copy(b.rows[top:bottom], b.rows[top+1:bottom+1])
		b.rows[bottom] = NewRow(g.width, b.cursor.Style.Bg)
	}
	if retain {
		g.trimScrollback()
	}
	for r := top; r <= bottom; r++ {
		g.markDirty(r)
	}
}

// scrollDown moves n blank rows into the top of the scroll region,
// discarding n rows from the bottom (no scrollback interaction — content
// pushed off the bottom by SD is simply lost, matching every real
// terminal's behavior).
func (g *Grid) scrollDown(n int) {
	b := g.active()
	top, bottom := b.scrollTop, b.scrollBottom
	if n <= 0 || top > bottom {
		return
	}
	if n > bottom-top+1 {
		n = bottom - top + 1
	}
	for i := 0; i < n; i++ {
		copy(b.rows[top+1:bottom+1], b.rows[top:bottom])
		b.rows[top] = NewRow(g.width, b.cursor.Style.Bg)
	}
	for r := top; r <= bottom; r++ {
		g.markDirty(r)
	}
}

// CarriageReturn moves the cursor to column 0 (honoring DECOM's left
// margin is a non-goal here since the spec names only a scroll-region top
// margin, not a left/right margin mode).
func (g *Grid) CarriageReturn() {
	b := g.active()
	b.cursor.Col = 0
	g.pendingWrap = false
}

// Backspace moves the cursor left one column, clamped at 0.
func (g *Grid) Backspace() {
	b := g.active()
	if b.cursor.Col > 0 {
		b.cursor.Col--
	}
	g.pendingWrap = false
}

// HorizontalTab advances the cursor to the next tab stop, or the last
// column if none remain.
func (g *Grid) HorizontalTab() {
	b := g.active()
	next := g.NextTabStop(b.cursor.Col)
	b.cursor.Col = next
	g.pendingWrap = false
}

// NextTabStop returns the first tab stop greater than col, or width-1.
func (g *Grid) NextTabStop(col int) int {
	for c := col + 1; c < g.width; c++ {
		if g.tabStops[c] {
			return c
		}
	}
	return g.width - 1
}

// PrevTabStop returns the last tab stop less than col, or 0.
func (g *Grid) PrevTabStop(col int) int {
	for c := col - 1; c > 0; c-- {
		if g.tabStops[c] {
			return c
		}
	}
	return 0
}

// Bell is a no-op: the Grid has no bell callback, so BEL is not passed on
// to the Screen or to clients.
func (g *Grid) Bell() {}
