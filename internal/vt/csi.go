package vt

// DispatchCSI executes one fully-parsed CSI sequence. final is the
// terminating byte (e.g. 'H' for CUP); params carries the numeric
// parameters and any private marker / intermediate byte the parser
// collected. Unknown finals are silently ignored per spec §4.1's failure
// semantics — the parser never propagates an error for an unsupported
// sequence.
func (g *Grid) DispatchCSI(final byte, params Params) {
	if params.Private == '?' {
		g.dispatchPrivateCSI(final, params)
		return
	}
	switch final {
	case 'H', 'f': // CUP / HVP
		row := params.Get(0, 1) - 1
		col := params.Get(1, 1) - 1
		g.moveCursorAbsolute(row, col)
	case 'A': // CUU
		g.moveCursorRelative(-params.Get(0, 1), 0)
	case 'B': // CUD
		g.moveCursorRelative(params.Get(0, 1), 0)
	case 'C': // CUF
		g.moveCursorRelative(0, params.Get(0, 1))
	case 'D': // CUB
		g.moveCursorRelative(0, -params.Get(0, 1))
	case 'E': // CNL
		g.moveCursorRelative(params.Get(0, 1), 0)
		g.CarriageReturn()
	case 'F': // CPL
		g.moveCursorRelative(-params.Get(0, 1), 0)
		g.CarriageReturn()
	case 'G', '`': // CHA / HPA
		g.moveCursorAbsolute(g.active().cursor.Row, params.Get(0, 1)-1)
	case 'd': // VPA
		g.moveCursorAbsolute(params.Get(0, 1)-1, g.active().cursor.Col)
	case 'J': // ED
		g.eraseDisplay(params.Get(0, 0))
	case 'K': // EL
		g.eraseLine(params.Get(0, 0))
	case '@': // ICH
		g.insertChars(params.Get(0, 1))
	case 'P': // DCH
		g.deleteChars(params.Get(0, 1))
	case 'L': // IL
		g.insertLines(params.Get(0, 1))
	case 'M': // DL
		g.deleteLines(params.Get(0, 1))
	case 'S': // SU
		g.scrollUp(params.Get(0, 1))
	case 'T': // SD
		g.scrollDown(params.Get(0, 1))
	case 'X': // ECH
		g.eraseChars(params.Get(0, 1))
	case 'm': // SGR
		g.dispatchSGR(params)
	case 'h': // SM
		g.setMode(params, true)
	case 'l': // RM
		g.setMode(params, false)
	case 'r': // DECSTBM
		g.setScrollRegion(params.Get(0, 1), params.Get(1, g.height))
	case 'n': // DSR
		g.deviceStatusReport(params.Get(0, 0))
	case 'c': // DA
		g.reportDeviceAttributes()
	case 'q': // DECSCUSR (when preceded by ' ' intermediate)
		if params.Intermediate == ' ' {
			g.setCursorShape(params.Get(0, 1))
		}
	case 'g': // TBC
		g.clearTabStops(params.Get(0, 0))
	}
}

func (g *Grid) dispatchPrivateCSI(final byte, params Params) {
	switch final {
	case 'h':
		g.setPrivateMode(params, true)
	case 'l':
		g.setPrivateMode(params, false)
	}
}

func (g *Grid) moveCursorAbsolute(row, col int) {
	b := g.active()
	top, bottom := 0, g.height-1
	if g.modes.OriginMode {
		top, bottom = b.scrollTop, b.scrollBottom
		row += top
	}
	b.cursor.Row = clamp(row, top, bottom)
	b.cursor.Col = clamp(col, 0, g.width-1)
	g.pendingWrap = false
}

func (g *Grid) moveCursorRelative(dRow, dCol int) {
	b := g.active()
	top, bottom := 0, g.height-1
	if g.modes.OriginMode {
		top, bottom = b.scrollTop, b.scrollBottom
	}
	b.cursor.Row = clamp(b.cursor.Row+dRow, top, bottom)
	b.cursor.Col = clamp(b.cursor.Col+dCol, 0, g.width-1)
	g.pendingWrap = false
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// eraseDisplay implements ED: 0=cursor-to-end, 1=start-to-cursor, 2/3=all
// (3 additionally clears scrollback, matching xterm's extension).
func (g *Grid) eraseDisplay(mode int) {
	b := g.active()
	bg := b.cursor.Style.Bg
	switch mode {
	case 0:
		g.eraseLineRange(b.cursor.Row, b.cursor.Col, g.width, bg)
		for r := b.cursor.Row + 1; r < g.height; r++ {
			g.clearRow(r, bg)
		}
	case 1:
		for r := 0; r < b.cursor.Row; r++ {
			g.clearRow(r, bg)
		}
		g.eraseLineRange(b.cursor.Row, 0, b.cursor.Col+1, bg)
	case 2:
		for r := 0; r < g.height; r++ {
			g.clearRow(r, bg)
		}
	case 3:
		for r := 0; r < g.height; r++ {
			g.clearRow(r, bg)
		}
		if !g.alt {
			b.scrollback = nil
		}
	}
}

func (g *Grid) eraseLine(mode int) {
	b := g.active()
	bg := b.cursor.Style.Bg
	switch mode {
	case 0:
		g.eraseLineRange(b.cursor.Row, b.cursor.Col, g.width, bg)
	case 1:
		g.eraseLineRange(b.cursor.Row, 0, b.cursor.Col+1, bg)
	case 2:
		g.clearRow(b.cursor.Row, bg)
	}
}

func (g *Grid) clearRow(row int, bg Color) {
	g.eraseLineRange(row, 0, g.width, bg)
	b := g.active()
	if row >= 0 && row < len(b.rows) {
		b.rows[row].IsCanonical = true
	}
}

func (g *Grid) eraseLineRange(row, from, to int, bg Color) {
	b := g.active()
	if row < 0 || row >= len(b.rows) {
		return
	}
	blank := BlankCell(bg)
	for c := from; c < to && c < g.width; c++ {
		if c < 0 {
			continue
		}
		b.rows[row].Cells[c] = blank
	}
	g.markDirty(row)
}

func (g *Grid) eraseChars(n int) {
	b := g.active()
	g.eraseLineRange(b.cursor.Row, b.cursor.Col, b.cursor.Col+n, b.cursor.Style.Bg)
}

func (g *Grid) insertChars(n int) {
	b := g.active()
	row, col := b.cursor.Row, b.cursor.Col
	if row < 0 || row >= len(b.rows) {
		return
	}
	cells := b.rows[row].Cells
	if n > g.width-col {
		n = g.width - col
	}
	copy(cells[col+n:], cells[col:g.width-n])
	blank := BlankCell(b.cursor.Style.Bg)
	for c := col; c < col+n && c < g.width; c++ {
		cells[c] = blank
	}
	g.markDirty(row)
}

func (g *Grid) deleteChars(n int) {
	b := g.active()
	row, col := b.cursor.Row, b.cursor.Col
	if row < 0 || row >= len(b.rows) {
		return
	}
	cells := b.rows[row].Cells
	if n > g.width-col {
		n = g.width - col
	}
	copy(cells[col:], cells[col+n:])
	blank := BlankCell(b.cursor.Style.Bg)
	for c := g.width - n; c < g.width; c++ {
		cells[c] = blank
	}
	g.markDirty(row)
}

func (g *Grid) insertLines(n int) {
	b := g.active()
	if b.cursor.Row < b.scrollTop || b.cursor.Row > b.scrollBottom {
		return
	}
	savedTop := b.scrollTop
	b.scrollTop = b.cursor.Row
	g.scrollDown(n)
	b.scrollTop = savedTop
}

func (g *Grid) deleteLines(n int) {
	b := g.active()
	if b.cursor.Row < b.scrollTop || b.cursor.Row > b.scrollBottom {
		return
	}
	savedTop := b.scrollTop
	b.scrollTop = b.cursor.Row
	g.scrollUp(n)
	b.scrollTop = savedTop
}

func (g *Grid) setScrollRegion(top, bottom int) {
	b := g.active()
	top--
	bottom--
	if top < 0 {
		top = 0
	}
	if bottom >= g.height {
		bottom = g.height - 1
	}
	if top >= bottom {
		top, bottom = 0, g.height-1
	}
	b.scrollTop = top
	b.scrollBottom = bottom
	// DECSTBM homes the cursor, honoring origin mode.
	g.moveCursorAbsolute(0, 0)
}

func (g *Grid) setCursorShape(n int) {
	b := g.active()
	switch n {
	case 0, 1:
		b.cursor.Shape, b.cursor.Blink = CursorBlock, n == 1
	case 2:
		b.cursor.Shape, b.cursor.Blink = CursorBlock, false
	case 3:
		b.cursor.Shape, b.cursor.Blink = CursorUnderline, true
	case 4:
		b.cursor.Shape, b.cursor.Blink = CursorUnderline, false
	case 5:
		b.cursor.Shape, b.cursor.Blink = CursorBar, true
	case 6:
		b.cursor.Shape, b.cursor.Blink = CursorBar, false
	}
}

func (g *Grid) clearTabStops(mode int) {
	switch mode {
	case 0:
		delete(g.tabStops, g.active().cursor.Col)
	case 3:
		g.tabStops = make(map[int]bool)
	}
}

// HorizontalTabSet implements HTS: mark the cursor's column as a tab stop.
func (g *Grid) HorizontalTabSet() {
	g.tabStops[g.active().cursor.Col] = true
}

// SaveCursor implements DECSC.
func (g *Grid) SaveCursor() {
	b := g.active()
	b.saved = &SavedCursor{
		Row: b.cursor.Row, Col: b.cursor.Col,
		Style: b.cursor.Style, OriginMode: g.modes.OriginMode,
		PendingWrap: g.pendingWrap, Charset: g.charsets, ShiftedOut: g.gl == 1,
	}
}

// RestoreCursor implements DECRC. Restoring without a prior save resets to
// the home position with default style, matching common terminal behavior.
func (g *Grid) RestoreCursor() {
	b := g.active()
	if b.saved == nil {
		b.cursor.Row, b.cursor.Col = 0, 0
		b.cursor.Style = DefaultStyle
		g.pendingWrap = false
		return
	}
	s := b.saved
	b.cursor.Row, b.cursor.Col = s.Row, s.Col
	b.cursor.Style = s.Style
	g.modes.OriginMode = s.OriginMode
	g.pendingWrap = s.PendingWrap
	g.charsets = s.Charset
	if s.ShiftedOut {
		g.gl = 1
	} else {
		g.gl = 0
	}
}

func (g *Grid) deviceStatusReport(n int) {
	if g.OnDeviceReport == nil {
		return
	}
	switch n {
	case 5:
		g.OnDeviceReport([]byte("\x1b[0n"))
	case 6:
		b := g.active()
		row, col := b.cursor.Row+1, b.cursor.Col+1
		if g.modes.OriginMode {
			row -= b.scrollTop
		}
		g.OnDeviceReport([]byte(csiResponse(row, col)))
	}
}

func csiResponse(row, col int) string {
	return "\x1b[" + itoa(row) + ";" + itoa(col) + "R"
}

func (g *Grid) reportDeviceAttributes() {
	if g.OnDeviceReport == nil {
		return
	}
	// VT220 claiming selective erase (6) and ANSI color (22), a conservative
	// but non-empty supported-set claim.
	g.OnDeviceReport([]byte("\x1b[?62;6;22c"))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
