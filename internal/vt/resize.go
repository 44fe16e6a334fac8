package vt

// Resize implements spec §4.1's reflow algorithm: collect logical lines
// from scrollback + viewport, rewrap each at the new width using the same
// wrap rule Print uses, then redistribute into scrollback and viewport
// with the cursor anchored to its logical line and column. Applied to
// both buffers so an inactive alt-screen stays dimensionally consistent;
// only the primary buffer's scrollback participates in reflow since the
// alternate buffer never accumulates any.
func (g *Grid) Resize(newHeight, newWidth int) {
	if newHeight <= 0 || newWidth <= 0 {
		return
	}
	if newHeight == g.height && newWidth == g.width {
		return
	}

	g.primary.reflow(g.height, g.width, newHeight, newWidth, true)
	g.alternate.reflow(g.height, g.width, newHeight, newWidth, false)

	g.height, g.width = newHeight, newWidth
	g.tabStops = resizeTabStops(g.tabStops, newWidth)
	g.markAllDirty()
}

// reflow rewraps one buffer's content to the new dimensions in place.
func (b *buffer) reflow(oldHeight, oldWidth, newHeight, newWidth int, keepScrollback bool) {
	allRows := make([]Row, 0, len(b.scrollback)+oldHeight)
	allRows = append(allRows, b.scrollback...)
	allRows = append(allRows, b.rows...)

	cursorAbsRow := len(b.scrollback) + b.cursor.Row
	cursorOffset := logicalOffset(allRows, cursorAbsRow, b.cursor.Col)

	lines := collectLogicalLines(allRows)

	newRows, newCursorLine, newCursorCellIdx := rewrapLines(lines, newWidth, cursorAbsRow, cursorOffset, allRows)

	// Split back into scrollback (everything but the last newHeight rows)
	// and viewport (the last newHeight rows, padding with blanks if the
	// content is shorter than the viewport).
	bg := b.cursor.Style.Bg
	var scrollback, viewport []Row
	if len(newRows) > newHeight {
		scrollback = newRows[:len(newRows)-newHeight]
		viewport = newRows[len(newRows)-newHeight:]
	} else {
		viewport = newRows
	}
	for len(viewport) < newHeight {
		viewport = append(viewport, NewRow(newWidth, bg))
	}

	if keepScrollback {
		b.scrollback = scrollback
	} else {
		b.scrollback = nil
	}
	b.rows = viewport

	// Re-anchor the cursor: newCursorLine tells us which row (within the
	// full scrollback+viewport sequence, before the scrollback/viewport
	// split above) holds the cursor's cell, and newCursorCellIdx which
	// column within that row.
	evicted := 0
	if keepScrollback && len(newRows) > newHeight {
		evicted = len(newRows) - newHeight
	}
	cursorRowInViewport := newCursorLine - evicted
	if cursorRowInViewport < 0 {
		cursorRowInViewport = 0
	}
	if cursorRowInViewport >= newHeight {
		cursorRowInViewport = newHeight - 1
	}
	b.cursor.Row = cursorRowInViewport
	b.cursor.Col = clamp(newCursorCellIdx, 0, newWidth-1)

	// The scroll region resets to the full new viewport on resize,
	// matching real terminals (a resized scroll region that no longer
	// makes sense would otherwise clip content). Tab stops are handled by
	// Resize, which drops those beyond the new width.
	b.scrollTop = 0
	b.scrollBottom = newHeight - 1
	if b.saved != nil {
		b.saved.Row = clamp(b.saved.Row, 0, newHeight-1)
		b.saved.Col = clamp(b.saved.Col, 0, newWidth-1)
	}
}

// logicalOffset computes the 1-based flattened position of (row, col)
// within its logical line: the count of non-spacer cells at or before col
// in row, plus the non-spacer cell counts of every row that precedes row
// within the same logical line (i.e. back to the nearest canonical row).
func logicalOffset(rows []Row, row, col int) int {
	if row < 0 || row >= len(rows) {
		return 0
	}
	offset := cellsUpTo(rows[row], col)
	for r := row - 1; r >= 0 && !rows[r+1].IsCanonical; r-- {
		offset += countNonSpacer(rows[r])
	}
	return offset
}

func cellsUpTo(row Row, col int) int {
	if col >= len(row.Cells) {
		col = len(row.Cells) - 1
	}
	if col < 0 {
		return 0
	}
	if row.Cells[col].IsWideSpacer() && col > 0 {
		col--
	}
	count := 0
	for i := 0; i <= col && i < len(row.Cells); i++ {
		if !row.Cells[i].IsWideSpacer() {
			count++
		}
	}
	return count
}

func countNonSpacer(row Row) int {
	n := 0
	for _, c := range row.Cells {
		if !c.IsWideSpacer() {
			n++
		}
	}
	return n
}

// logicalLine is a flattened run of non-spacer cells spanning one or more
// physical rows (a canonical row plus its wrapped continuations).
type logicalLine struct {
	cells []Cell
	bg    Color
}

// collectLogicalLines groups rows into logical lines: each canonical row
// starts a new line; following non-canonical rows are continuations
// appended to the same line, trimmed of trailing padding only on the
// line's final physical row.
func collectLogicalLines(rows []Row) []logicalLine {
	var lines []logicalLine
	for i := 0; i < len(rows); i++ {
		row := rows[i]
		// An orphaned continuation (its canonical head evicted from
		// scrollback) still needs a line to land in: i==0 always starts one.
		if i == 0 || row.IsCanonical {
			lines = append(lines, logicalLine{bg: rowBg(row)})
		}
		last := &lines[len(lines)-1]

		isLastRowOfLine := i == len(rows)-1 || rows[i+1].IsCanonical
		width := len(row.Cells)
		if isLastRowOfLine {
			width = row.trimmedWidth()
		}
		for c := 0; c < width; c++ {
			cell := row.Cells[c]
			if cell.IsWideSpacer() {
				continue
			}
			last.cells = append(last.cells, cell)
		}
	}
	return lines
}

func rowBg(row Row) Color {
	if len(row.Cells) == 0 {
		return DefaultColor
	}
	return row.Cells[len(row.Cells)-1].Style.Bg
}

// rewrapLines rewraps every logical line at newWidth using the same
// width-2-at-boundary rule Print uses, and locates where the cursor's
// absolute flattened offset landed in the new layout.
func rewrapLines(lines []logicalLine, newWidth int, cursorAbsRow, cursorOffset int, origRows []Row) ([]Row, int, int) {
	var out []Row
	lineIdx := lineIndexOf(origRows, cursorAbsRow)

	newCursorLine, newCursorCol := len(out), 0
	found := false

	for li, line := range lines {
		rowsForLine := wrapLine(line, newWidth)
		if li == lineIdx {
			target := cursorOffset
			consumed := 0
			for ri, r := range rowsForLine {
				n := countNonSpacer(r)
				if target <= consumed+n || ri == len(rowsForLine)-1 {
					newCursorLine = len(out) + ri
					newCursorCol = columnForCellIndex(r, target-consumed-1)
					found = true
					break
				}
				consumed += n
			}
		}
		out = append(out, rowsForLine...)
	}
	if !found {
		newCursorLine = len(out) - 1
		if newCursorLine < 0 {
			newCursorLine = 0
		}
	}
	if len(out) == 0 {
		out = append(out, NewRow(newWidth, DefaultColor))
	}
	return out, newCursorLine, newCursorCol
}

// lineIndexOf maps an absolute row index back to its logical line index
// by counting canonical-row boundaries up to that row.
func lineIndexOf(rows []Row, absRow int) int {
	if absRow < 0 {
		return 0
	}
	idx := -1
	for i := 0; i <= absRow && i < len(rows); i++ {
		if i == 0 || rows[i].IsCanonical {
			idx++
		}
	}
	if idx < 0 {
		return 0
	}
	return idx
}

// columnForCellIndex returns the column at which the n-th non-spacer cell
// (0-indexed) in row begins, accounting for width-2 cells occupying two
// columns.
func columnForCellIndex(row Row, n int) int {
	if n < 0 {
		n = 0
	}
	count := 0
	for i, c := range row.Cells {
		if c.IsWideSpacer() {
			continue
		}
		if count == n {
			return i
		}
		count++
	}
	if len(row.Cells) == 0 {
		return 0
	}
	return len(row.Cells) - 1
}

// wrapLine rewraps one logical line's flattened cells into rows of
// newWidth, applying the same width-2-at-last-column rule as Print
// (emit-space-and-wrap).
func wrapLine(line logicalLine, newWidth int) []Row {
	if len(line.cells) == 0 {
		r := NewRow(newWidth, line.bg)
		return []Row{r}
	}
	var rows []Row
	cur := NewRow(newWidth, line.bg)
	col := 0
	flush := func(canonical bool) {
		cur.IsCanonical = canonical
		rows = append(rows, cur)
		cur = NewRow(newWidth, line.bg)
		col = 0
	}
	for i, cell := range line.cells {
		w := cell.Width
		if w == 0 {
			w = 1
		}
		if w == 2 && col == newWidth-1 {
			cur.Cells[col] = BlankCell(line.bg)
			flush(false)
		}
		if col+w > newWidth {
			flush(false)
		}
		cur.Cells[col] = cell
		if w == 2 {
			if col+1 < newWidth {
				cur.Cells[col+1] = WideSpacer(cell)
			}
			col += 2
		} else {
			col++
		}
		if i == len(line.cells)-1 {
			flush(false)
		}
	}
	if len(rows) > 0 {
		rows[0].IsCanonical = true
	}
	return rows
}

func resizeTabStops(old map[int]bool, newWidth int) map[int]bool {
	stops := make(map[int]bool)
	for c := range old {
		if c < newWidth {
			stops[c] = true
		}
	}
	if len(stops) == 0 {
		return defaultTabStops(newWidth)
	}
	return stops
}
