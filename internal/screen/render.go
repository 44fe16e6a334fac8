package screen

import (
	"bytes"
	"fmt"

	"weave/internal/layout"
	"weave/internal/pane"
)

const (
	borderFocusedStyle   = "\033[1;36m" // bold cyan
	borderUnfocusedStyle = "\033[2m"    // dim
	styleReset           = "\033[0m"
)

// Render draws every pane in tab (tiled, then floating in z-order so
// floating panes paint over tiled content beneath them) into a full-frame
// ANSI buffer for client, including borders, and clears each rendered
// pane's dirty set.
func Render(tab *Tab, c *Client) []byte {
	var buf bytes.Buffer
	rects := tab.Layout.Rects()
	focused := tab.Focused(c.ID)

	if fsID, ok := tab.Layout.IsFullscreen(); ok {
		if p, exists := tab.Pane(fsID); exists {
			fullscreenRect := layout.Rect{X: 0, Y: 0, W: c.Cols, H: c.Rows}
			drawPane(&buf, p, fullscreenRect, true)
			return buf.Bytes()
		}
	}

	for id, rect := range rects {
		p, ok := tab.Pane(id)
		if !ok {
			continue
		}
		drawPane(&buf, p, rect, id == focused)
	}
	for _, f := range tab.Layout.Floating() {
		p, ok := tab.Pane(f.PaneID)
		if !ok {
			continue
		}
		drawPane(&buf, p, f.Rect, f.PaneID == focused)
	}
	return buf.Bytes()
}

// RenderDirty re-draws only the rows each visible pane's Grid reports
// dirty since the last call, for the common case of a few panes producing
// steady output — the differential counterpart to Render's full repaint,
// used on every PTY output batch rather than on a timer.
func RenderDirty(tab *Tab, c *Client) []byte {
	var buf bytes.Buffer
	rects := tab.Layout.Rects()
	focused := tab.Focused(c.ID)

	for id, rect := range rects {
		p, ok := tab.Pane(id)
		if !ok {
			continue
		}
		drawPaneDirty(&buf, p, rect, id == focused)
	}
	for _, f := range tab.Layout.Floating() {
		p, ok := tab.Pane(f.PaneID)
		if !ok {
			continue
		}
		drawPaneDirty(&buf, p, f.Rect, f.PaneID == focused)
	}
	return buf.Bytes()
}

// drawPane paints a border box around rect and the pane's full grid
// content inside it.
func drawPane(buf *bytes.Buffer, p *pane.Pane, rect layout.Rect, focused bool) {
	drawBorder(buf, rect, focused)
	interior := insetRect(rect)
	for r := 0; r < p.Grid.Height() && r < interior.H; r++ {
		writeRow(buf, p, r, interior.X, interior.Y+r, interior.W)
	}
	p.Grid.ClearDirty()
}

// drawPaneDirty paints the border only the first time a pane is seen
// dirty-free would be wasteful to check here, so it always redraws the
// border (cheap) but the content only for Grid.DirtyRows().
func drawPaneDirty(buf *bytes.Buffer, p *pane.Pane, rect layout.Rect, focused bool) {
	drawBorder(buf, rect, focused)
	interior := insetRect(rect)
	for _, r := range p.Grid.DirtyRows() {
		if r < 0 || r >= interior.H {
			continue
		}
		writeRow(buf, p, r, interior.X, interior.Y+r, interior.W)
	}
	p.Grid.ClearDirty()
}

func insetRect(r layout.Rect) layout.Rect {
	if r.W < 2 || r.H < 2 {
		return r
	}
	return layout.Rect{X: r.X + 1, Y: r.Y + 1, W: r.W - 2, H: r.H - 2}
}

func move(buf *bytes.Buffer, row, col int) {
	fmt.Fprintf(buf, "\033[%d;%dH", row+1, col+1)
}

func drawBorder(buf *bytes.Buffer, rect layout.Rect, focused bool) {
	if rect.W < 2 || rect.H < 2 {
		return
	}
	style := borderUnfocusedStyle
	if focused {
		style = borderFocusedStyle
	}
	buf.WriteString(style)

	move(buf, rect.Y, rect.X)
	buf.WriteString("┌")
	for i := 0; i < rect.W-2; i++ {
		buf.WriteString("─")
	}
	buf.WriteString("┐")

	for r := rect.Y + 1; r < rect.Y+rect.H-1; r++ {
		move(buf, r, rect.X)
		buf.WriteString("│")
		move(buf, r, rect.X+rect.W-1)
		buf.WriteString("│")
	}

	move(buf, rect.Y+rect.H-1, rect.X)
	buf.WriteString("└")
	for i := 0; i < rect.W-2; i++ {
		buf.WriteString("─")
	}
	buf.WriteString("┘")

	buf.WriteString(styleReset)
}

// writeRow renders pane Grid row gridRow into the client stream starting
// at absolute screen position (screenCol, screenRow), grouping contiguous
// same-style cells into one SGR sequence the way the teacher's
// RenderLineFrom groups midterm format regions, instead of re-emitting SGR
// per cell.
func writeRow(buf *bytes.Buffer, p *pane.Pane, gridRow, screenCol, screenRow, maxWidth int) {
	move(buf, screenRow, screenCol)
	width := p.Grid.Width()
	if width > maxWidth {
		width = maxWidth
	}
	var lastSGR string
	for col := 0; col < width; col++ {
		cell := p.Grid.Cell(gridRow, col)
		if cell.IsWideSpacer() {
			continue
		}
		sgr := renderSGR(cell.Style)
		if sgr != lastSGR {
			buf.WriteString(sgr)
			lastSGR = sgr
		}
		if cell.Grapheme == "" {
			buf.WriteString(" ")
		} else {
			buf.WriteString(cell.Grapheme)
		}
	}
	buf.WriteString(styleReset)
}
