package vt

// Row is an ordered sequence of Cells. IsCanonical distinguishes a
// logically new line from the wrapped continuation of a longer line:
// resize reflow stitches a canonical row together with its following
// non-canonical continuations to reconstruct the original logical line
// before rewrapping at the new width.
type Row struct {
	Cells       []Cell
	IsCanonical bool
}

// NewRow allocates a blank row of the given width filled with bg.
func NewRow(width int, bg Color) Row {
	cells := make([]Cell, width)
	blank := BlankCell(bg)
	for i := range cells {
		cells[i] = blank
	}
	return Row{Cells: cells, IsCanonical: true}
}

// Clone returns a deep copy (cells are value types, so a slice copy
// suffices; this exists to make the "value copy" intent explicit at call
// sites that move rows between viewport and scrollback).
func (r Row) Clone() Row {
	cells := make([]Cell, len(r.Cells))
	copy(cells, r.Cells)
	return Row{Cells: cells, IsCanonical: r.IsCanonical}
}

// resize returns a copy of the row grown or shrunk to width columns,
// padding with bg-colored blanks or truncating. Nothing in the package
// calls it: viewport resize rewraps logical lines instead (see resize.go).
func (r Row) resize(width int, bg Color) Row {
	if len(r.Cells) == width {
		return r
	}
	cells := make([]Cell, width)
	blank := BlankCell(bg)
	for i := range cells {
		if i < len(r.Cells) {
			cells[i] = r.Cells[i]
		} else {
			cells[i] = blank
		}
	}
	return Row{Cells: cells, IsCanonical: r.IsCanonical}
}

// trimmedWidth returns the column count excluding trailing blank cells,
// used when collecting logical lines for reflow so trailing padding isn't
// treated as significant content.
func (r Row) trimmedWidth() int {
	n := len(r.Cells)
	for n > 0 {
		c := r.Cells[n-1]
		if c.IsWideSpacer() || c.Grapheme != " " || c.Style.Bg.Kind != ColorDefault || c.Hyperlink != "" {
			break
		}
		n--
	}
	return n
}

// lastNonSpacerIndex returns the index of the last cell that isn't a
// width-2 sentinel spacer, or -1 if the row is all spacers (never happens
// in practice since spacers always follow a lead cell).
func (r Row) lastNonSpacerIndex() int {
	for i := len(r.Cells) - 1; i >= 0; i-- {
		if !r.Cells[i].IsWideSpacer() {
			return i
		}
	}
	return -1
}
