package vt

// CursorShape is the DECSCUSR-selectable cursor rendering shape.
type CursorShape uint8

const (
	CursorBlock CursorShape = iota
	CursorUnderline
	CursorBar
)

// Cursor is the Grid's cursor position, brush, and presentation state.
type Cursor struct {
	Row, Col int
	Style    Style
	Visible  bool
	Shape    CursorShape
	Blink    bool
}

// SavedCursor is the DECSC snapshot restored by DECRC.
type SavedCursor struct {
	Row, Col    int
	Style       Style
	OriginMode  bool
	PendingWrap bool
	Charset     [4]Charset
	ShiftedOut  bool
}

// Charset selects which glyph table a G-set maps to. Only the two the
// spec's "legacy line-drawing" requirement names are distinguished; any
// other designation is accepted and treated as ASCII.
type Charset uint8

const (
	CharsetASCII Charset = iota
	CharsetDECSpecialGraphics
)

// MouseMode is the negotiated mouse-tracking protocol level (modes
// 1000/1002/1003); MouseOff means no tracking is active.
type MouseMode uint8

const (
	MouseOff MouseMode = iota
	MouseX10
	MouseButtonEvent // 1002
	MouseAnyEvent    // 1003
)

// Modes holds the boolean/enum terminal modes a DECSET/DECRST or SM/RM
// sequence can toggle.
type Modes struct {
	CursorKeys        bool // DECCKM
	OriginMode        bool // DECOM
	AutoWrap          bool // DECAWM, default true
	Insert            bool // IRM
	Mouse             MouseMode
	MouseSGR          bool // mode 1006
	BracketedPaste    bool // mode 2004
	FocusReporting    bool // mode 1004
	ApplicationKeypad bool
}

// Selection is the Grid's text-selection anchor pair.
type Selection struct {
	StartRow, StartCol int
	EndRow, EndCol     int
	Active             bool
	// ScrollbackAnchored marks that StartRow/EndRow index into the
	// combined scrollback+viewport space rather than viewport-only.
	ScrollbackAnchored bool
}

// buffer is one of the Grid's two screens (primary or alternate). Only the
// primary buffer retains scrollback, matching spec §3's "scrollback is not
// retained on alt screen" invariant.
type buffer struct {
	rows          []Row
	scrollback    []Row
	scrollbackCap int
	cursor        Cursor
	saved         *SavedCursor
	scrollTop     int
	scrollBottom  int
}

// Grid is a pane's VT state machine target: a two-dimensional addressable
// surface with a viewport, scrollback, cursor, alt-screen, selection, and
// terminal modes. It implements no parsing itself — parser.go drives it by
// calling its print/action methods — so it can be exercised directly in
// tests without going through the byte-level state machine.
type Grid struct {
	width, height int

	primary   *buffer
	alternate *buffer
	alt       bool // true while the alternate buffer is active

	tabStops map[int]bool
	charsets [4]Charset
	gl       int // index (0-3) of the currently invoked G-set (GL)
	gr       int

	pendingWrap bool
	brush       Style

	selection Selection
	modes     Modes

	dirty map[int]bool

	title            string
	currentHyperlink string

	// ClipboardAllowed gates OSC 52 writes; nil means always allowed.
	ClipboardAllowed func(direction string) bool
	// OnClipboardWrite receives OSC 52 payloads accepted by ClipboardAllowed.
	OnClipboardWrite func(selection string, data []byte)
	// OnTitleChange receives OSC 0/1/2 title updates.
	OnTitleChange func(title string)
	// OnColorQuery answers OSC 10/11 foreground/background color queries;
	// the Grid delivers the response bytes through OnDeviceReport.
	OnColorQuery func(which int) (Color, bool)
	// OnDeviceReport receives DSR/DA response bytes to write back to the PTY.
	OnDeviceReport func(response []byte)
}

const defaultScrollbackCap = 10000

// NewGrid creates a Grid of the given viewport size with default modes
// (DECAWM on, all others off) and a full tab-stop set every 8 columns.
func NewGrid(height, width int) *Grid {
	g := &Grid{
		width:  width,
		height: height,
		primary: &buffer{
			rows:          makeRows(height, width, DefaultColor),
			scrollbackCap: defaultScrollbackCap,
			scrollTop:     0,
			scrollBottom:  height - 1,
			cursor:        Cursor{Visible: true},
		},
		alternate: &buffer{
			rows:         makeRows(height, width, DefaultColor),
			scrollTop:    0,
			scrollBottom: height - 1,
			cursor:       Cursor{Visible: true},
		},
		tabStops: defaultTabStops(width),
		brush:    DefaultStyle,
		modes:    Modes{AutoWrap: true},
		dirty:    make(map[int]bool, height),
	}
	return g
}

func makeRows(height, width int, bg Color) []Row {
	rows := make([]Row, height)
	for i := range rows {
		rows[i] = NewRow(width, bg)
	}
	return rows
}

func defaultTabStops(width int) map[int]bool {
	stops := make(map[int]bool)
	for c := 8; c < width; c += 8 {
		stops[c] = true
	}
	return stops
}

// active returns the currently displayed buffer (primary or alternate).
func (g *Grid) active() *buffer {
	if g.alt {
		return g.alternate
	}
	return g.primary
}

// Width and Height report the viewport size.
func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// SetScrollbackCap changes the primary buffer's scrollback eviction cap,
// trimming immediately if the new cap is smaller than the current backlog.
func (g *Grid) SetScrollbackCap(n int) {
	g.primary.scrollbackCap = n
	g.trimScrollback()
}

func (g *Grid) trimScrollback() {
	b := g.primary
	if b.scrollbackCap <= 0 {
		b.scrollback = nil
		return
	}
	if excess := len(b.scrollback) - b.scrollbackCap; excess > 0 {
		b.scrollback = b.scrollback[excess:]
	}
}

// Cursor returns the cursor state of the active buffer.
func (g *Grid) Cursor() Cursor { return g.active().cursor }

// PendingWrap reports whether the cursor carries the one-column wrap debt.
func (g *Grid) PendingWrap() bool { return g.pendingWrap }

// InAltScreen reports whether the alternate buffer is active.
func (g *Grid) InAltScreen() bool { return g.alt }

// Modes returns the current terminal modes.
func (g *Grid) Modes() Modes { return g.modes }

// Title returns the last OSC-0/1/2-set title.
func (g *Grid) Title() string { return g.title }

// Selection returns the current selection anchors.
func (g *Grid) Selection() Selection { return g.selection }

// Cell returns the cell at viewport row/col of the active buffer. Out-of-
// range coordinates return a blank cell rather than panicking, matching
// the "parser never panics" failure semantics.
func (g *Grid) Cell(row, col int) Cell {
	b := g.active()
	if row < 0 || row >= len(b.rows) || col < 0 || col >= g.width {
		return BlankCell(DefaultColor)
	}
	return b.rows[row].Cells[col]
}

// Row returns a copy of viewport row idx of the active buffer.
func (g *Grid) Row(idx int) Row {
	b := g.active()
	if idx < 0 || idx >= len(b.rows) {
		return NewRow(g.width, DefaultColor)
	}
	return b.rows[idx]
}

// ScrollbackLen returns the number of rows above the viewport (primary
// buffer only; the alternate buffer never accumulates scrollback).
func (g *Grid) ScrollbackLen() int { return len(g.primary.scrollback) }

// ScrollbackRow returns a copy of scrollback row idx (0 = oldest).
func (g *Grid) ScrollbackRow(idx int) Row {
	if idx < 0 || idx >= len(g.primary.scrollback) {
		return NewRow(g.width, DefaultColor)
	}
	return g.primary.scrollback[idx]
}

// DirtyRows returns the set of viewport row indices changed since the last
// ClearDirty call, for the Screen's per-client differential render.
func (g *Grid) DirtyRows() []int {
	rows := make([]int, 0, len(g.dirty))
	for r := range g.dirty {
		rows = append(rows, r)
	}
	return rows
}

// ClearDirty resets the dirty set; called by the Screen after a successful
// render per spec §4.2.
func (g *Grid) ClearDirty() { g.dirty = make(map[int]bool) }

func (g *Grid) markDirty(row int) {
	if row < 0 || row >= g.height {
		return
	}
	g.dirty[row] = true
}

func (g *Grid) markAllDirty() {
	for r := 0; r < g.height; r++ {
		g.dirty[r] = true
	}
}

func (g *Grid) setCell(row, col int, c Cell) {
	b := g.active()
	if row < 0 || row >= len(b.rows) || col < 0 || col >= g.width {
		return
	}
	b.rows[row].Cells[col] = c
	g.markDirty(row)
}

// scrollRegion returns the active buffer's scroll-region top/bottom rows,
// without any origin-mode adjustment.
func (g *Grid) scrollRegion() (top, bottom int) {
	b := g.active()
	return b.scrollTop, b.scrollBottom
}
