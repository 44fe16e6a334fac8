// Package vt implements the per-pane VT/ANSI grid: a parser that consumes a
// byte stream from a PTY and a styled cell buffer with scrollback, cursor,
// selection, and resize-reflow semantics.
package vt

import "github.com/lucasb-eyer/go-colorful"

// Underline distinguishes the SGR underline variants.
type Underline uint8

const (
	UnderlineNone Underline = iota
	UnderlineSingle
	UnderlineDouble
	UnderlineCurly
	UnderlineDotted
	UnderlineDashed
)

// StyleFlags is a bitset of the boolean SGR attributes that aren't encoded
// as a small enum (underline variant and the colors live alongside it).
type StyleFlags uint16

const (
	FlagBold StyleFlags = 1 << iota
	FlagDim
	FlagItalic
	FlagBlink
	FlagReverse
	FlagHidden
	FlagStrikethrough
	// FlagWideSpacer marks the sentinel second cell of a width-2 grapheme.
	// It is never independently addressable by the parser.
	FlagWideSpacer
)

func (f StyleFlags) has(bit StyleFlags) bool { return f&bit != 0 }

// ColorKind distinguishes how a Color's value should be interpreted.
type ColorKind uint8

const (
	ColorDefault ColorKind = iota
	ColorIndexed           // 0-255, legacy 16 + 256-color palette
	ColorRGB               // truecolor
)

// Color is a brush color: either the terminal default, a palette index, or
// an RGB truecolor value. Zero value is ColorDefault.
type Color struct {
	Kind  ColorKind
	Index uint8 // valid when Kind == ColorIndexed
	R, G, B uint8 // valid when Kind == ColorRGB
}

// DefaultColor is the unset/"use terminal default" color.
var DefaultColor = Color{Kind: ColorDefault}

// Indexed builds a palette-indexed color (0-255).
func Indexed(i uint8) Color { return Color{Kind: ColorIndexed, Index: i} }

// RGB builds a truecolor color.
func RGB(r, g, b uint8) Color { return Color{Kind: ColorRGB, R: r, G: g, B: b} }

// Colorful converts to a go-colorful.Color for blending/downsampling; no
// renderer path in this module calls it. Indexed colors resolve through the
// standard 256-color table; ColorDefault resolves to black (callers should
// special-case ColorDefault before blending if "no color" matters).
func (c Color) Colorful() colorful.Color {
	switch c.Kind {
	case ColorRGB:
		return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	case ColorIndexed:
		r, g, b := palette256(c.Index)
		return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	default:
		return colorful.Color{}
	}
}

// Style is the persistent SGR "brush" applied to subsequently printed cells.
type Style struct {
	Fg, Bg, UnderlineColor Color
	Underline              Underline
	Flags                  StyleFlags
}

// DefaultStyle is the brush after SGR 0 (reset).
var DefaultStyle = Style{Fg: DefaultColor, Bg: DefaultColor, UnderlineColor: DefaultColor}

// Cell is the atomic unit of a Grid: a grapheme cluster plus its style.
// Cells are value types; copy and compare by value.
type Cell struct {
	Grapheme string // one or more code points forming one displayed character
	Width    int    // 0, 1, or 2 display columns
	Style    Style
	// Hyperlink is non-empty when an OSC 8 hyperlink covers this cell.
	Hyperlink string
}

// BlankCell is a single space in the current background, the value every
// "empty" addressable column holds once a brush has touched a row.
func BlankCell(bg Color) Cell {
	return Cell{Grapheme: " ", Width: 1, Style: Style{Fg: DefaultColor, Bg: bg, UnderlineColor: DefaultColor}}
}

// WideSpacer produces the sentinel second half of a width-2 cell. It is
// never independently addressable: printing logic always advances past it
// together with its leading half.
func WideSpacer(lead Cell) Cell {
	c := lead
	c.Grapheme = ""
	c.Width = 0
	c.Style.Flags |= FlagWideSpacer
	return c
}

// IsWideSpacer reports whether c is the sentinel tail of a width-2 cell.
func (c Cell) IsWideSpacer() bool { return c.Style.Flags.has(FlagWideSpacer) }

// IsEmpty reports whether c still holds the zero value (never written).
func (c Cell) IsEmpty() bool { return c.Grapheme == "" && c.Width == 0 && !c.IsWideSpacer() }
