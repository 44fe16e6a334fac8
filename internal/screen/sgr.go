package screen

import (
	"fmt"
	"strings"

	"weave/internal/vt"
)

// renderSGR builds the ANSI SGR escape sequence for style, always starting
// from a reset so regions never bleed into one another — the same fix the
// teacher's RenderLineFrom applies on top of midterm's region renderer,
// done here from scratch since Style has no renderer of its own.
func renderSGR(s vt.Style) string {
	var codes []string
	if s.Flags&vt.FlagBold != 0 {
		codes = append(codes, "1")
	}
	if s.Flags&vt.FlagDim != 0 {
		codes = append(codes, "2")
	}
	if s.Flags&vt.FlagItalic != 0 {
		codes = append(codes, "3")
	}
	switch s.Underline {
	case vt.UnderlineSingle:
		codes = append(codes, "4")
	case vt.UnderlineDouble:
		codes = append(codes, "4:2")
	case vt.UnderlineCurly:
		codes = append(codes, "4:3")
	case vt.UnderlineDotted:
		codes = append(codes, "4:4")
	case vt.UnderlineDashed:
		codes = append(codes, "4:5")
	}
	if s.Flags&vt.FlagBlink != 0 {
		codes = append(codes, "5")
	}
	if s.Flags&vt.FlagReverse != 0 {
		codes = append(codes, "7")
	}
	if s.Flags&vt.FlagHidden != 0 {
		codes = append(codes, "8")
	}
	if s.Flags&vt.FlagStrikethrough != 0 {
		codes = append(codes, "9")
	}
	codes = append(codes, colorCodes(s.Fg, false)...)
	codes = append(codes, colorCodes(s.Bg, true)...)

	if len(codes) == 0 {
		return "\033[0m"
	}
	return "\033[0;" + strings.Join(codes, ";") + "m"
}

func colorCodes(c vt.Color, background bool) []string {
	base := 38
	if background {
		base = 48
	}
	switch c.Kind {
	case vt.ColorRGB:
		return []string{fmt.Sprintf("%d;2;%d;%d;%d", base, c.R, c.G, c.B)}
	case vt.ColorIndexed:
		if c.Index < 8 {
			code := 30 + int(c.Index)
			if background {
				code += 10
			}
			return []string{fmt.Sprintf("%d", code)}
		}
		if c.Index < 16 {
			code := 90 + int(c.Index-8)
			if background {
				code += 10
			}
			return []string{fmt.Sprintf("%d", code)}
		}
		return []string{fmt.Sprintf("%d;5;%d", base, c.Index)}
	default:
		return nil
	}
}
