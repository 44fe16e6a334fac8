package vt

// dispatchSGR applies a Select Graphic Rendition sequence to the brush,
// which persists across prints until the next SGR touches it (spec §4.1:
// "changes persist until explicitly reset"). A bare SGR (no parameters) is
// equivalent to SGR 0.
func (g *Grid) dispatchSGR(params Params) {
	b := g.active()
	style := &b.cursor.Style
	if params.Count() == 0 {
		*style = DefaultStyle
		return
	}
	for i := 0; i < params.Count(); i++ {
		code := params.GetRaw(i, 0)
		switch {
		case code == 0:
			*style = DefaultStyle
		case code == 1:
			style.Flags |= FlagBold
		case code == 2:
			style.Flags |= FlagDim
		case code == 3:
			style.Flags |= FlagItalic
		case code == 4:
			style.Underline = underlineVariant(params, i)
		case code == 5 || code == 6:
			style.Flags |= FlagBlink
		case code == 7:
			style.Flags |= FlagReverse
		case code == 8:
			style.Flags |= FlagHidden
		case code == 9:
			style.Flags |= FlagStrikethrough
		case code == 21:
			style.Underline = UnderlineDouble
		case code == 22:
			style.Flags &^= FlagBold | FlagDim
		case code == 23:
			style.Flags &^= FlagItalic
		case code == 24:
			style.Underline = UnderlineNone
		case code == 25:
			style.Flags &^= FlagBlink
		case code == 27:
			style.Flags &^= FlagReverse
		case code == 28:
			style.Flags &^= FlagHidden
		case code == 29:
			style.Flags &^= FlagStrikethrough
		case code >= 30 && code <= 37:
			style.Fg = Indexed(uint8(code - 30))
		case code == 38:
			color, consumed := extendedColor(params, i)
			style.Fg = color
			i += consumed
		case code == 39:
			style.Fg = DefaultColor
		case code >= 40 && code <= 47:
			style.Bg = Indexed(uint8(code - 40))
		case code == 48:
			color, consumed := extendedColor(params, i)
			style.Bg = color
			i += consumed
		case code == 49:
			style.Bg = DefaultColor
		case code == 58:
			color, consumed := extendedColor(params, i)
			style.UnderlineColor = color
			i += consumed
		case code == 59:
			style.UnderlineColor = DefaultColor
		case code >= 90 && code <= 97:
			style.Fg = Indexed(uint8(code - 90 + 8))
		case code >= 100 && code <= 107:
			style.Bg = Indexed(uint8(code - 100 + 8))
		}
	}
}

// underlineVariant resolves CSI 4 and its colon-subparameter extended
// forms (4:0 none, 4:1 single, 4:2 double, 4:3 curly, 4:4 dotted, 4:5 dashed).
func underlineVariant(params Params, i int) Underline {
	if sub := params.Sub(i, 1, -1); sub >= 0 {
		switch sub {
		case 0:
			return UnderlineNone
		case 2:
			return UnderlineDouble
		case 3:
			return UnderlineCurly
		case 4:
			return UnderlineDotted
		case 5:
			return UnderlineDashed
		default:
			return UnderlineSingle
		}
	}
	return UnderlineSingle
}

// extendedColor resolves the 256-color and truecolor forms of SGR 38/48/58,
// in both the semicolon-separated classic form (38;5;n or 38;2;r;g;b) and
// the colon-subparameter form (38:5:n or 38:2::r:g:b, where ITU T.416
// reserves a colorspace-id subparameter slot that most emitters leave
// empty). Returns the color and how many additional top-level parameters
// were consumed in the classic form (0 for the colon form, since those are
// all packed into one parameter's subparameters).
func extendedColor(params Params, i int) (Color, int) {
	if len(params.Values[i]) > 1 {
		sub := params.Values[i]
		switch sub[1] {
		case 5:
			if len(sub) >= 3 {
				return Indexed(uint8(sub[2])), 0
			}
		case 2:
			// sub may be [38,2,r,g,b] or [38,2,<cs>,r,g,b]; take the last
			// three as r,g,b.
			if len(sub) >= 5 {
				n := len(sub)
				return RGB(uint8(sub[n-3]), uint8(sub[n-2]), uint8(sub[n-1])), 0
			}
		}
		return DefaultColor, 0
	}

	mode := params.Get(i+1, -1)
	switch mode {
	case 5:
		idx := params.Get(i+2, 0)
		return Indexed(uint8(idx)), 2
	case 2:
		r := params.Get(i+2, 0)
		g := params.Get(i+3, 0)
		b := params.Get(i+4, 0)
		return RGB(uint8(r), uint8(g), uint8(b)), 4
	}
	return DefaultColor, 0
}
