package vt

// setMode handles ANSI SM/RM (non-DEC-private) mode numbers. The only
// standard one this module recognizes is IRM (insert mode, 4); others are
// accepted and ignored per the "unknown sequences are discarded without
// corrupting grid state" failure semantics.
func (g *Grid) setMode(params Params, enable bool) {
	for i := 0; i < params.Count(); i++ {
		switch params.Get(i, 0) {
		case 4:
			g.modes.Insert = enable
		}
	}
}

// setPrivateMode handles DECSET/DECRST (CSI ? ... h/l).
func (g *Grid) setPrivateMode(params Params, enable bool) {
	for i := 0; i < params.Count(); i++ {
		switch params.Get(i, 0) {
		case 1:
			g.modes.CursorKeys = enable
		case 6:
			g.modes.OriginMode = enable
			g.moveCursorAbsolute(0, 0)
		case 7:
			g.modes.AutoWrap = enable
		case 25:
			g.active().cursor.Visible = enable
		case 47, 1047:
			g.setAltScreen(enable, false)
		case 1049:
			g.setAltScreen(enable, true)
		case 1000:
			if enable {
				g.modes.Mouse = MouseX10
			} else if g.modes.Mouse == MouseX10 {
				g.modes.Mouse = MouseOff
			}
		case 1002:
			if enable {
				g.modes.Mouse = MouseButtonEvent
			} else if g.modes.Mouse == MouseButtonEvent {
				g.modes.Mouse = MouseOff
			}
		case 1003:
			if enable {
				g.modes.Mouse = MouseAnyEvent
			} else if g.modes.Mouse == MouseAnyEvent {
				g.modes.Mouse = MouseOff
			}
		case 1006:
			g.modes.MouseSGR = enable
		case 2004:
			g.modes.BracketedPaste = enable
		case 1004:
			g.modes.FocusReporting = enable
		case 66:
			g.modes.ApplicationKeypad = enable
		}
	}
}

// setAltScreen implements modes 47/1047/1049: swap the active buffer. Mode
// 1049 additionally saves/restores the cursor and clears the alternate
// screen on entry, matching xterm's "save cursor as in DECSC, switch to
// alternate buffer... clear it" behavior; 47/1047 swap without clearing or
// cursor save.
func (g *Grid) setAltScreen(enable, withCursorSaveAndClear bool) {
	if enable == g.alt {
		return
	}
	if enable {
		if withCursorSaveAndClear {
			g.SaveCursor()
		}
		g.alt = true
		if withCursorSaveAndClear {
			g.clearAltScreen()
		}
	} else {
		g.alt = false
		if withCursorSaveAndClear {
			g.RestoreCursor()
		}
	}
	g.markAllDirty()
}

func (g *Grid) clearAltScreen() {
	bg := g.alternate.cursor.Style.Bg
	for r := range g.alternate.rows {
		g.alternate.rows[r] = NewRow(g.width, bg)
	}
}
