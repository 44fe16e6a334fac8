// Package router decodes a client's raw input byte stream into typed key,
// mouse, and paste events, tracks the input-mode state machine (passthrough
// vs. the transient prefix/scroll/resize modes), and resolves each decoded
// key to either a forwarded byte sequence (passthrough to the focused pane)
// or a dispatched Action (multiplexer command).
package router

import "fmt"

// Mode is the router's current input-interpretation mode.
type Mode int

const (
	// ModePassthrough forwards all bytes to the focused pane except the
	// configured prefix key, which transitions to ModePrefix for one key.
	ModePassthrough Mode = iota
	// ModePrefix consumes exactly one more key as a command, then returns
	// to ModePassthrough regardless of whether that key resolved to an
	// action.
	ModePrefix
	// ModeScroll routes keys to scrollback navigation until Escape/'q'.
	ModeScroll
	// ModeResize routes keys to interactive pane resizing until Escape.
	ModeResize
)

func (m Mode) String() string {
	switch m {
	case ModePassthrough:
		return "passthrough"
	case ModePrefix:
		return "prefix"
	case ModeScroll:
		return "scroll"
	case ModeResize:
		return "resize"
	default:
		return "unknown"
	}
}

// SpecialKey enumerates non-rune keys the decoder recognizes.
type SpecialKey int

const (
	KeyNone SpecialKey = iota
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyTab
	KeyEnter
	KeyBackspace
	KeyEscape
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
)

// KeyEvent is one decoded keystroke.
type KeyEvent struct {
	Rune    rune // set when Special == KeyNone and this isn't a control key
	Special SpecialKey
	Ctrl    bool
	Alt     bool
	Raw     []byte // the exact bytes that produced this event, for passthrough
}

// String renders a canonical keybinding-table lookup string, e.g. "C-b",
// "M-Left", "q".
func (k KeyEvent) String() string {
	name := specialName(k.Special)
	if name == "" {
		if k.Rune == 0 {
			return ""
		}
		name = string(k.Rune)
	}
	if k.Alt {
		name = "M-" + name
	}
	if k.Ctrl {
		name = "C-" + name
	}
	return name
}

func specialName(s SpecialKey) string {
	switch s {
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	case KeyHome:
		return "Home"
	case KeyEnd:
		return "End"
	case KeyPageUp:
		return "PageUp"
	case KeyPageDown:
		return "PageDown"
	case KeyInsert:
		return "Insert"
	case KeyDelete:
		return "Delete"
	case KeyTab:
		return "Tab"
	case KeyEnter:
		return "Enter"
	case KeyBackspace:
		return "Backspace"
	case KeyEscape:
		return "Escape"
	case KeyF1, KeyF2, KeyF3, KeyF4, KeyF5, KeyF6, KeyF7, KeyF8, KeyF9, KeyF10, KeyF11, KeyF12:
		return fmt.Sprintf("F%d", int(s-KeyF1)+1)
	default:
		return ""
	}
}

// MouseEvent is a decoded SGR mouse report (CSI ? 1006 mode).
type MouseEvent struct {
	Button  int
	X, Y    int // 0-indexed screen cell
	Release bool
	Motion  bool
	WheelUp bool
	WheelDn bool
}

// PasteEvent carries the literal content of a bracketed paste.
type PasteEvent struct {
	Data []byte
}

// Event is the decoder's output: exactly one of Key, Mouse, or Paste is set.
type Event struct {
	Key   *KeyEvent
	Mouse *MouseEvent
	Paste *PasteEvent
}

// Action is a multiplexer command resolved from a keybinding table, handed
// to the daemon/bus layer for dispatch; the router itself has no knowledge
// of Screen/Layout and never executes an Action.
type Action int

const (
	ActionNone Action = iota
	ActionSplitHorizontal
	ActionSplitVertical
	ActionClosePane
	ActionNextTab
	ActionPrevTab
	ActionNewTab
	ActionFocusUp
	ActionFocusDown
	ActionFocusLeft
	ActionFocusRight
	ActionFullscreenToggle
	ActionSyncToggle
	ActionEnterScroll
	ActionExitScroll
	ActionEnterResize
	ActionExitResize
	ActionDetach
	ActionQuit
	// ActionSendPrefix re-sends the literal prefix key to the pane, the
	// escape hatch for "prefix, prefix" meaning "send a literal Ctrl+B".
	ActionSendPrefix
)
