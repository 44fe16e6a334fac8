package router

// keymap resolves a KeyEvent's canonical String() form to an Action for a
// given Mode. Only ModePrefix, ModeScroll, and ModeResize have bindings —
// ModePassthrough never resolves an Action directly; it only watches for
// the prefix key to transition into ModePrefix (see Router.Feed).
type keymap map[Mode]map[string]Action

// defaultKeymap mirrors conventional multiplexer prefix-key bindings: a
// leader key (Ctrl-b, matching screen/tmux muscle memory) followed by a
// single command key.
func defaultKeymap() keymap {
	return keymap{
		ModePrefix: {
			"%":     ActionSplitVertical,
			`"`:     ActionSplitHorizontal,
			"x":     ActionClosePane,
			"n":     ActionNextTab,
			"p":     ActionPrevTab,
			"c":     ActionNewTab,
			"Up":    ActionFocusUp,
			"Down":  ActionFocusDown,
			"Left":  ActionFocusLeft,
			"Right": ActionFocusRight,
			"z":     ActionFullscreenToggle,
			"s":     ActionSyncToggle,
			"[":     ActionEnterScroll,
			"r":     ActionEnterResize,
			"d":     ActionDetach,
			"C-b":   ActionSendPrefix,
			"Q":     ActionQuit,
		},
		ModeScroll: {
			"q":      ActionExitScroll,
			"Escape": ActionExitScroll,
			"C-c":    ActionExitScroll,
		},
		ModeResize: {
			"Escape": ActionExitResize,
			"Enter":  ActionExitResize,
			"q":      ActionExitResize,
		},
	}
}

// Resolve looks up the action bound to key in mode. ok is false when the
// key has no binding in that mode (the caller typically then treats the
// key as a scroll/resize navigation key handled outside the table, or — in
// ModePrefix — falls through to ActionSendPrefix-style "unbound, swallow
// it" behavior).
func (k keymap) Resolve(mode Mode, key string) (Action, bool) {
	table, ok := k[mode]
	if !ok {
		return ActionNone, false
	}
	a, ok := table[key]
	return a, ok
}

// actionNames maps a configuration-facing action name to its Action
// constant, for resolving a user-supplied keybinding table (internal/config)
// without exposing the keymap type itself.
var actionNames = map[string]Action{
	"split_horizontal":  ActionSplitHorizontal,
	"split_vertical":    ActionSplitVertical,
	"close_pane":        ActionClosePane,
	"next_tab":          ActionNextTab,
	"prev_tab":          ActionPrevTab,
	"new_tab":           ActionNewTab,
	"focus_up":          ActionFocusUp,
	"focus_down":        ActionFocusDown,
	"focus_left":        ActionFocusLeft,
	"focus_right":       ActionFocusRight,
	"fullscreen_toggle": ActionFullscreenToggle,
	"sync_toggle":       ActionSyncToggle,
	"enter_scroll":      ActionEnterScroll,
	"exit_scroll":       ActionExitScroll,
	"enter_resize":      ActionEnterResize,
	"exit_resize":       ActionExitResize,
	"detach":            ActionDetach,
	"quit":              ActionQuit,
	"send_prefix":       ActionSendPrefix,
}

// ActionByName resolves a configuration-facing action name (as written in
// a keybindings config file, e.g. "split_vertical") to its Action
// constant.
func ActionByName(name string) (Action, bool) {
	a, ok := actionNames[name]
	return a, ok
}

// modeNames maps a configuration-facing mode name to its Mode constant.
// Only the bindable transient modes are exposed; ModePassthrough has no
// bindings of its own (it only recognizes the prefix key).
var modeNames = map[string]Mode{
	"prefix": ModePrefix,
	"scroll": ModeScroll,
	"resize": ModeResize,
}

// ModeByName resolves a configuration-facing mode name to its Mode
// constant.
func ModeByName(name string) (Mode, bool) {
	m, ok := modeNames[name]
	return m, ok
}
