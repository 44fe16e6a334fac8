package router

// Output is one resolved unit of routed input: either bytes to forward to
// the focused pane (passthrough, scroll/resize navigation keys the table
// doesn't claim, or a sent-back literal prefix) or a dispatched Action for
// the caller to execute against Screen/Layout. Paste carries bracketed-paste
// content and Mouse a decoded mouse report. Exactly one of Forward, Paste,
// Mouse or Action (when Action != ActionNone) is meaningful per Output.
type Output struct {
	Forward []byte
	Paste   []byte
	Mouse   *MouseEvent
	Action  Action
}

// Router holds the input-mode state machine and turns a raw byte stream
// into a sequence of Outputs. It never touches Screen, Layout, or Pane —
// dispatching an Action's effect is the caller's job.
type Router struct {
	mode      Mode
	decoder   *Decoder
	keymap    keymap
	prefixKey string // canonical KeyEvent.String() form, e.g. "C-b"
}

// New creates a Router in ModePassthrough using the conventional
// Ctrl-b prefix and default bindings.
func New() *Router {
	return &Router{
		mode:      ModePassthrough,
		decoder:   NewDecoder(),
		keymap:    defaultKeymap(),
		prefixKey: "C-b",
	}
}

// Mode reports the router's current input mode.
func (r *Router) Mode() Mode { return r.mode }

// Bind overrides (or adds) a single key→action binding for mode, letting a
// loaded configuration customize the default keymap without the caller
// needing access to the unexported keymap type.
func (r *Router) Bind(mode Mode, key string, action Action) {
	table, ok := r.keymap[mode]
	if !ok {
		table = make(map[string]Action)
		r.keymap[mode] = table
	}
	table[key] = action
}

// SetPrefixKey overrides the leader key that transitions ModePassthrough
// into ModePrefix. key is a canonical KeyEvent.String() form, e.g. "C-a".
func (r *Router) SetPrefixKey(key string) {
	r.prefixKey = key
}

// Feed decodes raw input bytes and runs them through the mode state
// machine, returning the resulting Outputs in order.
func (r *Router) Feed(data []byte) []Output {
	var outputs []Output
	for _, ev := range r.decoder.Feed(data) {
		outputs = append(outputs, r.handle(ev)...)
	}
	return outputs
}

func (r *Router) handle(ev Event) []Output {
	switch {
	case ev.Paste != nil:
		return r.handlePaste(ev.Paste)
	case ev.Mouse != nil:
		return r.handleMouse(ev.Mouse)
	case ev.Key != nil:
		return r.handleKey(*ev.Key)
	default:
		return nil
	}
}

func (r *Router) handlePaste(p *PasteEvent) []Output {
	// Bracketed paste always forwards as literal pane input regardless of
	// mode — a paste mid-prefix is vanishingly unlikely to be intentional
	// as a command, so it also closes out the one-key prefix wait rather
	// than leaving the router stuck expecting a command key.
	if r.mode == ModePrefix {
		r.mode = ModePassthrough
	}
	return []Output{{Paste: p.Data}}
}

func (r *Router) handleMouse(m *MouseEvent) []Output {
	if r.mode != ModePassthrough {
		return nil
	}
	return []Output{{Mouse: m}}
}

func (r *Router) handleKey(k KeyEvent) []Output {
	switch r.mode {
	case ModePassthrough:
		return r.handlePassthroughKey(k)
	case ModePrefix:
		return r.handlePrefixKey(k)
	case ModeScroll:
		return r.handleTransientKey(k, ModeScroll)
	case ModeResize:
		return r.handleTransientKey(k, ModeResize)
	default:
		return nil
	}
}

func (r *Router) handlePassthroughKey(k KeyEvent) []Output {
	if k.String() == r.prefixKey {
		r.mode = ModePrefix
		return nil
	}
	return []Output{{Forward: k.Raw}}
}

// handlePrefixKey consumes exactly one key as a command and always falls
// back to ModePassthrough afterward, whether or not the key resolved.
func (r *Router) handlePrefixKey(k KeyEvent) []Output {
	r.mode = ModePassthrough
	action, ok := r.keymap.Resolve(ModePrefix, k.String())
	if !ok {
		// Unbound key after the prefix: swallow it silently, matching the
		// convention that a mistyped command key doesn't leak into the pane.
		return nil
	}
	switch action {
	case ActionEnterScroll:
		r.mode = ModeScroll
	case ActionEnterResize:
		r.mode = ModeResize
	case ActionSendPrefix:
		return []Output{{Forward: k.Raw}}
	}
	return []Output{{Action: action}}
}

// handleTransientKey routes keys while in ModeScroll/ModeResize: bound
// keys resolve to an Action (most commonly exiting back to passthrough),
// unbound keys are forwarded as Output.Forward so the caller can still
// interpret raw arrow/page keys for scrolling or resize-by-increment
// without every such key needing its own Action constant.
func (r *Router) handleTransientKey(k KeyEvent, mode Mode) []Output {
	action, ok := r.keymap.Resolve(mode, k.String())
	if !ok {
		return []Output{{Forward: k.Raw}}
	}
	if action == ActionExitScroll || action == ActionExitResize {
		r.mode = ModePassthrough
	}
	return []Output{{Action: action}}
}

// FlushTimer should be called by the caller's escape-disambiguation timer
// (the same role as the teacher's EscTimer) when no further bytes have
// arrived shortly after a lone ESC, resolving it as a literal Escape key
// press instead of leaving it buffered indefinitely waiting for a second
// byte that will never come.
func (r *Router) FlushTimer() []Output {
	ev := r.decoder.FlushPendingEscape()
	if ev == nil {
		return nil
	}
	return r.handle(*ev)
}
