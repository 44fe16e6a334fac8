// Package bus wires the daemon's three concurrency lanes together: screen
// commands (split/focus/tab changes resolved from router actions), pty
// instructions (bytes and control operations bound for a specific pane's
// process), and client instructions (rendered frames and lifecycle events
// bound for an attached terminal). Each lane is a bounded channel so a
// slow consumer cannot grow memory without bound; when a lane is full, new
// instructions are dropped and the producer is not blocked. This is the
// same "typed message flows through one queue" shape the teacher uses for
// its delivery queue, generalized to three lanes instead of one.
package bus

import (
	"weave/internal/layout"
	"weave/internal/screen"
)

// ScreenInstructionKind enumerates the layout/tab-level commands the
// router's resolved Actions are translated into.
type ScreenInstructionKind int

const (
	ScreenSplit ScreenInstructionKind = iota
	ScreenClosePane
	ScreenFocusDirection
	ScreenFocusPane
	ScreenNextTab
	ScreenPrevTab
	ScreenNewTab
	ScreenCloseTab
	ScreenFullscreenToggle
	ScreenSyncToggle
	ScreenResize
	ScreenAdjustSplit
)

// ScreenInstruction targets a tab within a session; PaneID/Direction/
// Orientation/Rect/Delta are populated according to Kind. ClientID names
// the attached client whose own per-client focus a focus-scoped Kind
// (ScreenFocusDirection, ScreenFocusPane, ScreenSplit, ScreenFullscreenToggle)
// reads or updates; it is empty for tab-wide kinds like ScreenNextTab that
// aren't scoped to any one client.
type ScreenInstruction struct {
	TabID       string
	PaneID      string
	NewPaneID   string
	ClientID    string
	Kind        ScreenInstructionKind
	Orientation layout.Orientation
	Direction   screen.Direction
	Rect        layout.Rect
	Delta       float64
}

// PtyInstructionKind enumerates the operations a pty worker performs
// against a single pane's underlying process or plugin.
type PtyInstructionKind int

const (
	PtyWrite PtyInstructionKind = iota
	PtyResize
	PtyKill
)

// PtyInstruction is addressed to exactly one pane by ID.
type PtyInstruction struct {
	PaneID string
	Kind   PtyInstructionKind
	Data   []byte
	Rows   int
	Cols   int
}

// ClientInstructionKind enumerates the outbound events a client worker
// delivers to one attached terminal.
type ClientInstructionKind int

const (
	ClientFullRepaint ClientInstructionKind = iota
	ClientDirtyRepaint
	ClientStatusTick
	ClientDetach
)

// ClientInstruction is addressed to exactly one client by ID. Frame holds
// the already-rendered byte sequence for the two repaint kinds; it is nil
// for ClientStatusTick/ClientDetach, which carry no payload of their own.
type ClientInstruction struct {
	ClientID string
	Kind     ClientInstructionKind
	Frame    []byte
}
