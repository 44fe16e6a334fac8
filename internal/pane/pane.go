// Package pane owns a single pane's lifecycle: a terminal pane wraps a PTY
// child process feeding a Grid; a plugin pane wraps an in-process function
// producing output to the same kind of Grid. Both follow the same
// spawning -> running -> exited -> closed state machine so the layout and
// screen layers above never need to know which kind they're holding.
package pane

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"weave/internal/ptyproc"
	"weave/internal/vt"
)

// Kind distinguishes a PTY-backed pane from an in-process plugin pane.
type Kind int

const (
	KindTerminal Kind = iota
	KindPlugin
)

func (k Kind) String() string {
	if k == KindPlugin {
		return "plugin"
	}
	return "terminal"
}

// State is the pane lifecycle state machine.
type State int

const (
	StateSpawning State = iota
	StateRunning
	StateExited
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateSpawning:
		return "spawning"
	case StateRunning:
		return "running"
	case StateExited:
		return "exited"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ErrHung is surfaced via OnExit-equivalent channels when a write times out
// and the child is presumed wedged; the pane is killed rather than left to
// block future writers forever.
var ErrHung = errors.New("pane: child process is hung, killed")

const writeTimeout = 3 * time.Second

// PluginFunc is the body of a plugin pane: it runs until ctx is cancelled or
// it returns on its own, writing VT byte output to out and reading routed
// input from in. A plugin function owns no PTY; terminal semantics (cursor,
// colors, wrapping) are still emulated by the pane's Grid, so a plugin can
// emit plain ANSI just like a real program would.
type PluginFunc func(ctx context.Context, in io.Reader, out io.Writer) error

// Pane is one terminal cell in a session's layout: either a PTY-backed
// child process or an in-process plugin, always rendered through a Grid.
type Pane struct {
	ID    string
	Kind  Kind
	Title string

	Grid   *vt.Grid
	parser *vt.Parser

	process *ptyproc.Process

	pluginCancel context.CancelFunc
	pluginIn     *io.PipeWriter

	mu    sync.Mutex
	state State
	err   error

	// OnOutput fires after each batch of bytes has been applied to Grid,
	// so a compositor can schedule a re-render without polling.
	OnOutput func()
	// OnExit fires exactly once when the pane's underlying process/plugin
	// terminates, carrying its exit error (nil for a clean exit).
	OnExit func(error)
	// OnTitleChange mirrors Grid.OnTitleChange but also updates Pane.Title.
	OnTitleChange func(string)
}

// NewTerminal spawns command/args in a PTY of the given size and returns a
// running pane. It takes no context; a terminal pane is stopped via
// Close/Kill instead, matching a real shell's process-group lifetime
// rather than a context-scoped one.
func NewTerminal(command string, args []string, rows, cols int, env map[string]string) (*Pane, error) {
	p := newPane(KindTerminal, rows, cols)
	proc, err := ptyproc.Spawn(command, args, rows, cols, env)
	if err != nil {
		p.state = StateExited
		p.err = err
		return nil, fmt.Errorf("pane: %w", err)
	}
	p.process = proc
	p.state = StateRunning

	go proc.ReadLoop(p.applyOutput, p.handleExit)
	return p, nil
}

// NewPlugin starts fn in a goroutine, wired to the pane's Grid exactly like
// a terminal pane's PTY output would be.
func NewPlugin(fn PluginFunc, rows, cols int) *Pane {
	p := newPane(KindPlugin, rows, cols)
	ctx, cancel := context.WithCancel(context.Background())
	p.pluginCancel = cancel

	outR, outW := io.Pipe()
	inR, inW := io.Pipe()
	p.pluginIn = inW
	p.state = StateRunning

	go p.pluginReadLoop(outR)
	go func() {
		err := fn(ctx, inR, outW)
		outW.Close()
		p.handleExit(err)
	}()
	return p
}

func newPane(kind Kind, rows, cols int) *Pane {
	g := vt.NewGrid(rows, cols)
	p := &Pane{
		ID:     uuid.New().String(),
		Kind:   kind,
		Grid:   g,
		parser: vt.NewParser(g),
		state:  StateSpawning,
	}
	g.OnTitleChange = func(title string) {
		p.Title = title
		if p.OnTitleChange != nil {
			p.OnTitleChange(title)
		}
	}
	return p
}

// applyOutput feeds a batch of PTY bytes through the parser under the
// grid's own synchronization and notifies listeners.
func (p *Pane) applyOutput(b []byte) {
	p.parser.Write(b)
	if p.OnOutput != nil {
		p.OnOutput()
	}
}

func (p *Pane) pluginReadLoop(r *io.PipeReader) {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			p.applyOutput(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

func (p *Pane) handleExit(err error) {
	p.mu.Lock()
	if p.state == StateClosed || p.state == StateExited {
		p.mu.Unlock()
		return
	}
	if err == io.EOF {
		err = nil
	}
	p.state = StateExited
	p.err = err
	p.mu.Unlock()

	if p.OnExit != nil {
		p.OnExit(err)
	}
}

// Write routes input to the pane: keystrokes to the PTY, or to the
// plugin's input pipe. Terminal writes use a hang timeout, killing the
// child and reporting ErrHung if it isn't reading its input.
func (p *Pane) Write(b []byte) error {
	p.mu.Lock()
	state := p.state
	p.mu.Unlock()
	if state != StateRunning {
		return io.ErrClosedPipe
	}

	switch p.Kind {
	case KindTerminal:
		_, err := p.process.Write(b, writeTimeout)
		if errors.Is(err, ptyproc.ErrWriteTimeout) {
			p.process.Kill()
			p.handleExit(ErrHung)
			return ErrHung
		}
		return err
	case KindPlugin:
		_, err := p.pluginIn.Write(b)
		return err
	default:
		return fmt.Errorf("pane: unknown kind %v", p.Kind)
	}
}

// Resize propagates a size change to the Grid (reflow) and, for a terminal
// pane, to the PTY (so the child sees SIGWINCH with the new size). A plugin
// is not notified.
func (p *Pane) Resize(rows, cols int) {
	p.Grid.Resize(rows, cols)
	if p.Kind == KindTerminal && p.process != nil {
		p.process.Resize(rows, cols)
	}
}

// State returns the pane's current lifecycle state and its terminal error,
// if any.
func (p *Pane) State() (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state, p.err
}

// Idle reports whether a terminal pane's child has been silent for at
// least d; always false for plugin panes, which have no PTY idle signal.
func (p *Pane) Idle(d time.Duration) bool {
	if p.Kind != KindTerminal || p.process == nil {
		return false
	}
	return p.process.IsIdle(d)
}

// Close tears the pane down: kills a terminal child or cancels a plugin,
// and marks the pane closed so future writes fail cleanly.
func (p *Pane) Close() error {
	p.mu.Lock()
	if p.state == StateClosed {
		p.mu.Unlock()
		return nil
	}
	p.state = StateClosed
	p.mu.Unlock()

	switch p.Kind {
	case KindTerminal:
		if p.process != nil {
			p.process.Close()
			return p.process.Kill()
		}
	case KindPlugin:
		if p.pluginCancel != nil {
			p.pluginCancel()
		}
		if p.pluginIn != nil {
			p.pluginIn.Close()
		}
	}
	return nil
}
