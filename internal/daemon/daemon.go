// Package daemon wires together the Bus, the Screen compositor, the PTY
// pool, and the Unix-socket accept loop into one running process — the
// same role dcosson-h2/internal/daemon/daemon.go and
// dcosson-h2/internal/session/daemon.go play, generalized from a single
// wrapped agent process to a multi-tab, multi-pane terminal session shared
// by any number of attached clients.
package daemon

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/shlex"
	"github.com/google/uuid"

	"weave/internal/bus"
	"weave/internal/config"
	"weave/internal/eventlog"
	"weave/internal/layout"
	"weave/internal/pane"
	"weave/internal/screen"
	"weave/internal/socketdir"
)

const (
	defaultRows = 24
	defaultCols = 80

	ptyWorkers    = 4
	clientWorkers = 4

	shutdownTimeout = 5 * time.Second
)

// Daemon owns one running session: its socket listener, its Bus/WorkerPool,
// its client registry, and the Screen/Session the attached clients share.
type Daemon struct {
	Name      string
	Cfg       *config.Config
	Session   *screen.Session
	Bus       *bus.Bus
	Pool      *bus.WorkerPool
	Registry  *bus.ClientRegistry
	Listener  net.Listener
	StartTime time.Time
	Log       *eventlog.Logger

	lock *flock.Flock

	cancel context.CancelFunc
}

// New constructs a Daemon for a session named name, with one tab holding a
// single pane running cfg's configured shell. The listener is not yet
// created; call Run to start serving.
func New(name string, cfg *config.Config) (*Daemon, error) {
	argv, err := shlex.Split(cfg.Shell)
	if err != nil || len(argv) == 0 {
		return nil, fmt.Errorf("daemon: invalid shell command %q: %w", cfg.Shell, err)
	}

	rootPane, err := pane.NewTerminal(argv[0], argv[1:], defaultRows, defaultCols, nil)
	if err != nil {
		return nil, fmt.Errorf("daemon: spawn initial pane: %w", err)
	}

	tab := screen.NewTab(uuid.New().String(), "main", rootPane, layout.Rect{X: 0, Y: 0, W: defaultCols, H: defaultRows})
	tab.AddPane(rootPane)

	sess := screen.NewSession(uuid.New().String(), name)
	sess.AddTab(tab)

	b := bus.New()
	d := &Daemon{
		Name:     name,
		Cfg:      cfg,
		Session:  sess,
		Bus:      b,
		Registry: bus.NewClientRegistry(),
		Log:      eventlog.New(cfg.EventLog, config.LogPath(name), "daemon", name),
	}
	rootPane.OnOutput = d.onPaneOutputFunc(tab.ID, rootPane.ID)
	rootPane.OnExit = d.onPaneExitFunc(tab.ID, rootPane.ID)
	d.Log.PaneSpawn(tab.ID, rootPane.ID, cfg.Shell)
	return d, nil
}

// Run acquires the session's single-instance lock, opens the Unix socket,
// starts the worker pool, and serves client connections until ctx is
// cancelled or Shutdown is called. It blocks until the accept loop exits.
func (d *Daemon) Run(ctx context.Context) error {
	d.StartTime = time.Now()

	lockPath := socketdir.Path(d.Name) + ".lock"
	d.lock = flock.New(lockPath)
	locked, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("daemon: acquire session lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("daemon: session %q is already running", d.Name)
	}

	sockPath := socketdir.Path(d.Name)
	if err := d.clearStaleSocket(sockPath); err != nil {
		d.lock.Unlock()
		return err
	}

	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		d.lock.Unlock()
		return fmt.Errorf("daemon: listen on socket: %w", err)
	}
	d.Listener = ln

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	d.Pool = bus.NewWorkerPool(runCtx, d.Bus)
	d.Pool.SetLogger(d.Log)
	d.Pool.StartScreenWorker(d.handleScreenInstruction)
	d.Pool.StartPtyWorkers(ptyWorkers, d.handlePtyInstruction)
	d.Pool.StartClientWorkers(clientWorkers, d.handleClientInstruction)

	defer d.cleanup(sockPath)

	go func() {
		<-runCtx.Done()
		ln.Close()
	}()

	return d.acceptLoop(runCtx)
}

// clearStaleSocket removes sockPath if nothing is listening behind it
// (a leftover from an unclean shutdown), leaving a live socket untouched.
func (d *Daemon) clearStaleSocket(sockPath string) error {
	if _, err := os.Stat(sockPath); err != nil {
		return nil
	}
	conn, err := net.DialTimeout("unix", sockPath, 500*time.Millisecond)
	if err == nil {
		conn.Close()
		return fmt.Errorf("daemon: session %q is already running", d.Name)
	}
	return os.Remove(sockPath)
}

func (d *Daemon) cleanup(sockPath string) {
	if err := d.Pool.Shutdown(shutdownTimeout); err != nil {
		log.Printf("daemon: worker pool shutdown: %v", err)
	}
	d.Bus.Close()
	d.Log.Close()
	os.Remove(sockPath)
	if d.lock != nil {
		d.lock.Unlock()
		os.Remove(d.lock.Path())
	}
}

// Shutdown cancels the daemon's context, which stops the accept loop and
// every worker, and returns without waiting. Run's cleanup is what waits
// up to shutdownTimeout for the workers to drain.
func (d *Daemon) Shutdown() {
	if d.cancel != nil {
		d.cancel()
	}
}
