package bus

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"weave/internal/eventlog"
)

// ErrShutdownTimeout is returned by Shutdown when workers haven't drained
// within the given deadline.
var ErrShutdownTimeout = errors.New("bus: worker pool shutdown timed out")

// recentHistoryLen bounds how many instruction summaries each lane keeps
// around for a crash report — spec's "last N messages consumed on that
// thread's channel".
const recentHistoryLen = 20

// WorkerPool runs a bounded set of goroutines per lane, joined through an
// errgroup so shutdown has a single wait path. A handler error or a
// recovered panic is logged and the worker goes on draining its lane; it
// does not cancel the shared context or stop the other workers. The
// teacher hand-rolls goroutine lifecycle with raw channels and an explicit
// stop channel per loop (RunDelivery, TickStatus); errgroup is adopted
// here as the more idiomatic fit once there are several worker groups that
// need one shutdown path instead of one apiece.
type WorkerPool struct {
	bus    *Bus
	g      *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc

	logger *eventlog.Logger

	historyMu sync.Mutex
	history   map[string][]string
}

// NewWorkerPool creates a WorkerPool bound to the given Bus. parent is the
// root context; cancelling it (or calling Shutdown) stops every worker.
// Crash reports are discarded until SetLogger is called.
func NewWorkerPool(parent context.Context, b *Bus) *WorkerPool {
	ctx, cancel := context.WithCancel(parent)
	g, gctx := errgroup.WithContext(ctx)
	return &WorkerPool{
		bus:     b,
		g:       g,
		ctx:     gctx,
		cancel:  cancel,
		logger:  eventlog.Nop(),
		history: make(map[string][]string),
	}
}

// SetLogger directs recovered-panic crash reports to l instead of being
// discarded.
func (p *WorkerPool) SetLogger(l *eventlog.Logger) {
	p.logger = l
}

func (p *WorkerPool) recordHistory(lane, summary string) {
	p.historyMu.Lock()
	defer p.historyMu.Unlock()
	h := append(p.history[lane], summary)
	if len(h) > recentHistoryLen {
		h = h[len(h)-recentHistoryLen:]
	}
	p.history[lane] = h
}

func (p *WorkerPool) recentHistory(lane string) []string {
	p.historyMu.Lock()
	defer p.historyMu.Unlock()
	out := make([]string, len(p.history[lane]))
	copy(out, p.history[lane])
	return out
}

// runRecovered records summary in lane's history, then calls fn, converting
// any panic into a logged crash report carrying the lane's recent history
// instead of taking the whole worker pool down with it.
func (p *WorkerPool) runRecovered(lane, summary string, fn func() error) (err error) {
	p.recordHistory(lane, summary)
	defer func() {
		if r := recover(); r != nil {
			p.logger.CrashReport(lane, r, p.recentHistory(lane))
			err = fmt.Errorf("bus: %s worker: recovered panic: %v", lane, r)
		}
	}()
	return fn()
}

// StartPtyWorkers launches n goroutines draining the pty lane. PtyWrite
// instructions for the same pane may interleave across workers if n > 1
// and the caller's handler isn't itself serialized per-pane; callers that
// need strict per-pane ordering should use n == 1 or shard instructions by
// pane ID before submitting.
func (p *WorkerPool) StartPtyWorkers(n int, handle func(PtyInstruction) error) {
	for i := 0; i < n; i++ {
		p.g.Go(func() error {
			for {
				select {
				case <-p.ctx.Done():
					return nil
				case instr, ok := <-p.bus.Pty:
					if !ok {
						return nil
					}
					summary := fmt.Sprintf("pty kind=%d pane=%s", instr.Kind, instr.PaneID)
					if err := p.runRecovered("pty", summary, func() error { return handle(instr) }); err != nil {
						log.Printf("bus: pty worker: pane %s: %v", instr.PaneID, err)
					}
				}
			}
		})
	}
}

// StartScreenWorker launches a single goroutine draining the screen lane.
// Screen instructions mutate a shared layout tree, so they're processed
// one at a time rather than by a pool.
func (p *WorkerPool) StartScreenWorker(handle func(ScreenInstruction) error) {
	p.g.Go(func() error {
		for {
			select {
			case <-p.ctx.Done():
				return nil
			case instr, ok := <-p.bus.Screen:
				if !ok {
					return nil
				}
				summary := fmt.Sprintf("screen kind=%d tab=%s", instr.Kind, instr.TabID)
				if err := p.runRecovered("screen", summary, func() error { return handle(instr) }); err != nil {
					log.Printf("bus: screen worker: tab %s: %v", instr.TabID, err)
				}
			}
		}
	})
}

// StartClientWorkers launches n goroutines draining the client lane.
func (p *WorkerPool) StartClientWorkers(n int, handle func(ClientInstruction) error) {
	for i := 0; i < n; i++ {
		p.g.Go(func() error {
			for {
				select {
				case <-p.ctx.Done():
					return nil
				case instr, ok := <-p.bus.Client:
					if !ok {
						return nil
					}
					summary := fmt.Sprintf("client kind=%d client=%s", instr.Kind, instr.ClientID)
					if err := p.runRecovered("client", summary, func() error { return handle(instr) }); err != nil {
						log.Printf("bus: client worker: client %s: %v", instr.ClientID, err)
					}
				}
			}
		})
	}
}

// Shutdown cancels every worker's context and waits up to timeout for them
// to return, hard-aborting (returning ErrShutdownTimeout) if they don't.
func (p *WorkerPool) Shutdown(timeout time.Duration) error {
	p.cancel()
	done := make(chan error, 1)
	go func() { done <- p.g.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return ErrShutdownTimeout
	}
}
