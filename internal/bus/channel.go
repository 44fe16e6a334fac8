package bus

import "log"

// defaultCapacity bounds each lane so a stalled consumer (a hung pane, a
// slow client connection) cannot grow an unbounded queue in memory. Once a
// lane is full, the Submit methods drop new instructions; they never block
// the producer.
const defaultCapacity = 256

// Bus is the daemon's set of bounded instruction channels. One Bus is
// shared by every session the daemon hosts; instructions carry their own
// target IDs (pane, tab, client) rather than the bus being scoped per
// session.
type Bus struct {
	Screen chan ScreenInstruction
	Pty    chan PtyInstruction
	Client chan ClientInstruction
}

// New creates a Bus with the default lane capacity.
func New() *Bus {
	return NewWithCapacity(defaultCapacity)
}

// NewWithCapacity creates a Bus whose lanes each hold up to capacity
// instructions before a Submit call starts dropping.
func NewWithCapacity(capacity int) *Bus {
	return &Bus{
		Screen: make(chan ScreenInstruction, capacity),
		Pty:    make(chan PtyInstruction, capacity),
		Client: make(chan ClientInstruction, capacity),
	}
}

// SubmitScreen enqueues a screen instruction, dropping (and logging) it if
// the lane is full rather than blocking the caller — a router goroutine
// feeding this lane must never stall behind a slow consumer.
func (b *Bus) SubmitScreen(i ScreenInstruction) {
	select {
	case b.Screen <- i:
	default:
		log.Printf("bus: screen lane full, dropping instruction for tab %s", i.TabID)
	}
}

// SubmitPty enqueues a pty instruction, dropping it if the lane is full.
func (b *Bus) SubmitPty(i PtyInstruction) {
	select {
	case b.Pty <- i:
	default:
		log.Printf("bus: pty lane full, dropping instruction for pane %s", i.PaneID)
	}
}

// SubmitClient enqueues a client instruction, dropping it if the lane is
// full. The incoming instruction is the one dropped; instructions already
// queued are kept, and the producer is never blocked.
func (b *Bus) SubmitClient(i ClientInstruction) {
	select {
	case b.Client <- i:
	default:
		log.Printf("bus: client lane full, dropping instruction for client %s", i.ClientID)
	}
}

// Close closes all three lanes. Callers must ensure no goroutine is still
// submitting before calling Close.
func (b *Bus) Close() {
	close(b.Screen)
	close(b.Pty)
	close(b.Client)
}
