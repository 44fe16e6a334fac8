// Package eventlog is an append-only JSONL logger for the events the core
// doesn't otherwise keep a durable record of: pane lifecycle transitions,
// PTY errors, and crash reports recovered from a panicking worker.
// Grounded on dcosson-h2/internal/activitylog's New(enabled, path, actor,
// sessionID)/typed-append/Close() shape (only that package's test file
// survived retrieval; this reconstructs the logger from logger_test.go's
// observed behavior), re-scoped from agent-hook/OTEL events to this
// module's own domain.
package eventlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger appends one JSON object per line to a file, or does nothing if
// disabled — callers hold a Logger regardless of whether logging is
// configured, rather than threading a nullable pointer everywhere.
type Logger struct {
	enabled   bool
	actor     string
	sessionID string

	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// New opens (creating if necessary) the log file at path and returns a
// Logger that appends to it. If enabled is false, every method is a no-op
// and no file is created or written.
func New(enabled bool, path, actor, sessionID string) *Logger {
	l := &Logger{enabled: enabled, actor: actor, sessionID: sessionID}
	if !enabled {
		return l
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		l.enabled = false
		return l
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.enabled = false
		return l
	}
	l.file = f
	l.enc = json.NewEncoder(f)
	return l
}

// Nop returns a Logger that discards every event, for callers that need a
// non-nil Logger but no configured log path (tests, and the bus worker
// pool until SetLogger is called).
func Nop() *Logger {
	return &Logger{enabled: false}
}

// Close flushes and closes the underlying file. Safe to call on a disabled
// or Nop Logger.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *Logger) write(fields map[string]any) {
	if !l.enabled {
		return
	}
	fields["ts"] = time.Now().UTC().Format(time.RFC3339Nano)
	fields["actor"] = l.actor
	fields["session_id"] = l.sessionID

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.enc == nil {
		return
	}
	_ = l.enc.Encode(fields)
}

// PaneSpawn records a new pane starting a command in a tab.
func (l *Logger) PaneSpawn(tabID, paneID, command string) {
	l.write(map[string]any{
		"event":   "pane_spawn",
		"tab_id":  tabID,
		"pane_id": paneID,
		"command": command,
	})
}

// PaneExit records a pane's process exiting, with its exit error if it
// exited abnormally; for a clean exit the error field is left out.
func (l *Logger) PaneExit(tabID, paneID string, exitErr error) {
	fields := map[string]any{
		"event":   "pane_exit",
		"tab_id":  tabID,
		"pane_id": paneID,
	}
	if exitErr != nil {
		fields["error"] = exitErr.Error()
	}
	l.write(fields)
}

// PTYError records a read/write/resize failure against a pane's underlying
// process, outside of a normal exit.
func (l *Logger) PTYError(paneID string, err error) {
	l.write(map[string]any{
		"event":   "pty_error",
		"pane_id": paneID,
		"error":   errString(err),
	})
}

// CrashReport records a panic recovered from a worker's top-level loop,
// along with the last messages that worker consumed from its channel
// before crashing — spec's "structured crash report including the last N
// messages consumed on that thread's channel".
func (l *Logger) CrashReport(lane string, recovered any, recentMessages []string) {
	l.write(map[string]any{
		"event":  "crash_report",
		"lane":   lane,
		"panic":  fmtPanic(recovered),
		"recent": recentMessages,
	})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func fmtPanic(r any) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	if s, ok := r.(string); ok {
		return s
	}
	return jsonStringify(r)
}

func jsonStringify(r any) string {
	b, err := json.Marshal(r)
	if err != nil {
		return "<unmarshalable panic value>"
	}
	return string(b)
}
