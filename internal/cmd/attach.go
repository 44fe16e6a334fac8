package cmd

import (
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"weave/internal/bus"
	"weave/internal/socketdir"
)

// newAttachCmd connects to an already-running session's socket and pumps
// frames between it and the local terminal. Grounded on the raw-mode /
// SIGWINCH / mouse-reporting sequence of the ekain-fr-h2 reference client's
// SetupInteractiveTerminal and WatchResize, re-expressed against weave's
// own bus wire protocol (AttachRequest/AttachResponse handshake, then
// length-prefixed FrameData/FrameControl frames) rather than that file's
// message/virtualterminal packages.
func newAttachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attach <name>",
		Short: "Attach to a running session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAttach(args[0])
		},
	}
}

// runAttach dials the named session's socket, performs the attach
// handshake, and pumps terminal I/O until the connection closes or the
// user detaches.
func runAttach(name string) error {
	sockPath, err := socketdir.Find(name)
	if err != nil {
		return sessionConnError(name, err)
	}
	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		return sessionConnError(name, err)
	}
	defer conn.Close()

	cols, rows := 80, 24
	stdinFd := int(os.Stdin.Fd())
	if isatty.IsTerminal(uintptr(stdinFd)) {
		if c, r, err := term.GetSize(stdinFd); err == nil {
			cols, rows = c, r
		}
	}

	req := &bus.AttachRequest{SessionName: name, ClientName: localClientName(), Rows: rows, Cols: cols}
	if err := bus.WriteRequest(conn, req); err != nil {
		return fmt.Errorf("send attach request: %w", err)
	}
	resp, err := bus.ReadResponse(conn)
	if err != nil {
		return fmt.Errorf("read attach response: %w", err)
	}
	if !resp.OK {
		return fmt.Errorf("session %q refused attach: %s", name, resp.Error)
	}

	restore, err := enterRawMode(stdinFd)
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	defer restore()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGWINCH)
	defer signal.Stop(sigCh)
	stop := make(chan struct{})
	go watchResize(conn, stdinFd, sigCh, stop)
	defer close(stop)

	readErr := make(chan error, 1)
	go func() {
		_, err := io.Copy(os.Stdout, conn)
		readErr <- err
	}()

	if err := pumpInput(os.Stdin, conn); err != nil && err != io.EOF {
		return err
	}
	<-readErr
	return nil
}

func localClientName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return fmt.Sprintf("client-%d", os.Getpid())
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}

// enterRawMode puts the local terminal into raw mode, returning a restore
// func. Mouse-reporting escape sequences come from the daemon itself (see
// handleConn), copied straight through to stdout along with everything
// else the session renders, so the client doesn't toggle it separately.
func enterRawMode(fd int) (func(), error) {
	if !isatty.IsTerminal(uintptr(fd)) {
		return func() {}, nil
	}
	prev, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return func() {
		term.Restore(fd, prev)
	}, nil
}

// watchResize forwards SIGWINCH notifications to the daemon as control
// frames carrying the terminal's new size, until stop is closed.
func watchResize(conn net.Conn, fd int, sigCh <-chan os.Signal, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-sigCh:
			cols, rows, err := term.GetSize(fd)
			if err != nil {
				continue
			}
			bus.WriteControl(conn, bus.ControlMessage{Type: "resize", Rows: rows, Cols: cols})
		}
	}
}

// pumpInput reads raw keyboard/mouse bytes from r and forwards each chunk
// to the daemon as a FrameData frame.
func pumpInput(r io.Reader, conn net.Conn) error {
	buf := make([]byte, 4096)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if werr := bus.WriteFrame(conn, bus.FrameData, buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			return err
		}
	}
}
