package cmd

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	"weave/internal/bus"
	"weave/internal/socketdir"
)

// quitKeySequence is Ctrl-b (the router's prefix key) followed by "Q"
// (ActionQuit's default binding), the same bytes an attached client's
// keyboard would produce for "quit this session" — see
// internal/router/keymap.go's defaultKeymap.
var quitKeySequence = []byte{0x02, 'Q'}

// newKillCmd terminates a running session by attaching just long enough
// to send its quit key sequence, rather than inventing a side-channel
// signal: the daemon shuts down exactly as it would for an interactive
// client pressing Ctrl-b Q.
func newKillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kill <name>",
		Short: "Stop a running session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKill(args[0])
		},
	}
}

func runKill(name string) error {
	sockPath, err := socketdir.Find(name)
	if err != nil {
		return sessionConnError(name, err)
	}
	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		return sessionConnError(name, err)
	}
	defer conn.Close()

	req := &bus.AttachRequest{SessionName: name, ClientName: "kill", Rows: defaultKillRows, Cols: defaultKillCols}
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

	if err := bus.WriteFrame(conn, bus.FrameData, quitKeySequence); err != nil {
		return fmt.Errorf("send quit sequence: %w", err)
	}
	fmt.Printf("session %q killed\n", name)
	return nil
}

const (
	defaultKillRows = 24
	defaultKillCols = 80
)
