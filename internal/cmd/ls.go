package cmd

import (
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"weave/internal/socketdir"
)

// newLsCmd lists every session with a live socket, grounded on
// dcosson-h2/internal/cmd/ls.go's newLsCmd (daemon.ListAgents +
// per-agent status query), re-scoped from "agent state + queued message
// count" to whether each session's socket responds.
func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List running sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := socketdir.List()
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no running sessions")
				return nil
			}
			for _, e := range entries {
				if probeSession(e.Path) {
					fmt.Printf("  %s\n", e.Name)
				} else {
					fmt.Printf("  %s (not responding)\n", e.Name)
				}
			}
			return nil
		},
	}
}

// listSessionNames returns the names of every session with a socket on
// disk, for error messages that suggest alternatives.
func listSessionNames() ([]string, error) {
	entries, err := socketdir.List()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names, nil
}

// probeSession dials sockPath with a short timeout to see whether a
// daemon is actually listening behind it, the same dial-timeout liveness
// check dcosson-h2/internal/cmd/ls.go's queryAgent performs before
// reporting an agent's state. It only opens and closes the connection —
// the daemon's accept loop is enough evidence, no handshake required.
func probeSession(sockPath string) bool {
	conn, err := net.DialTimeout("unix", sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
