package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"weave/internal/config"
	"weave/internal/daemon"
)

// newDaemonCmd is the hidden re-exec target daemon.ForkDaemon launches:
// it actually constructs and runs a Daemon in the foreground of a detached
// process. Grounded on dcosson-h2/internal/cmd/daemon.go's newDaemonCmd
// shape (hidden "_daemon --name=<name> -- <command> [args...]" command
// that calls into the session package's RunDaemon).
func newDaemonCmd() *cobra.Command {
	var name string

	c := &cobra.Command{
		Use:    "_daemon --name=<name> -- <command> [args...]",
		Short:  "Run as a daemon (internal)",
		Hidden: true,
		Args:   cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				return fmt.Errorf("--name is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg.Shell = strings.Join(args, " ")

			d, err := daemon.New(name, cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return d.Run(ctx)
		},
	}

	c.Flags().StringVar(&name, "name", "", "session name")
	return c
}
