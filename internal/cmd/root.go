// Package cmd is weave's thin cobra CLI shell: server/attach/ls/kill
// subcommands plus the hidden _daemon entry point ForkDaemon re-execs into.
// Argument-parsing depth, layout-file parsing, and shell-completion
// generation are out of scope; every subcommand here is a shim over the
// daemon/bus/socketdir API. Grounded on dcosson-h2/internal/cmd/root.go's
// NewRootCmd shape.
package cmd

import (
	"github.com/spf13/cobra"

	"weave/internal/config"
	"weave/internal/version"
)

// NewRootCmd creates the root cobra command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "weave",
		Short: "A terminal multiplexer",
		Long:  "weave runs PTY-backed tabs and panes behind a single background daemon, composited into one screen and shared by any number of attached clients.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch cmd.Name() {
			case "version", "help", "completion":
				return nil
			}
			_, err := config.Load()
			return err
		},
	}

	root.AddCommand(
		newServerCmd(),
		newAttachCmd(),
		newLsCmd(),
		newKillCmd(),
		newDaemonCmd(),
		newVersionCmd(),
	)

	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the weave version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Println(version.DisplayVersion())
			return nil
		},
	}
}
