package cmd

import (
	"fmt"
	"os"

	"github.com/google/shlex"
	"github.com/spf13/cobra"

	"weave/internal/config"
	"weave/internal/daemon"
)

// newServerCmd forks a new daemon session and, unless --detach is given,
// attaches to it immediately. Grounded on dcosson-h2/internal/cmd/run.go's
// newRunCmd shape (ForkDaemon then doAttach), re-scoped from "run a single
// wrapped agent command" to "start a named terminal session".
func newServerCmd() *cobra.Command {
	var name string
	var detach bool

	c := &cobra.Command{
		Use:   "server [--name=<name>] [--detach] [-- <command> [args...]]",
		Short: "Start a new terminal session",
		Long:  "Fork a daemon process hosting a new session, running the given command (or the configured default shell), then attach to it unless --detach is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			var command string
			var cmdArgs []string
			if len(args) == 0 {
				argv, err := shlex.Split(cfg.Shell)
				if err != nil || len(argv) == 0 {
					return fmt.Errorf("invalid configured shell %q: %w", cfg.Shell, err)
				}
				command, cmdArgs = argv[0], argv[1:]
			} else {
				command, cmdArgs = args[0], args[1:]
			}

			if name == "" {
				name = generateSessionName()
			}

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getwd: %w", err)
			}
			opts := daemon.ForkOpts{Name: name, Command: command, Args: cmdArgs, CWD: cwd}
			if err := daemon.ForkDaemon(opts); err != nil {
				return err
			}

			if detach {
				fmt.Fprintf(os.Stderr, "session %q started (detached). Attach with: weave attach %s\n", name, name)
				return nil
			}
			fmt.Fprintf(os.Stderr, "session %q started. Attaching...\n", name)
			return runAttach(name)
		},
	}

	c.Flags().StringVar(&name, "name", "", "session name (auto-generated if omitted)")
	c.Flags().BoolVar(&detach, "detach", false, "don't auto-attach after starting")
	return c
}
