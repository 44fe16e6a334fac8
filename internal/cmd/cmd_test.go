package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"weave/internal/socketdir"
)

func TestGenerateSessionNameFormatAndUniqueness(t *testing.T) {
	a := generateSessionName()
	b := generateSessionName()
	if !strings.HasPrefix(a, "session-") || !strings.HasPrefix(b, "session-") {
		t.Fatalf("generateSessionName() = %q, %q, want both prefixed session-", a, b)
	}
	if a == b {
		t.Errorf("generateSessionName() returned the same name twice: %q", a)
	}
}

func TestSessionConnErrorNoRunningSessions(t *testing.T) {
	t.Setenv("WEAVE_DIR", t.TempDir())
	socketdir.ResetDirCache()
	t.Cleanup(socketdir.ResetDirCache)

	err := sessionConnError("scratch", errBoom)
	if err == nil {
		t.Fatal("expected a non-nil error")
	}
	if !strings.Contains(err.Error(), "start one with: weave server --name scratch") {
		t.Errorf("error = %q, want a start hint", err.Error())
	}
}

func TestSessionConnErrorListsRunningSessions(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WEAVE_DIR", dir)
	socketdir.ResetDirCache()
	t.Cleanup(socketdir.ResetDirCache)

	mustCreateSocketFile(t, dir, "other.sock")

	err := sessionConnError("scratch", errBoom)
	if err == nil {
		t.Fatal("expected a non-nil error")
	}
	if !strings.Contains(err.Error(), "other") {
		t.Errorf("error = %q, want it to mention the running session %q", err.Error(), "other")
	}
}

func TestListSessionNames(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("WEAVE_DIR", dir)
	socketdir.ResetDirCache()
	t.Cleanup(socketdir.ResetDirCache)

	mustCreateSocketFile(t, dir, "alpha.sock")
	mustCreateSocketFile(t, dir, "beta.sock")

	names, err := listSessionNames()
	if err != nil {
		t.Fatalf("listSessionNames() error = %v", err)
	}
	if len(names) != 2 {
		t.Fatalf("listSessionNames() = %v, want 2 entries", names)
	}
}

func TestRootCmdHasExpectedSubcommands(t *testing.T) {
	root := NewRootCmd()
	want := []string{"server", "attach", "ls", "kill", "_daemon", "version"}
	for _, name := range want {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("root command missing subcommand %q (err=%v)", name, err)
		}
	}
}

func TestRootCmdDaemonSubcommandIsHidden(t *testing.T) {
	root := NewRootCmd()
	sub, _, err := root.Find([]string{"_daemon"})
	if err != nil {
		t.Fatalf("Find(_daemon) error = %v", err)
	}
	if !sub.Hidden {
		t.Error("_daemon subcommand should be hidden from help output")
	}
}

type boomErr struct{}

func (boomErr) Error() string { return "boom" }

var errBoom = boomErr{}

func mustCreateSocketFile(t *testing.T, weaveDir, name string) {
	t.Helper()
	sockDir := filepath.Join(weaveDir, "sockets")
	if err := os.MkdirAll(sockDir, 0o700); err != nil {
		t.Fatalf("mkdir %q: %v", sockDir, err)
	}
	path := filepath.Join(sockDir, name)
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("create socket fixture %q: %v", path, err)
	}
}
