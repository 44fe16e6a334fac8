//go:build linux || darwin

package daemon

import "syscall"

// NewSysProcAttr returns the process attributes for a forked daemon: a new
// session via setsid, so the daemon survives the parent CLI process exiting
// and isn't killed by a terminal hangup from the shell that launched it.
func NewSysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setsid: true}
}
