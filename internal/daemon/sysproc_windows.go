//go:build windows

package daemon

import "syscall"

// NewSysProcAttr returns nil on Windows: there's no setsid equivalent this
// module needs, since the daemon subcommand is started with detached
// stdio handles rather than a new session.
func NewSysProcAttr() *syscall.SysProcAttr {
	return nil
}
