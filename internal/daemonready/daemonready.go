// Package daemonready wraps systemd readiness/stopping notifications, the
// part of ferryd/server.go's go-systemd integration that still fits this
// system — there is no network socket here for activation to matter, but
// both the shell and the scheduler are long-running daemons a unit file can
// reasonably supervise.
package daemonready

import (
	"github.com/coreos/go-systemd/v22/daemon"
)

// Ready tells systemd this process has finished startup. It is a no-op
// (returns false, nil) outside a systemd unit, same as the library itself.
func Ready() (bool, error) {
	return daemon.SdNotify(false, daemon.SdNotifyReady)
}

// Stopping tells systemd this process is shutting down.
func Stopping() (bool, error) {
	return daemon.SdNotify(false, daemon.SdNotifyStopping)
}
