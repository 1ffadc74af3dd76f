// Package systemd integrates with the service manager when camctl runs
// as a unit. Outside systemd every call is a no-op.
package systemd

import (
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/smazurov/camctl/internal/logging"
)

// NotifyReady tells the service manager the server is accepting
// requests. Returns whether a notification socket was present.
func NotifyReady() bool {
	sent, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		logging.GetLogger("main").Warn("sd_notify failed", "error", err)
		return false
	}
	return sent
}

// NotifyStopping tells the service manager shutdown has begun.
func NotifyStopping() {
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		logging.GetLogger("main").Warn("sd_notify failed", "error", err)
	}
}
