package devices

import (
	"context"
	"strings"
	"time"

	"github.com/smazurov/camctl/internal/events"
	"github.com/smazurov/camctl/internal/logging"
	"github.com/smazurov/camctl/pkg/linuxav/hotplug"
)

// Watch translates kernel uevents into bus events until ctx is done.
// The uevent channel is taken as a parameter so callers own the netlink
// monitor lifecycle and tests can feed synthetic events.
func Watch(ctx context.Context, uevents <-chan hotplug.Event, bus *events.Bus) {
	logger := logging.GetLogger("devices")

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-uevents:
			if !ok {
				return
			}
			if !strings.HasPrefix(ev.DevName, "video") {
				continue
			}
			path := ev.Node()
			now := time.Now().UTC().Format(time.RFC3339)

			switch ev.Action {
			case hotplug.ActionAdd:
				name := probeName(path)
				logger.Info("device attached", "path", path, "name", name)
				bus.Publish(events.DeviceAttachedEvent{
					DevicePath: path,
					DeviceName: name,
					Timestamp:  now,
				})
			case hotplug.ActionRemove:
				logger.Info("device detached", "path", path)
				bus.Publish(events.DeviceDetachedEvent{
					DevicePath: path,
					Timestamp:  now,
				})
			}
		}
	}
}

// probeName reads the card name from a freshly attached node. The node
// may still be settling, so failures just yield an empty name.
func probeName(path string) string {
	dev, err := probeDevice(path)
	if err != nil {
		return ""
	}
	defer dev.Close()

	caps, err := dev.QueryCaps()
	if err != nil {
		return ""
	}
	return caps.Card
}
