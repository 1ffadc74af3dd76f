//go:build linux

// Package hotplug monitors kernel device add/remove events in pure Go by
// listening to NETLINK_KOBJECT_UEVENT broadcasts, without any udev
// dependency. camctl uses it to notice video4linux nodes appearing and
// disappearing.
package hotplug

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"syscall"
)

// Actions reported by the kernel.
const (
	ActionAdd    = "add"
	ActionRemove = "remove"
	ActionChange = "change"
	ActionBind   = "bind"
	ActionUnbind = "unbind"
)

// SubsystemVideo4Linux is the subsystem of /dev/video* nodes.
const SubsystemVideo4Linux = "video4linux"

// Event is one kernel device event.
type Event struct {
	Action    string
	KObj      string            // kernel object path, /devices/...
	Subsystem string            // "video4linux", "usb", ...
	DevName   string            // device name, e.g. "video0"
	Env       map[string]string // every KEY=VALUE pair from the event
}

// Node returns the /dev path of the event's device node, or "" when the
// event carries no device name.
func (e Event) Node() string {
	if e.DevName == "" {
		return ""
	}
	return "/dev/" + e.DevName
}

// netlinkKobjectUEvent is the netlink protocol for kernel object events.
const netlinkKobjectUEvent = 15

// Monitor listens for kernel device events via a netlink socket.
// Construct it with NewMonitor and drain it with Run.
type Monitor struct {
	fd         int
	subsystems map[string]struct{}
}

// NewMonitor creates a monitor bound to the kernel broadcast group.
// When subsystems are given, only events from those subsystems are
// delivered; with none, everything passes through.
func NewMonitor(subsystems ...string) (*Monitor, error) {
	fd, err := syscall.Socket(syscall.AF_NETLINK, syscall.SOCK_DGRAM|syscall.SOCK_CLOEXEC, netlinkKobjectUEvent)
	if err != nil {
		return nil, err
	}

	addr := &syscall.SockaddrNetlink{
		Family: syscall.AF_NETLINK,
		Groups: 1, // kernel broadcast group
	}
	if err := syscall.Bind(fd, addr); err != nil {
		syscall.Close(fd)
		return nil, err
	}

	m := &Monitor{fd: fd, subsystems: make(map[string]struct{})}
	for _, s := range subsystems {
		m.subsystems[s] = struct{}{}
	}
	return m, nil
}

// Close releases the netlink socket.
func (m *Monitor) Close() error {
	return syscall.Close(m.fd)
}

// Run receives events and sends them to the provided channel until the
// context is cancelled or a socket error occurs. The channel is closed
// when Run returns.
func (m *Monitor) Run(ctx context.Context, events chan<- Event) error {
	defer close(events)

	buf := make([]byte, 8192)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Bounded receive timeout so cancellation is noticed.
		tv := syscall.Timeval{Sec: 1}
		if err := syscall.SetsockoptTimeval(m.fd, syscall.SOL_SOCKET, syscall.SO_RCVTIMEO, &tv); err != nil {
			return err
		}

		n, _, err := syscall.Recvfrom(m.fd, buf, 0)
		if err != nil {
			if errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK) || errors.Is(err, syscall.EINTR) {
				continue
			}
			return err
		}
		if n == 0 {
			continue
		}

		ev := ParseUEvent(buf[:n])
		if ev == nil || !m.wants(ev.Subsystem) {
			continue
		}

		select {
		case events <- *ev:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (m *Monitor) wants(subsystem string) bool {
	if len(m.subsystems) == 0 {
		return true
	}
	_, ok := m.subsystems[subsystem]
	return ok
}

// ParseUEvent parses a kernel uevent message of the form
// "ACTION@KOBJ\0KEY=VALUE\0KEY=VALUE\0...". It returns nil for messages
// that do not look like uevents. Exported for testing.
func ParseUEvent(data []byte) *Event {
	if len(data) == 0 {
		return nil
	}

	// udevd rebroadcasts events with a binary "libudev" header in front
	// of the payload; skip past it to the ACTION@KOBJ part.
	if bytes.HasPrefix(data, []byte("libudev")) {
		for i := 0; i < len(data)-1; i++ {
			if data[i] != 0 {
				continue
			}
			rest := data[i+1:]
			if idx := bytes.IndexByte(rest, '@'); idx > 0 && idx < 20 {
				data = rest
				break
			}
		}
	}

	parts := bytes.Split(data, []byte{0})
	if len(parts) == 0 || len(parts[0]) == 0 {
		return nil
	}

	header := string(parts[0])
	at := strings.Index(header, "@")
	if at < 1 {
		return nil
	}

	ev := &Event{
		Action: header[:at],
		KObj:   header[at+1:],
		Env:    make(map[string]string),
	}

	for _, part := range parts[1:] {
		if len(part) == 0 {
			continue
		}
		kv := string(part)
		eq := strings.Index(kv, "=")
		if eq < 1 {
			continue
		}
		key, value := kv[:eq], kv[eq+1:]
		ev.Env[key] = value

		switch key {
		case "SUBSYSTEM":
			ev.Subsystem = value
		case "DEVNAME":
			ev.DevName = value
		}
	}

	return ev
}
