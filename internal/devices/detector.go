package devices

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/smazurov/camctl/internal/logging"
	"github.com/smazurov/camctl/pkg/linuxav/v4l2"
)

// Filesystem roots and the device prober are package variables so tests
// can point them at fixtures instead of real hardware.
var (
	sysClassDir = "/sys/class/video4linux"
	devDir      = "/dev"
	byIDDir     = "/dev/v4l/by-id"
	byPathDir   = "/dev/v4l/by-path"

	probeDevice = openForProbe
)

// capsProber is the slice of v4l2.Device the detector needs.
type capsProber interface {
	QueryCaps() (v4l2.Capabilities, error)
	Close()
}

func openForProbe(path string) (capsProber, error) {
	return v4l2.WithPath(path)
}

// FindDevices scans the video4linux sysfs class for capture nodes and
// probes each one for its capabilities. Nodes that cannot be opened or
// that lack the capture capability are skipped. Results are sorted by
// node index.
func FindDevices() ([]DeviceInfo, error) {
	entries, err := os.ReadDir(sysClassDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []DeviceInfo{}, nil
		}
		return nil, fmt.Errorf("scanning %s: %w", sysClassDir, err)
	}

	logger := logging.GetLogger("devices")
	stableIDs := stableIDMap()

	devices := []DeviceInfo{}
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "video") {
			continue
		}
		path := filepath.Join(devDir, name)

		dev, err := probeDevice(path)
		if err != nil {
			logger.Debug("skipping unopenable node", "path", path, "error", err)
			continue
		}
		caps, err := dev.QueryCaps()
		dev.Close()
		if err != nil {
			logger.Debug("skipping node without capabilities", "path", path, "error", err)
			continue
		}
		if caps.Effective()&v4l2.CapVideoCapture == 0 {
			continue
		}

		id := stableIDs[path]
		if id == "" {
			id = fallbackID(caps.BusInfo, name)
		}

		devices = append(devices, DeviceInfo{
			DevicePath: path,
			DeviceName: caps.Card,
			DeviceID:   id,
			Driver:     caps.Driver,
			BusInfo:    caps.BusInfo,
			Caps:       caps.Effective(),
		})
	}

	sort.Slice(devices, func(i, j int) bool {
		return nodeIndex(devices[i].DevicePath) < nodeIndex(devices[j].DevicePath)
	})
	return devices, nil
}

// stableIDMap maps resolved node paths to their /dev/v4l/by-id names.
// When several symlinks point at the same node the lexically first one
// wins, which keeps IDs stable across scans.
func stableIDMap() map[string]string {
	entries, err := os.ReadDir(byIDDir)
	if err != nil {
		return map[string]string{}
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	ids := make(map[string]string, len(names))
	for _, name := range names {
		target, err := filepath.EvalSymlinks(filepath.Join(byIDDir, name))
		if err != nil {
			continue
		}
		if _, ok := ids[target]; !ok {
			ids[target] = name
		}
	}
	return ids
}

// fallbackID builds an identifier for nodes without a by-id symlink,
// typically platform cameras. Bus info is unique per device but not per
// node, so the node name is appended.
func fallbackID(busInfo, node string) string {
	if busInfo == "" {
		return node
	}
	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case ':', ' ', '/':
			return '-'
		}
		return r
	}, busInfo)
	return sanitized + "-" + node
}

func nodeIndex(path string) int {
	digits := strings.TrimLeft(filepath.Base(path), "video")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 1 << 30
	}
	return n
}

// ResolvePath converts any user-supplied device reference into a node
// path. Accepted forms are an absolute /dev path, a bare node index,
// a by-id or by-path name, or a device ID reported by FindDevices.
func ResolvePath(ref string) (string, error) {
	if strings.HasPrefix(ref, "/dev/") {
		return ref, nil
	}

	if index, err := strconv.Atoi(ref); err == nil {
		return filepath.Join(devDir, "video"+strconv.Itoa(index)), nil
	}

	if strings.HasPrefix(ref, "usb-") {
		candidate := filepath.Join(byIDDir, ref)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	if strings.HasPrefix(ref, "platform-") || strings.HasPrefix(ref, "usb-") {
		candidate := filepath.Join(byPathDir, ref)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	devices, err := FindDevices()
	if err != nil {
		return "", err
	}
	for _, dev := range devices {
		if dev.DeviceID == ref {
			return dev.DevicePath, nil
		}
	}

	return "", fmt.Errorf("no device matches %q", ref)
}
