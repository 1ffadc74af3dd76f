//go:build linux

package v4l2

import "fmt"

// Capability flags reported by VIDIOC_QUERYCAP.
const (
	CapVideoCapture = 0x00000001
	CapVideoOutput  = 0x00000002
	CapVideoM2M     = 0x00008000
	CapAudio        = 0x00020000
	CapReadWrite    = 0x01000000
	CapStreaming    = 0x04000000
	CapMetaCapture  = 0x00800000
	CapDeviceCaps   = 0x80000000
)

// Capabilities describes what the V4L2 framework reports about a device:
// driver, card, bus and the capability bit sets.
type Capabilities struct {
	Driver     string
	Card       string
	BusInfo    string
	Version    string
	Caps       uint32
	DeviceCaps uint32
}

// Effective returns the capability set that applies to the opened node:
// DeviceCaps when the driver reports per-node capabilities, Caps
// otherwise.
func (c Capabilities) Effective() uint32 {
	if c.Caps&CapDeviceCaps != 0 {
		return c.DeviceCaps
	}
	return c.Caps
}

// Has reports whether the effective capability set contains flag.
func (c Capabilities) Has(flag uint32) bool {
	return c.Effective()&flag != 0
}

func capabilitiesFromQuerycap(q *v4l2Capability) Capabilities {
	return Capabilities{
		Driver:     cstr(q.driver[:]),
		Card:       cstr(q.card[:]),
		BusInfo:    cstr(q.busInfo[:]),
		Version:    fmt.Sprintf("%d.%d.%d", byte(q.version>>16), byte(q.version>>8), byte(q.version)),
		Caps:       q.capabilities,
		DeviceCaps: q.deviceCaps,
	}
}
