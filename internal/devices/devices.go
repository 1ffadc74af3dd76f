// Package devices discovers V4L2 capture nodes on the local machine and
// resolves the different ways a user may name one: a /dev path, a bare
// node index, or a stable by-id name that survives reboots and re-plugs.
package devices

import (
	"github.com/smazurov/camctl/pkg/linuxav/v4l2"
)

// DeviceInfo describes one video capture node.
type DeviceInfo struct {
	DevicePath string `json:"device_path" example:"/dev/video0" doc:"Path to the video device node"`
	DeviceName string `json:"device_name" example:"HD Pro Webcam C920" doc:"Device card name"`
	DeviceID   string `json:"device_id" example:"usb-046d_HD_Pro_Webcam_C920-video-index0" doc:"Stable device identifier"`
	Driver     string `json:"driver" example:"uvcvideo" doc:"Kernel driver name"`
	BusInfo    string `json:"bus_info" example:"usb-0000:00:14.0-1" doc:"Bus location"`
	Caps       uint32 `json:"caps" doc:"Effective capability flags"`
}

// IsCapture reports whether the node exposes the video capture capability.
func (d DeviceInfo) IsCapture() bool {
	return d.Caps&v4l2.CapVideoCapture != 0
}
