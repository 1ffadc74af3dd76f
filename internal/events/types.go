package events

// Event type constants for kelindar/event.
const (
	TypeDeviceAttached uint32 = iota + 1
	TypeDeviceDetached
	TypeControlsApplied
	TypeProfileReloaded
)

// Event interface required by kelindar/event.
type Event interface {
	Type() uint32
}

// DeviceAttachedEvent fires when a video capture node appears.
type DeviceAttachedEvent struct {
	DevicePath string `json:"device_path" example:"/dev/video0" doc:"Path to the video device"`
	DeviceName string `json:"device_name" example:"HD Pro Webcam C920" doc:"Device card name"`
	Timestamp  string `json:"timestamp" example:"2026-08-30T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DeviceAttachedEvent.
func (e DeviceAttachedEvent) Type() uint32 { return TypeDeviceAttached }

// DeviceDetachedEvent fires when a video capture node disappears.
type DeviceDetachedEvent struct {
	DevicePath string `json:"device_path" example:"/dev/video0" doc:"Path to the video device"`
	Timestamp  string `json:"timestamp" example:"2026-08-30T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for DeviceDetachedEvent.
func (e DeviceDetachedEvent) Type() uint32 { return TypeDeviceDetached }

// ControlsAppliedEvent fires after a control batch was written to a
// device, one event per control class batch.
type ControlsAppliedEvent struct {
	DevicePath string `json:"device_path" example:"/dev/video0" doc:"Path to the video device"`
	Class      uint32 `json:"class" example:"9961472" doc:"Control class of the applied batch"`
	Count      int    `json:"count" example:"3" doc:"Number of controls in the batch"`
	Timestamp  string `json:"timestamp" example:"2026-08-30T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ControlsAppliedEvent.
func (e ControlsAppliedEvent) Type() uint32 { return TypeControlsApplied }

// ProfileReloadedEvent fires when a watched control profile file
// changed on disk and was reloaded.
type ProfileReloadedEvent struct {
	Path      string `json:"path" example:"profiles.toml" doc:"Profile file path"`
	Profiles  int    `json:"profiles" example:"2" doc:"Number of profiles in the file"`
	Timestamp string `json:"timestamp" example:"2026-08-30T10:30:00Z" doc:"Event timestamp"`
}

// Type returns the event type identifier for ProfileReloadedEvent.
func (e ProfileReloadedEvent) Type() uint32 { return TypeProfileReloaded }
