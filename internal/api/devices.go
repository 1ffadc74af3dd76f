package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/camctl/internal/devices"
	"github.com/smazurov/camctl/internal/metrics"
	"github.com/smazurov/camctl/internal/profile"
	"github.com/smazurov/camctl/pkg/linuxav/v4l2"
)

// controlDevice is the slice of v4l2.Device the handlers need.
type controlDevice interface {
	QueryCaps() (v4l2.Capabilities, error)
	QueryControls() ([]v4l2.Description, error)
	Control(id uint32) (v4l2.Control, error)
	SetControls(ctrls []v4l2.Control) error
	TryControls(ctrls []v4l2.Control) error
	Close()
}

// Indirections over the device layer so tests can run without
// hardware.
var (
	listDevices = devices.FindDevices
	resolveRef  = devices.ResolvePath
	openDevice  = func(path string) (controlDevice, error) { return v4l2.WithPath(path) }
)

// DeviceRefInput identifies a device by path, index, or stable ID.
type DeviceRefInput struct {
	DeviceID string `path:"device_id" example:"usb-046d_HD_Pro_Webcam_C920-video-index0" doc:"Device path, node index, or stable identifier"`
}

// DeviceListResponse lists the discovered capture devices.
type DeviceListResponse struct {
	Body struct {
		Devices []devices.DeviceInfo `json:"devices" doc:"Discovered capture devices"`
	}
}

// CapsResponse reports a device's identity and capability flags.
type CapsResponse struct {
	Body struct {
		Driver       string   `json:"driver" example:"uvcvideo" doc:"Kernel driver name"`
		Card         string   `json:"card" example:"HD Pro Webcam C920" doc:"Device card name"`
		BusInfo      string   `json:"bus_info" example:"usb-0000:00:14.0-1" doc:"Bus location"`
		Version      string   `json:"version" example:"6.8.12" doc:"Driver version"`
		Caps         uint32   `json:"caps" doc:"Effective capability flags"`
		Capabilities []string `json:"capabilities" doc:"Capability flags as readable names"`
	}
}

// MenuItemModel is one selectable menu entry.
type MenuItemModel struct {
	Index int64  `json:"index" example:"1" doc:"Menu index"`
	Name  string `json:"name,omitempty" example:"50 Hz" doc:"Item name, empty for integer menus"`
	Value int64  `json:"value,omitempty" doc:"Item value for integer menus"`
}

// ControlModel describes one control and its current value.
type ControlModel struct {
	ID      uint32          `json:"id" example:"9963776" doc:"V4L2 control ID"`
	Key     string          `json:"key" example:"brightness" doc:"Normalized control name"`
	Name    string          `json:"name" example:"Brightness" doc:"Driver-reported control name"`
	Type    string          `json:"type" example:"int" doc:"Control value type"`
	Minimum int64           `json:"minimum" doc:"Lower bound"`
	Maximum int64           `json:"maximum" doc:"Upper bound"`
	Step    int64           `json:"step" doc:"Value step"`
	Default int64           `json:"default" doc:"Default value"`
	Flags   uint32          `json:"flags" doc:"Control flags"`
	Value   any             `json:"value,omitempty" doc:"Current value where readable"`
	Items   []MenuItemModel `json:"items,omitempty" doc:"Menu entries for menu controls"`
}

// ControlListResponse lists a device's controls.
type ControlListResponse struct {
	Body struct {
		Controls []ControlModel `json:"controls" doc:"Advertised controls"`
	}
}

// SetControlsInput carries the desired control values.
type SetControlsInput struct {
	DeviceRefInput
	Body struct {
		Controls map[string]any `json:"controls" doc:"Control name or ID to desired value"`
		Validate bool           `json:"validate,omitempty" doc:"Check values with the driver before applying"`
	}
}

// SetControlsResponse reports how many controls were written.
type SetControlsResponse struct {
	Body struct {
		Applied   int    `json:"applied" example:"3" doc:"Number of controls written"`
		Timestamp string `json:"timestamp" example:"2026-08-30T10:30:00Z" doc:"Completion time"`
	}
}

func (s *Server) registerDeviceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-devices",
		Method:      http.MethodGet,
		Path:        "/api/devices",
		Summary:     "List devices",
		Description: "List all V4L2 capture devices on this machine",
		Tags:        []string{"devices"},
		Security:    []map[string][]string{{"basicAuth": {}}},
	}, s.handleListDevices)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-device-caps",
		Method:      http.MethodGet,
		Path:        "/api/devices/{device_id}/caps",
		Summary:     "Device capabilities",
		Description: "Query a device's identity and capability flags",
		Tags:        []string{"devices"},
		Security:    []map[string][]string{{"basicAuth": {}}},
	}, s.handleDeviceCaps)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-device-controls",
		Method:      http.MethodGet,
		Path:        "/api/devices/{device_id}/controls",
		Summary:     "List controls",
		Description: "Enumerate a device's controls with their current values",
		Tags:        []string{"controls"},
		Security:    []map[string][]string{{"basicAuth": {}}},
	}, s.handleListControls)

	huma.Register(s.api, huma.Operation{
		OperationID: "set-device-controls",
		Method:      http.MethodPut,
		Path:        "/api/devices/{device_id}/controls",
		Summary:     "Set controls",
		Description: "Write control values in per-class batches",
		Tags:        []string{"controls"},
		Security:    []map[string][]string{{"basicAuth": {}}},
	}, s.handleSetControls)
}

func (s *Server) handleListDevices(ctx context.Context, input *struct{}) (*DeviceListResponse, error) {
	found, err := listDevices()
	if err != nil {
		return nil, huma.Error500InternalServerError("scanning devices", err)
	}
	resp := &DeviceListResponse{}
	resp.Body.Devices = found
	return resp, nil
}

func (s *Server) openRef(ref string) (controlDevice, string, error) {
	path, err := resolveRef(ref)
	if err != nil {
		return nil, "", huma.Error404NotFound(fmt.Sprintf("no device matches %q", ref), err)
	}
	dev, err := openDevice(path)
	metrics.CountDeviceOpen(path, err)
	if err != nil {
		return nil, "", huma.Error502BadGateway(fmt.Sprintf("opening %s", path), err)
	}
	return dev, path, nil
}

func (s *Server) handleDeviceCaps(ctx context.Context, input *DeviceRefInput) (*CapsResponse, error) {
	dev, _, err := s.openRef(input.DeviceID)
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	caps, err := dev.QueryCaps()
	if err != nil {
		return nil, huma.Error502BadGateway("querying capabilities", err)
	}

	resp := &CapsResponse{}
	resp.Body.Driver = caps.Driver
	resp.Body.Card = caps.Card
	resp.Body.BusInfo = caps.BusInfo
	resp.Body.Version = caps.Version
	resp.Body.Caps = caps.Effective()
	resp.Body.Capabilities = capabilityNames(caps.Effective())
	return resp, nil
}

func capabilityNames(caps uint32) []string {
	names := []string{}
	for _, c := range []struct {
		flag uint32
		name string
	}{
		{v4l2.CapVideoCapture, "Video Capture"},
		{v4l2.CapVideoOutput, "Video Output"},
		{v4l2.CapVideoM2M, "Video Memory-to-Memory"},
		{v4l2.CapAudio, "Audio"},
		{v4l2.CapMetaCapture, "Metadata Capture"},
		{v4l2.CapReadWrite, "Read/Write"},
		{v4l2.CapStreaming, "Streaming"},
	} {
		if caps&c.flag != 0 {
			names = append(names, c.name)
		}
	}
	return names
}

func (s *Server) handleListControls(ctx context.Context, input *DeviceRefInput) (*ControlListResponse, error) {
	dev, path, err := s.openRef(input.DeviceID)
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	descs, err := dev.QueryControls()
	if err != nil {
		return nil, huma.Error502BadGateway("enumerating controls", err)
	}

	models := make([]ControlModel, 0, len(descs))
	for _, d := range descs {
		m := ControlModel{
			ID:      d.ID,
			Key:     profile.NormalizeName(d.Name),
			Name:    d.Name,
			Type:    d.Type.String(),
			Minimum: d.Minimum,
			Maximum: d.Maximum,
			Step:    d.Step,
			Default: d.Default,
			Flags:   d.Flags,
		}
		for _, item := range d.Items {
			m.Items = append(m.Items, MenuItemModel{
				Index: int64(item.Index),
				Name:  item.Name,
				Value: item.Value,
			})
		}
		m.Value = currentValue(dev, path, d)
		models = append(models, m)
	}

	resp := &ControlListResponse{}
	resp.Body.Controls = models
	return resp, nil
}

// currentValue reads the control's value when its type supports the
// plain get path. Unsupported and unreadable controls yield nil.
func currentValue(dev controlDevice, path string, d v4l2.Description) any {
	switch d.Type {
	case v4l2.CtrlTypeInteger, v4l2.CtrlTypeInteger64, v4l2.CtrlTypeBoolean:
	default:
		return nil
	}

	ctrl, err := dev.Control(d.ID)
	metrics.CountControlRead(path, err)
	if err != nil {
		return nil
	}
	if d.Type == v4l2.CtrlTypeBoolean {
		return ctrl.Value.Boolean()
	}
	return ctrl.Value.Integer()
}

func (s *Server) handleSetControls(ctx context.Context, input *SetControlsInput) (*SetControlsResponse, error) {
	if len(input.Body.Controls) == 0 {
		return nil, huma.Error400BadRequest("no controls given")
	}

	dev, path, err := s.openRef(input.DeviceID)
	if err != nil {
		return nil, err
	}
	defer dev.Close()

	p := profile.Profile{Controls: normalizeJSONValues(input.Body.Controls)}
	applied, err := profile.Apply(dev, path, p, input.Body.Validate, nil)
	metrics.CountControlWrites(path, applied, err)
	if err != nil {
		return nil, huma.Error422UnprocessableEntity("applying controls", err)
	}

	resp := &SetControlsResponse{}
	resp.Body.Applied = applied
	resp.Body.Timestamp = time.Now().UTC().Format(time.RFC3339)
	return resp, nil
}

// normalizeJSONValues converts decoded JSON numbers to the int64 form
// the profile resolver expects.
func normalizeJSONValues(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		if f, ok := v.(float64); ok && f == float64(int64(f)) {
			out[k] = int64(f)
			continue
		}
		out[k] = v
	}
	return out
}
