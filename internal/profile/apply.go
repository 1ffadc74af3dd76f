package profile

import (
	"fmt"
	"sort"
	"time"

	"github.com/smazurov/camctl/internal/events"
	"github.com/smazurov/camctl/internal/logging"
	"github.com/smazurov/camctl/pkg/linuxav/v4l2"
)

// ControlSetter is the slice of v4l2.Device that profile application
// needs.
type ControlSetter interface {
	QueryControls() ([]v4l2.Description, error)
	SetControls(ctrls []v4l2.Control) error
	TryControls(ctrls []v4l2.Control) error
}

// Resolve matches the profile's control keys against the device's
// advertised controls and converts the TOML values to typed control
// values. Keys resolve by normalized name first, then as a numeric ID.
func Resolve(descs []v4l2.Description, p Profile) ([]v4l2.Control, error) {
	byName := make(map[string]v4l2.Description, len(descs))
	byID := make(map[uint32]v4l2.Description, len(descs))
	for _, d := range descs {
		byName[NormalizeName(d.Name)] = d
		byID[d.ID] = d
	}

	keys := make([]string, 0, len(p.Controls))
	for k := range p.Controls {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ctrls := make([]v4l2.Control, 0, len(keys))
	for _, key := range keys {
		desc, ok := byName[NormalizeName(key)]
		if !ok {
			if id, isNum := parseID(key); isNum {
				desc, ok = byID[id]
			}
		}
		if !ok {
			return nil, fmt.Errorf("device has no control %q", key)
		}

		value, err := convert(desc, p.Controls[key])
		if err != nil {
			return nil, fmt.Errorf("control %q: %w", key, err)
		}
		ctrls = append(ctrls, v4l2.Control{ID: desc.ID, Value: value})
	}
	return ctrls, nil
}

// convert turns a TOML value into a control value matching the
// control's advertised type, range-checking numeric values.
func convert(desc v4l2.Description, raw any) (v4l2.Value, error) {
	switch desc.Type {
	case v4l2.CtrlTypeBoolean:
		switch v := raw.(type) {
		case bool:
			return v4l2.BooleanValue(v), nil
		case int64:
			if v != 0 && v != 1 {
				return v4l2.Value{}, fmt.Errorf("boolean control wants 0 or 1, got %d", v)
			}
			return v4l2.BooleanValue(v == 1), nil
		}
		return v4l2.Value{}, fmt.Errorf("boolean control wants true/false, got %T", raw)

	case v4l2.CtrlTypeMenu, v4l2.CtrlTypeIntegerMenu:
		switch v := raw.(type) {
		case int64:
			return menuIndex(desc, v)
		case string:
			for _, item := range desc.Items {
				if NormalizeName(item.Name) == NormalizeName(v) {
					return v4l2.IntegerValue(int64(item.Index)), nil
				}
			}
			return v4l2.Value{}, fmt.Errorf("menu has no item %q", v)
		}
		return v4l2.Value{}, fmt.Errorf("menu control wants an index or item name, got %T", raw)

	case v4l2.CtrlTypeInteger, v4l2.CtrlTypeInteger64:
		v, ok := raw.(int64)
		if !ok {
			return v4l2.Value{}, fmt.Errorf("integer control wants a number, got %T", raw)
		}
		if v < desc.Minimum || v > desc.Maximum {
			return v4l2.Value{}, fmt.Errorf("value %d outside range [%d, %d]", v, desc.Minimum, desc.Maximum)
		}
		return v4l2.IntegerValue(v), nil

	case v4l2.CtrlTypeString:
		v, ok := raw.(string)
		if !ok {
			return v4l2.Value{}, fmt.Errorf("string control wants a string, got %T", raw)
		}
		return v4l2.StringValue(v), nil
	}

	return v4l2.Value{}, fmt.Errorf("cannot set control of type %s from a profile", desc.Type)
}

func menuIndex(desc v4l2.Description, v int64) (v4l2.Value, error) {
	if v < desc.Minimum || v > desc.Maximum {
		return v4l2.Value{}, fmt.Errorf("menu index %d outside range [%d, %d]", v, desc.Minimum, desc.Maximum)
	}
	return v4l2.IntegerValue(v), nil
}

// Apply resolves the profile against the device and writes the values,
// one batch per control class. With validate set, each batch is checked
// with a try request before being committed. Returns the number of
// controls written; on error the device may be left with earlier
// batches applied.
func Apply(dev ControlSetter, devicePath string, p Profile, validate bool, bus *events.Bus) (int, error) {
	descs, err := dev.QueryControls()
	if err != nil {
		return 0, fmt.Errorf("enumerating controls: %w", err)
	}
	ctrls, err := Resolve(descs, p)
	if err != nil {
		return 0, err
	}
	if len(ctrls) == 0 {
		return 0, nil
	}

	byClass := make(map[uint32][]v4l2.Control)
	for _, c := range ctrls {
		class := v4l2.Class(c.ID)
		byClass[class] = append(byClass[class], c)
	}
	classes := make([]uint32, 0, len(byClass))
	for class := range byClass {
		classes = append(classes, class)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })

	logger := logging.GetLogger("profile")
	applied := 0
	for _, class := range classes {
		batch := byClass[class]
		if validate {
			if err := dev.TryControls(batch); err != nil {
				return applied, fmt.Errorf("validating class 0x%08x batch: %w", class, err)
			}
		}
		if err := dev.SetControls(batch); err != nil {
			return applied, fmt.Errorf("applying class 0x%08x batch: %w", class, err)
		}
		applied += len(batch)
		logger.Debug("applied control batch", "device", devicePath, "class", fmt.Sprintf("0x%08x", class), "count", len(batch))

		if bus != nil {
			bus.Publish(events.ControlsAppliedEvent{
				DevicePath: devicePath,
				Class:      class,
				Count:      len(batch),
				Timestamp:  time.Now().UTC().Format(time.RFC3339),
			})
		}
	}
	return applied, nil
}
