package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/smazurov/camctl/internal/metrics"
	"github.com/smazurov/camctl/internal/profile"
	"github.com/smazurov/camctl/pkg/linuxav/v4l2"
	"github.com/spf13/cobra"
)

// CreateControlsCmd creates the controls command.
func CreateControlsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "controls <device>",
		Short: "List device controls",
		Long:  `Enumerates every control the device advertises, with its type, range, default, and current value. Menu controls list their selectable items.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dev, path, err := openDeviceRef(args[0])
			if err != nil {
				return err
			}
			defer dev.Close()

			descs, err := dev.QueryControls()
			if err != nil {
				return fmt.Errorf("enumerating controls: %w", err)
			}
			if len(descs) == 0 {
				fmt.Println("device advertises no controls")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "CONTROL\tTYPE\tRANGE\tDEFAULT\tVALUE")
			for _, d := range descs {
				value := readValue(dev, path, d)
				fmt.Fprintf(w, "%s\t%s\t%d..%d\t%d\t%s\n",
					profile.NormalizeName(d.Name), d.Type, d.Minimum, d.Maximum, d.Default, value)
				for _, item := range d.Items {
					label := item.Name
					if label == "" {
						label = strconv.FormatInt(item.Value, 10)
					}
					fmt.Fprintf(w, "  [%d] %s\t\t\t\t\n", item.Index, label)
				}
			}
			return w.Flush()
		},
	}
}

func readValue(dev *v4l2.Device, path string, d v4l2.Description) string {
	switch d.Type {
	case v4l2.CtrlTypeInteger, v4l2.CtrlTypeInteger64, v4l2.CtrlTypeBoolean:
	default:
		return "-"
	}

	ctrl, err := dev.Control(d.ID)
	metrics.CountControlRead(path, err)
	if err != nil {
		return "-"
	}
	if d.Type == v4l2.CtrlTypeBoolean {
		return strconv.FormatBool(ctrl.Value.Boolean())
	}
	return strconv.FormatInt(ctrl.Value.Integer(), 10)
}

// findControl matches a user-supplied control reference against the
// device's advertised controls.
func findControl(descs []v4l2.Description, ref string) (v4l2.Description, error) {
	for _, d := range descs {
		if profile.NormalizeName(d.Name) == profile.NormalizeName(ref) {
			return d, nil
		}
	}
	if id, err := strconv.ParseUint(strings.TrimPrefix(ref, "0x"), parseBase(ref), 32); err == nil {
		for _, d := range descs {
			if d.ID == uint32(id) {
				return d, nil
			}
		}
	}
	return v4l2.Description{}, fmt.Errorf("device has no control %q", ref)
}

func parseBase(ref string) int {
	if strings.HasPrefix(ref, "0x") || strings.HasPrefix(ref, "0X") {
		return 16
	}
	return 10
}

// CreateGetCmd creates the get command.
func CreateGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <device> <control>",
		Short: "Read one control value",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			dev, path, err := openDeviceRef(args[0])
			if err != nil {
				return err
			}
			defer dev.Close()

			descs, err := dev.QueryControls()
			if err != nil {
				return fmt.Errorf("enumerating controls: %w", err)
			}
			desc, err := findControl(descs, args[1])
			if err != nil {
				return err
			}

			ctrl, err := dev.Control(desc.ID)
			metrics.CountControlRead(path, err)
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[1], err)
			}

			fmt.Println(ctrl.Value.String())
			return nil
		},
	}
}

// CreateSetCmd creates the set command.
func CreateSetCmd() *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "set <device> <control>=<value> ...",
		Short: "Write control values",
		Long:  `Writes one or more control values, batched per control class. Values may be integers, booleans, or menu item names.`,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			controls := make(map[string]any, len(args)-1)
			for _, arg := range args[1:] {
				key, raw, found := strings.Cut(arg, "=")
				if !found {
					return fmt.Errorf("expected <control>=<value>, got %q", arg)
				}
				controls[key] = parseValue(raw)
			}

			dev, path, err := openDeviceRef(args[0])
			if err != nil {
				return err
			}
			defer dev.Close()

			applied, err := profile.Apply(dev, path, profile.Profile{Controls: controls}, validate, nil)
			metrics.CountControlWrites(path, applied, err)
			if err != nil {
				return err
			}
			fmt.Printf("applied %d control(s)\n", applied)
			return nil
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "Check values with the driver before applying")
	return cmd
}

// parseValue interprets a CLI value the way TOML would: integer,
// boolean, or string.
func parseValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
