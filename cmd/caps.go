package cmd

import (
	"fmt"

	"github.com/smazurov/camctl/internal/devices"
	"github.com/smazurov/camctl/internal/metrics"
	"github.com/smazurov/camctl/pkg/linuxav/v4l2"
	"github.com/spf13/cobra"
)

// openDeviceRef resolves a device reference and opens the node.
func openDeviceRef(ref string) (*v4l2.Device, string, error) {
	path, err := devices.ResolvePath(ref)
	if err != nil {
		return nil, "", err
	}
	dev, err := v4l2.WithPath(path)
	metrics.CountDeviceOpen(path, err)
	if err != nil {
		return nil, "", fmt.Errorf("opening %s: %w", path, err)
	}
	return dev, path, nil
}

// CreateCapsCmd creates the caps command.
func CreateCapsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "caps <device>",
		Short: "Show device capabilities",
		Long:  `Prints the driver, card name, bus location, and capability flags of a capture device. The device may be given as a path, a node index, or a stable ID.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dev, path, err := openDeviceRef(args[0])
			if err != nil {
				return err
			}
			defer dev.Close()

			caps, err := dev.QueryCaps()
			if err != nil {
				return fmt.Errorf("querying capabilities: %w", err)
			}

			fmt.Printf("Device   : %s\n", path)
			fmt.Printf("Driver   : %s\n", caps.Driver)
			fmt.Printf("Card     : %s\n", caps.Card)
			fmt.Printf("Bus info : %s\n", caps.BusInfo)
			fmt.Printf("Version  : %s\n", caps.Version)
			fmt.Printf("Caps     : 0x%08x\n", caps.Effective())
			return nil
		},
	}
}
