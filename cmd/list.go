// Package cmd holds the camctl subcommands.
package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/smazurov/camctl/internal/devices"
	"github.com/spf13/cobra"
)

// CreateListCmd creates the list command.
func CreateListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List V4L2 capture devices",
		Long:  `Scans the system for video capture devices and prints their paths, names, and stable identifiers.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			found, err := devices.FindDevices()
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Println("no capture devices found")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tNAME\tDRIVER\tID")
			for _, d := range found {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.DevicePath, d.DeviceName, d.Driver, d.DeviceID)
			}
			return w.Flush()
		},
	}
}
