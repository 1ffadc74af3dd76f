package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/smazurov/camctl/internal/devices"
	"github.com/smazurov/camctl/internal/events"
	"github.com/smazurov/camctl/internal/logging"
	"github.com/smazurov/camctl/internal/metrics"
	"github.com/smazurov/camctl/pkg/linuxav/hotplug"
	"github.com/spf13/cobra"
)

// CreateWatchCmd creates the watch command.
func CreateWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Watch for camera attach and detach events",
		Long:  `Listens to kernel uevents and prints a line whenever a video capture node appears or disappears.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			monitor, err := hotplug.NewMonitor(hotplug.SubsystemVideo4Linux)
			if err != nil {
				return fmt.Errorf("opening uevent socket: %w", err)
			}
			defer monitor.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			bus := events.New()
			defer bus.Subscribe(func(e events.DeviceAttachedEvent) {
				metrics.CountHotplugEvent(hotplug.ActionAdd)
				if e.DeviceName != "" {
					fmt.Printf("%s attached: %s (%s)\n", e.Timestamp, e.DevicePath, e.DeviceName)
					return
				}
				fmt.Printf("%s attached: %s\n", e.Timestamp, e.DevicePath)
			})()
			defer bus.Subscribe(func(e events.DeviceDetachedEvent) {
				metrics.CountHotplugEvent(hotplug.ActionRemove)
				fmt.Printf("%s detached: %s\n", e.Timestamp, e.DevicePath)
			})()

			// Run closes uevents when it returns.
			uevents := make(chan hotplug.Event, 16)
			go func() {
				if err := monitor.Run(ctx, uevents); err != nil {
					logging.GetLogger("devices").Error("uevent monitor stopped", "error", err)
				}
			}()

			fmt.Println("watching for camera events, Ctrl-C to stop")
			devices.Watch(ctx, uevents, bus)
			return nil
		},
	}
}
