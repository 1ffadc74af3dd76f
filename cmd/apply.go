package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smazurov/camctl/internal/config"
	"github.com/smazurov/camctl/internal/events"
	"github.com/smazurov/camctl/internal/logging"
	"github.com/smazurov/camctl/internal/metrics"
	"github.com/smazurov/camctl/internal/profile"
	"github.com/spf13/cobra"
)

// CreateApplyCmd creates the apply command.
func CreateApplyCmd() *cobra.Command {
	var (
		file     string
		name     string
		device   string
		validate bool
		watch    bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a control profile",
		Long: `Loads a named profile from a TOML file and writes its control values
to a device, one batch per control class. With --watch the file is
monitored and the profile is re-applied whenever it changes.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			f, err := profile.Load(file)
			if err != nil {
				return err
			}
			p, err := f.Get(name)
			if err != nil {
				return err
			}

			ref := device
			if ref == "" {
				ref = p.Device
			}
			if ref == "" {
				return fmt.Errorf("profile %q names no device, pass --device", name)
			}

			bus := events.New()
			defer bus.Subscribe(func(e events.ControlsAppliedEvent) {
				fmt.Printf("applied %d control(s) on %s (class 0x%08x)\n", e.Count, e.DevicePath, e.Class)
			})()

			if err := applyOnce(ref, name, p, validate, bus); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			logger := logging.GetLogger("profile")
			watcher := config.NewConfigWatcher(file, profile.Load, logger)
			defer bus.Subscribe(func(e events.ProfileReloadedEvent) {
				fmt.Printf("profile file %s reloaded (%d profiles)\n", e.Path, e.Profiles)
			})()
			defer watcher.OnReload(func(f profile.File) {
				bus.Publish(events.ProfileReloadedEvent{
					Path:      file,
					Profiles:  len(f.Profiles),
					Timestamp: time.Now().UTC().Format(time.RFC3339),
				})
				p, err := f.Get(name)
				if err != nil {
					logger.Error("profile vanished from file", "profile", name, "error", err)
					return
				}
				if err := applyOnce(ref, name, p, validate, bus); err != nil {
					logger.Error("re-applying profile", "profile", name, "error", err)
				}
			})()
			if err := watcher.Start(); err != nil {
				return fmt.Errorf("watching %s: %w", file, err)
			}
			defer watcher.Stop()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "profiles.toml", "Profile file to read")
	cmd.Flags().StringVarP(&name, "profile", "p", "default", "Profile name within the file")
	cmd.Flags().StringVarP(&device, "device", "d", "", "Device override (path, index, or stable ID)")
	cmd.Flags().BoolVar(&validate, "validate", false, "Check values with the driver before applying")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-apply when the profile file changes")
	return cmd
}

func applyOnce(ref, name string, p profile.Profile, validate bool, bus *events.Bus) error {
	dev, path, err := openDeviceRef(ref)
	if err != nil {
		return err
	}
	defer dev.Close()

	applied, err := profile.Apply(dev, path, p, validate, bus)
	metrics.CountControlWrites(path, applied, err)
	metrics.CountProfileApply(name, err)
	return err
}
