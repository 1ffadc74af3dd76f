package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/camctl/cmd"
	"github.com/smazurov/camctl/internal/api"
	"github.com/smazurov/camctl/internal/config"
	"github.com/smazurov/camctl/internal/devices"
	"github.com/smazurov/camctl/internal/events"
	"github.com/smazurov/camctl/internal/logging"
	"github.com/smazurov/camctl/internal/metrics"
	"github.com/smazurov/camctl/internal/systemd"
	"github.com/smazurov/camctl/pkg/linuxav/hotplug"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`

	// Server settings
	Port string `help:"Port to listen on" short:"p" default:":8090" toml:"server.port" env:"SERVER_PORT"`

	// Auth settings
	AuthUsername string `help:"Basic auth username" default:"" toml:"auth.username" env:"AUTH_USERNAME"`
	AuthPassword string `help:"Basic auth password" default:"" toml:"auth.password" env:"AUTH_PASSWORD"`

	// Metrics settings
	MetricsEnabled bool `help:"Serve Prometheus metrics on /metrics" default:"true" toml:"metrics.enabled" env:"METRICS_ENABLED"`

	// Hotplug settings
	HotplugEnabled bool `help:"Track camera attach/detach events" default:"true" toml:"hotplug.enabled" env:"HOTPLUG_ENABLED"`

	// Logging settings
	LoggingLevel   string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat  string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingV4L2    string `help:"V4L2 layer logging level" default:"info" toml:"logging.v4l2" env:"LOGGING_V4L2"`
	LoggingDevices string `help:"Device discovery logging level" default:"info" toml:"logging.devices" env:"LOGGING_DEVICES"`
	LoggingProfile string `help:"Profile logging level" default:"info" toml:"logging.profile" env:"LOGGING_PROFILE"`
	LoggingAPI     string `help:"API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, nil); loadErr != nil {
			logging.GetLogger("main").Warn("failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"v4l2":    opts.LoggingV4L2,
				"devices": opts.LoggingDevices,
				"profile": opts.LoggingProfile,
				"api":     opts.LoggingAPI,
			},
		})
		logger := logging.GetLogger("main")

		apiOpts := &api.Options{
			AuthUsername: opts.AuthUsername,
			AuthPassword: opts.AuthPassword,
		}
		if opts.MetricsEnabled {
			apiOpts.PrometheusHandler = metrics.HTTPHandler()
		}
		server := api.NewServer(apiOpts)

		// Track hotplug events while the server runs so metrics and
		// logs reflect cameras coming and going.
		bus := events.New()
		bus.Subscribe(func(e events.DeviceAttachedEvent) {
			metrics.CountHotplugEvent(hotplug.ActionAdd)
		})
		bus.Subscribe(func(e events.DeviceDetachedEvent) {
			metrics.CountHotplugEvent(hotplug.ActionRemove)
		})

		hotplugCtx, stopHotplug := context.WithCancel(context.Background())
		var monitor *hotplug.Monitor

		hooks.OnStart(func() {
			if opts.HotplugEnabled {
				m, err := hotplug.NewMonitor(hotplug.SubsystemVideo4Linux)
				if err != nil {
					logger.Warn("hotplug monitoring unavailable", "error", err)
				} else {
					monitor = m
					// Run closes uevents when it returns.
					uevents := make(chan hotplug.Event, 16)
					go func() {
						if runErr := m.Run(hotplugCtx, uevents); runErr != nil {
							logger.Warn("uevent monitor stopped", "error", runErr)
						}
					}()
					go devices.Watch(hotplugCtx, uevents, bus)
				}
			}

			systemd.NotifyReady()
			logger.Info("starting HTTP server", "port", opts.Port)
			if startErr := server.Start(opts.Port); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
				logger.Error("failed to start HTTP server", "error", startErr)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			systemd.NotifyStopping()
			logger.Info("shutting down")
			stopHotplug()
			if monitor != nil {
				monitor.Close()
			}
			if stopErr := server.Stop(); stopErr != nil {
				logger.Error("error stopping HTTP server", "error", stopErr)
			}
		})
	})

	root := cli.Root()
	root.Use = "camctl"
	root.AddCommand(
		cmd.CreateListCmd(),
		cmd.CreateCapsCmd(),
		cmd.CreateControlsCmd(),
		cmd.CreateGetCmd(),
		cmd.CreateSetCmd(),
		cmd.CreateApplyCmd(),
		cmd.CreateWatchCmd(),
		cmd.CreateUpdateCmd(),
		cmd.CreateVersionCmd(),
	)

	cli.Run()
}
