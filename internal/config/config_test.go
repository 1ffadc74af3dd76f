package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// serveOptions mirrors the shape of the daemon's option struct.
type serveOptions struct {
	Config         string
	Port           string `toml:"server.port" env:"SERVER_PORT"`
	AuthUsername   string `toml:"auth.username" env:"AUTH_USERNAME"`
	MetricsEnabled bool   `toml:"metrics.enabled" env:"METRICS_ENABLED"`
	LoggingLevel   string `toml:"logging.level" env:"LOGGING_LEVEL"`
}

func defaultOptions(configPath string) serveOptions {
	return serveOptions{
		Config:         configPath,
		Port:           ":8090",
		MetricsEnabled: true,
		LoggingLevel:   "info",
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
[server]
port = ":9000"

[auth]
username = "admin"

[metrics]
enabled = false

[logging]
level = "debug"
`)

	opts := defaultOptions(path)
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatal(err)
	}

	if opts.Port != ":9000" {
		t.Errorf("Port = %q", opts.Port)
	}
	if opts.AuthUsername != "admin" {
		t.Errorf("AuthUsername = %q", opts.AuthUsername)
	}
	if opts.MetricsEnabled {
		t.Error("MetricsEnabled not overridden by file")
	}
	if opts.LoggingLevel != "debug" {
		t.Errorf("LoggingLevel = %q", opts.LoggingLevel)
	}
}

func TestLoadConfigMissingFileKeepsDefaults(t *testing.T) {
	opts := defaultOptions(filepath.Join(t.TempDir(), "nope.toml"))
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatal(err)
	}
	if opts.Port != ":8090" || !opts.MetricsEnabled || opts.LoggingLevel != "info" {
		t.Errorf("defaults clobbered: %+v", opts)
	}
}

func TestLoadConfigPartialFile(t *testing.T) {
	path := writeConfig(t, `
[logging]
level = "warn"
`)

	opts := defaultOptions(path)
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatal(err)
	}
	if opts.LoggingLevel != "warn" {
		t.Errorf("LoggingLevel = %q", opts.LoggingLevel)
	}
	// Keys absent from the file keep their defaults.
	if opts.Port != ":8090" || !opts.MetricsEnabled {
		t.Errorf("unrelated options changed: %+v", opts)
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	path := writeConfig(t, "[server\nport=")
	opts := defaultOptions(path)
	if err := LoadConfig(&opts, nil); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
[server]
port = ":9000"
`)
	t.Setenv("CAMCTL_SERVER_PORT", ":7000")
	t.Setenv("CAMCTL_METRICS_ENABLED", "false")

	opts := defaultOptions(path)
	if err := LoadConfig(&opts, nil); err != nil {
		t.Fatal(err)
	}
	if opts.Port != ":7000" {
		t.Errorf("Port = %q, env should beat the file", opts.Port)
	}
	if opts.MetricsEnabled {
		t.Error("MetricsEnabled not overridden by env")
	}
}

func TestLoadConfigChangedFlagsWin(t *testing.T) {
	path := writeConfig(t, `
[server]
port = ":9000"

[logging]
level = "debug"
`)
	t.Setenv("CAMCTL_SERVER_PORT", ":7000")

	cmd := &cobra.Command{}
	cmd.Flags().String("port", ":8090", "")
	cmd.Flags().String("logging-level", "info", "")
	if err := cmd.Flags().Set("port", ":6000"); err != nil {
		t.Fatal(err)
	}

	// The CLI layer already stored the flag value in the struct.
	opts := defaultOptions(path)
	opts.Port = ":6000"
	if err := LoadConfig(&opts, cmd); err != nil {
		t.Fatal(err)
	}

	if opts.Port != ":6000" {
		t.Errorf("Port = %q, changed flag should beat file and env", opts.Port)
	}
	// Untouched flags still follow the file.
	if opts.LoggingLevel != "debug" {
		t.Errorf("LoggingLevel = %q", opts.LoggingLevel)
	}
}

func TestFlagName(t *testing.T) {
	tests := map[string]string{
		"Port":           "port",
		"AuthUsername":   "auth-username",
		"LoggingLevel":   "logging-level",
		"MetricsEnabled": "metrics-enabled",
	}
	for in, want := range tests {
		if got := flagName(in); got != want {
			t.Errorf("flagName(%q) = %q, want %q", in, got, want)
		}
	}
}
