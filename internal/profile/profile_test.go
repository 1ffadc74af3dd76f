package profile

import (
	"os"
	"path/filepath"
	"testing"
)

func writeProfileFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeProfileFile(t, `
[profiles.daylight]
device = "usb-ACME_Cam-video-index0"

[profiles.daylight.controls]
brightness = 128
white_balance_temperature_auto = true
power_line_frequency = "50 Hz"

[profiles.night.controls]
gain = 255
`)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(f.Profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(f.Profiles))
	}

	daylight, err := f.Get("daylight")
	if err != nil {
		t.Fatal(err)
	}
	if daylight.Device != "usb-ACME_Cam-video-index0" {
		t.Errorf("device = %q", daylight.Device)
	}
	if v, ok := daylight.Controls["brightness"].(int64); !ok || v != 128 {
		t.Errorf("brightness = %v", daylight.Controls["brightness"])
	}
	if v, ok := daylight.Controls["white_balance_temperature_auto"].(bool); !ok || !v {
		t.Errorf("awb = %v", daylight.Controls["white_balance_temperature_auto"])
	}
	if v, ok := daylight.Controls["power_line_frequency"].(string); !ok || v != "50 Hz" {
		t.Errorf("plf = %v", daylight.Controls["power_line_frequency"])
	}

	if _, err := f.Get("studio"); err == nil {
		t.Error("expected error for missing profile")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadInvalidTOML(t *testing.T) {
	path := writeProfileFile(t, "[profiles.broken\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Brightness", "brightness"},
		{"White Balance Temperature, Auto", "white_balance_temperature_auto"},
		{"Power Line Frequency", "power_line_frequency"},
		{"Exposure (Absolute)", "exposure_absolute"},
		{"50 Hz", "50_hz"},
		{"  trailing  ", "trailing"},
	}
	for _, c := range cases {
		if got := NormalizeName(c.in); got != c.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseID(t *testing.T) {
	if id, ok := parseID("0x00980900"); !ok || id != 0x00980900 {
		t.Errorf("hex: %v %v", id, ok)
	}
	if id, ok := parseID("9963776"); !ok || id != 9963776 {
		t.Errorf("decimal: %v %v", id, ok)
	}
	if _, ok := parseID("brightness"); ok {
		t.Error("name parsed as ID")
	}
}
