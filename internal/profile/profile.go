// Package profile loads named control profiles from TOML files and
// applies them to capture devices. A profile maps human-readable
// control names to desired values; applying one resolves the names
// against the device's advertised controls and writes the values in
// per-class batches.
package profile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Profile is one named set of control values. Keys in Controls are
// normalized control names ("white_balance_temperature_auto"), numeric
// control IDs in decimal or 0x hex, and values are TOML integers,
// booleans, or strings (menu item names).
type Profile struct {
	Device   string         `toml:"device"`
	Controls map[string]any `toml:"controls"`
}

// File is the on-disk shape of a profile file.
type File struct {
	Profiles map[string]Profile `toml:"profiles"`
}

// Load reads and parses a profile file.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("reading profile file: %w", err)
	}
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Get returns the named profile from the file.
func (f File) Get(name string) (Profile, error) {
	p, ok := f.Profiles[name]
	if !ok {
		names := make([]string, 0, len(f.Profiles))
		for n := range f.Profiles {
			names = append(names, n)
		}
		return Profile{}, fmt.Errorf("no profile %q (have: %s)", name, strings.Join(names, ", "))
	}
	return p, nil
}

// NormalizeName folds a driver-reported control name to profile-key
// form: lowercase, punctuation stripped, word runs joined by
// underscores. "White Balance Temperature, Auto" becomes
// "white_balance_temperature_auto".
func NormalizeName(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// parseID interprets a profile key as a numeric control ID.
func parseID(key string) (uint32, bool) {
	base := 10
	digits := key
	if strings.HasPrefix(key, "0x") || strings.HasPrefix(key, "0X") {
		base = 16
		digits = key[2:]
	}
	n, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}
