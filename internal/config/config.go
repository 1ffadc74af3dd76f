// Package config fills option structs from a TOML file and CAMCTL_
// environment variables, and reloads files via Watcher.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// envPrefix is prepended to every env tag.
const envPrefix = "CAMCTL_"

// LoadConfig fills opts from its TOML file and the environment.
// Precedence, highest first: flags changed on the command line, CAMCTL_
// environment variables, the file, then the defaults already in opts.
// The file path comes from the struct's Config field; a missing file is
// not an error.
func LoadConfig(opts any, cmd *cobra.Command) error {
	v := reflect.ValueOf(opts).Elem()
	fields := collectFields(v)
	locked := changedFlags(cmd)

	if path := configPath(v); path != "" {
		if err := applyFile(path, fields, locked); err != nil {
			return err
		}
	}
	applyEnv(fields, locked)
	return nil
}

// field is one settable option with its bindings.
type field struct {
	value reflect.Value
	flag  string // kebab-case CLI flag name
	toml  string // dotted key in the file, e.g. "server.port"
	env   string // env key without the CAMCTL_ prefix
}

func collectFields(v reflect.Value) []field {
	t := v.Type()
	fields := make([]field, 0, v.NumField())
	for i := 0; i < v.NumField(); i++ {
		ft := t.Field(i)
		fields = append(fields, field{
			value: v.Field(i),
			flag:  flagName(ft.Name),
			toml:  ft.Tag.Get("toml"),
			env:   ft.Tag.Get("env"),
		})
	}
	return fields
}

// changedFlags reports which flags the user set explicitly; those
// fields already hold the CLI value and must not be overwritten.
func changedFlags(cmd *cobra.Command) map[string]bool {
	changed := make(map[string]bool)
	if cmd == nil {
		return changed
	}
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed {
			changed[f.Name] = true
		}
	})
	return changed
}

// configPath returns the value of the struct's Config field, if any.
func configPath(v reflect.Value) string {
	f := v.FieldByName("Config")
	if !f.IsValid() || f.Kind() != reflect.String {
		return ""
	}
	return f.String()
}

func applyFile(path string, fields []field, locked map[string]bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	for _, f := range fields {
		if f.toml == "" || locked[f.flag] {
			continue
		}
		if raw, ok := lookup(doc, f.toml); ok {
			assign(f.value, raw)
		}
	}
	return nil
}

func applyEnv(fields []field, locked map[string]bool) {
	for _, f := range fields {
		if f.env == "" || locked[f.flag] {
			continue
		}
		if raw := os.Getenv(envPrefix + f.env); raw != "" {
			assignString(f.value, raw)
		}
	}
}

// lookup walks a dotted key through nested TOML tables.
func lookup(doc map[string]any, key string) (any, bool) {
	parts := strings.Split(key, ".")
	table := doc
	for _, part := range parts[:len(parts)-1] {
		next, ok := table[part].(map[string]any)
		if !ok {
			return nil, false
		}
		table = next
	}
	raw, ok := table[parts[len(parts)-1]]
	return raw, ok
}

// assign stores a decoded TOML value into the field. Only the kinds the
// option structs actually use are handled.
func assign(f reflect.Value, raw any) {
	if !f.CanSet() {
		return
	}
	switch f.Kind() {
	case reflect.String:
		if s, ok := raw.(string); ok {
			f.SetString(s)
		}
	case reflect.Bool:
		if b, ok := raw.(bool); ok {
			f.SetBool(b)
		}
	case reflect.Int, reflect.Int64:
		if i, ok := raw.(int64); ok {
			f.SetInt(i)
		}
	}
}

func assignString(f reflect.Value, raw string) {
	if !f.CanSet() {
		return
	}
	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Bool:
		if b, err := strconv.ParseBool(raw); err == nil {
			f.SetBool(b)
		}
	case reflect.Int, reflect.Int64:
		if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
			f.SetInt(i)
		}
	}
}

// flagName derives the CLI flag for a struct field the same way humacli
// does: "LoggingLevel" becomes "logging-level".
func flagName(fieldName string) string {
	var b strings.Builder
	for i, r := range fieldName {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('-')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
