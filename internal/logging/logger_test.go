package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func resetState() {
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	isInitialized = false
	mutex.Unlock()
}

func TestModuleLevelOverride(t *testing.T) {
	resetState()

	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"v4l2": "debug",
			"api":  "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"v4l2", true, true, true},
		{"api", false, false, true},
		{"devices", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			handler := GetLogger(tt.module).Handler()

			if got := handler.Enabled(context.Background(), slog.LevelDebug); got != tt.wantDebug {
				t.Errorf("Debug enabled = %v, want %v", got, tt.wantDebug)
			}
			if got := handler.Enabled(context.Background(), slog.LevelInfo); got != tt.wantInfo {
				t.Errorf("Info enabled = %v, want %v", got, tt.wantInfo)
			}
			if got := handler.Enabled(context.Background(), slog.LevelWarn); got != tt.wantWarn {
				t.Errorf("Warn enabled = %v, want %v", got, tt.wantWarn)
			}
		})
	}
}

func TestGetLoggerBeforeInitialize(t *testing.T) {
	resetState()

	logger := GetLogger("early")
	if logger == nil {
		t.Fatal("GetLogger returned nil before Initialize")
	}
	// Defaults to info until Initialize runs.
	if logger.Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("pre-Initialize logger should not enable debug")
	}

	// Initialize must re-level the already handed out logger's LevelVar.
	Initialize(Config{Level: "debug", Format: "text"})
	if !GetLogger("early").Handler().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Initialize did not re-level existing module logger")
	}
}

func TestGetLoggerIsCached(t *testing.T) {
	resetState()
	Initialize(Config{Level: "info", Format: "text"})

	if GetLogger("devices") != GetLogger("devices") {
		t.Error("GetLogger returned distinct loggers for one module")
	}
}

func TestFanoutRespectsEachHandlerLevel(t *testing.T) {
	var debugOut, warnOut bytes.Buffer
	h := fanout(
		slog.NewTextHandler(&debugOut, &slog.HandlerOptions{Level: slog.LevelDebug}),
		slog.NewTextHandler(&warnOut, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)

	logger := slog.New(h)
	logger.Debug("quiet message")
	logger.Warn("loud message")

	if !strings.Contains(debugOut.String(), "quiet message") || !strings.Contains(debugOut.String(), "loud message") {
		t.Errorf("debug handler output = %q", debugOut.String())
	}
	if strings.Contains(warnOut.String(), "quiet message") {
		t.Error("warn handler received a debug record")
	}
	if !strings.Contains(warnOut.String(), "loud message") {
		t.Errorf("warn handler output = %q", warnOut.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want *slog.Level
	}{
		{"debug", levelPtr(slog.LevelDebug)},
		{"INFO", levelPtr(slog.LevelInfo)},
		{"warning", levelPtr(slog.LevelWarn)},
		{"error", levelPtr(slog.LevelError)},
		{"bogus", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := parseLevel(tt.in)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("parseLevel(%q) = %v, want nil", tt.in, *got)
		case tt.want != nil && (got == nil || *got != *tt.want):
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, *tt.want)
		}
	}
}

func levelPtr(l slog.Level) *slog.Level { return &l }
