package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// testProfiles is the shape apply --watch reloads.
type testProfiles struct {
	Default map[string]any `toml:"default"`
}

func loadTestProfiles(path string) (testProfiles, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return testProfiles{}, err
	}
	var p testProfiles
	if err := toml.Unmarshal(data, &p); err != nil {
		return testProfiles{}, err
	}
	return p, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeProfileFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func startWatcher[T any](t *testing.T, w *Watcher[T]) {
	t.Helper()
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { w.Stop() })
}

func waitReload[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
		panic("unreachable")
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	writeProfileFile(t, path, "[default]\nbrightness = 100\n")

	w := NewConfigWatcher(path, loadTestProfiles, discardLogger(),
		WithDebounce[testProfiles](50*time.Millisecond))
	reloads := make(chan testProfiles, 4)
	w.OnReload(func(p testProfiles) { reloads <- p })
	startWatcher(t, w)

	writeProfileFile(t, path, "[default]\nbrightness = 200\n")

	got := waitReload(t, reloads)
	if got.Default["brightness"] != int64(200) {
		t.Errorf("reloaded profiles = %+v", got)
	}
}

func TestWatcherSeesReplacedFile(t *testing.T) {
	// Editors often write a temp file and rename it over the original.
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.toml")
	writeProfileFile(t, path, "[default]\nbrightness = 100\n")

	w := NewConfigWatcher(path, loadTestProfiles, discardLogger(),
		WithDebounce[testProfiles](50*time.Millisecond))
	reloads := make(chan testProfiles, 4)
	w.OnReload(func(p testProfiles) { reloads <- p })
	startWatcher(t, w)

	tmp := filepath.Join(dir, "profiles.toml.tmp")
	writeProfileFile(t, tmp, "[default]\nbrightness = 150\n")
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}

	got := waitReload(t, reloads)
	if got.Default["brightness"] != int64(150) {
		t.Errorf("reloaded profiles = %+v", got)
	}
}

func TestWatcherDebouncesBursts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	writeProfileFile(t, path, "[default]\nbrightness = 0\n")

	w := NewConfigWatcher(path, loadTestProfiles, discardLogger(),
		WithDebounce[testProfiles](200*time.Millisecond))
	reloads := make(chan testProfiles, 8)
	w.OnReload(func(p testProfiles) { reloads <- p })
	startWatcher(t, w)

	for i := 1; i <= 3; i++ {
		writeProfileFile(t, path, "[default]\nbrightness = 42\n")
		time.Sleep(20 * time.Millisecond)
	}

	got := waitReload(t, reloads)
	if got.Default["brightness"] != int64(42) {
		t.Errorf("reloaded profiles = %+v", got)
	}

	select {
	case extra := <-reloads:
		t.Errorf("burst produced a second reload: %+v", extra)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcherLoadErrorSkipsHandlers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	writeProfileFile(t, path, "[default]\nbrightness = 100\n")

	reloads := make(chan testProfiles, 4)
	loadErrs := make(chan error, 4)
	w := NewConfigWatcher(path, loadTestProfiles, discardLogger(),
		WithDebounce[testProfiles](50*time.Millisecond),
		WithErrorHandler[testProfiles](func(err error) { loadErrs <- err }))
	w.OnReload(func(p testProfiles) { reloads <- p })
	startWatcher(t, w)

	writeProfileFile(t, path, "[default\nbroken")

	select {
	case err := <-loadErrs:
		if err == nil {
			t.Error("error handler called with nil")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for load error")
	}

	select {
	case got := <-reloads:
		t.Errorf("handler called despite load failure: %+v", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherUnsubscribe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	writeProfileFile(t, path, "[default]\nbrightness = 100\n")

	w := NewConfigWatcher(path, loadTestProfiles, discardLogger(),
		WithDebounce[testProfiles](50*time.Millisecond))
	kept := make(chan testProfiles, 4)
	dropped := make(chan testProfiles, 4)
	w.OnReload(func(p testProfiles) { kept <- p })
	unsubscribe := w.OnReload(func(p testProfiles) { dropped <- p })
	unsubscribe()
	startWatcher(t, w)

	writeProfileFile(t, path, "[default]\nbrightness = 200\n")

	waitReload(t, kept)
	select {
	case <-dropped:
		t.Error("unsubscribed handler still called")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherStop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	writeProfileFile(t, path, "[default]\nbrightness = 100\n")

	w := NewConfigWatcher(path, loadTestProfiles, discardLogger(),
		WithDebounce[testProfiles](50*time.Millisecond))
	reloads := make(chan testProfiles, 4)
	w.OnReload(func(p testProfiles) { reloads <- p })
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	if err := w.Stop(); err != nil {
		t.Fatal(err)
	}

	writeProfileFile(t, path, "[default]\nbrightness = 200\n")

	select {
	case got := <-reloads:
		t.Errorf("reload after Stop: %+v", got)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherStartMissingDirectory(t *testing.T) {
	w := NewConfigWatcher(filepath.Join(t.TempDir(), "gone", "profiles.toml"),
		loadTestProfiles, discardLogger())
	if err := w.Start(); err == nil {
		w.Stop()
		t.Fatal("expected error for missing directory")
	}
}
