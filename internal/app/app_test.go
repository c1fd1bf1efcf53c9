package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/pad/internal/config"
	"github.com/dshills/pad/internal/renderer/backend"
)

type recordingAlerter struct {
	alerts []string
}

func (a *recordingAlerter) Alert(title, message string) {
	a.alerts = append(a.alerts, title+": "+message)
}

func noEnv() []string { return nil }

func newTestApp(t *testing.T, cfg *config.Config) *Application {
	t.Helper()
	if cfg == nil {
		cfg = config.Default()
	}
	app, err := New(Options{Config: cfg, Environ: noEnv})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(app.Shutdown)
	return app
}

// runWith posts events to a fresh null backend and runs the app to completion.
func runWith(t *testing.T, app *Application, events ...backend.Event) (*backend.NullBackend, *recordingAlerter, error) {
	t.Helper()
	b := backend.NewNullBackend(40, 5)
	for _, ev := range events {
		b.PostEvent(ev)
	}
	alerter := &recordingAlerter{}
	if err := app.SetBackend(b); err != nil {
		t.Fatalf("SetBackend() failed: %v", err)
	}
	if err := app.SetAlerter(alerter); err != nil {
		t.Fatalf("SetAlerter() failed: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- app.Run() }()

	select {
	case err := <-done:
		return b, alerter, err
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return")
		return nil, nil, nil
	}
}

func text(s string) backend.Event {
	return backend.Event{Type: backend.EventText, Text: s}
}

func key(k backend.Key, mod backend.ModMask) backend.Event {
	return backend.Event{Type: backend.EventKey, Key: k, Mod: mod}
}

var quit = backend.Event{Type: backend.EventQuit}

func TestNew_Defaults(t *testing.T) {
	app := newTestApp(t, nil)

	if app.Line().Capacity() != 256 {
		t.Errorf("Capacity() = %d, want 256", app.Line().Capacity())
	}
	if app.State() != StateRunning {
		t.Errorf("State() = %v, want running", app.State())
	}
	if app.IsRunning() {
		t.Error("IsRunning() should be false before Run()")
	}
	if app.Logger() == nil || app.Metrics() == nil || app.Config() == nil {
		t.Error("expected logger, metrics and config to be initialized")
	}
}

func TestNew_Overrides(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "pad.log")
	app, err := New(Options{
		Config:   config.Default(),
		LogLevel: "debug",
		LogFile:  logFile,
		Watch:    true,
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer app.Shutdown()

	cfg := app.Config()
	if cfg.Log.Level != "debug" || cfg.Log.File != logFile || !cfg.Watch.Enabled {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if _, err := os.Stat(logFile); err != nil {
		t.Errorf("log file not created: %v", err)
	}
}

func TestNew_Errors(t *testing.T) {
	bad := config.Default()
	bad.Editor.Capacity = 1

	_, err := New(Options{Config: bad})
	var ierr *InitError
	if !errors.As(err, &ierr) || ierr.Component != "config" {
		t.Errorf("New(bad config) error = %v, want config InitError", err)
	}

	_, err = New(Options{ConfigPath: filepath.Join(t.TempDir(), "missing.toml"), Environ: noEnv})
	if !errors.Is(err, config.ErrFileNotFound) {
		t.Errorf("New(missing file) error = %v, want ErrFileNotFound", err)
	}

	_, err = New(Options{Config: config.Default(), LogLevel: "loud"})
	if !errors.As(err, &ierr) {
		t.Errorf("New(bad log level) error = %v, want InitError", err)
	}
}

func TestNew_LoadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pad.toml")
	if err := os.WriteFile(path, []byte("[editor]\ncapacity = 16\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	app, err := New(Options{ConfigPath: path, Environ: noEnv})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer app.Shutdown()

	if app.Line().Capacity() != 16 {
		t.Errorf("Capacity() = %d, want 16", app.Line().Capacity())
	}
}

func TestRun_NoBackend(t *testing.T) {
	app := newTestApp(t, nil)

	if err := app.Run(); !errors.Is(err, ErrNoBackend) {
		t.Errorf("Run() = %v, want ErrNoBackend", err)
	}
}

func TestRun_QuitPaths(t *testing.T) {
	tests := []struct {
		name string
		ev   backend.Event
	}{
		{"quit event", quit},
		{"escape", key(backend.KeyEscape, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t, nil)
			b, alerter, err := runWith(t, app, tt.ev)
			if err != nil {
				t.Fatalf("Run() = %v, want nil", err)
			}
			if app.State() != StateTerminated {
				t.Errorf("State() = %v, want terminated", app.State())
			}
			if b.Shows() != 1 {
				t.Errorf("Shows() = %d, want 1 initial frame", b.Shows())
			}
			if len(alerter.alerts) != 0 {
				t.Errorf("unexpected alerts: %v", alerter.alerts)
			}
		})
	}
}

func TestRun_Editing(t *testing.T) {
	app := newTestApp(t, nil)

	_, _, err := runWith(t, app,
		text("hello"),
		key(backend.KeyLeft, 0),
		key(backend.KeyLeft, 0),
		key(backend.KeyLeft, 0),
		text("XY"),
		quit,
	)
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}

	if got := app.Line().String(); got != "heXYllo" {
		t.Errorf("text = %q, want %q", got, "heXYllo")
	}
	if app.Line().Cursor() != 4 {
		t.Errorf("cursor = %d, want 4", app.Line().Cursor())
	}
	if app.Metrics().Snapshot().EventCount != 6 {
		t.Errorf("EventCount = %d, want 6", app.Metrics().Snapshot().EventCount)
	}
}

func TestRun_RenderFailure(t *testing.T) {
	app := newTestApp(t, nil)
	b := backend.NewNullBackend(40, 5)
	b.FailBlit(errors.New("upload failed"))
	b.PostEvent(text("a"))
	alerter := &recordingAlerter{}
	_ = app.SetBackend(b)
	_ = app.SetAlerter(alerter)

	err := app.Run()

	var rerr *RenderError
	if !errors.As(err, &rerr) || rerr.Stage != "blit" {
		t.Fatalf("Run() = %v, want blit RenderError", err)
	}
	if ExitCode(err) != 1 {
		t.Errorf("ExitCode() = %d, want 1", ExitCode(err))
	}
	if len(alerter.alerts) != 1 || !strings.Contains(alerter.alerts[0], "upload failed") {
		t.Errorf("alerts = %v, want one mentioning the failure", alerter.alerts)
	}
}

func TestRun_MinimizedSkipsFrames(t *testing.T) {
	app := newTestApp(t, nil)

	b, _, err := runWith(t, app,
		backend.Event{Type: backend.EventVisibility, Visible: false},
		text("abc"),
		quit,
	)
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}
	if b.Shows() != 1 {
		t.Errorf("Shows() = %d, want only the initial frame", b.Shows())
	}
	if app.Line().String() != "abc" {
		t.Errorf("events not processed while minimized: %q", app.Line().String())
	}
}

func TestRun_Twice(t *testing.T) {
	app := newTestApp(t, nil)

	for i := 0; i < 2; i++ {
		b, _, err := runWith(t, app, text("a"), quit)
		if err != nil {
			t.Fatalf("run %d: Run() = %v", i, err)
		}
		// Teardown waited for the feeder, which consumed the wake-up.
		select {
		case ev := <-app.events:
			t.Errorf("run %d: unexpected queued event %v", i, ev.Type)
		default:
		}
		if ev := b.PollEvent(); ev.Type != backend.EventQuit {
			t.Errorf("run %d: PollEvent() after Run = %v, want quit", i, ev.Type)
		}
	}
	if got := app.Line().String(); got != "aa" {
		t.Errorf("text = %q, want %q", got, "aa")
	}
}

func TestRun_AlreadyRunning(t *testing.T) {
	app := newTestApp(t, nil)
	app.running.Store(true)
	defer app.running.Store(false)

	if err := app.Run(); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Run() = %v, want ErrAlreadyRunning", err)
	}
	if err := app.SetBackend(nil); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("SetBackend() = %v, want ErrAlreadyRunning", err)
	}
	if err := app.SetAlerter(nil); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("SetAlerter() = %v, want ErrAlreadyRunning", err)
	}
}

func TestApplication_ShutdownIdempotent(t *testing.T) {
	app := newTestApp(t, nil)
	app.Shutdown()
	app.Shutdown()
}

func TestState_String(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateRunning, "running"},
		{StateMinimized, "minimized"},
		{StateTerminated, "terminated"},
		{State(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}

func TestStartWatcher_PostsReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pad.toml")
	if err := os.WriteFile(path, []byte("[layout]\nleft = 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	app, err := New(Options{ConfigPath: path, Watch: true, Environ: noEnv})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	defer app.Shutdown()

	b := backend.NewNullBackend(10, 3)
	app.backend = b
	app.startWatcher()
	if app.watcher == nil {
		t.Fatal("watcher not started")
	}
	defer app.watcher.Close()

	if err := os.WriteFile(path, []byte("[layout]\nleft = 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := make(chan backend.Event, 1)
	go func() { got <- b.PollEvent() }()

	select {
	case ev := <-got:
		if ev.Type != backend.EventReload {
			t.Errorf("event = %v, want reload", ev.Type)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload event posted")
	}
}
