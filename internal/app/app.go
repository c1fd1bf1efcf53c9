// Package app runs Pad: it owns the line buffer, translates backend events
// into buffer mutations and draws the buffer with a caret each frame.
package app

import (
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/dshills/pad/internal/config"
	"github.com/dshills/pad/internal/config/watcher"
	"github.com/dshills/pad/internal/engine/line"
	"github.com/dshills/pad/internal/renderer/backend"
)

// State is the lifecycle state of the event loop.
type State int

const (
	// StateRunning processes events and draws frames.
	StateRunning State = iota
	// StateMinimized processes events but skips drawing.
	StateMinimized
	// StateTerminated ends the loop.
	StateTerminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateMinimized:
		return "minimized"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Application is the central coordinator for Pad.
type Application struct {
	mu sync.Mutex

	cfg     *config.Config
	palette config.Palette
	opts    Options

	backend backend.Backend
	alerter Alerter
	watcher *watcher.Watcher

	logger    *Logger
	logCloser io.Closer
	metrics   *Metrics

	line   *line.Line
	state  State
	events chan backend.Event

	running atomic.Bool
	done    chan struct{}
	feeder  sync.WaitGroup
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty means defaults
	// plus environment.
	ConfigPath string

	// LogLevel overrides log.level when non-empty.
	LogLevel string

	// LogFile overrides log.file when non-empty.
	LogFile string

	// Watch forces live reload of ConfigPath on.
	Watch bool

	// Config skips loading and uses the given configuration.
	Config *config.Config

	// Environ overrides os.Environ for configuration loading.
	Environ func() []string
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:    opts,
		metrics: NewMetrics(),
	}

	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = app.loadConfig(); err != nil {
			return nil, &InitError{Component: "config", Err: err}
		}
	} else {
		app.applyOverrides(cfg)
		if err := cfg.Validate(); err != nil {
			return nil, &InitError{Component: "config", Err: err}
		}
	}

	palette, err := cfg.Theme.Palette()
	if err != nil {
		return nil, &InitError{Component: "theme", Err: err}
	}

	logger, closer, err := OpenLogger(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		return nil, &InitError{Component: "logger", Err: err}
	}

	app.cfg = cfg
	app.palette = palette
	app.logger = logger
	app.logCloser = closer
	app.line = line.New(cfg.Editor.Capacity)

	app.logger.Info("starting, capacity %d", app.line.Capacity())
	if cfg.Source != "" {
		app.logger.Info("config loaded from %s", cfg.Source)
	}

	return app, nil
}

// loadConfig reads configuration as described by the options.
func (app *Application) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		Path:    app.opts.ConfigPath,
		Environ: app.opts.Environ,
	})
	if err != nil {
		return nil, err
	}
	app.applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyOverrides applies command line options on top of cfg.
func (app *Application) applyOverrides(cfg *config.Config) {
	if app.opts.LogLevel != "" {
		cfg.Log.Level = app.opts.LogLevel
	}
	if app.opts.LogFile != "" {
		cfg.Log.File = app.opts.LogFile
	}
	if app.opts.Watch {
		cfg.Watch.Enabled = true
	}
}

// SetBackend sets the display backend.
// Must be called before Run().
func (app *Application) SetBackend(b backend.Backend) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running.Load() {
		return ErrAlreadyRunning
	}

	app.backend = b
	return nil
}

// SetAlerter replaces the fatal error dialog.
// Must be called before Run().
func (app *Application) SetAlerter(a Alerter) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running.Load() {
		return ErrAlreadyRunning
	}

	app.alerter = a
	return nil
}

// Run initializes the backend and runs the event loop until quit.
// A normal quit returns nil. Render failures are shown with the alerter
// before being returned.
func (app *Application) Run() error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if app.backend == nil {
		return &InitError{Component: "backend", Err: ErrNoBackend}
	}
	if err := app.backend.Init(); err != nil {
		return &InitError{Component: "backend", Err: err}
	}
	app.backend.HideCursor()
	app.state = StateRunning

	app.events = make(chan backend.Event, 64)
	app.done = make(chan struct{})
	app.feeder.Add(1)
	go app.feedEvents()

	alerter := app.alerter
	if alerter == nil {
		alerter = NewScreenAlerter(app.backend, app.events)
	}

	app.startWatcher()
	defer app.teardown()

	err := app.eventLoop()
	if errors.Is(err, ErrQuit) {
		app.logger.Info("quit")
		return nil
	}

	app.logger.Error("%v", err)
	alerter.Alert("Pad", err.Error())
	return err
}

// feedEvents moves blocking backend polls onto the events channel.
func (app *Application) feedEvents() {
	defer app.feeder.Done()
	for {
		ev := app.backend.PollEvent()
		select {
		case <-app.done:
			return
		default:
		}
		select {
		case app.events <- ev:
		case <-app.done:
			return
		}
	}
}

// startWatcher begins live reload when enabled. Failure is not fatal.
func (app *Application) startWatcher() {
	if !app.cfg.Watch.Enabled || app.cfg.Source == "" {
		return
	}

	log := app.logger.WithComponent("watcher")
	w, err := watcher.New(app.cfg.Source, func(ev watcher.Event) {
		log.Debug("%s %s", ev.Op, ev.Path)
		app.backend.PostEvent(backend.Event{Type: backend.EventReload})
	}, watcher.WithErrorHandler(func(err error) {
		log.Warn("watch error: %v", err)
	}))
	if err != nil {
		log.Warn("live reload disabled: %v", err)
		return
	}
	app.watcher = w
}

// teardown releases everything Run acquired, in reverse order.
func (app *Application) teardown() {
	if app.watcher != nil {
		_ = app.watcher.Close()
		app.watcher = nil
	}

	// Shutdown wakes the feeder's pending PollEvent.
	close(app.done)
	app.backend.Shutdown()
	app.feeder.Wait()

	s := app.metrics.Snapshot()
	app.logger.Info("frames=%d skipped=%d events=%d avg_frame=%dns uptime=%s",
		s.FrameCount, s.SkippedFrames, s.EventCount, s.AvgFrameTimeNs, s.Uptime)
}

// Shutdown releases the log file. Safe to call more than once.
func (app *Application) Shutdown() {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.logCloser != nil {
		_ = app.logCloser.Close()
		app.logCloser = nil
	}
}

// IsRunning returns true if the application is running.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Config returns the active configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Line returns the line buffer.
func (app *Application) Line() *line.Line {
	return app.line
}

// State returns the loop state.
func (app *Application) State() State {
	return app.state
}

// Metrics returns the loop counters.
func (app *Application) Metrics() *Metrics {
	return app.metrics
}

// Logger returns the application's logger instance.
func (app *Application) Logger() *Logger {
	return app.logger
}
