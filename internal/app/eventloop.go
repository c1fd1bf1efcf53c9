package app

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/dshills/pad/internal/config"
	"github.com/dshills/pad/internal/renderer/backend"
)

// eventLoop draws an initial frame, then for each wakeup handles every
// queued event and draws at most one frame. It returns ErrQuit on a normal
// exit and a *RenderError when a frame cannot be drawn.
func (app *Application) eventLoop() error {
	if err := app.render(); err != nil {
		return err
	}

	for {
		ev := <-app.events
		if err := app.handleEvent(ev); err != nil {
			return err
		}

	drain:
		for {
			select {
			case ev := <-app.events:
				if err := app.handleEvent(ev); err != nil {
					return err
				}
			default:
				break drain
			}
		}

		if app.state == StateMinimized {
			app.metrics.RecordSkippedFrame()
			continue
		}
		if err := app.render(); err != nil {
			return err
		}
	}
}

// handleEvent applies one backend event. Returns ErrQuit if the
// application should exit.
func (app *Application) handleEvent(ev backend.Event) error {
	app.metrics.RecordEvent()

	switch ev.Type {
	case backend.EventQuit:
		return app.quit()
	case backend.EventKey:
		return app.handleKeyEvent(ev)
	case backend.EventText:
		app.handleText(ev.Text)
	case backend.EventCompose:
		app.line.SetComposition(ev.Text, ev.Start, ev.Length)
	case backend.EventVisibility:
		app.handleVisibility(ev.Visible)
	case backend.EventResize:
		app.logger.Debug("resize %dx%d", ev.Width, ev.Height)
	case backend.EventReload:
		app.reload()
	}
	return nil
}

// quit moves to the terminated state.
func (app *Application) quit() error {
	app.state = StateTerminated
	return ErrQuit
}

// handleKeyEvent processes keyboard input events.
func (app *Application) handleKeyEvent(ev backend.Event) error {
	switch ev.Key {
	case backend.KeyEscape:
		return app.quit()
	case backend.KeyLeft:
		app.line.MoveLeft()
	case backend.KeyRight:
		app.line.MoveRight()
	case backend.KeyHome:
		app.line.MoveHome()
	case backend.KeyEnd:
		app.line.MoveEnd()
	case backend.KeyBackspace:
		if app.isWordModifier(ev.Mod) {
			app.line.DeleteWord()
		} else {
			app.line.Backspace()
		}
	}
	return nil
}

// isWordModifier reports whether mod turns backspace into word delete.
func (app *Application) isWordModifier(mod backend.ModMask) bool {
	switch app.cfg.Editor.WordModifier {
	case config.ModifierAlt:
		return mod.Has(backend.ModAlt)
	case config.ModifierAny:
		return mod&(backend.ModCtrl|backend.ModAlt|backend.ModMeta) != 0
	default:
		return mod.Has(backend.ModCtrl)
	}
}

// handleText inserts committed text at the cursor.
func (app *Application) handleText(text string) {
	text = sanitizeText(text)
	if text == "" {
		return
	}
	app.line.ClearComposition()
	if kept := app.line.Insert(text); kept < len(text) {
		app.logger.Debug("insert truncated: kept %d of %d bytes", kept, len(text))
	}
}

// sanitizeText normalizes text to NFC and strips control characters.
func sanitizeText(text string) string {
	text = norm.NFC.String(text)
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}

// handleVisibility toggles between running and minimized.
func (app *Application) handleVisibility(visible bool) {
	if app.state == StateTerminated {
		return
	}
	if visible {
		app.state = StateRunning
	} else {
		app.state = StateMinimized
	}
	app.logger.Debug("state %s", app.state)
}

// reload re-reads the configuration and applies layout, theme and log
// level. Capacity and the log file stay until restart. A failed reload
// keeps the current settings.
func (app *Application) reload() {
	log := app.logger.WithComponent("config")

	cfg, err := app.loadConfig()
	if err != nil {
		log.Warn("reload failed: %v", err)
		return
	}
	palette, err := cfg.Theme.Palette()
	if err != nil {
		log.Warn("reload failed: %v", err)
		return
	}

	if cfg.Editor.Capacity != app.cfg.Editor.Capacity {
		log.Info("capacity change to %d takes effect on restart", cfg.Editor.Capacity)
	}
	if cfg.Log.File != app.cfg.Log.File {
		log.Info("log file change to %q takes effect on restart", cfg.Log.File)
	}

	app.cfg.Editor.WordModifier = cfg.Editor.WordModifier
	app.cfg.Layout = cfg.Layout
	app.cfg.Theme = cfg.Theme
	app.cfg.Log.Level = cfg.Log.Level
	app.palette = palette
	app.logger.SetLevel(ParseLogLevel(cfg.Log.Level))

	log.Info("reloaded")
}
