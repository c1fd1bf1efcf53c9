package app

import (
	"time"

	"github.com/dshills/pad/internal/renderer/backend"
	"github.com/dshills/pad/internal/renderer/core"
)

// render draws one frame: background, caret, then the buffer text.
func (app *Application) render() error {
	start := time.Now()
	b := app.backend
	layout := app.cfg.Layout

	w, h := b.Size()
	bg := core.NewStyledCell(' ', core.DefaultStyle().WithBackground(app.palette.Background))
	b.Fill(core.RectFromSize(0, 0, h, w), bg)

	caretX := app.caretX()
	caret := core.NewStyledCell(' ', core.DefaultStyle().WithBackground(app.palette.Caret))
	b.Fill(core.RectFromSize(layout.Top, caretX, 1, 1), caret)

	if !app.line.Empty() {
		style := core.DefaultStyle().WithForeground(app.palette.Text)
		s, err := backend.RenderTextAdvance(app.line.String(), style, layout.Advance)
		if err != nil {
			return &RenderError{Stage: "surface", Err: err}
		}
		if err := b.Blit(layout.Left, layout.Top, s); err != nil {
			return &RenderError{Stage: "blit", Err: err}
		}
	}

	b.Show()
	app.metrics.RecordFrame(time.Since(start))
	return nil
}

// caretX is the screen column of the caret.
func (app *Application) caretX() int {
	layout := app.cfg.Layout
	return layout.Left + core.StringWidth(app.line.Head())*layout.Advance
}
