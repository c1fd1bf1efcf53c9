package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/dshills/pad/internal/renderer/backend"
	"github.com/dshills/pad/internal/renderer/core"
)

// Alerter shows a modal error message to the user.
type Alerter interface {
	Alert(title, message string)
}

// ScreenAlerter draws a centered box on the backend and waits for any key.
type ScreenAlerter struct {
	backend backend.Backend
	events  <-chan backend.Event
	style   core.Style
}

// NewScreenAlerter creates an alerter that reads dismiss keys from events.
func NewScreenAlerter(b backend.Backend, events <-chan backend.Event) *ScreenAlerter {
	return &ScreenAlerter{
		backend: b,
		events:  events,
		style:   core.NewStyle(core.ColorWhite).WithBackground(core.ColorRed),
	}
}

// Alert draws the dialog and blocks until a key, text or quit event.
func (a *ScreenAlerter) Alert(title, message string) {
	a.draw(title, message)
	for ev := range a.events {
		switch ev.Type {
		case backend.EventKey, backend.EventText, backend.EventQuit:
			return
		case backend.EventResize:
			a.draw(title, message)
		}
	}
}

// draw renders the dialog box.
func (a *ScreenAlerter) draw(title, message string) {
	w, h := a.backend.Size()
	if w <= 0 || h <= 0 {
		return
	}

	footer := "press any key"
	inner := max(core.StringWidth(title), core.StringWidth(message), core.StringWidth(footer))
	inner = min(inner, max(w-4, 1))
	boxW := inner + 4
	boxH := 5
	left := max((w-boxW)/2, 0)
	top := max((h-boxH)/2, 0)

	a.backend.Fill(core.RectFromSize(top, left, boxH, boxW), core.NewStyledCell(' ', a.style))
	for x := left; x < left+boxW; x++ {
		a.backend.SetCell(x, top, core.NewStyledCell('─', a.style))
		a.backend.SetCell(x, top+boxH-1, core.NewStyledCell('─', a.style))
	}
	for y := top; y < top+boxH; y++ {
		a.backend.SetCell(left, y, core.NewStyledCell('│', a.style))
		a.backend.SetCell(left+boxW-1, y, core.NewStyledCell('│', a.style))
	}
	a.backend.SetCell(left, top, core.NewStyledCell('┌', a.style))
	a.backend.SetCell(left+boxW-1, top, core.NewStyledCell('┐', a.style))
	a.backend.SetCell(left, top+boxH-1, core.NewStyledCell('└', a.style))
	a.backend.SetCell(left+boxW-1, top+boxH-1, core.NewStyledCell('┘', a.style))

	a.drawText(left+2, top, " "+title+" ", inner, a.style.Bold())
	a.drawText(left+2, top+2, message, inner, a.style)
	a.drawText(left+2, top+3, footer, inner, a.style)
	a.backend.Show()
}

// drawText writes s at (x, y), clipped to width cells.
func (a *ScreenAlerter) drawText(x, y int, s string, width int, style core.Style) {
	col := 0
	for _, r := range s {
		rw := core.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if col+rw > width {
			return
		}
		a.backend.SetCell(x+col, y, core.NewStyledCell(r, style))
		if rw == 2 {
			a.backend.SetCell(x+col+1, y, core.ContinuationCell())
		}
		col += rw
	}
}

// WriterAlerter writes "title: message" lines to an io.Writer. It serves
// before a screen exists.
type WriterAlerter struct {
	W io.Writer
}

// Alert writes the message.
func (a WriterAlerter) Alert(title, message string) {
	fmt.Fprintf(a.W, "%s: %s\n", title, strings.TrimSpace(message))
}
