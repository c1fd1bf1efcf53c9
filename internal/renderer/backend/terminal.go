package backend

import (
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/gdamore/tcell/v2/encoding"

	"github.com/dshills/pad/internal/renderer/core"
)

// Terminal implements Backend using a fullscreen tcell screen.
type Terminal struct {
	screen      tcell.Screen
	initialized bool
	mu          sync.Mutex

	// Bracketed paste accumulation; touched only by PollEvent.
	pasting bool
	paste   strings.Builder
}

// NewTerminal creates a new terminal backend.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewTerminalWithScreen(screen), nil
}

// NewTerminalWithScreen wraps an existing tcell screen, such as a
// simulation screen.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	// Allow terminals running in legacy (non UTF-8) locales.
	encoding.Register()

	if err := t.screen.Init(); err != nil {
		return err
	}

	// Focus reports drive visibility; paste arrives as one text commit.
	t.screen.EnableFocus()
	t.screen.EnablePaste()
	t.screen.HideCursor()

	t.initialized = true
	return nil
}

func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.initialized {
		return
	}
	t.initialized = false
	t.screen.Fini()
}

func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

func (t *Terminal) SetCell(x, y int, cell core.Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.SetContent(x, y, cell.Rune, nil, convertStyle(cell.Style))
}

func (t *Terminal) GetCell(x, y int) core.Cell {
	t.mu.Lock()
	defer t.mu.Unlock()

	mainc, _, style, _ := t.screen.GetContent(x, y) //nolint:staticcheck // GetContent is the correct API
	return core.Cell{
		Rune:  mainc,
		Width: core.RuneWidth(mainc),
		Style: convertTcellStyle(style),
	}
}

func (t *Terminal) Fill(rect core.ScreenRect, cell core.Cell) {
	t.mu.Lock()
	defer t.mu.Unlock()

	style := convertStyle(cell.Style)
	width, height := t.screen.Size()

	for y := max(rect.Top, 0); y < rect.Bottom && y < height; y++ {
		for x := max(rect.Left, 0); x < rect.Right && x < width; x++ {
			t.screen.SetContent(x, y, cell.Rune, nil, style)
		}
	}
}

func (t *Terminal) Blit(x, y int, s *Surface) error {
	t.mu.Lock()
	ready := t.initialized
	t.mu.Unlock()

	if !ready {
		return ErrNotInitialized
	}
	return blit(t, x, y, s)
}

func (t *Terminal) Show() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Show()
}

func (t *Terminal) HideCursor() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.HideCursor()
}

// PollEvent blocks until the next event Pad cares about. Keystrokes inside
// a bracketed paste are collected and returned as a single EventText when
// the paste ends. A finalized screen yields EventQuit.
func (t *Terminal) PollEvent() Event {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return Event{Type: EventQuit}
		}
		if out, ok := t.convertEvent(ev); ok {
			return out
		}
	}
}

// PostEvent queues a synthetic event. It is delivered unchanged by PollEvent.
func (t *Terminal) PostEvent(event Event) {
	_ = t.screen.PostEvent(tcell.NewEventInterrupt(event)) // best-effort; event queue may be full
}

// convertEvent converts a tcell event. ok is false for events that are
// swallowed, such as keys inside a paste.
func (t *Terminal) convertEvent(ev tcell.Event) (Event, bool) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return t.convertKeyEvent(e)

	case *tcell.EventPaste:
		if e.Start() {
			t.pasting = true
			t.paste.Reset()
			return Event{}, false
		}
		t.pasting = false
		text := t.paste.String()
		t.paste.Reset()
		if text == "" {
			return Event{}, false
		}
		return Event{Type: EventText, Text: text}, true

	case *tcell.EventFocus:
		return Event{Type: EventVisibility, Visible: e.Focused}, true

	case *tcell.EventResize:
		w, h := e.Size()
		return Event{Type: EventResize, Width: w, Height: h}, true

	case *tcell.EventInterrupt:
		if posted, ok := e.Data().(Event); ok {
			return posted, true
		}
		return Event{}, false

	default:
		return Event{}, false
	}
}

// convertKeyEvent maps a tcell key press. Plain runes become text commits.
func (t *Terminal) convertKeyEvent(e *tcell.EventKey) (Event, bool) {
	mod := convertMod(e.Modifiers())

	if t.pasting {
		if e.Key() == tcell.KeyRune {
			t.paste.WriteRune(e.Rune())
		}
		return Event{}, false
	}

	switch e.Key() {
	case tcell.KeyRune:
		if mod.Has(ModCtrl) || mod.Has(ModAlt) {
			return Event{Type: EventKey, Key: KeyRune, Rune: e.Rune(), Mod: mod}, true
		}
		return Event{Type: EventText, Text: string(e.Rune())}, true
	case tcell.KeyCtrlC:
		// The terminal's equivalent of closing the window.
		return Event{Type: EventQuit}, true
	case tcell.KeyBackspace:
		if isCtrlBackspace(e) {
			mod |= ModCtrl
		}
		return Event{Type: EventKey, Key: KeyBackspace, Mod: mod}, true
	}

	k := convertKey(e.Key())
	if k == KeyNone {
		return Event{}, false
	}
	return Event{Type: EventKey, Key: k, Mod: mod}, true
}

// isCtrlBackspace reports whether a backspace key is Ctrl+Backspace.
// tcell folds BS and DEL into KeyBackspace. A BS byte built as a rune
// event keeps 'h' as its character, and keyboard protocols that report
// modifiers set ModCtrl. DEL and a bare KeyBackspace are plain.
func isCtrlBackspace(e *tcell.EventKey) bool {
	switch e.Rune() {
	case 0x7f:
		return false
	case '\b', 'h', 'H':
		return true
	}
	return e.Modifiers()&tcell.ModCtrl != 0
}

// convertStyle converts our Style to tcell.Style.
func convertStyle(s core.Style) tcell.Style {
	style := tcell.StyleDefault

	if !s.Foreground.IsDefault() {
		style = style.Foreground(tcell.NewRGBColor(int32(s.Foreground.R), int32(s.Foreground.G), int32(s.Foreground.B)))
	}
	if !s.Background.IsDefault() {
		style = style.Background(tcell.NewRGBColor(int32(s.Background.R), int32(s.Background.G), int32(s.Background.B)))
	}

	if s.Attributes.Has(core.AttrBold) {
		style = style.Bold(true)
	}
	if s.Attributes.Has(core.AttrDim) {
		style = style.Dim(true)
	}
	if s.Attributes.Has(core.AttrItalic) {
		style = style.Italic(true)
	}
	if s.Attributes.Has(core.AttrUnderline) {
		style = style.Underline(true)
	}
	if s.Attributes.Has(core.AttrReverse) {
		style = style.Reverse(true)
	}

	return style
}

// convertTcellStyle converts tcell.Style back to our Style.
func convertTcellStyle(ts tcell.Style) core.Style {
	fg, bg, attrs := ts.Decompose()

	s := core.Style{
		Foreground: convertTcellColor(fg),
		Background: convertTcellColor(bg),
		Attributes: core.AttrNone,
	}

	if attrs&tcell.AttrBold != 0 {
		s.Attributes |= core.AttrBold
	}
	if attrs&tcell.AttrDim != 0 {
		s.Attributes |= core.AttrDim
	}
	if attrs&tcell.AttrItalic != 0 {
		s.Attributes |= core.AttrItalic
	}
	if attrs&tcell.AttrUnderline != 0 {
		s.Attributes |= core.AttrUnderline
	}
	if attrs&tcell.AttrReverse != 0 {
		s.Attributes |= core.AttrReverse
	}

	return s
}

// convertTcellColor converts tcell.Color to our Color.
func convertTcellColor(tc tcell.Color) core.Color {
	if tc == tcell.ColorDefault {
		return core.ColorDefault
	}
	r, g, b := tc.RGB()
	return core.ColorFromRGB(uint8(r), uint8(g), uint8(b))
}

// convertKey converts the tcell keys Pad handles to our Key type.
func convertKey(k tcell.Key) Key {
	switch k {
	case tcell.KeyEscape:
		return KeyEscape
	case tcell.KeyEnter:
		return KeyEnter
	case tcell.KeyTab:
		return KeyTab
	case tcell.KeyDelete:
		return KeyDelete
	case tcell.KeyHome:
		return KeyHome
	case tcell.KeyEnd:
		return KeyEnd
	case tcell.KeyUp:
		return KeyUp
	case tcell.KeyDown:
		return KeyDown
	case tcell.KeyLeft:
		return KeyLeft
	case tcell.KeyRight:
		return KeyRight
	default:
		return KeyNone
	}
}

// convertMod converts tcell modifier mask to our ModMask.
func convertMod(m tcell.ModMask) ModMask {
	var result ModMask
	if m&tcell.ModShift != 0 {
		result |= ModShift
	}
	if m&tcell.ModCtrl != 0 {
		result |= ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		result |= ModAlt
	}
	if m&tcell.ModMeta != 0 {
		result |= ModMeta
	}
	return result
}
