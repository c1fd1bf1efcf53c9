package backend

import (
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/pad/internal/renderer/core"
)

func newSimTerminal(t *testing.T) *Terminal {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	term := NewTerminalWithScreen(screen)
	if err := term.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	screen.SetSize(20, 3)
	t.Cleanup(term.Shutdown)
	return term
}

func TestTerminalConvertKeys(t *testing.T) {
	term := &Terminal{}

	tests := []struct {
		name string
		ev   *tcell.EventKey
		want Event
	}{
		{"rune", tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone), Event{Type: EventText, Text: "a"}},
		{"shift rune", tcell.NewEventKey(tcell.KeyRune, 'A', tcell.ModShift), Event{Type: EventText, Text: "A"}},
		{"alt rune", tcell.NewEventKey(tcell.KeyRune, 'b', tcell.ModAlt), Event{Type: EventKey, Key: KeyRune, Rune: 'b', Mod: ModAlt}},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), Event{Type: EventKey, Key: KeyEscape}},
		{"left", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), Event{Type: EventKey, Key: KeyLeft}},
		{"del byte", tcell.NewEventKey(tcell.KeyRune, 0x7f, tcell.ModNone), Event{Type: EventKey, Key: KeyBackspace}},
		{"bs byte", tcell.NewEventKey(tcell.KeyRune, 0x08, tcell.ModNone), Event{Type: EventKey, Key: KeyBackspace, Mod: ModCtrl}},
		{"parsed backspace", tcell.NewEventKey(tcell.KeyBackspace, 0, tcell.ModNone), Event{Type: EventKey, Key: KeyBackspace}},
		{"backspace2 with del", tcell.NewEventKey(tcell.KeyBackspace2, 0x7f, tcell.ModNone), Event{Type: EventKey, Key: KeyBackspace}},
		{"csi-u ctrl backspace", tcell.NewEventKey(tcell.KeyBS, 0, tcell.ModCtrl), Event{Type: EventKey, Key: KeyBackspace, Mod: ModCtrl}},
		{"alt backspace", tcell.NewEventKey(tcell.KeyBackspace, 0, tcell.ModAlt), Event{Type: EventKey, Key: KeyBackspace, Mod: ModAlt}},
		{"ctrl c", tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), Event{Type: EventQuit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := term.convertEvent(tt.ev)
			if !ok {
				t.Fatal("event was swallowed")
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

// nextKey polls until a key event arrives, skipping the resize and
// focus events the simulation screen queues on its own.
func nextKey(t *testing.T, term *Terminal) Event {
	t.Helper()
	for i := 0; i < 10; i++ {
		ev := term.PollEvent()
		if ev.Type == EventKey {
			return ev
		}
	}
	t.Fatal("no key event received")
	return Event{}
}

func TestTerminalInjectedBackspace(t *testing.T) {
	term := newSimTerminal(t)
	sim := term.screen.(tcell.SimulationScreen)

	// Raw DEL goes through the same byte path a terminal read takes.
	if !sim.InjectKeyBytes([]byte{0x7f}) {
		t.Fatal("DEL byte was not accepted")
	}
	if got := nextKey(t, term); got.Key != KeyBackspace || got.Mod != ModNone {
		t.Errorf("DEL: got %+v, want plain backspace", got)
	}

	sim.InjectKey(tcell.KeyRune, 0x08, tcell.ModNone)
	if got := nextKey(t, term); got.Key != KeyBackspace || !got.Mod.Has(ModCtrl) {
		t.Errorf("BS: got %+v, want ctrl backspace", got)
	}

	sim.InjectKey(tcell.KeyBackspace, 0, tcell.ModNone)
	if got := nextKey(t, term); got.Key != KeyBackspace || got.Mod != ModNone {
		t.Errorf("backspace: got %+v, want plain backspace", got)
	}
}

func TestTerminalConvertUnknownKey(t *testing.T) {
	term := &Terminal{}
	if _, ok := term.convertEvent(tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone)); ok {
		t.Error("unhandled key should be swallowed")
	}
}

func TestTerminalPasteCommitsOnce(t *testing.T) {
	term := &Terminal{}

	if _, ok := term.convertEvent(tcell.NewEventPaste(true)); ok {
		t.Error("paste start should be swallowed")
	}
	for _, r := range "hi you" {
		if _, ok := term.convertEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)); ok {
			t.Error("keys inside a paste should be swallowed")
		}
	}
	got, ok := term.convertEvent(tcell.NewEventPaste(false))
	if !ok || got.Type != EventText || got.Text != "hi you" {
		t.Errorf("expected pasted text commit, got %+v (ok=%v)", got, ok)
	}

	// An empty paste commits nothing.
	term.convertEvent(tcell.NewEventPaste(true))
	if _, ok := term.convertEvent(tcell.NewEventPaste(false)); ok {
		t.Error("empty paste should be swallowed")
	}
}

func TestTerminalFocusAndInterrupt(t *testing.T) {
	term := &Terminal{}

	got, ok := term.convertEvent(tcell.NewEventFocus(false))
	if !ok || got.Type != EventVisibility || got.Visible {
		t.Errorf("expected hidden visibility event, got %+v", got)
	}

	posted := Event{Type: EventReload}
	got, ok = term.convertEvent(tcell.NewEventInterrupt(posted))
	if !ok || got != posted {
		t.Errorf("expected posted event back, got %+v", got)
	}

	if _, ok := term.convertEvent(tcell.NewEventInterrupt("other")); ok {
		t.Error("foreign interrupt should be swallowed")
	}
}

func TestTerminalDrawAndBlit(t *testing.T) {
	term := newSimTerminal(t)

	black := core.ColorFromRGB(0, 0, 0)
	bg := core.DefaultStyle().WithBackground(black)
	term.Fill(core.RectFromSize(0, 0, 3, 20), core.NewStyledCell(' ', bg))

	s, err := RenderText("ok", core.NewStyle(core.ColorWhite))
	if err != nil {
		t.Fatalf("RenderText failed: %v", err)
	}
	if err := term.Blit(2, 1, s); err != nil {
		t.Fatalf("Blit failed: %v", err)
	}
	term.Show()

	cell := term.GetCell(3, 1)
	if cell.Rune != 'k' {
		t.Errorf("expected 'k', got %q", cell.Rune)
	}
	if !cell.Style.Background.Equals(black) {
		t.Errorf("expected black background kept, got %s", cell.Style.Background)
	}
	if !cell.Style.Foreground.Equals(core.ColorWhite) {
		t.Errorf("expected white text, got %s", cell.Style.Foreground)
	}
}

func TestTerminalPostEvent(t *testing.T) {
	term := newSimTerminal(t)

	term.PostEvent(Event{Type: EventText, Text: "x"})

	// Init and SetSize queue resize events ahead of ours.
	got := term.PollEvent()
	for i := 0; i < 5 && got.Type == EventResize; i++ {
		got = term.PollEvent()
	}
	if got.Type != EventText || got.Text != "x" {
		t.Errorf("expected posted text event, got %+v", got)
	}
}

func TestTerminalBlitAfterShutdown(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	term := NewTerminalWithScreen(screen)
	s, _ := RenderText("a", core.DefaultStyle())

	if err := term.Blit(0, 0, s); err != ErrNotInitialized {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}
