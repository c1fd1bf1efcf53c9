// Package backend provides the display backend abstraction for Pad.
//
// A Backend owns the screen: it draws cells, presents frames and delivers
// input as Events. Terminal is the tcell implementation; NullBackend is an
// in-memory implementation for tests.
package backend

import (
	"errors"

	"github.com/dshills/pad/internal/renderer/core"
)

// Backend errors.
var (
	// ErrNotInitialized is returned when drawing on a backend before Init.
	ErrNotInitialized = errors.New("backend not initialized")

	// ErrInvalidSurface is returned for surfaces without area.
	ErrInvalidSurface = errors.New("invalid surface size")

	// ErrInvalidText is returned when text cannot be rasterized.
	ErrInvalidText = errors.New("text is not valid UTF-8")
)

// EventType identifies the type of backend event.
type EventType int

const (
	EventNone EventType = iota
	EventKey
	EventText
	EventCompose
	EventVisibility
	EventResize
	EventReload
	EventQuit
)

// String returns the event type name.
func (t EventType) String() string {
	switch t {
	case EventNone:
		return "none"
	case EventKey:
		return "key"
	case EventText:
		return "text"
	case EventCompose:
		return "compose"
	case EventVisibility:
		return "visibility"
	case EventResize:
		return "resize"
	case EventReload:
		return "reload"
	case EventQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Event represents a backend event.
type Event struct {
	Type EventType

	// Key event fields
	Key  Key
	Rune rune
	Mod  ModMask

	// Text is the committed text of an EventText, or the pre-edit text
	// of an EventCompose.
	Text string

	// Composition fields
	Start, Length int

	// Visibility event fields
	Visible bool

	// Resize event fields
	Width, Height int
}

// Key represents a keyboard key.
type Key int

// Key constants for the keys Pad distinguishes.
const (
	KeyNone Key = iota
	KeyRune     // Character with Ctrl/Alt held (use Rune field)
	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyHome
	KeyEnd
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// ModMask represents modifier key state.
type ModMask int

const (
	ModNone  ModMask = 0
	ModShift ModMask = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
)

// Has returns true if the mask contains the given modifier.
func (m ModMask) Has(mod ModMask) bool {
	return m&mod != 0
}

// Backend defines the interface for display backends.
type Backend interface {
	// Init initializes the backend for use.
	// Must be called before any other methods.
	Init() error

	// Shutdown releases backend resources and restores terminal state.
	Shutdown()

	// Size returns the current screen dimensions in cells.
	Size() (width, height int)

	// SetCell sets a single cell at the given position.
	// Positions outside the screen are silently ignored.
	SetCell(x, y int, cell core.Cell)

	// GetCell returns the cell at the given position.
	// Returns an empty cell for positions outside the screen.
	GetCell(x, y int) core.Cell

	// Fill fills a rectangular region with the given cell.
	Fill(rect core.ScreenRect, cell core.Cell)

	// Blit copies an off-screen surface to the screen with its top-left
	// corner at (x, y). Surface cells with a default background keep the
	// background already on screen.
	Blit(x, y int, s *Surface) error

	// Show presents the frame.
	Show()

	// HideCursor hides the hardware cursor.
	HideCursor()

	// PollEvent waits for and returns the next event.
	// This is a blocking call.
	PollEvent() Event

	// PostEvent posts a synthetic event to the event queue.
	PostEvent(event Event)
}

// cellTarget is the part of a Backend that blit draws through.
type cellTarget interface {
	Size() (width, height int)
	SetCell(x, y int, cell core.Cell)
	GetCell(x, y int) core.Cell
}

// blit composites s onto dst at (x, y).
func blit(dst cellTarget, x, y int, s *Surface) error {
	if s == nil {
		return ErrInvalidSurface
	}
	width, height := dst.Size()
	sw, sh := s.Size()
	for row := 0; row < sh; row++ {
		ty := y + row
		if ty < 0 || ty >= height {
			continue
		}
		for col := 0; col < sw; col++ {
			tx := x + col
			if tx < 0 || tx >= width {
				continue
			}
			src := s.Cell(col, row)
			if src.IsContinuation() {
				continue
			}
			if src.Style.Background.IsDefault() {
				src.Style.Background = dst.GetCell(tx, ty).Style.Background
			}
			dst.SetCell(tx, ty, src)
		}
	}
	return nil
}

// NullBackend is an in-memory backend for testing.
type NullBackend struct {
	width, height int
	cells         [][]core.Cell
	initialized   bool
	cursorVisible bool
	shows         int
	blitErr       error
	events        chan Event
	quit          chan struct{}
}

// NewNullBackend creates a null backend with the given dimensions.
func NewNullBackend(width, height int) *NullBackend {
	return &NullBackend{
		width:         width,
		height:        height,
		cursorVisible: true,
		events:        make(chan Event, 100),
	}
}

func (b *NullBackend) Init() error {
	b.cells = make([][]core.Cell, b.height)
	for i := range b.cells {
		b.cells[i] = make([]core.Cell, b.width)
		for j := range b.cells[i] {
			b.cells[i][j] = core.EmptyCell()
		}
	}
	b.quit = make(chan struct{})
	b.initialized = true
	return nil
}

// Shutdown releases any PollEvent caller with EventQuit.
func (b *NullBackend) Shutdown() {
	if b.initialized {
		close(b.quit)
	}
	b.initialized = false
}

func (b *NullBackend) Size() (int, int) {
	return b.width, b.height
}

func (b *NullBackend) SetCell(x, y int, cell core.Cell) {
	if b.initialized && x >= 0 && x < b.width && y >= 0 && y < b.height {
		b.cells[y][x] = cell
	}
}

func (b *NullBackend) GetCell(x, y int) core.Cell {
	if b.initialized && x >= 0 && x < b.width && y >= 0 && y < b.height {
		return b.cells[y][x]
	}
	return core.EmptyCell()
}

func (b *NullBackend) Fill(rect core.ScreenRect, cell core.Cell) {
	for y := max(rect.Top, 0); y < rect.Bottom && y < b.height; y++ {
		for x := max(rect.Left, 0); x < rect.Right && x < b.width; x++ {
			b.SetCell(x, y, cell)
		}
	}
}

func (b *NullBackend) Blit(x, y int, s *Surface) error {
	if !b.initialized {
		return ErrNotInitialized
	}
	if b.blitErr != nil {
		return b.blitErr
	}
	return blit(b, x, y, s)
}

func (b *NullBackend) Show() {
	b.shows++
}

func (b *NullBackend) HideCursor() {
	b.cursorVisible = false
}

func (b *NullBackend) PollEvent() Event {
	select {
	case ev := <-b.events:
		return ev
	case <-b.quit:
		return Event{Type: EventQuit}
	}
}

func (b *NullBackend) PostEvent(event Event) {
	select {
	case b.events <- event:
	default:
		// Event dropped if queue is full (non-blocking for testing)
	}
}

// FailBlit makes every following Blit return err. Pass nil to restore.
func (b *NullBackend) FailBlit(err error) {
	b.blitErr = err
}

// Shows returns how many frames have been presented.
func (b *NullBackend) Shows() int {
	return b.shows
}

// CursorVisible reports whether the hardware cursor is shown.
func (b *NullBackend) CursorVisible() bool {
	return b.cursorVisible
}

// Row returns the runes of row y as a string, continuation cells skipped.
func (b *NullBackend) Row(y int) string {
	if !b.initialized || y < 0 || y >= b.height {
		return ""
	}
	runes := make([]rune, 0, b.width)
	for _, c := range b.cells[y] {
		if !c.IsContinuation() {
			runes = append(runes, c.Rune)
		}
	}
	return string(runes)
}
