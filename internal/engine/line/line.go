package line

import "unicode/utf8"

// DefaultCapacity is the capacity of a line when none is configured.
// One byte of it is reserved for the terminator returned by Bytes.
const DefaultCapacity = 256

// MinCapacity is the smallest capacity a Line accepts.
const MinCapacity = 2

// Composition is the state of an in-progress input method pre-edit.
// It is never part of the line text.
type Composition struct {
	// Text is the pre-edit string shown by the input method.
	Text string

	// Start is the pre-edit cursor position reported by the input method.
	Start int

	// Length is the length of the pre-edit selection.
	Length int
}

// Active returns true if a composition is in progress.
func (c Composition) Active() bool {
	return c.Text != ""
}

// Line is a bounded, length-tracked line of text with a cursor.
type Line struct {
	capacity    int
	text        []byte
	cursor      int
	composition Composition
}

// New creates an empty line with the given capacity.
// Capacities below MinCapacity are raised to MinCapacity.
func New(capacity int) *Line {
	if capacity < MinCapacity {
		capacity = MinCapacity
	}
	return &Line{
		capacity: capacity,
		text:     make([]byte, 0, capacity),
	}
}

// Capacity returns the capacity of the line, terminator included.
func (l *Line) Capacity() int {
	return l.capacity
}

// Limit returns the maximum number of text bytes the line can hold.
func (l *Line) Limit() int {
	return l.capacity - 1
}

// Len returns the length of the text in bytes.
func (l *Line) Len() int {
	return len(l.text)
}

// Empty returns true if the line holds no text.
func (l *Line) Empty() bool {
	return len(l.text) == 0
}

// String returns the line text.
func (l *Line) String() string {
	return string(l.text)
}

// Bytes returns a copy of the text followed by a single NUL terminator.
func (l *Line) Bytes() []byte {
	out := make([]byte, len(l.text)+1)
	copy(out, l.text)
	return out
}

// Cursor returns the cursor as a byte offset into the text.
func (l *Line) Cursor() int {
	return l.cursor
}

// SetCursor moves the cursor to pos, clamped to [0, Len()] and moved back
// onto the start of a UTF-8 sequence.
func (l *Line) SetCursor(pos int) {
	l.cursor = l.clamp(pos)
}

// Head returns the text before the cursor.
func (l *Line) Head() string {
	return string(l.text[:l.cursor])
}

// Tail returns the text after the cursor.
func (l *Line) Tail() string {
	return string(l.text[l.cursor:])
}

// Composition returns the current composition state.
func (l *Line) Composition() Composition {
	return l.composition
}

// SetComposition records the pre-edit state reported by an input method.
// Negative positions are treated as zero.
func (l *Line) SetComposition(text string, start, length int) {
	l.composition = Composition{
		Text:   text,
		Start:  max(start, 0),
		Length: max(length, 0),
	}
}

// ClearComposition discards the pre-edit state.
func (l *Line) ClearComposition() {
	l.composition = Composition{}
}

// IsPhraseBreak reports whether b ends a word for DeleteWord.
func IsPhraseBreak(b byte) bool {
	return b == ' ' || b == ';' || b == '-' || b == '{' || b == '}'
}

// clamp bounds pos to the text and aligns it to a rune start.
func (l *Line) clamp(pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos >= len(l.text) {
		return len(l.text)
	}
	for pos > 0 && !utf8.RuneStart(l.text[pos]) {
		pos--
	}
	return pos
}

// fit truncates b to the line limit without splitting a UTF-8 sequence.
// It is the only place where the truncation policy lives.
func (l *Line) fit(b []byte) []byte {
	limit := l.Limit()
	if len(b) <= limit {
		return b
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(b[cut]) {
		cut--
	}
	return b[:cut]
}
