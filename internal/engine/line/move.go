package line

import "github.com/rivo/uniseg"

// MoveLeft moves the cursor one character left. It stays put at 0.
func (l *Line) MoveLeft() {
	l.cursor = l.prevBoundary(l.cursor)
}

// MoveRight moves the cursor one character right. It stays put at Len().
func (l *Line) MoveRight() {
	l.cursor = l.nextBoundary(l.cursor)
}

// MoveHome moves the cursor to the start of the line.
func (l *Line) MoveHome() {
	l.cursor = 0
}

// MoveEnd moves the cursor to the end of the line.
func (l *Line) MoveEnd() {
	l.cursor = len(l.text)
}

// prevBoundary returns the start of the grapheme cluster ending at pos.
func (l *Line) prevBoundary(pos int) int {
	var (
		prev, off int
		cluster   []byte
	)
	rest := l.text[:pos]
	state := -1
	for len(rest) > 0 {
		cluster, rest, _, state = uniseg.FirstGraphemeCluster(rest, state)
		prev = off
		off += len(cluster)
	}
	return prev
}

// nextBoundary returns the end of the grapheme cluster starting at pos.
func (l *Line) nextBoundary(pos int) int {
	if pos >= len(l.text) {
		return len(l.text)
	}
	cluster, _, _, _ := uniseg.FirstGraphemeCluster(l.text[pos:], -1)
	return pos + len(cluster)
}
