package line

// Insert inserts committed text at the cursor and leaves the cursor right
// after the part of it that fit. Text beyond the capacity is dropped.
// It returns the number of bytes of s that were kept.
func (l *Line) Insert(s string) int {
	if s == "" {
		return 0
	}

	// Append
	if l.cursor >= len(l.text) {
		before := len(l.text)
		l.text = l.fit(append(l.text, s...))
		l.cursor = len(l.text)
		return len(l.text) - before
	}

	// Insert: save the tail, cut at the cursor, append, re-append the tail.
	tail := append([]byte(nil), l.text[l.cursor:]...)
	head := l.cursor
	l.text = l.fit(append(l.text[:l.cursor], s...))
	l.cursor = len(l.text)
	kept := l.cursor - head
	l.text = l.fit(append(l.text, tail...))
	return kept
}

// Backspace deletes the character before the cursor.
// It returns false when the cursor is at the start of the line.
func (l *Line) Backspace() bool {
	if l.cursor == 0 {
		return false
	}
	l.deleteRange(l.prevBoundary(l.cursor), l.cursor)
	return true
}

// DeleteWord deletes the run of non phrase-break bytes before the cursor,
// stopping at the break or at the start of the line. When the byte right
// before the cursor is itself a break, only that character is deleted.
// It returns false when the cursor is at the start of the line.
func (l *Line) DeleteWord() bool {
	if l.cursor == 0 {
		return false
	}
	stop := l.cursor
	for stop > 0 && !IsPhraseBreak(l.text[stop-1]) {
		stop--
	}
	if stop == l.cursor {
		stop = l.prevBoundary(l.cursor)
	}
	l.deleteRange(stop, l.cursor)
	return true
}

// deleteRange removes [start, end) and puts the cursor at start.
func (l *Line) deleteRange(start, end int) {
	l.text = append(l.text[:start], l.text[end:]...)
	l.cursor = start
}
