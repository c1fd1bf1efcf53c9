package line

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestInsertAppend(t *testing.T) {
	l := New(DefaultCapacity)

	if n := l.Insert("hello"); n != 5 {
		t.Errorf("Insert returned %d, want 5", n)
	}
	l.Insert(" world")

	if l.String() != "hello world" {
		t.Errorf("expected %q, got %q", "hello world", l.String())
	}
	if l.Cursor() != l.Len() {
		t.Errorf("cursor %d should equal length %d", l.Cursor(), l.Len())
	}
}

func TestInsertMiddle(t *testing.T) {
	l := newLine("hello", 2)
	l.Insert("XY")

	if l.String() != "heXYllo" {
		t.Errorf("expected %q, got %q", "heXYllo", l.String())
	}
	if l.Cursor() != 4 {
		t.Errorf("expected cursor 4, got %d", l.Cursor())
	}
}

func TestInsertPreservesSurroundings(t *testing.T) {
	tests := []struct {
		text   string
		cursor int
		insert string
	}{
		{"hello", 0, "A"},
		{"hello", 1, "-{}-"},
		{"hello", 4, "日本"},
		{"a b;c", 3, " "},
	}

	for _, tt := range tests {
		l := newLine(tt.text, tt.cursor)
		head, tail := l.Head(), l.Tail()
		l.Insert(tt.insert)

		want := head + tt.insert + tail
		if l.String() != want {
			t.Errorf("insert %q into %q at %d = %q, want %q", tt.insert, tt.text, tt.cursor, l.String(), want)
		}
		if l.Cursor() != len(head)+len(tt.insert) {
			t.Errorf("cursor = %d, want %d", l.Cursor(), len(head)+len(tt.insert))
		}
	}
}

func TestInsertEmpty(t *testing.T) {
	l := newLine("abc", 1)
	if n := l.Insert(""); n != 0 {
		t.Errorf("Insert(\"\") returned %d", n)
	}
	if l.String() != "abc" || l.Cursor() != 1 {
		t.Errorf("empty insert changed line: %q cursor %d", l.String(), l.Cursor())
	}
}

func TestInsertTruncatesAtCapacity(t *testing.T) {
	l := New(8)
	n := l.Insert("abcdefghij")

	if l.String() != "abcdefg" {
		t.Errorf("expected %q, got %q", "abcdefg", l.String())
	}
	if n != 7 {
		t.Errorf("expected 7 bytes kept, got %d", n)
	}
	if l.Cursor() != 7 {
		t.Errorf("expected cursor 7, got %d", l.Cursor())
	}

	if n := l.Insert("x"); n != 0 {
		t.Errorf("insert into full line kept %d bytes", n)
	}
}

func TestInsertMiddleTruncatesTail(t *testing.T) {
	l := New(8)
	l.Insert("abcdef")
	l.SetCursor(2)
	l.Insert("XYZ")

	// The inserted text wins over the tail.
	if l.String() != "abXYZcd" {
		t.Errorf("expected %q, got %q", "abXYZcd", l.String())
	}
	if l.Cursor() != 5 {
		t.Errorf("expected cursor 5, got %d", l.Cursor())
	}
}

func TestInsertNeverSplitsRune(t *testing.T) {
	l := New(6)
	l.Insert("ab日本")

	if !utf8.ValidString(l.String()) {
		t.Fatalf("line holds invalid UTF-8: %q", l.String())
	}
	if l.String() != "ab日" {
		t.Errorf("expected %q, got %q", "ab日", l.String())
	}
}

func TestBackspace(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		cursor     int
		want       string
		wantCursor int
		wantOK     bool
	}{
		{"at end", "hello", 5, "hell", 4, true},
		{"middle", "hello", 2, "hllo", 1, true},
		{"at start", "hello", 0, "hello", 0, false},
		{"empty", "", 0, "", 0, false},
		{"multibyte", "a\u00e9", 3, "a", 1, true},
		{"combining", "ae\u0301", 4, "a", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLine(tt.text, tt.cursor)
			ok := l.Backspace()
			if ok != tt.wantOK {
				t.Errorf("Backspace() = %v, want %v", ok, tt.wantOK)
			}
			if l.String() != tt.want || l.Cursor() != tt.wantCursor {
				t.Errorf("got %q cursor %d, want %q cursor %d", l.String(), l.Cursor(), tt.want, tt.wantCursor)
			}
		})
	}
}

func TestDeleteWord(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		cursor     int
		want       string
		wantCursor int
	}{
		{"dash", "ab-cd", 5, "ab-", 3},
		{"space", "foo bar", 7, "foo ", 4},
		{"semicolon", "x;yz", 4, "x;", 2},
		{"braces", "{abc}def", 8, "{abc}", 5},
		{"to start", "abcd", 4, "", 0},
		{"middle", "foo bar baz", 7, "foo  baz", 4},
		{"break before cursor", "ab-", 3, "ab", 2},
		{"at start", "abc", 0, "abc", 0},
		{"multibyte word", "a 日本", 8, "a ", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLine(tt.text, tt.cursor)
			l.DeleteWord()
			if l.String() != tt.want || l.Cursor() != tt.wantCursor {
				t.Errorf("got %q cursor %d, want %q cursor %d", l.String(), l.Cursor(), tt.want, tt.wantCursor)
			}
		})
	}
}

func TestDeleteWordStopsAtBreak(t *testing.T) {
	text := "one two-three;four"
	for cursor := 1; cursor <= len(text); cursor++ {
		l := newLine(text, cursor)
		l.DeleteWord()

		head := text[:cursor]
		start := strings.LastIndexAny(head, " ;-{}") + 1
		if start == cursor {
			start = cursor - 1
		}
		want := text[:start] + text[cursor:]
		if l.String() != want || l.Cursor() != start {
			t.Errorf("cursor %d: got %q at %d, want %q at %d", cursor, l.String(), l.Cursor(), want, start)
		}
	}
}
