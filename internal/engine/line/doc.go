// Package line provides the bounded single-line text buffer edited by Pad.
//
// A Line holds at most Capacity()-1 bytes of UTF-8 text together with a
// byte-offset cursor and the transient state of an in-progress input method
// composition. Every mutation goes through one fitting step, so text that
// would overflow the capacity is silently dropped and a UTF-8 sequence is
// never split.
//
// Basic usage:
//
//	l := line.New(line.DefaultCapacity)
//	l.Insert("hello")   // "hello", cursor 5
//	l.SetCursor(2)
//	l.Insert("XY")      // "heXYllo", cursor 4
//	l.MoveEnd()
//	l.DeleteWord()      // "", cursor 0
//
// A Line is owned by the event loop and is not safe for concurrent use.
package line
